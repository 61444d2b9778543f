package processors

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/athapong/depnode/pkg/annotation"
	"github.com/athapong/depnode/pkg/metrics"
	"github.com/google/uuid"
	"github.com/jdkato/prose/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

var processingDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name: "nlp_processing_duration_seconds",
		Help: "Time spent tokenizing documents",
	},
	[]string{"processor_type"},
)

func init() {
	prometheus.MustRegister(processingDuration)
}

// TextProcessor tokenizes and POS-tags plain text using prose.
// It produces tokens without dependency relations.
type TextProcessor struct {
	logger *logrus.Logger
}

// NewTextProcessor creates a new text processor
func NewTextProcessor() *TextProcessor {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &TextProcessor{
		logger: logger,
	}
}

// Process implements the annotation.Processor interface
func (p *TextProcessor) Process(ctx context.Context, content []byte, metadata map[string]interface{}) (*annotation.Document, error) {
	timer := prometheus.NewTimer(processingDuration.WithLabelValues("text"))
	defer timer.ObserveDuration()

	text := string(content)
	p.logger.WithField("content_length", len(text)).Debug("Starting tokenization")

	proseDoc, err := prose.NewDocument(text, prose.WithExtraction(false), prose.WithSegmentation(false))
	if err != nil {
		p.logger.WithError(err).Error("Failed to create prose document")
		metrics.DocumentProcessingErrors.WithLabelValues("text", "tokenize").Inc()
		return nil, err
	}

	doc := annotation.NewDocument(documentID(metadata), text)
	doc.ProcessedAt = time.Now()
	for k, v := range metadata {
		doc.Metadata[k] = v
	}

	// prose does not report offsets, so each token is located after the previous one.
	byteCursor, runeCursor := 0, 0
	skipped := 0
	for _, tok := range proseDoc.Tokens() {
		idx := strings.Index(text[byteCursor:], tok.Text)
		if tok.Text == "" || idx < 0 {
			skipped++
			continue
		}
		start := runeCursor + utf8.RuneCountInString(text[byteCursor:byteCursor+idx])
		end := start + utf8.RuneCountInString(tok.Text)

		if _, err := doc.Annotations.Append(start, end, annotation.TokenType, annotation.FeatureMap{
			annotation.StringFeature:   tok.Text,
			annotation.CategoryFeature: tok.Tag,
		}); err != nil {
			return nil, err
		}

		byteCursor += idx + len(tok.Text)
		runeCursor = end
	}

	p.logger.WithFields(logrus.Fields{
		"tokens":  doc.Annotations.Len(),
		"skipped": skipped,
	}).Debug("Tokenization completed")

	return doc, nil
}

// SupportedTypes implements the annotation.Processor interface
func (p *TextProcessor) SupportedTypes() []string {
	return []string{"text/plain", "text/markdown"}
}

func documentID(metadata map[string]interface{}) string {
	if id, ok := metadata["id"].(string); ok && id != "" {
		return id
	}
	return uuid.New().String()
}
