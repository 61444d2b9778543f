package processors

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/athapong/depnode/pkg/annotation"
	"github.com/sirupsen/logrus"
)

// SentenceType is the annotation type for sentence spans
const SentenceType = "Sentence"

// SpacyToken is one token of a spaCy doc export. Id and Head are doc-level token indexes.
type SpacyToken struct {
	Id         int    `json:"id"`
	Head       int    `json:"head"`
	SentenceId int    `json:"sent"`
	Pos        string `json:"pos"`
	Dep        string `json:"dep"`

	// Detailed POS data
	Tag string `json:"tag"`

	// Character offset of the token in the original text
	Idx int `json:"idx"`

	Text  string `json:"text"`
	Lemma string `json:"lemma"`
}

// SpacyDoc is a parsed document grouped in sentences
type SpacyDoc struct {
	Title  string         `json:"title"`
	Labels []string       `json:"labels"`
	Text   string         `json:"text"`
	Tokens [][]SpacyToken `json:"tokens"`
}

// SpacyProcessor converts spaCy dependency parses into token annotations whose
// dependencies point from each head to its dependents
type SpacyProcessor struct {
	logger *logrus.Logger
}

// NewSpacyProcessor creates a new spaCy processor
func NewSpacyProcessor() *SpacyProcessor {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &SpacyProcessor{
		logger: logger,
	}
}

// Process implements the annotation.Processor interface
func (p *SpacyProcessor) Process(ctx context.Context, content []byte, metadata map[string]interface{}) (*annotation.Document, error) {
	var parsed SpacyDoc
	if err := json.Unmarshal(content, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode spacy document: %w", err)
	}
	return p.Convert(parsed, metadata)
}

// Convert builds an annotated document from an already decoded spaCy doc
func (p *SpacyProcessor) Convert(parsed SpacyDoc, metadata map[string]interface{}) (*annotation.Document, error) {
	text := parsed.Text
	if text == "" {
		text = rebuildText(parsed.Tokens)
	}

	doc := annotation.NewDocument(documentID(metadata), text)
	doc.Name = parsed.Title
	doc.ProcessedAt = time.Now()
	for k, v := range metadata {
		doc.Metadata[k] = v
	}
	if len(parsed.Labels) > 0 {
		doc.Metadata["labels"] = parsed.Labels
	}

	relations := make(map[int][]annotation.Relation)
	for _, sentence := range parsed.Tokens {
		for _, tok := range sentence {
			if tok.Head == tok.Id {
				continue
			}
			relations[tok.Head] = append(relations[tok.Head], annotation.Relation{
				Type:     tok.Dep,
				TargetID: tokenAnnotationID(tok.Id),
			})
		}
	}

	for _, sentence := range parsed.Tokens {
		for _, tok := range sentence {
			start := tok.Idx
			end := start + utf8.RuneCountInString(tok.Text)
			features := annotation.FeatureMap{
				annotation.StringFeature:   tok.Text,
				annotation.CategoryFeature: tok.Pos,
				annotation.LemmaFeature:    tok.Lemma,
				"tag":                      tok.Tag,
				"dep":                      tok.Dep,
				"sent":                     tok.SentenceId,
			}
			if rels, ok := relations[tok.Id]; ok {
				features[annotation.DependenciesFeature] = rels
			}

			if err := doc.Annotations.Add(tokenAnnotationID(tok.Id), start, end, annotation.TokenType, features); err != nil {
				return nil, fmt.Errorf("token %d %q: %w", tok.Id, tok.Text, err)
			}
		}
	}

	for i, sentence := range parsed.Tokens {
		if len(sentence) == 0 {
			continue
		}
		first, last := sentence[0], sentence[len(sentence)-1]
		end := last.Idx + utf8.RuneCountInString(last.Text)
		if _, err := doc.Annotations.Append(first.Idx, end, SentenceType, annotation.FeatureMap{"index": i}); err != nil {
			p.logger.WithError(err).WithField("sentence", i).Warn("Skipping sentence span")
		}
	}

	p.logger.WithFields(logrus.Fields{
		"doc_id":      doc.ID,
		"sentences":   len(parsed.Tokens),
		"annotations": doc.Annotations.Len(),
	}).Debug("Converted spacy document")

	return doc, nil
}

// SupportedTypes implements the annotation.Processor interface
func (p *SpacyProcessor) SupportedTypes() []string {
	return []string{"application/x-spacy+json"}
}

// Token annotation ids are shifted by one so that no token claims id 0
func tokenAnnotationID(tokenIndex int) int {
	return tokenIndex + 1
}

// rebuildText lays the token texts out at their offsets, padding gaps with spaces
func rebuildText(sentences [][]SpacyToken) string {
	length := 0
	for _, sentence := range sentences {
		for _, tok := range sentence {
			if end := tok.Idx + utf8.RuneCountInString(tok.Text); end > length {
				length = end
			}
		}
	}

	runes := make([]rune, length)
	for i := range runes {
		runes[i] = ' '
	}
	for _, sentence := range sentences {
		for _, tok := range sentence {
			if tok.Idx < 0 {
				continue
			}
			copy(runes[tok.Idx:], []rune(tok.Text))
		}
	}
	return string(runes)
}
