package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/athapong/depnode/pkg/annotation"
	"github.com/athapong/depnode/pkg/depnode"
	"github.com/athapong/depnode/pkg/metrics"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

const defaultBatchSize = 10

// SinkFactory returns the sink receiving the nodes of doc
type SinkFactory func(doc *annotation.Document) (depnode.Sink, error)

// DocumentPipeline runs dependency node generation over many documents.
// Every document gets its own run; documents never share allocator or table state.
type DocumentPipeline struct {
	generator   *depnode.Generator
	sinkFactory SinkFactory
	progress    func(doc *annotation.Document)
	logger      *logrus.Logger
	batchSize   int
}

// Option configures a DocumentPipeline
type Option func(*DocumentPipeline)

// WithBatchSize sets how many documents run concurrently
func WithBatchSize(n int) Option {
	return func(p *DocumentPipeline) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithSinkFactory sends nodes somewhere other than the document's own annotation set
func WithSinkFactory(f SinkFactory) Option {
	return func(p *DocumentPipeline) {
		p.sinkFactory = f
	}
}

// WithProgress registers a callback invoked after each document finishes
func WithProgress(fn func(doc *annotation.Document)) Option {
	return func(p *DocumentPipeline) {
		p.progress = fn
	}
}

// WithLogger sets the pipeline logger
func WithLogger(logger *logrus.Logger) Option {
	return func(p *DocumentPipeline) {
		p.logger = logger
	}
}

// New creates a new document pipeline around generator
func New(generator *depnode.Generator, opts ...Option) *DocumentPipeline {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	p := &DocumentPipeline{
		generator: generator,
		logger:    logger,
		batchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs generation for a single document
func (p *DocumentPipeline) Process(ctx context.Context, doc *annotation.Document) (*depnode.Result, error) {
	if doc == nil {
		return nil, errors.Wrap(depnode.ErrMissingInput, "cannot process nil document")
	}
	// Cancellation is honoured between documents, never in the middle of one.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timer := prometheus.NewTimer(metrics.PipelineProcessingDuration.WithLabelValues("single"))
	defer timer.ObserveDuration()

	var (
		result *depnode.Result
		err    error
	)
	if p.sinkFactory == nil {
		result, err = p.generator.Execute(doc)
	} else {
		var sink depnode.Sink
		sink, err = p.sinkFactory(doc)
		if err != nil {
			return nil, errors.Wrapf(err, "open sink for document %s", doc.ID)
		}
		result, err = p.generator.ExecuteTo(doc, sink)
	}
	if err != nil {
		return nil, err
	}

	if p.progress != nil {
		p.progress(doc)
	}
	return result, nil
}

// BatchProcess processes documents concurrently, batchSize at a time.
// Results are index-aligned with docs; a failed document leaves a nil entry.
func (p *DocumentPipeline) BatchProcess(ctx context.Context, docs []*annotation.Document) ([]*depnode.Result, error) {
	p.logger.WithField("document_count", len(docs)).Info("Starting batch processing")

	results := make([]*depnode.Result, len(docs))
	var firstErr error

	for i := 0; i < len(docs); i += p.batchSize {
		end := i + p.batchSize
		if end > len(docs) {
			end = len(docs)
		}

		errs := make(chan error, end-i)
		var wg sync.WaitGroup

		for j := i; j < end; j++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()

				timer := prometheus.NewTimer(metrics.PipelineProcessingDuration.WithLabelValues("processing"))
				result, err := p.Process(ctx, docs[idx])
				timer.ObserveDuration()

				if err != nil {
					entry := p.logger.WithError(err).WithField("index", idx)
					if docs[idx] != nil {
						entry = entry.WithField("doc_id", docs[idx].ID)
					}
					entry.Error("Failed to process document")
					metrics.DocumentsProcessed.WithLabelValues("error").Inc()
					errs <- fmt.Errorf("document %d: %w", idx, err)
					return
				}

				results[idx] = result
				metrics.DocumentsProcessed.WithLabelValues("success").Inc()
			}(j)
		}

		wg.Wait()
		close(errs)

		for err := range errs {
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	metrics.UpdateSystemMetrics()

	if firstErr != nil {
		return results, fmt.Errorf("batch processing failed: %w", firstErr)
	}

	p.logger.Info("Batch processing completed successfully")
	return results, nil
}
