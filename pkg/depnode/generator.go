package depnode

import (
	"time"

	"github.com/athapong/depnode/pkg/annotation"
	"github.com/athapong/depnode/pkg/metrics"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrMissingInput is returned when there is no document or annotation set to process
var ErrMissingInput = errors.New("no document to process")

// Result describes one generator run over a document
type Result struct {
	DocumentID     string  `json:"document_id"`
	BaseID         int     `json:"base_id"`
	NodesCreated   int     `json:"nodes_created"`
	NodesEmitted   int     `json:"nodes_emitted"`
	Unresolved     int     `json:"unresolved"`
	Rejected       int     `json:"rejected"`
	MalformedEdges int     `json:"malformed_edges"`
	Nodes          []Node  `json:"nodes"`
	Errors         []error `json:"-"`
}

// Generator creates dependency tree nodes for the tokens of a document
type Generator struct {
	tokenType       string
	dependenciesKey string
	outputType      string
	logger          *logrus.Logger
}

// Option configures a Generator
type Option func(*Generator)

// WithLogger sets the logger used for run diagnostics
func WithLogger(logger *logrus.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithTokenType sets the annotation type treated as a token
func WithTokenType(tokenType string) Option {
	return func(g *Generator) {
		g.tokenType = tokenType
	}
}

// WithDependenciesFeature sets the feature key holding a token's relations
func WithDependenciesFeature(key string) Option {
	return func(g *Generator) {
		g.dependenciesKey = key
	}
}

// WithOutputType sets the annotation type of emitted nodes
func WithOutputType(outputType string) Option {
	return func(g *Generator) {
		g.outputType = outputType
	}
}

// NewGenerator creates a generator with the conventional Token / dependencies / DependencyTreeNode names
func NewGenerator(opts ...Option) *Generator {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	g := &Generator{
		tokenType:       annotation.TokenType,
		dependenciesKey: annotation.DependenciesFeature,
		outputType:      OutputType,
		logger:          logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Execute emits the nodes into the document's own annotation set
func (g *Generator) Execute(doc *annotation.Document) (*Result, error) {
	if doc == nil || doc.Annotations == nil {
		return nil, errors.Wrap(ErrMissingInput, "execute")
	}
	return g.ExecuteTo(doc, doc.Annotations)
}

// ExecuteTo runs one whole pass over doc and emits the nodes into sink.
// Only a missing document is fatal; malformed edges, rejected insertions and
// unresolved nodes are counted in the result.
func (g *Generator) ExecuteTo(doc *annotation.Document, sink Sink) (*Result, error) {
	if doc == nil || doc.Annotations == nil {
		return nil, errors.Wrap(ErrMissingInput, "execute")
	}
	if sink == nil {
		return nil, errors.Wrapf(ErrMissingInput, "no sink for document %s", doc.ID)
	}

	start := time.Now()
	logger := g.logger.WithField("doc_id", doc.ID)
	logger.WithFields(logrus.Fields{
		"doc_name":    doc.Name,
		"annotations": doc.Annotations.Len(),
	}).Debug("Generating dependency nodes")

	alloc := NewAllocator(doc.Annotations.IDs())
	table := NewTable(alloc)

	synth := NewSynthesizer(table, g.dependenciesKey, g.logger)
	synth.VisitAll(doc.Annotations.OfType(g.tokenType))

	stats := NewEmitter(sink, g.outputType, g.logger).Emit(table)

	result := &Result{
		DocumentID:     doc.ID,
		BaseID:         alloc.Base(),
		NodesCreated:   synth.Created(),
		NodesEmitted:   len(stats.Emitted),
		Unresolved:     stats.Unresolved,
		Rejected:       stats.Rejected,
		MalformedEdges: synth.Malformed(),
		Nodes:          stats.Emitted,
		Errors:         stats.Errors,
	}

	metrics.DependencyNodesCreated.Add(float64(result.NodesCreated))
	metrics.MalformedEdges.Add(float64(result.MalformedEdges))

	logger.WithFields(logrus.Fields{
		"base_id":         result.BaseID,
		"nodes_created":   result.NodesCreated,
		"nodes_emitted":   result.NodesEmitted,
		"unresolved":      result.Unresolved,
		"rejected":        result.Rejected,
		"malformed_edges": result.MalformedEdges,
		"duration":        time.Since(start).String(),
	}).Info("Dependency node generation completed")

	return result, nil
}
