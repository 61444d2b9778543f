package depnode

import (
	"github.com/athapong/depnode/pkg/annotation"
	"github.com/athapong/depnode/pkg/metrics"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// OutputType is the annotation type of emitted nodes
	OutputType = "DependencyTreeNode"

	// Feature keys of emitted nodes, as read by dependency tree viewers
	IDFeature       = "ID"
	CategoryFeature = "cat"
	ChildrenFeature = "consists"
	TokenIDFeature  = "TokenID"
)

// ErrEmissionRejected wraps a failure reported by a sink for a single node
var ErrEmissionRejected = errors.New("dependency node insertion rejected")

// Sink receives emitted nodes. *annotation.Set satisfies it.
type Sink interface {
	Add(id, start, end int, typ string, features annotation.FeatureMap) error
}

var _ Sink = (*annotation.Set)(nil)

// EmitStats summarizes one emission pass
type EmitStats struct {
	Emitted    []Node
	Rejected   int
	Unresolved int
	Errors     []error
}

// Emitter hands resolved nodes to a sink
type Emitter struct {
	sink       Sink
	outputType string
	logger     *logrus.Logger
}

// NewEmitter creates an emitter writing annotations of outputType to sink
func NewEmitter(sink Sink, outputType string, logger *logrus.Logger) *Emitter {
	return &Emitter{
		sink:       sink,
		outputType: outputType,
		logger:     logger,
	}
}

// Emit inserts every span-resolved node of table into the sink.
// A rejected insertion is recorded and the remaining nodes are still emitted.
func (e *Emitter) Emit(table *Table) EmitStats {
	stats := EmitStats{Emitted: make([]Node, 0, table.Len())}

	table.Each(func(tokenID int, node *Node) {
		if !node.Resolved() {
			stats.Unresolved++
			metrics.DependencyNodesEmitted.WithLabelValues(metrics.OutcomeUnresolved).Inc()
			e.logger.WithFields(logrus.Fields{
				"node_id":  node.ID,
				"token_id": tokenID,
			}).Debug("Skipping dependency node without a span")
			return
		}

		err := e.sink.Add(node.ID, node.Span.Start, node.Span.End, e.outputType, Features(node))
		if err != nil {
			err = errors.Wrapf(ErrEmissionRejected, "node %d (token %d): %v", node.ID, tokenID, err)
			stats.Rejected++
			stats.Errors = append(stats.Errors, err)
			metrics.DependencyNodesEmitted.WithLabelValues(metrics.OutcomeRejected).Inc()
			e.logger.WithError(err).WithField("node_id", node.ID).Warn("Failed to emit dependency node")
			return
		}

		stats.Emitted = append(stats.Emitted, *node)
		metrics.DependencyNodesEmitted.WithLabelValues(metrics.OutcomeEmitted).Inc()
	})

	return stats
}

// Features builds the feature bag stored with an emitted node
func Features(node *Node) annotation.FeatureMap {
	children := make([]int, len(node.Children))
	copy(children, node.Children)

	return annotation.FeatureMap{
		IDFeature:       node.ID,
		CategoryFeature: node.Category,
		ChildrenFeature: children,
		TokenIDFeature:  node.TokenID,
	}
}
