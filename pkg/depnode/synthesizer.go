package depnode

import (
	"github.com/athapong/depnode/pkg/annotation"
	"github.com/sirupsen/logrus"
)

// Synthesizer builds the node table from tokens in a single pass.
//
// Tokens are consumed in whatever order they are given; no offset order is assumed. When several
// tokens point at the same target, the last edge processed decides its category.
type Synthesizer struct {
	table      *Table
	featureKey string
	logger     *logrus.Logger

	created   int
	malformed int
}

// NewSynthesizer creates a synthesizer reading edges from featureKey
func NewSynthesizer(table *Table, featureKey string, logger *logrus.Logger) *Synthesizer {
	return &Synthesizer{
		table:      table,
		featureKey: featureKey,
		logger:     logger,
	}
}

// Visit folds one token and its outgoing edges into the table
func (s *Synthesizer) Visit(token *annotation.Annotation) {
	node := s.getOrCreate(token.ID)

	// A token seen twice simply overwrites its span and children.
	span := token.Span()
	node.Span = &span
	node.TokenID = token.ID

	rels, malformed := annotation.ParseRelations(token.Features[s.featureKey])
	if malformed > 0 {
		s.malformed += malformed
		s.logger.WithFields(logrus.Fields{
			"token_id":  token.ID,
			"malformed": malformed,
		}).Debug("Skipping dependency edges without a resolvable target")
	}

	children := make([]int, 0, len(rels))
	for _, rel := range rels {
		target := s.getOrCreate(rel.TargetID)
		target.Category = rel.Type
		children = append(children, target.ID)
	}

	if len(children) > 0 {
		node.Children = children
	}
}

// VisitAll visits every token in the given order
func (s *Synthesizer) VisitAll(tokens []*annotation.Annotation) {
	for _, token := range tokens {
		s.Visit(token)
	}
}

// Created returns the number of nodes allocated so far
func (s *Synthesizer) Created() int {
	return s.created
}

// Malformed returns the number of skipped edges so far
func (s *Synthesizer) Malformed() int {
	return s.malformed
}

func (s *Synthesizer) getOrCreate(tokenID int) *Node {
	node, created := s.table.GetOrCreate(tokenID)
	if created {
		s.created++
	}
	return node
}
