package depnode

import (
	"io"
	"testing"

	"github.com/athapong/depnode/pkg/annotation"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type testToken struct {
	id, start, end int
	rels           []annotation.Relation
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// newTestDocument adds the tokens in the given order, which is also the traversal order
func newTestDocument(t *testing.T, tokens ...testToken) *annotation.Document {
	t.Helper()

	doc := annotation.NewDocument("test-doc", "")
	for _, tok := range tokens {
		features := annotation.FeatureMap{}
		if tok.rels != nil {
			features[annotation.DependenciesFeature] = tok.rels
		}
		require.NoError(t, doc.Annotations.Add(tok.id, tok.start, tok.end, annotation.TokenType, features))
	}
	return doc
}

func nodesByToken(nodes []Node) map[int]Node {
	byToken := make(map[int]Node, len(nodes))
	for _, n := range nodes {
		byToken[n.TokenID] = n
	}
	return byToken
}

type failingSink struct {
	set    *annotation.Set
	reject map[int]bool
}

func (s *failingSink) Add(id, start, end int, typ string, features annotation.FeatureMap) error {
	if s.reject[id] {
		return annotation.ErrDuplicateID
	}
	return s.set.Add(id, start, end, typ, features)
}
