package storage

import (
	"fmt"
	"regexp"

	"github.com/athapong/depnode/pkg/annotation"
	"github.com/athapong/depnode/pkg/depnode"
	"github.com/neo4j/neo4j-go-driver/v4/neo4j"
	"github.com/pkg/errors"
)

var labelPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Neo4jSink writes dependency nodes of one document into Neo4j.
// Each node becomes a labelled vertex with CONSISTS edges to its children.
type Neo4jSink struct {
	driver neo4j.Driver
	docID  string
}

var _ depnode.Sink = (*Neo4jSink)(nil)

// NewNeo4jSink creates a new Neo4j sink for the document docID
func NewNeo4jSink(uri, username, password, docID string) (*Neo4jSink, error) {
	auth := neo4j.BasicAuth(username, password, "")
	driver, err := neo4j.NewDriver(uri, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %v", err)
	}

	return &Neo4jSink{
		driver: driver,
		docID:  docID,
	}, nil
}

// ForDocument returns a sink sharing this driver but writing under another document id
func (s *Neo4jSink) ForDocument(docID string) *Neo4jSink {
	return &Neo4jSink{driver: s.driver, docID: docID}
}

// Close releases the driver
func (s *Neo4jSink) Close() error {
	if s.driver != nil {
		return s.driver.Close()
	}
	return nil
}

// Add merges the node and its CONSISTS links. A node whose span is already set is rejected.
func (s *Neo4jSink) Add(id, start, end int, typ string, features annotation.FeatureMap) error {
	if !labelPattern.MatchString(typ) {
		return errors.Errorf("invalid node label %q", typ)
	}
	params := nodeParams(s.docID, id, start, end, features)

	session := s.driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		existing, err := tx.Run(fmt.Sprintf(`
			MATCH (n:%s {doc_id: $doc_id, id: $id})
			WHERE n.start IS NOT NULL
			RETURN count(n)
		`, typ), params)
		if err != nil {
			return nil, err
		}
		record, err := existing.Single()
		if err != nil {
			return nil, err
		}
		if count, _ := record.Values[0].(int64); count > 0 {
			return nil, errors.Wrapf(depnode.ErrEmissionRejected, "node %d already stored for %s", id, s.docID)
		}

		_, err = tx.Run(fmt.Sprintf(`
			MERGE (n:%[1]s {doc_id: $doc_id, id: $id})
			SET n.start = $start,
				n.end = $end,
				n.cat = $cat,
				n.token_id = $token_id,
				n.updated_at = datetime()
			WITH n
			UNWIND $children AS child
			MERGE (c:%[1]s {doc_id: $doc_id, id: child})
			MERGE (n)-[:CONSISTS]->(c)
		`, typ), params)
		return nil, err
	})
	return err
}

// nodeParams converts a node's feature bag into Cypher parameters.
// The driver only accepts int64 integers and []interface{} lists.
func nodeParams(docID string, id, start, end int, features annotation.FeatureMap) map[string]interface{} {
	params := map[string]interface{}{
		"doc_id":   docID,
		"id":       int64(id),
		"start":    int64(start),
		"end":      int64(end),
		"cat":      depnode.DefaultCategory,
		"token_id": nil,
		"children": []interface{}{},
	}

	if cat, ok := features[depnode.CategoryFeature].(string); ok {
		params["cat"] = cat
	}
	if tokenID, ok := asInt64(features[depnode.TokenIDFeature]); ok {
		params["token_id"] = tokenID
	}

	switch children := features[depnode.ChildrenFeature].(type) {
	case []int:
		list := make([]interface{}, 0, len(children))
		for _, c := range children {
			list = append(list, int64(c))
		}
		params["children"] = list
	case []interface{}:
		list := make([]interface{}, 0, len(children))
		for _, c := range children {
			if v, ok := asInt64(c); ok {
				list = append(list, v)
			}
		}
		params["children"] = list
	}
	return params
}

func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	}
	return 0, false
}
