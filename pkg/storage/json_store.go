package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/athapong/depnode/pkg/annotation"
	"github.com/pkg/errors"
)

// DocumentStore defines an interface for persisting annotated documents
type DocumentStore interface {
	// Store persists a document, replacing any previous version
	Store(ctx context.Context, doc *annotation.Document) error

	// Load returns the document with the given id
	Load(ctx context.Context, id string) (*annotation.Document, error)

	// List returns the ids of all stored documents
	List(ctx context.Context) ([]string, error)
}

// JSONDocumentStore implements DocumentStore with one JSON file per document
type JSONDocumentStore struct {
	dir string
}

var _ DocumentStore = (*JSONDocumentStore)(nil)

// NewJSONDocumentStore creates a new JSON document store rooted at dir
func NewJSONDocumentStore(dir string) *JSONDocumentStore {
	return &JSONDocumentStore{
		dir: dir,
	}
}

// Store writes the document as <dir>/<id>.json
func (s *JSONDocumentStore) Store(ctx context.Context, doc *annotation.Document) error {
	if doc == nil || doc.ID == "" {
		return errors.New("document without id")
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encode document %s", doc.ID)
	}

	return os.WriteFile(s.path(doc.ID), data, 0644)
}

// Load reads <dir>/<id>.json
func (s *JSONDocumentStore) Load(ctx context.Context, id string) (*annotation.Document, error) {
	return ReadDocument(s.path(id))
}

// List returns the ids of the JSON files in the store directory, sorted
func (s *JSONDocumentStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *JSONDocumentStore) path(id string) string {
	return filepath.Join(s.dir, filepath.Base(id)+".json")
}

// ReadDocument reads an annotated document JSON file
func ReadDocument(path string) (*annotation.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "IO error")
	}

	var doc annotation.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "JSON decoding error in %s", path)
	}
	if doc.Annotations == nil {
		doc.Annotations = annotation.NewSet()
	}
	if doc.ID == "" {
		doc.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &doc, nil
}
