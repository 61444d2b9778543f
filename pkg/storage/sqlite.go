package storage

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"runtime"
	"time"

	"github.com/athapong/depnode/pkg/annotation"
	"github.com/athapong/depnode/pkg/depnode"
	"github.com/pkg/errors"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

//go:embed sql/*.sql
var sqlFiles embed.FS

// ErrDocumentNotFound is returned when a document id has no stored row
var ErrDocumentNotFound = errors.New("document not found")

// SQLiteStore persists documents and their annotations in a SQLite database
type SQLiteStore struct {
	pool *sqlitex.Pool
}

// NewSQLiteStore opens (or creates) the database at dbPath and applies the schema
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	pool, err := sqlitex.NewPool(fmt.Sprintf("file:%s", dbPath), sqlitex.PoolOptions{
		PoolSize: runtime.NumCPU(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite pool at %s: %w", dbPath, err)
	}

	store := &SQLiteStore{pool: pool}
	if err := store.createSchema(); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) createSchema() error {
	script, err := sqlFiles.ReadFile("sql/schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read embedded schema: %w", err)
	}

	conn, err := s.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	if err := sqlitex.ExecuteScript(conn, string(script), nil); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Close releases the connection pool
func (s *SQLiteStore) Close() error {
	return s.pool.Close()
}

// WriteDocument stores doc and replaces all of its annotations in one transaction
func (s *SQLiteStore) WriteDocument(ctx context.Context, doc *annotation.Document) (err error) {
	if doc == nil || doc.ID == "" {
		return errors.New("document without id")
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	defer sqlitex.Save(conn)(&err)

	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return errors.Wrap(err, "encode metadata")
	}

	processedAt := ""
	if !doc.ProcessedAt.IsZero() {
		processedAt = doc.ProcessedAt.UTC().Format(time.RFC3339Nano)
	}

	err = sqlitex.Execute(conn,
		"INSERT OR REPLACE INTO documents (id, name, content, metadata, processed_at) VALUES (?, ?, ?, ?, ?)",
		&sqlitex.ExecOptions{
			Args: []interface{}{doc.ID, doc.Name, doc.Content, string(metadata), processedAt},
		})
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	err = sqlitex.Execute(conn, "DELETE FROM annotations WHERE doc_id = ?", &sqlitex.ExecOptions{
		Args: []interface{}{doc.ID},
	})
	if err != nil {
		return fmt.Errorf("failed to clear annotations: %w", err)
	}

	if doc.Annotations == nil {
		return nil
	}
	for _, a := range doc.Annotations.All() {
		if err = insertAnnotation(conn, doc.ID, a.ID, a.Start, a.End, a.Type, a.Features); err != nil {
			return err
		}
	}
	return nil
}

// ReadDocument loads a document and its annotations
func (s *SQLiteStore) ReadDocument(ctx context.Context, id string) (*annotation.Document, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	var doc *annotation.Document
	err = sqlitex.Execute(conn, "SELECT name, content, metadata, processed_at FROM documents WHERE id = ?", &sqlitex.ExecOptions{
		Args: []interface{}{id},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			doc = annotation.NewDocument(id, stmt.ColumnText(1))
			doc.Name = stmt.ColumnText(0)
			if err := json.Unmarshal([]byte(stmt.ColumnText(2)), &doc.Metadata); err != nil {
				return errors.Wrap(err, "decode metadata")
			}
			if ts := stmt.ColumnText(3); ts != "" {
				t, err := time.Parse(time.RFC3339Nano, ts)
				if err != nil {
					return errors.Wrap(err, "decode processed_at")
				}
				doc.ProcessedAt = t
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.Wrapf(ErrDocumentNotFound, "id %s", id)
	}
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]interface{})
	}

	err = sqlitex.Execute(conn,
		"SELECT id, type, start_offset, end_offset, features FROM annotations WHERE doc_id = ? ORDER BY rowid",
		&sqlitex.ExecOptions{
			Args: []interface{}{id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var features annotation.FeatureMap
				if err := json.Unmarshal([]byte(stmt.ColumnText(4)), &features); err != nil {
					return errors.Wrapf(err, "decode features of annotation %d", stmt.ColumnInt(0))
				}
				return doc.Annotations.Add(stmt.ColumnInt(0), stmt.ColumnInt(2), stmt.ColumnInt(3), stmt.ColumnText(1), features)
			},
		})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Sink returns a depnode.Sink writing annotations for docID straight into the database.
// An id already stored for the document is rejected.
func (s *SQLiteStore) Sink(docID string) depnode.Sink {
	return &sqliteSink{store: s, docID: docID}
}

type sqliteSink struct {
	store *SQLiteStore
	docID string
}

func (k *sqliteSink) Add(id, start, end int, typ string, features annotation.FeatureMap) error {
	conn, err := k.store.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer k.store.pool.Put(conn)

	err = insertAnnotation(conn, k.docID, id, start, end, typ, features)
	if sqlite.ErrCode(err).ToPrimary() == sqlite.ResultConstraint {
		return errors.Wrapf(depnode.ErrEmissionRejected, "annotation %d already stored for %s", id, k.docID)
	}
	return err
}

func insertAnnotation(conn *sqlite.Conn, docID string, id, start, end int, typ string, features annotation.FeatureMap) error {
	if features == nil {
		features = annotation.FeatureMap{}
	}
	data, err := json.Marshal(features)
	if err != nil {
		return errors.Wrapf(err, "encode features of annotation %d", id)
	}

	err = sqlitex.Execute(conn,
		"INSERT INTO annotations (doc_id, id, type, start_offset, end_offset, features) VALUES (?, ?, ?, ?, ?, ?)",
		&sqlitex.ExecOptions{
			Args: []interface{}{docID, id, typ, start, end, string(data)},
		})
	if err != nil {
		return fmt.Errorf("failed to insert annotation %d: %w", id, err)
	}
	return nil
}
