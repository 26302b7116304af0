// Package datastore persists processed documents and their annotations in
// SQLite (modernc.org/sqlite, no cgo).
//
// # Schema
//
// One row per document and one row per annotation, keyed by document ID,
// annotation set name and annotation ID so a reloaded document keeps its
// identifiers. Saving a document again replaces its annotations.
package datastore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/alnah/go-textpipe"
)

// Sentinel errors for datastore operations.
var (
	ErrOpen     = errors.New("cannot open datastore")
	ErrNotFound = errors.New("document not found")
	ErrSave     = errors.New("cannot save document")
	ErrLoad     = errors.New("cannot load document")
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id        TEXT PRIMARY KEY,
	name      TEXT NOT NULL,
	source    TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	text      TEXT NOT NULL,
	saved_at  DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS annotations (
	document_id  TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	set_name     TEXT NOT NULL,
	id           INTEGER NOT NULL,
	type         TEXT NOT NULL,
	start_offset INTEGER NOT NULL,
	end_offset   INTEGER NOT NULL,
	features     TEXT NOT NULL,
	PRIMARY KEY (document_id, set_name, id)
);
CREATE INDEX IF NOT EXISTS idx_annotations_type ON annotations(document_id, type);
`

// Store is a SQLite-backed document store. It is safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string
}

// Summary describes a stored document without loading it.
type Summary struct {
	ID          string
	Name        string
	Source      string
	MimeType    string
	Annotations int
	SavedAt     time.Time
}

// Open opens or creates the store at path, creating parent directories.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrOpen)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("%w: creating directory: %v", ErrOpen, err)
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: creating schema: %v", ErrOpen, err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Save stores doc with every annotation set, replacing any earlier copy.
func (s *Store) Save(ctx context.Context, doc *textpipe.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSave, doc.ID(), err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO documents (id, name, source, mime_type, text, saved_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, source = excluded.source,
		 mime_type = excluded.mime_type, text = excluded.text, saved_at = excluded.saved_at`,
		doc.ID(), doc.Name(), doc.Source(), doc.MimeType(), doc.Text(), time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSave, doc.ID(), err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM annotations WHERE document_id = ?`, doc.ID()); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSave, doc.ID(), err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO annotations (document_id, set_name, id, type, start_offset, end_offset, features)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSave, doc.ID(), err)
	}
	defer func() { _ = stmt.Close() }()

	sets := append([]string{""}, doc.AnnotationSetNames()...)
	for _, name := range sets {
		for _, a := range doc.AnnotationSet(name).All() {
			features, err := json.Marshal(a.Features())
			if err != nil {
				return fmt.Errorf("%w: %s: annotation %d: %v", ErrSave, doc.ID(), a.ID(), err)
			}
			if _, err := stmt.ExecContext(ctx, doc.ID(), name, a.ID(), a.Type(), a.Start(), a.End(), string(features)); err != nil {
				return fmt.Errorf("%w: %s: annotation %d: %v", ErrSave, doc.ID(), a.ID(), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSave, doc.ID(), err)
	}
	return nil
}

// SaveCorpus saves every document of c.
func (s *Store) SaveCorpus(ctx context.Context, c *textpipe.Corpus) error {
	for _, doc := range c.Documents() {
		if err := s.Save(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

// Load restores the document stored under id with its annotations.
func (s *Store) Load(ctx context.Context, id string) (*textpipe.Document, error) {
	var name, source, mimeType, text string
	err := s.db.QueryRowContext(ctx,
		`SELECT name, source, mime_type, text FROM documents WHERE id = ?`, id,
	).Scan(&name, &source, &mimeType, &text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoad, id, err)
	}

	doc := textpipe.RestoreDocument(id, name, source, mimeType, text)

	rows, err := s.db.QueryContext(ctx,
		`SELECT set_name, id, type, start_offset, end_offset, features
		 FROM annotations WHERE document_id = ? ORDER BY set_name, id`, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoad, id, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			setName, typ, raw string
			annID, start, end int
		)
		if err := rows.Scan(&setName, &annID, &typ, &start, &end, &raw); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoad, id, err)
		}
		var features textpipe.FeatureMap
		if err := json.Unmarshal([]byte(raw), &features); err != nil {
			return nil, fmt.Errorf("%w: %s: annotation %d features: %v", ErrLoad, id, annID, err)
		}
		if err := doc.RestoreAnnotation(setName, annID, typ, start, end, features); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoad, id, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoad, id, err)
	}
	return doc, nil
}

// List returns a summary of every stored document, oldest first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.id, d.name, d.source, d.mime_type, d.saved_at, COUNT(a.id)
		 FROM documents d LEFT JOIN annotations a ON a.document_id = d.id
		 GROUP BY d.id ORDER BY d.saved_at, d.id`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Summary
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Source, &sum.MimeType, &sum.SavedAt, &sum.Annotations); err != nil {
			return nil, fmt.Errorf("listing documents: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Delete removes a document and its annotations.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
