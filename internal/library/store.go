// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library persists canonical paper records in a searchable
// SQLite database. It owns the retriever engine's storage contract:
// persistent identity, upsert by (source, identifier), and a
// full-text index kept in sync with every write.
package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paperbase/pkg/types"
)

const dbFile = "library.db"

// Store manages the paper library SQLite database.
type Store struct {
	db         *sql.DB
	dataDir    string
	maxResults int
}

// Open opens or creates the library database at dataDir/library.db,
// creating the schema if it does not exist.
func Open(cfg types.LibraryConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, dataDir: cfg.DataDir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DataDir returns the directory holding the database and documents.
func (s *Store) DataDir() string { return s.dataDir }

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			identifier TEXT NOT NULL,
			title TEXT NOT NULL,
			authors TEXT NOT NULL,
			publication_date TEXT NOT NULL,
			abstract TEXT,
			pdf_url TEXT,
			doi TEXT,
			pdf_path TEXT,
			added_at TEXT NOT NULL,
			UNIQUE(source, identifier)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_doi ON papers(doi)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers so the text index follows
	// every insert, update, and delete.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='papers_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE papers_fts USING fts5(
				title, authors, abstract, content=papers, content_rowid=rowid)`,
			`CREATE TRIGGER papers_ai AFTER INSERT ON papers BEGIN
				INSERT INTO papers_fts(rowid, title, authors, abstract)
				VALUES (new.rowid, new.title, new.authors, new.abstract);
			END`,
			`CREATE TRIGGER papers_ad AFTER DELETE ON papers BEGIN
				INSERT INTO papers_fts(papers_fts, rowid, title, authors, abstract)
				VALUES('delete', old.rowid, old.title, old.authors, old.abstract);
			END`,
			`CREATE TRIGGER papers_au AFTER UPDATE ON papers BEGIN
				INSERT INTO papers_fts(papers_fts, rowid, title, authors, abstract)
				VALUES('delete', old.rowid, old.title, old.authors, old.abstract);
				INSERT INTO papers_fts(rowid, title, authors, abstract)
				VALUES (new.rowid, new.title, new.authors, new.abstract);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Save upserts a paper by its (source, identifier) uniqueness key and
// returns the persistent row id. An existing pdf_path survives
// metadata refreshes.
func (s *Store) Save(ctx context.Context, paper *types.Paper) (int64, error) {
	authorsJSON, err := json.Marshal(paper.Authors)
	if err != nil {
		return 0, fmt.Errorf("encoding authors: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO papers (source, identifier, title, authors, publication_date,
			abstract, pdf_url, doi, added_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(source, identifier) DO UPDATE SET
			title=excluded.title, authors=excluded.authors,
			publication_date=excluded.publication_date,
			abstract=excluded.abstract, pdf_url=excluded.pdf_url,
			doi=excluded.doi`,
		paper.Source, paper.Identifier, paper.Title, string(authorsJSON),
		paper.PublicationDate.UTC().Format(time.RFC3339),
		paper.Abstract, paper.PDFURL, paper.DOI,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("upserting paper: %w", err)
	}

	var rowid int64
	err = s.db.QueryRowContext(ctx,
		`SELECT rowid FROM papers WHERE source = ? AND identifier = ?`,
		paper.Source, paper.Identifier,
	).Scan(&rowid)
	if err != nil {
		return 0, fmt.Errorf("looking up saved paper: %w", err)
	}
	return rowid, nil
}

// SetDocumentPath records the local path of a downloaded document.
func (s *Store) SetDocumentPath(ctx context.Context, source, identifier, path string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE papers SET pdf_path = ? WHERE source = ? AND identifier = ?`,
		path, source, identifier)
	if err != nil {
		return fmt.Errorf("updating document path: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("paper %s:%s not found", source, identifier)
	}
	return nil
}

// Get returns the stored paper for (source, identifier), or
// sql.ErrNoRows wrapped in the error if it does not exist.
func (s *Store) Get(ctx context.Context, source, identifier string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		selectColumns+` FROM papers WHERE source = ? AND identifier = ?`,
		source, identifier)
	rec, err := scanRecord(row)
	if err != nil {
		return nil, fmt.Errorf("looking up %s:%s: %w", source, identifier, err)
	}
	return rec, nil
}

// Remove deletes the paper for (source, identifier). The FTS triggers
// keep the text index in sync.
func (s *Store) Remove(ctx context.Context, source, identifier string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM papers WHERE source = ? AND identifier = ?`, source, identifier)
	if err != nil {
		return fmt.Errorf("deleting paper: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("paper %s:%s not found", source, identifier)
	}
	return nil
}

// List returns the most recently added papers, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	rows, err := s.db.QueryContext(ctx,
		selectColumns+` FROM papers ORDER BY added_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// Record is a stored paper plus its storage metadata.
type Record struct {
	types.Paper
	RowID   int64     `json:"rowid" yaml:"rowid"`
	PDFPath string    `json:"pdf_path,omitempty" yaml:"pdf_path,omitempty"`
	AddedAt time.Time `json:"added_at" yaml:"added_at"`
}

const selectColumns = `SELECT rowid, source, identifier, title, authors,
	publication_date, abstract, pdf_url, doi, pdf_path, added_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec         Record
		authorsJSON string
		pubDate     string
		abstract    sql.NullString
		pdfURL      sql.NullString
		doi         sql.NullString
		pdfPath     sql.NullString
		addedAt     string
	)
	if err := row.Scan(
		&rec.RowID, &rec.Source, &rec.Identifier, &rec.Title, &authorsJSON,
		&pubDate, &abstract, &pdfURL, &doi, &pdfPath, &addedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(authorsJSON), &rec.Authors); err != nil {
		return nil, fmt.Errorf("decoding authors: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, pubDate); err == nil {
		rec.PublicationDate = t
	}
	if t, err := time.Parse(time.RFC3339, addedAt); err == nil {
		rec.AddedAt = t
	}
	rec.Abstract = abstract.String
	rec.PDFURL = pdfURL.String
	rec.DOI = doi.String
	rec.PDFPath = pdfPath.String
	return &rec, nil
}

func collectRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Search runs an FTS5 query over title, authors, and abstract and
// returns matches ranked by relevance.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Record, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT p.rowid, p.source, p.identifier, p.title, p.authors,
			p.publication_date, p.abstract, p.pdf_url, p.doi, p.pdf_path, p.added_at
		 FROM papers_fts
		 JOIN papers p ON p.rowid = papers_fts.rowid
		 WHERE papers_fts MATCH ?
		 ORDER BY papers_fts.rank
		 LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching library: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}
