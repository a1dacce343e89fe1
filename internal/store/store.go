// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store keeps a SQLite history of acquisition outcomes and mined
// matches so repeated runs can be inspected without re-reading article
// directories.
package store

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

	"github.com/pdiddy/refminer/pkg/types"
)

// DefaultPath is used when StoreConfig.Path is empty.
const DefaultPath = "refminer.db"

// DefaultHistoryLimit bounds History when the caller passes zero.
const DefaultHistoryLimit = 20

// Store manages the history database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens or creates the database at cfg.Path and creates the schema
// if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
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

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS acquisitions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			refid TEXT NOT NULL,
			status TEXT NOT NULL,
			source TEXT,
			url TEXT,
			path TEXT,
			message TEXT,
			accession TEXT,
			supplements TEXT,
			links TEXT,
			recorded_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_acquisitions_refid ON acquisitions(refid)`,
		`CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			refid TEXT NOT NULL,
			term TEXT NOT NULL,
			file TEXT NOT NULL,
			context TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_refid ON matches(refid)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_term ON matches(term)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record appends one acquisition outcome.
func (s *Store) Record(ctx context.Context, res types.AcquisitionResult) error {
	supplementsJSON, _ := json.Marshal(res.Supplements)
	linksJSON, _ := json.Marshal(res.Links)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO acquisitions (refid, status, source, url, path, message, accession, supplements, links, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RefID, string(res.Status), res.Source, res.URL, res.Path, res.Message,
		res.Accession, string(supplementsJSON), string(linksJSON), s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("recording acquisition %s: %w", res.RefID, err)
	}
	return nil
}

// RecordMatches replaces the stored matches of refID with the contents of
// c. An empty collector clears them.
func (s *Store) RecordMatches(ctx context.Context, refID string, c types.Collector) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM matches WHERE refid = ?`, refID); err != nil {
		return fmt.Errorf("deleting old matches: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO matches (refid, term, file, context, recorded_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := s.timestamp()
	for _, m := range c.Matches() {
		if _, err := stmt.ExecContext(ctx, refID, m.Term, m.File, m.Context, now); err != nil {
			return fmt.Errorf("inserting match %q: %w", m.Term, err)
		}
	}
	return tx.Commit()
}

// Entry is one row of acquisition history.
type Entry struct {
	RefID       string       `json:"refid" yaml:"refid"`
	Status      types.Status `json:"status" yaml:"status"`
	Source      string       `json:"source" yaml:"source"`
	URL         string       `json:"url,omitempty" yaml:"url,omitempty"`
	Path        string       `json:"path,omitempty" yaml:"path,omitempty"`
	Message     string       `json:"message,omitempty" yaml:"message,omitempty"`
	Accession   string       `json:"accession,omitempty" yaml:"accession,omitempty"`
	Supplements []string     `json:"supplements,omitempty" yaml:"supplements,omitempty"`
	Links       types.Links  `json:"links,omitempty" yaml:"links,omitempty"`
	RecordedAt  time.Time    `json:"recorded_at" yaml:"recorded_at"`
	Matches     int          `json:"matches" yaml:"matches"`
}

// History returns the most recent acquisitions, newest first, each with the
// number of matches stored for its article. A non-positive limit uses
// DefaultHistoryLimit.
func (s *Store) History(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.refid, a.status, a.source, a.url, a.path, a.message, a.accession,
			a.supplements, a.links, a.recorded_at,
			(SELECT count(*) FROM matches m WHERE m.refid = a.refid)
		FROM acquisitions a
		ORDER BY a.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                     Entry
			status, recorded      string
			source, url, path     sql.NullString
			message, accession    sql.NullString
			supplements, linksRaw sql.NullString
		)
		if err := rows.Scan(&e.RefID, &status, &source, &url, &path, &message, &accession,
			&supplements, &linksRaw, &recorded, &e.Matches); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		e.Status = types.Status(status)
		e.Source = source.String
		e.URL = url.String
		e.Path = path.String
		e.Message = message.String
		e.Accession = accession.String
		if supplements.Valid && supplements.String != "" {
			json.Unmarshal([]byte(supplements.String), &e.Supplements)
		}
		if linksRaw.Valid && linksRaw.String != "" {
			json.Unmarshal([]byte(linksRaw.String), &e.Links)
		}
		e.RecordedAt, _ = time.Parse(time.RFC3339Nano, recorded)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Matches returns the stored matches of refID whose term contains the
// optional filter, in term, file, insertion order.
func (s *Store) Matches(ctx context.Context, refID, term string) ([]types.MinedMatch, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT term, file, context FROM matches WHERE refid = ?`)
	args = append(args, refID)
	if term != "" {
		qb.WriteString(` AND term LIKE ?`)
		args = append(args, "%"+term+"%")
	}
	qb.WriteString(` ORDER BY term, file, id`)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying matches: %w", err)
	}
	defer rows.Close()

	var out []types.MinedMatch
	for rows.Next() {
		var m types.MinedMatch
		if err := rows.Scan(&m.Term, &m.File, &m.Context); err != nil {
			return nil, fmt.Errorf("scanning match row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}
