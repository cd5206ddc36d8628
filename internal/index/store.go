// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index records batch extraction runs in a SQLite database. It
// remembers the content hash of every extracted document so unchanged
// syllabi are skipped on the next run, and it serves the review queue of
// results flagged for a human.
package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/syllabus-engine/pkg/types"
)

const dbFile = "syllabi.db"

// timeLayout is a fixed-width UTC timestamp so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages the run index database.
type Store struct {
	db  *sql.DB
	dir string
}

// RunCounts holds the per-run document counts stored with a finished run.
type RunCounts struct {
	Extracted int
	Skipped   int
	Failed    int
}

// Run is a recorded batch run.
type Run struct {
	ID         string     `json:"id" yaml:"id"`
	StartedAt  time.Time  `json:"started_at" yaml:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	Extracted  int        `json:"extracted" yaml:"extracted"`
	Skipped    int        `json:"skipped" yaml:"skipped"`
	Failed     int        `json:"failed" yaml:"failed"`
}

// Document is the indexed summary of one extraction result.
type Document struct {
	ID              string    `json:"id" yaml:"id"`
	CourseCode      string    `json:"course_code,omitempty" yaml:"course_code,omitempty"`
	Confidence      float64   `json:"confidence" yaml:"confidence"`
	SchemeClosed    bool      `json:"scheme_closed" yaml:"scheme_closed"`
	NeedsReview     bool      `json:"needs_review" yaml:"needs_review"`
	AssessmentCount int       `json:"assessment_count" yaml:"assessment_count"`
	AssessmentTotal float64   `json:"assessment_total" yaml:"assessment_total"`
	MeetingCount    int       `json:"meeting_count" yaml:"meeting_count"`
	RunID           string    `json:"run_id" yaml:"run_id"`
	UpdatedAt       time.Time `json:"updated_at" yaml:"updated_at"`
}

// NewStore opens or creates the index database at cfg.Dir/syllabi.db and
// creates the schema if it does not exist.
func NewStore(cfg types.IndexConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = filepath.Join("syllabi", "index")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Batch workers share the store; serialize writers on one connection.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, dir: dir}
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

// Dir returns the directory holding the database.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			extracted INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			content_hash TEXT NOT NULL,
			course_code TEXT,
			confidence REAL NOT NULL,
			scheme_closed INTEGER NOT NULL,
			needs_review INTEGER NOT NULL,
			assessment_count INTEGER NOT NULL,
			assessment_total REAL NOT NULL DEFAULT 0,
			meeting_count INTEGER NOT NULL,
			run_id TEXT NOT NULL REFERENCES runs(id),
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_review ON documents(needs_review, confidence)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BeginRun records the start of a batch run and returns its ID.
func (s *Store) BeginRun(ctx context.Context) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at) VALUES (?, ?)`,
		id, time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	return id, nil
}

// FinishRun stamps a run with its finish time and counts.
func (s *Store) FinishRun(ctx context.Context, runID string, counts RunCounts) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, extracted = ?, skipped = ?, failed = ? WHERE id = ?`,
		time.Now().UTC().Format(timeLayout),
		counts.Extracted, counts.Skipped, counts.Failed, runID,
	)
	if err != nil {
		return fmt.Errorf("finishing run %s: %w", runID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finishing run %s: %w", runID, sql.ErrNoRows)
	}
	return nil
}

// Changed reports whether docID is new or its content hash differs from the
// one recorded by the last extraction.
func (s *Store) Changed(ctx context.Context, docID, contentHash string) (bool, error) {
	var stored string
	err := s.db.QueryRowContext(ctx,
		`SELECT content_hash FROM documents WHERE id = ?`, docID,
	).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("looking up %s: %w", docID, err)
	}
	return stored != contentHash, nil
}

// Record upserts the summary of result under docID for runID.
func (s *Store) Record(ctx context.Context, runID, docID, contentHash string, result *types.ExtractionResult) error {
	code := ""
	if result.CourseCode != nil {
		code = result.CourseCode.String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, content_hash, course_code, confidence, scheme_closed,
			needs_review, assessment_count, assessment_total, meeting_count, run_id, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			content_hash=excluded.content_hash, course_code=excluded.course_code,
			confidence=excluded.confidence, scheme_closed=excluded.scheme_closed,
			needs_review=excluded.needs_review, assessment_count=excluded.assessment_count,
			assessment_total=excluded.assessment_total,
			meeting_count=excluded.meeting_count, run_id=excluded.run_id,
			updated_at=excluded.updated_at`,
		docID, contentHash, code, result.Confidence, result.SchemeClosed,
		result.NeedsReview, len(result.Assessments), result.AssessmentTotal(), len(result.MeetingTimes),
		runID, time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("recording %s: %w", docID, err)
	}
	return nil
}

// ReviewQueue returns documents flagged for review, lowest confidence first.
func (s *Store) ReviewQueue(ctx context.Context) ([]Document, error) {
	return s.documents(ctx, `WHERE needs_review = 1 ORDER BY confidence ASC, id ASC`)
}

// Documents returns every indexed document ordered by ID.
func (s *Store) Documents(ctx context.Context) ([]Document, error) {
	return s.documents(ctx, `ORDER BY id ASC`)
}

func (s *Store) documents(ctx context.Context, clause string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, COALESCE(course_code, ''), confidence, scheme_closed, needs_review,
			assessment_count, assessment_total, meeting_count, run_id, updated_at
		 FROM documents `+clause)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var d Document
		var updated string
		if err := rows.Scan(&d.ID, &d.CourseCode, &d.Confidence, &d.SchemeClosed,
			&d.NeedsReview, &d.AssessmentCount, &d.AssessmentTotal, &d.MeetingCount, &d.RunID, &updated); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		d.UpdatedAt, _ = time.Parse(timeLayout, updated)
		out = append(out, d)
	}
	return out, rows.Err()
}

// LastRun returns the most recently started run, or nil when none exist.
func (s *Store) LastRun(ctx context.Context) (*Run, error) {
	var r Run
	var started string
	var finished sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, extracted, skipped, failed
		 FROM runs ORDER BY started_at DESC LIMIT 1`,
	).Scan(&r.ID, &started, &finished, &r.Extracted, &r.Skipped, &r.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying last run: %w", err)
	}
	r.StartedAt, _ = time.Parse(timeLayout, started)
	if finished.Valid {
		t, _ := time.Parse(timeLayout, finished.String)
		r.FinishedAt = &t
	}
	return &r, nil
}
