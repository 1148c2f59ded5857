/*-------------------------------------------------------------------------
 *
 * pgEdge NetSuite Connect Agent
 *
 * Portions copyright (c) 2026, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

// Package learning persists validation outcomes and agent feedback in a
// local SQLite database. The record of which generated queries were
// rejected, and why, feeds back into prompt construction and schema
// curation.
package learning

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"pgedge-netsuite-mcp/internal/diag"
)

// ValidationRecord is one validation outcome
type ValidationRecord struct {
	ID            string    `json:"id"`
	Question      string    `json:"question,omitempty"` // the natural-language ask, when known
	SQL           string    `json:"sql"`
	Status        string    `json:"status"` // approved or rejected
	Diagnostics   diag.List `json:"diagnostics,omitempty"`
	SchemaRelease string    `json:"schema_release"`
	CreatedAt     time.Time `json:"created_at"`
}

// FeedbackRecord is an agent's or reviewer's verdict on an earlier
// validation, optionally with a corrected query
type FeedbackRecord struct {
	ID           string    `json:"id"`
	ValidationID string    `json:"validation_id"`
	Verdict      string    `json:"verdict"` // correct, wrong_result, wrong_query
	CorrectedSQL string    `json:"corrected_sql,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store manages outcome persistence using SQLite
type Store struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string
}

// NewStore opens (or creates) the learning database at the given path
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &Store{
		db:   db,
		path: dbPath,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the necessary tables
func (s *Store) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS validations (
        id TEXT PRIMARY KEY,
        question TEXT DEFAULT '',
        sql_text TEXT NOT NULL,
        status TEXT NOT NULL,
        diagnostics TEXT DEFAULT '[]',
        schema_release TEXT NOT NULL,
        created_at DATETIME NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_validations_status
        ON validations(status);

    CREATE INDEX IF NOT EXISTS idx_validations_created_at
        ON validations(created_at DESC);

    CREATE TABLE IF NOT EXISTS feedback (
        id TEXT PRIMARY KEY,
        validation_id TEXT NOT NULL REFERENCES validations(id),
        verdict TEXT NOT NULL,
        corrected_sql TEXT DEFAULT '',
        notes TEXT DEFAULT '',
        created_at DATETIME NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_feedback_validation
        ON feedback(validation_id);
    `

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// generateID creates a unique record ID
func generateID(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

// RecordValidation stores one validation outcome and returns the record
// with its assigned ID
func (s *Store) RecordValidation(question, sqlText, status string, diags diag.List, release string) (*ValidationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := &ValidationRecord{
		ID:            generateID("val"),
		Question:      question,
		SQL:           sqlText,
		Status:        status,
		Diagnostics:   diags,
		SchemaRelease: release,
		CreatedAt:     time.Now().UTC(),
	}

	diagsJSON, err := json.Marshal(diags)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal diagnostics: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO validations (id, question, sql_text, status, diagnostics, schema_release, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Question, rec.SQL, rec.Status, string(diagsJSON), rec.SchemaRelease, rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert validation record: %w", err)
	}

	return rec, nil
}

// RecordFeedback stores a verdict on an earlier validation
func (s *Store) RecordFeedback(validationID, verdict, correctedSQL, notes string) (*FeedbackRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// verify the validation exists before taking feedback on it
	var exists string
	err := s.db.QueryRow("SELECT id FROM validations WHERE id = ?", validationID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("validation %s not found", validationID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query validation: %w", err)
	}

	rec := &FeedbackRecord{
		ID:           generateID("fb"),
		ValidationID: validationID,
		Verdict:      verdict,
		CorrectedSQL: correctedSQL,
		Notes:        notes,
		CreatedAt:    time.Now().UTC(),
	}

	_, err = s.db.Exec(
		`INSERT INTO feedback (id, validation_id, verdict, corrected_sql, notes, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ValidationID, rec.Verdict, rec.CorrectedSQL, rec.Notes, rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert feedback record: %w", err)
	}

	return rec, nil
}

// RecentRejections returns the newest rejected validations, newest first.
// These are the examples worth showing an agent before its next attempt.
func (s *Store) RecentRejections(limit int) ([]ValidationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, question, sql_text, status, diagnostics, schema_release, created_at
         FROM validations WHERE status = 'rejected'
         ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query rejections: %w", err)
	}
	defer rows.Close()

	return scanValidations(rows)
}

// List returns validation records, newest first
func (s *Store) List(limit, offset int) ([]ValidationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = 50
	}

	rows, err := s.db.Query(
		`SELECT id, question, sql_text, status, diagnostics, schema_release, created_at
         FROM validations ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query validations: %w", err)
	}
	defer rows.Close()

	return scanValidations(rows)
}

// Stats reports how many validations ended in each status
func (s *Store) Stats() (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT status, COUNT(*) FROM validations GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

func scanValidations(rows *sql.Rows) ([]ValidationRecord, error) {
	var out []ValidationRecord
	for rows.Next() {
		var rec ValidationRecord
		var diagsJSON string
		if err := rows.Scan(&rec.ID, &rec.Question, &rec.SQL, &rec.Status,
			&diagsJSON, &rec.SchemaRelease, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if diagsJSON != "" {
			if err := json.Unmarshal([]byte(diagsJSON), &rec.Diagnostics); err != nil {
				return nil, fmt.Errorf("failed to unmarshal diagnostics: %w", err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
