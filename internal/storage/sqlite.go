// Package storage provides the data persistence layer for user feedback.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/common"
	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/model"
)

// SQLiteStorage implements the feedback store using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// SaveFeedback appends a user correction and returns its assigned id.
// Records are immutable once written.
func (s *SQLiteStorage) SaveFeedback(ctx context.Context, text, correctLabel, userID string) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(text, "text"); err != nil {
		return 0, err
	}
	if err := validateString(correctLabel, "correctLabel"); err != nil {
		return 0, err
	}

	var user sql.NullString
	if userID != "" {
		user = sql.NullString{String: userID, Valid: true}
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback (text, correct_label, user_id, created_at) VALUES (?, ?, ?, ?)`,
		text, correctLabel, user, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to save feedback: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get feedback id: %w", err)
	}
	return id, nil
}

// ListFeedback returns stored corrections oldest first. A limit of 0 returns
// all records.
func (s *SQLiteStorage) ListFeedback(ctx context.Context, limit int) ([]model.FeedbackRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT id, text, correct_label, user_id, created_at FROM feedback ORDER BY created_at ASC, id ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	var records []model.FeedbackRecord
	for rows.Next() {
		rec, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feedback: %w", err)
	}
	return records, nil
}

// CountFeedback returns the total number of stored corrections.
func (s *SQLiteStorage) CountFeedback(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM feedback`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count feedback: %w", err)
	}
	return count, nil
}

// ClearFeedback deletes all stored corrections. This is the only way feedback
// records are ever removed.
func (s *SQLiteStorage) ClearFeedback(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM feedback`); err != nil {
		return fmt.Errorf("failed to clear feedback: %w", err)
	}
	return nil
}

// RecentFeedback returns corrections created at or after the cutoff, newest
// first.
func (s *SQLiteStorage) RecentFeedback(ctx context.Context, since time.Time) ([]model.FeedbackRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, correct_label, user_id, created_at FROM feedback
		 WHERE created_at >= ? ORDER BY created_at DESC, id DESC`,
		since.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to query recent feedback: %w", err)
	}
	defer rows.Close()

	var records []model.FeedbackRecord
	for rows.Next() {
		rec, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feedback: %w", err)
	}
	return records, nil
}

func scanFeedback(rows *sql.Rows) (model.FeedbackRecord, error) {
	var rec model.FeedbackRecord
	var user sql.NullString
	var createdAt int64
	if err := rows.Scan(&rec.ID, &rec.Text, &rec.CorrectLabel, &user, &createdAt); err != nil {
		return model.FeedbackRecord{}, fmt.Errorf("%w: failed to scan feedback row: %v", common.ErrDatabaseCorrupted, err)
	}
	if user.Valid {
		rec.UserID = user.String
	}
	rec.CreatedAt = time.Unix(createdAt, 0).UTC()
	return rec, nil
}
