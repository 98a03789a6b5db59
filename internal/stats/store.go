// Package stats persists usage statistics: an append-only session log
// and a per-date accumulated summary.
package stats

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/nvezhov/eyeguardd/internal/db"
)

// DailySummary is one accumulated row of the daily usage log.
type DailySummary struct {
	Date         string `json:"date"`
	UsageSeconds int64  `json:"usage_seconds"`
	RestPeriods  int64  `json:"rest_periods"`
}

// Store reads and writes usage statistics.
type Store struct {
	db *db.DB
}

// NewStore creates a store over an open database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// RecordSession appends a session row and merges its totals into the
// daily summary for the session's end date. Repeated sessions on the
// same date accumulate rather than overwrite.
func (s *Store) RecordSession(sessionID string, startedAt, endedAt time.Time, restPeriods int) error {
	usageSeconds := int64(endedAt.Sub(startedAt).Seconds())
	if usageSeconds < 0 {
		usageSeconds = 0
	}

	_, err := s.db.Exec(`
		INSERT INTO sessions (id, started_at, ended_at, usage_seconds, rest_periods)
		VALUES (?, ?, ?, ?, ?)
	`, sessionID, startedAt.UTC().Unix(), endedAt.UTC().Unix(), usageSeconds, restPeriods)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	date := endedAt.Format("2006-01-02")
	_, err = s.db.Exec(`
		INSERT INTO usage_stats (date, usage_seconds, rest_periods, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			usage_seconds = usage_seconds + excluded.usage_seconds,
			rest_periods = rest_periods + excluded.rest_periods,
			updated_at = excluded.updated_at
	`, date, usageSeconds, restPeriods, time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("merge daily summary: %w", err)
	}

	log.Info().
		Str("session", sessionID).
		Str("date", date).
		Int64("usage_seconds", usageSeconds).
		Int("rest_periods", restPeriods).
		Msg("Session recorded")
	return nil
}

// Summary returns the accumulated row for a date, or a zero row when the
// date has no entry.
func (s *Store) Summary(date string) (DailySummary, error) {
	row := s.db.QueryRow(`
		SELECT date, usage_seconds, rest_periods FROM usage_stats WHERE date = ?
	`, date)

	var sum DailySummary
	err := row.Scan(&sum.Date, &sum.UsageSeconds, &sum.RestPeriods)
	if err == sql.ErrNoRows {
		return DailySummary{Date: date}, nil
	}
	if err != nil {
		return DailySummary{}, fmt.Errorf("query daily summary: %w", err)
	}
	return sum, nil
}

// Recent returns the daily summaries for the last n days that have
// entries, newest first.
func (s *Store) Recent(n int) ([]DailySummary, error) {
	rows, err := s.db.Query(`
		SELECT date, usage_seconds, rest_periods
		FROM usage_stats
		ORDER BY date DESC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("query recent summaries: %w", err)
	}
	defer rows.Close()

	var out []DailySummary
	for rows.Next() {
		var sum DailySummary
		if err := rows.Scan(&sum.Date, &sum.UsageSeconds, &sum.RestPeriods); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Session tracks one daemon run from start to shutdown.
type Session struct {
	ID        string
	StartedAt time.Time
}

// NewSession begins tracking a daemon run.
func NewSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}
}

// Finish records the session with its rest period count.
func (s *Session) Finish(store *Store, restPeriods int) error {
	return store.RecordSession(s.ID, s.StartedAt, time.Now(), restPeriods)
}
