// Package storage - daily statistics tracking for rate limiting
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"linkedin-easyapply/internal/models"
)

// StatsStore handles daily statistics database operations
type StatsStore struct {
	db *Database
}

// NewStatsStore creates a new StatsStore
func NewStatsStore(db *Database) *StatsStore {
	return &StatsStore{db: db}
}

// GetOrCreateToday gets today's stats or creates a new record
func (s *StatsStore) GetOrCreateToday() (*models.DailyStats, error) {
	today := GetTodayDate()
	now := time.Now()

	// Try to get existing
	stats, err := s.GetByDate(today)
	if err != nil {
		return nil, err
	}

	if stats != nil {
		return stats, nil
	}

	// Create new record for today
	result, err := s.db.db.Exec(`
		INSERT INTO daily_stats (date, applications_sent, jobs_viewed, blocks_detected, last_activity_at, created_at, updated_at)
		VALUES (?, 0, 0, 0, ?, ?, ?)
	`, today, now, now, now)

	if err != nil {
		return nil, fmt.Errorf("failed to create daily stats: %w", err)
	}

	id, _ := result.LastInsertId()

	return &models.DailyStats{
		ID:               id,
		Date:             today,
		ApplicationsSent: 0,
		JobsViewed:       0,
		BlocksDetected:   0,
		LastActivityAt:   now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// GetByDate retrieves stats for a specific date
func (s *StatsStore) GetByDate(date string) (*models.DailyStats, error) {
	stats := &models.DailyStats{}

	err := s.db.db.QueryRow(`
		SELECT id, date, applications_sent, jobs_viewed, blocks_detected, last_activity_at, created_at, updated_at
		FROM daily_stats WHERE date = ?
	`, date).Scan(
		&stats.ID, &stats.Date, &stats.ApplicationsSent, &stats.JobsViewed,
		&stats.BlocksDetected, &stats.LastActivityAt, &stats.CreatedAt, &stats.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stats: %w", err)
	}

	return stats, nil
}

// IncrementApplications increments today's submitted application count
func (s *StatsStore) IncrementApplications() error {
	today := GetTodayDate()
	now := time.Now()

	// Ensure today's record exists
	_, err := s.GetOrCreateToday()
	if err != nil {
		return err
	}

	_, err = s.db.db.Exec(`
		UPDATE daily_stats
		SET applications_sent = applications_sent + 1, last_activity_at = ?, updated_at = ?
		WHERE date = ?
	`, now, now, today)

	if err != nil {
		return fmt.Errorf("failed to increment applications: %w", err)
	}

	return nil
}

// IncrementJobsViewed adds to today's viewed job count
func (s *StatsStore) IncrementJobsViewed(count int) error {
	today := GetTodayDate()
	now := time.Now()

	// Ensure today's record exists
	_, err := s.GetOrCreateToday()
	if err != nil {
		return err
	}

	_, err = s.db.db.Exec(`
		UPDATE daily_stats
		SET jobs_viewed = jobs_viewed + ?, last_activity_at = ?, updated_at = ?
		WHERE date = ?
	`, count, now, now, today)

	if err != nil {
		return fmt.Errorf("failed to increment jobs viewed: %w", err)
	}

	return nil
}

// IncrementBlocks increments today's detected block-signal count
func (s *StatsStore) IncrementBlocks() error {
	today := GetTodayDate()
	now := time.Now()

	// Ensure today's record exists
	_, err := s.GetOrCreateToday()
	if err != nil {
		return err
	}

	_, err = s.db.db.Exec(`
		UPDATE daily_stats
		SET blocks_detected = blocks_detected + 1, last_activity_at = ?, updated_at = ?
		WHERE date = ?
	`, now, now, today)

	if err != nil {
		return fmt.Errorf("failed to increment blocks: %w", err)
	}

	return nil
}

// GetWeeklyStats retrieves stats for the last 7 days
func (s *StatsStore) GetWeeklyStats() ([]*models.DailyStats, error) {
	rows, err := s.db.db.Query(`
		SELECT id, date, applications_sent, jobs_viewed, blocks_detected, last_activity_at, created_at, updated_at
		FROM daily_stats
		WHERE date >= DATE('now', '-7 days')
		ORDER BY date DESC
	`)

	if err != nil {
		return nil, fmt.Errorf("failed to get weekly stats: %w", err)
	}
	defer rows.Close()

	var stats []*models.DailyStats
	for rows.Next() {
		st := &models.DailyStats{}
		err := rows.Scan(
			&st.ID, &st.Date, &st.ApplicationsSent, &st.JobsViewed,
			&st.BlocksDetected, &st.LastActivityAt, &st.CreatedAt, &st.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		stats = append(stats, st)
	}

	return stats, rows.Err()
}

// CanApply checks if another application is allowed under the daily limit
func (s *StatsStore) CanApply(limit int) (bool, int, error) {
	stats, err := s.GetOrCreateToday()
	if err != nil {
		return false, 0, err
	}

	remaining := limit - stats.ApplicationsSent
	return remaining > 0, remaining, nil
}
