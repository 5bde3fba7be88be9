// Package storage - job application CRUD operations
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"linkedin-easyapply/internal/models"
)

// ApplicationStore handles job application database operations
type ApplicationStore struct {
	db *Database
}

// NewApplicationStore creates a new ApplicationStore
func NewApplicationStore(db *Database) *ApplicationStore {
	return &ApplicationStore{db: db}
}

// Save inserts or updates a job application, keyed on the unique job URL
func (s *ApplicationStore) Save(app *models.JobApplication) error {
	now := time.Now()

	result, err := s.db.db.Exec(`
		INSERT INTO job_applications (linkedin_job_id, job_title, company_name, job_url, location, status,
			application_date, cover_letter_generated, cover_letter_text, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_url) DO UPDATE SET
			linkedin_job_id = excluded.linkedin_job_id,
			job_title = excluded.job_title,
			company_name = excluded.company_name,
			location = excluded.location,
			status = excluded.status,
			application_date = excluded.application_date,
			cover_letter_generated = excluded.cover_letter_generated,
			cover_letter_text = excluded.cover_letter_text,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`, app.LinkedInJobID, app.JobTitle, app.CompanyName, app.JobURL, app.Location, app.Status,
		app.ApplicationDate, app.CoverLetterGenerated, app.CoverLetterText, app.Notes, now, now)

	if err != nil {
		return fmt.Errorf("failed to save application: %w", err)
	}

	// Get the ID if it was an insert
	if app.ID == 0 {
		id, err := result.LastInsertId()
		if err == nil {
			app.ID = id
		}
	}

	return nil
}

// GetByURL retrieves an application by job URL; returns (nil, nil) when absent
func (s *ApplicationStore) GetByURL(url string) (*models.JobApplication, error) {
	app := &models.JobApplication{}

	err := s.db.db.QueryRow(`
		SELECT id, linkedin_job_id, job_title, company_name, job_url, location, status,
			application_date, cover_letter_generated, cover_letter_text, notes, created_at, updated_at
		FROM job_applications WHERE job_url = ?
	`, url).Scan(
		&app.ID, &app.LinkedInJobID, &app.JobTitle, &app.CompanyName, &app.JobURL,
		&app.Location, &app.Status, &app.ApplicationDate, &app.CoverLetterGenerated,
		&app.CoverLetterText, &app.Notes, &app.CreatedAt, &app.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return app, nil
}

// GetByJobID retrieves an application by the site's job id; returns (nil, nil) when absent
func (s *ApplicationStore) GetByJobID(jobID string) (*models.JobApplication, error) {
	app := &models.JobApplication{}

	err := s.db.db.QueryRow(`
		SELECT id, linkedin_job_id, job_title, company_name, job_url, location, status,
			application_date, cover_letter_generated, cover_letter_text, notes, created_at, updated_at
		FROM job_applications WHERE linkedin_job_id = ?
	`, jobID).Scan(
		&app.ID, &app.LinkedInJobID, &app.JobTitle, &app.CompanyName, &app.JobURL,
		&app.Location, &app.Status, &app.ApplicationDate, &app.CoverLetterGenerated,
		&app.CoverLetterText, &app.Notes, &app.CreatedAt, &app.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return app, nil
}

// GetByStatus retrieves applications with a given status, oldest first
func (s *ApplicationStore) GetByStatus(status models.ApplicationStatus, limit int) ([]*models.JobApplication, error) {
	rows, err := s.db.db.Query(`
		SELECT id, linkedin_job_id, job_title, company_name, job_url, location, status,
			application_date, cover_letter_generated, cover_letter_text, notes, created_at, updated_at
		FROM job_applications
		WHERE status = ?
		ORDER BY created_at ASC
		LIMIT ?
	`, status, limit)

	if err != nil {
		return nil, fmt.Errorf("failed to get applications by status: %w", err)
	}
	defer rows.Close()

	return s.scanApplications(rows)
}

// UpdateStatus updates the status and note of an application
func (s *ApplicationStore) UpdateStatus(id int64, status models.ApplicationStatus, notes string) error {
	_, err := s.db.db.Exec(`
		UPDATE job_applications SET status = ?, notes = ?, updated_at = ? WHERE id = ?
	`, status, notes, time.Now(), id)

	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}

	return nil
}

// MarkApplied records a successful submission with its cover-letter details
func (s *ApplicationStore) MarkApplied(id int64, coverLetterUsed bool, coverLetterText, notes string) error {
	_, err := s.db.db.Exec(`
		UPDATE job_applications
		SET status = ?, application_date = ?, cover_letter_generated = ?, cover_letter_text = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`, models.StatusApplied, time.Now(), coverLetterUsed, coverLetterText, notes, time.Now(), id)

	if err != nil {
		return fmt.Errorf("failed to mark application applied: %w", err)
	}

	return nil
}

// Exists checks if a job URL already has a record
func (s *ApplicationStore) Exists(url string) (bool, error) {
	var count int
	err := s.db.db.QueryRow(`SELECT COUNT(*) FROM job_applications WHERE job_url = ?`, url).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check application existence: %w", err)
	}
	return count > 0, nil
}

// Count returns the total number of application records
func (s *ApplicationStore) Count() (int, error) {
	var count int
	err := s.db.db.QueryRow(`SELECT COUNT(*) FROM job_applications`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count applications: %w", err)
	}
	return count, nil
}

// CountByStatus returns the count of applications with a specific status
func (s *ApplicationStore) CountByStatus(status models.ApplicationStatus) (int, error) {
	var count int
	err := s.db.db.QueryRow(`SELECT COUNT(*) FROM job_applications WHERE status = ?`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count applications by status: %w", err)
	}
	return count, nil
}

// IsTerminal reports whether a record's status means the job needs no further
// processing this run
func IsTerminal(status models.ApplicationStatus) bool {
	switch status {
	case models.StatusApplied, models.StatusSkipped, models.StatusManualReview:
		return true
	}
	return false
}

// scanApplications scans rows into an application slice
func (s *ApplicationStore) scanApplications(rows *sql.Rows) ([]*models.JobApplication, error) {
	var apps []*models.JobApplication

	for rows.Next() {
		app := &models.JobApplication{}
		err := rows.Scan(
			&app.ID, &app.LinkedInJobID, &app.JobTitle, &app.CompanyName, &app.JobURL,
			&app.Location, &app.Status, &app.ApplicationDate, &app.CoverLetterGenerated,
			&app.CoverLetterText, &app.Notes, &app.CreatedAt, &app.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, app)
	}

	return apps, rows.Err()
}
