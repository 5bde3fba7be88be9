// Package models contains shared data structures for the Easy-Apply automation tool.
package models

import (
	"time"
)

// ApplicationStatus represents the current state of a job application record
type ApplicationStatus string

const (
	StatusPending      ApplicationStatus = "Pending"       // Job discovered, not yet processed
	StatusViewed       ApplicationStatus = "Viewed"        // Job page opened but no attempt made
	StatusApplied      ApplicationStatus = "Applied"       // Application submitted successfully
	StatusSkipped      ApplicationStatus = "Skipped"       // Skipped (already applied, external apply, etc.)
	StatusFailed       ApplicationStatus = "Failed"        // Attempt made but the form defeated us
	StatusError        ApplicationStatus = "Error"         // Unexpected error during processing
	StatusManualReview ApplicationStatus = "Manual Review" // Needs a human to finish or verify
)

// JobApplication represents one job posting and the outcome of applying to it
type JobApplication struct {
	ID                   int64             `json:"id"`
	LinkedInJobID        string            `json:"linkedin_job_id"`
	JobTitle             string            `json:"job_title"`
	CompanyName          string            `json:"company_name"`
	JobURL               string            `json:"job_url"`
	Location             string            `json:"location"`
	Status               ApplicationStatus `json:"status"`
	ApplicationDate      *time.Time        `json:"application_date,omitempty"`
	CoverLetterGenerated bool              `json:"cover_letter_generated"`
	CoverLetterText      string            `json:"cover_letter_text,omitempty"`
	Notes                string            `json:"notes,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// JobDetails holds scraped information about a job posting, used for
// cover-letter generation and record keeping
type JobDetails struct {
	JobID       string `json:"job_id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Recruiter   string `json:"recruiter,omitempty"`
}

// ApplyOutcome is returned by the Easy-Apply step machine. CoverLetterNeeded
// is meaningful even when Success is false: it drives the two-phase flow
// (try without a letter, generate one only if the form asked for it).
type ApplyOutcome struct {
	Success           bool `json:"success"`
	IsEasyApply       bool `json:"is_easy_apply"`
	CoverLetterNeeded bool `json:"cover_letter_needed"`
	CoverLetterUsed   bool `json:"cover_letter_used"`
	// CoverLetterLowConfidence is set when the cover-letter field was
	// identified only by its size, with no keyword confirmation. The
	// orchestrator surfaces this in the persisted note for human review.
	CoverLetterLowConfidence bool `json:"cover_letter_low_confidence"`
	StepsTaken               int  `json:"steps_taken"`
}

// ApplicantProfile holds the fixed applicant data used for form defaults
// and cover-letter generation
type ApplicantProfile struct {
	FullName   string `yaml:"full_name"`
	City       string `yaml:"city"`
	Phone      string `yaml:"phone"`
	YearsExp   string `yaml:"years_experience"`
	ResumePath string `yaml:"resume_path"`
	Summary    string `yaml:"summary"`
}

// SearchParams holds parameters for a job search
type SearchParams struct {
	Keywords  []string `json:"keywords"`
	Location  string   `json:"location"`
	EasyApply bool     `json:"easy_apply"`
	PostedAge string   `json:"posted_age"` // e.g. "r86400" for last 24h
}

// JobCard is one scraped search-result entry
type JobCard struct {
	JobID    string `json:"job_id"`
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	URL      string `json:"url"`
}

// DailyStats tracks daily activity for rate limiting
type DailyStats struct {
	ID               int64     `json:"id"`
	Date             string    `json:"date"` // YYYY-MM-DD format
	ApplicationsSent int       `json:"applications_sent"`
	JobsViewed       int       `json:"jobs_viewed"`
	BlocksDetected   int       `json:"blocks_detected"`
	LastActivityAt   time.Time `json:"last_activity_at"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CheckpointType represents types of security checkpoints
type CheckpointType string

const (
	CheckpointNone            CheckpointType = "none"
	CheckpointTwoFactor       CheckpointType = "two_factor"
	CheckpointCaptcha         CheckpointType = "captcha"
	CheckpointPhoneVerify     CheckpointType = "phone_verify"
	CheckpointEmailVerify     CheckpointType = "email_verify"
	CheckpointUnusualActivity CheckpointType = "unusual_activity"
	CheckpointUnknown         CheckpointType = "unknown"
)

// LoginResult represents the outcome of a login attempt
type LoginResult struct {
	Success        bool           `json:"success"`
	CheckpointType CheckpointType `json:"checkpoint_type,omitempty"`
	ErrorMessage   string         `json:"error_message,omitempty"`
	SessionSaved   bool           `json:"session_saved"`
}
