package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkedin-easyapply/internal/models"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func sampleApplication() *models.JobApplication {
	return &models.JobApplication{
		LinkedInJobID: "3812345678",
		JobTitle:      "Backend Engineer",
		CompanyName:   "Acme",
		JobURL:        "https://www.linkedin.com/jobs/view/3812345678/",
		Location:      "Madrid, Spain",
		Status:        models.StatusViewed,
	}
}

func TestApplicationSaveAndGetByURL(t *testing.T) {
	store := NewApplicationStore(newTestDB(t))

	app := sampleApplication()
	require.NoError(t, store.Save(app))
	assert.NotZero(t, app.ID)

	got, err := store.GetByURL(app.JobURL)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Backend Engineer", got.JobTitle)
	assert.Equal(t, models.StatusViewed, got.Status)
}

func TestApplicationGetByURLMissing(t *testing.T) {
	store := NewApplicationStore(newTestDB(t))

	got, err := store.GetByURL("https://www.linkedin.com/jobs/view/999/")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestApplicationSaveUpsertsOnURL(t *testing.T) {
	store := NewApplicationStore(newTestDB(t))

	app := sampleApplication()
	require.NoError(t, store.Save(app))

	app.Status = models.StatusFailed
	app.Notes = "gave up after 20 steps"
	require.NoError(t, store.Save(app))

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := store.GetByURL(app.JobURL)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, got.Status)
	assert.Equal(t, "gave up after 20 steps", got.Notes)
}

func TestApplicationMarkApplied(t *testing.T) {
	store := NewApplicationStore(newTestDB(t))

	app := sampleApplication()
	require.NoError(t, store.Save(app))

	require.NoError(t, store.MarkApplied(app.ID, true, "Dear hiring team...", "cover letter field identified with low confidence"))

	got, err := store.GetByJobID(app.LinkedInJobID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.StatusApplied, got.Status)
	assert.True(t, got.CoverLetterGenerated)
	assert.Equal(t, "Dear hiring team...", got.CoverLetterText)
	assert.NotNil(t, got.ApplicationDate)
}

func TestApplicationUpdateStatus(t *testing.T) {
	store := NewApplicationStore(newTestDB(t))

	app := sampleApplication()
	require.NoError(t, store.Save(app))

	require.NoError(t, store.UpdateStatus(app.ID, models.StatusManualReview, "apply button not found"))

	got, err := store.GetByURL(app.JobURL)
	require.NoError(t, err)
	assert.Equal(t, models.StatusManualReview, got.Status)
	assert.Equal(t, "apply button not found", got.Notes)
}

func TestApplicationCountByStatus(t *testing.T) {
	store := NewApplicationStore(newTestDB(t))

	first := sampleApplication()
	require.NoError(t, store.Save(first))

	second := sampleApplication()
	second.LinkedInJobID = "3812345679"
	second.JobURL = "https://www.linkedin.com/jobs/view/3812345679/"
	second.Status = models.StatusApplied
	require.NoError(t, store.Save(second))

	applied, err := store.CountByStatus(models.StatusApplied)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	viewed, err := store.CountByStatus(models.StatusViewed)
	require.NoError(t, err)
	assert.Equal(t, 1, viewed)
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(models.StatusApplied))
	assert.True(t, IsTerminal(models.StatusSkipped))
	assert.True(t, IsTerminal(models.StatusManualReview))

	assert.False(t, IsTerminal(models.StatusPending))
	assert.False(t, IsTerminal(models.StatusViewed))
	assert.False(t, IsTerminal(models.StatusFailed))
	assert.False(t, IsTerminal(models.StatusError))
}

func TestStatsIncrementAndDailyBudget(t *testing.T) {
	store := NewStatsStore(newTestDB(t))

	canApply, remaining, err := store.CanApply(2)
	require.NoError(t, err)
	assert.True(t, canApply)
	assert.Equal(t, 2, remaining)

	require.NoError(t, store.IncrementApplications())
	require.NoError(t, store.IncrementApplications())

	canApply, remaining, err = store.CanApply(2)
	require.NoError(t, err)
	assert.False(t, canApply)
	assert.Equal(t, 0, remaining)
}

func TestStatsTracksViewsAndBlocks(t *testing.T) {
	store := NewStatsStore(newTestDB(t))

	require.NoError(t, store.IncrementJobsViewed(12))
	require.NoError(t, store.IncrementBlocks())

	stats, err := store.GetOrCreateToday()
	require.NoError(t, err)
	assert.Equal(t, 12, stats.JobsViewed)
	assert.Equal(t, 1, stats.BlocksDetected)
}
