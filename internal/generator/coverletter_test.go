package generator

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"linkedin-easyapply/internal/models"
)

func TestBuildPromptIncludesJobAndProfile(t *testing.T) {
	job := &models.JobDetails{
		JobID:       "123",
		Title:       "Backend Engineer",
		Company:     "Acme",
		Location:    "Madrid, Spain",
		Description: "We are looking for a Go developer.",
	}
	profile := models.ApplicantProfile{
		FullName: "Jane Doe",
		City:     "Madrid",
		YearsExp: "3",
		Summary:  "Go and distributed systems.",
	}

	prompt := BuildPrompt(job, profile, 2500)

	assert.Contains(t, prompt, "Backend Engineer")
	assert.Contains(t, prompt, "Acme")
	assert.Contains(t, prompt, "We are looking for a Go developer.")
	assert.Contains(t, prompt, "Jane Doe")
	assert.Contains(t, prompt, "under 2500 characters")
}

func TestBuildPromptIncludesRecruiterWhenKnown(t *testing.T) {
	job := &models.JobDetails{
		Title:     "Engineer",
		Company:   "Acme",
		Recruiter: "María García",
	}

	prompt := BuildPrompt(job, models.ApplicantProfile{FullName: "Jane"}, 2500)

	assert.Contains(t, prompt, "Hiring contact: María García")

	job.Recruiter = ""
	assert.NotContains(t, BuildPrompt(job, models.ApplicantProfile{FullName: "Jane"}, 2500), "Hiring contact")
}

func TestBuildPromptTruncatesLongDescriptions(t *testing.T) {
	job := &models.JobDetails{
		Title:       "Engineer",
		Company:     "Acme",
		Description: strings.Repeat("x", descriptionPromptLimit+500),
	}

	prompt := BuildPrompt(job, models.ApplicantProfile{FullName: "Jane"}, 2500)

	assert.LessOrEqual(t, strings.Count(prompt, "x"), descriptionPromptLimit)
}

func TestBuildPromptTruncationKeepsRunesWhole(t *testing.T) {
	// "ñ" is two bytes; an odd byte limit would land mid-rune without the
	// boundary backoff
	job := &models.JobDetails{
		Title:       "Engineer",
		Company:     "Acme",
		Description: strings.Repeat("ñ", descriptionPromptLimit),
	}

	prompt := BuildPrompt(job, models.ApplicantProfile{FullName: "Jane"}, 2500)

	assert.True(t, utf8.ValidString(prompt))
}

func TestClampLetterCutsAtSentenceBoundary(t *testing.T) {
	letter := "First sentence. Second sentence. Third sentence that runs long."

	clamped := ClampLetter(letter, 40)

	assert.Equal(t, "First sentence. Second sentence.", clamped)
}

func TestClampLetterShortTextUntouched(t *testing.T) {
	assert.Equal(t, "Short.", ClampLetter("  Short.  ", 100))
}

func TestClampLetterNoSentenceBoundary(t *testing.T) {
	letter := strings.Repeat("a", 100)

	clamped := ClampLetter(letter, 50)

	assert.Len(t, clamped, 50)
}

func TestClampLetterNeverSplitsRunes(t *testing.T) {
	letter := strings.Repeat("ñ", 40)

	clamped := ClampLetter(letter, 25)

	assert.True(t, utf8.ValidString(clamped))
	assert.LessOrEqual(t, len(clamped), 25)
	assert.Equal(t, strings.Repeat("ñ", 12), clamped)
}

func TestTruncateOnRune(t *testing.T) {
	assert.Equal(t, "sí", truncateOnRune("sí", 10))
	assert.Equal(t, "s", truncateOnRune("sí", 2))
	assert.Equal(t, "sí", truncateOnRune("sí señor", 3))
}
