package easyapply

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkedin-easyapply/internal/config"
)

func TestCandidateScoreWeights(t *testing.T) {
	keywords := []string{"easy apply"}

	cases := []struct {
		name string
		c    Candidate
		want int
	}{
		{"text only", Candidate{Text: "Easy Apply", Y: 600}, 5},
		{"aria only", Candidate{Aria: "Easy Apply to this job", Y: 600}, 4},
		{"class only", Candidate{Class: "easy apply-btn", Y: 600}, 3},
		{"id only", Candidate{ID: "easy apply", Y: 600}, 3},
		{"near top", Candidate{Text: "Easy Apply", Y: 100}, 7},
		{"upper half", Candidate{Text: "Easy Apply", Y: 400}, 6},
		{"everything", Candidate{Text: "Easy Apply", Aria: "easy apply", Class: "easy apply", ID: "easy apply", Y: 100}, 17},
		{"position alone never scores", Candidate{Text: "Save job", Y: 100}, 0},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.c.Score(keywords), tc.name)
	}
}

func TestPickBestPrefersHighestScore(t *testing.T) {
	keywords := []string{"apply"}

	candidates := []Candidate{
		{Text: "Save", Visible: true, Enabled: true, Y: 600},
		{Text: "Apply", Aria: "apply", Visible: true, Enabled: true, Y: 600},
		{Text: "Apply", Visible: true, Enabled: true, Y: 600},
	}

	assert.Equal(t, 1, pickBest(candidates, keywords))
}

func TestPickBestSkipsUnusableCandidates(t *testing.T) {
	keywords := []string{"apply"}

	candidates := []Candidate{
		{Text: "Apply", Visible: false, Enabled: true, Y: 100},
		{Text: "Apply", Visible: true, Enabled: false, Y: 100},
		{Text: "Apply", Visible: true, Enabled: true, Y: 600},
	}

	assert.Equal(t, 2, pickBest(candidates, keywords))
}

func TestPickBestTiesBrokenByEncounterOrder(t *testing.T) {
	keywords := []string{"apply"}

	candidates := []Candidate{
		{Text: "Apply", Visible: true, Enabled: true, Y: 600},
		{Text: "Apply", Visible: true, Enabled: true, Y: 600},
	}

	assert.Equal(t, 0, pickBest(candidates, keywords))
}

func TestPickBestNoScoringCandidate(t *testing.T) {
	candidates := []Candidate{
		{Text: "Save job", Visible: true, Enabled: true, Y: 600},
	}

	assert.Equal(t, -1, pickBest(candidates, []string{"apply"}))
}

func TestPickApplyCandidatesPrefersEasyApply(t *testing.T) {
	// One Easy Apply candidate and one plain Apply candidate: the Easy
	// Apply index must be found, and the locator prefers it over the plain
	// hit whenever it exists
	candidates := []Candidate{
		{Text: "Apply on company site", Visible: true, Enabled: true, Y: 600},
		{Text: "Easy Apply", Class: "jobs easy apply", Visible: true, Enabled: true, Y: 600},
	}

	kw := config.DefaultKeywords()
	easyIdx, plainIdx := pickApplyCandidates(candidates, kw.EasyApplyButtonLabels(), kw.ApplyButtonLabels())

	require.Equal(t, 1, easyIdx)
	assert.GreaterOrEqual(t, plainIdx, 0)
}

func TestPickApplyCandidatesPlainOnly(t *testing.T) {
	candidates := []Candidate{
		{Text: "Apply", Visible: true, Enabled: true, Y: 200},
	}

	kw := config.DefaultKeywords()
	easyIdx, plainIdx := pickApplyCandidates(candidates, kw.EasyApplyButtonLabels(), kw.ApplyButtonLabels())

	assert.Equal(t, -1, easyIdx)
	assert.Equal(t, 0, plainIdx)
}

func TestConfidenceOrdering(t *testing.T) {
	assert.Greater(t, ConfidenceDirect, ConfidenceText)
	assert.Greater(t, ConfidenceText, ConfidenceStructural)
	assert.Greater(t, ConfidenceStructural, ConfidenceScored)
	assert.Greater(t, ConfidenceScored, ConfidenceNone)
}

func TestContainsAlreadyApplied(t *testing.T) {
	markers := []string{"applied", "solicitud enviada"}

	assert.True(t, containsAlreadyApplied("  Applied 3 days ago ", markers))
	assert.True(t, containsAlreadyApplied("Solicitud enviada", markers))
	assert.False(t, containsAlreadyApplied("Easy Apply", markers))
	assert.False(t, containsAlreadyApplied("", markers))
}

func TestIsFinalSubmitLabelPriority(t *testing.T) {
	finalLabels := []string{"submit", "enviar"}

	// A label matching both families reads as submit
	assert.True(t, isFinalSubmitLabel("Review and submit", finalLabels))
	assert.True(t, isFinalSubmitLabel("Enviar solicitud", finalLabels))
	assert.False(t, isFinalSubmitLabel("Next", finalLabels))
	assert.False(t, isFinalSubmitLabel("Siguiente", finalLabels))
}

func TestClickChainStopsAtFirstSuccess(t *testing.T) {
	var calls []string

	methods := []clickMethod{
		{"native", func() error { calls = append(calls, "native"); return errors.New("not clickable") }},
		{"script", func() error { calls = append(calls, "script"); return nil }},
		{"pointer", func() error { calls = append(calls, "pointer"); return nil }},
	}

	name, err := tryClickChain(methods, zerolog.Nop())

	require.NoError(t, err)
	assert.Equal(t, "script", name)
	assert.Equal(t, []string{"native", "script"}, calls)
}

func TestClickChainAllMethodsFail(t *testing.T) {
	methods := []clickMethod{
		{"native", func() error { return errors.New("boom") }},
		{"script", func() error { return errors.New("boom") }},
	}

	_, err := tryClickChain(methods, zerolog.Nop())

	assert.ErrorIs(t, err, ErrAllClickMethodsFailed)
}
