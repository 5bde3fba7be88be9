package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyButtonLabelTables(t *testing.T) {
	kw := DefaultKeywords()

	easy := kw.EasyApplyButtonLabels()
	plain := kw.ApplyButtonLabels()

	assert.Contains(t, easy, "easy apply")
	assert.Contains(t, easy, "solicitud sencilla")
	assert.Contains(t, plain, "apply")
	assert.Contains(t, plain, "solicitar")
}

func TestFillMissingKeepsOverridesAndAddsAbsentTables(t *testing.T) {
	kw := KeywordConfig{
		ApplyLabel: map[string][]string{"fr": {"postuler"}},
	}

	kw.fillMissing(DefaultKeywords())

	assert.Equal(t, []string{"postuler"}, kw.ApplyButtonLabels())
	assert.Contains(t, kw.EasyApplyButtonLabels(), "easy apply")
	assert.Contains(t, kw.FinalSubmitLabels(), "submit")
}

func TestContainsAnyIsCaseInsensitive(t *testing.T) {
	labels := []string{"easy apply"}

	assert.True(t, ContainsAny("Easy Apply", labels))
	assert.False(t, ContainsAny("Save job", labels))
	assert.False(t, ContainsAny("Easy Apply", nil))
}
