package jobs

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkedin-easyapply/internal/models"
)

func TestNormalizeJobURL(t *testing.T) {
	cases := []struct {
		name string
		href string
		want string
	}{
		{
			"strips tracking params",
			"https://www.linkedin.com/jobs/view/3812345678/?refId=abc&trackingId=xyz",
			"https://www.linkedin.com/jobs/view/3812345678/",
		},
		{
			"relative href",
			"/jobs/view/3812345678/",
			"https://www.linkedin.com/jobs/view/3812345678/",
		},
		{
			"non-job link rejected",
			"https://www.linkedin.com/in/someone/",
			"",
		},
		{
			"empty href",
			"",
			"",
		},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeJobURL(tc.href), tc.name)
	}
}

func TestExtractJobID(t *testing.T) {
	assert.Equal(t, "3812345678", ExtractJobID("https://www.linkedin.com/jobs/view/3812345678/"))
	assert.Equal(t, "", ExtractJobID("https://www.linkedin.com/jobs/search/"))
	assert.Equal(t, "", ExtractJobID(""))
}

func TestBuildSearchURLFilters(t *testing.T) {
	s := &Searcher{}

	raw := s.buildSearchURL(models.SearchParams{
		Keywords:  []string{"golang", "backend"},
		Location:  "Madrid, Spain",
		EasyApply: true,
		PostedAge: "r86400",
	})

	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "golang backend", q.Get("keywords"))
	assert.Equal(t, "Madrid, Spain", q.Get("location"))
	assert.Equal(t, "true", q.Get("f_AL"))
	assert.Equal(t, "r86400", q.Get("f_TPR"))
}

func TestBuildSearchURLOmitsUnsetFilters(t *testing.T) {
	s := &Searcher{}

	raw := s.buildSearchURL(models.SearchParams{Keywords: []string{"golang"}})

	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Empty(t, q.Get("f_AL"))
	assert.Empty(t, q.Get("f_TPR"))
	assert.Empty(t, q.Get("location"))
}

func TestTitleExcluded(t *testing.T) {
	exclusions := []string{"senior", "staff", "becario"}

	assert.True(t, TitleExcluded("Senior Backend Engineer", exclusions))
	assert.True(t, TitleExcluded("Becario de desarrollo", exclusions))
	assert.False(t, TitleExcluded("Backend Engineer", exclusions))
	assert.False(t, TitleExcluded("", exclusions))
	assert.False(t, TitleExcluded("Senior Backend Engineer", nil))
}
