// Package jobs handles LinkedIn job search and job-page scraping
package jobs

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/rs/zerolog"

	"linkedin-easyapply/internal/browser"
	"linkedin-easyapply/internal/config"
	"linkedin-easyapply/internal/models"
	"linkedin-easyapply/internal/stealth"
	"linkedin-easyapply/internal/storage"
)

// LinkedIn job search URL
const (
	LinkedInJobSearchURL = "https://www.linkedin.com/jobs/search/"
	LinkedInJobViewURL   = "https://www.linkedin.com/jobs/view/"
)

// Job search result selectors
const (
	SelectorResultsList   = ".jobs-search-results-list, .scaffold-layout__list"
	SelectorJobCard       = ".job-card-container, li[data-occludable-job-id]"
	SelectorJobCardLink   = "a.job-card-container__link, a.job-card-list__title"
	SelectorJobCardTitle  = ".job-card-list__title, .job-card-container__link strong"
	SelectorCardCompany   = ".job-card-container__primary-description, .artdeco-entity-lockup__subtitle"
	SelectorCardLocation  = ".job-card-container__metadata-item, .artdeco-entity-lockup__caption"
	SelectorNextButton    = "button[aria-label='Page %d'], button[aria-label='View next page']"
	SelectorPagination    = ".jobs-search-results-list__pagination, .artdeco-pagination"
	SelectorNoResults     = ".jobs-search-no-results-banner, .jobs-search-two-pane__no-results-banner"
	SelectorJobDesc       = ".jobs-description__content, .jobs-box__html-content"
	SelectorDetailTitle   = ".job-details-jobs-unified-top-card__job-title, h1"
	SelectorDetailCompany = ".job-details-jobs-unified-top-card__company-name, .jobs-unified-top-card__company-name"
	SelectorDetailPlace   = ".job-details-jobs-unified-top-card__primary-description-container, .jobs-unified-top-card__bullet"
	SelectorSeeMoreButton = ".jobs-description footer button, button[aria-label*='see more']"
	SelectorRecruiterName = ".hirer-card__hirer-information .jobs-poster__name, " +
		".job-details-people-who-can-help__section .jobs-poster__name, .jobs-poster__name"
)

// Anti-bot interstitial markers. Hitting any of these is a block signal the
// session controller reacts to.
var (
	blockURLFragments = []string{"/checkpoint/", "/authwall", "/uas/login"}
	blockPageMarkers  = []string{
		"unusual activity",
		"security verification",
		"let's do a quick security check",
		"429",
		"demasiadas solicitudes",
	}
	jobIDPattern = regexp.MustCompile(`/jobs/view/(\d+)`)
)

// Searcher runs job searches and scrapes job pages
type Searcher struct {
	browser    *browser.Browser
	pageHelper *browser.PageHelper
	stealth    *stealth.Controller
	statsStore *storage.StatsStore
	config     *config.SearchConfig
	logger     zerolog.Logger
}

// NewSearcher creates a new job searcher
func NewSearcher(
	b *browser.Browser,
	statsStore *storage.StatsStore,
	searchConfig *config.SearchConfig,
	stealthCtrl *stealth.Controller,
	logger zerolog.Logger,
) *Searcher {
	return &Searcher{
		browser:    b,
		pageHelper: browser.NewPageHelper(logger),
		stealth:    stealthCtrl,
		statsStore: statsStore,
		config:     searchConfig,
		logger:     logger.With().Str("component", "jobs").Logger(),
	}
}

// Search runs a job search and collects job cards across result pages,
// deduplicated by job id. Stops early at the configured job ceiling.
func (s *Searcher) Search(params models.SearchParams) ([]models.JobCard, error) {
	s.logger.Info().
		Strs("keywords", params.Keywords).
		Str("location", params.Location).
		Bool("easyApply", params.EasyApply).
		Msg("Starting job search")

	searchURL := s.buildSearchURL(params)
	s.logger.Debug().Str("url", searchURL).Msg("Search URL built")

	page, err := s.browser.GetPage()
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}

	if err := s.browser.Navigate(page, searchURL); err != nil {
		return nil, fmt.Errorf("failed to navigate to job search: %w", err)
	}

	s.stealth.Timing().PageLoadDelay()

	if s.DetectBlockSignal(page) {
		return nil, fmt.Errorf("block signal on search page")
	}

	if s.pageHelper.ElementExists(page, SelectorNoResults) {
		s.logger.Info().Msg("No jobs found for this search")
		return []models.JobCard{}, nil
	}

	seen := make(map[string]bool)
	var cards []models.JobCard
	pageNum := 1

	for pageNum <= s.config.MaxPages {
		s.logger.Info().Int("page", pageNum).Msg("Processing results page")

		s.stealth.SimulateReading(page)

		// Lazy-loaded cards only render after the list scrolls
		s.scrollResultsList(page)

		pageCards, err := s.extractCardsFromPage(page)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Failed to extract job cards")
		}

		added := 0
		for _, card := range pageCards {
			if card.JobID == "" || seen[card.JobID] {
				continue
			}
			seen[card.JobID] = true
			if TitleExcluded(card.Title, s.config.ExcludeTitles) {
				s.logger.Debug().
					Str("jobID", card.JobID).
					Str("title", card.Title).
					Msg("Skipping job, title matches exclusion list")
				continue
			}
			cards = append(cards, card)
			added++
		}

		s.logger.Debug().
			Int("found", len(pageCards)).
			Int("new", added).
			Int("total", len(cards)).
			Msg("Extracted job cards")

		if len(cards) >= s.config.MaxJobs {
			s.logger.Info().Int("maxJobs", s.config.MaxJobs).Msg("Job ceiling reached")
			cards = cards[:s.config.MaxJobs]
			break
		}

		if !s.goToNextPage(page, pageNum+1) {
			s.logger.Info().Msg("No more result pages")
			break
		}
		pageNum++

		if s.DetectBlockSignal(page) {
			s.logger.Warn().Msg("Block signal while paginating, stopping with partial results")
			break
		}

		s.stealth.Timing().RandomDelay(3, 8)
	}

	if err := s.statsStore.IncrementJobsViewed(len(cards)); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to update job view stats")
	}

	s.logger.Info().
		Int("jobs", len(cards)).
		Int("pages", pageNum).
		Msg("Job search completed")

	return cards, nil
}

// buildSearchURL constructs the job search URL. f_AL=true restricts results
// to Easy Apply postings; f_TPR filters by posting recency.
func (s *Searcher) buildSearchURL(params models.SearchParams) string {
	queryParams := url.Values{}

	if len(params.Keywords) > 0 {
		queryParams.Set("keywords", strings.Join(params.Keywords, " "))
	}
	if params.Location != "" {
		queryParams.Set("location", params.Location)
	}
	if params.EasyApply {
		queryParams.Set("f_AL", "true")
	}
	if params.PostedAge != "" {
		queryParams.Set("f_TPR", params.PostedAge)
	}
	queryParams.Set("origin", "JOB_SEARCH_PAGE_SEARCH_BUTTON")

	return LinkedInJobSearchURL + "?" + queryParams.Encode()
}

// scrollResultsList scrolls through the results column so every card in the
// page renders before extraction
func (s *Searcher) scrollResultsList(page *rod.Page) {
	for i := 0; i < 4; i++ {
		if err := s.stealth.Scroll().ScrollDown(page); err != nil {
			s.logger.Debug().Err(err).Msg("Results scroll failed")
			return
		}
		s.stealth.Timing().ShortDelay()
	}
	s.stealth.Scroll().ScrollToTop(page)
}

// extractCardsFromPage extracts every job card in the current results page
func (s *Searcher) extractCardsFromPage(page *rod.Page) ([]models.JobCard, error) {
	if _, err := s.pageHelper.WaitForElement(page, SelectorResultsList, 10*time.Second); err != nil {
		return nil, fmt.Errorf("results list not found: %w", err)
	}

	items, err := page.Elements(SelectorJobCard)
	if err != nil {
		return nil, fmt.Errorf("failed to get job cards: %w", err)
	}

	var cards []models.JobCard
	for _, item := range items {
		card, err := s.extractCardFromItem(item)
		if err != nil {
			s.logger.Debug().Err(err).Msg("Failed to extract job card")
			continue
		}
		if card.URL != "" {
			cards = append(cards, card)
		}
	}

	return cards, nil
}

// extractCardFromItem pulls one job card's fields out of a result element
func (s *Searcher) extractCardFromItem(item *rod.Element) (models.JobCard, error) {
	card := models.JobCard{}

	linkEl, err := item.Element(SelectorJobCardLink)
	if err != nil {
		return card, fmt.Errorf("job link not found")
	}

	href := s.pageHelper.GetElementAttribute(linkEl, "href")
	card.URL = NormalizeJobURL(href)
	card.JobID = ExtractJobID(card.URL)

	// Occludable list items carry the id even when the link href is relative
	if card.JobID == "" {
		card.JobID = s.pageHelper.GetElementAttribute(item, "data-occludable-job-id")
		if card.JobID != "" && card.URL == "" {
			card.URL = LinkedInJobViewURL + card.JobID + "/"
		}
	}

	card.Title = strings.TrimSpace(s.pageHelper.GetElementText(linkEl))

	if companyEl, err := item.Element(SelectorCardCompany); err == nil {
		card.Company = strings.TrimSpace(s.pageHelper.GetElementText(companyEl))
	}
	if locationEl, err := item.Element(SelectorCardLocation); err == nil {
		card.Location = strings.TrimSpace(s.pageHelper.GetElementText(locationEl))
	}

	return card, nil
}

// goToNextPage clicks the pagination control for the given page number,
// returning false when pagination is exhausted
func (s *Searcher) goToNextPage(page *rod.Page, pageNum int) bool {
	if !s.pageHelper.ElementExists(page, SelectorPagination) {
		return false
	}

	selector := fmt.Sprintf(SelectorNextButton, pageNum)
	nextButton, err := s.pageHelper.WaitForElement(page, selector, 5*time.Second)
	if err != nil {
		return false
	}

	s.stealth.Scroll().ScrollIntoView(page, nextButton)
	s.stealth.Timing().ActionDelay()

	if err := s.stealth.Mouse().ClickElement(page, nextButton); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to click next page")
		return false
	}

	time.Sleep(2 * time.Second)
	page.WaitDOMStable(time.Second, 0.1)

	return true
}

// OpenJob navigates to a job's page and waits for it to settle
func (s *Searcher) OpenJob(page *rod.Page, card models.JobCard) error {
	if err := s.browser.Navigate(page, card.URL); err != nil {
		return fmt.Errorf("failed to open job %s: %w", card.JobID, err)
	}

	s.stealth.Timing().PageLoadDelay()

	if s.DetectBlockSignal(page) {
		return fmt.Errorf("block signal on job page %s", card.JobID)
	}

	return nil
}

// FetchJobDetails scrapes the open job page into a JobDetails, expanding the
// truncated description when a see-more control is present
func (s *Searcher) FetchJobDetails(page *rod.Page, card models.JobCard) (*models.JobDetails, error) {
	details := &models.JobDetails{
		JobID:    card.JobID,
		Title:    card.Title,
		Company:  card.Company,
		Location: card.Location,
		URL:      card.URL,
	}

	if titleEl, err := s.pageHelper.WaitForElement(page, SelectorDetailTitle, 10*time.Second); err == nil {
		if text := strings.TrimSpace(s.pageHelper.GetElementText(titleEl)); text != "" {
			details.Title = text
		}
	}

	if companyEl, err := page.Element(SelectorDetailCompany); err == nil {
		if text := strings.TrimSpace(s.pageHelper.GetElementText(companyEl)); text != "" {
			details.Company = text
		}
	}

	if placeEl, err := page.Element(SelectorDetailPlace); err == nil {
		if text := strings.TrimSpace(s.pageHelper.GetElementText(placeEl)); text != "" {
			details.Location = text
		}
	}

	// The hiring-team card only exists on some postings
	if recruiterEl, err := page.Element(SelectorRecruiterName); err == nil {
		details.Recruiter = strings.TrimSpace(s.pageHelper.GetElementText(recruiterEl))
	}

	if s.pageHelper.ElementExists(page, SelectorSeeMoreButton) {
		if btn, err := page.Element(SelectorSeeMoreButton); err == nil {
			if err := s.stealth.Mouse().ClickElement(page, btn); err == nil {
				s.stealth.Timing().ShortDelay()
			}
		}
	}

	if descEl, err := page.Element(SelectorJobDesc); err == nil {
		details.Description = strings.TrimSpace(s.pageHelper.GetElementText(descEl))
	}

	if details.Description == "" {
		s.logger.Debug().Str("jobID", card.JobID).Msg("Job description not found")
	}

	return details, nil
}

// DetectBlockSignal reports whether the current page shows an anti-bot
// interstitial or a rate-limit response
func (s *Searcher) DetectBlockSignal(page *rod.Page) bool {
	currentURL := s.pageHelper.GetCurrentURL(page)
	for _, fragment := range blockURLFragments {
		if strings.Contains(currentURL, fragment) {
			s.logger.Warn().Str("url", currentURL).Msg("Block signal in URL")
			return true
		}
	}

	for _, marker := range blockPageMarkers {
		if s.pageHelper.ContainsText(page, marker) {
			s.logger.Warn().Str("marker", marker).Msg("Block signal on page")
			return true
		}
	}

	return false
}

// TitleExcluded reports whether a job title contains any of the configured
// exclusion terms (case-insensitive)
func TitleExcluded(title string, exclusions []string) bool {
	if title == "" || len(exclusions) == 0 {
		return false
	}
	return config.ContainsAny(title, exclusions)
}

// NormalizeJobURL strips query params and fragments from a job link,
// returning the canonical /jobs/view/ URL or "" for anything else
func NormalizeJobURL(href string) string {
	if href == "" {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	path := strings.TrimSuffix(u.Path, "/")
	if !strings.Contains(path, "/jobs/view/") {
		return ""
	}

	return "https://www.linkedin.com" + path + "/"
}

// ExtractJobID pulls the numeric job id out of a job view URL
func ExtractJobID(jobURL string) string {
	matches := jobIDPattern.FindStringSubmatch(jobURL)
	if len(matches) < 2 {
		return ""
	}
	return matches[1]
}
