// Package easyapply - apply-button location on a job page
package easyapply

import (
	"regexp"
	"strings"
	"time"

	"github.com/go-rod/rod"

	"linkedin-easyapply/internal/config"
)

// ApplyButtonState is the three-valued result of the locator. AlreadyApplied
// and NotFound are distinct on purpose: the first means "skip, nothing to
// do", the second "skip, could not locate the control".
type ApplyButtonState int

const (
	ApplyButtonNotFound ApplyButtonState = iota
	ApplyButtonFound
	ApplyButtonAlreadyApplied
)

func (s ApplyButtonState) String() string {
	switch s {
	case ApplyButtonFound:
		return "found"
	case ApplyButtonAlreadyApplied:
		return "already-applied"
	default:
		return "not-found"
	}
}

// ApplyButtonResult is the locator's output
type ApplyButtonResult struct {
	State       ApplyButtonState
	Element     *rod.Element
	IsEasyApply bool
	Confidence  Confidence
}

// Job page selectors
const (
	SelectorJobTitle        = ".job-details-jobs-unified-top-card__job-title, .jobs-unified-top-card__job-title, h1"
	SelectorAppliedFeedback = ".artdeco-inline-feedback__message, .jobs-details-top-card__apply-state, .post-apply-timeline"
)

// Direct selectors for the two known button variants
var (
	easyApplySelectors = []string{
		"button.jobs-apply-button",
		"button[aria-label*='Easy Apply']",
		"button[data-live-test-job-apply-button]",
	}
	plainApplySelectors = []string{
		"button[aria-label*='Apply']",
		"a[data-control-name='jobdetails_topcard_inapply']",
	}
	applyPanelSelectors = []string{
		".jobs-unified-top-card__actions",
		".jobs-apply-button--top-card",
		".job-details-jobs-unified-top-card__container--two-pane",
		".jobs-s-apply",
	}
	applyIDFragments = []string{"jobs-apply", "apply-button"}
	emberIDPattern   = regexp.MustCompile(`^ember\d+$`)
)

// LocateApplyButton finds the application entry control on the current job
// page through escalating phases, short-circuiting on the first hit
func (e *Engine) LocateApplyButton(page *rod.Page) *ApplyButtonResult {
	// Phase 0: already applied?
	if e.detectAlreadyApplied(page) {
		e.logger.Info().Msg("Job already applied to")
		return &ApplyButtonResult{State: ApplyButtonAlreadyApplied}
	}

	// Phase 1: fast path, direct selectors
	if res := e.directApplySearch(page); res != nil {
		e.logger.Debug().Bool("easyApply", res.IsEasyApply).Msg("Apply button found on fast path")
		return res
	}

	// Phase 2: stabilize the page and retry inside known action panels
	e.logger.Debug().Msg("Fast path missed, stabilizing page")
	if err := e.stealth.Scroll().ScrollToTop(page); err != nil {
		e.logger.Debug().Err(err).Msg("Scroll to top failed")
	}
	if _, err := e.pageHelper.WaitForElement(page, SelectorJobTitle, 5*time.Second); err != nil {
		e.logger.Debug().Err(err).Msg("Job title landmark did not appear")
	}
	if res := e.panelScopedSearch(page); res != nil {
		e.logger.Debug().Bool("easyApply", res.IsEasyApply).Msg("Apply button found in action panel")
		return res
	}

	// Phase 3: id-pattern search, tolerant of framework-generated ids
	if res := e.idPatternSearch(page); res != nil {
		e.logger.Debug().Bool("easyApply", res.IsEasyApply).Msg("Apply button found by id pattern")
		return res
	}

	// Phase 4: scored DOM-wide search
	if res := e.scoredApplySearch(page); res != nil {
		e.logger.Info().Bool("easyApply", res.IsEasyApply).Msg("Apply button found by scored search")
		return res
	}

	e.logger.Warn().Msg("Apply button not found in any phase")
	return &ApplyButtonResult{State: ApplyButtonNotFound}
}

// detectAlreadyApplied scans the page's feedback elements for an
// already-applied marker
func (e *Engine) detectAlreadyApplied(page *rod.Page) bool {
	markers := e.keywords.AlreadyAppliedMarkers()

	elements, err := page.Elements(SelectorAppliedFeedback)
	if err != nil {
		return false
	}

	for _, el := range elements {
		text, err := el.Text()
		if err != nil {
			continue
		}
		if containsAlreadyApplied(text, markers) {
			return true
		}
	}

	return false
}

// containsAlreadyApplied matches marker text, ignoring case and surrounding
// whitespace
func containsAlreadyApplied(text string, markers []string) bool {
	return config.ContainsAny(strings.TrimSpace(text), markers)
}

// directApplySearch tries the known selectors for both button variants,
// Easy Apply first
func (e *Engine) directApplySearch(scope Scope) *ApplyButtonResult {
	easyTarget := Target{Name: "easy-apply-button", Selectors: easyApplySelectors}
	if m := e.resolver.Resolve(scope, easyTarget); m != nil {
		return &ApplyButtonResult{
			State:       ApplyButtonFound,
			Element:     m.Element,
			IsEasyApply: e.isEasyApplyControl(m.Element),
			Confidence:  m.Confidence,
		}
	}

	plainTarget := Target{Name: "apply-button", Selectors: plainApplySelectors}
	if m := e.resolver.Resolve(scope, plainTarget); m != nil {
		return &ApplyButtonResult{
			State:       ApplyButtonFound,
			Element:     m.Element,
			IsEasyApply: e.isEasyApplyControl(m.Element),
			Confidence:  m.Confidence,
		}
	}

	return nil
}

// panelScopedSearch retries the direct and text searches inside the known
// action containers
func (e *Engine) panelScopedSearch(page *rod.Page) *ApplyButtonResult {
	// Easy Apply labels come first: the plain labels are substrings of them
	keywords := append(append([]string{}, e.keywords.EasyApplyButtonLabels()...), e.keywords.ApplyButtonLabels()...)
	el, err := (structuralStrategy{}).Attempt(page, Target{
		Name:           "apply-button-panel",
		Tag:            "button",
		Selectors:      append(append([]string{}, easyApplySelectors...), plainApplySelectors...),
		Keywords:       keywords,
		PanelSelectors: applyPanelSelectors,
	})
	if err != nil || el == nil {
		return nil
	}

	return &ApplyButtonResult{
		State:       ApplyButtonFound,
		Element:     el,
		IsEasyApply: e.isEasyApplyControl(el),
		Confidence:  ConfidenceStructural,
	}
}

// idPatternSearch looks for buttons whose id carries a known fragment, or an
// ember-style generated id paired with an apply label
func (e *Engine) idPatternSearch(page *rod.Page) *ApplyButtonResult {
	buttons, err := page.Elements("button[id]")
	if err != nil {
		return nil
	}

	for _, btn := range buttons {
		id := strings.ToLower(e.pageHelper.GetElementAttribute(btn, "id"))
		if id == "" {
			continue
		}

		fragmentHit := false
		for _, frag := range applyIDFragments {
			if strings.Contains(id, frag) {
				fragmentHit = true
				break
			}
		}

		if !fragmentHit && emberIDPattern.MatchString(id) {
			text, err := btn.Text()
			if err != nil {
				continue
			}
			fragmentHit = config.ContainsAny(text, e.keywords.ApplyButtonLabels())
		}

		if fragmentHit && interactable(btn) {
			return &ApplyButtonResult{
				State:       ApplyButtonFound,
				Element:     btn,
				IsEasyApply: e.isEasyApplyControl(btn),
				Confidence:  ConfidenceStructural,
			}
		}
	}

	return nil
}

// scoredApplySearch runs the scored exhaustive search over the whole page,
// accumulating Easy Apply and plain Apply candidates separately and
// preferring the best Easy Apply hit when both exist
func (e *Engine) scoredApplySearch(page *rod.Page) *ApplyButtonResult {
	candidates, elements, err := CollectCandidates(page, "button")
	if err != nil {
		return nil
	}

	easyIdx, plainIdx := pickApplyCandidates(candidates, e.keywords.EasyApplyButtonLabels(), e.keywords.ApplyButtonLabels())

	switch {
	case easyIdx >= 0:
		return &ApplyButtonResult{
			State:       ApplyButtonFound,
			Element:     elements[easyIdx],
			IsEasyApply: true,
			Confidence:  ConfidenceScored,
		}
	case plainIdx >= 0:
		return &ApplyButtonResult{
			State:       ApplyButtonFound,
			Element:     elements[plainIdx],
			IsEasyApply: false,
			Confidence:  ConfidenceScored,
		}
	default:
		return nil
	}
}

// pickApplyCandidates scores every candidate against both label sets and
// returns the best index for each, -1 when a set has no scoring candidate
func pickApplyCandidates(candidates []Candidate, easyLabels, plainLabels []string) (easyIdx, plainIdx int) {
	return pickBest(candidates, easyLabels), pickBest(candidates, plainLabels)
}

// isEasyApplyControl checks a found control's own text and aria-label for an
// Easy Apply label
func (e *Engine) isEasyApplyControl(el *rod.Element) bool {
	easyLabels := e.keywords.EasyApplyButtonLabels()

	text, err := el.Text()
	if err == nil && config.ContainsAny(text, easyLabels) {
		return true
	}

	aria := e.pageHelper.GetElementAttribute(el, "aria-label")
	return config.ContainsAny(aria, easyLabels)
}
