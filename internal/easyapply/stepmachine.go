// Package easyapply - the Easy Apply modal step machine
package easyapply

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"

	"linkedin-easyapply/internal/config"
	"linkedin-easyapply/internal/models"
)

// Modal selectors
const (
	SelectorApplyModal     = ".jobs-easy-apply-modal, div[data-test-modal], .artdeco-modal"
	SelectorModalFields    = "input, textarea, select"
	SelectorModalFooter    = ".jobs-easy-apply-modal footer, .artdeco-modal__actionbar"
	SelectorSuccessMessage = ".artdeco-inline-feedback__message, .jobs-post-apply__content, h2"
)

// Post-click waits
const (
	modalCloseWait   = 3 * time.Second
	successScanWait  = 5 * time.Second
	uploadSettleWait = 2 * time.Second
	pollInterval     = 250 * time.Millisecond
)

// ApplyRequest carries the caller-supplied material for one attempt
type ApplyRequest struct {
	ResumePath  string
	CoverLetter string
}

// RunEasyApply drives the modal from appearance to a terminal state and
// returns the outcome. The step counter is capped; hitting the cap is a
// failure for this job only, never an error that escapes the call.
func (e *Engine) RunEasyApply(page *rod.Page, req ApplyRequest) (*models.ApplyOutcome, error) {
	outcome := &models.ApplyOutcome{IsEasyApply: true}

	modal, err := e.pageHelper.WaitForElement(page, SelectorApplyModal, time.Duration(e.cfg.ModalWaitSeconds)*time.Second)
	if err != nil {
		e.logger.Warn().Err(err).Msg("Apply modal did not appear")
		return outcome, nil
	}

	e.runSteps(&pageStepDriver{engine: e, page: page, modal: modal, req: req}, outcome)

	if outcome.Success {
		outcome.CoverLetterUsed = outcome.CoverLetterNeeded && req.CoverLetter != ""
	}
	return outcome, nil
}

// stepDriver is the loop's view of one step's interactions. The live driver
// is rod-backed; the heuristics stay exercisable without a browser.
type stepDriver interface {
	fillFields(outcome *models.ApplyOutcome)
	resolveAction() *StepAction
	click(action *StepAction) error
	recover()
	modalGone() bool
	successShown() bool
	reacquire() error
	pause()
}

// runSteps advances the modal until a terminal state or the step cap. The cap
// is a hard ceiling: hitting it leaves Success false without raising anything.
func (e *Engine) runSteps(d stepDriver, outcome *models.ApplyOutcome) {
	for step := 1; step <= e.cfg.MaxSteps; step++ {
		outcome.StepsTaken = step
		e.logger.Info().Int("step", step).Msg("Processing application step")

		d.fillFields(outcome)

		action := d.resolveAction()
		if action == nil {
			e.logger.Warn().Int("step", step).Msg("No action control found, attempting degraded recovery")
			d.recover()
		} else if err := d.click(action); err != nil {
			e.logger.Warn().Err(err).Msg("Action click failed on every method")
		}

		wasFinal := action != nil && action.IsFinal

		// Success criterion is the post-condition, not the click result
		if d.modalGone() {
			e.logger.Info().Int("steps", step).Msg("Modal closed, application submitted")
			outcome.Success = true
			return
		}

		if wasFinal && d.successShown() {
			e.logger.Info().Int("steps", step).Msg("Success confirmation found")
			outcome.Success = true
			return
		}

		// The modal may have been replaced by the next step's DOM
		if err := d.reacquire(); err != nil {
			e.logger.Warn().Err(err).Msg("Lost the apply modal mid-flow")
			return
		}

		d.pause()
	}

	e.logger.Warn().Int("maxSteps", e.cfg.MaxSteps).Msg("Step cap reached without a terminal state")
}

// pageStepDriver drives a live apply modal through rod
type pageStepDriver struct {
	engine *Engine
	page   *rod.Page
	modal  *rod.Element
	req    ApplyRequest
}

func (d *pageStepDriver) fillFields(outcome *models.ApplyOutcome) {
	d.engine.fillStepFields(d.page, d.modal, d.req, outcome)
}

func (d *pageStepDriver) resolveAction() *StepAction {
	return d.engine.resolveStepAction(d.modal)
}

func (d *pageStepDriver) click(action *StepAction) error {
	_, err := d.engine.ClickWithFallback(d.page, action.Element)
	return err
}

func (d *pageStepDriver) recover() {
	d.engine.degradedRecovery(d.page, d.modal)
}

func (d *pageStepDriver) modalGone() bool {
	return d.engine.waitModalGone(d.page, modalCloseWait)
}

func (d *pageStepDriver) successShown() bool {
	return d.engine.waitSuccessMessage(d.page, successScanWait)
}

func (d *pageStepDriver) reacquire() error {
	modal, err := d.engine.reacquireModal(d.page)
	if err != nil {
		return err
	}
	d.modal = modal
	return nil
}

func (d *pageStepDriver) pause() {
	d.engine.stealth.Timing().ActionDelay()
}

// StepAction is the resolved control for advancing or submitting a step
type StepAction struct {
	Element *rod.Element
	Label   string
	IsFinal bool
}

// resolveStepAction finds the step's button. Submit-labeled controls take
// priority over next/continue ones, since a submit label determines terminal
// behavior.
func (e *Engine) resolveStepAction(modal *rod.Element) *StepAction {
	finalLabels := e.keywords.FinalSubmitLabels()
	nextLabels := e.keywords.NextStepLabels()

	finalTarget := Target{
		Name:           "final-submit",
		Tag:            "button",
		Keywords:       finalLabels,
		PanelSelectors: []string{"footer", ".artdeco-modal__actionbar"},
	}
	if m := e.resolver.Resolve(modal, finalTarget); m != nil {
		return &StepAction{Element: m.Element, Label: "submit", IsFinal: true}
	}

	nextTarget := Target{
		Name:           "next-step",
		Tag:            "button",
		Keywords:       nextLabels,
		PanelSelectors: []string{"footer", ".artdeco-modal__actionbar"},
	}
	if m := e.resolver.Resolve(modal, nextTarget); m != nil {
		// A button can carry both label families; the submit reading wins
		text, err := m.Element.Text()
		isFinal := err == nil && isFinalSubmitLabel(text, finalLabels)
		return &StepAction{Element: m.Element, Label: "next", IsFinal: isFinal}
	}

	return nil
}

// isFinalSubmitLabel decides whether a button label means terminal submit.
// Submit keywords take priority when both families match.
func isFinalSubmitLabel(label string, finalLabels []string) bool {
	return config.ContainsAny(label, finalLabels)
}

// fillStepFields scans the modal's fields, classifies each one, and applies
// the corresponding action. A single failing field never aborts the step.
func (e *Engine) fillStepFields(page *rod.Page, modal *rod.Element, req ApplyRequest, outcome *models.ApplyOutcome) {
	elements, err := modal.Elements(SelectorModalFields)
	if err != nil {
		e.logger.Warn().Err(err).Msg("Failed to enumerate step fields")
		return
	}

	exec := pageFieldExecutor{engine: e, page: page}

	for _, el := range elements {
		facts, err := ExtractFacts(el)
		if err != nil {
			e.logger.Debug().Err(err).Msg("Failed to extract field facts")
			continue
		}

		field := e.classifier.Classify(facts)
		field.Element = el

		if err := e.applyFieldAction(exec, field, req, outcome); err != nil {
			e.logger.Warn().
				Str("kind", string(field.Kind)).
				Str("field", field.Snippet).
				Err(err).
				Msg("Field action failed, continuing")
		}
	}
}

// fieldExecutor performs the browser-side action for one classified field
type fieldExecutor interface {
	check(el *rod.Element) error
	selectIndex(el *rod.Element, index int) error
	typeValue(el *rod.Element, value string) error
	fillLetter(el *rod.Element, text string) error
	upload(el *rod.Element, path string) error
}

// pageFieldExecutor executes field actions against the live page
type pageFieldExecutor struct {
	engine *Engine
	page   *rod.Page
}

func (x pageFieldExecutor) check(el *rod.Element) error {
	_, err := x.engine.ClickWithFallback(x.page, el)
	return err
}

func (x pageFieldExecutor) selectIndex(el *rod.Element, index int) error {
	return selectOption(el, index)
}

func (x pageFieldExecutor) typeValue(el *rod.Element, value string) error {
	return x.engine.stealth.Typing().ClearAndType(el, value)
}

func (x pageFieldExecutor) fillLetter(el *rod.Element, text string) error {
	return x.engine.fillCoverLetter(el, text)
}

func (x pageFieldExecutor) upload(el *rod.Element, path string) error {
	if err := el.SetFiles([]string{path}); err != nil {
		return err
	}
	// Give the upload time to register before the step advances
	time.Sleep(uploadSettleWait)
	return nil
}

// applyFieldAction dispatches one classified field to its executor action
func (e *Engine) applyFieldAction(exec fieldExecutor, field FormField, req ApplyRequest, outcome *models.ApplyOutcome) error {
	switch field.Kind {
	case KindCoverLetter:
		outcome.CoverLetterNeeded = true
		if field.LowConfidence {
			outcome.CoverLetterLowConfidence = true
		}
		if req.CoverLetter == "" {
			e.logger.Info().
				Bool("lowConfidence", field.LowConfidence).
				Msg("Cover letter field present but no letter supplied")
			return nil
		}
		return exec.fillLetter(field.Element, req.CoverLetter)

	case KindCheckbox:
		if !field.ShouldCheck {
			return nil
		}
		return exec.check(field.Element)

	case KindSelect:
		if field.SelectIndex < 0 {
			return nil
		}
		return exec.selectIndex(field.Element, field.SelectIndex)

	case KindRequiredText, KindRequiredNumber:
		return exec.typeValue(field.Element, field.FillValue)

	case KindFileUpload:
		if req.ResumePath == "" {
			e.logger.Warn().Msg("File upload present but no resume path configured")
			return nil
		}
		return exec.upload(field.Element, req.ResumePath)

	default:
		return nil
	}
}

// fillCoverLetter prefers a direct value assignment with a trailing keypress
// to trigger the page's change detection, falling back to full typing only
// when the fast path fails
func (e *Engine) fillCoverLetter(el *rod.Element, text string) error {
	if head, tail := splitLetterTail(text); head != "" {
		_, err := el.Eval(`(value) => {
			this.focus();
			this.value = value;
			this.dispatchEvent(new Event('input', { bubbles: true }));
			this.dispatchEvent(new Event('change', { bubbles: true }));
		}`, head)
		if err == nil {
			if err := el.Input(tail); err == nil {
				return nil
			}
		}
		e.logger.Debug().Msg("Fast cover-letter fill failed, typing instead")
	}

	return e.stealth.Typing().ClearAndType(el, text)
}

// splitLetterTail splits the letter into everything before the last rune and
// the last rune itself, so the trailing keypress never lands mid-rune
func splitLetterTail(text string) (head, tail string) {
	_, size := utf8.DecodeLastRuneInString(text)
	if size == 0 || size == len(text) {
		return "", text
	}
	return text[:len(text)-size], text[len(text)-size:]
}

// selectOption sets a select's chosen index and fires its change event
func selectOption(el *rod.Element, index int) error {
	_, err := el.Eval(`(index) => {
		this.selectedIndex = index;
		this.dispatchEvent(new Event('change', { bubbles: true }));
	}`, index)
	return err
}

// degradedRecovery is the last resort when no action control resolves:
// interact with any remaining checkbox/select controls directly, then
// dispatch a keyboard confirm
func (e *Engine) degradedRecovery(page *rod.Page, modal *rod.Element) {
	elements, err := modal.Elements("input[type='checkbox'], select")
	if err == nil {
		for _, el := range elements {
			facts, err := ExtractFacts(el)
			if err != nil {
				continue
			}
			field := e.classifier.Classify(facts)
			field.Element = el

			switch field.Kind {
			case KindCheckbox:
				if field.ShouldCheck {
					e.ClickWithFallback(page, el)
				}
			case KindSelect:
				if field.SelectIndex >= 0 {
					selectOption(el, field.SelectIndex)
				}
			}
		}
	}

	if err := page.Keyboard.Press(input.Enter); err != nil {
		e.logger.Debug().Err(err).Msg("Keyboard confirm failed")
	}
}

// waitModalGone polls for the modal to disappear within the window
func (e *Engine) waitModalGone(page *rod.Page, window time.Duration) bool {
	deadline := time.Now().Add(window)

	for time.Now().Before(deadline) {
		if !e.modalVisible(page) {
			return true
		}
		time.Sleep(pollInterval)
	}

	return !e.modalVisible(page)
}

// modalVisible checks whether any apply-modal container is currently shown
func (e *Engine) modalVisible(page *rod.Page) bool {
	elements, err := page.Elements(SelectorApplyModal)
	if err != nil {
		return false
	}

	for _, el := range elements {
		if visible, err := el.Visible(); err == nil && visible {
			return true
		}
	}
	return false
}

// waitSuccessMessage scans for a confirmation marker for a short window
// after a final-submit click that did not close the modal
func (e *Engine) waitSuccessMessage(page *rod.Page, window time.Duration) bool {
	markers := e.keywords.SuccessMessages()
	deadline := time.Now().Add(window)

	for time.Now().Before(deadline) {
		elements, err := page.Elements(SelectorSuccessMessage)
		if err == nil {
			for _, el := range elements {
				text, err := el.Text()
				if err != nil {
					continue
				}
				if config.ContainsAny(strings.TrimSpace(text), markers) {
					return true
				}
			}
		}
		time.Sleep(pollInterval)
	}

	return false
}

// reacquireModal re-resolves the modal handle after a step transition
func (e *Engine) reacquireModal(page *rod.Page) (*rod.Element, error) {
	return e.pageHelper.WaitForElement(page, SelectorApplyModal, 5*time.Second)
}
