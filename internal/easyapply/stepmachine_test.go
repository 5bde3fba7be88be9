package easyapply

import (
	"errors"
	"testing"

	"github.com/go-rod/rod"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkedin-easyapply/internal/config"
	"linkedin-easyapply/internal/models"
)

func newStepTestEngine(maxSteps int) *Engine {
	return NewEngine(
		&config.ApplyConfig{MaxSteps: maxSteps, ModalWaitSeconds: 1},
		config.DefaultKeywords(),
		FieldDefaults{City: "Madrid", Phone: "+34 600 000 000", Years: "3"},
		nil,
		zerolog.Nop(),
	)
}

// scriptedStepDriver replays a fixed modal flow, step by step
type scriptedStepDriver struct {
	step      int
	clicks    int
	recovered int

	onFill      func(step int, outcome *models.ApplyOutcome)
	actionAt    func(step int) *StepAction
	clickErr    error
	goneAt      int // step at which the modal disappears, 0 never
	successAt   int // step at which a success message shows, 0 never
	loseModalAt int // step at which reacquire fails, 0 never
}

func (d *scriptedStepDriver) fillFields(outcome *models.ApplyOutcome) {
	d.step++
	if d.onFill != nil {
		d.onFill(d.step, outcome)
	}
}

func (d *scriptedStepDriver) resolveAction() *StepAction {
	if d.actionAt != nil {
		return d.actionAt(d.step)
	}
	return &StepAction{Label: "next"}
}

func (d *scriptedStepDriver) click(action *StepAction) error {
	d.clicks++
	return d.clickErr
}

func (d *scriptedStepDriver) recover() { d.recovered++ }

func (d *scriptedStepDriver) modalGone() bool {
	return d.goneAt != 0 && d.step >= d.goneAt
}

func (d *scriptedStepDriver) successShown() bool {
	return d.successAt != 0 && d.step >= d.successAt
}

func (d *scriptedStepDriver) reacquire() error {
	if d.loseModalAt != 0 && d.step >= d.loseModalAt {
		return errors.New("apply modal no longer on the page")
	}
	return nil
}

func (d *scriptedStepDriver) pause() {}

func TestRunStepsStopsAtStepCap(t *testing.T) {
	e := newStepTestEngine(20)
	d := &scriptedStepDriver{}
	outcome := &models.ApplyOutcome{}

	e.runSteps(d, outcome)

	assert.False(t, outcome.Success)
	assert.Equal(t, 20, outcome.StepsTaken)
	assert.Equal(t, 20, d.clicks, "the loop never runs past the cap")
}

func TestRunStepsFailedClickStillSucceedsWhenModalCloses(t *testing.T) {
	// The click result is not the success criterion: even when every click
	// method reports failure, a disappearing modal means the application
	// went through
	e := newStepTestEngine(20)
	d := &scriptedStepDriver{
		clickErr: ErrAllClickMethodsFailed,
		goneAt:   1,
	}
	outcome := &models.ApplyOutcome{}

	e.runSteps(d, outcome)

	assert.True(t, outcome.Success)
	assert.Equal(t, 1, outcome.StepsTaken)
}

func TestRunStepsSuccessMessageAfterFinalSubmit(t *testing.T) {
	e := newStepTestEngine(20)
	d := &scriptedStepDriver{
		actionAt: func(step int) *StepAction {
			if step == 3 {
				return &StepAction{Label: "submit", IsFinal: true}
			}
			return &StepAction{Label: "next"}
		},
		successAt: 3,
	}
	outcome := &models.ApplyOutcome{}

	e.runSteps(d, outcome)

	assert.True(t, outcome.Success)
	assert.Equal(t, 3, outcome.StepsTaken)
}

func TestRunStepsSuccessMessageIgnoredForNonFinalSteps(t *testing.T) {
	// A stale confirmation in the DOM must not end a flow whose current
	// step was not a terminal submit
	e := newStepTestEngine(5)
	d := &scriptedStepDriver{successAt: 1}
	outcome := &models.ApplyOutcome{}

	e.runSteps(d, outcome)

	assert.False(t, outcome.Success)
	assert.Equal(t, 5, outcome.StepsTaken)
}

func TestRunStepsStopsWhenModalLost(t *testing.T) {
	e := newStepTestEngine(20)
	d := &scriptedStepDriver{loseModalAt: 3}
	outcome := &models.ApplyOutcome{}

	e.runSteps(d, outcome)

	assert.False(t, outcome.Success)
	assert.Equal(t, 3, outcome.StepsTaken)
}

func TestRunStepsRecoversWhenNoActionResolves(t *testing.T) {
	e := newStepTestEngine(20)
	d := &scriptedStepDriver{
		actionAt: func(step int) *StepAction { return nil },
		goneAt:   1,
	}
	outcome := &models.ApplyOutcome{}

	e.runSteps(d, outcome)

	assert.True(t, outcome.Success)
	assert.Equal(t, 1, d.recovered)
	assert.Zero(t, d.clicks)
}

// recordingFieldExecutor captures field actions without a browser
type recordingFieldExecutor struct {
	checked  int
	selected []int
	typed    []string
	letters  []string
	uploaded []string
}

func (x *recordingFieldExecutor) check(el *rod.Element) error {
	x.checked++
	return nil
}

func (x *recordingFieldExecutor) selectIndex(el *rod.Element, index int) error {
	x.selected = append(x.selected, index)
	return nil
}

func (x *recordingFieldExecutor) typeValue(el *rod.Element, value string) error {
	x.typed = append(x.typed, value)
	return nil
}

func (x *recordingFieldExecutor) fillLetter(el *rod.Element, text string) error {
	x.letters = append(x.letters, text)
	return nil
}

func (x *recordingFieldExecutor) upload(el *rod.Element, path string) error {
	x.uploaded = append(x.uploaded, path)
	return nil
}

func TestApplyFieldActionChecksConsentBox(t *testing.T) {
	e := newStepTestEngine(20)
	exec := &recordingFieldExecutor{}

	field := e.classifier.Classify(FieldFacts{
		Tag:       "input",
		Type:      "checkbox",
		Visible:   true,
		LabelText: "I agree to the Terms",
	})
	require.Equal(t, KindCheckbox, field.Kind)

	err := e.applyFieldAction(exec, field, ApplyRequest{}, &models.ApplyOutcome{})

	require.NoError(t, err)
	assert.Equal(t, 1, exec.checked, "the consent box ends up checked")
}

func TestApplyFieldActionLeavesUnwantedCheckboxAlone(t *testing.T) {
	e := newStepTestEngine(20)
	exec := &recordingFieldExecutor{}

	field := e.classifier.Classify(FieldFacts{
		Tag:       "input",
		Type:      "checkbox",
		Visible:   true,
		LabelText: "Subscribe to the newsletter",
	})
	require.Equal(t, KindCheckbox, field.Kind)
	require.False(t, field.ShouldCheck)

	err := e.applyFieldAction(exec, field, ApplyRequest{}, &models.ApplyOutcome{})

	require.NoError(t, err)
	assert.Zero(t, exec.checked)
}

func TestApplyFieldActionCoverLetterWithoutText(t *testing.T) {
	e := newStepTestEngine(20)
	exec := &recordingFieldExecutor{}
	outcome := &models.ApplyOutcome{}

	field := FormField{Kind: KindCoverLetter, LowConfidence: true}

	err := e.applyFieldAction(exec, field, ApplyRequest{}, outcome)

	require.NoError(t, err)
	assert.True(t, outcome.CoverLetterNeeded)
	assert.True(t, outcome.CoverLetterLowConfidence)
	assert.Empty(t, exec.letters, "nothing to fill without a letter")
}

func TestApplyFieldActionCoverLetterWithText(t *testing.T) {
	e := newStepTestEngine(20)
	exec := &recordingFieldExecutor{}
	outcome := &models.ApplyOutcome{}

	field := FormField{Kind: KindCoverLetter}
	req := ApplyRequest{CoverLetter: "Estimado equipo, ..."}

	err := e.applyFieldAction(exec, field, req, outcome)

	require.NoError(t, err)
	assert.True(t, outcome.CoverLetterNeeded)
	assert.Equal(t, []string{"Estimado equipo, ..."}, exec.letters)
}

func TestApplyFieldActionSelectAndText(t *testing.T) {
	e := newStepTestEngine(20)
	exec := &recordingFieldExecutor{}
	outcome := &models.ApplyOutcome{}

	require.NoError(t, e.applyFieldAction(exec, FormField{Kind: KindSelect, SelectIndex: 2}, ApplyRequest{}, outcome))
	require.NoError(t, e.applyFieldAction(exec, FormField{Kind: KindSelect, SelectIndex: -1}, ApplyRequest{}, outcome))
	require.NoError(t, e.applyFieldAction(exec, FormField{Kind: KindRequiredNumber, FillValue: "3"}, ApplyRequest{}, outcome))

	assert.Equal(t, []int{2}, exec.selected, "a -1 index leaves the select untouched")
	assert.Equal(t, []string{"3"}, exec.typed)
}

func TestApplyFieldActionUploadNeedsResumePath(t *testing.T) {
	e := newStepTestEngine(20)
	exec := &recordingFieldExecutor{}
	outcome := &models.ApplyOutcome{}

	field := FormField{Kind: KindFileUpload}

	require.NoError(t, e.applyFieldAction(exec, field, ApplyRequest{}, outcome))
	assert.Empty(t, exec.uploaded)

	require.NoError(t, e.applyFieldAction(exec, field, ApplyRequest{ResumePath: "/tmp/resume.pdf"}, outcome))
	assert.Equal(t, []string{"/tmp/resume.pdf"}, exec.uploaded)
}

func TestSplitLetterTail(t *testing.T) {
	head, tail := splitLetterTail("Hola")
	assert.Equal(t, "Hol", head)
	assert.Equal(t, "a", tail)

	// The last rune stays whole even when it is multi-byte
	head, tail = splitLetterTail("José")
	assert.Equal(t, "Jos", head)
	assert.Equal(t, "é", tail)

	head, tail = splitLetterTail("ñ")
	assert.Empty(t, head)
	assert.Equal(t, "ñ", tail)

	head, tail = splitLetterTail("")
	assert.Empty(t, head)
	assert.Empty(t, tail)
}
