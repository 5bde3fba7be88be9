package easyapply

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"linkedin-easyapply/internal/config"
)

func newTestClassifier() *Classifier {
	return NewClassifier(config.DefaultKeywords(), FieldDefaults{
		City:  "Madrid",
		Phone: "+34 600 000 000",
		Years: "3",
	}, zerolog.Nop())
}

func TestClassifyCoverLetterByAttributeKeyword(t *testing.T) {
	c := newTestClassifier()

	field := c.Classify(FieldFacts{
		Tag:           "textarea",
		Visible:       true,
		AttributeText: "coverletter cover letter text",
		Height:        65,
		Width:         200,
	})

	assert.Equal(t, KindCoverLetter, field.Kind)
	assert.False(t, field.LowConfidence)
}

func TestClassifyCoverLetterSpanishKeyword(t *testing.T) {
	c := newTestClassifier()

	field := c.Classify(FieldFacts{
		Tag:           "textarea",
		Visible:       true,
		AttributeText: "carta de presentación",
		Height:        30,
		Width:         320,
	})

	assert.Equal(t, KindCoverLetter, field.Kind)
}

func TestClassifyCoverLetterSmallKeywordFieldRejected(t *testing.T) {
	c := newTestClassifier()

	// Keyword present but the control is small in every dimension
	field := c.Classify(FieldFacts{
		Tag:           "textarea",
		Visible:       true,
		AttributeText: "cover letter",
		Height:        30,
		Width:         150,
		Rows:          2,
		Cols:          20,
	})

	assert.NotEqual(t, KindCoverLetter, field.Kind)
}

func TestClassifyCoverLetterByRowCount(t *testing.T) {
	c := newTestClassifier()

	field := c.Classify(FieldFacts{
		Tag:           "textarea",
		Visible:       true,
		AttributeText: "cover letter",
		Rows:          6,
	})

	assert.Equal(t, KindCoverLetter, field.Kind)
}

func TestClassifyCoverLetterByLabelWithContainerConfirmation(t *testing.T) {
	c := newTestClassifier()

	field := c.Classify(FieldFacts{
		Tag:           "textarea",
		Visible:       true,
		LabelText:     "Cover letter",
		ContainerText: "Please paste your cover letter below",
	})

	assert.Equal(t, KindCoverLetter, field.Kind)
	assert.False(t, field.LowConfidence)
}

func TestClassifyCoverLetterLabelWithoutContainerConfirmationRejected(t *testing.T) {
	c := newTestClassifier()

	// Label says cover letter but the container never mentions it; the
	// confirmation step exists exactly to reject this
	field := c.Classify(FieldFacts{
		Tag:           "textarea",
		Visible:       true,
		LabelText:     "Cover letter",
		ContainerText: "Tell us about your salary expectations",
		Height:        40,
	})

	assert.NotEqual(t, KindCoverLetter, field.Kind)
}

func TestClassifyLargeUnlabeledTextareaIsLowConfidenceCoverLetter(t *testing.T) {
	c := newTestClassifier()

	// No keyword anywhere, but an 80px-tall textarea
	field := c.Classify(FieldFacts{
		Tag:     "textarea",
		Visible: true,
		Height:  80,
		Width:   200,
	})

	assert.Equal(t, KindCoverLetter, field.Kind)
	assert.True(t, field.LowConfidence)
}

func TestClassifyMediumTextareaNotCoverLetter(t *testing.T) {
	c := newTestClassifier()

	field := c.Classify(FieldFacts{
		Tag:     "textarea",
		Visible: true,
		Height:  65,
		Width:   340,
	})

	assert.NotEqual(t, KindCoverLetter, field.Kind)
}

func TestClassifyInvisibleFieldNeverCoverLetter(t *testing.T) {
	c := newTestClassifier()

	field := c.Classify(FieldFacts{
		Tag:           "textarea",
		Visible:       false,
		AttributeText: "cover letter",
		Height:        200,
		Width:         600,
	})

	assert.Equal(t, KindUnknown, field.Kind)
}

func TestClassifyConsentCheckbox(t *testing.T) {
	c := newTestClassifier()

	field := c.Classify(FieldFacts{
		Tag:       "input",
		Type:      "checkbox",
		Visible:   true,
		LabelText: "I agree to the Terms",
	})

	assert.Equal(t, KindCheckbox, field.Kind)
	assert.True(t, field.ShouldCheck)
}

func TestClassifyUnlabeledCheckboxStillChecked(t *testing.T) {
	c := newTestClassifier()

	field := c.Classify(FieldFacts{
		Tag:     "input",
		Type:    "checkbox",
		Visible: true,
	})

	assert.Equal(t, KindCheckbox, field.Kind)
	assert.True(t, field.ShouldCheck, "label-less checkboxes are checked permissively")
}

func TestClassifyUnrelatedLabeledCheckboxNotChecked(t *testing.T) {
	c := newTestClassifier()

	field := c.Classify(FieldFacts{
		Tag:       "input",
		Type:      "checkbox",
		Visible:   true,
		LabelText: "Subscribe to the newsletter",
	})

	assert.Equal(t, KindCheckbox, field.Kind)
	assert.False(t, field.ShouldCheck)
}

func TestClassifyCheckedCheckboxIgnored(t *testing.T) {
	c := newTestClassifier()

	field := c.Classify(FieldFacts{
		Tag:       "input",
		Type:      "checkbox",
		Visible:   true,
		Checked:   true,
		LabelText: "I agree to the Terms",
	})

	assert.Equal(t, KindUnknown, field.Kind)
}

func TestClassifySelectPrefersAffirmative(t *testing.T) {
	c := newTestClassifier()

	field := c.Classify(FieldFacts{
		Tag:           "select",
		Visible:       true,
		Options:       []string{"Select an option", "No", "Yes"},
		SelectedIndex: 0,
	})

	assert.Equal(t, KindSelect, field.Kind)
	assert.Equal(t, 2, field.SelectIndex)
}

func TestClassifySelectSpanishAffirmative(t *testing.T) {
	c := newTestClassifier()

	field := c.Classify(FieldFacts{
		Tag:           "select",
		Visible:       true,
		Options:       []string{"Seleccionar", "No", "Sí"},
		SelectedIndex: 0,
	})

	assert.Equal(t, 2, field.SelectIndex)
}

func TestClassifySelectFallsBackToFirstRealOption(t *testing.T) {
	c := newTestClassifier()

	field := c.Classify(FieldFacts{
		Tag:           "select",
		Visible:       true,
		Options:       []string{"Choose", "0-1 years", "2-4 years"},
		SelectedIndex: 0,
	})

	assert.Equal(t, KindSelect, field.Kind)
	assert.Equal(t, 1, field.SelectIndex)
}

func TestClassifyPreselectedSelectIgnored(t *testing.T) {
	c := newTestClassifier()

	field := c.Classify(FieldFacts{
		Tag:           "select",
		Visible:       true,
		Options:       []string{"Choose", "Yes", "No"},
		SelectedIndex: 1,
	})

	assert.Equal(t, KindUnknown, field.Kind)
}

func TestClassifyRequiredTextDefaults(t *testing.T) {
	c := newTestClassifier()

	cases := []struct {
		attrText string
		want     string
	}{
		{"input-city-home", "Madrid"},
		{"ciudad de residencia", "Madrid"},
		{"phone number", "+34 600 000 000"},
		{"teléfono de contacto", "+34 600 000 000"},
		{"years of experience", "3"},
		{"años de experiencia", "3"},
		{"willing to relocate", "Yes"},
	}

	for _, tc := range cases {
		field := c.Classify(FieldFacts{
			Tag:           "input",
			Type:          "text",
			Visible:       true,
			Required:      true,
			AttributeText: tc.attrText,
		})

		assert.Equal(t, KindRequiredText, field.Kind, tc.attrText)
		assert.Equal(t, tc.want, field.FillValue, tc.attrText)
	}
}

func TestClassifyRequiredNumber(t *testing.T) {
	c := newTestClassifier()

	field := c.Classify(FieldFacts{
		Tag:      "input",
		Type:     "number",
		Visible:  true,
		Required: true,
	})

	assert.Equal(t, KindRequiredNumber, field.Kind)
	assert.Equal(t, "3", field.FillValue)
}

func TestClassifyFilledRequiredInputIgnored(t *testing.T) {
	c := newTestClassifier()

	field := c.Classify(FieldFacts{
		Tag:      "input",
		Type:     "text",
		Visible:  true,
		Required: true,
		Value:    "already filled",
	})

	assert.Equal(t, KindUnknown, field.Kind)
}

func TestClassifyFileUpload(t *testing.T) {
	c := newTestClassifier()

	field := c.Classify(FieldFacts{
		Tag:     "input",
		Type:    "file",
		Visible: true,
	})

	assert.Equal(t, KindFileUpload, field.Kind)
}

func TestChooseOptionNoUsableOption(t *testing.T) {
	idx := chooseOption([]string{"Choose", "", "  "}, []string{"yes"})
	assert.Equal(t, -1, idx)
}
