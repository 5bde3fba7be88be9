// Package easyapply drives the multi-step Easy Apply modal: classifying form
// fields, resolving buttons through locator fallback chains, and stepping the
// dialog to a terminal outcome.
package easyapply

import (
	"strings"

	"github.com/go-rod/rod"
	"github.com/rs/zerolog"

	"linkedin-easyapply/internal/config"
)

// FieldKind classifies a form field inside an application step
type FieldKind string

const (
	KindUnknown        FieldKind = "unknown"
	KindCoverLetter    FieldKind = "cover_letter"
	KindCheckbox       FieldKind = "checkbox"
	KindSelect         FieldKind = "select"
	KindRequiredText   FieldKind = "required_text"
	KindRequiredNumber FieldKind = "required_number"
	KindFileUpload     FieldKind = "file_upload"
)

// Size thresholds for cover-letter detection. The keyword-confirmed rule uses
// the smaller pair; the keyword-free fallback demands a larger control.
const (
	coverLetterMinHeight         = 60.0
	coverLetterMinWidth          = 300.0
	coverLetterFallbackMinHeight = 70.0
	coverLetterFallbackMinWidth  = 350.0
	coverLetterMinRows           = 4
	coverLetterMinCols           = 40
)

// FieldFacts is everything the classifier needs about one field, extracted
// from the live element in a single pass. Facts are transient: they are
// produced fresh on every step scan and never outlive the step.
type FieldFacts struct {
	Tag           string
	Type          string
	Visible       bool
	Required      bool
	Checked       bool
	Value         string
	AttributeText string // name, id, placeholder and aria-label, joined
	LabelText     string
	ContainerText string
	Width         float64
	Height        float64
	Rows          int
	Cols          int
	Options       []string
	SelectedIndex int
}

// FormField is one classified field plus the action the step machine should
// take on it
type FormField struct {
	Element *rod.Element
	Kind    FieldKind
	// ShouldCheck applies to KindCheckbox
	ShouldCheck bool
	// SelectIndex applies to KindSelect; -1 means leave untouched
	SelectIndex int
	// FillValue applies to KindRequiredText / KindRequiredNumber
	FillValue string
	// LowConfidence marks a cover-letter classification made purely from the
	// control's size, with no keyword confirmation anywhere nearby
	LowConfidence bool
	Snippet       string
}

// Classifier applies the ordered field-classification rules
type Classifier struct {
	keywords config.KeywordConfig
	defaults FieldDefaults
	logger   zerolog.Logger
}

// FieldDefaults are the values used to satisfy generic required inputs
type FieldDefaults struct {
	City        string
	Phone       string
	Years       string
	Affirmative string
}

// NewClassifier creates a classifier with the given keyword tables and
// fill-in defaults. Empty defaults get generic fallbacks.
func NewClassifier(keywords config.KeywordConfig, defaults FieldDefaults, logger zerolog.Logger) *Classifier {
	if defaults.City == "" {
		defaults.City = "Madrid"
	}
	if defaults.Phone == "" {
		defaults.Phone = "+34 600 000 000"
	}
	if defaults.Years == "" {
		defaults.Years = "3"
	}
	if defaults.Affirmative == "" {
		defaults.Affirmative = "Yes"
	}

	return &Classifier{
		keywords: keywords,
		defaults: defaults,
		logger:   logger.With().Str("component", "classifier").Logger(),
	}
}

// Classify applies the rules in fixed priority order; the first match wins.
// It only returns the classification; the step machine performs the action.
func (c *Classifier) Classify(f FieldFacts) FormField {
	field := FormField{Kind: KindUnknown, SelectIndex: -1, Snippet: snippet(f)}

	if !f.Visible {
		return field
	}

	clKeywords := c.keywords.CoverLetterKeywords()
	isTextControl := f.Tag == "textarea" || (f.Tag == "input" && (f.Type == "" || f.Type == "text"))

	// Rule 1: cover-letter keyword in the field's own attributes plus a
	// large multi-line control
	if isTextControl && config.ContainsAny(f.AttributeText, clKeywords) && isLargeControl(f, coverLetterMinHeight, coverLetterMinWidth) {
		field.Kind = KindCoverLetter
		return field
	}

	// Rule 2: keyword on the nearest label, confirmed by the surrounding
	// container also mentioning it
	if isTextControl && config.ContainsAny(f.LabelText, clKeywords) && config.ContainsAny(f.ContainerText, clKeywords) {
		field.Kind = KindCoverLetter
		return field
	}

	// Rule 3: no keyword anywhere, but an unusually large textarea. Cover
	// letters are the costliest field to miss, so this rule is permissive;
	// the low-confidence mark flows into the persisted note for review.
	if f.Tag == "textarea" && (f.Height >= coverLetterFallbackMinHeight || f.Width >= coverLetterFallbackMinWidth) {
		field.Kind = KindCoverLetter
		field.LowConfidence = true
		return field
	}

	// Rule 4: unchecked checkboxes. Consent-labeled and label-less boxes are
	// both flagged should-check; an unchecked required box sinks the step.
	if f.Tag == "input" && f.Type == "checkbox" && !f.Checked {
		field.Kind = KindCheckbox
		label := strings.TrimSpace(f.LabelText)
		field.ShouldCheck = label == "" || config.ContainsAny(label, c.keywords.ConsentKeywords())
		return field
	}

	// Rule 5: dropdowns with nothing chosen yet
	if f.Tag == "select" && f.SelectedIndex <= 0 && len(f.Options) > 1 {
		field.Kind = KindSelect
		field.SelectIndex = chooseOption(f.Options, c.keywords.AffirmativeTokens())
		return field
	}

	// Rule 6: empty required inputs
	if f.Tag == "input" && f.Required && f.Type != "hidden" && f.Type != "checkbox" && f.Type != "file" && strings.TrimSpace(f.Value) == "" {
		if f.Type == "number" {
			field.Kind = KindRequiredNumber
			field.FillValue = c.defaults.Years
		} else {
			field.Kind = KindRequiredText
			field.FillValue = c.defaultForText(f.AttributeText)
		}
		return field
	}

	// Rule 7: file uploads
	if f.Tag == "input" && f.Type == "file" {
		field.Kind = KindFileUpload
		return field
	}

	return field
}

// defaultForText picks a fill value by scanning the field's combined
// attribute text for domain hints
func (c *Classifier) defaultForText(attrText string) string {
	switch {
	case config.ContainsAny(attrText, c.keywords.CityFieldHints()):
		return c.defaults.City
	case config.ContainsAny(attrText, c.keywords.PhoneFieldHints()):
		return c.defaults.Phone
	case config.ContainsAny(attrText, c.keywords.ExperienceFieldHints()):
		return c.defaults.Years
	default:
		return c.defaults.Affirmative
	}
}

// isLargeControl checks the rule-1 size predicate: box dimensions or a large
// row/column count
func isLargeControl(f FieldFacts, minHeight, minWidth float64) bool {
	if f.Height >= minHeight || f.Width >= minWidth {
		return true
	}
	return f.Rows >= coverLetterMinRows || f.Cols >= coverLetterMinCols
}

// chooseOption picks the select option to use: an exact affirmative token
// match wins, else the first non-empty option past the placeholder. Returns
// -1 when nothing usable exists.
func chooseOption(options []string, affirmative []string) int {
	for i, opt := range options {
		lo := strings.ToLower(strings.TrimSpace(opt))
		for _, tok := range affirmative {
			if lo == tok {
				return i
			}
		}
	}

	for i := 1; i < len(options); i++ {
		if strings.TrimSpace(options[i]) != "" {
			return i
		}
	}

	return -1
}

// snippet produces a short contextual description for logging and notes
func snippet(f FieldFacts) string {
	s := f.LabelText
	if s == "" {
		s = f.AttributeText
	}
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 80 {
		s = s[:80]
	}
	return s
}
