// Package config - locale-keyed keyword tables used by the form heuristics.
// Adding a locale is a data change here (or in YAML), not a code change.
package config

import "strings"

// KeywordConfig holds the heuristic keyword tables, keyed by locale code.
// Lookups always operate on the union of all configured locales.
type KeywordConfig struct {
	CoverLetter     map[string][]string `yaml:"cover_letter"`
	Consent         map[string][]string `yaml:"consent"`
	Affirmative     map[string][]string `yaml:"affirmative"`
	AlreadyApplied  map[string][]string `yaml:"already_applied"`
	FinalSubmit     map[string][]string `yaml:"final_submit"`
	NextStep        map[string][]string `yaml:"next_step"`
	SuccessMessage  map[string][]string `yaml:"success_message"`
	EasyApplyLabel  map[string][]string `yaml:"easy_apply_label"`
	ApplyLabel      map[string][]string `yaml:"apply_label"`
	CityHints       map[string][]string `yaml:"city_hints"`
	PhoneHints      map[string][]string `yaml:"phone_hints"`
	ExperienceHints map[string][]string `yaml:"experience_hints"`
}

// DefaultKeywords returns the built-in English + Spanish tables
func DefaultKeywords() KeywordConfig {
	return KeywordConfig{
		CoverLetter: map[string][]string{
			"en": {"cover letter", "cover", "additional information"},
			"es": {"carta de presentación", "carta"},
		},
		Consent: map[string][]string{
			"en": {"consent", "agree", "terms"},
			"es": {"acepto", "autorizo"},
		},
		Affirmative: map[string][]string{
			"en": {"yes"},
			"es": {"sí", "si"},
		},
		AlreadyApplied: map[string][]string{
			"en": {"applied", "application sent"},
			"es": {"solicitado", "solicitud enviada"},
		},
		FinalSubmit: map[string][]string{
			"en": {"submit"},
			"es": {"enviar"},
		},
		NextStep: map[string][]string{
			"en": {"next", "continue", "review"},
			"es": {"siguiente", "revisar"},
		},
		SuccessMessage: map[string][]string{
			"en": {"application sent", "applied"},
			"es": {"solicitud enviada", "aplicado"},
		},
		EasyApplyLabel: map[string][]string{
			"en": {"easy apply"},
			"es": {"solicitud sencilla"},
		},
		ApplyLabel: map[string][]string{
			"en": {"apply"},
			"es": {"solicitar"},
		},
		CityHints: map[string][]string{
			"en": {"city"},
			"es": {"ciudad"},
		},
		PhoneHints: map[string][]string{
			"en": {"phone"},
			"es": {"teléfono", "telefono"},
		},
		ExperienceHints: map[string][]string{
			"en": {"years", "experience"},
			"es": {"años", "experiencia"},
		},
	}
}

// fillMissing copies any table absent from this config from the defaults
func (k *KeywordConfig) fillMissing(def KeywordConfig) {
	fill := func(dst *map[string][]string, src map[string][]string) {
		if len(*dst) == 0 {
			*dst = src
		}
	}
	fill(&k.CoverLetter, def.CoverLetter)
	fill(&k.Consent, def.Consent)
	fill(&k.Affirmative, def.Affirmative)
	fill(&k.AlreadyApplied, def.AlreadyApplied)
	fill(&k.FinalSubmit, def.FinalSubmit)
	fill(&k.NextStep, def.NextStep)
	fill(&k.SuccessMessage, def.SuccessMessage)
	fill(&k.EasyApplyLabel, def.EasyApplyLabel)
	fill(&k.ApplyLabel, def.ApplyLabel)
	fill(&k.CityHints, def.CityHints)
	fill(&k.PhoneHints, def.PhoneHints)
	fill(&k.ExperienceHints, def.ExperienceHints)
}

// flatten returns the lowercased, deduplicated union of all locales in a
// table. Match logic is order independent.
func flatten(table map[string][]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, words := range table {
		for _, w := range words {
			lw := strings.ToLower(strings.TrimSpace(w))
			if lw == "" || seen[lw] {
				continue
			}
			seen[lw] = true
			out = append(out, lw)
		}
	}
	return out
}

// CoverLetterKeywords returns cover-letter keywords across all locales
func (k KeywordConfig) CoverLetterKeywords() []string { return flatten(k.CoverLetter) }

// ConsentKeywords returns consent/agreement keywords across all locales
func (k KeywordConfig) ConsentKeywords() []string { return flatten(k.Consent) }

// AffirmativeTokens returns affirmative option tokens across all locales
func (k KeywordConfig) AffirmativeTokens() []string { return flatten(k.Affirmative) }

// AlreadyAppliedMarkers returns already-applied indicators across all locales
func (k KeywordConfig) AlreadyAppliedMarkers() []string { return flatten(k.AlreadyApplied) }

// FinalSubmitLabels returns final-submit button labels across all locales
func (k KeywordConfig) FinalSubmitLabels() []string { return flatten(k.FinalSubmit) }

// NextStepLabels returns next/continue button labels across all locales
func (k KeywordConfig) NextStepLabels() []string { return flatten(k.NextStep) }

// SuccessMessages returns post-submit confirmation markers across all locales
func (k KeywordConfig) SuccessMessages() []string { return flatten(k.SuccessMessage) }

// EasyApplyButtonLabels returns Easy Apply button labels across all locales.
// Callers must check these before ApplyButtonLabels: the plain labels are
// substrings of these.
func (k KeywordConfig) EasyApplyButtonLabels() []string { return flatten(k.EasyApplyLabel) }

// ApplyButtonLabels returns plain apply button labels across all locales
func (k KeywordConfig) ApplyButtonLabels() []string { return flatten(k.ApplyLabel) }

// CityFieldHints returns hints identifying a city input across all locales
func (k KeywordConfig) CityFieldHints() []string { return flatten(k.CityHints) }

// PhoneFieldHints returns hints identifying a phone input across all locales
func (k KeywordConfig) PhoneFieldHints() []string { return flatten(k.PhoneHints) }

// ExperienceFieldHints returns hints identifying an experience input across all locales
func (k KeywordConfig) ExperienceFieldHints() []string { return flatten(k.ExperienceHints) }

// ContainsAny reports whether text contains any of the keywords
// (case-insensitive)
func ContainsAny(text string, keywords []string) bool {
	lt := strings.ToLower(text)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lt, kw) {
			return true
		}
	}
	return false
}
