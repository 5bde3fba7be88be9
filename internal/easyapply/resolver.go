// Package easyapply - multi-strategy element resolution
package easyapply

import (
	"strings"

	"github.com/go-rod/rod"
	"github.com/rs/zerolog"

	"linkedin-easyapply/internal/config"
)

// Confidence grades how a match was found. Callers gate destructive actions
// (final submit) on this tier.
type Confidence int

const (
	ConfidenceNone Confidence = iota
	ConfidenceScored
	ConfidenceStructural
	ConfidenceText
	ConfidenceDirect
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceDirect:
		return "direct"
	case ConfidenceText:
		return "text"
	case ConfidenceStructural:
		return "structural"
	case ConfidenceScored:
		return "scored"
	default:
		return "none"
	}
}

// Scope is the subtree a strategy searches. Both *rod.Page and *rod.Element
// satisfy it, so targets can be resolved page-wide or inside a modal.
type Scope interface {
	Elements(selector string) (rod.Elements, error)
}

// Target describes a semantic element to find ("the submit button") in terms
// each strategy understands
type Target struct {
	Name           string
	Tag            string   // tag enumerated by text and scored searches
	Selectors      []string // direct locators, tried in order
	Keywords       []string // label substrings, all locales flattened
	PanelSelectors []string // containers for the structural strategy
}

// Match is a resolved element plus how much to trust it
type Match struct {
	Element    *rod.Element
	Confidence Confidence
	Strategy   string
}

// Strategy is one way of attempting to resolve a target. Strategies are
// iterated in order; the first visible, enabled result wins.
type Strategy interface {
	Name() string
	Confidence() Confidence
	Attempt(scope Scope, target Target) (*rod.Element, error)
}

// Resolver runs the strategy chain against a scope
type Resolver struct {
	strategies []Strategy
	logger     zerolog.Logger
}

// NewResolver creates a resolver with the standard strategy order:
// direct selectors, scoped text search, panel-structural search, scored
// exhaustive search
func NewResolver(logger zerolog.Logger) *Resolver {
	return &Resolver{
		strategies: []Strategy{
			directStrategy{},
			textStrategy{},
			structuralStrategy{},
			scoredStrategy{},
		},
		logger: logger.With().Str("component", "resolver").Logger(),
	}
}

// Resolve tries each strategy in order and returns the first usable match,
// or nil when no strategy yields one. Absence is a value here, not an error;
// the caller decides whether it is fatal.
func (r *Resolver) Resolve(scope Scope, target Target) *Match {
	for _, strat := range r.strategies {
		el, err := strat.Attempt(scope, target)
		if err != nil {
			r.logger.Debug().
				Str("target", target.Name).
				Str("strategy", strat.Name()).
				Err(err).
				Msg("Strategy failed")
			continue
		}
		if el == nil {
			continue
		}

		r.logger.Debug().
			Str("target", target.Name).
			Str("strategy", strat.Name()).
			Msg("Target resolved")

		return &Match{
			Element:    el,
			Confidence: strat.Confidence(),
			Strategy:   strat.Name(),
		}
	}

	r.logger.Debug().Str("target", target.Name).Msg("No strategy resolved target")
	return nil
}

// interactable reports whether an element is visible and not disabled
func interactable(el *rod.Element) bool {
	visible, err := el.Visible()
	if err != nil || !visible {
		return false
	}

	res, err := el.Eval(`() => this.disabled === true || this.getAttribute('aria-disabled') === 'true'`)
	if err != nil {
		return false
	}
	return !res.Value.Bool()
}

// directStrategy tries the target's own selector list in order
type directStrategy struct{}

func (directStrategy) Name() string           { return "direct" }
func (directStrategy) Confidence() Confidence { return ConfidenceDirect }

func (directStrategy) Attempt(scope Scope, target Target) (*rod.Element, error) {
	for _, selector := range target.Selectors {
		elements, err := scope.Elements(selector)
		if err != nil {
			continue
		}
		for _, el := range elements {
			if interactable(el) {
				return el, nil
			}
		}
	}
	return nil, nil
}

// textStrategy enumerates the expected tag and matches visible text against
// the target's keyword set
type textStrategy struct{}

func (textStrategy) Name() string           { return "text" }
func (textStrategy) Confidence() Confidence { return ConfidenceText }

func (textStrategy) Attempt(scope Scope, target Target) (*rod.Element, error) {
	if target.Tag == "" || len(target.Keywords) == 0 {
		return nil, nil
	}

	elements, err := scope.Elements(target.Tag)
	if err != nil {
		return nil, err
	}

	for _, el := range elements {
		text, err := el.Text()
		if err != nil {
			continue
		}
		if config.ContainsAny(text, target.Keywords) && interactable(el) {
			return el, nil
		}
	}
	return nil, nil
}

// structuralStrategy locates the target's panel first, then searches only
// inside it with the direct and text strategies
type structuralStrategy struct{}

func (structuralStrategy) Name() string           { return "structural" }
func (structuralStrategy) Confidence() Confidence { return ConfidenceStructural }

func (structuralStrategy) Attempt(scope Scope, target Target) (*rod.Element, error) {
	for _, panelSelector := range target.PanelSelectors {
		panels, err := scope.Elements(panelSelector)
		if err != nil {
			continue
		}

		for _, panel := range panels {
			if el, err := (directStrategy{}).Attempt(panel, target); err == nil && el != nil {
				return el, nil
			}
			if el, err := (textStrategy{}).Attempt(panel, target); err == nil && el != nil {
				return el, nil
			}
		}
	}
	return nil, nil
}

// Candidate holds the scoring facts for one element in a scored search
type Candidate struct {
	Text    string
	Aria    string
	Class   string
	ID      string
	Y       float64
	Visible bool
	Enabled bool
}

// Score computes the candidate's relevance for a keyword set: keyword in
// visible text +5, in aria-label +4, in class +3, in id +3, plus up to +2
// for sitting near the top of the viewport. Position alone never scores; a
// candidate with no keyword evidence stays at zero.
func (c Candidate) Score(keywords []string) int {
	score := 0
	if config.ContainsAny(c.Text, keywords) {
		score += 5
	}
	if config.ContainsAny(c.Aria, keywords) {
		score += 4
	}
	if config.ContainsAny(c.Class, keywords) {
		score += 3
	}
	if config.ContainsAny(c.ID, keywords) {
		score += 3
	}
	if score == 0 {
		return 0
	}
	if c.Y >= 0 {
		if c.Y < 300 {
			score += 2
		} else if c.Y < 500 {
			score++
		}
	}
	return score
}

// pickBest returns the index of the highest-scoring usable candidate, ties
// broken by encounter order. Returns -1 when no candidate scores above zero.
func pickBest(candidates []Candidate, keywords []string) int {
	best := -1
	bestScore := 0

	for i, c := range candidates {
		if !c.Visible || !c.Enabled {
			continue
		}
		if s := c.Score(keywords); s > bestScore {
			best = i
			bestScore = s
		}
	}

	return best
}

const candidateJS = `() => {
	const rect = this.getBoundingClientRect();
	const style = window.getComputedStyle(this);
	return {
		text: (this.innerText || '').slice(0, 200),
		aria: this.getAttribute('aria-label') || '',
		class: this.className && this.className.toString ? this.className.toString() : '',
		id: this.id || '',
		y: rect.top,
		visible: style.display !== 'none' && style.visibility !== 'hidden' && rect.width > 0 && rect.height > 0,
		enabled: this.disabled !== true && this.getAttribute('aria-disabled') !== 'true'
	};
}`

// describeCandidate extracts scoring facts from a live element
func describeCandidate(el *rod.Element) (Candidate, error) {
	res, err := el.Eval(candidateJS)
	if err != nil {
		return Candidate{}, err
	}

	v := res.Value
	return Candidate{
		Text:    strings.TrimSpace(v.Get("text").Str()),
		Aria:    v.Get("aria").Str(),
		Class:   v.Get("class").Str(),
		ID:      v.Get("id").Str(),
		Y:       v.Get("y").Num(),
		Visible: v.Get("visible").Bool(),
		Enabled: v.Get("enabled").Bool(),
	}, nil
}

// CollectCandidates enumerates a tag within the scope and describes each
// element for scoring
func CollectCandidates(scope Scope, tag string) ([]Candidate, rod.Elements, error) {
	elements, err := scope.Elements(tag)
	if err != nil {
		return nil, nil, err
	}

	candidates := make([]Candidate, 0, len(elements))
	kept := make(rod.Elements, 0, len(elements))

	for _, el := range elements {
		c, err := describeCandidate(el)
		if err != nil {
			continue
		}
		candidates = append(candidates, c)
		kept = append(kept, el)
	}

	return candidates, kept, nil
}

// scoredStrategy enumerates the whole scope for the target's tag and returns
// the highest-scoring visible, enabled candidate
type scoredStrategy struct{}

func (scoredStrategy) Name() string           { return "scored" }
func (scoredStrategy) Confidence() Confidence { return ConfidenceScored }

func (scoredStrategy) Attempt(scope Scope, target Target) (*rod.Element, error) {
	if target.Tag == "" || len(target.Keywords) == 0 {
		return nil, nil
	}

	candidates, elements, err := CollectCandidates(scope, target.Tag)
	if err != nil {
		return nil, err
	}

	idx := pickBest(candidates, target.Keywords)
	if idx < 0 {
		return nil, nil
	}
	return elements[idx], nil
}
