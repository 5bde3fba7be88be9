// Package easyapply - engine wiring
package easyapply

import (
	"github.com/go-rod/rod"
	"github.com/rs/zerolog"

	"linkedin-easyapply/internal/browser"
	"linkedin-easyapply/internal/config"
	"linkedin-easyapply/internal/stealth"
)

// Engine owns the apply-button locator and the Easy Apply step machine. It
// never stores a page beyond the duration of a single call; the orchestrator
// owns the browser session and passes the page in.
type Engine struct {
	pageHelper *browser.PageHelper
	stealth    *stealth.Controller
	resolver   *Resolver
	classifier *Classifier
	keywords   config.KeywordConfig
	cfg        *config.ApplyConfig
	logger     zerolog.Logger
}

// NewEngine creates the Easy Apply engine
func NewEngine(
	applyCfg *config.ApplyConfig,
	keywords config.KeywordConfig,
	defaults FieldDefaults,
	stealthCtrl *stealth.Controller,
	logger zerolog.Logger,
) *Engine {
	return &Engine{
		pageHelper: browser.NewPageHelper(logger),
		stealth:    stealthCtrl,
		resolver:   NewResolver(logger),
		classifier: NewClassifier(keywords, defaults, logger),
		keywords:   keywords,
		cfg:        applyCfg,
		logger:     logger.With().Str("component", "easyapply").Logger(),
	}
}

// ClickWithFallback clicks an element through the method chain and reports
// which method landed
func (e *Engine) ClickWithFallback(page *rod.Page, el *rod.Element) (string, error) {
	return tryClickChain(clickChainFor(page, el, e.stealth.Mouse()), e.logger)
}
