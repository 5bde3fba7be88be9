// Package easyapply - click execution with method fallbacks
package easyapply

import (
	"errors"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"

	"linkedin-easyapply/internal/stealth"
)

// ErrAllClickMethodsFailed means every method in the fallback chain raised.
// A click that does not raise is only provisionally successful; callers
// verify the expected side effect (modal closed, confirmation shown) instead
// of trusting the call.
var ErrAllClickMethodsFailed = errors.New("all click methods failed")

// clickMethod is one named way of clicking an element
type clickMethod struct {
	name string
	fn   func() error
}

// tryClickChain runs the methods in order and returns the name of the first
// that does not raise
func tryClickChain(methods []clickMethod, logger zerolog.Logger) (string, error) {
	var lastErr error

	for _, m := range methods {
		if err := m.fn(); err != nil {
			logger.Debug().Str("method", m.name).Err(err).Msg("Click method failed")
			lastErr = err
			continue
		}
		logger.Debug().Str("method", m.name).Msg("Click method succeeded")
		return m.name, nil
	}

	return "", fmt.Errorf("%w: %v", ErrAllClickMethodsFailed, lastErr)
}

// clickChainFor builds the standard fallback chain for an element: native
// click, script-dispatched click, simulated pointer move-and-click, then a
// synthetic DOM event
func clickChainFor(page *rod.Page, el *rod.Element, mouse *stealth.MouseController) []clickMethod {
	return []clickMethod{
		{
			name: "native",
			fn: func() error {
				return el.Click(proto.InputMouseButtonLeft, 1)
			},
		},
		{
			name: "script",
			fn: func() error {
				_, err := el.Eval(`() => this.click()`)
				return err
			},
		},
		{
			name: "pointer",
			fn: func() error {
				return mouse.ClickElement(page, el)
			},
		},
		{
			name: "synthetic-event",
			fn: func() error {
				_, err := el.Eval(`() => {
					const ev = new MouseEvent('click', { bubbles: true, cancelable: true, view: window });
					this.dispatchEvent(ev);
				}`)
				return err
			},
		},
	}
}
