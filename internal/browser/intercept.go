package browser

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/spectolabs/specto/internal/common"
)

// StubResponse is the canned response a matched request receives instead of
// reaching any real network.
type StubResponse struct {
	Status      int64
	ContentType string
	Body        []byte
}

// stubRule binds a compiled URL pattern to its canned response
type stubRule struct {
	pattern  string
	re       *regexp.Regexp
	response StubResponse
}

// Interceptor owns the session's network interception rule set. Rules form an
// ordered list that only grows for the remainder of the session; the FIRST
// registered rule whose pattern matches a paused request wins, so overlapping
// patterns resolve deterministically by registration order. Requests matching
// no rule continue to the real network untouched.
type Interceptor struct {
	session *Session
	logger  arbor.ILogger
	mu      sync.RWMutex
	rules   []stubRule
	enabled bool
}

// NewInterceptor creates the interceptor for a session. Interception stays
// dormant until the first stub is registered.
func NewInterceptor(session *Session, logger arbor.ILogger) *Interceptor {
	ic := &Interceptor{
		session: session,
		logger:  logger,
	}
	chromedp.ListenTarget(session.ctx, ic.onEvent)
	return ic
}

// Stub registers a pattern -> canned response binding, active from this call
// until the session ends. The fetch domain is enabled on the first
// registration so stub-free sessions pay no interception cost.
func (ic *Interceptor) Stub(pattern string, response StubResponse) error {
	re, err := compilePattern(pattern)
	if err != nil {
		return err
	}

	ic.mu.Lock()
	ic.rules = append(ic.rules, stubRule{pattern: pattern, re: re, response: response})
	needEnable := !ic.enabled
	ic.enabled = true
	total := len(ic.rules)
	ic.mu.Unlock()

	if needEnable {
		if err := chromedp.Run(ic.session.ctx, fetch.Enable()); err != nil {
			return fmt.Errorf("failed to enable request interception: %w", err)
		}
	}

	ic.logger.Debug().
		Str("pattern", pattern).
		Int64("status", response.Status).
		Int("rules", total).
		Msg("Route stub registered")

	return nil
}

// onEvent receives target events on the browser event goroutine. Resolution
// happens on a separate goroutine because the listener must never block.
func (ic *Interceptor) onEvent(ev interface{}) {
	paused, ok := ev.(*fetch.EventRequestPaused)
	if !ok {
		return
	}
	common.SafeGo(ic.logger, "resolveRequest", func() {
		ic.resolve(paused)
	})
}

// resolve answers a paused request from the rule set or lets it continue
func (ic *Interceptor) resolve(paused *fetch.EventRequestPaused) {
	ctx := cdp.WithExecutor(ic.session.ctx, chromedp.FromContext(ic.session.ctx).Target)

	rule, matched := ic.match(paused.Request.URL)
	if !matched {
		if err := fetch.ContinueRequest(paused.RequestID).Do(ctx); err != nil {
			ic.logger.Debug().
				Err(err).
				Str("url", paused.Request.URL).
				Msg("Failed to continue unmatched request")
		}
		return
	}

	headers := []*fetch.HeaderEntry{
		{Name: "Content-Type", Value: rule.response.ContentType},
	}
	err := fetch.FulfillRequest(paused.RequestID, rule.response.Status).
		WithResponseHeaders(headers).
		WithBody(base64.StdEncoding.EncodeToString(rule.response.Body)).
		Do(ctx)
	if err != nil {
		ic.logger.Warn().
			Err(err).
			Str("url", paused.Request.URL).
			Str("pattern", rule.pattern).
			Msg("Failed to fulfill stubbed request")
		return
	}

	ic.logger.Debug().
		Str("url", paused.Request.URL).
		Str("pattern", rule.pattern).
		Int64("status", rule.response.Status).
		Msg("Request answered from stub")
}

// match returns the first registered rule matching url
func (ic *Interceptor) match(url string) (stubRule, bool) {
	ic.mu.RLock()
	defer ic.mu.RUnlock()

	for _, rule := range ic.rules {
		if rule.re.MatchString(url) {
			return rule, true
		}
	}
	return stubRule{}, false
}
