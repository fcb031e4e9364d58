package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"golang.org/x/time/rate"
)

// WaitVisible blocks until the selector is visible on the page or the bound
// expires. This is the documented implicit wait for form control lookups.
func (s *Session) WaitVisible(selector string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	if err := chromedp.Run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return fmt.Errorf("element %q not visible within %s: %w", selector, timeout, err)
	}
	return nil
}

// WaitForURL polls the page location until it matches the URL pattern or the
// bound expires. The last observed URL is returned either way so timeout
// diagnostics can report where the page actually was.
func (s *Session) WaitForURL(pattern string, timeout, pollInterval time.Duration) (string, error) {
	re, err := compilePattern(pattern)
	if err != nil {
		return "", err
	}

	if pollInterval <= 0 {
		pollInterval = 100 * time.Millisecond
	}

	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	limiter := rate.NewLimiter(rate.Every(pollInterval), 1)
	lastURL := ""
	for {
		if err := limiter.Wait(ctx); err != nil {
			break
		}

		var current string
		if err := chromedp.Run(ctx, chromedp.Location(&current)); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				break
			}
			return lastURL, fmt.Errorf("failed to read URL while waiting for %q: %w", pattern, err)
		}
		lastURL = current

		if re.MatchString(current) {
			return current, nil
		}
	}

	// Best-effort refresh so the reported URL is current at the moment of failure
	refreshCtx, refreshCancel := context.WithTimeout(s.ctx, 2*time.Second)
	defer refreshCancel()
	var current string
	if err := chromedp.Run(refreshCtx, chromedp.Location(&current)); err == nil && current != "" {
		lastURL = current
	}

	return lastURL, fmt.Errorf("url did not match pattern %q within %s: %w", pattern, timeout, context.DeadlineExceeded)
}

// WaitForText waits until the rendered DOM contains the text or the bound
// expires. Detection runs inside the page against innerText, so it sees what a
// user-visible render produced rather than raw markup.
func (s *Session) WaitForText(text string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	expr := fmt.Sprintf(`document.body !== null && document.body.innerText.includes(%q)`, text)

	var found bool
	if err := chromedp.Run(ctx, chromedp.Poll(expr, &found, chromedp.WithPollingInterval(200*time.Millisecond))); err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return fmt.Errorf("text %q not rendered within %s: %w", text, timeout, err)
	}
	return nil
}
