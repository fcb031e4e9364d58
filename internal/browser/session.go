package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"
)

// Session owns a single headless browser process and the one page context a
// verification run drives. Created at run start, released exactly once via
// Close on every exit path; no two callers share a session.
type Session struct {
	ctx             context.Context
	browserCancel   context.CancelFunc
	allocatorCancel context.CancelFunc
	logger          arbor.ILogger
	closeOnce       sync.Once
}

// Options holds configuration for launching the browser session
type Options struct {
	Headless       bool
	WindowWidth    int
	WindowHeight   int
	UserAgent      string
	StartupTimeout time.Duration
}

// NewSession launches a browser instance and verifies it responds. Failure
// here is fatal to the run; callers propagate immediately without retrying.
func NewSession(ctx context.Context, opts Options, logger arbor.ILogger) (*Session, error) {
	startTime := time.Now()

	allocatorOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(opts.WindowWidth, opts.WindowHeight),
	)
	if opts.UserAgent != "" {
		allocatorOpts = append(allocatorOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(ctx, allocatorOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)

	startupTimeout := opts.StartupTimeout
	if startupTimeout <= 0 {
		startupTimeout = 20 * time.Second
	}

	testCtx, testCancel := context.WithTimeout(browserCtx, startupTimeout)
	defer testCancel()

	// Startup test: the first Run launches the process
	if err := chromedp.Run(testCtx, chromedp.Navigate("about:blank")); err != nil {
		browserCancel()
		allocatorCancel()
		return nil, fmt.Errorf("browser failed startup test: %w", err)
	}

	var title string
	if err := chromedp.Run(testCtx, chromedp.Title(&title)); err != nil {
		browserCancel()
		allocatorCancel()
		return nil, fmt.Errorf("browser failed responsiveness test: %w", err)
	}

	logger.Debug().
		Dur("startup_time", time.Since(startTime)).
		Bool("headless", opts.Headless).
		Int("window_width", opts.WindowWidth).
		Int("window_height", opts.WindowHeight).
		Msg("Browser session created and tested successfully")

	return &Session{
		ctx:             browserCtx,
		browserCancel:   browserCancel,
		allocatorCancel: allocatorCancel,
		logger:          logger,
	}, nil
}

// Context returns the page context all browser actions run against
func (s *Session) Context() context.Context {
	return s.ctx
}

// CurrentURL returns the page's current location
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	var url string
	if err := chromedp.Run(ctx, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("failed to read current URL: %w", err)
	}
	return url, nil
}

// PageSource returns the full rendered markup of the current page
func (s *Session) PageSource(ctx context.Context) (string, error) {
	var html string
	if err := chromedp.Run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read page source: %w", err)
	}
	return html, nil
}

// Close releases the browser process. Only the first call acts, so deferred
// cleanup and explicit shutdown cannot double-close.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		startTime := time.Now()

		// Graceful close first so the browser exits cleanly; bounded so a hung
		// process cannot stall the run's teardown
		done := make(chan struct{})
		go func() {
			if err := chromedp.Cancel(s.ctx); err != nil {
				s.logger.Debug().Err(err).Msg("Graceful browser cancel reported error")
			}
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(10 * time.Second):
			s.logger.Warn().Msg("Browser shutdown timed out, forcing cleanup")
		}

		s.browserCancel()
		s.allocatorCancel()

		s.logger.Debug().
			Dur("shutdown_time", time.Since(startTime)).
			Msg("Browser session released")
	})
}
