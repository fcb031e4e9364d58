package verify

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/spectolabs/specto/internal/browser"
	"github.com/spectolabs/specto/internal/common"
)

// Runner executes the scripted verification scenario exactly once per
// invocation. There is no retry and no step engine: the flow is linear, each
// step's effect is observed (or fails) before the next begins, and the two
// diagnostic branches re-raise the triggering error after recording evidence.
type Runner struct {
	config *common.Config
	logger arbor.ILogger
}

// NewRunner creates a runner for the given configuration
func NewRunner(config *common.Config, logger arbor.ILogger) *Runner {
	return &Runner{
		config: config,
		logger: logger,
	}
}

// Run drives the full scenario and returns the first failure, if any. The
// browser session is released on every exit path; diagnostic captures are
// best-effort and never mask the original error.
func (r *Runner) Run(ctx context.Context) error {
	runID := common.NewRunID()
	started := time.Now()

	r.logger.Info().
		Str("run_id", runID).
		Str("base_url", r.config.Scenario.BaseURL).
		Str("output_dir", r.config.Output.Dir).
		Msg("Starting verification run")

	artifacts, err := NewArtifactStore(r.config.Output.Dir, r.logger)
	if err != nil {
		return err
	}

	// Step 1: acquire the browser session. Fatal and unrecoverable on failure,
	// before any artifact exists.
	session, err := browser.NewSession(ctx, browser.Options{
		Headless:       r.config.Browser.Headless,
		WindowWidth:    r.config.Browser.WindowWidth,
		WindowHeight:   r.config.Browser.WindowHeight,
		UserAgent:      r.config.Browser.UserAgent,
		StartupTimeout: r.config.Browser.StartupTimeoutDuration(),
	}, r.logger)
	if err != nil {
		return fmt.Errorf("failed to acquire browser session: %w", err)
	}
	defer session.Close()

	err = r.runScenario(session, artifacts)

	duration := time.Since(started)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("run_id", runID).
			Dur("duration", duration).
			Str("artifacts", artifacts.Dir()).
			Msg("=== VERIFICATION RESULT: FAIL ===")
		return err
	}

	r.logger.Info().
		Str("run_id", runID).
		Dur("duration", duration).
		Str("artifacts", artifacts.Dir()).
		Msg("=== VERIFICATION RESULT: PASS ===")
	return nil
}

// runScenario is the fixed choreography against the target application
func (r *Runner) runScenario(session *browser.Session, artifacts *ArtifactStore) error {
	scenario := &r.config.Scenario
	pageCtx := session.Context()

	// Step 2: attach the console observer before any page activity so nothing
	// the application logs is missed
	session.ObserveConsole(r.logger)

	interceptor := browser.NewInterceptor(session, r.logger)

	// Step 3: navigate to the login page and record its state
	loginURL := scenario.LoginURL()
	r.logger.Info().Str("url", loginURL).Msg("Navigating to login page")

	navCtx, cancelNav := context.WithTimeout(pageCtx, scenario.PageLoadTimeoutDuration())
	defer cancelNav()
	if err := chromedp.Run(navCtx, chromedp.Navigate(loginURL)); err != nil {
		return fmt.Errorf("failed to load login page %s: %w", loginURL, err)
	}

	if _, err := artifacts.Screenshot(pageCtx, ArtifactLoginPage); err != nil {
		return err
	}

	// Step 4: fill the password input and tick the remember checkbox
	if err := r.fillLoginForm(session, artifacts); err != nil {
		return err
	}

	// Step 5: the sources stub must be live before submit triggers the request
	sourcesStub, err := SourcesStub()
	if err != nil {
		return err
	}
	if err := interceptor.Stub(scenario.SourcesStubPattern, sourcesStub); err != nil {
		return err
	}

	// Step 6: submit the form
	if err := session.WaitVisible(scenario.SubmitSelector, scenario.ElementTimeoutDuration()); err != nil {
		r.captureElementDiagnostics(session, artifacts, scenario.SubmitSelector)
		return fmt.Errorf("submit control missing: %w", err)
	}
	r.logger.Info().Str("selector", scenario.SubmitSelector).Msg("Submitting login form")
	if err := chromedp.Run(pageCtx, chromedp.Click(scenario.SubmitSelector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("failed to activate submit control: %w", err)
	}

	// Step 7: await the post-submit navigation
	currentURL, err := session.WaitForURL(
		scenario.SessionsPattern,
		scenario.NavTimeoutDuration(),
		r.config.Browser.PollIntervalDuration(),
	)
	if err != nil {
		r.logger.Error().
			Str("current_url", currentURL).
			Str("pattern", scenario.SessionsPattern).
			Msg("Post-submit navigation did not happen")
		if _, captureErr := artifacts.Screenshot(pageCtx, ArtifactLoginFailed); captureErr != nil {
			r.logger.Warn().Err(captureErr).Msg("Diagnostic screenshot failed")
		}
		return fmt.Errorf("post-submit navigation failed: %w", err)
	}
	r.logger.Info().Str("url", currentURL).Msg("Reached sessions route")

	// Step 8: install the sessions stub before the reload that exercises it
	sessionsStub, err := SessionsStub(scenario.ExpectedPrompt)
	if err != nil {
		return err
	}
	if err := interceptor.Stub(scenario.SessionsStubPattern, sessionsStub); err != nil {
		return err
	}

	// Step 9: reload so the fresh render fetches through the stub
	r.logger.Info().Msg("Reloading sessions page")
	reloadCtx, cancelReload := context.WithTimeout(pageCtx, scenario.PageLoadTimeoutDuration())
	defer cancelReload()
	if err := chromedp.Run(reloadCtx, chromedp.Reload()); err != nil {
		return fmt.Errorf("failed to reload sessions page: %w", err)
	}

	// Step 10: await the stubbed prompt in the rendered DOM
	if err := session.WaitForText(scenario.ExpectedPrompt, scenario.ContentTimeoutDuration()); err != nil {
		r.captureContentDiagnostics(session, artifacts)
		return fmt.Errorf("sessions page did not render expected content: %w", err)
	}

	// Step 11: success artifact
	if _, err := artifacts.Screenshot(pageCtx, ArtifactSessionsPage); err != nil {
		return err
	}

	r.logger.Info().Str("prompt", scenario.ExpectedPrompt).Msg("✓ Sessions page rendered the stubbed session")
	return nil
}

// fillLoginForm locates the form controls within the element bound, types the
// placeholder credential and ticks the remember checkbox
func (r *Runner) fillLoginForm(session *browser.Session, artifacts *ArtifactStore) error {
	scenario := &r.config.Scenario
	pageCtx := session.Context()
	elementTimeout := scenario.ElementTimeoutDuration()

	if err := session.WaitVisible(scenario.PasswordSelector, elementTimeout); err != nil {
		r.captureElementDiagnostics(session, artifacts, scenario.PasswordSelector)
		return fmt.Errorf("password input missing: %w", err)
	}
	if err := chromedp.Run(pageCtx, chromedp.SendKeys(scenario.PasswordSelector, scenario.Credential, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("failed to fill password input: %w", err)
	}
	r.logger.Info().Str("selector", scenario.PasswordSelector).Msg("Password input filled")

	if err := session.WaitVisible(scenario.CheckboxSelector, elementTimeout); err != nil {
		r.captureElementDiagnostics(session, artifacts, scenario.CheckboxSelector)
		return fmt.Errorf("remember checkbox missing: %w", err)
	}
	if err := chromedp.Run(pageCtx, chromedp.Click(scenario.CheckboxSelector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("failed to activate remember checkbox: %w", err)
	}
	r.logger.Info().Str("selector", scenario.CheckboxSelector).Msg("Remember checkbox ticked")

	return nil
}

// captureElementDiagnostics records the page state when an expected form
// control never appeared
func (r *Runner) captureElementDiagnostics(session *browser.Session, artifacts *ArtifactStore, selector string) {
	r.logger.Error().Str("selector", selector).Msg("Expected form control not found")
	if _, err := artifacts.Screenshot(session.Context(), ArtifactElementMissing); err != nil {
		r.logger.Warn().Err(err).Msg("Diagnostic screenshot failed")
	}
}

// captureContentDiagnostics preserves the failing sessions page: screenshot,
// full markup dumped to the log, the markup artifact, and a readable digest
func (r *Runner) captureContentDiagnostics(session *browser.Session, artifacts *ArtifactStore) {
	pageCtx := session.Context()

	if _, err := artifacts.Screenshot(pageCtx, ArtifactSessionsFailed); err != nil {
		r.logger.Warn().Err(err).Msg("Diagnostic screenshot failed")
	}

	sourceCtx, cancel := context.WithTimeout(pageCtx, 10*time.Second)
	defer cancel()
	html, err := session.PageSource(sourceCtx)
	if err != nil {
		r.logger.Warn().Err(err).Msg("Failed to read page source for diagnostics")
		return
	}

	if summary := summarizeMarkup(html); summary != "" {
		r.logger.Error().Str("dom", summary).Msg("Rendered page summary at failure")
	}
	r.logger.Error().Msg("Rendered page markup follows")
	r.logger.Error().Msg(html)

	if _, err := artifacts.WritePageSource(html); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to write page source artifact")
	}

	if digest := markupDigest(html); digest != "" {
		r.logger.Debug().Msg("Markdown digest of failing page:\n" + digest)
	}
}
