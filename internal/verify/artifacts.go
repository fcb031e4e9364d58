package verify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"
)

// Artifact filenames produced by a run: two on the nominal path, three on
// diagnostic paths, plus the markup dump.
const (
	ArtifactLoginPage      = "1_login.png"
	ArtifactSessionsPage   = "2_sessions.png"
	ArtifactLoginFailed    = "debug_login_failed.png"
	ArtifactSessionsFailed = "debug_sessions_failed.png"
	ArtifactElementMissing = "debug_element_missing.png"
	ArtifactPageSource     = "page_source.html"
)

// ArtifactStore writes run evidence under a single output directory
type ArtifactStore struct {
	dir    string
	logger arbor.ILogger
}

// NewArtifactStore creates the output directory if needed
func NewArtifactStore(dir string, logger arbor.ILogger) (*ArtifactStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return &ArtifactStore{
		dir:    dir,
		logger: logger,
	}, nil
}

// Dir returns the output directory path
func (a *ArtifactStore) Dir() string {
	return a.dir
}

// Screenshot captures the current viewport into name under the output
// directory. The capture is bounded so a wedged page cannot stall teardown.
func (a *ArtifactStore) Screenshot(ctx context.Context, name string) (string, error) {
	captureCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(captureCtx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return "", fmt.Errorf("failed to capture screenshot %s: %w", name, err)
	}

	path := filepath.Join(a.dir, name)
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return "", fmt.Errorf("failed to write screenshot %s: %w", path, err)
	}

	a.logger.Info().Str("artifact", path).Msg("Screenshot saved")
	return path, nil
}

// WritePageSource stores the rendered markup dump next to the screenshots
func (a *ArtifactStore) WritePageSource(html string) (string, error) {
	path := filepath.Join(a.dir, ArtifactPageSource)
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		return "", fmt.Errorf("failed to write page source %s: %w", path, err)
	}

	a.logger.Info().Str("artifact", path).Msg("Page source saved")
	return path, nil
}
