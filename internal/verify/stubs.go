package verify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spectolabs/specto/internal/browser"
	"github.com/spectolabs/specto/pkg/models"
)

// Canned stub identity values. The target application treats these as opaque
// resource names; only the prompt text is asserted on.
const (
	stubSourceName  = "projects/p/sources/s"
	stubSourceOwner = "test"
	stubSourceRepo  = "test-repo"
	stubSessionName = "projects/p/sessions/123"
)

// stubSessionCreateTime is the fixed creation timestamp of the canned session
var stubSessionCreateTime = time.Date(2023, 10, 27, 10, 0, 0, 0, time.UTC)

// SourcesStub builds the canned sources-endpoint response: one connected
// repository source with no branches.
func SourcesStub() (browser.StubResponse, error) {
	body, err := json.Marshal(models.SourceList{
		Sources: []models.Source{
			{
				Name: stubSourceName,
				GitHubRepo: models.GitHubRepo{
					Owner:    stubSourceOwner,
					Repo:     stubSourceRepo,
					Branches: []string{},
				},
			},
		},
	})
	if err != nil {
		return browser.StubResponse{}, fmt.Errorf("failed to encode sources stub: %w", err)
	}

	return browser.StubResponse{
		Status:      200,
		ContentType: "application/json",
		Body:        body,
	}, nil
}

// SessionsStub builds the canned sessions-endpoint response: one in-progress
// session carrying the given prompt.
func SessionsStub(prompt string) (browser.StubResponse, error) {
	body, err := json.Marshal(models.SessionList{
		Sessions: []models.Session{
			{
				Name:       stubSessionName,
				State:      models.SessionStateInProgress,
				Prompt:     prompt,
				CreateTime: stubSessionCreateTime,
			},
		},
	})
	if err != nil {
		return browser.StubResponse{}, fmt.Errorf("failed to encode sessions stub: %w", err)
	}

	return browser.StubResponse{
		Status:      200,
		ContentType: "application/json",
		Body:        body,
	}, nil
}
