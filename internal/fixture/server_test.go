package fixture

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spectolabs/specto/pkg/models"
)

func TestLoginPage_RendersExpectedControls(t *testing.T) {
	server := httptest.NewServer(Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/login")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)

	// The three controls the scenario drives, matched by the same selectors
	assert.Equal(t, 1, doc.Find(`input[type="password"]`).Length())
	assert.Equal(t, 1, doc.Find(`input[type="checkbox"]`).Length())
	assert.Equal(t, 1, doc.Find(`button[type="submit"]`).Length())
}

func TestLoginPage_BlockVariant(t *testing.T) {
	server := httptest.NewServer(Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/login?block=1")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "var blocked = true;")

	resp, err = http.Get(server.URL + "/login")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "var blocked = false;")
}

func TestRootRedirectsToLogin(t *testing.T) {
	server := httptest.NewServer(Handler())
	defer server.Close()

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Get(server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestSourcesAPI_BackendPayload(t *testing.T) {
	server := httptest.NewServer(Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/v1alpha/sources")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var payload models.SourceList
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Len(t, payload.Sources, 1)
	assert.Equal(t, "fixture", payload.Sources[0].GitHubRepo.Owner)
	assert.Equal(t, "fixture-app", payload.Sources[0].GitHubRepo.Repo)
	assert.NotEmpty(t, payload.Sources[0].GitHubRepo.Branches)
}

func TestSessionsAPI_PlaceholderPrompt(t *testing.T) {
	server := httptest.NewServer(Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/v1alpha/sessions")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload models.SessionList
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Len(t, payload.Sessions, 1)
	assert.Equal(t, "Fixture backend placeholder prompt", payload.Sessions[0].Prompt)
	assert.Equal(t, models.SessionStateCompleted, payload.Sessions[0].State)

	// The backend prompt must never collide with a stubbed prompt, otherwise a
	// run could pass without its stub ever answering
	assert.NotEqual(t, "Fix the bug in auth", payload.Sessions[0].Prompt)
}

func TestStatusEndpoint(t *testing.T) {
	server := httptest.NewServer(Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"status":"ok"`)
}
