package verify

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourcesStub_WireContract(t *testing.T) {
	stub, err := SourcesStub()
	require.NoError(t, err)

	assert.Equal(t, int64(200), stub.Status)
	assert.Equal(t, "application/json", stub.ContentType)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(stub.Body, &payload))

	sources, ok := payload["sources"].([]interface{})
	require.True(t, ok, "body must carry a top-level sources array")
	require.Len(t, sources, 1)

	source := sources[0].(map[string]interface{})
	assert.Equal(t, "projects/p/sources/s", source["name"])

	repo, ok := source["githubRepo"].(map[string]interface{})
	require.True(t, ok, "source must carry a githubRepo object")
	assert.Equal(t, "test", repo["owner"])
	assert.Equal(t, "test-repo", repo["repo"])

	branches, ok := repo["branches"].([]interface{})
	require.True(t, ok, "branches must be an array even when empty, not null")
	assert.Empty(t, branches)
}

func TestSessionsStub_WireContract(t *testing.T) {
	stub, err := SessionsStub("Fix the bug in auth")
	require.NoError(t, err)

	assert.Equal(t, int64(200), stub.Status)
	assert.Equal(t, "application/json", stub.ContentType)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(stub.Body, &payload))

	sessions, ok := payload["sessions"].([]interface{})
	require.True(t, ok, "body must carry a top-level sessions array")
	require.Len(t, sessions, 1)

	session := sessions[0].(map[string]interface{})
	assert.Equal(t, "projects/p/sessions/123", session["name"])
	assert.Equal(t, "IN_PROGRESS", session["state"])
	assert.Equal(t, "Fix the bug in auth", session["prompt"])
	assert.Equal(t, "2023-10-27T10:00:00Z", session["createTime"])
}

func TestSessionsStub_CarriesCallerPrompt(t *testing.T) {
	stub, err := SessionsStub("Deploy the fix")
	require.NoError(t, err)

	assert.Contains(t, string(stub.Body), `"prompt":"Deploy the fix"`)
}
