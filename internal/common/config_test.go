package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig_ReferenceScenario(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, "http://localhost:4173", config.Scenario.BaseURL)
	assert.Equal(t, "/login", config.Scenario.LoginPath)
	assert.Equal(t, "AIzaSyFakeKeyForVerification", config.Scenario.Credential)
	assert.Equal(t, "Fix the bug in auth", config.Scenario.ExpectedPrompt)
	assert.Equal(t, "**/sessions", config.Scenario.SessionsPattern)
	assert.Equal(t, "**/v1alpha/sources*", config.Scenario.SourcesStubPattern)
	assert.Equal(t, "**/v1alpha/sessions*", config.Scenario.SessionsStubPattern)
	assert.Equal(t, `input[type="password"]`, config.Scenario.PasswordSelector)
	assert.Equal(t, `input[type="checkbox"]`, config.Scenario.CheckboxSelector)
	assert.Equal(t, `button[type="submit"]`, config.Scenario.SubmitSelector)
	assert.Equal(t, 5*time.Second, config.Scenario.NavTimeoutDuration())
	assert.Equal(t, 5*time.Second, config.Scenario.ContentTimeoutDuration())
	assert.Equal(t, 5*time.Second, config.Scenario.ElementTimeoutDuration())
	assert.Equal(t, 30*time.Second, config.Scenario.PageLoadTimeoutDuration())
	assert.True(t, config.Browser.Headless)
	assert.Equal(t, 1920, config.Browser.WindowWidth)
	assert.Equal(t, 1080, config.Browser.WindowHeight)
	assert.Equal(t, "verification", config.Output.Dir)

	require.NoError(t, config.Validate())
}

func TestLoadFromFiles_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "specto.toml")
	content := `
[scenario]
base_url = "http://staging.internal:8080"
expected_prompt = "Deploy the fix"

[output]
dir = "evidence"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadFromFiles(path)
	require.NoError(t, err)

	assert.Equal(t, "http://staging.internal:8080", config.Scenario.BaseURL)
	assert.Equal(t, "Deploy the fix", config.Scenario.ExpectedPrompt)
	assert.Equal(t, "evidence", config.Output.Dir)

	// Keys the file does not mention keep their defaults
	assert.Equal(t, "/login", config.Scenario.LoginPath)
	assert.Equal(t, "AIzaSyFakeKeyForVerification", config.Scenario.Credential)
	assert.True(t, config.Browser.Headless)
}

func TestLoadFromFiles_LaterFileWins(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.toml")
	second := filepath.Join(dir, "second.toml")
	require.NoError(t, os.WriteFile(first, []byte("[scenario]\nbase_url = \"http://first:1\"\nnav_timeout = \"7s\"\n"), 0644))
	require.NoError(t, os.WriteFile(second, []byte("[scenario]\nbase_url = \"http://second:2\"\n"), 0644))

	config, err := LoadFromFiles(first, second)
	require.NoError(t, err)

	assert.Equal(t, "http://second:2", config.Scenario.BaseURL)
	assert.Equal(t, 7*time.Second, config.Scenario.NavTimeoutDuration())
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoadFromFiles_EnvOverrides(t *testing.T) {
	t.Setenv("SPECTO_BASE_URL", "http://env.example:9999")
	t.Setenv("SPECTO_NAV_TIMEOUT", "9s")
	t.Setenv("SPECTO_BROWSER_HEADLESS", "false")

	config, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, "http://env.example:9999", config.Scenario.BaseURL)
	assert.Equal(t, 9*time.Second, config.Scenario.NavTimeoutDuration())
	assert.False(t, config.Browser.Headless)
}

func TestApplyFlagOverrides(t *testing.T) {
	config := NewDefaultConfig()

	ApplyFlagOverrides(config, "http://flag.example", "flag-output", "debug", true)
	assert.Equal(t, "http://flag.example", config.Scenario.BaseURL)
	assert.Equal(t, "flag-output", config.Output.Dir)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.False(t, config.Browser.Headless)

	// Zero flag values leave the config untouched
	ApplyFlagOverrides(config, "", "", "", false)
	assert.Equal(t, "http://flag.example", config.Scenario.BaseURL)
	assert.Equal(t, "flag-output", config.Output.Dir)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.False(t, config.Browser.Headless)
}

func TestConfig_ValidateRejectsBadValues(t *testing.T) {
	config := NewDefaultConfig()
	config.Scenario.BaseURL = "not a url"
	assert.Error(t, config.Validate())

	config = NewDefaultConfig()
	config.Scenario.Credential = ""
	assert.Error(t, config.Validate())

	config = NewDefaultConfig()
	config.Browser.WindowWidth = 0
	assert.Error(t, config.Validate())

	config = NewDefaultConfig()
	config.Output.Dir = ""
	assert.Error(t, config.Validate())
}

func TestDurationAccessors_FallBackOnBadValues(t *testing.T) {
	config := NewDefaultConfig()

	config.Scenario.NavTimeout = "not-a-duration"
	assert.Equal(t, 5*time.Second, config.Scenario.NavTimeoutDuration())

	config.Scenario.NavTimeout = "-3s"
	assert.Equal(t, 5*time.Second, config.Scenario.NavTimeoutDuration())

	config.Scenario.NavTimeout = "250ms"
	assert.Equal(t, 250*time.Millisecond, config.Scenario.NavTimeoutDuration())

	config.Browser.PollInterval = ""
	assert.Equal(t, 100*time.Millisecond, config.Browser.PollIntervalDuration())

	config.Browser.StartupTimeout = "45s"
	assert.Equal(t, 45*time.Second, config.Browser.StartupTimeoutDuration())
}

func TestScenarioConfig_LoginURL(t *testing.T) {
	config := NewDefaultConfig()
	assert.Equal(t, "http://localhost:4173/login", config.Scenario.LoginURL())

	config.Scenario.BaseURL = "http://host:1234/"
	assert.Equal(t, "http://host:1234/login", config.Scenario.LoginURL())

	config.Scenario.LoginPath = "/login?block=1"
	assert.Equal(t, "http://host:1234/login?block=1", config.Scenario.LoginURL())
}
