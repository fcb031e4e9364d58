package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the harness configuration
type Config struct {
	Scenario ScenarioConfig `toml:"scenario"`
	Browser  BrowserConfig  `toml:"browser"`
	Output   OutputConfig   `toml:"output"`
	Logging  LoggingConfig  `toml:"logging"`
}

// ScenarioConfig describes the target application and the knobs of the fixed
// verification scenario. Every default reproduces the reference scenario, so
// a zero-argument invocation needs no config file at all.
type ScenarioConfig struct {
	BaseURL             string `toml:"base_url" validate:"required,url"`
	LoginPath           string `toml:"login_path" validate:"required"`
	SessionsPattern     string `toml:"sessions_pattern" validate:"required"`      // URL pattern awaited after submit
	SourcesStubPattern  string `toml:"sources_stub_pattern" validate:"required"`  // endpoint stubbed before submit
	SessionsStubPattern string `toml:"sessions_stub_pattern" validate:"required"` // endpoint stubbed before reload
	PasswordSelector    string `toml:"password_selector" validate:"required"`
	CheckboxSelector    string `toml:"checkbox_selector" validate:"required"`
	SubmitSelector      string `toml:"submit_selector" validate:"required"`
	Credential          string `toml:"credential" validate:"required"`      // placeholder credential typed into the password input
	ExpectedPrompt      string `toml:"expected_prompt" validate:"required"` // text awaited on the sessions page
	NavTimeout          string `toml:"nav_timeout"`                         // e.g., "5s" - bound on the post-submit URL wait
	ContentTimeout      string `toml:"content_timeout"`                     // e.g., "5s" - bound on the rendered-content wait
	ElementTimeout      string `toml:"element_timeout"`                     // e.g., "5s" - bound on form control lookups
	PageLoadTimeout     string `toml:"page_load_timeout"`                   // e.g., "30s" - bound on navigation load milestones
}

type BrowserConfig struct {
	Headless       bool   `toml:"headless"`
	WindowWidth    int    `toml:"window_width" validate:"gt=0"`
	WindowHeight   int    `toml:"window_height" validate:"gt=0"`
	UserAgent      string `toml:"user_agent"`
	StartupTimeout string `toml:"startup_timeout"` // e.g., "20s" - bound on browser launch
	PollInterval   string `toml:"poll_interval"`   // e.g., "100ms" - cadence of the URL wait poll
}

type OutputConfig struct {
	Dir string `toml:"dir" validate:"required"` // directory receiving screenshots and markup dumps
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// NewDefaultConfig returns the reference scenario configuration
func NewDefaultConfig() *Config {
	return &Config{
		Scenario: ScenarioConfig{
			BaseURL:             "http://localhost:4173",
			LoginPath:           "/login",
			SessionsPattern:     "**/sessions",
			SourcesStubPattern:  "**/v1alpha/sources*",
			SessionsStubPattern: "**/v1alpha/sessions*",
			PasswordSelector:    `input[type="password"]`,
			CheckboxSelector:    `input[type="checkbox"]`,
			SubmitSelector:      `button[type="submit"]`,
			Credential:          "AIzaSyFakeKeyForVerification",
			ExpectedPrompt:      "Fix the bug in auth",
			NavTimeout:          "5s",
			ContentTimeout:      "5s",
			ElementTimeout:      "5s",
			PageLoadTimeout:     "30s",
		},
		Browser: BrowserConfig{
			Headless:       true,
			WindowWidth:    1920,
			WindowHeight:   1080,
			UserAgent:      "",
			StartupTimeout: "20s",
			PollInterval:   "100ms",
		},
		Output: OutputConfig{
			Dir: "verification",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env
// Later files override earlier files. Priority system: CLI flags > Environment variables > Last config file > ... > Defaults
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Unmarshal into config (merges with existing values, later values override)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// DefaultConfigPaths returns config files discovered next to the executable
// and in the working directory. Missing files are skipped, so a bare install
// runs on defaults alone.
func DefaultConfigPaths() []string {
	var paths []string

	if execPath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(execPath), "specto.toml")
		if _, err := os.Stat(candidate); err == nil {
			paths = append(paths, candidate)
		}
	}

	if _, err := os.Stat("specto.toml"); err == nil {
		paths = append(paths, "specto.toml")
	}

	return paths
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Scenario configuration
	if baseURL := os.Getenv("SPECTO_BASE_URL"); baseURL != "" {
		config.Scenario.BaseURL = baseURL
	}
	if loginPath := os.Getenv("SPECTO_LOGIN_PATH"); loginPath != "" {
		config.Scenario.LoginPath = loginPath
	}
	if credential := os.Getenv("SPECTO_CREDENTIAL"); credential != "" {
		config.Scenario.Credential = credential
	}
	if prompt := os.Getenv("SPECTO_EXPECTED_PROMPT"); prompt != "" {
		config.Scenario.ExpectedPrompt = prompt
	}
	if navTimeout := os.Getenv("SPECTO_NAV_TIMEOUT"); navTimeout != "" {
		config.Scenario.NavTimeout = navTimeout
	}
	if contentTimeout := os.Getenv("SPECTO_CONTENT_TIMEOUT"); contentTimeout != "" {
		config.Scenario.ContentTimeout = contentTimeout
	}
	if elementTimeout := os.Getenv("SPECTO_ELEMENT_TIMEOUT"); elementTimeout != "" {
		config.Scenario.ElementTimeout = elementTimeout
	}
	if pageLoadTimeout := os.Getenv("SPECTO_PAGE_LOAD_TIMEOUT"); pageLoadTimeout != "" {
		config.Scenario.PageLoadTimeout = pageLoadTimeout
	}

	// Browser configuration
	if headless := os.Getenv("SPECTO_BROWSER_HEADLESS"); headless != "" {
		if h, err := strconv.ParseBool(headless); err == nil {
			config.Browser.Headless = h
		}
	}
	if width := os.Getenv("SPECTO_BROWSER_WINDOW_WIDTH"); width != "" {
		if w, err := strconv.Atoi(width); err == nil {
			config.Browser.WindowWidth = w
		}
	}
	if height := os.Getenv("SPECTO_BROWSER_WINDOW_HEIGHT"); height != "" {
		if h, err := strconv.Atoi(height); err == nil {
			config.Browser.WindowHeight = h
		}
	}
	if userAgent := os.Getenv("SPECTO_BROWSER_USER_AGENT"); userAgent != "" {
		config.Browser.UserAgent = userAgent
	}

	// Output configuration
	if dir := os.Getenv("SPECTO_OUTPUT_DIR"); dir != "" {
		config.Output.Dir = dir
	}

	// Logging configuration
	if level := os.Getenv("SPECTO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// ApplyFlagOverrides applies command line flag overrides to config (highest priority)
func ApplyFlagOverrides(config *Config, baseURL, outputDir, logLevel string, headed bool) {
	if baseURL != "" {
		config.Scenario.BaseURL = baseURL
	}
	if outputDir != "" {
		config.Output.Dir = outputDir
	}
	if logLevel != "" {
		config.Logging.Level = logLevel
	}
	if headed {
		config.Browser.Headless = false
	}
}

// Validate checks the merged configuration before a run starts
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// LoginURL returns the absolute login page URL
func (c *ScenarioConfig) LoginURL() string {
	return strings.TrimSuffix(c.BaseURL, "/") + c.LoginPath
}

// NavTimeoutDuration returns the parsed post-submit URL wait bound
func (c *ScenarioConfig) NavTimeoutDuration() time.Duration {
	return parseDurationOr(c.NavTimeout, 5*time.Second)
}

// ContentTimeoutDuration returns the parsed rendered-content wait bound
func (c *ScenarioConfig) ContentTimeoutDuration() time.Duration {
	return parseDurationOr(c.ContentTimeout, 5*time.Second)
}

// ElementTimeoutDuration returns the parsed form control lookup bound
func (c *ScenarioConfig) ElementTimeoutDuration() time.Duration {
	return parseDurationOr(c.ElementTimeout, 5*time.Second)
}

// PageLoadTimeoutDuration returns the parsed navigation load bound
func (c *ScenarioConfig) PageLoadTimeoutDuration() time.Duration {
	return parseDurationOr(c.PageLoadTimeout, 30*time.Second)
}

// StartupTimeoutDuration returns the parsed browser launch bound
func (c *BrowserConfig) StartupTimeoutDuration() time.Duration {
	return parseDurationOr(c.StartupTimeout, 20*time.Second)
}

// PollIntervalDuration returns the parsed URL wait poll cadence
func (c *BrowserConfig) PollIntervalDuration() time.Duration {
	return parseDurationOr(c.PollInterval, 100*time.Millisecond)
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
