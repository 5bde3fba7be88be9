// Package config handles configuration loading and validation for the Easy-Apply tool.
// It supports YAML configuration files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"linkedin-easyapply/internal/models"
)

// Config holds all configuration for the Easy-Apply automation tool
type Config struct {
	Search    SearchConfig            `yaml:"search"`
	Session   SessionConfig           `yaml:"session"`
	Apply     ApplyConfig             `yaml:"apply"`
	Stealth   StealthConfig           `yaml:"stealth"`
	Browser   BrowserConfig           `yaml:"browser"`
	Storage   StorageConfig           `yaml:"storage"`
	Generator GeneratorConfig         `yaml:"generator"`
	Profile   models.ApplicantProfile `yaml:"profile"`
	Keywords  KeywordConfig           `yaml:"keywords"`

	// Credentials loaded from environment
	LinkedInEmail    string `yaml:"-"`
	LinkedInPassword string `yaml:"-"`
	GeminiAPIKey     string `yaml:"-"`
	LogLevel         string `yaml:"-"`
}

// SearchConfig holds job search parameters
type SearchConfig struct {
	Keywords      []string `yaml:"keywords"`
	Location      string   `yaml:"location"`
	EasyApplyOnly bool     `yaml:"easy_apply_only"`
	PostedAge     string   `yaml:"posted_age"` // time-posted filter, e.g. "r86400"
	MaxJobs       int      `yaml:"max_jobs"`
	MaxPages      int      `yaml:"max_pages"`
	// ExcludeTitles drops any job whose title contains one of these terms
	ExcludeTitles []string `yaml:"exclude_titles"`
}

// SessionConfig holds the rate limiter's per-session ceilings
type SessionConfig struct {
	MaxJobsPerSession      int `yaml:"max_jobs_per_session"`
	MinJobSpacingSeconds   int `yaml:"min_job_spacing_seconds"`
	MaxSessionMinutes      int `yaml:"max_session_minutes"`
	BlockCooldownMinutes   int `yaml:"block_cooldown_minutes"`
	DailyApplicationsLimit int `yaml:"daily_applications_limit"`
}

// ApplyConfig holds Easy-Apply step machine settings
type ApplyConfig struct {
	MaxSteps            int  `yaml:"max_steps"`
	ModalWaitSeconds    int  `yaml:"modal_wait_seconds"`
	GenerateCoverLetter bool `yaml:"generate_cover_letter"`
}

// StealthConfig holds anti-detection settings
type StealthConfig struct {
	// Business hours
	BusinessHoursOnly bool `yaml:"business_hours_only"`
	StartHour         int  `yaml:"start_hour"`
	EndHour           int  `yaml:"end_hour"`

	// Typing simulation
	EnableTypos      bool    `yaml:"enable_typos"`
	TypoProbability  float64 `yaml:"typo_probability"`
	MinTypingDelayMs int     `yaml:"min_typing_delay_ms"`
	MaxTypingDelayMs int     `yaml:"max_typing_delay_ms"`

	// Mouse movement
	MouseSpeedMin   float64 `yaml:"mouse_speed_min"`
	MouseSpeedMax   float64 `yaml:"mouse_speed_max"`
	EnableOvershoot bool    `yaml:"enable_overshoot"`

	// Scrolling
	ScrollSpeedMin   int  `yaml:"scroll_speed_min"`
	ScrollSpeedMax   int  `yaml:"scroll_speed_max"`
	EnableScrollBack bool `yaml:"enable_scroll_back"`

	// Random actions
	EnableRandomHovers bool    `yaml:"enable_random_hovers"`
	HoverProbability   float64 `yaml:"hover_probability"`
}

// BrowserConfig holds browser settings
type BrowserConfig struct {
	Headless       bool   `yaml:"headless"`
	UserDataDir    string `yaml:"user_data_dir"`
	ViewportWidth  int    `yaml:"viewport_width"`
	ViewportHeight int    `yaml:"viewport_height"`
	ScreenshotDir  string `yaml:"screenshot_dir"`
}

// GeneratorConfig holds cover-letter generator settings
type GeneratorConfig struct {
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxLetterChars int    `yaml:"max_letter_chars"`
}

// StorageConfig holds storage settings
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	CookiesPath  string `yaml:"cookies_path"`
}

// Load reads configuration from YAML file and environment variables
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	// Set defaults
	cfg := &Config{
		Search: SearchConfig{
			EasyApplyOnly: true,
			PostedAge:     "r86400",
			MaxJobs:       40,
			MaxPages:      5,
		},
		Session: SessionConfig{
			MaxJobsPerSession:      15,
			MinJobSpacingSeconds:   30,
			MaxSessionMinutes:      40,
			BlockCooldownMinutes:   10,
			DailyApplicationsLimit: 50,
		},
		Apply: ApplyConfig{
			MaxSteps:            20,
			ModalWaitSeconds:    10,
			GenerateCoverLetter: true,
		},
		Stealth: StealthConfig{
			BusinessHoursOnly:  false,
			StartHour:          9,
			EndHour:            18,
			EnableTypos:        true,
			TypoProbability:    0.03,
			MinTypingDelayMs:   50,
			MaxTypingDelayMs:   200,
			MouseSpeedMin:      0.5,
			MouseSpeedMax:      2.0,
			EnableOvershoot:    true,
			ScrollSpeedMin:     100,
			ScrollSpeedMax:     400,
			EnableScrollBack:   true,
			EnableRandomHovers: true,
			HoverProbability:   0.3,
		},
		Browser: BrowserConfig{
			Headless:       false,
			UserDataDir:    "./data/browser",
			ViewportWidth:  1920,
			ViewportHeight: 1080,
			ScreenshotDir:  "./data/screenshots",
		},
		Generator: GeneratorConfig{
			Model:          "gemini-1.5-flash",
			TimeoutSeconds: 60,
			MaxLetterChars: 2500,
		},
		Storage: StorageConfig{
			DatabasePath: "./data/applications.db",
			CookiesPath:  "./data/cookies.json",
		},
		Keywords: DefaultKeywords(),
		LogLevel: "info",
	}

	// Load YAML config if file exists
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			// File doesn't exist, use defaults
		} else {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	cfg.loadEnvOverrides()

	// Keyword tables are data: a partial YAML override must not wipe out
	// locales it does not mention
	cfg.Keywords.fillMissing(DefaultKeywords())

	return cfg, nil
}

// loadEnvOverrides applies environment variable overrides to config
func (c *Config) loadEnvOverrides() {
	// Required credentials
	c.LinkedInEmail = os.Getenv("LINKEDIN_EMAIL")
	c.LinkedInPassword = os.Getenv("LINKEDIN_PASSWORD")
	c.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	// Optional overrides
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}

	if v := os.Getenv("HEADLESS"); v != "" {
		c.Browser.Headless = strings.ToLower(v) == "true"
	}

	if v := os.Getenv("MAX_JOBS_PER_SESSION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Session.MaxJobsPerSession = n
		}
	}

	if v := os.Getenv("MAX_JOBS_TO_PROCESS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.MaxJobs = n
		}
	}

	if v := os.Getenv("RESUME_PATH"); v != "" {
		c.Profile.ResumePath = v
	}

	if v := os.Getenv("DATABASE_PATH"); v != "" {
		c.Storage.DatabasePath = v
	}

	if v := os.Getenv("COOKIES_PATH"); v != "" {
		c.Storage.CookiesPath = v
	}
}

// HasCredentials checks if LinkedIn credentials are configured
func (c *Config) HasCredentials() bool {
	return c.LinkedInEmail != "" && c.LinkedInPassword != ""
}
