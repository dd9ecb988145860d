package app

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/draftsync/draftsync"
	"github.com/draftsync/draftsync/internal/platforms"
	"github.com/draftsync/draftsync/pkg/reconcile"
)

// Config holds the application configuration loaded from flags,
// environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	DryRun  bool

	// Document discovery
	Pattern      string
	ExcludeFiles []string

	// Platform selection and credentials
	EnabledPlatforms []string
	Platforms        platforms.Config

	// Engine tuning
	RateLimitDelay       time.Duration
	RetryMaxAttempts     int
	RetryBaseDelay       time.Duration
	DeletePermissionSkip bool

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration in order of precedence: command-line
// flags (folded in later by cobra), environment variables, .env files,
// then defaults.
func LoadConfig() (*Config, error) {
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	viper.SetDefault("enabled_platforms", "devto,hashnode")
	viper.SetDefault("markdown_file_pattern", "blogs/*.md")
	viper.SetDefault("exclude_files", "README.md")
	viper.SetDefault("rate_limit_delay", 5)
	viper.SetDefault("retry_max_attempts", 3)
	viper.SetDefault("retry_base_delay", 2)
	viper.SetDefault("delete_permission_skip", true)
	viper.SetDefault("hashnode_endpoint", "")

	config := &Config{
		Pattern:      viper.GetString("markdown_file_pattern"),
		ExcludeFiles: splitList(viper.GetString("exclude_files")),

		EnabledPlatforms: splitList(viper.GetString("enabled_platforms")),
		Platforms: platforms.Config{
			DevToAPIKey:           viper.GetString("devto_api_key"),
			DevToBaseURL:          viper.GetString("devto_base_url"),
			HashnodeAPIKey:        viper.GetString("hashnode_api_key"),
			HashnodeUsername:      viper.GetString("hashnode_username"),
			HashnodePublicationID: viper.GetString("hashnode_publication_id"),
			HashnodeEndpoint:      viper.GetString("hashnode_endpoint"),
		},

		RateLimitDelay:       time.Duration(viper.GetInt("rate_limit_delay")) * time.Second,
		RetryMaxAttempts:     viper.GetInt("retry_max_attempts"),
		RetryBaseDelay:       time.Duration(viper.GetInt("retry_base_delay")) * time.Second,
		DeletePermissionSkip: viper.GetBool("delete_permission_skip"),

		LogLevel:  viper.GetString("log_level"),
		LogFormat: getEnvOrDefault("log_format", "auto"),
		LogOutput: getEnvOrDefault("log_output", "stderr"),
	}

	return config, nil
}

// Options translates the configuration into facade options.
func (c *Config) Options() []draftsync.Option {
	retry := reconcile.DefaultRetryPolicy()
	if c.RetryMaxAttempts > 0 {
		retry.MaxAttempts = c.RetryMaxAttempts
	}
	if c.RetryBaseDelay > 0 {
		retry.BaseDelay = c.RetryBaseDelay
	}

	opts := []draftsync.Option{
		draftsync.WithPlatforms(c.EnabledPlatforms...),
		draftsync.WithPattern(c.Pattern),
		draftsync.WithExcludeFiles(c.ExcludeFiles...),
		draftsync.WithCredentials(c.Platforms),
		draftsync.WithRetryPolicy(retry),
		draftsync.WithDeletePermissionSkip(c.DeletePermissionSkip),
		draftsync.WithDryRun(c.DryRun),
	}
	if c.RateLimitDelay > 0 {
		for _, p := range c.EnabledPlatforms {
			opts = append(opts, draftsync.WithRateLimitDelay(p, c.RateLimitDelay))
		}
	}
	return opts
}

// UpdateFromFlags folds parsed command flags into the config. Flags
// take precedence over environment variables.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor, dryRun bool, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	c.DryRun = dryRun
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

// splitList splits a comma-separated value, trimming blanks.
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// getEnvOrDefault returns a viper value or a fallback when unset.
func getEnvOrDefault(key, fallback string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	return fallback
}
