// Package app provides the application context and dependency
// management for the draftsync CLI. It centralizes configuration,
// logging, and facade construction so the command packages stay thin.
package app

import (
	"github.com/rs/zerolog"

	"github.com/draftsync/draftsync"
)

// App represents the draftsync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string) (*App, error) {
	a := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	a.config = config

	logger := NewLogger(config)
	a.logger = &logger

	return a, nil
}

// Version returns the version string.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Draftsync builds a facade instance from the current configuration.
// Commands call this after flag parsing, so flags are already folded
// into the config.
func (a *App) Draftsync(extra ...draftsync.Option) (draftsync.Draftsync, error) {
	opts := append(a.config.Options(), draftsync.WithLogger(a.logger))
	opts = append(opts, extra...)
	return draftsync.New(opts...)
}
