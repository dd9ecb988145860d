package draftsync

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/draftsync/draftsync/internal/platforms"
	"github.com/draftsync/draftsync/internal/scanner"
	"github.com/draftsync/draftsync/pkg/errors"
	"github.com/draftsync/draftsync/pkg/posts"
	"github.com/draftsync/draftsync/pkg/reconcile"
)

// config holds the assembled facade configuration.
type config struct {
	scanner     scanner.Config
	platforms   platforms.Config
	reconcile   reconcile.Config
	clients     []posts.Client
	transformer posts.Transformer
	logger      *zerolog.Logger
}

func defaultConfig() *config {
	return &config{
		scanner:   scanner.DefaultConfig(),
		reconcile: reconcile.DefaultConfig(),
	}
}

// Option is a function that configures a Draftsync instance.
type Option func(*config) error

// WithPlatforms selects which platforms to reconcile against, in the
// order given.
func WithPlatforms(names ...string) Option {
	return func(c *config) error {
		enabled := make([]posts.Platform, 0, len(names))
		for _, name := range names {
			p, ok := posts.ParsePlatform(name)
			if !ok {
				return errors.NewConfigError("platforms", "unknown platform "+name, nil)
			}
			enabled = append(enabled, p)
		}
		c.reconcile.Platforms = enabled
		return nil
	}
}

// WithPattern sets the glob used to discover local documents.
func WithPattern(pattern string) Option {
	return func(c *config) error {
		c.scanner.Pattern = pattern
		return nil
	}
}

// WithExcludeFiles lists filenames never treated as documents.
func WithExcludeFiles(names ...string) Option {
	return func(c *config) error {
		c.scanner.Exclude = names
		return nil
	}
}

// WithCredentials supplies the per-platform API credentials.
func WithCredentials(cfg platforms.Config) Option {
	return func(c *config) error {
		c.platforms = cfg
		return nil
	}
}

// WithClients injects connectors directly, bypassing credential-based
// construction. Intended for tests.
func WithClients(clients ...posts.Client) Option {
	return func(c *config) error {
		c.clients = clients
		return nil
	}
}

// WithTransformer overrides the content transformer.
func WithTransformer(t posts.Transformer) Option {
	return func(c *config) error {
		c.transformer = t
		return nil
	}
}

// WithRetryPolicy sets the retry bounds applied to every remote call.
func WithRetryPolicy(policy reconcile.RetryPolicy) Option {
	return func(c *config) error {
		c.reconcile.Retry = policy
		return nil
	}
}

// WithRateLimitDelay sets the backoff base delay for a platform,
// for platforms with stricter throttling than the default policy
// assumes.
func WithRateLimitDelay(platform string, delay time.Duration) Option {
	return func(c *config) error {
		p, ok := posts.ParsePlatform(platform)
		if !ok {
			return errors.NewConfigError("platforms", "unknown platform "+platform, nil)
		}
		if c.reconcile.RateLimitDelay == nil {
			c.reconcile.RateLimitDelay = make(map[posts.Platform]time.Duration)
		}
		c.reconcile.RateLimitDelay[p] = delay
		return nil
	}
}

// WithDeletePermissionSkip downgrades permission-denied deletions
// during the orphan sweep from failures to warnings.
func WithDeletePermissionSkip(enabled bool) Option {
	return func(c *config) error {
		c.reconcile.DeletePermissionSkip = enabled
		return nil
	}
}

// WithDryRun computes decisions without performing remote writes.
func WithDryRun(enabled bool) Option {
	return func(c *config) error {
		c.reconcile.DryRun = enabled
		return nil
	}
}

// WithLogger sets the logger used across the run.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}
