package reconcile

import (
	"time"

	"github.com/draftsync/draftsync/pkg/errors"
	"github.com/draftsync/draftsync/pkg/posts"
)

// Config is the opaque configuration surface the engine consumes.
// Sourcing (flags, env, config files) is the caller's concern.
type Config struct {
	// Platforms is the ordered list of enabled platforms. Empty is a
	// configuration error; a run aborts before any I/O occurs.
	Platforms []posts.Platform

	// Retry bounds every outbound call.
	Retry RetryPolicy

	// RateLimitDelay overrides the backoff base delay per platform,
	// for platforms with stricter throttling.
	RateLimitDelay map[posts.Platform]time.Duration

	// DeletePermissionSkip controls how a permission error during
	// orphan deletion is classified: true records a non-fatal warning
	// outcome, false records a failure. The sweep continues either way.
	DeletePermissionSkip bool

	// DryRun computes and reports decisions without issuing any write
	// calls.
	DryRun bool
}

// DefaultConfig returns the engine defaults: both platforms enabled,
// default retry bounds, permission errors during deletion downgraded
// to warnings.
func DefaultConfig() Config {
	return Config{
		Platforms:            []posts.Platform{posts.PlatformDevTo, posts.PlatformHashnode},
		Retry:                DefaultRetryPolicy(),
		DeletePermissionSkip: true,
	}
}

// Validate reports unrecoverable configuration errors.
func (c *Config) Validate() error {
	if len(c.Platforms) == 0 {
		return errors.NewConfigError("reconcile", "no enabled platforms", nil)
	}
	seen := make(map[posts.Platform]struct{}, len(c.Platforms))
	for _, p := range c.Platforms {
		if _, ok := seen[p]; ok {
			return errors.NewConfigError("reconcile", "platform "+p.String()+" enabled twice", nil)
		}
		seen[p] = struct{}{}
	}
	return nil
}

// policyFor returns the retry policy for a platform, applying its
// rate-limit delay override when configured.
func (c *Config) policyFor(platform posts.Platform) RetryPolicy {
	policy := c.Retry
	if d, ok := c.RateLimitDelay[platform]; ok && d > 0 {
		policy.BaseDelay = d
	}
	return policy
}
