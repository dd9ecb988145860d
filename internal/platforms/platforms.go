// Package platforms selects concrete connectors for the enabled
// platforms. Each connector implements the posts.Client capability set
// once per platform; the reconciliation engine never sees anything
// beyond that contract.
package platforms

import (
	"github.com/draftsync/draftsync/internal/platforms/devto"
	"github.com/draftsync/draftsync/internal/platforms/hashnode"
	"github.com/draftsync/draftsync/pkg/errors"
	"github.com/draftsync/draftsync/pkg/posts"
)

// Config carries the per-platform credentials and endpoint overrides.
type Config struct {
	DevToAPIKey  string
	DevToBaseURL string

	HashnodeAPIKey        string
	HashnodeUsername      string
	HashnodePublicationID string
	HashnodeEndpoint      string
}

// New returns the connector for a platform, or an error when its
// credentials are missing or the platform is unknown.
func New(platform posts.Platform, cfg Config) (posts.Client, error) {
	switch platform {
	case posts.PlatformDevTo:
		if cfg.DevToAPIKey == "" {
			return nil, errors.NewAuthError(platform.String(), "DEVTO_API_KEY is not set", nil)
		}
		opts := []devto.Option{}
		if cfg.DevToBaseURL != "" {
			opts = append(opts, devto.WithBaseURL(cfg.DevToBaseURL))
		}
		return devto.New(cfg.DevToAPIKey, opts...), nil

	case posts.PlatformHashnode:
		if cfg.HashnodeAPIKey == "" {
			return nil, errors.NewAuthError(platform.String(), "HASHNODE_API_KEY is not set", nil)
		}
		if cfg.HashnodeUsername == "" {
			return nil, errors.NewAuthError(platform.String(), "HASHNODE_USERNAME is not set", nil)
		}
		opts := []hashnode.Option{}
		if cfg.HashnodeEndpoint != "" {
			opts = append(opts, hashnode.WithEndpoint(cfg.HashnodeEndpoint))
		}
		if cfg.HashnodePublicationID != "" {
			opts = append(opts, hashnode.WithPublication(cfg.HashnodePublicationID))
		}
		return hashnode.New(cfg.HashnodeAPIKey, cfg.HashnodeUsername, opts...), nil

	default:
		return nil, errors.NewConfigError("platforms", "unknown platform "+platform.String(), nil)
	}
}

// NewAll builds connectors for every enabled platform, in order.
func NewAll(enabled []posts.Platform, cfg Config) ([]posts.Client, error) {
	clients := make([]posts.Client, 0, len(enabled))
	for _, p := range enabled {
		client, err := New(p, cfg)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, nil
}
