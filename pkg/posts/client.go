package posts

import (
	"context"
)

// Client is the capability set a platform connector implements once
// per platform. It is opaque to the reconciliation engine beyond this
// contract: every operation returns either a normalized success value
// or an error from the pkg/errors taxonomy, never an unbounded block.
type Client interface {
	// Platform returns the platform this client talks to.
	Platform() Platform

	// ListArticles retrieves the full remote snapshot. Connectors
	// paginate internally; the result is the complete listing.
	ListArticles(ctx context.Context) ([]Article, error)

	// GetArticle retrieves a single article by remote ID.
	// Absence is reported as a NotFoundError.
	GetArticle(ctx context.Context, id string) (*Article, error)

	// CreateArticle creates a new article from the payload.
	CreateArticle(ctx context.Context, payload Payload, published bool) (*Article, error)

	// UpdateArticle updates an existing article. An empty payload body
	// means a metadata-only update; the stored body is left untouched.
	UpdateArticle(ctx context.Context, id string, payload Payload, published bool) (*Article, error)

	// DeleteArticle removes an article by remote ID.
	DeleteArticle(ctx context.Context, id string) error
}

// Transformer turns a local document into a platform-specific payload
// and provides the comparison normalization used for change detection.
// Payload must be deterministic: identical input always yields
// identical output, which fingerprint stability depends on.
type Transformer interface {
	Payload(post *Post, platform Platform) Payload
	NormalizeForComparison(body string) string
}
