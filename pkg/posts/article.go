package posts

import (
	"github.com/agentstation/utc"
)

// Article is a platform's stored representation of a published or
// draft post, fetched as part of a full per-platform snapshot at run
// start. Snapshots are fully paginated by the connector; the engine
// never sees cursor mechanics.
type Article struct {
	Platform  Platform
	ID        string
	Title     string
	Body      string
	Tags      []string
	Published bool
	Cover     string
	CreatedAt utc.Time
	UpdatedAt utc.Time
}

// Payload is the platform-bound article representation produced by the
// content transformer. A metadata-only update carries an empty Body;
// connectors omit empty fields from the wire request.
type Payload struct {
	Title        string   `json:"title"`
	Subtitle     string   `json:"description,omitempty"`
	Slug         string   `json:"slug,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Cover        string   `json:"cover,omitempty"`
	CanonicalURL string   `json:"canonical_url,omitempty"`
	Series       string   `json:"series,omitempty"`
	Body         string   `json:"body_markdown,omitempty"`
}

// WithoutBody returns a copy of the payload with the body stripped,
// used for metadata-only updates so the body is never resent.
func (p Payload) WithoutBody() Payload {
	p.Body = ""
	return p
}
