// Package devto provides the dev.to (Forem) platform connector.
package devto

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/agentstation/utc"

	"github.com/draftsync/draftsync/internal/transport"
	"github.com/draftsync/draftsync/pkg/posts"
)

// DefaultBaseURL is the public dev.to API root.
const DefaultBaseURL = "https://dev.to/api"

// listPageSize is the page size used while draining the listing.
const listPageSize = 100

// Wire structures for the dev.to articles API.
type articleResponse struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	BodyMarkdown string     `json:"body_markdown"`
	TagList      []string   `json:"tag_list"`
	Published    bool       `json:"published"`
	CoverImage   string     `json:"cover_image"`
	CreatedAt    time.Time  `json:"created_at"`
	EditedAt     *time.Time `json:"edited_at"`
}

type articleRequest struct {
	Article articleFields `json:"article"`
}

type articleFields struct {
	Title        string   `json:"title,omitempty"`
	BodyMarkdown string   `json:"body_markdown,omitempty"`
	Published    bool     `json:"published"`
	Tags         []string `json:"tags,omitempty"`
	Series       string   `json:"series,omitempty"`
	MainImage    string   `json:"main_image,omitempty"`
	CanonicalURL string   `json:"canonical_url,omitempty"`
	Description  string   `json:"description,omitempty"`
}

// Client implements the posts.Client interface for dev.to.
type Client struct {
	transport *transport.Client
	baseURL   string
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the API root, for self-hosted Forem instances
// and tests.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// New creates a dev.to client authenticating with the given API key.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		transport: transport.New(posts.PlatformDevTo.String(), &transport.HeaderAuth{Header: "api-key", Value: apiKey}),
		baseURL:   DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Platform returns the platform identifier.
func (c *Client) Platform() posts.Platform {
	return posts.PlatformDevTo
}

// ListArticles drains the authenticated listing, published and drafts
// alike, page by page until a short page arrives.
func (c *Client) ListArticles(ctx context.Context) ([]posts.Article, error) {
	var all []posts.Article

	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/articles/me/all?page=%d&per_page=%d", c.baseURL, page, listPageSize)
		resp, err := c.transport.Get(ctx, url)
		if err != nil {
			return nil, err
		}

		var batch []articleResponse
		if err := transport.DecodeResponse(resp, c.Platform().String(), "list", "", &batch); err != nil {
			return nil, err
		}

		for _, a := range batch {
			all = append(all, c.convert(a))
		}
		if len(batch) < listPageSize {
			return all, nil
		}
	}
}

// GetArticle retrieves a single article by ID.
func (c *Client) GetArticle(ctx context.Context, id string) (*posts.Article, error) {
	resp, err := c.transport.Get(ctx, c.baseURL+"/articles/"+id)
	if err != nil {
		return nil, err
	}

	var a articleResponse
	if err := transport.DecodeResponse(resp, c.Platform().String(), "get", id, &a); err != nil {
		return nil, err
	}
	article := c.convert(a)
	return &article, nil
}

// CreateArticle publishes a new article from the payload.
func (c *Client) CreateArticle(ctx context.Context, payload posts.Payload, published bool) (*posts.Article, error) {
	resp, err := c.transport.JSON(ctx, http.MethodPost, c.baseURL+"/articles", requestFor(payload, published))
	if err != nil {
		return nil, err
	}

	var a articleResponse
	if err := transport.DecodeResponse(resp, c.Platform().String(), "create", "", &a); err != nil {
		return nil, err
	}
	article := c.convert(a)
	return &article, nil
}

// UpdateArticle updates an existing article. An empty payload body is
// omitted from the request, so the stored body is left untouched.
func (c *Client) UpdateArticle(ctx context.Context, id string, payload posts.Payload, published bool) (*posts.Article, error) {
	resp, err := c.transport.JSON(ctx, http.MethodPut, c.baseURL+"/articles/"+id, requestFor(payload, published))
	if err != nil {
		return nil, err
	}

	var a articleResponse
	if err := transport.DecodeResponse(resp, c.Platform().String(), "update", id, &a); err != nil {
		return nil, err
	}
	article := c.convert(a)
	return &article, nil
}

// DeleteArticle removes an article by ID.
func (c *Client) DeleteArticle(ctx context.Context, id string) error {
	resp, err := c.transport.Delete(ctx, c.baseURL+"/articles/"+id)
	if err != nil {
		return err
	}
	return transport.DecodeResponse(resp, c.Platform().String(), "delete", id, nil)
}

// requestFor maps a payload onto the dev.to article envelope.
func requestFor(payload posts.Payload, published bool) articleRequest {
	return articleRequest{Article: articleFields{
		Title:        payload.Title,
		BodyMarkdown: payload.Body,
		Published:    published,
		Tags:         payload.Tags,
		Series:       payload.Series,
		MainImage:    payload.Cover,
		CanonicalURL: payload.CanonicalURL,
		Description:  payload.Subtitle,
	}}
}

// convert maps a dev.to wire article onto the draftsync model.
func (c *Client) convert(a articleResponse) posts.Article {
	article := posts.Article{
		Platform:  posts.PlatformDevTo,
		ID:        fmt.Sprintf("%d", a.ID),
		Title:     a.Title,
		Body:      a.BodyMarkdown,
		Tags:      a.TagList,
		Published: a.Published,
		Cover:     a.CoverImage,
		CreatedAt: utc.Time{Time: a.CreatedAt},
	}
	if a.EditedAt != nil {
		article.UpdatedAt = utc.Time{Time: *a.EditedAt}
	} else {
		article.UpdatedAt = article.CreatedAt
	}
	return article
}
