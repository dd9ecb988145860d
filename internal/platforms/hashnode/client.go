// Package hashnode provides the Hashnode platform connector, speaking
// the gql.hashnode.com GraphQL API.
package hashnode

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/agentstation/utc"

	"github.com/draftsync/draftsync/internal/transport"
	"github.com/draftsync/draftsync/pkg/errors"
	"github.com/draftsync/draftsync/pkg/posts"
)

// DefaultEndpoint is the public Hashnode GraphQL endpoint.
const DefaultEndpoint = "https://gql.hashnode.com"

// listPageSize matches Hashnode's default page size.
const listPageSize = 20

// Client implements the posts.Client interface for Hashnode.
type Client struct {
	transport   *transport.Client
	endpoint    string
	username    string
	publication string
}

// Option configures the client.
type Option func(*Client)

// WithEndpoint overrides the GraphQL endpoint, for tests.
func WithEndpoint(url string) Option {
	return func(c *Client) {
		c.endpoint = url
	}
}

// WithPublication targets a specific publication for new articles.
func WithPublication(id string) Option {
	return func(c *Client) {
		c.publication = id
	}
}

// New creates a Hashnode client for the given personal access token
// and username.
func New(apiKey, username string, opts ...Option) *Client {
	c := &Client{
		transport: transport.New(posts.PlatformHashnode.String(), &transport.HeaderAuth{Header: "Authorization", Value: apiKey}),
		endpoint:  DefaultEndpoint,
		username:  username,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Platform returns the platform identifier.
func (c *Client) Platform() posts.Platform {
	return posts.PlatformHashnode
}

// GraphQL wire structures.
type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

type postNode struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Content struct {
		Markdown string `json:"markdown"`
	} `json:"content"`
	CoverImage *struct {
		URL string `json:"url"`
	} `json:"coverImage"`
	PublishedAt *time.Time `json:"publishedAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
	Tags        []struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	} `json:"tags"`
}

const listQuery = `
query UserPosts($username: String!, $page: Int!, $pageSize: Int!) {
  user(username: $username) {
    posts(page: $page, pageSize: $pageSize) {
      nodes {
        id
        title
        slug
        content { markdown }
        coverImage { url }
        publishedAt
        updatedAt
        tags { name slug }
      }
      pageInfo { hasNextPage }
    }
  }
}`

const getQuery = `
query Post($id: ID!) {
  post(id: $id) {
    id
    title
    slug
    content { markdown }
    coverImage { url }
    publishedAt
    updatedAt
    tags { name slug }
  }
}`

const publishMutation = `
mutation PublishPost($input: PublishPostInput!) {
  publishPost(input: $input) {
    post {
      id
      title
      slug
      content { markdown }
      coverImage { url }
      publishedAt
      updatedAt
      tags { name slug }
    }
  }
}`

const updateMutation = `
mutation UpdatePost($input: UpdatePostInput!) {
  updatePost(input: $input) {
    post {
      id
      title
      slug
      content { markdown }
      coverImage { url }
      publishedAt
      updatedAt
      tags { name slug }
    }
  }
}`

const removeMutation = `
mutation RemovePost($input: RemovePostInput!) {
  removePost(input: $input) {
    post { id }
  }
}`

// run executes a GraphQL operation and decodes data into out.
// GraphQL-level errors are normalized into the error taxonomy; HTTP
// status mapping is handled by the transport.
func (c *Client) run(ctx context.Context, operation, resourceID, query string, variables map[string]any, out any) error {
	resp, err := c.transport.JSON(ctx, http.MethodPost, c.endpoint, gqlRequest{Query: query, Variables: variables})
	if err != nil {
		return err
	}

	envelope := struct {
		Data   any        `json:"data"`
		Errors []gqlError `json:"errors"`
	}{Data: out}

	if err := transport.DecodeResponse(resp, c.Platform().String(), operation, resourceID, &envelope); err != nil {
		return err
	}
	if len(envelope.Errors) == 0 {
		return nil
	}
	return c.mapGraphQLError(envelope.Errors[0], operation, resourceID)
}

// mapGraphQLError converts a GraphQL error entry into the taxonomy.
func (c *Client) mapGraphQLError(e gqlError, operation, resourceID string) error {
	platform := c.Platform().String()
	code := strings.ToUpper(e.Extensions.Code)
	message := e.Message

	switch {
	case code == "UNAUTHENTICATED" || strings.Contains(message, "Invalid or expired token"):
		return errors.NewAuthError(platform, message, nil)
	case code == "FORBIDDEN" || strings.Contains(message, "does not have the minimum required role"):
		// Same rule as a 403: insufficient rights on a delete are a
		// permission problem, anywhere else the token itself is suspect.
		if operation == "delete" {
			return errors.NewPermissionError(platform, operation, resourceID)
		}
		return errors.NewAuthError(platform, message, nil)
	case code == "NOT_FOUND" || strings.Contains(strings.ToLower(message), "not found"):
		return errors.NewNotFoundError(platform, "article", resourceID)
	case code == "RATE_LIMITED":
		return errors.NewRateLimitError(platform, 0)
	default:
		return errors.NewAPIError(platform, 0, message)
	}
}

// ListArticles drains the user's posts page by page. Hashnode
// pagination starts from page 1.
func (c *Client) ListArticles(ctx context.Context) ([]posts.Article, error) {
	var all []posts.Article

	for page := 1; ; page++ {
		var data struct {
			User *struct {
				Posts struct {
					Nodes    []postNode `json:"nodes"`
					PageInfo struct {
						HasNextPage bool `json:"hasNextPage"`
					} `json:"pageInfo"`
				} `json:"posts"`
			} `json:"user"`
		}

		variables := map[string]any{"username": c.username, "page": page, "pageSize": listPageSize}
		if err := c.run(ctx, "list", "", listQuery, variables, &data); err != nil {
			return nil, err
		}
		if data.User == nil {
			return all, nil
		}

		for _, n := range data.User.Posts.Nodes {
			all = append(all, c.convert(n))
		}
		if !data.User.Posts.PageInfo.HasNextPage {
			return all, nil
		}
	}
}

// GetArticle retrieves a single post by ID.
func (c *Client) GetArticle(ctx context.Context, id string) (*posts.Article, error) {
	var data struct {
		Post *postNode `json:"post"`
	}
	if err := c.run(ctx, "get", id, getQuery, map[string]any{"id": id}, &data); err != nil {
		return nil, err
	}
	if data.Post == nil {
		return nil, errors.NewNotFoundError(c.Platform().String(), "article", id)
	}
	article := c.convert(*data.Post)
	return &article, nil
}

// CreateArticle publishes a new post from the payload.
func (c *Client) CreateArticle(ctx context.Context, payload posts.Payload, published bool) (*posts.Article, error) {
	input := c.postInput(payload, published)
	if c.publication != "" {
		input["publicationId"] = c.publication
	}

	var data struct {
		PublishPost struct {
			Post *postNode `json:"post"`
		} `json:"publishPost"`
	}
	if err := c.run(ctx, "create", "", publishMutation, map[string]any{"input": input}, &data); err != nil {
		return nil, err
	}
	if data.PublishPost.Post == nil {
		return nil, errors.NewAPIError(c.Platform().String(), 0, "publishPost returned no post")
	}
	article := c.convert(*data.PublishPost.Post)
	return &article, nil
}

// UpdateArticle updates an existing post. An empty payload body is
// omitted from the input so the stored content is left untouched.
func (c *Client) UpdateArticle(ctx context.Context, id string, payload posts.Payload, published bool) (*posts.Article, error) {
	input := c.postInput(payload, published)
	input["id"] = id

	var data struct {
		UpdatePost struct {
			Post *postNode `json:"post"`
		} `json:"updatePost"`
	}
	if err := c.run(ctx, "update", id, updateMutation, map[string]any{"input": input}, &data); err != nil {
		return nil, err
	}
	if data.UpdatePost.Post == nil {
		return nil, errors.NewNotFoundError(c.Platform().String(), "article", id)
	}
	article := c.convert(*data.UpdatePost.Post)
	return &article, nil
}

// DeleteArticle removes a post by ID.
func (c *Client) DeleteArticle(ctx context.Context, id string) error {
	var data struct {
		RemovePost struct {
			Post *postNode `json:"post"`
		} `json:"removePost"`
	}
	return c.run(ctx, "delete", id, removeMutation, map[string]any{"input": map[string]any{"id": id}}, &data)
}

// postInput maps a payload onto Hashnode's publish/update input.
func (c *Client) postInput(payload posts.Payload, published bool) map[string]any {
	input := map[string]any{}
	if payload.Title != "" {
		input["title"] = payload.Title
	}
	if payload.Subtitle != "" {
		input["subtitle"] = payload.Subtitle
	}
	if payload.Slug != "" {
		input["slug"] = payload.Slug
	}
	if payload.Body != "" {
		input["contentMarkdown"] = payload.Body
	}
	if len(payload.Tags) > 0 {
		tags := make([]map[string]any, len(payload.Tags))
		for i, t := range payload.Tags {
			tags[i] = map[string]any{"slug": t, "name": t}
		}
		input["tags"] = tags
	}
	if payload.Cover != "" {
		input["coverImageOptions"] = map[string]any{"coverImageURL": payload.Cover}
	}
	if payload.CanonicalURL != "" {
		input["originalArticleURL"] = payload.CanonicalURL
	}
	if payload.Series != "" {
		input["seriesId"] = payload.Series
	}
	if !published {
		input["draft"] = true
	}
	return input
}

// convert maps a Hashnode post node onto the draftsync model. A post
// without publishedAt is a draft.
func (c *Client) convert(n postNode) posts.Article {
	article := posts.Article{
		Platform:  posts.PlatformHashnode,
		ID:        n.ID,
		Title:     n.Title,
		Body:      n.Content.Markdown,
		Published: n.PublishedAt != nil,
	}
	if n.CoverImage != nil {
		article.Cover = n.CoverImage.URL
	}
	if n.PublishedAt != nil {
		article.CreatedAt = utc.Time{Time: *n.PublishedAt}
	}
	if n.UpdatedAt != nil {
		article.UpdatedAt = utc.Time{Time: *n.UpdatedAt}
	} else {
		article.UpdatedAt = article.CreatedAt
	}
	for _, t := range n.Tags {
		name := t.Slug
		if name == "" {
			name = t.Name
		}
		article.Tags = append(article.Tags, name)
	}
	return article
}
