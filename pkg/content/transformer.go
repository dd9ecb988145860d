// Package content transforms local documents into platform-specific
// payloads and normalizes article bodies for comparison. Both
// directions are deterministic, so a document that round-trips through
// a platform and back never registers as a spurious change.
package content

import (
	"regexp"
	"strings"

	"github.com/draftsync/draftsync/pkg/posts"
)

var (
	frontmatterRe = regexp.MustCompile(`(?s)^---\n.*?\n---\n`)
	alignAttrRe   = regexp.MustCompile(`\s*align="[^"]*"`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	headingRe     = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)
	anchorCleanRe = regexp.MustCompile(`[^\w\s-]`)
	anchorDashRe  = regexp.MustCompile(`[-\s]+`)
)

// tocHeading marks the section the transformer injects when a post
// enables its table of contents. Comparison normalization strips it
// again so TOC injection stays invisible to change detection.
const tocHeading = "## Table of Contents"

// Transformer implements posts.Transformer.
type Transformer struct{}

// New returns a content transformer.
func New() *Transformer {
	return &Transformer{}
}

// Payload assembles the platform-bound representation of a post.
func (t *Transformer) Payload(post *posts.Post, platform posts.Platform) posts.Payload {
	body := post.Body

	if post.EnableTOC {
		if toc := tableOfContents(body); toc != "" {
			body = toc + "\n\n" + body
		}
	}

	switch platform {
	case posts.PlatformHashnode:
		// Hashnode does not render HTML alignment attributes.
		body = alignAttrRe.ReplaceAllString(body, "")
	case posts.PlatformDevTo:
		// dev.to renders the markdown as authored.
	}

	return posts.Payload{
		Title:        post.Title,
		Subtitle:     post.Subtitle,
		Slug:         post.Slug,
		Tags:         TagsFor(post.Tags, platform),
		Cover:        post.Cover,
		CanonicalURL: post.CanonicalURL,
		Series:       post.Series,
		Body:         body,
	}
}

// NormalizeForComparison reduces a body to its comparable form: the
// frontmatter block, the injected table of contents, and platform
// formatting are stripped, and incidental whitespace is collapsed.
func (t *Transformer) NormalizeForComparison(body string) string {
	body = frontmatterRe.ReplaceAllString(body, "")
	body = stripTOC(body)
	body = alignAttrRe.ReplaceAllString(body, "")
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(body), " ")
}

// stripTOC removes a leading injected table-of-contents section: the
// heading and the link-list entries under it. Authored content after
// the list is kept even when it is not a heading.
func stripTOC(body string) string {
	trimmed := strings.TrimLeft(body, "\n ")
	if !strings.HasPrefix(trimmed, tocHeading) {
		return body
	}

	lines := strings.Split(strings.TrimPrefix(trimmed, tocHeading), "\n")
	i := 0
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" || strings.HasPrefix(line, "- [") {
			continue
		}
		break
	}
	return strings.Join(lines[i:], "\n")
}

// tableOfContents builds a GitHub-style TOC from the body's headings.
// Bodies without headings get no TOC.
func tableOfContents(body string) string {
	headings := headingRe.FindAllStringSubmatch(body, -1)
	if len(headings) == 0 {
		return ""
	}

	lines := []string{tocHeading, ""}
	for _, h := range headings {
		level := len(h[1])
		title := strings.TrimSpace(h[2])
		indent := strings.Repeat("  ", level-1)
		lines = append(lines, indent+"- ["+title+"](#"+anchor(title)+")")
	}

	return strings.Join(lines, "\n")
}

// anchor derives a GitHub-style anchor from a heading title.
func anchor(title string) string {
	a := anchorCleanRe.ReplaceAllString(strings.ToLower(title), "")
	a = anchorDashRe.ReplaceAllString(a, "-")
	return strings.Trim(a, "-")
}

// TagsFor converts a tag list to the platform's expected format.
func TagsFor(tags []string, platform posts.Platform) []string {
	if len(tags) == 0 {
		return nil
	}

	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		// Comma-separated entries inside a single tag value are split.
		for _, part := range strings.Split(tag, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			switch platform {
			case posts.PlatformHashnode:
				if s := hashnodeTag(part); s != "" {
					out = append(out, s)
				}
			default:
				out = append(out, strings.ToLower(part))
			}
		}
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

var (
	hashnodeTagCleanRe = regexp.MustCompile(`[^a-z0-9\s-]`)
	hashnodeTagDashRe  = regexp.MustCompile(`[\s-]+`)
)

// hashnodeTag lowercases a tag and reduces it to hyphenated
// alphanumerics, the only form Hashnode accepts.
func hashnodeTag(tag string) string {
	s := hashnodeTagCleanRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(tag)), "")
	s = hashnodeTagDashRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
