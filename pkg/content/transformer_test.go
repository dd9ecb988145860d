package content

import (
	"strings"
	"testing"

	"github.com/draftsync/draftsync/pkg/posts"
)

func TestNormalizeStripsFrontmatter(t *testing.T) {
	tr := New()
	body := "---\ntitle: Hello\ntags: go\n---\n# Hello\n\nText."

	got := tr.NormalizeForComparison(body)
	if strings.Contains(got, "title:") {
		t.Errorf("frontmatter survived normalization: %q", got)
	}
	if !strings.Contains(got, "# Hello") {
		t.Errorf("body content lost: %q", got)
	}
}

func TestNormalizeCollapsesWhitespace(t *testing.T) {
	tr := New()

	a := tr.NormalizeForComparison("# Title\n\n\nSome    text here.\n")
	b := tr.NormalizeForComparison("# Title\nSome text here.")
	if a != b {
		t.Errorf("whitespace variants normalize differently: %q vs %q", a, b)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	tr := New()
	body := "---\ntitle: X\n---\n## Heading\n\n<p align=\"center\">img</p>\n\ntext"

	once := tr.NormalizeForComparison(body)
	twice := tr.NormalizeForComparison(once)
	if once != twice {
		t.Errorf("normalization is not idempotent: %q vs %q", once, twice)
	}
}

func TestPayloadInjectsTOC(t *testing.T) {
	tr := New()
	post := &posts.Post{
		Title:     "Doc",
		EnableTOC: true,
		Body:      "## First Section\n\ntext\n\n## Second Section\n\nmore",
	}

	payload := tr.Payload(post, posts.PlatformDevTo)
	if !strings.HasPrefix(payload.Body, "## Table of Contents") {
		t.Fatalf("TOC not injected: %q", payload.Body[:40])
	}
	if !strings.Contains(payload.Body, "[First Section](#first-section)") {
		t.Errorf("TOC entry missing: %q", payload.Body)
	}
}

func TestPayloadNoTOCWithoutHeadings(t *testing.T) {
	tr := New()
	post := &posts.Post{Title: "Doc", EnableTOC: true, Body: "plain text, no headings"}

	payload := tr.Payload(post, posts.PlatformDevTo)
	if strings.Contains(payload.Body, "Table of Contents") {
		t.Error("TOC injected into a body without headings")
	}
}

func TestTOCRoundTripInvisibleToComparison(t *testing.T) {
	tr := New()
	body := "## Intro\n\nhello\n\n## Detail\n\nworld"
	post := &posts.Post{Title: "Doc", EnableTOC: true, Body: body}

	// A remote article stores the uploaded body, TOC included. The
	// next run must not see that as a change.
	uploaded := tr.Payload(post, posts.PlatformDevTo).Body
	if tr.NormalizeForComparison(uploaded) != tr.NormalizeForComparison(body) {
		t.Error("injected TOC registers as a content change")
	}
}

func TestNormalizeKeepsIntroBeforeFirstHeading(t *testing.T) {
	tr := New()
	body := "Intro paragraph before any heading.\n\n## Section\n\ncontent"
	post := &posts.Post{Title: "Doc", EnableTOC: true, Body: body}

	// Only the TOC list is stripped; the authored intro that follows
	// it is part of the comparable body.
	uploaded := tr.Payload(post, posts.PlatformDevTo).Body
	got := tr.NormalizeForComparison(uploaded)
	if !strings.Contains(got, "Intro paragraph before any heading.") {
		t.Fatalf("intro stripped with the TOC: %q", got)
	}
	if got != tr.NormalizeForComparison(body) {
		t.Errorf("TOC round trip changed the comparable body: %q", got)
	}

	edited := strings.Replace(body, "Intro paragraph", "Rewritten opening", 1)
	if tr.NormalizeForComparison(uploaded) == tr.NormalizeForComparison(edited) {
		t.Error("intro edit invisible after normalization")
	}
}

func TestHashnodeStripsAlignAttributes(t *testing.T) {
	tr := New()
	post := &posts.Post{Title: "Doc", Body: `<p align="center"><img src="x.png"></p>`}

	hashnode := tr.Payload(post, posts.PlatformHashnode)
	if strings.Contains(hashnode.Body, "align=") {
		t.Errorf("align attribute survived for hashnode: %q", hashnode.Body)
	}

	devto := tr.Payload(post, posts.PlatformDevTo)
	if !strings.Contains(devto.Body, "align=") {
		t.Error("align attribute stripped for devto, where it renders fine")
	}
}

func TestAlignRoundTripInvisibleToComparison(t *testing.T) {
	tr := New()
	body := `intro <p align="center">x</p> outro`
	post := &posts.Post{Title: "Doc", Body: body}

	uploaded := tr.Payload(post, posts.PlatformHashnode).Body
	if tr.NormalizeForComparison(uploaded) != tr.NormalizeForComparison(body) {
		t.Error("align stripping registers as a content change")
	}
}

func TestTagsFor(t *testing.T) {
	tests := []struct {
		name     string
		tags     []string
		platform posts.Platform
		want     []string
	}{
		{"devto lowercases", []string{"Go", "WebDev"}, posts.PlatformDevTo, []string{"go", "webdev"}},
		{"hashnode hyphenates", []string{"Machine Learning"}, posts.PlatformHashnode, []string{"machine-learning"}},
		{"hashnode strips symbols", []string{"C++"}, posts.PlatformHashnode, []string{"c"}},
		{"comma entries split", []string{"go, testing"}, posts.PlatformDevTo, []string{"go", "testing"}},
		{"blank entries dropped", []string{" ", ""}, posts.PlatformDevTo, nil},
		{"empty input", nil, posts.PlatformDevTo, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TagsFor(tt.tags, tt.platform)
			if len(got) != len(tt.want) {
				t.Fatalf("TagsFor = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("TagsFor = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestPayloadCarriesMetadata(t *testing.T) {
	tr := New()
	post := &posts.Post{
		Title:        "Doc",
		Subtitle:     "sub",
		Slug:         "doc",
		Tags:         []string{"go"},
		Cover:        "https://example.com/c.png",
		CanonicalURL: "https://example.com/doc",
		Series:       "series-1",
		Body:         "text",
	}

	payload := tr.Payload(post, posts.PlatformDevTo)
	if payload.Title != "Doc" || payload.Subtitle != "sub" || payload.Slug != "doc" ||
		payload.Cover != post.Cover || payload.CanonicalURL != post.CanonicalURL || payload.Series != "series-1" {
		t.Errorf("payload dropped metadata: %+v", payload)
	}
}
