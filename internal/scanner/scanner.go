// Package scanner discovers local markdown documents and parses their
// YAML frontmatter into the draftsync post model. The local collection
// is rebuilt fresh on every scan; nothing is cached between runs.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/draftsync/draftsync/pkg/errors"
	"github.com/draftsync/draftsync/pkg/logging"
	"github.com/draftsync/draftsync/pkg/posts"
)

// Defaults for document discovery.
const (
	DefaultPattern = "blogs/*.md"
	FallbackGlob   = "*.md"
)

// DefaultExcludes are filenames never treated as documents.
var DefaultExcludes = []string{"README.md"}

// frontmatterRe matches a leading YAML frontmatter block.
var frontmatterRe = regexp.MustCompile(`(?s)\A---\r?\n(.*?)\r?\n---\r?\n?`)

// frontmatter mirrors the supported document metadata keys.
type frontmatter struct {
	Title        string `yaml:"title"`
	Subtitle     string `yaml:"subtitle"`
	Slug         string `yaml:"slug"`
	Tags         any    `yaml:"tags"`
	Cover        string `yaml:"cover"`
	Domain       string `yaml:"domain"`
	SaveAsDraft  bool   `yaml:"saveAsDraft"`
	EnableTOC    *bool  `yaml:"enableToc"`
	SeriesName   string `yaml:"seriesName"`
	CanonicalURL string `yaml:"canonicalUrl"`
}

// Config controls document discovery.
type Config struct {
	// Pattern is the glob matched against the working directory.
	Pattern string
	// Exclude lists filenames skipped even when the glob matches them.
	Exclude []string
}

// DefaultConfig returns the discovery defaults.
func DefaultConfig() Config {
	return Config{
		Pattern: DefaultPattern,
		Exclude: DefaultExcludes,
	}
}

// Scanner loads the local document collection.
type Scanner struct {
	cfg    Config
	logger *zerolog.Logger
}

// New creates a scanner. A nil logger falls back to the default.
func New(cfg Config, logger *zerolog.Logger) *Scanner {
	if cfg.Pattern == "" {
		cfg.Pattern = DefaultPattern
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Scanner{cfg: cfg, logger: logger}
}

// Scan discovers matching markdown files and parses each into a post.
// Files without a title are skipped with a warning rather than failing
// the whole scan. Results are ordered by path, so runs are
// deterministic.
func (s *Scanner) Scan() ([]posts.Post, error) {
	paths, err := s.discover()
	if err != nil {
		return nil, err
	}

	docs := make([]posts.Post, 0, len(paths))
	for _, path := range paths {
		post, err := s.Load(path)
		if err != nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("skipping unreadable document")
			continue
		}
		if post.Title == "" {
			s.logger.Warn().Str("path", path).Msg("skipping document without a title")
			continue
		}
		docs = append(docs, *post)
	}

	s.logger.Info().
		Int("documents", len(docs)).
		Str("pattern", s.cfg.Pattern).
		Msg("scanned local documents")
	return docs, nil
}

// Load parses one markdown file into a post.
func (s *Scanner) Load(path string) (*posts.Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	meta, body, err := splitFrontmatter(string(data))
	if err != nil {
		return nil, errors.WrapParse("frontmatter", path, err)
	}

	post := &posts.Post{
		Path:         path,
		Title:        strings.TrimSpace(meta.Title),
		Subtitle:     meta.Subtitle,
		Slug:         meta.Slug,
		Tags:         parseTags(meta.Tags),
		Draft:        meta.SaveAsDraft,
		EnableTOC:    true,
		Cover:        meta.Cover,
		Domain:       meta.Domain,
		CanonicalURL: meta.CanonicalURL,
		Series:       meta.SeriesName,
		Body:         body,
	}
	if meta.EnableTOC != nil {
		post.EnableTOC = *meta.EnableTOC
	}
	if post.Slug == "" {
		post.Slug = Slugify(post.Title)
	}
	if post.CanonicalURL == "" && post.Domain != "" {
		post.CanonicalURL = fmt.Sprintf("https://%s/%s", post.Domain, post.Slug)
	}
	return post, nil
}

// discover resolves the glob, falling back to the working directory
// when the configured pattern matches nothing.
func (s *Scanner) discover() ([]string, error) {
	matches, err := filepath.Glob(s.cfg.Pattern)
	if err != nil {
		return nil, errors.NewConfigError("scanner", "invalid pattern "+s.cfg.Pattern, err)
	}
	if len(matches) == 0 {
		matches, _ = filepath.Glob(FallbackGlob)
	}

	excluded := make(map[string]bool, len(s.cfg.Exclude))
	for _, name := range s.cfg.Exclude {
		excluded[strings.TrimSpace(name)] = true
	}

	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		if excluded[filepath.Base(m)] {
			continue
		}
		paths = append(paths, m)
	}
	sort.Strings(paths)
	return paths, nil
}

// splitFrontmatter separates the YAML header from the markdown body.
// A document without a header yields empty metadata.
func splitFrontmatter(content string) (frontmatter, string, error) {
	var meta frontmatter

	loc := frontmatterRe.FindStringSubmatchIndex(content)
	if loc == nil {
		return meta, content, nil
	}
	header := content[loc[2]:loc[3]]
	body := content[loc[1]:]

	if err := yaml.Unmarshal([]byte(header), &meta); err != nil {
		return meta, "", err
	}
	return meta, body, nil
}

// parseTags accepts both YAML list and comma-separated string forms.
func parseTags(raw any) []string {
	var tags []string
	switch v := raw.(type) {
	case string:
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	case []any:
		for _, item := range v {
			if t := strings.TrimSpace(fmt.Sprint(item)); t != "" {
				tags = append(tags, t)
			}
		}
	case []string:
		for _, t := range v {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}
	return tags
}

// Slugify derives a URL slug from a title: accents folded away,
// lowercased, non-alphanumerics collapsed to single hyphens.
func Slugify(title string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}
