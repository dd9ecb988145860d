// Package posts defines the draftsync data model: locally authored
// documents, their remote article counterparts, and the platform
// connector contract the reconciliation engine consumes.
package posts

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
)

// Platform identifies a publishing platform.
type Platform string

// Supported platforms.
const (
	PlatformDevTo    Platform = "devto"
	PlatformHashnode Platform = "hashnode"
)

// String returns the platform identifier.
func (p Platform) String() string {
	return string(p)
}

// ParsePlatform normalizes a configured platform name.
func ParsePlatform(s string) (Platform, bool) {
	switch Platform(strings.ToLower(strings.TrimSpace(s))) {
	case PlatformDevTo:
		return PlatformDevTo, true
	case PlatformHashnode:
		return PlatformHashnode, true
	default:
		return "", false
	}
}

// Post is a locally authored document plus its structured metadata,
// rebuilt fresh from the local collection at the start of every run.
type Post struct {
	Path         string
	Title        string
	Subtitle     string
	Slug         string
	Tags         []string
	Draft        bool
	EnableTOC    bool
	Cover        string
	Domain       string
	CanonicalURL string
	Series       string
	Body         string
}

// Published reports the uniform publish state threaded to every
// platform call for this document.
func (p *Post) Published() bool {
	return !p.Draft
}

// Fingerprint derives a stable content fingerprint from the normalized
// body, tag set, title, draft flag and cover URL. Identical inputs
// always yield the identical fingerprint across runs; that property is
// what makes idempotence testable. The normalize function is supplied
// by the content transformer so the fingerprint and change detection
// agree on what "the body" is; nil means the raw body is used.
func (p *Post) Fingerprint(normalize func(string) string) string {
	body := p.Body
	if normalize != nil {
		body = normalize(body)
	}

	tags := make([]string, len(p.Tags))
	copy(tags, p.Tags)
	sort.Strings(tags)

	h := sha256.New()
	h.Write([]byte(body))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(tags, ",")))
	h.Write([]byte{0})
	h.Write([]byte(p.Title))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatBool(p.Draft)))
	h.Write([]byte{0})
	h.Write([]byte(p.Cover))

	return hex.EncodeToString(h.Sum(nil))
}

// EqualTags reports order-independent set equality of two tag lists.
// Duplicates within a list are ignored.
func EqualTags(a, b []string) bool {
	seen := make(map[string]struct{}, len(a))
	for _, t := range a {
		seen[t] = struct{}{}
	}
	other := make(map[string]struct{}, len(b))
	for _, t := range b {
		if _, ok := seen[t]; !ok {
			return false
		}
		other[t] = struct{}{}
	}
	return len(seen) == len(other)
}
