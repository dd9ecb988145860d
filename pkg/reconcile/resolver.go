package reconcile

import (
	"github.com/draftsync/draftsync/pkg/posts"
)

// Resolve matches a local document title to at most one article in a
// platform snapshot. Matching is exact-title equality, case-sensitive.
// Title matching assumes per-platform uniqueness; when duplicates
// exist the most recently created article is authoritative. That
// tie-break is a heuristic, not a correctness guarantee, and is kept
// exactly as specified even when duplicates span draft and published
// entries.
func Resolve(title string, snapshot []posts.Article) *posts.Article {
	var match *posts.Article
	for i := range snapshot {
		art := &snapshot[i]
		if art.Title != title {
			continue
		}
		if match == nil || art.CreatedAt.Time.After(match.CreatedAt.Time) {
			match = art
		}
	}
	return match
}
