package reconcile

import (
	"github.com/draftsync/draftsync/pkg/posts"
)

// Detector decides whether and how a matched article must be updated.
type Detector struct {
	transformer posts.Transformer
}

// NewDetector returns a change detector that compares bodies through
// the given transformer's comparison normalization.
func NewDetector(transformer posts.Transformer) *Detector {
	return &Detector{transformer: transformer}
}

// Evaluate produces the reconciliation decision for a document and its
// resolved remote counterpart (nil when no article matched):
//
//   - no match: create
//   - no differences: skip, leaving remote engagement untouched
//   - differences confined to title, tags or cover: metadata-only
//     update, preserving the original creation timestamp
//   - body or publish state differs: full update
//
// Comparison runs against the platform-bound payload rather than the
// raw document, so platform tag sanitization and injected sections
// never register as changes.
func (d *Detector) Evaluate(post *posts.Post, matched *posts.Article, platform posts.Platform) Decision {
	if matched == nil {
		return Decision{Action: ActionCreate}
	}

	payload := d.transformer.Payload(post, platform)

	var changed []Field
	if payload.Title != matched.Title {
		changed = append(changed, FieldTitle)
	}
	if !posts.EqualTags(payload.Tags, matched.Tags) {
		changed = append(changed, FieldTags)
	}
	if payload.Cover != matched.Cover {
		changed = append(changed, FieldCover)
	}

	localBody := d.transformer.NormalizeForComparison(payload.Body)
	remoteBody := d.transformer.NormalizeForComparison(matched.Body)
	if localBody != remoteBody {
		changed = append(changed, FieldBody)
	}
	if post.Published() != matched.Published {
		changed = append(changed, FieldPublished)
	}

	decision := Decision{ArticleID: matched.ID, Changed: changed}
	switch {
	case len(changed) == 0:
		decision.Action = ActionSkip
	case decision.HasChanged(FieldBody) || decision.HasChanged(FieldPublished):
		decision.Action = ActionUpdate
	default:
		decision.Action = ActionUpdateMetadata
	}

	return decision
}
