package reconcile

import (
	"strings"
)

// Action is the operation a decision calls for.
type Action string

// Actions a reconciliation decision can take.
const (
	// ActionCreate publishes a new article.
	ActionCreate Action = "create"
	// ActionUpdate resends the entire payload.
	ActionUpdate Action = "update"
	// ActionUpdateMetadata sends only changed metadata fields; the
	// body is not resent and the stored body is left untouched.
	ActionUpdateMetadata Action = "update-metadata"
	// ActionSkip issues no write call at all.
	ActionSkip Action = "skip"
	// ActionDelete removes an orphaned remote article.
	ActionDelete Action = "delete"
	// ActionNone marks a failure recorded before any decision was
	// reached, e.g. an authentication short-circuit.
	ActionNone Action = "none"
)

// String returns the action name.
func (a Action) String() string {
	return string(a)
}

// Field names a document attribute that differs from its remote
// counterpart.
type Field string

// Comparable fields.
const (
	FieldTitle     Field = "title"
	FieldTags      Field = "tags"
	FieldCover     Field = "cover"
	FieldBody      Field = "body"
	FieldPublished Field = "published"
)

// Decision is the transient outcome of change evaluation for one
// (document, platform) pair. It is computed, executed, and discarded;
// at most one non-skip decision exists per pair per run.
type Decision struct {
	Action    Action
	ArticleID string
	Changed   []Field
}

// HasChanged reports whether the named field is in the changed set.
func (d Decision) HasChanged(f Field) bool {
	for _, c := range d.Changed {
		if c == f {
			return true
		}
	}
	return false
}

// String renders the decision for logging.
func (d Decision) String() string {
	if len(d.Changed) == 0 {
		return string(d.Action)
	}
	fields := make([]string, len(d.Changed))
	for i, f := range d.Changed {
		fields[i] = string(f)
	}
	return string(d.Action) + " (" + strings.Join(fields, ", ") + ")"
}
