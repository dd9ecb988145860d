package reconcile

import (
	"fmt"
	"strings"
	"time"

	"github.com/draftsync/draftsync/pkg/posts"
)

// Result is the recorded outcome of one executed decision. Results are
// append-only and never mutated after creation.
type Result struct {
	Platform  posts.Platform
	Title     string
	Action    Action
	Success   bool
	Warning   bool // non-fatal outcome, e.g. orphan left in place on a permission error
	ArticleID string
	// ErrCategory and ErrMessage are set on failed and warning
	// outcomes: the taxonomy category and the connector message.
	ErrCategory string
	ErrMessage  string
}

// Failed reports whether this outcome counts against the run's exit
// status. Warnings do not.
func (r Result) Failed() bool {
	return !r.Success && !r.Warning
}

// Aggregator accumulates results keyed by (document title, platform).
// It is pure and I/O-free: it performs no retries and makes no
// decisions.
type Aggregator struct {
	results []Result
	order   []string
	byTitle map[string][]Result
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{byTitle: make(map[string][]Result)}
}

// Add records a result.
func (a *Aggregator) Add(r Result) {
	a.results = append(a.results, r)
	if _, ok := a.byTitle[r.Title]; !ok {
		a.order = append(a.order, r.Title)
	}
	a.byTitle[r.Title] = append(a.byTitle[r.Title], r)
}

// Results returns all recorded results in insertion order.
func (a *Aggregator) Results() []Result {
	return a.results
}

// Failures counts failed outcomes, excluding warnings.
func (a *Aggregator) Failures() int {
	n := 0
	for _, r := range a.results {
		if r.Failed() {
			n++
		}
	}
	return n
}

// Warnings counts warning outcomes.
func (a *Aggregator) Warnings() int {
	n := 0
	for _, r := range a.results {
		if r.Warning {
			n++
		}
	}
	return n
}

// DocumentSummary is the per-document view of a run used for the final
// report.
type DocumentSummary struct {
	Title    string
	Created  []posts.Platform
	Updated  []posts.Platform
	Skipped  []posts.Platform
	Deleted  []posts.Platform
	Failures []Result
	Warnings []Result
}

// Summaries produces one summary per document title, in first-seen
// order. Orphan deletions appear under the remote article's title.
func (a *Aggregator) Summaries() []DocumentSummary {
	summaries := make([]DocumentSummary, 0, len(a.order))
	for _, title := range a.order {
		s := DocumentSummary{Title: title}
		for _, r := range a.byTitle[title] {
			switch {
			case r.Warning:
				s.Warnings = append(s.Warnings, r)
			case !r.Success:
				s.Failures = append(s.Failures, r)
			case r.Action == ActionCreate:
				s.Created = append(s.Created, r.Platform)
			case r.Action == ActionUpdate, r.Action == ActionUpdateMetadata:
				s.Updated = append(s.Updated, r.Platform)
			case r.Action == ActionSkip:
				s.Skipped = append(s.Skipped, r.Platform)
			case r.Action == ActionDelete:
				s.Deleted = append(s.Deleted, r.Platform)
			}
		}
		summaries = append(summaries, s)
	}
	return summaries
}

// Report is the end-of-run view handed back to the caller.
type Report struct {
	RunID     string
	StartTime time.Time
	Duration  time.Duration
	Documents int
	Platforms []posts.Platform
	DryRun    bool
	Canceled  bool

	results *Aggregator
}

// Results returns every recorded outcome.
func (r *Report) Results() []Result {
	return r.results.Results()
}

// Summaries returns the per-document summaries.
func (r *Report) Summaries() []DocumentSummary {
	return r.results.Summaries()
}

// HasFailures reports whether any failed outcome exists. Process exit
// status is non-zero exactly when this is true.
func (r *Report) HasFailures() bool {
	return r.results.Failures() > 0
}

// String renders the human-readable end-of-run report: every document
// with its per-platform outcome and, for failures, the error category
// and message.
func (r *Report) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Reconciliation run %s\n", r.RunID)
	fmt.Fprintf(&b, "Documents: %d  Platforms: %s  Duration: %s\n",
		r.Documents, joinPlatforms(r.Platforms), r.Duration.Round(time.Millisecond))
	if r.DryRun {
		b.WriteString("Mode: dry-run (no write calls issued)\n")
	}
	if r.Canceled {
		b.WriteString("Run canceled before completion\n")
	}
	b.WriteString("\n")

	for _, s := range r.results.Summaries() {
		fmt.Fprintf(&b, "%q\n", s.Title)
		writeOutcomeLine(&b, "created", s.Created)
		writeOutcomeLine(&b, "updated", s.Updated)
		writeOutcomeLine(&b, "skipped", s.Skipped)
		writeOutcomeLine(&b, "deleted", s.Deleted)
		for _, w := range s.Warnings {
			fmt.Fprintf(&b, "  warning  %s: %s (%s)\n", w.Platform, w.ErrMessage, w.ErrCategory)
		}
		for _, f := range s.Failures {
			fmt.Fprintf(&b, "  FAILED   %s: %s (%s)\n", f.Platform, f.ErrMessage, f.ErrCategory)
		}
	}

	fmt.Fprintf(&b, "\n%d failed, %d warnings, %d total outcomes\n",
		r.results.Failures(), r.results.Warnings(), len(r.results.Results()))

	return b.String()
}

func writeOutcomeLine(b *strings.Builder, label string, platforms []posts.Platform) {
	if len(platforms) == 0 {
		return
	}
	fmt.Fprintf(b, "  %-8s %s\n", label, joinPlatforms(platforms))
}

func joinPlatforms(platforms []posts.Platform) string {
	names := make([]string, len(platforms))
	for i, p := range platforms {
		names[i] = p.String()
	}
	return strings.Join(names, ", ")
}
