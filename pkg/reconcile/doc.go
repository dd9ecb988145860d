// Package reconcile implements the draftsync reconciliation engine.
//
// A run compares the complete set of local documents against each
// enabled platform's full remote snapshot. Every (document, platform)
// pair moves through the same states:
//
//	Start → IdentityResolved → ChangeEvaluated → {Created | Updated | Skipped | Failed}
//
// Documents are iterated in a stable scan order and, for each, every
// enabled platform in configured order. The two axes are independent:
// a failure for one platform on one document never prevents work for
// the next platform on the same document, nor for the next document.
// After all pairs are processed the engine sweeps each platform's
// snapshot for orphans, remote articles whose title matches no local
// document, and deletes them.
//
// Execution is single-threaded and sequential: the platforms are
// individually rate-limited, and concurrent calls against one account
// amplify throttling rather than improve throughput. Cancellation is
// honored only at document-iteration boundaries so an in-flight
// operation always finishes and no article is left half-written.
package reconcile
