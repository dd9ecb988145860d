package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/draftsync/draftsync/pkg/errors"
	"github.com/draftsync/draftsync/pkg/logging"
	"github.com/draftsync/draftsync/pkg/posts"
)

// Engine orchestrates identity resolution, change detection, decision
// execution and the orphan sweep across all documents and all enabled
// platforms.
type Engine struct {
	cfg         Config
	clients     []posts.Client
	transformer posts.Transformer
	detector    *Detector
	logger      *zerolog.Logger
}

// NewEngine builds an engine over the given connectors, iterated in
// the order provided. A nil logger uses the package default.
func NewEngine(cfg Config, clients []posts.Client, transformer posts.Transformer, logger *zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(clients) == 0 {
		return nil, errors.NewConfigError("reconcile", "no platform connectors available", nil)
	}
	if transformer == nil {
		return nil, errors.NewConfigError("reconcile", "content transformer is required", nil)
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &Engine{
		cfg:         cfg,
		clients:     clients,
		transformer: transformer,
		detector:    NewDetector(transformer),
		logger:      logger,
	}, nil
}

// runState holds the mutable state of a single run. Nothing in it is
// shared across platform branches except the append-only aggregator,
// and each platform's snapshot is private to its branch.
type runState struct {
	snapshots  map[posts.Platform][]posts.Article
	authFailed map[posts.Platform]bool
	agg        *Aggregator
}

// Run executes one full reconciliation pass over the given documents.
// Documents must already be in stable scan order. The returned report
// is complete even when the run was canceled or individual pairs
// failed; only configuration errors surface as an error.
func (e *Engine) Run(ctx context.Context, docs []posts.Post) (*Report, error) {
	runID := uuid.NewString()
	ctx = logging.WithRunID(logging.WithLogger(ctx, e.logger), runID)
	logger := logging.Ctx(ctx)
	start := time.Now()

	logger.Info().
		Int("documents", len(docs)).
		Int("platforms", len(e.clients)).
		Bool("dry_run", e.cfg.DryRun).
		Msg("Starting reconciliation run")

	st := &runState{
		snapshots:  make(map[posts.Platform][]posts.Article, len(e.clients)),
		authFailed: make(map[posts.Platform]bool),
		agg:        NewAggregator(),
	}

	for _, client := range e.clients {
		e.fetchSnapshot(ctx, st, client)
	}

	canceled := false
	for i := range docs {
		// Cancellation is honored only here, between documents, so an
		// in-flight operation always completes.
		if ctx.Err() != nil {
			logger.Warn().Int("remaining", len(docs)-i).Msg("Run canceled at document boundary")
			canceled = true
			break
		}

		doc := &docs[i]
		dctx := logging.WithDocument(ctx, doc.Title)
		for _, client := range e.clients {
			st.agg.Add(e.reconcileOne(dctx, st, client, doc))
		}
	}

	if !canceled {
		for _, client := range e.clients {
			if ctx.Err() != nil {
				canceled = true
				break
			}
			e.sweepOrphans(ctx, st, client, docs)
		}
	}

	report := &Report{
		RunID:     runID,
		StartTime: start,
		Duration:  time.Since(start),
		Documents: len(docs),
		Platforms: e.cfg.Platforms,
		DryRun:    e.cfg.DryRun,
		Canceled:  canceled,
		results:   st.agg,
	}

	logger.Info().
		Int("outcomes", len(report.Results())).
		Int("failed", st.agg.Failures()).
		Int("warnings", st.agg.Warnings()).
		Dur("duration", report.Duration).
		Msg("Reconciliation run finished")

	return report, nil
}

// fetchSnapshot loads a platform's full article listing with bounded
// backoff. A listing that fails after all retries yields an empty
// snapshot: identity resolution then reports "not found" and the run
// favors creation over blocking. That degradation is always logged,
// never silently swallowed.
func (e *Engine) fetchSnapshot(ctx context.Context, st *runState, client posts.Client) {
	platform := client.Platform()
	ctx = logging.WithPlatform(ctx, platform.String())
	logger := logging.Ctx(ctx)

	var snapshot []posts.Article
	err := withRetry(ctx, e.cfg.policyFor(platform), "list "+platform.String(), func(ctx context.Context) error {
		var err error
		snapshot, err = client.ListArticles(ctx)
		return err
	})
	if err != nil {
		if errors.IsAuth(err) {
			st.authFailed[platform] = true
			logger.Error().Err(err).
				Msg("Authentication failed; all operations against this platform will fail for the rest of the run")
		} else {
			logger.Warn().Err(err).
				Msg("Degraded listing: snapshot unavailable, unmatched documents will be created")
		}
		st.snapshots[platform] = nil
		return
	}

	logger.Debug().Int("articles", len(snapshot)).Msg("Fetched remote snapshot")
	st.snapshots[platform] = snapshot
}

// reconcileOne processes a single (document, platform) pair. Every
// failure, including panics from a misbehaving connector, is converted
// into a failed result at this boundary and never propagates; the
// engine simply advances to the next platform, then the next document.
func (e *Engine) reconcileOne(ctx context.Context, st *runState, client posts.Client, doc *posts.Post) (res Result) {
	platform := client.Platform()
	ctx = logging.WithPlatform(ctx, platform.String())
	logger := logging.Ctx(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Connector panicked")
			res = failedResult(platform, doc.Title, ActionNone, fmt.Errorf("connector panic: %v", r))
		}
	}()

	if st.authFailed[platform] {
		return failedResult(platform, doc.Title, ActionNone,
			errors.NewAuthError(platform.String(), "short-circuited after earlier authentication failure", nil))
	}

	matched := Resolve(doc.Title, st.snapshots[platform])
	decision := e.detector.Evaluate(doc, matched, platform)

	logger.Debug().Str("decision", decision.String()).Msg("Change evaluated")

	if decision.Action == ActionSkip {
		return Result{Platform: platform, Title: doc.Title, Action: ActionSkip, Success: true, ArticleID: decision.ArticleID}
	}

	if e.cfg.DryRun {
		return Result{Platform: platform, Title: doc.Title, Action: decision.Action, Success: true, ArticleID: decision.ArticleID}
	}

	article, err := e.execute(ctx, client, doc, decision)
	if err != nil {
		if errors.IsAuth(err) {
			st.authFailed[platform] = true
		}
		logger.Error().
			Str("operation", decision.Action.String()).
			Str("category", errors.Category(err)).
			Err(err).
			Msg("Operation failed")
		return failedResult(platform, doc.Title, decision.Action, err)
	}

	res = Result{Platform: platform, Title: doc.Title, Action: decision.Action, Success: true}
	if article != nil {
		res.ArticleID = article.ID
	} else {
		res.ArticleID = decision.ArticleID
	}

	logger.Info().
		Str("action", res.Action.String()).
		Str("article_id", res.ArticleID).
		Msg("Document reconciled")

	return res
}

// execute carries out a non-skip decision against the platform. The
// document's single draft/publish boolean is threaded to every call;
// per-platform representation is the transformer's concern.
func (e *Engine) execute(ctx context.Context, client posts.Client, doc *posts.Post, decision Decision) (*posts.Article, error) {
	platform := client.Platform()
	policy := e.cfg.policyFor(platform)
	payload := e.transformer.Payload(doc, platform)

	var article *posts.Article
	var err error

	switch decision.Action {
	case ActionCreate:
		err = withRetry(ctx, policy, "create "+platform.String(), func(ctx context.Context) error {
			var callErr error
			article, callErr = client.CreateArticle(ctx, payload, doc.Published())
			return callErr
		})

	case ActionUpdate, ActionUpdateMetadata:
		if decision.Action == ActionUpdateMetadata {
			payload = payload.WithoutBody()
		}
		err = withRetry(ctx, policy, "update "+platform.String(), func(ctx context.Context) error {
			var callErr error
			article, callErr = client.UpdateArticle(ctx, decision.ArticleID, payload, doc.Published())
			return callErr
		})
		if errors.IsNotFound(err) {
			// Stale identity: the matched article vanished between the
			// snapshot and the update. Fall back to creation.
			logging.Ctx(ctx).Warn().
				Str("article_id", decision.ArticleID).
				Msg("Matched article no longer exists, creating instead")
			payload = e.transformer.Payload(doc, platform)
			err = withRetry(ctx, policy, "create "+platform.String(), func(ctx context.Context) error {
				var callErr error
				article, callErr = client.CreateArticle(ctx, payload, doc.Published())
				return callErr
			})
		}

	default:
		return nil, errors.NewConfigError("reconcile", "unexpected action "+decision.Action.String(), nil)
	}

	if err != nil {
		return nil, err
	}
	return article, nil
}

// sweepOrphans deletes every article in the platform snapshot whose
// title matches no current local document. A permission failure leaves
// the article in place and the sweep continues with the next orphan.
func (e *Engine) sweepOrphans(ctx context.Context, st *runState, client posts.Client, docs []posts.Post) {
	platform := client.Platform()
	policy := e.cfg.policyFor(platform)
	ctx = logging.WithPlatform(ctx, platform.String())

	localTitles := make(map[string]struct{}, len(docs))
	for i := range docs {
		localTitles[docs[i].Title] = struct{}{}
	}

	for i := range st.snapshots[platform] {
		orphan := &st.snapshots[platform][i]
		if _, ok := localTitles[orphan.Title]; ok {
			continue
		}

		octx := logging.WithDocument(ctx, orphan.Title)
		logger := logging.Ctx(octx)

		if st.authFailed[platform] {
			st.agg.Add(failedResult(platform, orphan.Title, ActionDelete,
				errors.NewAuthError(platform.String(), "short-circuited after earlier authentication failure", nil)))
			continue
		}

		if e.cfg.DryRun {
			logger.Info().Msg("Orphaned article would be deleted")
			st.agg.Add(Result{Platform: platform, Title: orphan.Title, Action: ActionDelete, Success: true, ArticleID: orphan.ID})
			continue
		}

		err := withRetry(octx, policy, "delete "+platform.String(), func(ctx context.Context) error {
			return client.DeleteArticle(ctx, orphan.ID)
		})

		switch {
		case err == nil, errors.IsNotFound(err):
			// Already gone counts as deleted.
			logger.Info().Str("article_id", orphan.ID).Msg("Orphaned article deleted")
			st.agg.Add(Result{Platform: platform, Title: orphan.Title, Action: ActionDelete, Success: true, ArticleID: orphan.ID})

		case errors.IsPermission(err) && e.cfg.DeletePermissionSkip:
			logger.Warn().Str("article_id", orphan.ID).Err(err).
				Msg("Insufficient rights to delete orphan, leaving it in place")
			st.agg.Add(Result{
				Platform:    platform,
				Title:       orphan.Title,
				Action:      ActionDelete,
				Warning:     true,
				ArticleID:   orphan.ID,
				ErrCategory: errors.Category(err),
				ErrMessage:  err.Error(),
			})

		default:
			if errors.IsAuth(err) {
				st.authFailed[platform] = true
			}
			logger.Error().Str("article_id", orphan.ID).
				Str("category", errors.Category(err)).Err(err).
				Msg("Failed to delete orphaned article")
			st.agg.Add(failedResult(platform, orphan.Title, ActionDelete, err))
		}
	}
}

// failedResult converts an error into a failed outcome.
func failedResult(platform posts.Platform, title string, action Action, err error) Result {
	return Result{
		Platform:    platform,
		Title:       title,
		Action:      action,
		ErrCategory: errors.Category(err),
		ErrMessage:  err.Error(),
	}
}
