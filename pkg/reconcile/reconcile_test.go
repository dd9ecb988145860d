package reconcile

import (
	"context"
	stderrors "errors"
	"strconv"
	"testing"
	"time"

	"github.com/draftsync/draftsync/pkg/content"
	"github.com/draftsync/draftsync/pkg/errors"
	"github.com/draftsync/draftsync/pkg/logging"
	"github.com/draftsync/draftsync/pkg/posts"
)

// mockClient is a scripted connector. Remote state lives in articles;
// error fields inject failures per operation.
type mockClient struct {
	platform posts.Platform
	articles []posts.Article

	listErr   error
	createErr map[string]error // keyed by payload title
	updateErr map[string]error // keyed by article ID
	deleteErr map[string]error // keyed by article ID

	listCalls   int
	createCalls int
	updateCalls int
	deleteCalls int

	// lastUpdatePayload records the payload of the most recent update,
	// for metadata-only assertions.
	lastUpdatePayload posts.Payload

	nextID int
}

func newMockClient(platform posts.Platform, articles ...posts.Article) *mockClient {
	return &mockClient{
		platform:  platform,
		articles:  articles,
		createErr: make(map[string]error),
		updateErr: make(map[string]error),
		deleteErr: make(map[string]error),
		nextID:    100,
	}
}

func (m *mockClient) Platform() posts.Platform { return m.platform }

func (m *mockClient) ListArticles(_ context.Context) ([]posts.Article, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]posts.Article, len(m.articles))
	copy(out, m.articles)
	return out, nil
}

func (m *mockClient) GetArticle(_ context.Context, id string) (*posts.Article, error) {
	for i := range m.articles {
		if m.articles[i].ID == id {
			a := m.articles[i]
			return &a, nil
		}
	}
	return nil, errors.NewNotFoundError(m.platform.String(), "article", id)
}

func (m *mockClient) CreateArticle(_ context.Context, payload posts.Payload, published bool) (*posts.Article, error) {
	m.createCalls++
	if err := m.createErr[payload.Title]; err != nil {
		return nil, err
	}
	m.nextID++
	a := posts.Article{
		Platform:  m.platform,
		ID:        strconv.Itoa(m.nextID),
		Title:     payload.Title,
		Body:      payload.Body,
		Tags:      payload.Tags,
		Published: published,
		Cover:     payload.Cover,
	}
	m.articles = append(m.articles, a)
	return &a, nil
}

func (m *mockClient) UpdateArticle(_ context.Context, id string, payload posts.Payload, published bool) (*posts.Article, error) {
	m.updateCalls++
	m.lastUpdatePayload = payload
	if err := m.updateErr[id]; err != nil {
		return nil, err
	}
	for i := range m.articles {
		if m.articles[i].ID == id {
			if payload.Title != "" {
				m.articles[i].Title = payload.Title
			}
			if payload.Body != "" {
				m.articles[i].Body = payload.Body
			}
			m.articles[i].Tags = payload.Tags
			m.articles[i].Cover = payload.Cover
			m.articles[i].Published = published
			// Updates touch UpdatedAt only; CreatedAt belongs to the
			// original publication.
			m.articles[i].UpdatedAt = at(time.Now())
			a := m.articles[i]
			return &a, nil
		}
	}
	return nil, errors.NewNotFoundError(m.platform.String(), "article", id)
}

func (m *mockClient) article(id string) *posts.Article {
	for i := range m.articles {
		if m.articles[i].ID == id {
			return &m.articles[i]
		}
	}
	return nil
}

func (m *mockClient) DeleteArticle(_ context.Context, id string) error {
	m.deleteCalls++
	if err := m.deleteErr[id]; err != nil {
		return err
	}
	for i := range m.articles {
		if m.articles[i].ID == id {
			m.articles = append(m.articles[:i], m.articles[i+1:]...)
			return nil
		}
	}
	return errors.NewNotFoundError(m.platform.String(), "article", id)
}

func testConfig(platforms ...posts.Platform) Config {
	if len(platforms) == 0 {
		platforms = []posts.Platform{posts.PlatformDevTo}
	}
	return Config{
		Platforms: platforms,
		Retry:     RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond},
	}
}

func newTestEngine(t *testing.T, cfg Config, clients ...posts.Client) *Engine {
	t.Helper()
	engine, err := NewEngine(cfg, clients, content.New(), logging.NewNopLogger())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine
}

func resultFor(report *Report, title string, platform posts.Platform) *Result {
	for _, r := range report.Results() {
		if r.Title == title && r.Platform == platform {
			return &r
		}
	}
	return nil
}

func TestRunCreatesUnmatchedDocument(t *testing.T) {
	client := newMockClient(posts.PlatformDevTo)
	engine := newTestEngine(t, testConfig(), client)

	docs := []posts.Post{{Title: "New Doc", Body: "hello"}}
	report, err := engine.Run(context.Background(), docs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	res := resultFor(report, "New Doc", posts.PlatformDevTo)
	if res == nil || res.Action != ActionCreate || !res.Success {
		t.Fatalf("result = %+v, want successful create", res)
	}
	if client.createCalls != 1 {
		t.Errorf("createCalls = %d, want 1", client.createCalls)
	}
	if report.HasFailures() {
		t.Error("unexpected failures in report")
	}
}

func TestRunIdempotentSecondPass(t *testing.T) {
	client := newMockClient(posts.PlatformDevTo)
	engine := newTestEngine(t, testConfig(), client)
	docs := []posts.Post{{Title: "Doc", Body: "stable content", Tags: []string{"go"}}}

	if _, err := engine.Run(context.Background(), docs); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	writesAfterFirst := client.createCalls + client.updateCalls + client.deleteCalls

	report, err := engine.Run(context.Background(), docs)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}

	if got := client.createCalls + client.updateCalls + client.deleteCalls; got != writesAfterFirst {
		t.Errorf("second run issued %d extra writes", got-writesAfterFirst)
	}
	res := resultFor(report, "Doc", posts.PlatformDevTo)
	if res == nil || res.Action != ActionSkip {
		t.Fatalf("result = %+v, want skip on second pass", res)
	}
}

func TestRunMetadataOnlyUpdateOmitsBody(t *testing.T) {
	created := at(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	client := newMockClient(posts.PlatformDevTo, posts.Article{
		ID: "5", Title: "Doc", Body: "same body", Tags: []string{"go"}, Published: true, CreatedAt: created,
	})
	engine := newTestEngine(t, testConfig(), client)

	docs := []posts.Post{{Title: "Doc", Body: "same body", Tags: []string{"go", "web"}}}
	report, err := engine.Run(context.Background(), docs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	res := resultFor(report, "Doc", posts.PlatformDevTo)
	if res == nil || res.Action != ActionUpdateMetadata || !res.Success {
		t.Fatalf("result = %+v, want metadata update", res)
	}
	if client.lastUpdatePayload.Body != "" {
		t.Error("metadata-only update resent the body")
	}
	if got := client.article("5"); got == nil || !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt changed across the update: %+v", got)
	}
}

func TestRunBodyChangeFullUpdate(t *testing.T) {
	created := at(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	client := newMockClient(posts.PlatformDevTo, posts.Article{
		ID: "5", Title: "Doc", Body: "old body", Published: true, CreatedAt: created,
	})
	engine := newTestEngine(t, testConfig(), client)

	docs := []posts.Post{{Title: "Doc", Body: "new body"}}
	report, err := engine.Run(context.Background(), docs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	res := resultFor(report, "Doc", posts.PlatformDevTo)
	if res == nil || res.Action != ActionUpdate || !res.Success {
		t.Fatalf("result = %+v, want full update", res)
	}
	if client.lastUpdatePayload.Body == "" {
		t.Error("full update omitted the body")
	}
	if got := client.article("5"); got == nil || !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt changed across the update: %+v", got)
	}
}

func TestRunFailureIsolation(t *testing.T) {
	client := newMockClient(posts.PlatformDevTo)
	client.createErr["Broken"] = errors.NewTransientError("devto", stderrors.New("boom"))
	engine := newTestEngine(t, testConfig(), client)

	docs := []posts.Post{
		{Title: "Broken", Body: "a"},
		{Title: "Fine", Body: "b"},
	}
	report, err := engine.Run(context.Background(), docs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	broken := resultFor(report, "Broken", posts.PlatformDevTo)
	if broken == nil || !broken.Failed() {
		t.Fatalf("result = %+v, want failure for Broken", broken)
	}
	if broken.ErrCategory != "transient" {
		t.Errorf("ErrCategory = %q, want transient", broken.ErrCategory)
	}

	fine := resultFor(report, "Fine", posts.PlatformDevTo)
	if fine == nil || !fine.Success {
		t.Fatalf("result = %+v, want Fine to succeed despite earlier failure", fine)
	}
	if !report.HasFailures() {
		t.Error("report must carry the failure")
	}
}

func TestRunPlatformIsolation(t *testing.T) {
	devto := newMockClient(posts.PlatformDevTo)
	devto.createErr["Doc"] = errors.NewTransientError("devto", stderrors.New("down"))
	hashnode := newMockClient(posts.PlatformHashnode)

	cfg := testConfig(posts.PlatformDevTo, posts.PlatformHashnode)
	engine := newTestEngine(t, cfg, devto, hashnode)

	report, err := engine.Run(context.Background(), []posts.Post{{Title: "Doc", Body: "x"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res := resultFor(report, "Doc", posts.PlatformDevTo); res == nil || !res.Failed() {
		t.Fatalf("devto result = %+v, want failure", res)
	}
	if res := resultFor(report, "Doc", posts.PlatformHashnode); res == nil || !res.Success {
		t.Fatalf("hashnode result = %+v, want success despite devto failure", res)
	}
}

func TestRunAuthShortCircuit(t *testing.T) {
	client := newMockClient(posts.PlatformDevTo)
	client.listErr = errors.NewAuthError("devto", "invalid api key", nil)
	engine := newTestEngine(t, testConfig(), client)

	docs := []posts.Post{
		{Title: "One", Body: "a"},
		{Title: "Two", Body: "b"},
	}
	report, err := engine.Run(context.Background(), docs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if client.createCalls != 0 || client.updateCalls != 0 {
		t.Errorf("writes issued after auth failure: create=%d update=%d", client.createCalls, client.updateCalls)
	}
	for _, title := range []string{"One", "Two"} {
		res := resultFor(report, title, posts.PlatformDevTo)
		if res == nil || !res.Failed() || res.ErrCategory != "auth" {
			t.Errorf("result for %q = %+v, want auth failure", title, res)
		}
	}
}

func TestRunDegradedListingFavorsCreation(t *testing.T) {
	client := newMockClient(posts.PlatformDevTo)
	client.listErr = errors.NewTransientError("devto", stderrors.New("listing down"))

	tl := logging.NewTestLogger(t)
	engine, err := NewEngine(testConfig(), []posts.Client{client}, content.New(), tl.Logger)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	report, err := engine.Run(context.Background(), []posts.Post{{Title: "Doc", Body: "x"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	res := resultFor(report, "Doc", posts.PlatformDevTo)
	if res == nil || res.Action != ActionCreate || !res.Success {
		t.Fatalf("result = %+v, want create under degraded listing", res)
	}
	// Listing was retried before degrading.
	if client.listCalls != 2 {
		t.Errorf("listCalls = %d, want MaxAttempts", client.listCalls)
	}
	// The degradation is logged, never silently swallowed.
	tl.AssertContains(t, "Degraded listing")
}

func TestRunStaleMatchFallsBackToCreate(t *testing.T) {
	client := newMockClient(posts.PlatformDevTo, posts.Article{
		ID: "stale", Title: "Doc", Body: "old", Published: true,
	})
	client.updateErr["stale"] = errors.NewNotFoundError("devto", "article", "stale")
	engine := newTestEngine(t, testConfig(), client)

	report, err := engine.Run(context.Background(), []posts.Post{{Title: "Doc", Body: "new"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	res := resultFor(report, "Doc", posts.PlatformDevTo)
	if res == nil || !res.Success {
		t.Fatalf("result = %+v, want success via create fallback", res)
	}
	if client.createCalls != 1 {
		t.Errorf("createCalls = %d, want fallback create", client.createCalls)
	}
}

func TestRunOrphanSweep(t *testing.T) {
	client := newMockClient(posts.PlatformDevTo,
		posts.Article{ID: "1", Title: "Kept", Body: "x", Published: true},
		posts.Article{ID: "2", Title: "Orphan", Body: "y", Published: true},
	)
	engine := newTestEngine(t, testConfig(), client)

	report, err := engine.Run(context.Background(), []posts.Post{{Title: "Kept", Body: "x"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	res := resultFor(report, "Orphan", posts.PlatformDevTo)
	if res == nil || res.Action != ActionDelete || !res.Success {
		t.Fatalf("result = %+v, want successful delete", res)
	}
	if kept := resultFor(report, "Kept", posts.PlatformDevTo); kept == nil || kept.Action != ActionSkip {
		t.Fatalf("result = %+v, want matched document skipped, not swept", kept)
	}
	if client.deleteCalls != 1 {
		t.Errorf("deleteCalls = %d, want 1", client.deleteCalls)
	}
}

func TestRunMixedState(t *testing.T) {
	client := newMockClient(posts.PlatformDevTo,
		posts.Article{ID: "1", Title: "Post A", Body: "unchanged", Published: true},
		posts.Article{ID: "2", Title: "Post C", Body: "orphaned", Published: true},
	)
	engine := newTestEngine(t, testConfig(), client)

	docs := []posts.Post{
		{Title: "Post A", Body: "unchanged"},
		{Title: "Post B", Body: "new draft", Draft: true},
	}
	report, err := engine.Run(context.Background(), docs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res := resultFor(report, "Post A", posts.PlatformDevTo); res == nil || res.Action != ActionSkip {
		t.Errorf("Post A result = %+v, want skip", res)
	}
	if res := resultFor(report, "Post B", posts.PlatformDevTo); res == nil || res.Action != ActionCreate || !res.Success {
		t.Errorf("Post B result = %+v, want create", res)
	}
	if res := resultFor(report, "Post C", posts.PlatformDevTo); res == nil || res.Action != ActionDelete || !res.Success {
		t.Errorf("Post C result = %+v, want delete", res)
	}
	if report.HasFailures() {
		t.Error("unexpected failures in report")
	}
}

func TestRunOrphanPermissionWarning(t *testing.T) {
	client := newMockClient(posts.PlatformDevTo,
		posts.Article{ID: "1", Title: "Locked", Body: "x", Published: true},
		posts.Article{ID: "2", Title: "Free", Body: "y", Published: true},
	)
	client.deleteErr["1"] = errors.NewPermissionError("devto", "delete", "1")

	cfg := testConfig()
	cfg.DeletePermissionSkip = true
	engine := newTestEngine(t, cfg, client)

	report, err := engine.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	locked := resultFor(report, "Locked", posts.PlatformDevTo)
	if locked == nil || !locked.Warning || locked.Failed() {
		t.Fatalf("result = %+v, want non-fatal warning", locked)
	}
	// The sweep continues past the permission error.
	if free := resultFor(report, "Free", posts.PlatformDevTo); free == nil || !free.Success {
		t.Fatalf("result = %+v, want the next orphan deleted", free)
	}
	if report.HasFailures() {
		t.Error("permission warning must not fail the run")
	}
}

func TestRunOrphanPermissionFailure(t *testing.T) {
	client := newMockClient(posts.PlatformDevTo,
		posts.Article{ID: "1", Title: "Locked", Body: "x", Published: true},
	)
	client.deleteErr["1"] = errors.NewPermissionError("devto", "delete", "1")

	cfg := testConfig()
	cfg.DeletePermissionSkip = false
	engine := newTestEngine(t, cfg, client)

	report, err := engine.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !report.HasFailures() {
		t.Error("permission error must fail the run when the skip flag is off")
	}
}

func TestRunOrphanAlreadyDeleted(t *testing.T) {
	client := newMockClient(posts.PlatformDevTo,
		posts.Article{ID: "1", Title: "Ghost", Body: "x", Published: true},
	)
	client.deleteErr["1"] = errors.NewNotFoundError("devto", "article", "1")
	engine := newTestEngine(t, testConfig(), client)

	report, err := engine.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	res := resultFor(report, "Ghost", posts.PlatformDevTo)
	if res == nil || !res.Success {
		t.Fatalf("result = %+v, want already-deleted treated as success", res)
	}
}

func TestRunDryRunIssuesNoWrites(t *testing.T) {
	client := newMockClient(posts.PlatformDevTo,
		posts.Article{ID: "1", Title: "Old", Body: "x", Published: true},
	)
	cfg := testConfig()
	cfg.DryRun = true
	engine := newTestEngine(t, cfg, client)

	report, err := engine.Run(context.Background(), []posts.Post{{Title: "New", Body: "y"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if client.createCalls+client.updateCalls+client.deleteCalls != 0 {
		t.Error("dry run issued write calls")
	}
	if res := resultFor(report, "New", posts.PlatformDevTo); res == nil || res.Action != ActionCreate {
		t.Fatalf("result = %+v, want planned create", res)
	}
	if res := resultFor(report, "Old", posts.PlatformDevTo); res == nil || res.Action != ActionDelete {
		t.Fatalf("result = %+v, want planned delete", res)
	}
	if !report.DryRun {
		t.Error("report must be flagged as dry-run")
	}
}

func TestRunCancellationAtDocumentBoundary(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newMockClient(posts.PlatformDevTo)
	engine := newTestEngine(t, testConfig(), client)

	report, err := engine.Run(ctx, []posts.Post{
		{Title: "One", Body: "a"},
		{Title: "Two", Body: "b"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !report.Canceled {
		t.Error("report must be flagged canceled")
	}
	if client.createCalls != 0 {
		t.Errorf("createCalls = %d, want 0 after pre-run cancellation", client.createCalls)
	}
}

func TestNewEngineValidation(t *testing.T) {
	transformer := content.New()
	client := newMockClient(posts.PlatformDevTo)

	if _, err := NewEngine(Config{}, []posts.Client{client}, transformer, nil); err == nil {
		t.Error("expected error for empty platform list")
	}
	if _, err := NewEngine(testConfig(), nil, transformer, nil); err == nil {
		t.Error("expected error for missing connectors")
	}
	if _, err := NewEngine(testConfig(), []posts.Client{client}, nil, nil); err == nil {
		t.Error("expected error for missing transformer")
	}

	dup := Config{Platforms: []posts.Platform{posts.PlatformDevTo, posts.PlatformDevTo}}
	if _, err := NewEngine(dup, []posts.Client{client}, transformer, nil); err == nil {
		t.Error("expected error for duplicate platform")
	}
}

func TestAggregatorSummaries(t *testing.T) {
	agg := NewAggregator()
	agg.Add(Result{Platform: posts.PlatformDevTo, Title: "A", Action: ActionCreate, Success: true})
	agg.Add(Result{Platform: posts.PlatformHashnode, Title: "A", Action: ActionSkip, Success: true})
	agg.Add(Result{Platform: posts.PlatformDevTo, Title: "B", Action: ActionUpdate, ErrCategory: "transient", ErrMessage: "boom"})

	summaries := agg.Summaries()
	if len(summaries) != 2 {
		t.Fatalf("summaries = %d, want 2", len(summaries))
	}
	a := summaries[0]
	if a.Title != "A" || len(a.Created) != 1 || len(a.Skipped) != 1 {
		t.Errorf("summary A = %+v", a)
	}
	b := summaries[1]
	if b.Title != "B" || len(b.Failures) != 1 {
		t.Errorf("summary B = %+v", b)
	}
	if agg.Failures() != 1 {
		t.Errorf("Failures = %d, want 1", agg.Failures())
	}
}
