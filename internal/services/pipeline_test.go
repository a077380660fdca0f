package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/ordalabs/orda-backend/internal/logger"
	"github.com/ordalabs/orda-backend/internal/rag"
	"github.com/ordalabs/orda-backend/internal/types"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

type fakeSource struct {
	fetchFn func(ctx context.Context) ([]rag.IssueInput, error)
}

func (f *fakeSource) FetchFiltered(ctx context.Context) ([]rag.IssueInput, error) {
	if f.fetchFn != nil {
		return f.fetchFn(ctx)
	}
	return nil, nil
}

type fakeIssueRepo struct {
	replaced  [][]*types.NewsIssue
	replaceFn func(issues []*types.NewsIssue) error
	latest    []*types.NewsIssue
}

func (f *fakeIssueRepo) ReplaceLatest(ctx context.Context, tx *gorm.DB, issues []*types.NewsIssue) error {
	f.replaced = append(f.replaced, issues)
	if f.replaceFn != nil {
		return f.replaceFn(issues)
	}
	f.latest = issues
	return nil
}

func (f *fakeIssueRepo) GetLatest(ctx context.Context, tx *gorm.DB) ([]*types.NewsIssue, error) {
	return f.latest, nil
}

func (f *fakeIssueRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.NewsIssue, error) {
	return nil, gorm.ErrRecordNotFound
}

type fakeRunRepo struct {
	created   []*types.PipelineRun
	completed []map[string]any
}

func (f *fakeRunRepo) Create(ctx context.Context, tx *gorm.DB, run *types.PipelineRun) (*types.PipelineRun, error) {
	f.created = append(f.created, run)
	return run, nil
}

func (f *fakeRunRepo) Complete(ctx context.Context, tx *gorm.DB, runID string, status string, issueCount int, avgConfidence float64, errorNote string) error {
	f.completed = append(f.completed, map[string]any{
		"run_id":             runID,
		"status":             status,
		"issue_count":        issueCount,
		"average_confidence": avgConfidence,
		"error_note":         errorNote,
	})
	return nil
}

func (f *fakeRunRepo) GetRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.PipelineRun, error) {
	return f.created, nil
}

type fakeCache struct {
	sets  int
	setFn func(issues []*types.NewsIssue) error
}

func (f *fakeCache) SetLatest(ctx context.Context, issues []*types.NewsIssue) error {
	f.sets++
	if f.setFn != nil {
		return f.setFn(issues)
	}
	return nil
}

func (f *fakeCache) GetLatest(ctx context.Context) ([]*types.NewsIssue, error) { return nil, nil }
func (f *fakeCache) Close() error                                              { return nil }

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i := range out {
		out[i] = []float32{0.5}
	}
	return out, nil
}

type stubSearcher struct{}

func (stubSearcher) Search(ctx context.Context, partition string, vector []float32, topK int) ([]rag.VectorMatch, error) {
	if partition != "industry" {
		return nil, nil
	}
	return []rag.VectorMatch{{
		ID:       "vec-1",
		Score:    0.80,
		Metadata: map[string]any{"name": "반도체", "description": "메모리 반도체"},
	}}, nil
}

type stubGenerator struct{}

func (stubGenerator) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	if schemaName == "verify_reasoning_v1" {
		return map[string]any{
			"is_grounded":       true,
			"supporting_quote":  "본문 인용",
			"unverified_reason": "",
		}, nil
	}
	return map[string]any{
		"candidates": []any{
			map[string]any{"industry": "반도체", "score": float64(8), "reason": "기사에 직접 언급"},
		},
	}, nil
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	return nil, errors.New("embedding api down")
}

func newAnalyzer(t *testing.T, emb rag.Embedder) *rag.Analyzer {
	t.Helper()
	log := testLogger(t)
	return rag.NewAnalyzer(
		log,
		rag.NewRetriever(log, emb, stubSearcher{}),
		rag.NewReranker(log, stubGenerator{}),
		rag.NewVerifier(log, stubGenerator{}),
		0, 0,
	)
}

func TestRunWithIssuesStoresEnrichedBatch(t *testing.T) {
	issues := &fakeIssueRepo{}
	runs := &fakeRunRepo{}
	cache := &fakeCache{}

	svc := NewPipelineService(testLogger(t), &fakeSource{}, newAnalyzer(t, stubEmbedder{}), issues, runs, cache)

	inputs := []rag.IssueInput{
		{IssueNumber: 1, Title: "삼성전자 HBM 수주", Content: "대규모 공급 계약", Rank: 1},
		{IssueNumber: 2, Title: "환율 급등", Content: "원달러 환율 상승", Rank: 2},
	}
	run, err := svc.RunWithIssues(context.Background(), inputs)
	if err != nil {
		t.Fatalf("RunWithIssues: %v", err)
	}

	if run.Status != types.RunStatusSuccess {
		t.Fatalf("run status: want success, got %q", run.Status)
	}
	if run.IssueCount != 2 {
		t.Fatalf("issue count: want 2, got %d", run.IssueCount)
	}
	if run.CompletedAt == nil {
		t.Fatalf("completed_at not set")
	}
	if len(issues.replaced) != 1 || len(issues.replaced[0]) != 2 {
		t.Fatalf("expected one replace of 2 rows, got %+v", issues.replaced)
	}
	if cache.sets != 1 {
		t.Fatalf("cache refresh: want 1 set, got %d", cache.sets)
	}

	row := issues.replaced[0][0]
	if row.Ranking != 1 || row.Title != "삼성전자 HBM 수주" {
		t.Fatalf("first row mismatch: %+v", row)
	}
	if len(row.RelatedIndustries) != 1 {
		t.Fatalf("expected 1 related industry, got %d", len(row.RelatedIndustries))
	}
	ind := row.RelatedIndustries[0]
	// vector 8.0, ai 8 -> final 8.0; grounded so no penalty.
	if ind.FinalScore != 8.0 || !ind.Verified || !ind.IsGrounded {
		t.Fatalf("industry row mismatch: %+v", ind)
	}
	// Both issues score consistency 8.0 (industry partition only).
	if run.AverageConfidence != 8.0 {
		t.Fatalf("average confidence: want 8.0, got %v", run.AverageConfidence)
	}
}

func TestRunWithIssuesRejectsConcurrentRun(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	source := &fakeSource{
		fetchFn: func(ctx context.Context) ([]rag.IssueInput, error) {
			close(started)
			<-release
			return nil, nil
		},
	}

	svc := NewPipelineService(testLogger(t), source, newAnalyzer(t, stubEmbedder{}), &fakeIssueRepo{}, &fakeRunRepo{}, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = svc.Run(context.Background())
	}()

	<-started
	if !svc.IsRunning() {
		t.Fatalf("pipeline should report running")
	}
	if _, err := svc.RunWithIssues(context.Background(), nil); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("want ErrAlreadyRunning, got %v", err)
	}
	close(release)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("first run did not finish")
	}
	if svc.IsRunning() {
		t.Fatalf("pipeline should be idle after the run")
	}
}

func TestRunAsyncReservesSlotBeforeReturning(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	source := &fakeSource{
		fetchFn: func(ctx context.Context) ([]rag.IssueInput, error) {
			close(started)
			<-release
			return nil, nil
		},
	}
	issues := &fakeIssueRepo{}

	svc := NewPipelineService(testLogger(t), source, newAnalyzer(t, stubEmbedder{}), issues, &fakeRunRepo{}, nil)

	if err := svc.RunAsync(context.Background()); err != nil {
		t.Fatalf("RunAsync: %v", err)
	}
	// The slot is held from the moment RunAsync returns, so a second trigger
	// fails here rather than silently skipping in the background.
	if !svc.IsRunning() {
		t.Fatalf("run slot must be held immediately after RunAsync returns")
	}
	if err := svc.RunAsync(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("want ErrAlreadyRunning, got %v", err)
	}
	<-started
	close(release)

	deadline := time.After(5 * time.Second)
	for svc.IsRunning() {
		select {
		case <-deadline:
			t.Fatalf("background run did not finish")
		case <-time.After(10 * time.Millisecond):
		}
	}
	if len(issues.replaced) != 1 {
		t.Fatalf("background run did not store its batch")
	}
}

func TestRunRecordsFetchFailure(t *testing.T) {
	source := &fakeSource{
		fetchFn: func(ctx context.Context) ([]rag.IssueInput, error) {
			return nil, errors.New("crawler unreachable")
		},
	}
	runs := &fakeRunRepo{}

	svc := NewPipelineService(testLogger(t), source, newAnalyzer(t, stubEmbedder{}), &fakeIssueRepo{}, runs, nil)

	run, err := svc.Run(context.Background())
	if err == nil {
		t.Fatalf("expected fetch error")
	}
	if run.Status != types.RunStatusFailed {
		t.Fatalf("run status: want failed, got %q", run.Status)
	}
	if run.ErrorNote == "" {
		t.Fatalf("failed run must carry an error note")
	}
	if len(runs.completed) != 1 {
		t.Fatalf("run record not finalized")
	}
}

func TestRunStoresDegradedIssues(t *testing.T) {
	issues := &fakeIssueRepo{}
	svc := NewPipelineService(testLogger(t), &fakeSource{}, newAnalyzer(t, failingEmbedder{}), issues, &fakeRunRepo{}, nil)

	inputs := []rag.IssueInput{{IssueNumber: 1, Title: "금리 동결", Content: "기준금리 동결"}}
	run, err := svc.RunWithIssues(context.Background(), inputs)
	if err != nil {
		t.Fatalf("RunWithIssues: %v", err)
	}

	// Degraded enrichment still produces a stored row and a successful run.
	if run.Status != types.RunStatusSuccess {
		t.Fatalf("run status: want success, got %q", run.Status)
	}
	if run.AverageConfidence != 0 {
		t.Fatalf("average confidence: want 0, got %v", run.AverageConfidence)
	}
	row := issues.replaced[0][0]
	if len(row.RelatedIndustries) != 0 || len(row.RelatedPastIssues) != 0 {
		t.Fatalf("degraded row must have empty candidate lists: %+v", row)
	}
	if row.Ranking != 1 {
		t.Fatalf("ranking fallback to batch position failed: %d", row.Ranking)
	}
}

func TestRunSurvivesStoreFailure(t *testing.T) {
	issues := &fakeIssueRepo{
		replaceFn: func([]*types.NewsIssue) error { return errors.New("db down") },
	}
	runs := &fakeRunRepo{}
	svc := NewPipelineService(testLogger(t), &fakeSource{}, newAnalyzer(t, stubEmbedder{}), issues, runs, nil)

	run, err := svc.RunWithIssues(context.Background(), []rag.IssueInput{{Title: "이슈", Content: "내용"}})
	if err == nil {
		t.Fatalf("expected store error")
	}
	if run.Status != types.RunStatusFailed {
		t.Fatalf("run status: want failed, got %q", run.Status)
	}
	if svc.IsRunning() {
		t.Fatalf("pipeline must release the run slot after a failure")
	}
}

func TestRunCacheFailureIsBestEffort(t *testing.T) {
	cache := &fakeCache{
		setFn: func([]*types.NewsIssue) error { return errors.New("redis down") },
	}
	svc := NewPipelineService(testLogger(t), &fakeSource{}, newAnalyzer(t, stubEmbedder{}), &fakeIssueRepo{}, &fakeRunRepo{}, cache)

	run, err := svc.RunWithIssues(context.Background(), []rag.IssueInput{{Title: "이슈", Content: "내용"}})
	if err != nil {
		t.Fatalf("cache failure must not fail the run: %v", err)
	}
	if run.Status != types.RunStatusSuccess {
		t.Fatalf("run status: want success, got %q", run.Status)
	}
	if cache.sets != 1 {
		t.Fatalf("cache set should have been attempted")
	}
}

func TestSchedulerDefaultsInterval(t *testing.T) {
	s := NewScheduler(testLogger(t), nil, 0)
	if s.interval != 60*time.Minute {
		t.Fatalf("default interval: want 60m, got %s", s.interval)
	}
	s = NewScheduler(testLogger(t), nil, 15)
	if s.interval != 15*time.Minute {
		t.Fatalf("interval: want 15m, got %s", s.interval)
	}
}
