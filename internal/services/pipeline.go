package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ordalabs/orda-backend/internal/clients/redis"
	"github.com/ordalabs/orda-backend/internal/logger"
	"github.com/ordalabs/orda-backend/internal/rag"
	"github.com/ordalabs/orda-backend/internal/repos"
	"github.com/ordalabs/orda-backend/internal/types"
)

// ErrAlreadyRunning is returned when a run is requested while another run
// holds the pipeline.
var ErrAlreadyRunning = errors.New("pipeline run already in progress")

// IssueSource supplies the filtered issue batch a run enriches. The crawler
// and filter live behind this boundary.
type IssueSource interface {
	FetchFiltered(ctx context.Context) ([]rag.IssueInput, error)
}

// PipelineService owns the end-to-end enrichment run: fetch issues, enrich
// each one, replace the stored batch, refresh the cache, and record the run.
// At most one run executes at a time.
type PipelineService struct {
	log      *logger.Logger
	source   IssueSource
	analyzer *rag.Analyzer
	issues   repos.IssueRepo
	runs     repos.PipelineRunRepo
	cache    redis.IssueCache

	running atomic.Bool
}

func NewPipelineService(
	log *logger.Logger,
	source IssueSource,
	analyzer *rag.Analyzer,
	issues repos.IssueRepo,
	runs repos.PipelineRunRepo,
	cache redis.IssueCache,
) *PipelineService {
	return &PipelineService{
		log:      log.With("service", "PipelineService"),
		source:   source,
		analyzer: analyzer,
		issues:   issues,
		runs:     runs,
		cache:    cache,
	}
}

// Run fetches the filtered issue batch from the source and enriches it.
func (s *PipelineService) Run(ctx context.Context) (*types.PipelineRun, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}
	defer s.running.Store(false)

	return s.fetchAndExecute(ctx)
}

// RunAsync reserves the run slot before returning and executes the run in the
// background. A nil return guarantees the caller's run actually started; a
// trigger that loses the slot race gets ErrAlreadyRunning here, not a silent
// background skip.
func (s *PipelineService) RunAsync(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	go func() {
		defer s.running.Store(false)
		run, err := s.fetchAndExecute(ctx)
		if err != nil {
			s.log.Error("Background pipeline run failed", "error", err.Error())
			return
		}
		s.log.Info("Background pipeline run completed", "run_id", run.RunID, "issues", run.IssueCount)
	}()
	return nil
}

// RunWithIssues enriches a caller-provided batch, bypassing the source.
func (s *PipelineService) RunWithIssues(ctx context.Context, inputs []rag.IssueInput) (*types.PipelineRun, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}
	defer s.running.Store(false)

	return s.execute(ctx, inputs)
}

// IsRunning reports whether a run currently holds the pipeline.
func (s *PipelineService) IsRunning() bool {
	return s.running.Load()
}

// RecentRuns lists the most recent run records, newest first.
func (s *PipelineService) RecentRuns(ctx context.Context, limit int) ([]*types.PipelineRun, error) {
	return s.runs.GetRecent(ctx, nil, limit)
}

// fetchAndExecute assumes the caller holds the run slot.
func (s *PipelineService) fetchAndExecute(ctx context.Context) (*types.PipelineRun, error) {
	inputs, err := s.source.FetchFiltered(ctx)
	if err != nil {
		run := s.startRun(ctx)
		s.finishRun(ctx, run, types.RunStatusFailed, 0, 0, fmt.Sprintf("issue fetch failed: %v", err))
		return run, fmt.Errorf("fetch filtered issues: %w", err)
	}
	return s.execute(ctx, inputs)
}

func (s *PipelineService) execute(ctx context.Context, inputs []rag.IssueInput) (*types.PipelineRun, error) {
	run := s.startRun(ctx)
	s.log.Info("Pipeline run started", "run_id", run.RunID, "issues", len(inputs))

	results := s.analyzer.AnalyzeBatch(ctx, inputs)

	rows := make([]*types.NewsIssue, 0, len(results))
	for i, res := range results {
		rows = append(rows, issueRow(res, i+1))
	}

	if err := s.issues.ReplaceLatest(ctx, nil, rows); err != nil {
		s.log.Error("Failed to store enriched issues", "run_id", run.RunID, "error", err.Error())
		s.finishRun(ctx, run, types.RunStatusFailed, len(rows), 0, fmt.Sprintf("store issues: %v", err))
		return run, fmt.Errorf("replace latest issues: %w", err)
	}

	s.refreshCache(ctx, run.RunID, rows)

	avg := averageConfidence(results)
	s.finishRun(ctx, run, types.RunStatusSuccess, len(rows), avg, "")
	s.log.Info("Pipeline run finished", "run_id", run.RunID, "issues", len(rows), "average_confidence", avg)
	return run, nil
}

func (s *PipelineService) startRun(ctx context.Context) *types.PipelineRun {
	run := &types.PipelineRun{
		RunID:     uuid.NewString(),
		Status:    types.RunStatusRunning,
		StartedAt: time.Now(),
	}
	if _, err := s.runs.Create(ctx, nil, run); err != nil {
		// The run proceeds even when its record cannot be written.
		s.log.Error("Failed to record pipeline run", "run_id", run.RunID, "error", err.Error())
	}
	return run
}

func (s *PipelineService) finishRun(ctx context.Context, run *types.PipelineRun, status string, issueCount int, avgConfidence float64, errorNote string) {
	run.Status = status
	run.IssueCount = issueCount
	run.AverageConfidence = avgConfidence
	run.ErrorNote = errorNote
	now := time.Now()
	run.CompletedAt = &now

	if err := s.runs.Complete(ctx, nil, run.RunID, status, issueCount, avgConfidence, errorNote); err != nil {
		s.log.Error("Failed to finalize pipeline run record", "run_id", run.RunID, "error", err.Error())
	}
}

func (s *PipelineService) refreshCache(ctx context.Context, runID string, rows []*types.NewsIssue) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetLatest(ctx, rows); err != nil {
		s.log.Warn("Issue cache refresh failed", "run_id", runID, "error", err.Error())
	}
}

// issueRow flattens one enrichment result into its storable form. Rank from
// the input wins when set; otherwise batch position is used.
func issueRow(res rag.Result, position int) *types.NewsIssue {
	ranking := res.Input.Rank
	if ranking <= 0 {
		ranking = position
	}

	row := &types.NewsIssue{
		IssueNumber:         res.Input.IssueNumber,
		Title:               res.Input.Title,
		Content:             res.Input.Content,
		Category:            res.Input.Category,
		ExtractedAt:         res.Input.ExtractedAt,
		StockRelevanceScore: res.Input.StockRelevanceScore,
		Ranking:             ranking,
		ConsistencyScore:    res.Confidence.ConsistencyScore,
		PeakRelevanceScore:  res.Confidence.PeakRelevanceScore,
		ErrorNote:           res.ErrNote,
		RelatedIndustries:   make([]types.RelatedIndustry, 0, len(res.Industries)),
		RelatedPastIssues:   make([]types.RelatedPastIssue, 0, len(res.PastIssues)),
	}

	for _, c := range res.Industries {
		ind := types.RelatedIndustry{
			Name:        c.Name,
			Description: c.Description,
			VectorScore: c.VectorScore,
			AIScore:     c.AIScore,
			AIReason:    c.AIReason,
			FinalScore:  c.FinalScore,
		}
		if c.Verification != nil {
			ind.Verified = true
			ind.IsGrounded = c.Verification.IsGrounded
			ind.SupportingQuote = c.Verification.SupportingQuote
			ind.UnverifiedReason = c.Verification.UnverifiedReason
		}
		row.RelatedIndustries = append(row.RelatedIndustries, ind)
	}

	for _, c := range res.PastIssues {
		past := types.RelatedPastIssue{
			Name:        c.Name,
			Description: c.Description,
			Period:      c.Period,
			VectorScore: c.VectorScore,
			AIScore:     c.AIScore,
			AIReason:    c.AIReason,
			FinalScore:  c.FinalScore,
		}
		if c.Verification != nil {
			past.Verified = true
			past.IsGrounded = c.Verification.IsGrounded
			past.SupportingQuote = c.Verification.SupportingQuote
			past.UnverifiedReason = c.Verification.UnverifiedReason
		}
		row.RelatedPastIssues = append(row.RelatedPastIssues, past)
	}

	return row
}

// averageConfidence is the batch-level mean of per-issue consistency scores.
func averageConfidence(results []rag.Result) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, res := range results {
		sum += res.Confidence.ConsistencyScore
	}
	return math.Round(sum/float64(len(results))*100) / 100
}
