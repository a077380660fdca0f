package app

import (
	"context"
	"fmt"

	"github.com/ordalabs/orda-backend/internal/logger"
	"github.com/ordalabs/orda-backend/internal/rag"
	"github.com/ordalabs/orda-backend/internal/services"
)

type Services struct {
	Analyzer  *rag.Analyzer
	Pipeline  *services.PipelineService
	Scheduler *services.Scheduler
	News      *services.NewsService
	Vectors   *services.VectorService
}

func wireServices(log *logger.Logger, cfg Config, c Clients, r Repos) Services {
	log.Info("Wiring services...")

	analyzer := rag.NewAnalyzer(
		log,
		rag.NewRetriever(log, c.OpenAI, resolveVectorSearcher(c)),
		rag.NewReranker(log, c.OpenAI),
		rag.NewVerifier(log, c.Verifier),
		cfg.RetrieveTopK,
		cfg.VerifyTopN,
	)

	var source services.IssueSource = unconfiguredSource{}
	if c.Feed != nil {
		source = c.Feed
	}

	pipeline := services.NewPipelineService(log, source, analyzer, r.Issue, r.PipelineRun, c.Cache)
	scheduler := services.NewScheduler(log, pipeline, cfg.ScheduleMinutes)
	news := services.NewNewsService(log, r.Issue, c.Cache)
	vectors := services.NewVectorService(log, c.OpenAI, c.VectorStore)

	return Services{
		Analyzer:  analyzer,
		Pipeline:  pipeline,
		Scheduler: scheduler,
		News:      news,
		Vectors:   vectors,
	}
}

type unconfiguredSource struct{}

func (unconfiguredSource) FetchFiltered(ctx context.Context) ([]rag.IssueInput, error) {
	return nil, fmt.Errorf("issue feed not configured (set ISSUE_FEED_URL)")
}
