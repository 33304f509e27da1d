package app

import (
	temporalsdkclient "go.temporal.io/sdk/client"
	"gorm.io/gorm"

	"github.com/yungbote/sermonclips-backend/internal/clients/deepseek"
	"github.com/yungbote/sermonclips-backend/internal/pkg/logger"
	"github.com/yungbote/sermonclips-backend/internal/services"
	"github.com/yungbote/sermonclips-backend/internal/temporalx"
)

type Services struct {
	Suggestion services.SuggestionService
	Embedding  services.EmbeddingService
	Jobs       services.JobService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, tc temporalsdkclient.Client) Services {
	log.Info("Wiring services...")

	llm := deepseek.NewClient(log)

	// The embedding endpoint is optional; without it the suggest pipeline runs
	// on heuristics alone and the generate_embeddings job refuses to start.
	var embedder services.EmbeddingProvider
	if cfg.EmbeddingsBaseURL != "" {
		provider, err := services.NewHTTPEmbeddingProvider(log)
		if err != nil {
			log.Warn("embedding provider unavailable; semantic scoring disabled", "error", err)
		} else {
			embedder = provider
		}
	}

	txr := services.NewTxRunner(db)
	suggestion := services.NewSuggestionService(
		log, txr,
		reposet.Sermon, reposet.TranscriptSegment, reposet.TranscriptEmbedding, reposet.Clip,
		llm, embedder,
	)
	embedding := services.NewEmbeddingService(
		log,
		reposet.Sermon, reposet.TranscriptSegment, reposet.TranscriptEmbedding,
		embedder,
	)

	var jobsvc services.JobService
	if tc != nil {
		jobsvc = services.NewJobService(db, log, reposet.JobRun, tc, temporalx.LoadConfig().TaskQueue)
	}

	return Services{
		Suggestion: suggestion,
		Embedding:  embedding,
		Jobs:       jobsvc,
	}
}
