package handlers

import (
	"fmt"

	"github.com/yungbote/sermonclips-backend/internal/jobs"
	"github.com/yungbote/sermonclips-backend/internal/jobs/runtime"
	"github.com/yungbote/sermonclips-backend/internal/pkg/logger"
	"github.com/yungbote/sermonclips-backend/internal/repos"
	"github.com/yungbote/sermonclips-backend/internal/services"
)

type GenerateEmbeddings struct {
	Log     *logger.Logger
	Service services.EmbeddingService
	Sermons repos.SermonRepo
	Policy  jobs.Policy
}

func (h *GenerateEmbeddings) Type() string { return jobs.TypeGenerateEmbeddings }

func (h *GenerateEmbeddings) Run(jc *runtime.Context) error {
	applyOutcome(jc, h.run(jc))
	return nil
}

func (h *GenerateEmbeddings) run(jc *runtime.Context) jobs.Outcome {
	sermonID, ok := jc.PayloadInt64("sermon_id")
	if !ok {
		return jobs.Fatal("payload", fmt.Errorf("missing sermon_id"))
	}

	jc.Progress("embed", 10, "embedding transcript segments")

	result, err := h.Service.GenerateEmbeddings(jc.Ctx, sermonID)
	if err != nil {
		out := h.Policy.Classify("embed", jc.Job.Attempts, err)
		if out.Kind == jobs.OutcomeRetry {
			h.Log.Warn("generate embeddings failed, retrying",
				"sermon_id", sermonID, "attempt", jc.Job.Attempts, "delay", out.Delay, "error", err)
			return out
		}
		h.Log.Error("failed to generate embeddings", "sermon_id", sermonID, "error", err)
		recordSermonError(jc.Ctx, h.Sermons, sermonID, err)
		return out
	}
	if result.Status == services.StatusDeleted {
		return jobs.Done("done", map[string]any{"sermon_id": sermonID, "status": services.StatusDeleted})
	}
	return jobs.Done("done", map[string]any{"sermon_id": sermonID, "segments": result.Segments})
}
