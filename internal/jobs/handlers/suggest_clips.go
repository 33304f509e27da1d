// Package handlers implements the job types the worker executes.
package handlers

import (
	"context"
	"fmt"

	"github.com/yungbote/sermonclips-backend/internal/jobs"
	"github.com/yungbote/sermonclips-backend/internal/jobs/runtime"
	"github.com/yungbote/sermonclips-backend/internal/pkg/logger"
	"github.com/yungbote/sermonclips-backend/internal/repos"
	"github.com/yungbote/sermonclips-backend/internal/services"
	"github.com/yungbote/sermonclips-backend/internal/types"
)

type SuggestClips struct {
	Log     *logger.Logger
	Service services.SuggestionService
	Sermons repos.SermonRepo
	Policy  jobs.Policy
}

func (h *SuggestClips) Type() string { return jobs.TypeSuggestClips }

func (h *SuggestClips) Run(jc *runtime.Context) error {
	applyOutcome(jc, h.run(jc))
	return nil
}

func (h *SuggestClips) run(jc *runtime.Context) jobs.Outcome {
	sermonID, ok := jc.PayloadInt64("sermon_id")
	if !ok {
		return jobs.Fatal("payload", fmt.Errorf("missing sermon_id"))
	}
	useLLM := jc.PayloadBool("use_llm")

	jc.Progress("suggest", 10, "generating clip suggestions")

	result, err := h.Service.SuggestClips(jc.Ctx, sermonID, useLLM)
	if err != nil {
		out := h.Policy.Classify("suggest", jc.Job.Attempts, err)
		if out.Kind == jobs.OutcomeRetry {
			h.Log.Warn("suggest clips failed, retrying",
				"sermon_id", sermonID, "attempt", jc.Job.Attempts, "delay", out.Delay, "error", err)
			return out
		}
		h.Log.Error("failed to suggest clips", "sermon_id", sermonID, "error", err)
		recordSermonError(jc.Ctx, h.Sermons, sermonID, err)
		return out
	}
	if result.Status == services.StatusDeleted {
		return jobs.Done("done", map[string]any{"sermon_id": sermonID, "status": services.StatusDeleted})
	}

	out := map[string]any{
		"sermon_id":   sermonID,
		"suggestions": result.Suggestions,
		"llm_used":    result.LLMUsed,
	}
	if result.TokenUsage != nil {
		out["token_usage"] = result.TokenUsage
	}
	return jobs.Done("done", out)
}

// applyOutcome persists a handler outcome on the job row.
func applyOutcome(jc *runtime.Context, out jobs.Outcome) {
	switch out.Kind {
	case jobs.OutcomeRetry:
		jc.Requeue(out.Stage, out.Delay, out.Err)
	case jobs.OutcomeFatal:
		jc.Fail(out.Stage, out.Err)
	default:
		jc.Succeed(out.Stage, out.Result)
	}
}

// recordSermonError mirrors the failure onto the sermon row so the owning
// user sees it without inspecting job runs.
func recordSermonError(ctx context.Context, sermons repos.SermonRepo, sermonID int64, cause error) {
	msg := cause.Error()
	if len(msg) > 1000 {
		msg = msg[:1000]
	}
	_ = sermons.UpdateFields(ctx, nil, sermonID, map[string]any{
		"status":        types.SermonStatusError,
		"error_message": msg,
	})
}
