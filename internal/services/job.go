package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/sermonclips-backend/internal/jobs"
	"github.com/yungbote/sermonclips-backend/internal/pkg/logger"
	"github.com/yungbote/sermonclips-backend/internal/repos"
	"github.com/yungbote/sermonclips-backend/internal/types"
)

// JobService creates job_run rows and starts the Temporal workflow that
// drives them. The workflow id is the job id, so double-dispatch is rejected
// by Temporal itself.
type JobService interface {
	EnqueueSuggestClips(ctx context.Context, tx *gorm.DB, sermonID int64, useLLM *bool) (*types.JobRun, error)
	EnqueueGenerateEmbeddings(ctx context.Context, tx *gorm.DB, sermonID int64) (*types.JobRun, error)
	Dispatch(ctx context.Context, jobID uuid.UUID) error
}

type jobService struct {
	db   *gorm.DB
	log  *logger.Logger
	repo repos.JobRunRepo

	temporal  temporalsdkclient.Client
	taskQueue string
}

func NewJobService(
	db *gorm.DB,
	baseLog *logger.Logger,
	repo repos.JobRunRepo,
	tc temporalsdkclient.Client,
	taskQueue string,
) JobService {
	return &jobService{
		db:        db,
		log:       baseLog.With("service", "JobService"),
		repo:      repo,
		temporal:  tc,
		taskQueue: strings.TrimSpace(taskQueue),
	}
}

func (s *jobService) EnqueueSuggestClips(ctx context.Context, tx *gorm.DB, sermonID int64, useLLM *bool) (*types.JobRun, error) {
	payload := map[string]any{"sermon_id": sermonID}
	if useLLM != nil {
		payload["use_llm"] = *useLLM
	}
	return s.enqueue(ctx, tx, jobs.TypeSuggestClips, sermonID, payload)
}

func (s *jobService) EnqueueGenerateEmbeddings(ctx context.Context, tx *gorm.DB, sermonID int64) (*types.JobRun, error) {
	return s.enqueue(ctx, tx, jobs.TypeGenerateEmbeddings, sermonID, map[string]any{"sermon_id": sermonID})
}

func (s *jobService) enqueue(ctx context.Context, tx *gorm.DB, jobType string, sermonID int64, payload map[string]any) (*types.JobRun, error) {
	if jobType == "" {
		return nil, fmt.Errorf("missing job_type")
	}
	if sermonID <= 0 {
		return nil, fmt.Errorf("missing sermon_id")
	}
	if s.temporal == nil {
		return nil, fmt.Errorf("temporal not configured (TEMPORAL_ADDRESS)")
	}
	b, _ := json.Marshal(payload)
	now := time.Now()
	job := &types.JobRun{
		ID:        uuid.New(),
		JobType:   jobType,
		SermonID:  sermonID,
		Status:    "queued",
		Stage:     "queued",
		Message:   "Queued",
		Payload:   datatypes.JSON(b),
		Result:    datatypes.JSON([]byte(`{}`)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, tx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	// Inside a real DB transaction the workflow must not start until the row
	// is visible; callers invoke Dispatch after commit. gorm.DB pointers are
	// frequently cloned (WithContext/Session), so pointer inequality is NOT a
	// reliable transaction detector.
	if isDBTransaction(tx) {
		s.log.Debug("job enqueued inside transaction; awaiting dispatch after commit", "job_id", job.ID, "job_type", job.JobType)
		return job, nil
	}
	if err := s.Dispatch(ctx, job.ID); err != nil {
		return job, err
	}
	return job, nil
}

type txCommitter interface {
	Commit() error
	Rollback() error
}

func isDBTransaction(db *gorm.DB) bool {
	if db == nil || db.Statement == nil || db.Statement.ConnPool == nil {
		return false
	}
	_, ok := db.Statement.ConnPool.(txCommitter)
	return ok
}

func (s *jobService) Dispatch(ctx context.Context, jobID uuid.UUID) error {
	if s == nil || s.temporal == nil {
		return fmt.Errorf("temporal not configured (TEMPORAL_ADDRESS)")
	}
	if jobID == uuid.Nil {
		return fmt.Errorf("missing job id")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	tq := s.taskQueue
	if tq == "" {
		tq = "sermonclips"
	}
	opts := temporalsdkclient.StartWorkflowOptions{
		ID:                    jobID.String(),
		TaskQueue:             tq,
		WorkflowIDReusePolicy: enums.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    30 * time.Second,
			BackoffCoefficient: 1.0,
			MaximumInterval:    30 * time.Second,
			MaximumAttempts:    5,
		},
	}
	_, err := s.temporal.ExecuteWorkflow(ctx, opts, "job_run")
	if err == nil {
		return nil
	}
	if _, ok := err.(*serviceerror.WorkflowExecutionAlreadyStarted); ok {
		return nil
	}

	// Best-effort: mark the job failed if the workflow never started.
	now := time.Now().UTC()
	_, _ = s.repo.UpdateFieldsUnlessStatus(ctx, nil, jobID, nil, map[string]any{
		"status":        "failed",
		"stage":         "dispatch",
		"message":       "",
		"error":         err.Error(),
		"last_error_at": now,
		"locked_at":     nil,
		"updated_at":    now,
	})
	return fmt.Errorf("start temporal workflow: %w", err)
}
