package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/pantrychef/sous/internal/services/suggest"
	"github.com/pantrychef/sous/internal/store"
)

// JobStore is the persistence surface the processor needs.
type JobStore interface {
	UpdateSuggestionJobStatus(ctx context.Context, id, status string) error
	CompleteSuggestionJob(ctx context.Context, id string, result []byte) error
	FailSuggestionJob(ctx context.Context, id, errMsg string) error
	DeleteOldSuggestionJobs(ctx context.Context) error
}

// Suggester runs the generation pipeline for one request.
type Suggester interface {
	Suggest(ctx context.Context, req suggest.Request) suggest.Result
}

type SuggestionProcessor struct {
	jobs      JobStore
	suggester Suggester
	metrics   *WorkerMetrics
}

func NewSuggestionProcessor(jobs JobStore, suggester Suggester, metrics *WorkerMetrics) *SuggestionProcessor {
	return &SuggestionProcessor{
		jobs:      jobs,
		suggester: suggester,
		metrics:   metrics,
	}
}

// HandleSuggestRecipes runs the suggestion pipeline for one queued job.
// Pipeline failures are terminal: the pipeline already retried internally,
// so the job is marked failed instead of being requeued.
func (p *SuggestionProcessor) HandleSuggestRecipes(ctx context.Context, t *asynq.Task) error {
	var payload SuggestRecipesPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	jobID := payload.JobID
	slog.Info("Processing suggestion job", "job_id", jobID, "user_id", payload.Request.UserID)

	if err := p.jobs.UpdateSuggestionJobStatus(ctx, jobID, store.JobStatusGenerating); err != nil {
		slog.Error("Failed to mark job generating", "job_id", jobID, "error", err)
	}

	start := time.Now()
	result := p.suggester.Suggest(ctx, payload.Request)
	duration := time.Since(start).Seconds()

	if result.Error != "" {
		p.metrics.RecordJob(ctx, TypeSuggestRecipes, "failed", duration)
		slog.Error("Suggestion job failed", "job_id", jobID, "error", result.Error)

		if err := p.jobs.FailSuggestionJob(ctx, jobID, result.Error); err != nil {
			return fmt.Errorf("failed to persist job failure: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		p.metrics.RecordJob(ctx, TypeSuggestRecipes, "failed", duration)
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := p.jobs.CompleteSuggestionJob(ctx, jobID, data); err != nil {
		p.metrics.RecordJob(ctx, TypeSuggestRecipes, "failed", duration)
		return fmt.Errorf("failed to persist job result: %w", err)
	}

	p.metrics.RecordJob(ctx, TypeSuggestRecipes, "completed", duration)
	slog.Info("Suggestion job completed", "job_id", jobID, "recipes", len(result.Recipes))

	return nil
}

// HandleCleanupJobs prunes finished jobs past the retention window.
func (p *SuggestionProcessor) HandleCleanupJobs(ctx context.Context, t *asynq.Task) error {
	slog.Info("Running cleanup job")
	return p.jobs.DeleteOldSuggestionJobs(ctx)
}
