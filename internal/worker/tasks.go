package worker

import (
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/pantrychef/sous/internal/services/suggest"
)

// Task type constants
const (
	TypeSuggestRecipes = "suggest:recipes"
	TypeCleanupJobs    = "cleanup:jobs"
)

// SuggestRecipesPayload is the payload for recipe suggestion tasks
type SuggestRecipesPayload struct {
	JobID   string          `json:"job_id"`
	Request suggest.Request `json:"request"`
}

// NewSuggestRecipesTask creates a new recipe suggestion task
func NewSuggestRecipesTask(payload SuggestRecipesPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeSuggestRecipes, data), nil
}

// NewCleanupJobsTask creates a new cleanup task
func NewCleanupJobsTask() *asynq.Task {
	return asynq.NewTask(TypeCleanupJobs, nil)
}
