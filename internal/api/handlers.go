package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/pantrychef/sous/internal/config"
	apperrors "github.com/pantrychef/sous/internal/errors"
	"github.com/pantrychef/sous/internal/middleware"
	"github.com/pantrychef/sous/internal/services/suggest"
	"github.com/pantrychef/sous/internal/store"
	"github.com/pantrychef/sous/internal/validation"
	"github.com/pantrychef/sous/internal/worker"
)

// JobStore is the persistence surface the handlers need.
type JobStore interface {
	CreateSuggestionJob(ctx context.Context, id, userID string, request []byte) error
	GetSuggestionJob(ctx context.Context, id string) (*store.SuggestionJob, error)
	ListSuggestionJobsByUser(ctx context.Context, userID string, limit int) ([]store.SuggestionJob, error)
}

// Suggester runs the generation pipeline synchronously.
type Suggester interface {
	Suggest(ctx context.Context, req suggest.Request) suggest.Result
}

// TaskEnqueuer enqueues background tasks. *asynq.Client satisfies it.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type Server struct {
	cfg         *config.Config
	jobs        JobStore
	suggester   Suggester
	asynqClient TaskEnqueuer
}

func NewServer(cfg *config.Config, jobs JobStore, suggester Suggester, asynqClient TaskEnqueuer) *Server {
	return &Server{
		cfg:         cfg,
		jobs:        jobs,
		suggester:   suggester,
		asynqClient: asynqClient,
	}
}

func writeAppError(w http.ResponseWriter, appErr *apperrors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	json.NewEncoder(w).Encode(appErr)
}

// decodeSuggestionRequest parses and validates the request body. The user id
// always comes from the token, never from the body.
func decodeSuggestionRequest(r *http.Request, userID string) (suggest.Request, *apperrors.AppError) {
	var req suggest.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, apperrors.NewValidationError(
			"invalid request body",
			"INVALID_BODY",
			"Send a JSON object with message and inventory fields.",
		)
	}
	req.UserID = userID

	if appErr := validation.ValidateSuggestionRequest(&req); appErr != nil {
		return req, appErr
	}
	return req, nil
}

// HandleSuggest runs the pipeline inline and returns the result. Pipeline
// failures come back as 200 with an error field; the request itself
// succeeded, the generation did not.
func (s *Server) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	req, appErr := decodeSuggestionRequest(r, userID)
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}

	result := s.suggester.Suggest(r.Context(), req)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

type SuggestAsyncResponse struct {
	JobID string `json:"job_id"`
}

// HandleSuggestAsync persists a job and queues it for the worker.
func (s *Server) HandleSuggestAsync(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	req, appErr := decodeSuggestionRequest(r, userID)
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}

	requestData, err := json.Marshal(req)
	if err != nil {
		http.Error(w, "Failed to encode request", http.StatusInternalServerError)
		return
	}

	jobID := uuid.New().String()
	if err := s.jobs.CreateSuggestionJob(r.Context(), jobID, userID, requestData); err != nil {
		http.Error(w, "Failed to create suggestion job", http.StatusInternalServerError)
		return
	}

	task, err := worker.NewSuggestRecipesTask(worker.SuggestRecipesPayload{
		JobID:   jobID,
		Request: req,
	})
	if err != nil {
		http.Error(w, "Failed to create task", http.StatusInternalServerError)
		return
	}

	if _, err := s.asynqClient.Enqueue(task); err != nil {
		http.Error(w, "Failed to enqueue task", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(SuggestAsyncResponse{JobID: jobID})
}

type JobStatusResponse struct {
	ID        string          `json:"id"`
	Status    string          `json:"status"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

func jobStatusResponse(job *store.SuggestionJob) JobStatusResponse {
	return JobStatusResponse{
		ID:        job.ID,
		Status:    job.Status,
		Result:    job.Result,
		Error:     job.Error,
		CreatedAt: job.CreatedAt.Format(time.RFC3339),
		UpdatedAt: job.UpdatedAt.Format(time.RFC3339),
	}
}

// HandleSuggestionStatus returns one job, owner only.
func (s *Server) HandleSuggestionStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	jobID := r.URL.Query().Get("job_id")
	if jobID == "" {
		http.Error(w, "job_id is required", http.StatusBadRequest)
		return
	}

	job, err := s.jobs.GetSuggestionJob(r.Context(), jobID)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to fetch job", http.StatusInternalServerError)
		return
	}

	if job.UserID != userID {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(jobStatusResponse(job))
}

type SuggestionHistoryResponse struct {
	Jobs []JobStatusResponse `json:"jobs"`
}

const historyLimit = 20

// HandleSuggestionHistory returns the caller's recent jobs.
func (s *Server) HandleSuggestionHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	jobs, err := s.jobs.ListSuggestionJobsByUser(r.Context(), userID, historyLimit)
	if err != nil {
		http.Error(w, "Failed to fetch jobs", http.StatusInternalServerError)
		return
	}

	response := SuggestionHistoryResponse{
		Jobs: make([]JobStatusResponse, len(jobs)),
	}
	for i := range jobs {
		response.Jobs[i] = jobStatusResponse(&jobs[i])
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
