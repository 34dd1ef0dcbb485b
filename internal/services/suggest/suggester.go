package suggest

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/pantrychef/sous/internal/cache"
	"github.com/pantrychef/sous/internal/metrics"
	"github.com/pantrychef/sous/internal/services/ai"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

// Retry policy. Fixed constants, not call-time configurable.
const (
	maxAttempts         = 4
	retryDelayMin       = 600 * time.Millisecond
	retryDelayMax       = 1400 * time.Millisecond
	completionMaxTokens = 1100
)

// DefaultRecipeCount is used when the request does not ask for a count.
const DefaultRecipeCount = 3

// errNoSafeIngredients is the exact message surfaced when dietary filtering
// empties the inventory.
const errNoSafeIngredients = "No safe ingredients available."

// Last-error messages recorded by the attempt loop.
const (
	errInvalidJSON    = "invalid JSON returned from model"
	errNoValidRecipes = "no valid recipes returned"
)

// CompletionClient is the completion service contract the pipeline consumes.
// Implementations must be safe for concurrent reuse and carry no retry logic
// of their own.
type CompletionClient interface {
	Complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error)
}

// SpiceSource provides the user's available spices for the prompt.
type SpiceSource interface {
	SpicesForUser(ctx context.Context, userID string) ([]string, error)
}

// RatingSummarizer renders the user's rating history into prompt text.
type RatingSummarizer interface {
	SummarizeForPrompt(ctx context.Context, userID string) (string, error)
}

// UnitNormalizer post-processes quantities and units on successful results.
// It must preserve recipe count, titles and instructions.
type UnitNormalizer interface {
	NormalizeUnits(recipes []Recipe, userID string) []Recipe
}

// Suggester drives the generation round trip: filter, prompt, complete,
// extract, repair, normalize, retry.
type Suggester struct {
	client  CompletionClient
	units   UnitNormalizer
	spices  SpiceSource
	ratings RatingSummarizer

	resultCache cache.Cache
	cacheTTL    time.Duration

	// delayFn is swapped out in tests to avoid real sleeps.
	delayFn func() time.Duration
}

// New creates a Suggester with the given collaborators.
func New(client CompletionClient, units UnitNormalizer, spices SpiceSource, ratings RatingSummarizer) *Suggester {
	return &Suggester{
		client:  client,
		units:   units,
		spices:  spices,
		ratings: ratings,
		delayFn: jitterDelay,
	}
}

// SetResultCache enables best-effort caching of successful results.
func (s *Suggester) SetResultCache(c cache.Cache, ttl time.Duration) {
	s.resultCache = c
	s.cacheTTL = ttl
}

// jitterDelay picks a uniform random delay in the retry window.
func jitterDelay() time.Duration {
	return retryDelayMin + time.Duration(rand.Int63n(int64(retryDelayMax-retryDelayMin)))
}

// Suggest runs the full pipeline for one request. Pipeline failures never
// surface as Go errors: the result carries an error string and an empty
// recipe list instead.
func (s *Suggester) Suggest(ctx context.Context, req Request) Result {
	start := time.Now()
	status := "exhausted"
	defer func() {
		metrics.SuggestionDuration.Record(ctx, time.Since(start).Seconds())
		metrics.SuggestionsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("status", status),
		))
	}()

	count := req.Count
	if count <= 0 {
		count = DefaultRecipeCount
	}

	dietary := normalizeDietary(req.Preferences.Dietary)

	safe := FilterInventory(req.Inventory, dietary)
	if len(safe) == 0 {
		status = "no_safe_ingredients"
		return Result{Error: errNoSafeIngredients, Recipes: []Recipe{}}
	}

	cacheKey := ""
	if s.resultCache != nil && req.PreviousRecipe == nil {
		cacheKey = resultCacheKey(req, dietary, count)
		if cached, ok := s.lookupCache(ctx, cacheKey); ok {
			status = "cache_hit"
			return cached
		}
	}

	params := s.promptParams(ctx, req, safe, dietary, count)
	system := ai.BuildSystemPrompt()
	temperature := ai.Temperature(req.Message)

	var lastErr string
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		slog.InfoContext(ctx, "Requesting recipe suggestions",
			"attempt", attempt,
			"user_id", req.UserID,
			"temperature", temperature)

		raw, err := s.client.Complete(ctx, system, ai.BuildUserPrompt(params), temperature, completionMaxTokens)
		if err != nil {
			lastErr = fmt.Sprintf("model call error (%v)", err)
			s.recordAttempt(ctx, "model_call_error")
			if !s.backoff(ctx, attempt) {
				break
			}
			continue
		}

		parsed, ok := ExtractJSON(raw)
		if !ok {
			slog.WarnContext(ctx, "Response was not parseable JSON, attempting repair",
				"user_id", req.UserID, "attempt", attempt)
			parsed, ok = s.repairJSON(ctx, raw)
		}
		if !ok {
			lastErr = errInvalidJSON
			s.recordAttempt(ctx, "invalid_json")
			if !s.backoff(ctx, attempt) {
				break
			}
			continue
		}

		recipes := NormalizeRecipes(parsed)
		if len(recipes) == 0 {
			lastErr = errNoValidRecipes
			s.recordAttempt(ctx, "no_valid_recipes")
			if !s.backoff(ctx, attempt) {
				break
			}
			continue
		}

		if len(recipes) > count {
			recipes = recipes[:count]
		}
		recipes = s.units.NormalizeUnits(recipes, req.UserID)

		s.recordAttempt(ctx, "success")
		status = "success"

		result := Result{UserID: req.UserID, Recipes: recipes}
		if cacheKey != "" {
			s.storeCache(ctx, cacheKey, result)
		}
		return result
	}

	slog.ErrorContext(ctx, "Recipe suggestion exhausted all attempts",
		"user_id", req.UserID, "last_error", lastErr)

	return Result{
		Error:   fmt.Sprintf("recipe generation failed after %d attempts: %s", maxAttempts, lastErr),
		Recipes: []Recipe{},
	}
}

// promptParams assembles the attempt-invariant prompt context. Collaborator
// failures degrade to empty sections rather than aborting the request.
func (s *Suggester) promptParams(ctx context.Context, req Request, safe []InventoryItem, dietary []string, count int) ai.UserPromptParams {
	params := ai.UserPromptParams{
		Message:         req.Message,
		Inventory:       renderInventory(safe),
		Preferences:     preferencesSummary(dietary, req.Preferences.Allergies),
		RestrictionNote: ai.BuildRestrictionNote(dietary),
		Count:           count,
	}

	if req.PreviousRecipe != nil {
		params.PreviousTitle = req.PreviousRecipe.Title
		if params.PreviousTitle == "" {
			params.PreviousTitle = "Unnamed"
		}
	}

	// Spices and ratings come from independent tables; fetch them
	// concurrently. Either failing degrades to an empty section.
	var (
		spices  []string
		summary string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		spices, err = s.spices.SpicesForUser(gctx, req.UserID)
		if err != nil {
			slog.WarnContext(gctx, "Failed to load spices, continuing without", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		summary, err = s.ratings.SummarizeForPrompt(gctx, req.UserID)
		if err != nil {
			slog.WarnContext(gctx, "Failed to summarize ratings, continuing without", "error", err)
		}
		return nil
	})
	g.Wait()

	if len(spices) > 0 {
		params.Spices = strings.Join(spices, ", ")
	} else {
		params.Spices = "no specific spices available"
	}
	params.RatingSummary = summary

	return params
}

// backoff sleeps a jittered delay between attempts. Returns false when the
// budget is spent.
func (s *Suggester) backoff(ctx context.Context, attempt int) bool {
	if attempt >= maxAttempts {
		return false
	}
	select {
	case <-time.After(s.delayFn()):
	case <-ctx.Done():
	}
	return true
}

func (s *Suggester) recordAttempt(ctx context.Context, outcome string) {
	metrics.SuggestionAttemptsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

func normalizeDietary(dietary []string) []string {
	out := make([]string, 0, len(dietary))
	for _, d := range dietary {
		if tag := ai.NormalizeDietTag(d); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// renderInventory joins the filtered items into the human-readable list the
// prompt expects.
func renderInventory(items []InventoryItem) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.String()
	}
	return strings.Join(parts, ", ")
}

func preferencesSummary(dietary, allergies []string) string {
	var parts []string
	if len(dietary) > 0 {
		parts = append(parts, "dietary restrictions: "+strings.Join(dietary, ", "))
	}
	if len(allergies) > 0 {
		parts = append(parts, "allergies: "+strings.Join(allergies, ", "))
	}
	if len(parts) == 0 {
		return "no special preferences"
	}
	return strings.Join(parts, "; ")
}

// resultCacheKey hashes the request identity fields. Continuation requests
// are never cached, so the previous recipe is not part of the key.
func resultCacheKey(req Request, dietary []string, count int) string {
	payload, err := json.Marshal(struct {
		UserID    string          `json:"user_id"`
		Message   string          `json:"message"`
		Inventory []InventoryItem `json:"inventory"`
		Dietary   []string        `json:"dietary"`
		Allergies []string        `json:"allergies"`
		Count     int             `json:"count"`
	}{req.UserID, req.Message, req.Inventory, dietary, req.Preferences.Allergies, count})
	if err != nil {
		return ""
	}
	return fmt.Sprintf("suggestion:%x", sha256.Sum256(payload))
}

func (s *Suggester) lookupCache(ctx context.Context, key string) (Result, bool) {
	raw, err := s.resultCache.Get(ctx, key)
	if err != nil || raw == nil {
		return Result{}, false
	}

	var data []byte
	switch v := raw.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return Result{}, false
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		slog.WarnContext(ctx, "Failed to decode cached suggestion", "error", err)
		return Result{}, false
	}
	return result, true
}

func (s *Suggester) storeCache(ctx context.Context, key string, result Result) {
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.resultCache.Set(ctx, key, data, s.cacheTTL); err != nil {
		slog.WarnContext(ctx, "Failed to cache suggestion result", "error", err)
	}
}
