package suggest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pantrychef/sous/internal/metrics"
	"github.com/pantrychef/sous/internal/services/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Instruments record into the global (noop) meter provider.
	if err := metrics.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type completionCall struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// fakeClient scripts primary and fixer responses separately. The two call
// kinds are told apart by the system prompt, same as a real transcript
// would show.
type fakeClient struct {
	mu sync.Mutex

	primary []scriptedResponse
	fixer   []scriptedResponse

	primaryCalls []completionCall
	fixerCalls   []completionCall
}

type scriptedResponse struct {
	text string
	err  error
}

func (c *fakeClient) Complete(_ context.Context, system, user string, temperature float64, maxTokens int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	call := completionCall{system, user, temperature, maxTokens}

	var script *[]scriptedResponse
	if system == ai.BuildFixerSystemPrompt() {
		c.fixerCalls = append(c.fixerCalls, call)
		script = &c.fixer
	} else {
		c.primaryCalls = append(c.primaryCalls, call)
		script = &c.primary
	}

	if len(*script) == 0 {
		return "", errors.New("fakeClient: script exhausted")
	}
	resp := (*script)[0]
	if len(*script) > 1 {
		*script = (*script)[1:]
	}
	return resp.text, resp.err
}

type identityUnits struct{ called bool }

func (u *identityUnits) NormalizeUnits(recipes []Recipe, _ string) []Recipe {
	u.called = true
	return recipes
}

type spiceStub struct {
	spices []string
	err    error
}

func (s spiceStub) SpicesForUser(context.Context, string) ([]string, error) {
	return s.spices, s.err
}

type ratingStub struct {
	summary string
	err     error
}

func (r ratingStub) SummarizeForPrompt(context.Context, string) (string, error) {
	return r.summary, r.err
}

func newTestSuggester(client *fakeClient) (*Suggester, *identityUnits) {
	units := &identityUnits{}
	s := New(client, units, spiceStub{}, ratingStub{})
	s.delayFn = func() time.Duration { return 0 }
	return s, units
}

func baseRequest() Request {
	return Request{
		UserID:    "user-1",
		Message:   "something for dinner",
		Inventory: inventoryOf("rice", "tofu", "broccoli"),
	}
}

func recipesJSON(titles ...string) string {
	entries := make([]string, len(titles))
	for i, title := range titles {
		entries[i] = fmt.Sprintf(
			`{"title": %q, "ingredients": [{"name": "rice", "quantity": 100, "unit": "grams"}], "instructions": ["cook"]}`,
			title)
	}
	return fmt.Sprintf(`{"recipes": [%s]}`, strings.Join(entries, ","))
}

func TestSuggestSuccessFirstAttempt(t *testing.T) {
	client := &fakeClient{primary: []scriptedResponse{{text: recipesJSON("Fried Rice")}}}
	s, units := newTestSuggester(client)

	result := s.Suggest(context.Background(), baseRequest())

	require.Empty(t, result.Error)
	require.Len(t, result.Recipes, 1)
	assert.Equal(t, "Fried Rice", result.Recipes[0].Title)
	assert.Equal(t, "user-1", result.UserID)
	assert.Len(t, client.primaryCalls, 1)
	assert.Empty(t, client.fixerCalls)
	assert.True(t, units.called)
	assert.Equal(t, completionMaxTokens, client.primaryCalls[0].MaxTokens)
}

func TestSuggestRetriesThenSucceeds(t *testing.T) {
	client := &fakeClient{primary: []scriptedResponse{
		{err: errors.New("rate limited")},
		{err: errors.New("rate limited")},
		{text: recipesJSON("Third Time")},
	}}
	s, _ := newTestSuggester(client)

	result := s.Suggest(context.Background(), baseRequest())

	require.Empty(t, result.Error)
	assert.Len(t, client.primaryCalls, 3)
	assert.Equal(t, "Third Time", result.Recipes[0].Title)
}

// The attempt budget is exactly four primary calls, no matter how the
// attempts fail.
func TestSuggestAttemptBudget(t *testing.T) {
	client := &fakeClient{primary: []scriptedResponse{
		{err: errors.New("boom")},
	}}
	s, _ := newTestSuggester(client)

	result := s.Suggest(context.Background(), baseRequest())

	assert.Len(t, client.primaryCalls, maxAttempts)
	require.NotEmpty(t, result.Error)
	assert.Equal(t,
		"recipe generation failed after 4 attempts: model call error (boom)",
		result.Error)
	require.NotNil(t, result.Recipes)
	assert.Empty(t, result.Recipes)
}

func TestSuggestExhaustedOnGarbage(t *testing.T) {
	client := &fakeClient{
		primary: []scriptedResponse{{text: "I'm sorry, I cannot help with that request."}},
		fixer:   []scriptedResponse{{text: "still not anything usable, sorry"}},
	}
	s, _ := newTestSuggester(client)

	result := s.Suggest(context.Background(), baseRequest())

	assert.Len(t, client.primaryCalls, maxAttempts)
	assert.Equal(t,
		"recipe generation failed after 4 attempts: invalid JSON returned from model",
		result.Error)
}

func TestSuggestExhaustedOnEmptyRecipes(t *testing.T) {
	client := &fakeClient{primary: []scriptedResponse{{text: `{"recipes": []}`}}}
	s, _ := newTestSuggester(client)

	result := s.Suggest(context.Background(), baseRequest())

	assert.Len(t, client.primaryCalls, maxAttempts)
	assert.Equal(t,
		"recipe generation failed after 4 attempts: no valid recipes returned",
		result.Error)
}

// A broken response recovered by the fixer call counts as a successful
// attempt, not a retry.
func TestSuggestFixerRecovery(t *testing.T) {
	client := &fakeClient{
		primary: []scriptedResponse{{text: "Here's your recipe! Enjoy cooking tonight."}},
		fixer:   []scriptedResponse{{text: recipesJSON("Recovered")}},
	}
	s, _ := newTestSuggester(client)

	result := s.Suggest(context.Background(), baseRequest())

	require.Empty(t, result.Error)
	assert.Equal(t, "Recovered", result.Recipes[0].Title)
	assert.Len(t, client.primaryCalls, 1)
	require.Len(t, client.fixerCalls, 1)

	fixer := client.fixerCalls[0]
	assert.Equal(t, repairMaxTokens, fixer.MaxTokens)
	assert.Equal(t, ai.TemperatureRepair, fixer.Temperature)
	assert.Contains(t, fixer.User, "Here's your recipe!")
}

func TestSuggestNoSafeIngredients(t *testing.T) {
	client := &fakeClient{}
	s, units := newTestSuggester(client)

	req := baseRequest()
	req.Inventory = inventoryOf("chicken", "beef")
	req.Preferences.Dietary = []string{"vegetarian"}

	result := s.Suggest(context.Background(), req)

	assert.Equal(t, "No safe ingredients available.", result.Error)
	require.NotNil(t, result.Recipes)
	assert.Empty(t, result.Recipes)
	assert.Empty(t, client.primaryCalls, "no model call when nothing is safe")
	assert.False(t, units.called)
}

func TestSuggestFiltersBeforePrompting(t *testing.T) {
	client := &fakeClient{primary: []scriptedResponse{{text: recipesJSON("Veg")}}}
	s, _ := newTestSuggester(client)

	req := baseRequest()
	req.Inventory = inventoryOf("chicken", "rice", "tofu")
	req.Preferences.Dietary = []string{"vegetarian"}

	result := s.Suggest(context.Background(), req)

	require.Empty(t, result.Error)
	prompt := client.primaryCalls[0].User
	assert.Contains(t, prompt, "rice")
	assert.Contains(t, prompt, "tofu")
	assert.NotContains(t, prompt, "chicken")
}

func TestSuggestTruncatesToCount(t *testing.T) {
	client := &fakeClient{primary: []scriptedResponse{
		{text: recipesJSON("A", "B", "C", "D", "E")},
	}}
	s, _ := newTestSuggester(client)

	req := baseRequest()
	req.Count = 2
	result := s.Suggest(context.Background(), req)
	require.Len(t, result.Recipes, 2)
	assert.Equal(t, "A", result.Recipes[0].Title)
	assert.Equal(t, "B", result.Recipes[1].Title)
}

func TestSuggestDefaultCount(t *testing.T) {
	client := &fakeClient{primary: []scriptedResponse{
		{text: recipesJSON("A", "B", "C", "D", "E")},
	}}
	s, _ := newTestSuggester(client)

	result := s.Suggest(context.Background(), baseRequest())
	assert.Len(t, result.Recipes, DefaultRecipeCount)
}

func TestSuggestTemperatureByMessage(t *testing.T) {
	tests := []struct {
		message string
		want    float64
	}{
		{"regular dinner please", ai.TemperatureDefault},
		{"surprise me!", ai.TemperatureCreative},
		{"give me something different", ai.TemperatureCreative},
	}

	for _, tt := range tests {
		client := &fakeClient{primary: []scriptedResponse{{text: recipesJSON("R")}}}
		s, _ := newTestSuggester(client)

		req := baseRequest()
		req.Message = tt.message
		s.Suggest(context.Background(), req)

		assert.Equal(t, tt.want, client.primaryCalls[0].Temperature, "message %q", tt.message)
	}
}

func TestSuggestContinuationUsesPreviousTitle(t *testing.T) {
	client := &fakeClient{primary: []scriptedResponse{{text: recipesJSON("Next")}}}
	s, _ := newTestSuggester(client)

	req := baseRequest()
	req.PreviousRecipe = &Recipe{Title: "Mushroom Risotto"}
	result := s.Suggest(context.Background(), req)

	require.Empty(t, result.Error)
	assert.Contains(t, client.primaryCalls[0].User, "Mushroom Risotto")
}

func TestSuggestCollaboratorFailuresDegrade(t *testing.T) {
	client := &fakeClient{primary: []scriptedResponse{{text: recipesJSON("R")}}}
	units := &identityUnits{}
	s := New(client, units,
		spiceStub{err: errors.New("db down")},
		ratingStub{err: errors.New("db down")})
	s.delayFn = func() time.Duration { return 0 }

	result := s.Suggest(context.Background(), baseRequest())

	require.Empty(t, result.Error)
	assert.Contains(t, client.primaryCalls[0].User, "no specific spices available")
}

type mapCache struct {
	mu      sync.Mutex
	entries map[string]any
	gets    int
	sets    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]any)}
}

func (c *mapCache) Get(_ context.Context, key string) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	return c.entries[key], nil
}

func (c *mapCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.entries[key] = value
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func TestSuggestResultCache(t *testing.T) {
	client := &fakeClient{primary: []scriptedResponse{{text: recipesJSON("Cached")}}}
	s, _ := newTestSuggester(client)

	rc := newMapCache()
	s.SetResultCache(rc, time.Minute)

	first := s.Suggest(context.Background(), baseRequest())
	require.Empty(t, first.Error)
	assert.Len(t, client.primaryCalls, 1)
	assert.Equal(t, 1, rc.sets)

	second := s.Suggest(context.Background(), baseRequest())
	require.Empty(t, second.Error)
	assert.Len(t, client.primaryCalls, 1, "second request must be served from cache")
	assert.Equal(t, first.Recipes[0].Title, second.Recipes[0].Title)
}

func TestSuggestContinuationSkipsCache(t *testing.T) {
	client := &fakeClient{primary: []scriptedResponse{{text: recipesJSON("Fresh")}}}
	s, _ := newTestSuggester(client)

	rc := newMapCache()
	s.SetResultCache(rc, time.Minute)

	req := baseRequest()
	req.PreviousRecipe = &Recipe{Title: "Old One"}
	result := s.Suggest(context.Background(), req)

	require.Empty(t, result.Error)
	assert.Equal(t, 0, rc.gets)
	assert.Equal(t, 0, rc.sets)
}
