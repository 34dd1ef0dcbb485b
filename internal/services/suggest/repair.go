package suggest

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/kaptinlin/jsonrepair"
	"github.com/pantrychef/sous/internal/metrics"
	"github.com/pantrychef/sous/internal/services/ai"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const repairMaxTokens = 900

// repairJSON recovers an object from a response the extractor gave up on.
// It first runs a deterministic local repair; only if that still does not
// yield an object does it spend one fixer completion at temperature 0. Both
// paths are best-effort: any failure, including a transport error on the
// fixer call, collapses to "no result" and the caller decides what's next.
func (s *Suggester) repairJSON(ctx context.Context, rawText string) (map[string]any, bool) {
	if repaired, err := jsonrepair.JSONRepair(rawText); err == nil {
		var parsed map[string]any
		if err := json.Unmarshal([]byte(repaired), &parsed); err == nil {
			metrics.JSONRepairsTotal.Add(ctx, 1, metric.WithAttributes(
				attribute.String("outcome", "local"),
			))
			return parsed, true
		}
	}

	fixed, err := s.client.Complete(ctx,
		ai.BuildFixerSystemPrompt(),
		ai.BuildFixerUserPrompt(rawText),
		ai.TemperatureRepair,
		repairMaxTokens,
	)
	if err != nil {
		slog.DebugContext(ctx, "JSON fixer call failed", "error", err)
		metrics.JSONRepairsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("outcome", "failed"),
		))
		return nil, false
	}

	parsed, ok := ExtractJSON(fixed)
	outcome := "failed"
	if ok {
		outcome = "model"
	}
	metrics.JSONRepairsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
	return parsed, ok
}
