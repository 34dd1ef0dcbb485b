package metrics

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	meter = otel.Meter("pantrychef/business")

	// Suggestion pipeline metrics
	SuggestionsTotal        metric.Int64Counter
	SuggestionDuration      metric.Float64Histogram
	SuggestionAttemptsTotal metric.Int64Counter
	JSONRepairsTotal        metric.Int64Counter

	// External API metrics
	ExternalAPICallsTotal metric.Int64Counter
	ExternalAPIDuration   metric.Float64Histogram

	// Provider fallback metrics
	ProviderFallbackTotal metric.Int64Counter
)

func Init() error {
	var err error

	// Suggestion metrics
	SuggestionsTotal, err = meter.Int64Counter(
		"suggestion.requests.total",
		metric.WithDescription("Total number of recipe suggestion requests"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	SuggestionDuration, err = meter.Float64Histogram(
		"suggestion.duration",
		metric.WithDescription("Duration of the full suggestion round trip"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2, 5, 10, 30, 60),
	)
	if err != nil {
		return err
	}

	SuggestionAttemptsTotal, err = meter.Int64Counter(
		"suggestion.attempts.total",
		metric.WithDescription("Total number of generation attempts, by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	JSONRepairsTotal, err = meter.Int64Counter(
		"suggestion.json_repairs.total",
		metric.WithDescription("Total number of JSON repair runs, by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	// External API metrics
	ExternalAPICallsTotal, err = meter.Int64Counter(
		"external.api.calls.total",
		metric.WithDescription("Total number of external API calls"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	ExternalAPIDuration, err = meter.Float64Histogram(
		"external.api.duration",
		metric.WithDescription("Duration of external API calls"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2, 5, 10, 30),
	)
	if err != nil {
		return err
	}

	// Provider fallback metrics
	ProviderFallbackTotal, err = meter.Int64Counter(
		"provider.fallback.total",
		metric.WithDescription("Total number of provider fallback events"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	return nil
}
