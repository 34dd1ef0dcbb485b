package completion

import "context"

// ProviderType represents the type of completion provider
type ProviderType string

const (
	ProviderGroq   ProviderType = "groq"
	ProviderOpenAI ProviderType = "openai"
)

// Provider defines the interface for chat completion providers. One call is
// one completion; retry policy lives with the caller.
type Provider interface {
	Complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error)
}
