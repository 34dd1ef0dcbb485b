package completion

import (
	"github.com/pantrychef/sous/internal/config"
)

// NewProvider creates a new completion provider based on the configuration
// It can optionally wrap the provider in a fallback wrapper if enabled
func NewProvider(cfg config.SuggestionConfig, groqKey, openAIKey string) Provider {
	var primary Provider

	switch cfg.Provider {
	case "openai":
		primary = NewOpenAIProvider(openAIKey, cfg.Model)
	default:
		// Default to groq
		primary = NewGroqProvider(groqKey, cfg.Model)
	}

	if cfg.FallbackEnabled {
		var secondary Provider

		switch cfg.FallbackProvider {
		case "openai":
			secondary = NewOpenAIProvider(openAIKey, cfg.FallbackModel)
		default:
			secondary = NewGroqProvider(groqKey, cfg.FallbackModel)
		}

		return NewFallbackProvider(primary, secondary)
	}

	return primary
}
