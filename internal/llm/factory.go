package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/abhisek/quizcraft/internal/store"
)

// NewProvider creates a Provider from configuration.
// It returns the provider wrapped with retry and logging middleware.
// eventRepo may be nil, in which case only log output is produced.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, logger zerolog.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// Wrap with middleware: caller → timeout → retry → logging → base
	logged := WithLogging(base, eventRepo, logger)
	retried := WithRetry(logged, cfg.Retry)

	return withTimeout(retried, cfg.Timeout), nil
}

// NewEmbedder creates an Embedder from configuration, wrapped with retry.
func NewEmbedder(ctx context.Context, cfg Config) (Embedder, error) {
	var base Embedder
	var err error

	switch cfg.EmbeddingProvider {
	case "openai":
		base, err = NewOpenAIEmbedder(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiEmbedder(ctx, cfg.Gemini)
	case "mock":
		return &MockEmbedder{}, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %q", cfg.EmbeddingProvider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s embedder: %w", cfg.EmbeddingProvider, err)
	}

	return withEmbedderTimeout(WithEmbedderRetry(base, cfg.Retry), cfg.Timeout), nil
}
