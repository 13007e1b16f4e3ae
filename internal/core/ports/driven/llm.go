package driven

import "context"

// LLMService provides text completion for answer generation and
// LLM-judged reranking.
//
// Implementations may include:
//   - OpenAI (GPT models)
//   - Anthropic (Claude models)
//   - Ollama (local models)
type LLMService interface {
	// Complete produces a text completion for the prompt. Every call is
	// time-bounded by the adapter's configured timeout; a timeout surfaces
	// as a provider failure and is not retried here.
	Complete(ctx context.Context, prompt string, opts CompleteOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// CompleteOptions configures text completion behaviour.
type CompleteOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
