package llm

import "context"

// Provider defines the narrow text-inference contract the verification core
// depends on. Judge prompts, claim extraction, answer generation, and
// regeneration all go through Complete; nothing above this package knows
// which vendor serves the call.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete generates a completion for the given request
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Embedder is implemented by providers that can produce embedding vectors.
// Callers must type-assert; not every provider supports embeddings.
type Embedder interface {
	// Embed returns one vector per input text, in input order
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// CompletionRequest contains the input for a single inference call
type CompletionRequest struct {
	// System is an optional system prompt
	System string

	// Prompt is the user prompt
	Prompt string

	// Model overrides the configured model for this call (provider-specific)
	Model string

	// MaxTokens limits the response length (provider default when 0)
	MaxTokens int

	// Temperature controls sampling. Judge calls use 0 for determinism;
	// consistency regeneration passes an elevated value.
	Temperature float64
}

// CompletionResponse contains the model's output
type CompletionResponse struct {
	// Text is the generated completion
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// EmbeddingModel selects the embedding model for providers that support it
	EmbeddingModel string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:       "", // Disabled by default
		Model:          "",
		Timeout:        60,
		MaxTokens:      1024,
		EmbeddingModel: "text-embedding-3-small",
	}
}
