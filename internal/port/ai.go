package port

import "context"

// ChatOptions tune a single chat completion call.
type ChatOptions struct {
	// Temperature controls sampling randomness. Zero means the provider's
	// default; translation uses a low value, answer synthesis a moderate one.
	Temperature float64
}

// AIProvider abstracts the AI/LLM backend for embeddings and chat completions.
// Implementations can target Ollama, OpenAI, or any compatible API.
type AIProvider interface {
	// ModelName returns the identifier of the chat model being used.
	ModelName() string

	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Chat sends a prompt with optional context chunks and returns the LLM
	// response. A credential rejection by the backend is reported as
	// ErrInvalidCredentials.
	Chat(ctx context.Context, systemPrompt string, userPrompt string, contextChunks []string, opts ChatOptions) (string, error)
}
