package core

import "context"

// EmbeddingProvider returns one vector per input text, in input order.
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// LLMProvider generates text from a system prompt and an ordered list of prompt parts.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, parts ...string) (string, error)
}
