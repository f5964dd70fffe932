package llm

import "context"

// Provider generates free text from a system prompt and user input.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes a single-turn generation.
type Request struct {
	System      string
	Input       string
	MaxTokens   int
	Temperature float64
}

type Response struct {
	Text  string
	Model string
	// StopReason is normalized to "end", "max_tokens" or "error".
	StopReason string
}
