package script

import "context"

// Generator produces script text from a prompt pair. Implemented by the
// textgen provider client.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error)
}
