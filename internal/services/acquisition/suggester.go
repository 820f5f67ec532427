package acquisition

import (
	"context"
	"strings"

	"github.com/podforge/podforge-api/internal/providers/textgen"
)

const suggesterSystemPrompt = "You produce web search queries. " +
	"Given a sample of source text, reply with exactly one concise search query " +
	"that would find complementary background material. Reply with the query only."

// TextgenSuggester derives supplementary search queries from source text
// using the script-generation provider.
type TextgenSuggester struct {
	client *textgen.Client
}

// NewTextgenSuggester creates a query suggester backed by the generation provider
func NewTextgenSuggester(client *textgen.Client) *TextgenSuggester {
	return &TextgenSuggester{client: client}
}

// SuggestQuery returns a single-line search query for the sample
func (s *TextgenSuggester) SuggestQuery(ctx context.Context, sample string) (string, error) {
	out, err := s.client.Generate(ctx, suggesterSystemPrompt, sample, 64, 0.3)
	if err != nil {
		return "", err
	}
	// Providers occasionally wrap the query in quotes or add a trailing line
	query := strings.TrimSpace(out)
	if i := strings.IndexByte(query, '\n'); i >= 0 {
		query = query[:i]
	}
	return strings.Trim(query, `"'`), nil
}
