package acquisition

import (
	"context"

	"github.com/podforge/podforge-api/internal/providers/extract"
	"github.com/podforge/podforge-api/internal/providers/websearch"
)

// Searcher runs web searches for source material
type Searcher interface {
	Search(ctx context.Context, query string, count int) ([]websearch.Result, error)
}

// Extractor pulls the main text out of a webpage
type Extractor interface {
	Extract(ctx context.Context, url string, mode extract.Mode) (string, error)
}

// Ingestor converts uploaded documents into text
type Ingestor interface {
	Ingest(ctx context.Context, content []byte, kind extract.DocKind) (string, error)
}

// QuerySuggester derives a focused search query from a sample of source
// text, used for supplementary searches. Implementations are typically
// LLM-backed; a nil suggester disables supplementary search.
type QuerySuggester interface {
	SuggestQuery(ctx context.Context, sample string) (string, error)
}
