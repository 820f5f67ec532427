package acquisition

import (
	"context"
	"encoding/base64"
	"log"
	"strings"
	"time"

	"github.com/podforge/podforge-api/internal/models"
	"github.com/podforge/podforge-api/internal/providers/extract"
	"github.com/podforge/podforge-api/internal/providers/websearch"
	"github.com/podforge/podforge-api/internal/services/cache"
	apperrors "github.com/podforge/podforge-api/pkg/errors"
)

const (
	// Searches below this many surviving documents trigger a
	// supplementary query for topic inputs
	minTopicDocuments = 3

	// Sample length fed to the query suggester
	querySampleChars = 1000
)

// Options configures the acquirer
type Options struct {
	SearchResultCount    int
	SupplementaryResults int
	MinExtractChars      int
	ChunkChars           int
}

// Service resolves an input spec into a non-empty ordered collection of
// source documents, or fails with AcquisitionFailed.
type Service struct {
	searcher  Searcher
	extractor Extractor
	ingestor  Ingestor
	suggester QuerySuggester
	pageCache cache.Cache
	pageTTL   time.Duration
	opts      Options
}

// NewService creates a new acquisition service
func NewService(searcher Searcher, extractor Extractor, ingestor Ingestor, suggester QuerySuggester, opts Options) *Service {
	if opts.SearchResultCount <= 0 {
		opts.SearchResultCount = 8
	}
	if opts.SupplementaryResults < 0 {
		opts.SupplementaryResults = 0
	}
	if opts.MinExtractChars <= 0 {
		opts.MinExtractChars = 200
	}
	if opts.ChunkChars <= 0 {
		opts.ChunkChars = 10000
	}

	return &Service{
		searcher:  searcher,
		extractor: extractor,
		ingestor:  ingestor,
		suggester: suggester,
		opts:      opts,
	}
}

// SetPageCache enables memoization of page extraction. The same URL often
// shows up in both the primary and the supplementary result sets.
func (s *Service) SetPageCache(c cache.Cache, ttl time.Duration) {
	s.pageCache = c
	s.pageTTL = ttl
}

// extractPage runs an extraction through the page cache when one is set
func (s *Service) extractPage(ctx context.Context, pageURL string, mode extract.Mode) (string, error) {
	if s.pageCache == nil {
		return s.extractor.Extract(ctx, pageURL, mode)
	}

	key := string(mode) + ":" + pageURL
	if cached, ok := s.pageCache.Get(ctx, key); ok {
		return cached, nil
	}

	text, err := s.extractor.Extract(ctx, pageURL, mode)
	if err != nil {
		return "", err
	}
	if err := s.pageCache.Set(ctx, key, text, s.pageTTL); err != nil {
		log.Printf("[DEBUG] Failed to cache extraction for %s: %v", pageURL, err)
	}
	return text, nil
}

// Acquire resolves the request into source documents. The returned slice
// is never empty on success; primary documents precede supplementary ones.
func (s *Service) Acquire(ctx context.Context, req *models.GenerationRequest) ([]models.SourceDocument, error) {
	switch req.Kind {
	case models.InputKindTopic:
		return s.acquireTopic(ctx, req.Payload)
	case models.InputKindURL:
		return s.acquireURL(ctx, req.Payload)
	case models.InputKindDocument:
		return s.acquireDocument(ctx, req.Payload)
	case models.InputKindText:
		return s.acquireText(ctx, req.Payload)
	default:
		return nil, apperrors.ValidationError("kind", "unsupported input kind")
	}
}

// acquireTopic searches for the topic and extracts each result. Individual
// extraction failures are skipped; the stage only fails when no document
// survives at all.
func (s *Service) acquireTopic(ctx context.Context, topic string) ([]models.SourceDocument, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, apperrors.AcquisitionFailed("topic is empty", nil).Permanent()
	}

	results, err := s.searcher.Search(ctx, topic, s.opts.SearchResultCount)
	if err != nil {
		return nil, apperrors.AcquisitionFailed("topic search failed", err)
	}

	docs := s.extractResults(ctx, results, true)

	// Thin result sets get one bounded round of supplementary search
	if len(docs) < minTopicDocuments && len(docs) > 0 {
		docs = append(docs, s.supplementarySearch(ctx, textSample(docs[0].Text))...)
	}

	if len(docs) == 0 {
		return nil, apperrors.AcquisitionFailed("no search result could be extracted", nil)
	}
	return docs, nil
}

// acquireURL extracts the page statically and falls back to rendered
// extraction when the static pass comes back near-empty.
func (s *Service) acquireURL(ctx context.Context, pageURL string) ([]models.SourceDocument, error) {
	text, err := s.extractPage(ctx, pageURL, extract.ModeStatic)
	if err != nil || len(strings.TrimSpace(text)) < s.opts.MinExtractChars {
		if err != nil {
			log.Printf("[INFO] Static extraction failed for %s, trying rendered: %v", pageURL, err)
		} else {
			log.Printf("[INFO] Static extraction near-empty for %s (%d chars), trying rendered", pageURL, len(text))
		}
		text, err = s.extractPage(ctx, pageURL, extract.ModeRendered)
		if err != nil {
			return nil, apperrors.AcquisitionFailed("extraction failed for url", err)
		}
	}
	if len(strings.TrimSpace(text)) < s.opts.MinExtractChars {
		return nil, apperrors.AcquisitionFailed("extracted text is too short", nil)
	}

	docs := []models.SourceDocument{{
		Origin:     models.OriginFetchedURL,
		Title:      pageURL,
		URL:        pageURL,
		Text:       text,
		Primary:    true,
		Confidence: confidenceFor(len(text)),
		AcquiredAt: time.Now().UTC(),
	}}

	docs = append(docs, s.supplementarySearch(ctx, textSample(text))...)
	return docs, nil
}

// acquireDocument ingests an uploaded file (base64 payload) and chunks it
func (s *Service) acquireDocument(ctx context.Context, payload string) ([]models.SourceDocument, error) {
	content, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, apperrors.AcquisitionFailed("document payload is not valid base64", err).Permanent()
	}

	text, err := s.ingestor.Ingest(ctx, content, extract.DocKindPDF)
	if err != nil {
		return nil, apperrors.AcquisitionFailed("document ingestion failed", err)
	}
	return s.textDocuments(ctx, text, models.OriginUploadedFile)
}

// acquireText ingests raw text directly
func (s *Service) acquireText(ctx context.Context, text string) ([]models.SourceDocument, error) {
	return s.textDocuments(ctx, text, models.OriginUploadedFile)
}

// textDocuments chunks oversized text and appends supplementary search results
func (s *Service) textDocuments(ctx context.Context, text string, origin models.DocumentOrigin) ([]models.SourceDocument, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.AcquisitionFailed("document text is empty", nil).Permanent()
	}

	now := time.Now().UTC()
	var docs []models.SourceDocument
	for i, chunk := range splitIntoChunks(text, s.opts.ChunkChars) {
		docs = append(docs, models.SourceDocument{
			Origin:     origin,
			Title:      chunkTitle(text, i),
			Text:       chunk,
			Primary:    true,
			Confidence: 1.0,
			AcquiredAt: now,
		})
	}

	docs = append(docs, s.supplementarySearch(ctx, textSample(text))...)
	return docs, nil
}

// supplementarySearch derives one query from the sample and extracts its
// results as non-primary documents. Failures here are never fatal.
func (s *Service) supplementarySearch(ctx context.Context, sample string) []models.SourceDocument {
	if s.suggester == nil || s.opts.SupplementaryResults == 0 || sample == "" {
		return nil
	}

	query, err := s.suggester.SuggestQuery(ctx, sample)
	if err != nil || strings.TrimSpace(query) == "" {
		log.Printf("[INFO] Supplementary query suggestion failed: %v", err)
		return nil
	}

	results, err := s.searcher.Search(ctx, query, s.opts.SupplementaryResults)
	if err != nil {
		log.Printf("[INFO] Supplementary search failed for %q: %v", query, err)
		return nil
	}

	return s.extractResults(ctx, results, false)
}

// extractResults extracts each search result, skipping failures. A result
// whose page cannot be extracted but carries a usable snippet degrades to
// the snippet with lowered confidence.
func (s *Service) extractResults(ctx context.Context, results []websearch.Result, primary bool) []models.SourceDocument {
	now := time.Now().UTC()
	var docs []models.SourceDocument
	for _, r := range results {
		text, err := s.extractPage(ctx, r.URL, extract.ModeStatic)
		confidence := confidenceFor(len(text))
		if err != nil || len(strings.TrimSpace(text)) < s.opts.MinExtractChars {
			if len(strings.TrimSpace(r.Snippet)) == 0 {
				log.Printf("[INFO] Skipping unextractable result %s: %v", r.URL, err)
				continue
			}
			text = r.Snippet
			confidence = 0.2
		}
		docs = append(docs, models.SourceDocument{
			Origin:     models.OriginSearchResult,
			Title:      r.Title,
			URL:        r.URL,
			Text:       text,
			Primary:    primary,
			Confidence: confidence,
			AcquiredAt: now,
		})
	}
	return docs
}

// splitIntoChunks cuts text into bounded-length pieces, preferring
// paragraph boundaries and falling back to hard cuts.
func splitIntoChunks(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	for _, para := range strings.Split(text, "\n\n") {
		if current.Len() > 0 && current.Len()+len(para)+2 > limit {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
		// A single paragraph longer than the limit gets hard cuts
		for len(para) > limit {
			chunks = append(chunks, para[:limit])
			para = para[limit:]
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	if strings.TrimSpace(current.String()) != "" {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}
	return chunks
}

func chunkTitle(text string, index int) string {
	preview := strings.TrimSpace(strings.ReplaceAll(textSampleN(text, 60), "\n", " "))
	if index == 0 {
		return preview
	}
	return preview + " (continued)"
}

func textSample(text string) string {
	return textSampleN(text, querySampleChars)
}

func textSampleN(text string, n int) string {
	if len(text) <= n {
		return text
	}
	return text[:n]
}

// confidenceFor scores extraction quality by length alone; richer signals
// belong to the extraction provider.
func confidenceFor(length int) float64 {
	switch {
	case length > 10000:
		return 1.0
	case length > 2000:
		return 0.8
	case length > 500:
		return 0.5
	default:
		return 0.3
	}
}
