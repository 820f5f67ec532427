package script

import (
	"context"
	"log"
	"strings"

	"github.com/podforge/podforge-api/internal/models"
	apperrors "github.com/podforge/podforge-api/pkg/errors"
)

// Options configures the composer
type Options struct {
	TotalBudgetChars         int
	PrimaryBudgetChars       int
	SupplementaryBudgetChars int
	DefaultTargetMinutes     int
	DefaultLanguage          string
	MaxTokens                int
	Temperature              float64
	RegenRetries             int
}

// Service turns acquired source documents into an ordered dialogue script.
type Service struct {
	generator Generator
	opts      Options
}

// NewService creates a new script composer
func NewService(generator Generator, opts Options) *Service {
	if opts.TotalBudgetChars <= 0 {
		opts.TotalBudgetChars = 60000
	}
	if opts.PrimaryBudgetChars <= 0 {
		opts.PrimaryBudgetChars = 30000
	}
	if opts.SupplementaryBudgetChars <= 0 {
		opts.SupplementaryBudgetChars = 1000
	}
	if opts.DefaultTargetMinutes <= 0 {
		opts.DefaultTargetMinutes = 10
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4096
	}
	if opts.Temperature <= 0 {
		opts.Temperature = 0.7
	}
	if opts.RegenRetries < 0 {
		opts.RegenRetries = 0
	}

	return &Service{generator: generator, opts: opts}
}

// Compose generates and parses the dialogue script. A response that cannot
// be parsed into at least one well-formed turn triggers regeneration with a
// stricter format instruction, up to RegenRetries extra attempts; provider
// failures propagate immediately.
func (s *Service) Compose(ctx context.Context, subject string, docs []models.SourceDocument, style models.StyleDirectives) ([]models.ScriptTurn, error) {
	if len(docs) == 0 {
		return nil, apperrors.ValidationError("documents", "script composition requires at least one source document")
	}

	if strings.TrimSpace(style.Language) == "" {
		style.Language = s.opts.DefaultLanguage
	}

	system := s.systemPrompt(style)
	user := s.userPrompt(subject, docs, style)

	var lastErr error
	for attempt := 0; attempt <= s.opts.RegenRetries; attempt++ {
		prompt := user
		if attempt > 0 {
			prompt = user + strictFormatInstruction
			log.Printf("[INFO] Regenerating script after parse failure (attempt %d/%d)", attempt, s.opts.RegenRetries)
		}

		raw, err := s.generator.Generate(ctx, system, prompt, s.opts.MaxTokens, s.opts.Temperature)
		if err != nil {
			return nil, err
		}

		turns, err := parseScript(raw)
		if err == nil {
			log.Printf("[DEBUG] Parsed script with %d turns", len(turns))
			return turns, nil
		}
		lastErr = err
	}

	return nil, lastErr
}
