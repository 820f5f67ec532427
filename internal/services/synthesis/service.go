package synthesis

import (
	"context"
	"log"
	"time"

	"github.com/podforge/podforge-api/internal/models"
	"github.com/podforge/podforge-api/internal/services/script"
	"github.com/podforge/podforge-api/pkg/audio"
	apperrors "github.com/podforge/podforge-api/pkg/errors"
	"github.com/podforge/podforge-api/pkg/gather"
)

// Synthesizer renders one utterance into WAV audio. Implemented by the
// speech provider client.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}

// Options configures the coordinator
type Options struct {
	Workers        int
	MaxRetries     int
	InitialBackoff time.Duration
	MaxTTSChars    int
}

// Service drives concurrent per-turn speech synthesis. Turns fan out to a
// bounded worker pool; the output is always in turn order regardless of
// provider completion order, and is all-or-nothing per job.
type Service struct {
	synthesizer Synthesizer
	opts        Options
}

// NewService creates a new synthesis coordinator
func NewService(synthesizer Synthesizer, opts Options) *Service {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = 500 * time.Millisecond
	}
	if opts.MaxTTSChars <= 0 {
		opts.MaxTTSChars = 220
	}

	return &Service{synthesizer: synthesizer, opts: opts}
}

// Synthesize renders every turn and returns segments in turn order. A turn
// that exhausts its retries fails the whole stage with the failing turn
// index; partial results are discarded.
func (s *Service) Synthesize(ctx context.Context, turns []models.ScriptTurn, assignment *models.VoiceAssignment) ([]models.AudioSegment, error) {
	if len(turns) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "no turns to synthesize")
	}

	segments, err := gather.Scatter(ctx, len(turns), s.opts.Workers, func(ctx context.Context, i int) (models.AudioSegment, error) {
		turn := turns[i]
		voice, ok := assignment.VoiceFor(turn.Speaker)
		if !ok {
			return models.AudioSegment{}, apperrors.SynthesisFailed(turn.Index,
				apperrors.New(apperrors.ErrCodeInvalidVoice, "no voice assigned for speaker "+turn.Speaker).Permanent())
		}

		clip, err := s.renderTurn(ctx, turn, voice.ID)
		if err != nil {
			return models.AudioSegment{}, apperrors.SynthesisFailed(turn.Index, err)
		}

		return models.AudioSegment{
			Index:      turn.Index,
			Speaker:    turn.Speaker,
			Audio:      audio.EncodeWAV(clip),
			DurationMs: clip.DurationMs(),
			Status:     models.SynthesisSucceeded,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[DEBUG] Synthesized %d segments", len(segments))
	return segments, nil
}

// renderTurn sanitizes the utterance, splits it under the provider's text
// limit, synthesizes each piece and joins the clips back together.
func (s *Service) renderTurn(ctx context.Context, turn models.ScriptTurn, voiceID string) (*audio.Clip, error) {
	text := script.SanitizeForTTS(turn.Text, false)
	pieces := script.SplitForTTS(text, s.opts.MaxTTSChars)
	if len(pieces) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "turn text is empty after sanitizing").Permanent()
	}

	clips := make([]*audio.Clip, 0, len(pieces))
	for _, piece := range pieces {
		data, err := s.synthesizeWithRetry(ctx, piece, voiceID)
		if err != nil {
			return nil, err
		}
		clip, err := audio.DecodeWAV(data)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeSynthesisUnavailable, "provider returned undecodable audio")
		}
		clips = append(clips, clip)
	}

	return audio.Concat(clips...)
}

// synthesizeWithRetry retries transient failures with doubling backoff. A
// permanent text rejection gets one extra attempt with aggressively
// sanitized text before giving up.
func (s *Service) synthesizeWithRetry(ctx context.Context, text, voiceID string) ([]byte, error) {
	var lastErr error
	backoff := s.opts.InitialBackoff

	for attempt := 1; attempt <= s.opts.MaxRetries; attempt++ {
		data, err := s.synthesizer.Synthesize(ctx, text, voiceID)
		if err == nil {
			return data, nil
		}
		lastErr = err

		if !apperrors.IsTransient(err) {
			// One aggressive-sanitize pass in case the provider
			// rejected the text itself
			if cleaned := script.SanitizeForTTS(text, true); cleaned != "" && cleaned != text {
				log.Printf("[INFO] Retrying synthesis with aggressively sanitized text: %v", err)
				if data, err := s.synthesizer.Synthesize(ctx, cleaned, voiceID); err == nil {
					return data, nil
				}
			}
			return nil, lastErr
		}

		if attempt < s.opts.MaxRetries {
			log.Printf("[DEBUG] Transient synthesis failure (attempt %d/%d), backing off %v: %v",
				attempt, s.opts.MaxRetries, backoff, err)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}
	}

	return nil, lastErr
}
