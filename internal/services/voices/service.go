package voices

import (
	"log"

	"github.com/podforge/podforge-api/internal/models"
	apperrors "github.com/podforge/podforge-api/pkg/errors"
)

// Service maps speaker labels to concrete voice identities.
type Service struct {
	pool []models.VoiceIdentity
}

// NewService creates a new voice assigner over the configured pool
func NewService(pool []models.VoiceIdentity) *Service {
	return &Service{pool: pool}
}

// Assign maps each distinct speaker label to a voice. The i-th label by
// first appearance gets the i-th voice from the pool, cycling when there
// are more speakers than voices, so the mapping is deterministic and
// stable for the lifetime of the job.
func (s *Service) Assign(turns []models.ScriptTurn, language string) (*models.VoiceAssignment, error) {
	pool := s.poolFor(language)
	if len(pool) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeInsufficientVoicePool, "no voices configured").Permanent()
	}

	assignment := &models.VoiceAssignment{Voices: make(map[string]models.VoiceIdentity)}
	next := 0
	for _, turn := range turns {
		if _, ok := assignment.Voices[turn.Speaker]; ok {
			continue
		}
		voice := pool[next%len(pool)]
		assignment.Voices[turn.Speaker] = voice
		log.Printf("[DEBUG] Assigned voice %s (%s) to speaker %q", voice.ID, voice.Name, turn.Speaker)
		next++
	}

	return assignment, nil
}

// poolFor filters the pool to voices matching the requested language.
// Voices without a language tag are usable for any language; when nothing
// matches, the full pool is the fallback rather than failing the job.
func (s *Service) poolFor(language string) []models.VoiceIdentity {
	if language == "" {
		return s.pool
	}
	var matched []models.VoiceIdentity
	for _, v := range s.pool {
		if v.Language == "" || v.Language == language {
			matched = append(matched, v)
		}
	}
	if len(matched) == 0 {
		return s.pool
	}
	return matched
}
