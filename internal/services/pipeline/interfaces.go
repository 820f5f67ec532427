package pipeline

import (
	"context"

	"github.com/podforge/podforge-api/internal/models"
)

// Acquirer resolves an input spec into source documents
type Acquirer interface {
	Acquire(ctx context.Context, req *models.GenerationRequest) ([]models.SourceDocument, error)
}

// Composer turns source documents into an ordered dialogue script
type Composer interface {
	Compose(ctx context.Context, subject string, docs []models.SourceDocument, style models.StyleDirectives) ([]models.ScriptTurn, error)
}

// Assigner maps speaker labels to voices
type Assigner interface {
	Assign(turns []models.ScriptTurn, language string) (*models.VoiceAssignment, error)
}

// Coordinator renders every turn into audio segments
type Coordinator interface {
	Synthesize(ctx context.Context, turns []models.ScriptTurn, assignment *models.VoiceAssignment) ([]models.AudioSegment, error)
}

// Assembler mixes ordered segments into the final artifact
type Assembler interface {
	Assemble(segments []models.AudioSegment, musicStyle string) (*models.PodcastArtifact, error)
}

// Publisher persists the artifact to durable storage
type Publisher interface {
	Publish(ctx context.Context, artifact *models.PodcastArtifact) error
}
