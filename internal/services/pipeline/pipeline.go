package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/podforge/podforge-api/internal/models"
)

// StageError marks a pipeline failure with the stage it happened in.
// The driver's caller turns it into the job's terminal failure record.
type StageError struct {
	Stage models.Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// AdvanceFunc is invoked before each stage starts. Returning an error
// aborts the run; the job queue uses it to persist stage transitions.
type AdvanceFunc func(stage models.Stage) error

// Pipeline runs one generation job through the full stage sequence.
// Stages are strictly sequential; only the synthesis coordinator is
// internally concurrent.
type Pipeline struct {
	acquirer  Acquirer
	composer  Composer
	assigner  Assigner
	coord     Coordinator
	assembler Assembler
	publisher Publisher
}

// New creates a pipeline over the six stage implementations
func New(acquirer Acquirer, composer Composer, assigner Assigner, coord Coordinator, assembler Assembler, publisher Publisher) *Pipeline {
	return &Pipeline{
		acquirer:  acquirer,
		composer:  composer,
		assigner:  assigner,
		coord:     coord,
		assembler: assembler,
		publisher: publisher,
	}
}

// Run executes the request end to end and returns the published artifact.
// The first stage failure aborts the run; the returned error is always a
// *StageError naming the failing stage, and no partial artifact escapes.
func (p *Pipeline) Run(ctx context.Context, req *models.GenerationRequest, advance AdvanceFunc) (*models.PodcastArtifact, error) {
	if advance == nil {
		advance = func(models.Stage) error { return nil }
	}

	if err := advance(models.StageAcquiring); err != nil {
		return nil, &StageError{Stage: models.StageAcquiring, Err: err}
	}
	docs, err := p.acquirer.Acquire(ctx, req)
	if err != nil {
		return nil, &StageError{Stage: models.StageAcquiring, Err: err}
	}
	log.Printf("[INFO] Acquired %d source documents", len(docs))

	if err := advance(models.StageComposing); err != nil {
		return nil, &StageError{Stage: models.StageComposing, Err: err}
	}
	turns, err := p.composer.Compose(ctx, subjectFor(req, docs), docs, req.Style)
	if err != nil {
		return nil, &StageError{Stage: models.StageComposing, Err: err}
	}
	log.Printf("[INFO] Composed script with %d turns", len(turns))

	if err := advance(models.StageAssigningVoices); err != nil {
		return nil, &StageError{Stage: models.StageAssigningVoices, Err: err}
	}
	assignment, err := p.assigner.Assign(turns, req.Style.Language)
	if err != nil {
		return nil, &StageError{Stage: models.StageAssigningVoices, Err: err}
	}

	if err := advance(models.StageSynthesizing); err != nil {
		return nil, &StageError{Stage: models.StageSynthesizing, Err: err}
	}
	segments, err := p.coord.Synthesize(ctx, turns, assignment)
	if err != nil {
		return nil, &StageError{Stage: models.StageSynthesizing, Err: err}
	}

	if err := advance(models.StageAssembling); err != nil {
		return nil, &StageError{Stage: models.StageAssembling, Err: err}
	}
	artifact, err := p.assembler.Assemble(segments, req.Style.MusicStyle)
	if err != nil {
		return nil, &StageError{Stage: models.StageAssembling, Err: err}
	}
	artifact.Transcript = transcriptFor(turns)

	if err := advance(models.StagePublishing); err != nil {
		return nil, &StageError{Stage: models.StagePublishing, Err: err}
	}
	if err := p.publisher.Publish(ctx, artifact); err != nil {
		return nil, &StageError{Stage: models.StagePublishing, Err: err}
	}

	if err := advance(models.StageCompleted); err != nil {
		return nil, &StageError{Stage: models.StagePublishing, Err: err}
	}

	log.Printf("[INFO] Generation finished: %d ms of audio at %s", artifact.DurationMs, artifact.AudioURL)
	return artifact, nil
}

// subjectFor derives the composer's subject line from the request
func subjectFor(req *models.GenerationRequest, docs []models.SourceDocument) string {
	if req.Kind == models.InputKindTopic {
		return req.Payload
	}
	if len(docs) > 0 && strings.TrimSpace(docs[0].Title) != "" {
		return docs[0].Title
	}
	return "the provided material"
}

// transcriptFor renders the script as speaker-labeled plain text
func transcriptFor(turns []models.ScriptTurn) string {
	var b strings.Builder
	for _, turn := range turns {
		fmt.Fprintf(&b, "%s: %s\n", turn.Speaker, turn.Text)
	}
	return b.String()
}
