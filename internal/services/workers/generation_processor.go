package workers

import (
	"context"
	"errors"
	"log"

	"github.com/podforge/podforge-api/internal/models"
	"github.com/podforge/podforge-api/internal/services/jobs"
	"github.com/podforge/podforge-api/internal/services/pipeline"
	apperrors "github.com/podforge/podforge-api/pkg/errors"
)

// GenerationProcessor runs claimed jobs through the generation pipeline
// and records the terminal result on the job row.
type GenerationProcessor struct {
	pipeline   *pipeline.Pipeline
	jobService jobs.Service
}

// NewGenerationProcessor creates a new generation processor
func NewGenerationProcessor(p *pipeline.Pipeline, jobService jobs.Service) *GenerationProcessor {
	return &GenerationProcessor{
		pipeline:   p,
		jobService: jobService,
	}
}

// ProcessJob decodes the stored request, drives it through every stage and
// persists either the artifact references or the failing stage.
func (gp *GenerationProcessor) ProcessJob(ctx context.Context, job *models.Job) error {
	req, err := job.GenerationRequest()
	if err != nil {
		failErr := gp.jobService.FailJob(ctx, job.JobID, models.StageQueued,
			apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "job payload is not a valid generation request"))
		if failErr != nil {
			log.Printf("[ERROR] Could not mark job %s failed: %v", job.JobID, failErr)
		}
		return err
	}

	advance := func(stage models.Stage) error {
		if stage == models.StageCompleted {
			// Completion is recorded together with the result below
			return nil
		}
		return gp.jobService.AdvanceStage(ctx, job.JobID, stage)
	}

	artifact, runErr := gp.pipeline.Run(ctx, req, advance)
	if runErr != nil {
		stage := models.StageQueued
		var stageErr *pipeline.StageError
		if errors.As(runErr, &stageErr) {
			stage = stageErr.Stage
		}
		if failErr := gp.jobService.FailJob(ctx, job.JobID, stage, runErr); failErr != nil {
			log.Printf("[ERROR] Could not mark job %s failed: %v", job.JobID, failErr)
		}
		return runErr
	}

	result := models.JobResult{
		"audio_url":   artifact.AudioURL,
		"duration_ms": artifact.DurationMs,
		"music_track": artifact.MusicTrack,
		"turns":       len(artifact.Timeline),
	}
	if artifact.TextURL != "" {
		result["transcript_url"] = artifact.TextURL
	}

	return gp.jobService.CompleteJob(ctx, job.JobID, result)
}
