package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/podforge/podforge-api/internal/models"
	apperrors "github.com/podforge/podforge-api/pkg/errors"
)

type service struct {
	repo Repository
}

// NewService creates a new jobs service
func NewService(repo Repository) Service {
	return &service{
		repo: repo,
	}
}

func (s *service) EnqueueJob(ctx context.Context, req *models.GenerationRequest) (*models.Job, error) {
	if !req.Kind.Valid() {
		return nil, apperrors.ValidationError("kind", fmt.Sprintf("unsupported input kind %q", req.Kind))
	}

	payload, err := models.PayloadFromGenerationRequest(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	job := &models.Job{
		JobID:   uuid.New().String(),
		Status:  models.JobStatusPending,
		Stage:   models.StageQueued,
		Request: payload,
	}

	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}

	log.Printf("[DEBUG] Enqueued %s generation job %s", req.Kind, job.JobID)

	return job, nil
}

func (s *service) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("getting job: %w", err)
	}
	return job, nil
}

func (s *service) ListJobs(ctx context.Context, status models.JobStatus, limit int) ([]*models.Job, error) {
	return s.repo.GetJobsByStatus(ctx, status, limit)
}

func (s *service) ClaimNextJob(ctx context.Context, workerID string) (*models.Job, error) {
	job, err := s.repo.ClaimNextJob(ctx, workerID)
	if err != nil {
		if errors.Is(err, ErrNoJobsAvailable) {
			return nil, err
		}
		return nil, fmt.Errorf("claiming job: %w", err)
	}

	log.Printf("[DEBUG] Worker %s claimed job %s", workerID, job.JobID)
	return job, nil
}

func (s *service) AdvanceStage(ctx context.Context, jobID string, stage models.Stage) error {
	if err := s.repo.AdvanceStage(ctx, jobID, stage); err != nil {
		return err
	}
	log.Printf("[DEBUG] Job %s advanced to stage %s", jobID, stage)
	return nil
}

func (s *service) CompleteJob(ctx context.Context, jobID string, result models.JobResult) error {
	if err := s.repo.CompleteJob(ctx, jobID, result); err != nil {
		return fmt.Errorf("completing job: %w", err)
	}
	log.Printf("[INFO] Job %s completed", jobID)
	return nil
}

func (s *service) FailJob(ctx context.Context, jobID string, stage models.Stage, jobErr error) error {
	code := string(apperrors.GetCode(jobErr))
	msg := ""
	if jobErr != nil {
		msg = jobErr.Error()
	}

	if err := s.repo.FailJob(ctx, jobID, stage, code, msg); err != nil {
		return fmt.Errorf("failing job: %w", err)
	}
	log.Printf("[ERROR] Job %s failed at stage %s: %s (%s)", jobID, stage, msg, code)
	return nil
}

func (s *service) ReleaseJob(ctx context.Context, jobID string) error {
	if err := s.repo.ReleaseJob(ctx, jobID); err != nil {
		return fmt.Errorf("releasing job: %w", err)
	}
	log.Printf("[INFO] Job %s released back to queue", jobID)
	return nil
}

func (s *service) CleanupOldJobs(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = 7
	}

	olderThan := time.Now().AddDate(0, 0, -retentionDays)
	deleted, err := s.repo.DeleteOldJobs(ctx, olderThan)
	if err != nil {
		return 0, fmt.Errorf("cleaning up old jobs: %w", err)
	}

	if deleted > 0 {
		log.Printf("[INFO] Cleaned up %d jobs older than %d days", deleted, retentionDays)
	}

	return deleted, nil
}
