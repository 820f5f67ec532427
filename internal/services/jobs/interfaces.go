package jobs

import (
	"context"

	"github.com/podforge/podforge-api/internal/models"
)

// Service defines the business logic interface for job operations
type Service interface {
	// Enqueue operations
	EnqueueJob(ctx context.Context, req *models.GenerationRequest) (*models.Job, error)

	// Status and retrieval
	GetJob(ctx context.Context, jobID string) (*models.Job, error)
	ListJobs(ctx context.Context, status models.JobStatus, limit int) ([]*models.Job, error)

	// Worker operations (used by the worker pool)
	ClaimNextJob(ctx context.Context, workerID string) (*models.Job, error)
	AdvanceStage(ctx context.Context, jobID string, stage models.Stage) error
	CompleteJob(ctx context.Context, jobID string, result models.JobResult) error
	FailJob(ctx context.Context, jobID string, stage models.Stage, err error) error
	ReleaseJob(ctx context.Context, jobID string) error

	// Maintenance
	CleanupOldJobs(ctx context.Context, retentionDays int) (int64, error)
}
