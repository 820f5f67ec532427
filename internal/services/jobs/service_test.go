package jobs

import (
	"context"
	"testing"

	"github.com/podforge/podforge-api/internal/database"
	"github.com/podforge/podforge-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) Service {
	t.Helper()

	db, err := database.Initialize(":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.AutoMigrate(&models.Job{}))

	return NewService(NewRepository(db.DB))
}

func topicRequest(payload string) *models.GenerationRequest {
	return &models.GenerationRequest{
		Kind:    models.InputKindTopic,
		Payload: payload,
		Style:   models.StyleDirectives{Language: "en"},
	}
}

func TestEnqueueAndGetJob(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	job, err := svc.EnqueueJob(ctx, topicRequest("deep sea mining"))
	require.NoError(t, err)
	assert.NotEmpty(t, job.JobID)
	assert.Equal(t, models.JobStatusPending, job.Status)
	assert.Equal(t, models.StageQueued, job.Stage)

	loaded, err := svc.GetJob(ctx, job.JobID)
	require.NoError(t, err)

	req, err := loaded.GenerationRequest()
	require.NoError(t, err)
	assert.Equal(t, models.InputKindTopic, req.Kind)
	assert.Equal(t, "deep sea mining", req.Payload)
	assert.Equal(t, "en", req.Style.Language)
}

func TestEnqueueRejectsInvalidKind(t *testing.T) {
	svc := setupService(t)

	_, err := svc.EnqueueJob(context.Background(), &models.GenerationRequest{Kind: "carrier-pigeon"})
	require.Error(t, err)
}

func TestGetJobNotFound(t *testing.T) {
	svc := setupService(t)

	_, err := svc.GetJob(context.Background(), "no-such-job")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestClaimNextJobOrderAndExclusivity(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	first, err := svc.EnqueueJob(ctx, topicRequest("first"))
	require.NoError(t, err)
	_, err = svc.EnqueueJob(ctx, topicRequest("second"))
	require.NoError(t, err)

	claimed, err := svc.ClaimNextJob(ctx, "worker-1")
	require.NoError(t, err)
	assert.Equal(t, first.JobID, claimed.JobID)
	assert.Equal(t, models.JobStatusProcessing, claimed.Status)
	assert.Equal(t, "worker-1", claimed.WorkerID)
	assert.NotNil(t, claimed.StartedAt)

	// Second claim gets the second job, not the one already claimed
	claimed2, err := svc.ClaimNextJob(ctx, "worker-2")
	require.NoError(t, err)
	assert.NotEqual(t, claimed.JobID, claimed2.JobID)

	// Queue is now empty
	_, err = svc.ClaimNextJob(ctx, "worker-3")
	assert.ErrorIs(t, err, ErrNoJobsAvailable)
}

func TestAdvanceStageEnforcesTransitions(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	job, err := svc.EnqueueJob(ctx, topicRequest("topic"))
	require.NoError(t, err)

	require.NoError(t, svc.AdvanceStage(ctx, job.JobID, models.StageAcquiring))
	require.NoError(t, svc.AdvanceStage(ctx, job.JobID, models.StageComposing))

	// Skipping a stage is rejected
	err = svc.AdvanceStage(ctx, job.JobID, models.StagePublishing)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	loaded, err := svc.GetJob(ctx, job.JobID)
	require.NoError(t, err)
	assert.Equal(t, models.StageComposing, loaded.Stage)
}

func TestCompleteJob(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	job, err := svc.EnqueueJob(ctx, topicRequest("topic"))
	require.NoError(t, err)

	result := models.JobResult{"audio_url": "https://cdn.example.com/podcasts/x.wav", "duration_ms": float64(61234)}
	require.NoError(t, svc.CompleteJob(ctx, job.JobID, result))

	loaded, err := svc.GetJob(ctx, job.JobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, loaded.Status)
	assert.Equal(t, models.StageCompleted, loaded.Stage)
	assert.NotNil(t, loaded.CompletedAt)
	assert.Equal(t, "https://cdn.example.com/podcasts/x.wav", loaded.Result["audio_url"])
}

func TestFailJobRecordsStageAndCode(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	job, err := svc.EnqueueJob(ctx, topicRequest("topic"))
	require.NoError(t, err)

	cause := assert.AnError
	require.NoError(t, svc.FailJob(ctx, job.JobID, models.StageSynthesizing, cause))

	loaded, err := svc.GetJob(ctx, job.JobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, loaded.Status)
	assert.Equal(t, models.StageFailed, loaded.Stage)
	assert.Equal(t, models.StageSynthesizing, loaded.FailedStage)
	assert.NotEmpty(t, loaded.ErrorCode)
	assert.Contains(t, loaded.ErrorMessage, cause.Error())
}

func TestReleaseJob(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	job, err := svc.EnqueueJob(ctx, topicRequest("topic"))
	require.NoError(t, err)

	claimed, err := svc.ClaimNextJob(ctx, "worker-1")
	require.NoError(t, err)

	require.NoError(t, svc.ReleaseJob(ctx, claimed.JobID))

	loaded, err := svc.GetJob(ctx, job.JobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, loaded.Status)
	assert.Equal(t, models.StageQueued, loaded.Stage)
	assert.Empty(t, loaded.WorkerID)
}
