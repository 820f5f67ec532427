package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/podforge/podforge-api/api/types"
	"github.com/podforge/podforge-api/internal/database"
	"github.com/podforge/podforge-api/internal/models"
	"github.com/podforge/podforge-api/internal/services/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (*gin.Engine, jobs.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Initialize(":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.AutoMigrate(&models.Job{}))

	jobService := jobs.NewService(jobs.NewRepository(db.DB))
	deps := &types.Dependencies{DB: db, JobService: jobService}

	engine := gin.New()
	RegisterRoutes(engine.Group("/api/v1/generate"), deps)
	return engine, jobService
}

func postJSON(t *testing.T, engine *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	return w
}

func TestPostEnqueuesJob(t *testing.T) {
	engine, jobService := setupRouter(t)

	w := postJSON(t, engine, gin.H{
		"kind":    "topic",
		"payload": "the history of container shipping",
		"style":   gin.H{"language": "en", "target_minutes": 12, "music_style": "calm"},
	})

	require.Equal(t, http.StatusAccepted, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	jobID, _ := response["job_id"].(string)
	assert.NotEmpty(t, jobID)
	assert.Equal(t, "pending", response["status"])
	assert.Equal(t, "queued", response["stage"])

	// The stored job round-trips the full request
	job, err := jobService.GetJob(context.Background(), jobID)
	require.NoError(t, err)
	req, err := job.GenerationRequest()
	require.NoError(t, err)
	assert.Equal(t, models.InputKindTopic, req.Kind)
	assert.Equal(t, 12, req.Style.TargetMinutes)
	assert.Equal(t, "calm", req.Style.MusicStyle)
}

func TestPostValidation(t *testing.T) {
	engine, _ := setupRouter(t)

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing kind", gin.H{"payload": "x"}},
		{"unknown kind", gin.H{"kind": "smoke-signal", "payload": "x"}},
		{"missing payload", gin.H{"kind": "topic"}},
		{"blank payload", gin.H{"kind": "topic", "payload": "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, engine, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
