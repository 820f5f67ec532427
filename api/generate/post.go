package generate

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/podforge/podforge-api/api/types"
	"github.com/podforge/podforge-api/internal/models"
)

// Request is the body of a generation request
type Request struct {
	Kind    string `json:"kind" binding:"required"`
	Payload string `json:"payload" binding:"required"`
	Style   Style  `json:"style"`
}

// Style carries the optional style directives
type Style struct {
	Language      string `json:"language"`
	TargetMinutes int    `json:"target_minutes"`
	Tone          string `json:"tone"`
	MusicStyle    string `json:"music_style"`
}

// Post enqueues a new generation job
func Post(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}

		kind := models.InputKind(strings.ToLower(strings.TrimSpace(req.Kind)))
		if !kind.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be one of: topic, url, document, text"})
			return
		}

		if strings.TrimSpace(req.Payload) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "payload must not be empty"})
			return
		}

		job, err := deps.JobService.EnqueueJob(c.Request.Context(), &models.GenerationRequest{
			Kind:    kind,
			Payload: req.Payload,
			Style: models.StyleDirectives{
				Language:      req.Style.Language,
				TargetMinutes: req.Style.TargetMinutes,
				Tone:          req.Style.Tone,
				MusicStyle:    req.Style.MusicStyle,
			},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue job"})
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"job_id": job.JobID,
			"status": job.Status,
			"stage":  job.Stage,
		})
	}
}
