package jobs

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/podforge/podforge-api/api/types"
	"github.com/podforge/podforge-api/internal/models"
	jobsService "github.com/podforge/podforge-api/internal/services/jobs"
)

// Get returns the status of one generation job, including the artifact
// references once the job has completed and the failure detail when it
// has failed.
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID := c.Param("id")

		job, err := deps.JobService.GetJob(c.Request.Context(), jobID)
		if err != nil {
			if errors.Is(err, jobsService.ErrJobNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job"})
			return
		}

		response := gin.H{
			"job_id":     job.JobID,
			"status":     job.Status,
			"stage":      job.Stage,
			"created_at": job.CreatedAt,
		}

		if job.Status == models.JobStatusCompleted {
			response["result"] = job.Result
		}
		if job.Status == models.JobStatusFailed {
			response["failed_stage"] = job.FailedStage
			response["error_code"] = job.ErrorCode
			response["error_message"] = job.ErrorMessage
		}

		c.JSON(http.StatusOK, response)
	}
}
