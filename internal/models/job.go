package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// JobStatus represents the status of a job in the queue
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// Stage represents one step of the generation pipeline. Transitions are
// one-directional; Completed and Failed are terminal.
type Stage string

const (
	StageQueued          Stage = "queued"
	StageAcquiring       Stage = "acquiring"
	StageComposing       Stage = "composing"
	StageAssigningVoices Stage = "assigning_voices"
	StageSynthesizing    Stage = "synthesizing"
	StageAssembling      Stage = "assembling"
	StagePublishing      Stage = "publishing"
	StageCompleted       Stage = "completed"
	StageFailed          Stage = "failed"
)

// stageOrder encodes the forward-only pipeline sequence
var stageOrder = map[Stage]int{
	StageQueued:          0,
	StageAcquiring:       1,
	StageComposing:       2,
	StageAssigningVoices: 3,
	StageSynthesizing:    4,
	StageAssembling:      5,
	StagePublishing:      6,
	StageCompleted:       7,
}

// Terminal reports whether the stage is an absorbing state
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageFailed
}

// CanTransition reports whether moving from s to next is a legal
// transition: one step forward, or a jump to Failed from any
// non-terminal stage.
func (s Stage) CanTransition(next Stage) bool {
	if s.Terminal() {
		return false
	}
	if next == StageFailed {
		return true
	}
	from, okFrom := stageOrder[s]
	to, okTo := stageOrder[next]
	return okFrom && okTo && to == from+1
}

// Job represents one generation request in the queue
type Job struct {
	gorm.Model
	JobID       string     `json:"job_id" gorm:"uniqueIndex;not null"`
	Status      JobStatus  `json:"status" gorm:"default:'pending';index:idx_jobs_status"`
	Stage       Stage      `json:"stage" gorm:"default:'queued'"`
	Request     JobPayload `json:"request" gorm:"type:json"`
	Result      JobResult  `json:"result,omitempty" gorm:"type:json"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	WorkerID    string     `json:"worker_id,omitempty"`

	// Failure detail: the stage that failed and the error classification
	FailedStage  Stage  `json:"failed_stage,omitempty"`
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// JobPayload represents the input data for a job
type JobPayload map[string]interface{}

// Value implements driver.Valuer interface for JobPayload
func (p JobPayload) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner interface for JobPayload
func (p *JobPayload) Scan(value interface{}) error {
	if value == nil {
		*p = make(JobPayload)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, p)
}

// JobResult represents the output data from a completed job
type JobResult map[string]interface{}

// Value implements driver.Valuer interface for JobResult
func (r JobResult) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	return json.Marshal(r)
}

// Scan implements sql.Scanner interface for JobResult
func (r *JobResult) Scan(value interface{}) error {
	if value == nil {
		*r = make(JobResult)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, r)
}

// Helper methods

// CanProcess returns true if the job is ready to be processed
func (j *Job) CanProcess() bool {
	return j.Status == JobStatusPending
}

// IsTerminal returns true if the job is in a terminal state
func (j *Job) IsTerminal() bool {
	return j.Status == JobStatusCompleted ||
		j.Status == JobStatusCancelled ||
		j.Status == JobStatusFailed
}

// GenerationRequest decodes the stored payload back into a typed request
func (j *Job) GenerationRequest() (*GenerationRequest, error) {
	raw, err := json.Marshal(j.Request)
	if err != nil {
		return nil, err
	}
	var req GenerationRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}
	if !req.Kind.Valid() {
		return nil, errors.New("job payload has no valid input kind")
	}
	return &req, nil
}

// PayloadFromGenerationRequest encodes a typed request for storage
func PayloadFromGenerationRequest(req *GenerationRequest) (JobPayload, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var payload JobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}
