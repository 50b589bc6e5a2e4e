package jobModel

import (
	"context"
	"time"

	"github.com/surajvast1/Doc-Manager/internal/domain/commonModels"
)

type JobStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	JobTypeProcessFolder JobType = "ProcessFolder"
)

// Job is one asynchronous ingestion run. CurrentStep mirrors the
// pipeline stage reached, so a failed run shows where it stopped.
type Job struct {
	Id          string                     `json:"id"`
	TraceId     string                     `json:"trace_id"`
	JobType     JobType                    `json:"job_type"`
	JobPayload  JobPayload                 `json:"job_payload"`
	Report      *commonModels.IngestReport `json:"report,omitempty"`
	Error       JobError                   `json:"error,omitempty"`
	CreatedTime time.Time                  `json:"created_time"`
	EndTime     time.Time                  `json:"end_time,omitempty"`
	Status      JobStatus                  `json:"status"`
	CurrentStep commonModels.Stage         `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobPayload struct {
	Bucket string `json:"bucket"`
	Folder string `json:"folder"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}
