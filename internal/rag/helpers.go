package rag

import (
	"context"
	"time"

	"github.com/surajvast1/Doc-Manager/internal/domain/commonModels"
	"github.com/surajvast1/Doc-Manager/internal/domain/errs"
	"github.com/surajvast1/Doc-Manager/internal/domain/jobModel"
	"github.com/surajvast1/Doc-Manager/internal/metrics"
	"github.com/surajvast1/Doc-Manager/pkg/logger_i"
)

func (s *service) jobError(job jobModel.Job, err error, log *logger_i.Logger) jobModel.Job {
	log.Error("job failed", "step", job.CurrentStep, "error", err)

	status, message := errs.HTTPStatus(err)
	job.Error = jobModel.JobError{
		Code:    status,
		Message: message,
		Retry:   errs.Retryable(err),
	}
	job.Status = jobModel.JobStatusError
	return job
}

func (s *service) executeRetrievalStep(ctx context.Context, question string) (commonModels.RetrievalContext, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("retrieval", time.Since(start)) }()
	return s.retriever.Retrieve(ctx, question)
}

func (s *service) executeLLMStep(ctx context.Context, systemContext, question string) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()
	return s.llmProvider.Complete(ctx, systemContext, question)
}
