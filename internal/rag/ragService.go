package rag

import (
	"context"
	"time"

	"github.com/surajvast1/Doc-Manager/internal/config"
	"github.com/surajvast1/Doc-Manager/internal/domain/commonModels"
	"github.com/surajvast1/Doc-Manager/internal/domain/errs"
	"github.com/surajvast1/Doc-Manager/internal/domain/jobModel"
	"github.com/surajvast1/Doc-Manager/internal/metrics"
	"github.com/surajvast1/Doc-Manager/internal/rag/llm"
	"github.com/surajvast1/Doc-Manager/pkg/logger_i"
)

/*
Service is the only thing the HTTP handlers, the worker pool, the MCP
tools and the CLI talk to. The private struct holds the pipeline, the
retriever and the completion provider so callers never reach them
directly, and tests swap them for mocks through NewService.
*/
type Service interface {
	ProcessFolder(ctx context.Context, bucket, folder string) (commonModels.IngestReport, error)
	Search(ctx context.Context, question string) (commonModels.RetrievalContext, error)
	Answer(ctx context.Context, question string) (Answer, error)
	RunJob(ctx context.Context, job jobModel.Job) jobModel.Job
}

// Ingester is satisfied by *ingest.Pipeline.
type Ingester interface {
	RunAs(ctx context.Context, runID, bucket, folder string) (commonModels.IngestReport, error)
}

// ContextRetriever is satisfied by *retrieve.Retriever.
type ContextRetriever interface {
	Retrieve(ctx context.Context, query string) (commonModels.RetrievalContext, error)
}

type Answer struct {
	Answer    string   `json:"answer"`
	Sources   []string `json:"sources"`
	NoContext bool     `json:"no_context"`
}

type service struct {
	ingester    Ingester
	retriever   ContextRetriever
	llmProvider llm.Provider
	newRunID    func() string
	logger      *logger_i.Logger
}

func NewService(ingester Ingester, retriever ContextRetriever, provider llm.Provider, newRunID func() string) Service {
	return &service{
		ingester:    ingester,
		retriever:   retriever,
		llmProvider: provider,
		newRunID:    newRunID,
		logger:      logger_i.NewLogger("RAG Service"),
	}
}

func (s *service) ProcessFolder(ctx context.Context, bucket, folder string) (commonModels.IngestReport, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("process_folder", time.Since(start)) }()
	return s.ingester.RunAs(ctx, s.newRunID(), bucket, folder)
}

func (s *service) Search(ctx context.Context, question string) (commonModels.RetrievalContext, error) {
	return s.retriever.Retrieve(ctx, question)
}

// Answer retrieves context for question and asks the completion provider.
// With nothing retrieved the fixed no-context message is returned and the
// provider is not called.
func (s *service) Answer(ctx context.Context, question string) (Answer, error) {
	log := s.logger.WithTrace(ctx)

	rc, err := s.executeRetrievalStep(ctx, question)
	if err != nil {
		log.Error("retrieval failed", "error", err)
		return Answer{}, err
	}
	if rc.Empty {
		log.Info("no context found")
		return Answer{Answer: config.NoContextMessage, Sources: []string{}, NoContext: true}, nil
	}

	text, err := s.executeLLMStep(ctx, rc.Text, question)
	if err != nil {
		log.Error("completion failed", "error", err)
		return Answer{}, err
	}
	return Answer{Answer: text, Sources: rc.Sources}, nil
}

// RunJob executes an asynchronous process-folder job and returns it with
// its report, final status and the stage it reached.
func (s *service) RunJob(ctx context.Context, job jobModel.Job) jobModel.Job {
	log := s.logger.WithTrace(ctx).With("JobId", job.Id)

	runCtx, cancel := context.WithTimeout(ctx, config.JobExecutionTimeout)
	defer cancel()

	report, err := s.ingester.RunAs(runCtx, job.Id, job.JobPayload.Bucket, job.JobPayload.Folder)
	job.Report = &report
	job.CurrentStep = report.Stage
	if err != nil {
		return s.jobError(job, err, log)
	}
	if report.FilesSeen == 0 {
		return s.jobError(job, errs.ErrNoFiles, log)
	}

	log.Info("job finished", "written", report.RecordsWritten, "skipped", len(report.FilesSkipped))
	job.Status = jobModel.JobStatusComplete
	return job
}
