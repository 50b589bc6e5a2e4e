package job

import (
	"context"
	"errors"
	"time"

	"github.com/surajvast1/Doc-Manager/internal/domain/commonModels"
	"github.com/surajvast1/Doc-Manager/internal/domain/jobModel"
	"github.com/surajvast1/Doc-Manager/internal/metrics"
	"github.com/surajvast1/Doc-Manager/pkg/logger_i"
)

var ErrQueueClosed = errors.New("job queue is not accepting runs")

type Service struct {
	JobChannel        chan jobModel.Job
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	newID             func() string
	logger            *logger_i.Logger
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	NewID             func() string
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
		newID:             cfg.NewID,
		logger:            logger_i.NewLogger("JobService"),
	}
}

// Submit stores a queued process-folder run and hands it to the worker
// pool. The send blocks while the buffer is full so a burst of requests
// cannot pile up unbounded work, but gives up when ctx is done.
func (s *Service) Submit(ctx context.Context, bucket, folder, traceId string) (jobModel.Job, error) {
	job := jobModel.Job{
		Id:          s.newID(),
		TraceId:     traceId,
		JobType:     jobModel.JobTypeProcessFolder,
		JobPayload:  jobModel.JobPayload{Bucket: bucket, Folder: folder},
		CreatedTime: time.Now(),
		Status:      jobModel.JobStatusQueued,
		CurrentStep: commonModels.StageListing,
	}
	log := s.logger.With("traceId", traceId, "JobId", job.Id)

	if err := s.JobStore.SaveJob(ctx, job); err != nil {
		log.Error("Failed to store queued run", "error", err)
		return job, err
	}

	select {
	case s.JobChannel <- job:
	case <-ctx.Done():
		s.JobStore.DeleteJob(context.WithoutCancel(ctx), job.Id)
		return job, errors.Join(ErrQueueClosed, ctx.Err())
	}
	metrics.IncrementJobsInQueue()
	log.Info("Queued run", "bucket", bucket, "folder", folder)

	//every ingestion run asks for a worker; the dispatcher caps the count
	select {
	case s.DispatcherChannel <- true:
		metrics.StartDispatcherSignalCount()
	default:
	}
	return job, nil
}

func (s *Service) Status(ctx context.Context, id string) (jobModel.Job, bool) {
	if id == "" {
		return jobModel.Job{}, false
	}
	return s.JobStore.GetJob(ctx, id)
}
