package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/surajvast1/Doc-Manager/internal/config"
	"github.com/surajvast1/Doc-Manager/internal/domain/jobModel"
	"github.com/surajvast1/Doc-Manager/internal/job"
	"github.com/surajvast1/Doc-Manager/internal/metrics"
	"github.com/surajvast1/Doc-Manager/internal/rag"
	"github.com/surajvast1/Doc-Manager/pkg/logger_i"
)

// Pool runs queued ingestion jobs. It starts with one worker, adds one per
// dispatcher signal up to MaxWorkerCount and retires idle workers down to
// the minimum.
type Pool struct {
	jobService  *job.Service
	ragService  rag.Service
	stop        chan bool
	wg          *sync.WaitGroup
	workerCount int64
	minWorkers  int64
	maxWorkers  int64
	idleTimeout time.Duration
	logger      *logger_i.Logger
}

func NewPool(jobService *job.Service, ragService rag.Service, stopWorkerChan chan bool, waitGroup *sync.WaitGroup) *Pool {
	return &Pool{
		jobService:  jobService,
		ragService:  ragService,
		stop:        stopWorkerChan,
		wg:          waitGroup,
		minWorkers:  config.MinWorkerCount,
		maxWorkers:  config.MaxWorkerCount,
		idleTimeout: config.IdleWorkerTimeout,
		logger:      logger_i.NewLogger("WorkerPool"),
	}
}

func (p *Pool) Start() {
	p.logger.Info("Initializing worker pool")
	p.createWorker()
	go p.dispatcher()
}

func (p *Pool) WorkerCount() int64 {
	return atomic.LoadInt64(&p.workerCount)
}

func (p *Pool) dispatcher() {
	p.logger.Info("Dispatcher started")
	for {
		select {
		case <-p.jobService.DispatcherChannel:
			if p.WorkerCount() < p.maxWorkers {
				p.logger.Info("Creating new worker", "WorkerCount", p.WorkerCount())
				p.createWorker()
			}
		case <-p.stop:
			return
		}
	}
}

func (p *Pool) createWorker() {
	p.wg.Add(1)
	atomic.AddInt64(&p.workerCount, 1)
	metrics.IncrementActiveWorkerCount()
	go p.worker()
	p.logger.Debug("Created new worker")
}

func (p *Pool) worker() {
	idle := time.NewTimer(p.idleTimeout)
	defer idle.Stop()
	for {
		select {
		case currentJob := <-p.jobService.JobChannel:
			metrics.DecrementJobsInQueue()
			p.executeJob(currentJob)
			idle.Reset(p.idleTimeout)

		case <-p.stop:
			atomic.AddInt64(&p.workerCount, -1)
			p.removeWorker("Stop worker signal received")
			return

		case <-idle.C:
			// a worker only retires while more than the minimum are running
			if p.tryRetire() {
				p.removeWorker("Idle worker timeout")
				return
			}
			idle.Reset(p.idleTimeout)
		}
	}
}

func (p *Pool) tryRetire() bool {
	for {
		current := atomic.LoadInt64(&p.workerCount)
		if current <= p.minWorkers {
			return false
		}
		if atomic.CompareAndSwapInt64(&p.workerCount, current, current-1) {
			return true
		}
	}
}

// removeWorker expects workerCount to be decremented already.
func (p *Pool) removeWorker(reason string) {
	p.wg.Done()
	metrics.DecrementActiveWorkerCount()
	p.logger.Info("Removed worker", "reason", reason, "workerCount", p.WorkerCount())
}

func (p *Pool) executeJob(current jobModel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(current.Status), time.Since(start))
	}()

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, current.TraceId)
	log := p.logger.With("traceId", current.TraceId, "JobId", current.Id)
	log.Debug("Processing job")

	current.Status = jobModel.JobStatusRunning
	p.saveJobState(ctx, current, log)

	current = p.ragService.RunJob(ctx, current)
	current.EndTime = time.Now()
	p.saveJobState(ctx, current, log)
	log.Info("Job finished", "status", current.Status, "step", current.CurrentStep)
}

func (p *Pool) saveJobState(ctx context.Context, current jobModel.Job, log *logger_i.Logger) {
	if err := p.jobService.JobStore.SaveJob(ctx, current); err != nil {
		log.Error("Failed to update run state", "error", err)
	}
}
