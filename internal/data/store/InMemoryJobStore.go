package store

import (
	"context"
	"sync"

	"github.com/surajvast1/Doc-Manager/internal/domain/jobModel"
	"github.com/surajvast1/Doc-Manager/pkg/logger_i"
)

// InMemoryJobStore backs the run store when Redis is offline. Runs do not
// survive a restart.
type InMemoryJobStore struct {
	jobMutex sync.RWMutex
	jobMap   map[string]jobModel.Job
	logger   *logger_i.Logger
}

func NewInMemoryJobStore() *InMemoryJobStore {
	return &InMemoryJobStore{
		jobMap: make(map[string]jobModel.Job),
		logger: logger_i.NewLogger("InMem JobStore"),
	}
}

func (store *InMemoryJobStore) SaveJob(ctx context.Context, job jobModel.Job) error {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	store.jobMap[job.Id] = job
	store.logger.WithTrace(ctx).Debug("Saved job to store", "jobId", job.Id, "status", job.Status)
	return nil
}

func (store *InMemoryJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	store.jobMutex.RLock()
	defer store.jobMutex.RUnlock()
	result, found := store.jobMap[jobId]
	return result, found
}

func (store *InMemoryJobStore) DeleteJob(ctx context.Context, jobID string) {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	delete(store.jobMap, jobID)
}
