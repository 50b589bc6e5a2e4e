package vectorDB

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/surajvast1/Doc-Manager/internal/domain/errs"
	"github.com/surajvast1/Doc-Manager/internal/metrics"
	"github.com/surajvast1/Doc-Manager/pkg/logger_i"
	"golang.org/x/sync/singleflight"
)

type EnsureResult int

const (
	AlreadyExists EnsureResult = iota
	Created
)

func (r EnsureResult) String() string {
	if r == Created {
		return "created"
	}
	return "already-exists"
}

var errSchemaMismatch = errors.New("schema mismatch")

// IndexManager creates indexes at most once per (name, field, dims).
// Ensured keys are remembered for the life of the process and concurrent
// callers for the same key share one backend round trip.
type IndexManager struct {
	backend Backend
	ensured sync.Map
	group   singleflight.Group
	logger  *logger_i.Logger
}

func NewIndexManager(backend Backend) *IndexManager {
	return &IndexManager{
		backend: backend,
		logger:  logger_i.NewLogger("index_manager"),
	}
}

func (m *IndexManager) EnsureIndex(ctx context.Context, name, vectorField string, dims int) (EnsureResult, error) {
	schema := Schema{Index: name, VectorField: vectorField, Dimensions: dims}
	if name == "" || vectorField == "" || dims <= 0 {
		return AlreadyExists, &errs.IndexError{Index: name, Op: "ensure", Err: fmt.Errorf("invalid schema %+v", schema)}
	}

	key := fmt.Sprintf("%s|%s|%d", name, vectorField, dims)
	if _, ok := m.ensured.Load(key); ok {
		return AlreadyExists, nil
	}

	// The shared call outlives any single caller's cancellation, and only
	// the caller whose function ran can report Created.
	led := false
	res, err, _ := m.group.Do(key, func() (any, error) {
		led = true
		return m.ensure(context.WithoutCancel(ctx), schema)
	})
	if err != nil {
		return AlreadyExists, err
	}
	m.ensured.Store(key, struct{}{})
	if !led {
		return AlreadyExists, nil
	}
	return res.(EnsureResult), nil
}

func (m *IndexManager) ensure(ctx context.Context, schema Schema) (EnsureResult, error) {
	log := m.logger.WithTrace(ctx).With("index", schema.Index, "backend", m.backend.Name())

	exists, err := m.backend.IndexExists(ctx, schema.Index)
	if err != nil {
		metrics.IndexEnsured("error")
		return AlreadyExists, &errs.IndexError{Index: schema.Index, Op: "exists", Err: err}
	}
	if exists {
		if err := m.checkDimensions(ctx, schema); err != nil {
			metrics.IndexEnsured("mismatch")
			return AlreadyExists, err
		}
		metrics.IndexEnsured("exists")
		return AlreadyExists, nil
	}

	err = m.backend.CreateIndex(ctx, schema)
	switch {
	case errors.Is(err, ErrIndexAlreadyExists):
		log.Info("index created concurrently, treating as existing")
		if err := m.checkDimensions(ctx, schema); err != nil {
			metrics.IndexEnsured("mismatch")
			return AlreadyExists, err
		}
		metrics.IndexEnsured("exists")
		return AlreadyExists, nil
	case err != nil:
		metrics.IndexEnsured("error")
		return AlreadyExists, &errs.IndexError{Index: schema.Index, Op: "create", Err: err}
	}

	log.Info("index created", "vectorField", schema.VectorField, "dims", schema.Dimensions)
	metrics.IndexEnsured("created")
	return Created, nil
}

func (m *IndexManager) checkDimensions(ctx context.Context, schema Schema) error {
	dims, err := m.backend.IndexDimensions(ctx, schema)
	if err != nil {
		return &errs.IndexError{Index: schema.Index, Op: "describe", Err: err}
	}
	if dims != 0 && dims != schema.Dimensions {
		return &errs.IndexError{
			Index: schema.Index,
			Op:    "ensure",
			Err:   fmt.Errorf("%w: index has %d dimensions, want %d", errSchemaMismatch, dims, schema.Dimensions),
		}
	}
	return nil
}
