package vectorDB

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/surajvast1/Doc-Manager/internal/domain/commonModels"
	"github.com/surajvast1/Doc-Manager/internal/metrics"
	"github.com/surajvast1/Doc-Manager/pkg/logger_i"
)

type BulkConfig struct {
	BatchSize      int
	MaxAttempts    int
	InitialBackoff time.Duration
}

func DefaultBulkConfig() BulkConfig {
	return BulkConfig{BatchSize: 500, MaxAttempts: 3, InitialBackoff: 200 * time.Millisecond}
}

// Outcome is the result for one record. Err is nil on success.
type Outcome struct {
	ID       string
	Source   string
	Sequence int
	Err      error
}

func (o Outcome) OK() bool { return o.Err == nil }

type BulkIndexer struct {
	backend Backend
	schema  Schema
	cfg     BulkConfig
	logger  *logger_i.Logger
}

func NewBulkIndexer(backend Backend, schema Schema, cfg BulkConfig) *BulkIndexer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBulkConfig().BatchSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = DefaultBulkConfig().InitialBackoff
	}
	return &BulkIndexer{
		backend: backend,
		schema:  schema,
		cfg:     cfg,
		logger:  logger_i.NewLogger("bulk_indexer"),
	}
}

// BulkWrite validates every record, sends the valid ones in batches and
// returns one outcome per input record, in input order. A bad record never
// fails its neighbours.
func (b *BulkIndexer) BulkWrite(ctx context.Context, records []commonModels.IndexRecord) []Outcome {
	if len(records) == 0 {
		return nil
	}
	log := b.logger.WithTrace(ctx).With("index", b.schema.Index)

	outcomes := make([]Outcome, len(records))
	valid := make([]int, 0, len(records))
	for i, r := range records {
		outcomes[i] = Outcome{ID: r.ID, Source: r.Source(), Sequence: r.Sequence}
		if err := b.validate(r); err != nil {
			outcomes[i].Err = err
			continue
		}
		valid = append(valid, i)
	}

	for start := 0; start < len(valid); start += b.cfg.BatchSize {
		end := min(start+b.cfg.BatchSize, len(valid))
		idx := valid[start:end]

		batch := make([]commonModels.IndexRecord, len(idx))
		for j, i := range idx {
			batch[j] = records[i]
		}

		callStart := time.Now()
		itemErrs, err := b.sendWithRetry(ctx, batch)
		metrics.CaptureExecutionMetrics("bulk_write_"+b.backend.Name(), time.Since(callStart))
		if err == nil && len(itemErrs) != len(batch) {
			err = fmt.Errorf("backend returned %d results for %d records", len(itemErrs), len(batch))
		}
		if err != nil {
			log.Error("bulk batch failed", "records", len(batch), "error", err)
			for _, i := range idx {
				outcomes[i].Err = err
			}
			continue
		}
		for j, i := range idx {
			outcomes[i].Err = itemErrs[j]
		}
	}

	written, failed := Tally(outcomes)
	metrics.RecordsWritten(written)
	metrics.RecordsFailed(failed)
	log.Info("bulk write finished", "written", written, "failed", failed)
	return outcomes
}

func (b *BulkIndexer) validate(r commonModels.IndexRecord) error {
	switch {
	case len(r.Vector) != b.schema.Dimensions:
		return fmt.Errorf("vector has %d dimensions, index %q expects %d", len(r.Vector), b.schema.Index, b.schema.Dimensions)
	case r.Text == "":
		return errors.New("empty text")
	case r.Source() == "":
		return errors.New("metadata is missing source")
	case r.ID == "":
		return errors.New("missing record id")
	}
	return nil
}

func (b *BulkIndexer) sendWithRetry(ctx context.Context, batch []commonModels.IndexRecord) ([]error, error) {
	policy := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(b.cfg.InitialBackoff),
		backoff.WithMaxElapsedTime(0),
	)
	retry := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(b.cfg.MaxAttempts-1)), ctx)

	var itemErrs []error
	op := func() error {
		var err error
		itemErrs, err = b.backend.Bulk(ctx, b.schema, batch)
		if err == nil {
			return nil
		}
		if IsTransient(err) && ctx.Err() == nil {
			return err
		}
		return backoff.Permanent(err)
	}
	notify := func(err error, wait time.Duration) {
		metrics.BulkRetry()
		b.logger.WithTrace(ctx).Warn("retrying bulk write", "wait", wait, "error", err)
	}

	if err := backoff.RetryNotify(op, retry, notify); err != nil {
		return nil, err
	}
	return itemErrs, nil
}

// Tally counts successes and failures.
func Tally(outcomes []Outcome) (written, failed int) {
	for _, o := range outcomes {
		if o.OK() {
			written++
		} else {
			failed++
		}
	}
	return written, failed
}
