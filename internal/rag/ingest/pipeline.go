package ingest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/surajvast1/Doc-Manager/internal/config"
	"github.com/surajvast1/Doc-Manager/internal/data/objectStore"
	"github.com/surajvast1/Doc-Manager/internal/domain/commonModels"
	"github.com/surajvast1/Doc-Manager/internal/domain/errs"
	"github.com/surajvast1/Doc-Manager/internal/metrics"
	"github.com/surajvast1/Doc-Manager/internal/rag/chunker"
	"github.com/surajvast1/Doc-Manager/internal/rag/embedding"
	"github.com/surajvast1/Doc-Manager/internal/rag/extract"
	"github.com/surajvast1/Doc-Manager/internal/rag/vectorDB"
	"github.com/surajvast1/Doc-Manager/pkg/logger_i"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	IndexName     string
	VectorField   string
	Dimensions    int
	ChunkSize     int
	Overlap       int
	Concurrency   int
	MaxFileBytes  int64
	FailurePolicy string
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		IndexName:     cfg.IndexName,
		VectorField:   cfg.VectorField,
		Dimensions:    cfg.Dimensions,
		ChunkSize:     cfg.ChunkSize,
		Overlap:       cfg.ChunkOverlap,
		Concurrency:   cfg.IngestConcurrency,
		MaxFileBytes:  cfg.MaxFileBytes(),
		FailurePolicy: cfg.FailurePolicy,
	}
}

type Pipeline struct {
	store    objectStore.Store
	embedder embedding.Embedder
	indexes  *vectorDB.IndexManager
	writer   *vectorDB.BulkIndexer
	opts     Options
	logger   *logger_i.Logger
}

// NewPipeline refuses an embedder whose vector size differs from the
// index it is meant to fill.
func NewPipeline(store objectStore.Store, embedder embedding.Embedder, indexes *vectorDB.IndexManager, writer *vectorDB.BulkIndexer, opts Options) (*Pipeline, error) {
	if store == nil || embedder == nil || indexes == nil || writer == nil {
		return nil, errors.New("ingest pipeline is missing a collaborator")
	}
	if embedder.Dimensions() != opts.Dimensions {
		return nil, &errs.ValidationError{
			Field:   "dimensions",
			Message: fmt.Sprintf("embedder produces %d dimensions but the index is configured for %d", embedder.Dimensions(), opts.Dimensions),
		}
	}
	if opts.ChunkSize <= 0 || opts.Overlap < 0 || opts.Overlap >= opts.ChunkSize {
		return nil, errs.Validation("chunk_size", "chunk size must be positive and larger than the overlap")
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.FailurePolicy == "" {
		opts.FailurePolicy = config.FailurePolicySkipFile
	}
	return &Pipeline{
		store:    store,
		embedder: embedder,
		indexes:  indexes,
		writer:   writer,
		opts:     opts,
		logger:   logger_i.NewLogger("ingest"),
	}, nil
}

// fileResult is what one file worker hands to the collector.
type fileResult struct {
	key     string
	records []commonModels.IndexRecord
	skipped *commonModels.SkippedFile
}

// Run ingests every object under folder with a fresh run id.
func (p *Pipeline) Run(ctx context.Context, bucket, folder string) (commonModels.IngestReport, error) {
	return p.RunAs(ctx, uuid.NewString(), bucket, folder)
}

// RunAs lists the folder, turns each file into records on a bounded pool,
// ensures the index once and bulk writes everything once. Per-file
// problems land in the report; the returned error is reserved for listing,
// index and cancellation failures, and for embedding failures under the
// abort-run policy.
func (p *Pipeline) RunAs(ctx context.Context, runID, bucket, folder string) (commonModels.IngestReport, error) {
	log := p.logger.WithTrace(ctx).With("runId", runID, "bucket", bucket, "folder", folder)
	report := commonModels.IngestReport{
		RunID:         runID,
		Bucket:        bucket,
		Folder:        folder,
		FilesSkipped:  []commonModels.SkippedFile{},
		RecordsFailed: []commonModels.FailedRecord{},
		Stage:         commonModels.StageListing,
		StartedAt:     time.Now().UTC(),
	}
	finish := func(stage commonModels.Stage) {
		report.Stage = stage
		report.FinishedAt = time.Now().UTC()
		metrics.CaptureJobMetrics(string(stage), report.FinishedAt.Sub(report.StartedAt))
	}

	if bucket == "" {
		finish(commonModels.StageListing)
		return report, errs.Validation("bucket_name", "is required")
	}

	keys, err := p.store.List(ctx, bucket, folder)
	if err != nil {
		log.Error("listing failed", "error", err)
		finish(commonModels.StageListing)
		return report, err
	}
	report.FilesSeen = len(keys)
	log.Info("listed files", "count", len(keys))
	if len(keys) == 0 {
		finish(commonModels.StageDone)
		return report, nil
	}

	records, skipped, err := p.processAll(ctx, bucket, keys)
	report.FilesSkipped = append(report.FilesSkipped, skipped...)
	if err != nil {
		log.Error("run stopped", "error", err)
		finish(commonModels.StageEmbedding)
		return report, err
	}

	report.Stage = commonModels.StageAccumulating
	log.Info("files processed", "records", len(records), "skipped", len(skipped))
	if len(records) == 0 {
		finish(commonModels.StageDone)
		return report, nil
	}

	report.Stage = commonModels.StageIndexEnsuring
	res, err := p.indexes.EnsureIndex(ctx, p.opts.IndexName, p.opts.VectorField, p.opts.Dimensions)
	if err != nil {
		log.Error("index ensure failed", "error", err)
		finish(commonModels.StageIndexEnsuring)
		return report, err
	}
	report.IndexCreated = res == vectorDB.Created

	report.Stage = commonModels.StageBulkWriting
	outcomes := p.writer.BulkWrite(ctx, records)
	for _, o := range outcomes {
		if o.OK() {
			report.RecordsWritten++
			continue
		}
		report.RecordsFailed = append(report.RecordsFailed, commonModels.FailedRecord{
			Source:   o.Source,
			Sequence: o.Sequence,
			Reason:   o.Err.Error(),
		})
	}

	if err := ctx.Err(); err != nil {
		finish(commonModels.StageBulkWriting)
		return report, err
	}
	finish(commonModels.StageDone)
	log.Info("run finished", "written", report.RecordsWritten, "failed", len(report.RecordsFailed), "indexCreated", report.IndexCreated)
	return report, nil
}

// processAll fans keys out to at most Concurrency workers. A single
// collector goroutine owns the accumulated records and skips.
func (p *Pipeline) processAll(ctx context.Context, bucket string, keys []string) ([]commonModels.IndexRecord, []commonModels.SkippedFile, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)

	results := make(chan fileResult, len(keys))
	var (
		records []commonModels.IndexRecord
		skipped []commonModels.SkippedFile
	)
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for res := range results {
			if res.skipped != nil {
				skipped = append(skipped, *res.skipped)
				continue
			}
			records = append(records, res.records...)
		}
	}()

	for _, key := range keys {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := p.processFile(gctx, bucket, key)
			if err != nil {
				return err
			}
			results <- res
			return nil
		})
	}
	err := g.Wait()
	close(results)
	<-collected

	if err == nil {
		err = ctx.Err()
	}

	// workers finish in any order
	sort.Slice(skipped, func(i, j int) bool { return skipped[i].Key < skipped[j].Key })
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Source() != records[j].Source() {
			return records[i].Source() < records[j].Source()
		}
		return records[i].Sequence < records[j].Sequence
	})
	return records, skipped, err
}

// processFile runs fetch, extract, chunk and embed for one key. A returned
// error stops the whole run; anything else is reported as a skip.
func (p *Pipeline) processFile(ctx context.Context, bucket, key string) (fileResult, error) {
	log := p.logger.WithTrace(ctx).With("key", key)
	ref := commonModels.NewFileReference(bucket, key)

	skip := func(stage commonModels.Stage, reason string) (fileResult, error) {
		log.Warn("skipping file", "stage", stage, "reason", reason)
		metrics.FileSkipped(string(stage))
		return fileResult{key: key, skipped: &commonModels.SkippedFile{Key: key, Stage: stage, Reason: reason}}, nil
	}

	if !extract.Supported(ref.Format) {
		return skip(commonModels.StageExtracting, errs.ErrUnsupportedFormat.Error())
	}

	data, err := p.store.Get(ctx, bucket, key, p.opts.MaxFileBytes)
	if err != nil {
		if ctx.Err() != nil {
			return fileResult{}, ctx.Err()
		}
		return skip(commonModels.StageFetching, err.Error())
	}

	text, err := extract.Extract(data, ref.Format, key)
	if err != nil {
		return skip(commonModels.StageExtracting, err.Error())
	}
	if text == "" {
		return skip(commonModels.StageExtracting, "no text extracted")
	}

	chunks, err := chunker.Chunk(text, p.opts.ChunkSize, p.opts.Overlap)
	if err != nil {
		return skip(commonModels.StageChunking, err.Error())
	}

	vectors, err := p.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		if ctx.Err() != nil {
			return fileResult{}, ctx.Err()
		}
		if p.opts.FailurePolicy == config.FailurePolicyAbortRun {
			return fileResult{}, fmt.Errorf("embedding %q: %w", key, err)
		}
		return skip(commonModels.StageEmbedding, err.Error())
	}
	if len(vectors) != len(chunks) {
		return skip(commonModels.StageEmbedding, fmt.Sprintf("got %d vectors for %d chunks", len(vectors), len(chunks)))
	}

	records := make([]commonModels.IndexRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = commonModels.IndexRecord{
			ID:       vectorDB.RecordID(bucket, key, i),
			Index:    p.opts.IndexName,
			Sequence: i,
			Text:     chunk,
			Metadata: map[string]string{
				commonModels.MetaSource:     key,
				commonModels.MetaBucket:     bucket,
				commonModels.MetaChunkIndex: strconv.Itoa(i),
				commonModels.MetaFormat:     string(ref.Format),
			},
			Vector: vectors[i],
		}
	}
	metrics.FileProcessed(string(commonModels.StageEmbedding))
	log.Debug("file ready", "chunks", len(records))
	return fileResult{key: key, records: records}, nil
}
