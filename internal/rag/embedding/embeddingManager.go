package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/surajvast1/Doc-Manager/internal/domain/errs"
	"github.com/surajvast1/Doc-Manager/internal/metrics"
)

// Embedder turns texts into vectors of a fixed dimensionality. EmbedBatch
// returns one vector per input, in input order.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// BatchFunc is a single provider round trip.
type BatchFunc func(ctx context.Context, texts []string) ([][]float32, error)

// EmbedInBatches splits texts into provider-sized calls and validates
// every response. Failures come back as *errs.EmbeddingError.
func EmbedInBatches(ctx context.Context, provider string, texts []string, batchSize, dims int, call BatchFunc) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	if batchSize <= 0 {
		batchSize = len(texts)
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))
		batch := texts[start:end]

		callStart := time.Now()
		got, err := call(ctx, batch)
		metrics.CaptureExecutionMetrics("embedding_"+provider, time.Since(callStart))
		if err != nil {
			return nil, wrap(provider, err)
		}
		if len(got) != len(batch) {
			return nil, &errs.EmbeddingError{
				Provider: provider,
				Err:      fmt.Errorf("provider returned %d vectors for %d texts", len(got), len(batch)),
			}
		}
		for i, v := range got {
			if len(v) != dims {
				return nil, &errs.EmbeddingError{
					Provider: provider,
					Err:      fmt.Errorf("vector %d has %d dimensions, want %d", start+i, len(v), dims),
				}
			}
		}
		vectors = append(vectors, got...)
	}
	return vectors, nil
}

func wrap(provider string, err error) error {
	var embErr *errs.EmbeddingError
	if errors.As(err, &embErr) {
		return err
	}
	return &errs.EmbeddingError{Provider: provider, Err: err}
}

// RetryableStatus reports whether an HTTP status from a provider is worth retrying.
func RetryableStatus(code int) bool {
	return code == 429 || code >= 500
}
