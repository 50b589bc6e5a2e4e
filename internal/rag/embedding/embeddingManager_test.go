package embedding

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/surajvast1/Doc-Manager/internal/domain/errs"
)

func fakeProvider(dims int, calls *[]int) BatchFunc {
	return func(ctx context.Context, texts []string) ([][]float32, error) {
		*calls = append(*calls, len(texts))
		out := make([][]float32, len(texts))
		for i, t := range texts {
			v := make([]float32, dims)
			fmt.Sscanf(t, "t%f", &v[0])
			out[i] = v
		}
		return out, nil
	}
}

func TestEmbedInBatches_PreservesOrder(t *testing.T) {
	texts := make([]string, 250)
	for i := range texts {
		texts[i] = fmt.Sprintf("t%d", i)
	}
	var calls []int

	vectors, err := EmbedInBatches(context.Background(), "fake", texts, 100, 4, fakeProvider(4, &calls))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(calls) != 3 || calls[0] != 100 || calls[2] != 50 {
		t.Errorf("unexpected batch sizes: %v", calls)
	}
	if len(vectors) != len(texts) {
		t.Fatalf("want %d vectors, got %d", len(texts), len(vectors))
	}
	for i, v := range vectors {
		if int(v[0]) != i {
			t.Fatalf("vector %d out of order (marker %v)", i, v[0])
		}
	}
}

func TestEmbedInBatches_Empty(t *testing.T) {
	var calls []int
	vectors, err := EmbedInBatches(context.Background(), "fake", nil, 10, 4, fakeProvider(4, &calls))
	if err != nil || len(vectors) != 0 || len(calls) != 0 {
		t.Errorf("empty input: got %v, %v, calls=%v", vectors, err, calls)
	}
}

func TestEmbedInBatches_Failures(t *testing.T) {
	tests := []struct {
		name string
		call BatchFunc
	}{
		{
			name: "provider error",
			call: func(ctx context.Context, texts []string) ([][]float32, error) {
				return nil, errors.New("rate limited")
			},
		},
		{
			name: "short response",
			call: func(ctx context.Context, texts []string) ([][]float32, error) {
				return make([][]float32, len(texts)-1), nil
			},
		},
		{
			name: "wrong dimensions",
			call: func(ctx context.Context, texts []string) ([][]float32, error) {
				out := make([][]float32, len(texts))
				for i := range out {
					out[i] = make([]float32, 3)
				}
				return out, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EmbedInBatches(context.Background(), "fake", []string{"a", "b"}, 10, 4, tt.call)
			var embErr *errs.EmbeddingError
			if !errors.As(err, &embErr) {
				t.Fatalf("want EmbeddingError, got %v", err)
			}
			if embErr.Provider != "fake" {
				t.Errorf("provider not recorded: %+v", embErr)
			}
		})
	}
}

func TestEmbedInBatches_KeepsProviderClassification(t *testing.T) {
	original := &errs.EmbeddingError{Provider: "fake", Retryable: true, Err: errors.New("429")}
	_, err := EmbedInBatches(context.Background(), "fake", []string{"a"}, 10, 4,
		func(ctx context.Context, texts []string) ([][]float32, error) { return nil, original })

	var embErr *errs.EmbeddingError
	if !errors.As(err, &embErr) || !embErr.Retryable {
		t.Errorf("retryable flag lost: %v", err)
	}
}
