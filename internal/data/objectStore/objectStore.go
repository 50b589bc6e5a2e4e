// Package objectStore is the blob storage collaborator: listing, fetching,
// uploading and deleting objects under a bucket.
package objectStore

import (
	"context"
	"errors"
	"fmt"
)

// ErrTooLarge is returned by Get when an object exceeds the caller's cap.
var ErrTooLarge = errors.New("object exceeds size limit")

type Store interface {
	// List returns every object key under prefix, following pagination.
	// Folder placeholder keys ending in "/" are left out.
	List(ctx context.Context, bucket, prefix string) ([]string, error)
	// Get buffers one object. A positive maxBytes caps how much is read;
	// larger objects fail with ErrTooLarge before being held in memory.
	Get(ctx context.Context, bucket, key string, maxBytes int64) ([]byte, error)
	Put(ctx context.Context, bucket, key string, body []byte, contentType string) error
	// DeleteMany removes keys and returns the ones the store confirmed.
	DeleteMany(ctx context.Context, bucket string, keys []string) ([]string, error)
}

func tooLarge(key string, size, maxBytes int64) error {
	if size < 0 {
		return fmt.Errorf("%w: %s is over %d bytes", ErrTooLarge, key, maxBytes)
	}
	return fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrTooLarge, key, size, maxBytes)
}
