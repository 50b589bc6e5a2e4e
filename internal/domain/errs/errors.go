// Package errs holds the error taxonomy shared by the ingestion core and
// the HTTP layer. Handlers map these to status codes; the messages built
// here are safe to show to clients.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is the extractor's "unsupported" signal, not a failure.
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrNoFiles           = errors.New("no files found")
)

type ExtractionError struct {
	Format string
	File   string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %s from %q: %v", e.Format, e.File, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

type EmbeddingError struct {
	Provider  string
	Retryable bool
	Err       error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding provider %s: %v", e.Provider, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

type IndexError struct {
	Index string
	Op    string
	Err   error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %q %s: %v", e.Index, e.Op, e.Err)
}

func (e *IndexError) Unwrap() error { return e.Err }

type StorageKind int

const (
	StorageOther StorageKind = iota
	StorageNotFound
	StorageAccessDenied
)

type StorageError struct {
	Kind   StorageKind
	Bucket string
	Key    string
	Err    error
}

func (e *StorageError) Error() string {
	switch e.Kind {
	case StorageNotFound:
		return fmt.Sprintf("object %s/%s not found: %v", e.Bucket, e.Key, e.Err)
	case StorageAccessDenied:
		return fmt.Sprintf("access denied to %s/%s: %v", e.Bucket, e.Key, e.Err)
	}
	return fmt.Sprintf("storage %s/%s: %v", e.Bucket, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field    string
	Message  string
	TooLarge bool
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

type CompletionError struct {
	Provider string
	Err      error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion provider %s: %v", e.Provider, e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }
