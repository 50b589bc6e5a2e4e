package vectorDB

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/surajvast1/Doc-Manager/internal/domain/commonModels"
)

// Field names shared by every backend.
const (
	TextField     = "text"
	MetadataField = "metadata"
	SourceField   = "source"
)

// ErrIndexAlreadyExists is what a backend returns when a create lost a race.
var ErrIndexAlreadyExists = errors.New("index already exists")

type Schema struct {
	Index       string
	VectorField string
	Dimensions  int
}

type MatchQuery struct {
	Text string
	// Vector, when set, ranks the text matches by similarity.
	Vector []float32
	Limit  int
}

type Hit struct {
	ID     string
	Text   string
	Source string
	Score  float32
}

// Backend is the search engine the core writes to and reads from.
type Backend interface {
	Name() string
	IndexExists(ctx context.Context, index string) (bool, error)
	CreateIndex(ctx context.Context, schema Schema) error
	// IndexDimensions returns 0 when the backend does not record it.
	IndexDimensions(ctx context.Context, schema Schema) (int, error)
	// Bulk returns one entry per record (nil on success) or a call-level error.
	Bulk(ctx context.Context, schema Schema, records []commonModels.IndexRecord) ([]error, error)
	Search(ctx context.Context, schema Schema, query MatchQuery) ([]Hit, error)
}

type transientError struct {
	err error
}

func (t *transientError) Error() string { return t.err.Error() }
func (t *transientError) Unwrap() error { return t.err }

// Transient marks a backend error as worth retrying.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

func IsTransient(err error) bool {
	var t *transientError
	return errors.As(err, &t)
}

// RecordID is stable for a (bucket, key, sequence), so re-ingesting a file
// overwrites its previous chunks instead of duplicating them.
func RecordID(bucket, key string, sequence int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s/%s#%d", bucket, key, sequence))).String()
}
