package retrieve

import (
	"context"
	"errors"
	"testing"

	"github.com/surajvast1/Doc-Manager/internal/domain/commonModels"
	"github.com/surajvast1/Doc-Manager/internal/domain/errs"
	"github.com/surajvast1/Doc-Manager/internal/rag/vectorDB"
)

type mockBackend struct {
	OnSearch func(ctx context.Context, q vectorDB.MatchQuery) ([]vectorDB.Hit, error)
}

func (m *mockBackend) Name() string                                                { return "mock" }
func (m *mockBackend) IndexExists(ctx context.Context, index string) (bool, error) { return true, nil }
func (m *mockBackend) CreateIndex(ctx context.Context, schema vectorDB.Schema) error {
	return nil
}
func (m *mockBackend) IndexDimensions(ctx context.Context, schema vectorDB.Schema) (int, error) {
	return 0, nil
}
func (m *mockBackend) Bulk(ctx context.Context, schema vectorDB.Schema, records []commonModels.IndexRecord) ([]error, error) {
	return nil, nil
}
func (m *mockBackend) Search(ctx context.Context, schema vectorDB.Schema, q vectorDB.MatchQuery) ([]vectorDB.Hit, error) {
	return m.OnSearch(ctx, q)
}

type mockEmbedder struct {
	OnEmbed func(ctx context.Context, text string) ([]float32, error)
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, nil
}
func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return m.OnEmbed(ctx, text)
}
func (m *mockEmbedder) Dimensions() int { return 2 }

var schema = vectorDB.Schema{Index: "docs", VectorField: "vec", Dimensions: 2}

func TestRetrieve_JoinsHitsInOrder(t *testing.T) {
	backend := &mockBackend{OnSearch: func(ctx context.Context, q vectorDB.MatchQuery) ([]vectorDB.Hit, error) {
		if q.Text != "refund" || q.Limit != 3 {
			t.Errorf("unexpected query %+v", q)
		}
		return []vectorDB.Hit{
			{Text: "first", Source: "a.pdf"},
			{Text: "second", Source: "b.pdf"},
			{Text: "third", Source: "a.pdf"},
		}, nil
	}}

	got, err := New(backend, schema, nil, 3).Retrieve(context.Background(), "  refund ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Text != "first second third" {
		t.Errorf("got %q", got.Text)
	}
	if len(got.Sources) != 2 || got.Sources[0] != "a.pdf" || got.Sources[1] != "b.pdf" {
		t.Errorf("got sources %v", got.Sources)
	}
	if got.Empty {
		t.Error("should not be empty")
	}
}

func TestRetrieve_NoHitsIsEmpty(t *testing.T) {
	backend := &mockBackend{OnSearch: func(ctx context.Context, q vectorDB.MatchQuery) ([]vectorDB.Hit, error) {
		return nil, nil
	}}
	got, err := New(backend, schema, nil, 0).Retrieve(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("no hits should not be an error: %v", err)
	}
	if !got.Empty || got.Text != "" {
		t.Errorf("want empty context, got %+v", got)
	}
}

func TestRetrieve_BackendFailureIsIndexError(t *testing.T) {
	backend := &mockBackend{OnSearch: func(ctx context.Context, q vectorDB.MatchQuery) ([]vectorDB.Hit, error) {
		return nil, errors.New("connection refused")
	}}
	_, err := New(backend, schema, nil, 0).Retrieve(context.Background(), "q")
	var idxErr *errs.IndexError
	if !errors.As(err, &idxErr) || idxErr.Op != "search" {
		t.Errorf("want IndexError, got %v", err)
	}
}

func TestRetrieve_UsesQueryVectorWhenAvailable(t *testing.T) {
	var gotVector []float32
	backend := &mockBackend{OnSearch: func(ctx context.Context, q vectorDB.MatchQuery) ([]vectorDB.Hit, error) {
		gotVector = q.Vector
		return []vectorDB.Hit{{Text: "hit", Source: "a"}}, nil
	}}
	emb := &mockEmbedder{OnEmbed: func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0.5, 0.5}, nil
	}}
	if _, err := New(backend, schema, emb, 0).Retrieve(context.Background(), "q"); err != nil {
		t.Fatal(err)
	}
	if len(gotVector) != 2 {
		t.Errorf("query vector not passed: %v", gotVector)
	}

	// an embedding failure degrades to keyword order
	emb.OnEmbed = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("quota")
	}
	got, err := New(backend, schema, emb, 0).Retrieve(context.Background(), "q")
	if err != nil || got.Text != "hit" || gotVector != nil {
		t.Errorf("want keyword fallback, got %+v %v %v", got, err, gotVector)
	}
}

func TestRetrieve_EmptyQuestion(t *testing.T) {
	_, err := New(&mockBackend{}, schema, nil, 0).Retrieve(context.Background(), "   ")
	var valErr *errs.ValidationError
	if !errors.As(err, &valErr) {
		t.Errorf("want ValidationError, got %v", err)
	}
}
