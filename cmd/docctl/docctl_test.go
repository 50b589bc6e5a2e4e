package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surajvast1/Doc-Manager/internal/app"
	"github.com/surajvast1/Doc-Manager/internal/config"
	"github.com/surajvast1/Doc-Manager/internal/data/objectStore"
	"github.com/surajvast1/Doc-Manager/internal/domain/commonModels"
	"github.com/surajvast1/Doc-Manager/internal/rag/rag_test"
	"github.com/surajvast1/Doc-Manager/internal/rag/vectorDB"
)

type stubEmbedder struct{}

func (stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{0.1, 0.2, 0.3, 0.4}
	}
	return out, nil
}
func (stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3, 0.4}, nil
}
func (stubEmbedder) Dimensions() int { return 4 }

type stubBackend struct {
	exists  bool
	written int
	hits    []vectorDB.Hit
}

func (b *stubBackend) Name() string { return "stub" }
func (b *stubBackend) IndexExists(ctx context.Context, index string) (bool, error) {
	return b.exists, nil
}
func (b *stubBackend) CreateIndex(ctx context.Context, schema vectorDB.Schema) error {
	b.exists = true
	return nil
}
func (b *stubBackend) IndexDimensions(ctx context.Context, schema vectorDB.Schema) (int, error) {
	return schema.Dimensions, nil
}
func (b *stubBackend) Bulk(ctx context.Context, schema vectorDB.Schema, records []commonModels.IndexRecord) ([]error, error) {
	b.written += len(records)
	return make([]error, len(records)), nil
}
func (b *stubBackend) Search(ctx context.Context, schema vectorDB.Schema, q vectorDB.MatchQuery) ([]vectorDB.Hit, error) {
	return b.hits, nil
}

func setup(t *testing.T, backend *stubBackend, objects *objectStore.MemoryStore) *bytes.Buffer {
	t.Helper()
	cfg := &config.Config{
		IndexName:         "docs",
		VectorField:       "vec",
		Dimensions:        4,
		ChunkSize:         200,
		ChunkOverlap:      20,
		IngestConcurrency: 2,
		MaxFileSizeMB:     1,
		FailurePolicy:     config.FailurePolicySkipFile,
		BulkBatchSize:     10,
		BulkMaxAttempts:   1,
		RetrievalTopK:     5,
	}
	llm := &rag_test.MockLLM{OnComplete: func(ctx context.Context, sc, q string) (string, error) {
		return "thirty days", nil
	}}

	previous := bootstrap
	bootstrap = func(ctx context.Context) (*app.Clients, error) {
		return app.Assemble(cfg, app.Parts{Objects: objects, Backend: backend, Embedder: stubEmbedder{}, LLM: llm})
	}
	t.Cleanup(func() {
		bootstrap = previous
		outputJSON, askContextOnly = false, false
	})

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	return out
}

func TestProcessCommand(t *testing.T) {
	objects := objectStore.NewMemoryStore()
	require.NoError(t, objects.Put(context.Background(), "b", "u/c/a.txt", []byte("refunds take thirty days"), "text/plain"))
	require.NoError(t, objects.Put(context.Background(), "b", "u/c/blob.bin", []byte{0xd0, 0xcf}, "application/octet-stream"))
	backend := &stubBackend{}
	out := setup(t, backend, objects)

	rootCmd.SetArgs([]string{"process", "b", "u/c/"})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), "2 files seen, 1 records written")
	assert.Contains(t, out.String(), "Index was created.")
	assert.Contains(t, out.String(), "u/c/blob.bin")
	assert.Equal(t, 1, backend.written)
}

func TestProcessCommand_JSONAndEmptyFolder(t *testing.T) {
	objects := objectStore.NewMemoryStore()
	require.NoError(t, objects.Put(context.Background(), "b", "x/a.md", []byte("# heading\nbody"), "text/markdown"))
	out := setup(t, &stubBackend{}, objects)

	rootCmd.SetArgs([]string{"process", "b", "x/", "--json"})
	require.NoError(t, rootCmd.Execute())
	var report commonModels.IngestReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, 1, report.FilesSeen)

	out.Reset()
	rootCmd.SetArgs([]string{"process", "b", "nothing-here/"})
	assert.Error(t, rootCmd.Execute())
}

func TestAskCommand(t *testing.T) {
	backend := &stubBackend{hits: []vectorDB.Hit{{Text: "refunds take thirty days", Source: "u/c/a.txt"}}}
	out := setup(t, backend, objectStore.NewMemoryStore())

	rootCmd.SetArgs([]string{"ask", "how", "long", "for", "refunds?"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "thirty days")
	assert.Contains(t, out.String(), "- u/c/a.txt")

	out.Reset()
	rootCmd.SetArgs([]string{"ask", "--context-only", "refunds"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "refunds take thirty days")
}

func TestAskCommand_NoContext(t *testing.T) {
	out := setup(t, &stubBackend{}, objectStore.NewMemoryStore())

	rootCmd.SetArgs([]string{"ask", "anything"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), config.NoContextMessage)
}

func TestEnsureIndexCommand(t *testing.T) {
	backend := &stubBackend{}
	out := setup(t, backend, objectStore.NewMemoryStore())

	rootCmd.SetArgs([]string{"ensure-index"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Index docs on stub: created")
	assert.True(t, backend.exists)
}
