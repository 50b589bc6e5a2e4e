package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surajvast1/Doc-Manager/internal/api"
	"github.com/surajvast1/Doc-Manager/internal/config"
	"github.com/surajvast1/Doc-Manager/internal/data/objectStore"
	"github.com/surajvast1/Doc-Manager/internal/data/store"
	"github.com/surajvast1/Doc-Manager/internal/domain/commonModels"
	"github.com/surajvast1/Doc-Manager/internal/domain/errs"
	"github.com/surajvast1/Doc-Manager/internal/domain/jobModel"
	"github.com/surajvast1/Doc-Manager/internal/job"
	"github.com/surajvast1/Doc-Manager/internal/rag"
)

type mockRAG struct {
	OnProcessFolder func(ctx context.Context, bucket, folder string) (commonModels.IngestReport, error)
	OnAnswer        func(ctx context.Context, question string) (rag.Answer, error)
}

func (m *mockRAG) ProcessFolder(ctx context.Context, bucket, folder string) (commonModels.IngestReport, error) {
	if m.OnProcessFolder != nil {
		return m.OnProcessFolder(ctx, bucket, folder)
	}
	return commonModels.IngestReport{Bucket: bucket, Folder: folder, FilesSeen: 1}, nil
}

func (m *mockRAG) Search(ctx context.Context, question string) (commonModels.RetrievalContext, error) {
	return commonModels.RetrievalContext{}, nil
}

func (m *mockRAG) Answer(ctx context.Context, question string) (rag.Answer, error) {
	if m.OnAnswer != nil {
		return m.OnAnswer(ctx, question)
	}
	return rag.Answer{Answer: "mocked", Sources: []string{"a.txt"}}, nil
}

func (m *mockRAG) RunJob(ctx context.Context, j jobModel.Job) jobModel.Job { return j }

type fixture struct {
	router  *chi.Mux
	objects *objectStore.MemoryStore
	jobs    *job.Service
}

func newFixture(t *testing.T, service rag.Service, maxUpload int64) fixture {
	t.Helper()
	objects := objectStore.NewMemoryStore()
	jobs := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, 4),
		DispatcherChannel: make(chan bool, 1),
		JobStore:          store.NewInMemoryJobStore(),
		NewID:             func() string { return "run-42" },
	})
	h := NewHandler(Deps{
		RAG:            service,
		Objects:        objects,
		Jobs:           jobs,
		MaxUploadBytes: maxUpload,
		NewID:          func() string { return "fixed" },
	})

	r := chi.NewRouter()
	r.Get("/health", h.HealthHandler)
	r.Post("/files", h.FilesHandler)
	r.Post("/files/upload", h.UploadFilesHandler)
	r.Post("/files/delete", h.DeleteFilesHandler)
	r.Post("/process-files", h.ProcessFilesHandler)
	r.Get("/runs/{id}", h.GetRunHandler)
	r.Post("/search-and-respond", h.SearchAndRespondHandler)
	return fixture{router: r, objects: objects, jobs: jobs}
}

func (f fixture) do(t *testing.T, method, target string, body any) (*httptest.ResponseRecorder, api.Envelope) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req = req.WithContext(context.WithValue(req.Context(), config.TRACE_ID_KEY, "test-trace"))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var env api.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func b64(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

func dataAs[T any](t *testing.T, env api.Envelope) T {
	t.Helper()
	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestHealth(t *testing.T) {
	f := newFixture(t, &mockRAG{}, 1<<20)
	rec, env := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, api.StatusSuccess, env.Status)
}

func TestFiles_UploadWithDefaultName(t *testing.T) {
	f := newFixture(t, &mockRAG{}, 1<<20)
	rec, env := f.do(t, http.MethodPost, "/files", map[string]any{
		"bucket_name": "b",
		"user_id":     "u1",
		"context_id":  "c1",
		"action":      "upload",
		"files": []map[string]string{
			{"file_name": "notes.txt", "file_content": b64("plain notes")},
			{"file_name": "doc.pdf", "file_content": b64("%PDF-1.4\n%rest")},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, api.StatusSuccess, env.Status)
	result := dataAs[api.UploadResult](t, env)
	assert.Equal(t, "u1/c1/default-fixed/", result.Prefix)
	require.Len(t, result.Files, 2)
	assert.Equal(t, "u1/c1/default-fixed/notes.txt", result.Files[0].Key)
	assert.Contains(t, result.Files[0].ContentType, "text/plain")
	assert.Equal(t, "application/pdf", result.Files[1].ContentType)

	body, err := f.objects.Get(context.Background(), "b", "u1/c1/default-fixed/notes.txt", 0)
	require.NoError(t, err)
	assert.Equal(t, "plain notes", string(body))
}

func TestFiles_UploadRoute(t *testing.T) {
	f := newFixture(t, &mockRAG{}, 1<<20)
	rec, env := f.do(t, http.MethodPost, "/files/upload", map[string]any{
		"bucket_name": "b",
		"user_id":     "u1",
		"context_id":  "c1",
		"name":        "handbook",
		"files":       []map[string]string{{"file_name": "a.md", "file_content": b64("# title")}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "u1/c1/handbook/", dataAs[api.UploadResult](t, env).Prefix)
}

func TestFiles_UploadRejections(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{
			name:       "malformed json",
			body:       "{not json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing action",
			body:       map[string]any{"bucket_name": "b", "user_id": "u", "context_id": "c"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown action",
			body:       map[string]any{"bucket_name": "b", "user_id": "u", "context_id": "c", "action": "rename"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing user",
			body:       map[string]any{"bucket_name": "b", "context_id": "c", "action": "delete"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "bad base64",
			body: map[string]any{
				"bucket_name": "b", "user_id": "u", "context_id": "c", "action": "upload",
				"files": []map[string]string{{"file_name": "x.txt", "file_content": "%%%"}},
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "over the size cap",
			body: map[string]any{
				"bucket_name": "b", "user_id": "u", "context_id": "c", "action": "upload",
				"files": []map[string]string{
					{"file_name": "a.txt", "file_content": b64("0123456789")},
					{"file_name": "b.txt", "file_content": b64("0123456789")},
				},
			},
			wantStatus: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, &mockRAG{}, 16)
			rec, env := f.do(t, http.MethodPost, "/files", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, api.StatusError, env.Status)
			assert.NotEmpty(t, env.Message)

			keys, err := f.objects.List(context.Background(), "b", "")
			require.NoError(t, err)
			assert.Empty(t, keys, "nothing is stored when the request is rejected")
		})
	}
}

func TestFiles_DeleteReturnsDeletedKeys(t *testing.T) {
	f := newFixture(t, &mockRAG{}, 1<<20)
	ctx := context.Background()
	require.NoError(t, f.objects.Put(ctx, "b", "u1/c1/n/a.txt", []byte("a"), "text/plain"))
	require.NoError(t, f.objects.Put(ctx, "b", "u1/c1/n/b.txt", []byte("b"), "text/plain"))
	require.NoError(t, f.objects.Put(ctx, "b", "u1/c2/n/keep.txt", []byte("k"), "text/plain"))

	rec, env := f.do(t, http.MethodPost, "/files/delete", map[string]any{
		"bucket_name": "b", "user_id": "u1", "context_id": "c1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := dataAs[api.DeleteResult](t, env)
	assert.Equal(t, "u1/c1/", result.Prefix)
	assert.ElementsMatch(t, []string{"u1/c1/n/a.txt", "u1/c1/n/b.txt"}, result.Deleted)

	left, err := f.objects.List(ctx, "b", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1/c2/n/keep.txt"}, left)
}

func TestFiles_DeleteNothingFound(t *testing.T) {
	f := newFixture(t, &mockRAG{}, 1<<20)
	rec, env := f.do(t, http.MethodPost, "/files", map[string]any{
		"bucket_name": "b", "user_id": "u1", "context_id": "c1", "action": "delete",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No files found to delete.", env.Message)
}

func TestProcessFiles_Sync(t *testing.T) {
	tests := []struct {
		name        string
		report      commonModels.IngestReport
		err         error
		wantStatus  int
		wantMessage string
		wantReport  bool
	}{
		{
			name:        "all stored",
			report:      commonModels.IngestReport{FilesSeen: 2, RecordsWritten: 5, Stage: commonModels.StageDone},
			wantStatus:  http.StatusOK,
			wantMessage: "All files processed and stored successfully.",
		},
		{
			name: "some skipped",
			report: commonModels.IngestReport{
				FilesSeen:    2,
				FilesSkipped: []commonModels.SkippedFile{{Key: "x.bin", Stage: commonModels.StageExtracting, Reason: "unsupported format"}},
			},
			wantStatus:  http.StatusOK,
			wantMessage: "Files processed, some were skipped or not stored.",
		},
		{
			name:        "empty folder",
			report:      commonModels.IngestReport{FilesSeen: 0, Stage: commonModels.StageDone},
			wantStatus:  http.StatusNotFound,
			wantMessage: "No files found in the folder.",
		},
		{
			name:       "index down",
			err:        &errs.IndexError{Index: "docs", Op: "create", Err: errors.New("dial tcp: refused")},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "bucket missing",
			err:        &errs.StorageError{Kind: errs.StorageNotFound, Bucket: "b"},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "aborted after partial progress",
			report: commonModels.IngestReport{
				FilesSeen:      3,
				RecordsWritten: 4,
				Stage:          commonModels.StageEmbedding,
			},
			err:        &errs.EmbeddingError{Provider: "openai", Err: errors.New("invalid key")},
			wantStatus: http.StatusBadGateway,
			wantReport: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotBucket, gotFolder string
			service := &mockRAG{OnProcessFolder: func(ctx context.Context, bucket, folder string) (commonModels.IngestReport, error) {
				gotBucket, gotFolder = bucket, folder
				return tt.report, tt.err
			}}
			f := newFixture(t, service, 1<<20)

			rec, env := f.do(t, http.MethodPost, "/process-files", map[string]any{"bucket_name": "b", "folder_path": "u1/c1/"})
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, "b", gotBucket)
			assert.Equal(t, "u1/c1/", gotFolder)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, env.Message)
			}
			assert.NotContains(t, env.Message, "dial tcp")
			if tt.err != nil {
				assert.Equal(t, api.StatusError, env.Status)
				if tt.wantReport {
					got := dataAs[commonModels.IngestReport](t, env)
					assert.Equal(t, 3, got.FilesSeen)
					assert.Equal(t, 4, got.RecordsWritten)
				} else {
					assert.Nil(t, env.Data)
				}
			}
		})
	}
}

func TestProcessFiles_MissingBucket(t *testing.T) {
	f := newFixture(t, &mockRAG{}, 1<<20)
	rec, _ := f.do(t, http.MethodPost, "/process-files", map[string]any{"folder_path": "x/"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcessFiles_AsyncThenStatus(t *testing.T) {
	f := newFixture(t, &mockRAG{}, 1<<20)

	rec, env := f.do(t, http.MethodPost, "/process-files", map[string]any{"bucket_name": "b", "folder_path": "u1/", "async": true})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	queued := dataAs[api.InitRunResponse](t, env)
	assert.Equal(t, "run-42", queued.RunId)
	assert.Equal(t, "/runs/run-42", queued.StatusURL)

	queuedJob := <-f.jobs.JobChannel
	assert.Equal(t, "test-trace", queuedJob.TraceId)
	assert.Equal(t, jobModel.JobPayload{Bucket: "b", Folder: "u1/"}, queuedJob.JobPayload)

	rec, env = f.do(t, http.MethodGet, queued.StatusURL, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	run := dataAs[api.RunResponse](t, env)
	assert.Equal(t, string(jobModel.JobStatusQueued), run.Status)
}

func TestGetRun_NotFound(t *testing.T) {
	f := newFixture(t, &mockRAG{}, 1<<20)
	rec, env := f.do(t, http.MethodGet, "/runs/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Run not found", env.Message)
}

func TestSearchAndRespond(t *testing.T) {
	tests := []struct {
		name        string
		question    string
		answer      rag.Answer
		err         error
		wantStatus  int
		wantMessage string
		wantAnswer  string
	}{
		{
			name:        "answered",
			question:    "refund window?",
			answer:      rag.Answer{Answer: "30 days", Sources: []string{"policy.pdf"}},
			wantStatus:  http.StatusOK,
			wantMessage: "Answer generated successfully.",
			wantAnswer:  "30 days",
		},
		{
			name:        "no context",
			question:    "unrelated?",
			answer:      rag.Answer{Answer: config.NoContextMessage, NoContext: true},
			wantStatus:  http.StatusOK,
			wantMessage: config.NoContextMessage,
			wantAnswer:  config.NoContextMessage,
		},
		{
			name:       "blank question",
			question:   "   ",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:        "completion fails",
			question:    "refund window?",
			err:         &errs.CompletionError{Provider: "openai", Err: errors.New("401 invalid api key sk-123")},
			wantStatus:  http.StatusBadGateway,
			wantMessage: "Completion provider request failed.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mockRAG{OnAnswer: func(ctx context.Context, question string) (rag.Answer, error) {
				return tt.answer, tt.err
			}}
			f := newFixture(t, service, 1<<20)

			rec, env := f.do(t, http.MethodPost, "/search-and-respond", map[string]string{"question": tt.question})
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, env.Message)
			}
			if tt.wantAnswer != "" {
				got := dataAs[api.AnswerResponse](t, env)
				assert.Equal(t, tt.wantAnswer, got.Answer)
				assert.NotNil(t, got.Sources)
			}
		})
	}
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", detectContentType("x.bin", []byte("%PDF-1.7\n")))
	assert.Contains(t, detectContentType("x.csv", []byte("a,b\n1,2\n")), "text/")
	// unrecognised bytes fall back to the extension
	assert.Equal(t, "application/json", detectContentType("data.json", []byte{0x00, 0x01, 0x02, 0x03}))
	assert.Equal(t, "application/octet-stream", detectContentType("blob", []byte{0x00, 0x01, 0x02, 0x03}))
}
