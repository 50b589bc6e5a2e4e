package handlers

import (
	"net/http"
	"strings"

	"github.com/surajvast1/Doc-Manager/internal/adapter"
	"github.com/surajvast1/Doc-Manager/internal/api"
	"github.com/surajvast1/Doc-Manager/internal/config"
	"github.com/surajvast1/Doc-Manager/internal/data/objectStore"
	"github.com/surajvast1/Doc-Manager/internal/domain/errs"
	"github.com/surajvast1/Doc-Manager/internal/job"
	"github.com/surajvast1/Doc-Manager/internal/rag"
	"github.com/surajvast1/Doc-Manager/pkg/logger_i"
)

// small JSON bodies (process, search) never need more than this
const maxJSONBody = 1 << 20

type Handler struct {
	service        rag.Service
	objects        objectStore.Store
	jobs           *job.Service
	maxUploadBytes int64
	newID          func() string
	logger         *logger_i.Logger
}

type Deps struct {
	RAG            rag.Service
	Objects        objectStore.Store
	Jobs           *job.Service
	MaxUploadBytes int64
	NewID          func() string
}

func NewHandler(deps Deps) *Handler {
	h := &Handler{
		service:        deps.RAG,
		objects:        deps.Objects,
		jobs:           deps.Jobs,
		maxUploadBytes: deps.MaxUploadBytes,
		newID:          deps.NewID,
		logger:         logger_i.NewLogger("RequestHandler"),
	}
	h.logger.Info("Starting request handler")
	return h
}

// HealthHandler godoc
// @Summary      Liveness probe
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.Envelope
// @Router       /health [get]
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, adapter.Success("ok", nil))
}

// ProcessFilesHandler godoc
// @Summary      Index a folder
// @Description  Extracts, chunks, embeds and indexes every file under folder_path. With async set the run is queued and a run id returned.
// @Tags         Ingestion
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      api.ProcessFilesRequest  true  "Folder to process"
// @Success      200      {object}  api.Envelope  "Run report"
// @Success      202      {object}  api.Envelope  "Run queued"
// @Failure      404      {object}  api.Envelope  "No files found"
// @Failure      502      {object}  api.Envelope  "Provider or backend failure"
// @Router       /process-files [post]
func (h *Handler) ProcessFilesHandler(w http.ResponseWriter, r *http.Request) {
	if !h.validateContext(r.Context()) {
		return
	}

	var req api.ProcessFilesRequest
	if err := h.decodeJSON(w, r, maxJSONBody, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.BucketName) == "" {
		h.writeError(w, r, errs.Validation("bucket_name", "is required"))
		return
	}

	if req.Async && h.jobs != nil {
		h.submitRun(w, r, req)
		return
	}

	report, err := h.service.ProcessFolder(r.Context(), req.BucketName, req.FolderPath)
	if err != nil {
		// files finished before the failure are already indexed
		if report.FilesSeen > 0 {
			h.writeErrorWithData(w, r, err, report)
			return
		}
		h.writeError(w, r, err)
		return
	}
	if report.FilesSeen == 0 {
		h.writeError(w, r, errs.ErrNoFiles)
		return
	}

	message := "All files processed and stored successfully."
	if len(report.FilesSkipped) > 0 || len(report.RecordsFailed) > 0 {
		message = "Files processed, some were skipped or not stored."
	}
	writeJsonResponse(w, http.StatusOK, adapter.Success(message, report))
}

// SearchAndRespondHandler godoc
// @Summary      Answer a question from indexed documents
// @Tags         Search
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      api.SearchRequest  true  "Question"
// @Success      200      {object}  api.Envelope  "Answer, or the no-context message"
// @Failure      400      {object}  api.Envelope  "Empty question"
// @Failure      502      {object}  api.Envelope  "Provider or backend failure"
// @Router       /search-and-respond [post]
func (h *Handler) SearchAndRespondHandler(w http.ResponseWriter, r *http.Request) {
	if !h.validateContext(r.Context()) {
		return
	}

	var req api.SearchRequest
	if err := h.decodeJSON(w, r, maxJSONBody, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		h.writeError(w, r, errs.Validation("question", "is required"))
		return
	}

	answer, err := h.service.Answer(r.Context(), question)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	message := "Answer generated successfully."
	if answer.NoContext {
		message = config.NoContextMessage
	}
	writeJsonResponse(w, http.StatusOK, adapter.Success(message, adapter.ToAnswerResponse(question, answer)))
}
