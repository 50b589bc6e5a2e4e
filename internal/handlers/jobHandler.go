package handlers

import (
	"net/http"

	"github.com/surajvast1/Doc-Manager/internal/adapter"
	"github.com/surajvast1/Doc-Manager/internal/adapter/utils"
	"github.com/surajvast1/Doc-Manager/internal/api"
)

func (h *Handler) submitRun(w http.ResponseWriter, r *http.Request, req api.ProcessFilesRequest) {
	queued, err := h.jobs.Submit(r.Context(), req.BucketName, req.FolderPath, traceID(r.Context()))
	if err != nil {
		h.logger.WithTrace(r.Context()).Error("Couldn't queue run", "error", err)
		WriteErrorResponse(w, http.StatusServiceUnavailable, "The run could not be queued, try again later.")
		return
	}
	writeJsonResponse(w, http.StatusAccepted, adapter.Success("Run queued.", adapter.ToInitRunResponse(queued.Id)))
}

// GetRunHandler godoc
// @Summary      Get run status
// @Description  Returns the stored state of an asynchronous ingestion run, including its report once finished.
// @Tags         Ingestion
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Run ID"
// @Success      200  {object}  api.Envelope  "Run status"
// @Failure      404  {object}  api.Envelope  "Run not found"
// @Router       /runs/{id} [get]
func (h *Handler) GetRunHandler(w http.ResponseWriter, r *http.Request) {
	if !h.validateContext(r.Context()) {
		return
	}
	if h.jobs == nil {
		WriteErrorResponse(w, http.StatusNotFound, "Run not found")
		return
	}

	id := utils.GetChiURLParam(r, "id")
	h.logger.WithTrace(r.Context()).Debug("Get run request", "URL path", r.URL.Path)

	run, isFound := h.jobs.Status(r.Context(), id)
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, "Run not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.Success("Run status.", adapter.ToRunResponse(run)))
}
