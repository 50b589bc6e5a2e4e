package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/surajvast1/Doc-Manager/internal/adapter"
	"github.com/surajvast1/Doc-Manager/internal/config"
	"github.com/surajvast1/Doc-Manager/internal/domain/errs"
	"github.com/surajvast1/Doc-Manager/pkg/logger_i"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logger_i.NewLogger("RequestHandler").Error("Error encoding response", "error", err)
	}
}

// WriteErrorResponse writes an error envelope. The middleware uses it too.
func WriteErrorResponse(w http.ResponseWriter, httpCode int, message string) {
	writeJsonResponse(w, httpCode, adapter.Failure(message))
}

// writeError maps err onto a status code and a client-safe message. The
// full error only goes to the log.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	h.writeErrorWithData(w, r, err, nil)
}

// writeErrorWithData is writeError carrying whatever partial result the
// failed call still produced.
func (h *Handler) writeErrorWithData(w http.ResponseWriter, r *http.Request, err error, data any) {
	status, message := errs.HTTPStatus(err)
	log := h.logger.WithTrace(r.Context()).With("path", r.URL.Path, "status", status)
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", "error", err)
	} else {
		log.Warn("Request rejected", "error", err)
	}
	env := adapter.Failure(message)
	env.Data = data
	writeJsonResponse(w, status, env)
}

func traceID(ctx context.Context) string {
	if trace, ok := ctx.Value(config.TRACE_ID_KEY).(string); ok {
		return trace
	}
	return ""
}

func (h *Handler) validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		h.logger.WithTrace(ctx).Warn("context error", "error", ctx.Err())
		return false
	}
	return true
}

// decodeJSON reads at most limit bytes of JSON into dst.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dst any) error {
	body := http.MaxBytesReader(w, r.Body, limit)
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			h.logger.Error("Couldn't close the request body", "error", err)
		}
	}(body)

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &errs.ValidationError{Message: "request body is too large", TooLarge: true}
		}
		return errs.Validation("body", "must be valid JSON")
	}
	return nil
}
