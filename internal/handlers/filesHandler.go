package handlers

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/surajvast1/Doc-Manager/internal/adapter"
	"github.com/surajvast1/Doc-Manager/internal/api"
	"github.com/surajvast1/Doc-Manager/internal/domain/errs"
)

// FilesHandler godoc
// @Summary      Upload or delete files
// @Description  Uploads base64 files under user_id/context_id/name/ or deletes everything under user_id/context_id/, depending on action.
// @Tags         Files
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      api.FilesRequest  true  "Files request"
// @Success      200      {object}  api.Envelope  "Files uploaded or deleted"
// @Failure      400      {object}  api.Envelope  "Invalid request"
// @Failure      404      {object}  api.Envelope  "Nothing to delete"
// @Failure      413      {object}  api.Envelope  "Upload too large"
// @Router       /files [post]
func (h *Handler) FilesHandler(w http.ResponseWriter, r *http.Request) {
	var req api.FilesRequest
	h.handleFileCommand(w, r, &req)
}

// UploadFilesHandler godoc
// @Summary      Upload files
// @Tags         Files
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      api.UploadFilesRequest  true  "Upload request"
// @Success      200      {object}  api.Envelope  "Files uploaded"
// @Failure      400      {object}  api.Envelope  "Invalid request"
// @Failure      413      {object}  api.Envelope  "Upload too large"
// @Router       /files/upload [post]
func (h *Handler) UploadFilesHandler(w http.ResponseWriter, r *http.Request) {
	var req api.UploadFilesRequest
	h.handleFileCommand(w, r, &req)
}

// DeleteFilesHandler godoc
// @Summary      Delete files
// @Tags         Files
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      api.DeleteFilesRequest  true  "Delete request"
// @Success      200      {object}  api.Envelope  "Deleted keys"
// @Failure      404      {object}  api.Envelope  "Nothing to delete"
// @Router       /files/delete [post]
func (h *Handler) DeleteFilesHandler(w http.ResponseWriter, r *http.Request) {
	var req api.DeleteFilesRequest
	h.handleFileCommand(w, r, &req)
}

type fileCommandRequest interface {
	Command() (api.FileCommand, error)
}

func (h *Handler) handleFileCommand(w http.ResponseWriter, r *http.Request, req fileCommandRequest) {
	if !h.validateContext(r.Context()) {
		return
	}
	if err := h.decodeJSON(w, r, h.maxBodyBytes(), req); err != nil {
		h.writeError(w, r, err)
		return
	}
	cmd, err := req.Command()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	switch c := cmd.(type) {
	case api.UploadFiles:
		h.upload(w, r, c)
	case api.DeleteFiles:
		h.delete(w, r, c)
	default:
		h.writeError(w, r, errs.Validation("action", "must be upload or delete"))
	}
}

// base64 grows content by a third, plus room for the JSON around it
func (h *Handler) maxBodyBytes() int64 {
	return h.maxUploadBytes/3*4 + maxJSONBody
}

type decodedFile struct {
	key         string
	body        []byte
	contentType string
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request, cmd api.UploadFiles) {
	name := cmd.Name
	if name == "" {
		name = "default-" + h.newID()
	}
	prefix := fmt.Sprintf("%s/%s/%s/", cmd.UserID, cmd.ContextID, name)

	files := make([]decodedFile, 0, len(cmd.Files))
	var total int64
	for _, f := range cmd.Files {
		body, err := base64.StdEncoding.DecodeString(f.FileContent)
		if err != nil {
			h.writeError(w, r, errs.Validation("files", fmt.Sprintf("%s is not valid base64", f.FileName)))
			return
		}
		total += int64(len(body))
		if total > h.maxUploadBytes {
			h.writeError(w, r, &errs.ValidationError{
				Field:    "files",
				Message:  fmt.Sprintf("total upload size exceeds %d MB", h.maxUploadBytes>>20),
				TooLarge: true,
			})
			return
		}
		fileName := strings.TrimLeft(f.FileName, "/")
		files = append(files, decodedFile{
			key:         prefix + fileName,
			body:        body,
			contentType: detectContentType(fileName, body),
		})
	}

	result := api.UploadResult{Bucket: cmd.Bucket, Prefix: prefix, Files: make([]api.UploadedFile, 0, len(files))}
	for _, f := range files {
		if err := h.objects.Put(r.Context(), cmd.Bucket, f.key, f.body, f.contentType); err != nil {
			h.writeError(w, r, err)
			return
		}
		result.Files = append(result.Files, api.UploadedFile{Key: f.key, ContentType: f.contentType, Size: len(f.body)})
	}

	h.logger.WithTrace(r.Context()).Info("Uploaded files", "bucket", cmd.Bucket, "prefix", prefix, "count", len(files), "bytes", total)
	writeJsonResponse(w, http.StatusOK, adapter.Success("Files uploaded successfully", result))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request, cmd api.DeleteFiles) {
	prefix := fmt.Sprintf("%s/%s/", cmd.UserID, cmd.ContextID)
	log := h.logger.WithTrace(r.Context()).With("bucket", cmd.Bucket, "prefix", prefix)

	keys, err := h.objects.List(r.Context(), cmd.Bucket, prefix)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if len(keys) == 0 {
		WriteErrorResponse(w, http.StatusNotFound, "No files found to delete.")
		return
	}

	deleted, err := h.objects.DeleteMany(r.Context(), cmd.Bucket, keys)
	result := api.DeleteResult{Bucket: cmd.Bucket, Prefix: prefix, Deleted: deleted}
	if result.Deleted == nil {
		result.Deleted = []string{}
	}
	if err != nil {
		log.Error("Delete incomplete", "requested", len(keys), "deleted", len(deleted), "error", err)
		status, message := errs.HTTPStatus(err)
		writeJsonResponse(w, status, api.Envelope{Status: api.StatusError, Message: message, Data: result})
		return
	}

	log.Info("Deleted files", "count", len(deleted))
	writeJsonResponse(w, http.StatusOK, adapter.Success("Files successfully deleted", result))
}

// detectContentType sniffs the bytes first and falls back to the file
// extension when the content is not recognised.
func detectContentType(fileName string, body []byte) string {
	detected := mimetype.Detect(body)
	if !detected.Is("application/octet-stream") {
		return detected.String()
	}
	if byExt := mime.TypeByExtension(path.Ext(fileName)); byExt != "" {
		return byExt
	}
	return detected.String()
}
