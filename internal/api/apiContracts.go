package api

import (
	"strings"
	"time"

	"github.com/surajvast1/Doc-Manager/internal/domain/commonModels"
	"github.com/surajvast1/Doc-Manager/internal/domain/errs"
)

type EnvelopeStatus string

const (
	StatusSuccess EnvelopeStatus = "success"
	StatusError   EnvelopeStatus = "error"
)

// Envelope wraps every response body.
type Envelope struct {
	Status  EnvelopeStatus `json:"status" example:"success"`
	Message string         `json:"message" example:"Files uploaded successfully."`
	Data    any            `json:"data,omitempty"`
}

// requests---------------------

type FileAction string

const (
	ActionUpload FileAction = "upload"
	ActionDelete FileAction = "delete"
)

type FilePayload struct {
	FileName    string `json:"file_name" example:"handbook.pdf"`
	FileContent string `json:"file_content" example:"JVBERi0xLjQK..."`
}

// FilesRequest is the untyped body of POST /files. Command turns it into
// one of the FileCommand variants.
type FilesRequest struct {
	BucketName string        `json:"bucket_name" validate:"required" example:"docs-bucket"`
	UserID     string        `json:"user_id" validate:"required" example:"user_42"`
	ContextID  string        `json:"context_id" validate:"required" example:"ctx_7"`
	Name       string        `json:"name,omitempty" example:"onboarding"`
	Files      []FilePayload `json:"files,omitempty"`
	Action     FileAction    `json:"action" validate:"required" example:"upload"`
}

type UploadFilesRequest struct {
	BucketName string        `json:"bucket_name" validate:"required"`
	UserID     string        `json:"user_id" validate:"required"`
	ContextID  string        `json:"context_id" validate:"required"`
	Name       string        `json:"name,omitempty"`
	Files      []FilePayload `json:"files" validate:"required"`
}

type DeleteFilesRequest struct {
	BucketName string `json:"bucket_name" validate:"required"`
	UserID     string `json:"user_id" validate:"required"`
	ContextID  string `json:"context_id" validate:"required"`
}

// FileCommand is either UploadFiles or DeleteFiles.
type FileCommand interface {
	fileCommand()
}

type UploadFiles struct {
	Bucket    string
	UserID    string
	ContextID string
	Name      string
	Files     []FilePayload
}

type DeleteFiles struct {
	Bucket    string
	UserID    string
	ContextID string
}

func (UploadFiles) fileCommand() {}
func (DeleteFiles) fileCommand() {}

// Command validates the request and returns the variant named by Action.
func (r FilesRequest) Command() (FileCommand, error) {
	switch FileAction(strings.ToLower(string(r.Action))) {
	case ActionUpload:
		return UploadFilesRequest{
			BucketName: r.BucketName,
			UserID:     r.UserID,
			ContextID:  r.ContextID,
			Name:       r.Name,
			Files:      r.Files,
		}.Command()
	case ActionDelete:
		return DeleteFilesRequest{BucketName: r.BucketName, UserID: r.UserID, ContextID: r.ContextID}.Command()
	case "":
		return nil, errs.Validation("action", "is required")
	default:
		return nil, errs.Validation("action", "must be upload or delete")
	}
}

func (r UploadFilesRequest) Command() (FileCommand, error) {
	if err := requireOwner(r.BucketName, r.UserID, r.ContextID); err != nil {
		return nil, err
	}
	if len(r.Files) == 0 {
		return nil, errs.Validation("files", "at least one file is required")
	}
	for _, f := range r.Files {
		if strings.TrimSpace(f.FileName) == "" {
			return nil, errs.Validation("files", "file_name is required")
		}
	}
	return UploadFiles{
		Bucket:    r.BucketName,
		UserID:    r.UserID,
		ContextID: r.ContextID,
		Name:      strings.TrimSpace(r.Name),
		Files:     r.Files,
	}, nil
}

func (r DeleteFilesRequest) Command() (FileCommand, error) {
	if err := requireOwner(r.BucketName, r.UserID, r.ContextID); err != nil {
		return nil, err
	}
	return DeleteFiles{Bucket: r.BucketName, UserID: r.UserID, ContextID: r.ContextID}, nil
}

func requireOwner(bucket, userID, contextID string) error {
	switch {
	case strings.TrimSpace(bucket) == "":
		return errs.Validation("bucket_name", "is required")
	case strings.TrimSpace(userID) == "":
		return errs.Validation("user_id", "is required")
	case strings.TrimSpace(contextID) == "":
		return errs.Validation("context_id", "is required")
	}
	return nil
}

type ProcessFilesRequest struct {
	BucketName string `json:"bucket_name" validate:"required" example:"docs-bucket"`
	FolderPath string `json:"folder_path" example:"user_42/ctx_7/"`
	Async      bool   `json:"async,omitempty" example:"false"`
}

type SearchRequest struct {
	Question string `json:"question" validate:"required" example:"What is the refund window?"`
}

// responses---------------------

type UploadedFile struct {
	Key         string `json:"key" example:"user_42/ctx_7/onboarding/handbook.pdf"`
	ContentType string `json:"content_type" example:"application/pdf"`
	Size        int    `json:"size" example:"48213"`
}

type UploadResult struct {
	Bucket string         `json:"bucket_name"`
	Prefix string         `json:"prefix"`
	Files  []UploadedFile `json:"files"`
}

type DeleteResult struct {
	Bucket  string   `json:"bucket_name"`
	Prefix  string   `json:"prefix"`
	Deleted []string `json:"deleted"`
}

type InitRunResponse struct {
	RunId     string `json:"run_id" example:"4f1c2a9e-..."`
	StatusURL string `json:"status_url" example:"/runs/4f1c2a9e-..."`
}

type RunOutgoingError struct {
	Code    int    `json:"code" example:"502"`
	Message string `json:"message" example:"Search backend request failed."`
	Retry   bool   `json:"can_retry" example:"true"`
}

type RunResponse struct {
	Id          string                     `json:"id"`
	Status      string                     `json:"status" example:"COMPLETE"`
	CurrentStep string                     `json:"current_step" example:"Done"`
	Report      *commonModels.IngestReport `json:"report,omitempty"`
	Error       *RunOutgoingError          `json:"error,omitempty"`
	StartTime   time.Time                  `json:"start_time"`
	EndTime     time.Time                  `json:"end_time,omitempty"`
}

type AnswerResponse struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources"`
}
