package errs

import (
	"context"
	"errors"
	"net/http"
)

// HTTPStatus maps an error to a status code and a message that is safe to
// return to clients. Provider and backend details stay in the logs.
func HTTPStatus(err error) (int, string) {
	var (
		valErr     *ValidationError
		storageErr *StorageError
		indexErr   *IndexError
		embErr     *EmbeddingError
		complErr   *CompletionError
		extractErr *ExtractionError
	)

	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.As(err, &valErr):
		if valErr.TooLarge {
			return http.StatusRequestEntityTooLarge, valErr.Error()
		}
		return http.StatusBadRequest, valErr.Error()
	case errors.Is(err, ErrNoFiles):
		return http.StatusNotFound, "No files found in the folder."
	case errors.As(err, &storageErr):
		switch storageErr.Kind {
		case StorageNotFound:
			return http.StatusNotFound, "The requested bucket or object does not exist."
		case StorageAccessDenied:
			return http.StatusForbidden, "Access to the storage bucket was denied."
		}
		return http.StatusBadGateway, "Object storage request failed."
	case errors.As(err, &indexErr):
		return http.StatusBadGateway, "Search index request failed."
	case errors.As(err, &embErr):
		return http.StatusBadGateway, "Embedding provider request failed."
	case errors.As(err, &complErr):
		return http.StatusBadGateway, "Completion provider request failed."
	case errors.As(err, &extractErr), errors.Is(err, ErrUnsupportedFormat):
		return http.StatusUnprocessableEntity, "The file could not be read."
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "The request timed out."
	}
	return http.StatusInternalServerError, "Internal Server Error"
}

// Retryable reports whether repeating the same request may succeed.
func Retryable(err error) bool {
	var (
		storageErr *StorageError
		indexErr   *IndexError
		embErr     *EmbeddingError
	)
	switch {
	case errors.As(err, &embErr):
		return embErr.Retryable
	case errors.As(err, &storageErr):
		return storageErr.Kind == StorageOther
	case errors.As(err, &indexErr):
		return true
	case errors.Is(err, context.DeadlineExceeded):
		return true
	}
	return false
}
