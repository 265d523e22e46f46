package httputil

import (
	"net/http"

	"github.com/AdamBeresnev/bracket-admin/internal/apperr"
	"github.com/AdamBeresnev/bracket-admin/internal/logger"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.InvalidState:
		return http.StatusConflict
	case apperr.InvalidInput:
		return http.StatusBadRequest
	case apperr.Unauthorized:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// Error writes a plain text error for page and htmx requests.
func Error(w http.ResponseWriter, msg string, err error) {
	status := StatusFor(err)
	logFailure(status, msg, err)
	http.Error(w, apperr.Message(err), status)
}

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	logger.Error(msg, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		logger.Warn("bad request", "message", msg, "error", err)
	} else {
		logger.Warn("bad request", "message", msg)
	}
	http.Error(w, msg, http.StatusBadRequest)
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		logger.Warn("not found", "message", msg, "error", err)
	} else {
		logger.Warn("not found", "message", msg)
	}
	http.Error(w, msg, http.StatusNotFound)
}

func logFailure(status int, msg string, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error(msg, "error", err)
		return
	}
	logger.Warn(msg, "status", status, "error", err)
}
