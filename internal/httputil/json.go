package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/AdamBeresnev/bracket-admin/internal/api"
	"github.com/AdamBeresnev/bracket-admin/internal/logger"
)

func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("failed to write response", "error", err)
	}
}

// JSON answers with {"success": true, "data": ...}.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	WriteJSON(w, status, api.OK(data))
}

// JSONError answers with the error's kind and caller-facing message. The
// underlying error is only logged.
func JSONError(w http.ResponseWriter, msg string, err error) {
	status := StatusFor(err)
	logFailure(status, msg, err)
	WriteJSON(w, status, api.Fail(err))
}
