package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lvillar/offerdeck"
	"github.com/lvillar/offerdeck/ai"
	"github.com/lvillar/offerdeck/model"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	})
}

// writeFailure maps a domain error to a status and error code.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.Is(err, offerdeck.ErrBusy):
		writeError(w, r, err.Error(), "BUSY", http.StatusConflict)
	case errors.Is(err, offerdeck.ErrAIDisabled):
		writeError(w, r, err.Error(), "AI_DISABLED", http.StatusServiceUnavailable)
	case errors.Is(err, offerdeck.ErrInvalidParam), errors.Is(err, ai.ErrEmptyInput), errors.Is(err, model.ErrBadDataURL):
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
	case errors.Is(err, model.ErrNotImage):
		writeError(w, r, err.Error(), "UNSUPPORTED_TYPE", http.StatusUnsupportedMediaType)
	case errors.Is(err, model.ErrImageTooLarge), errors.As(err, &maxBytesErr):
		writeError(w, r, err.Error(), "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
	case errors.Is(err, ai.ErrNoImage), errors.Is(err, ai.ErrEmptyReply):
		writeError(w, r, err.Error(), "AI_NO_RESULT", http.StatusBadGateway)
	case errors.Is(err, offerdeck.ErrExport):
		writeError(w, r, err.Error(), "EXPORT_FAILED", http.StatusInternalServerError)
	default:
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON decodes the body into v, writing a 400 or 413 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
