package handlers

import (
	"encoding/json"
	"net/http"

	"interview-dashboard/internal/logger"
	"interview-dashboard/internal/models"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// SubmitResponse is the body returned by POST /submit
type SubmitResponse struct {
	Status                 string                `json:"status"`
	Message                string                `json:"message"`
	Profile                *models.ProfileRecord `json:"profile,omitempty"`
	FormattedPromptPreview string                `json:"formatted_prompt_preview,omitempty"`
	RunID                  string                `json:"run_id,omitempty"`
}

// WriteJSON writes data as JSON with the given status code
func WriteJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(data); err != nil {
		logger.Warn("Failed to write response", "error", err)
	}
}

// WriteError writes an error envelope
func WriteError(w http.ResponseWriter, code int, message string) {
	WriteJSON(w, code, SubmitResponse{Status: statusError, Message: message})
}
