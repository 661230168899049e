package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"commuter/internal/domain"
)

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondResult writes payload wrapped in the result envelope. An empty
// message keeps the default one for code.
func respondResult(w http.ResponseWriter, code domain.ResultCode, payload any, message string) {
	result := domain.NewResult(payload, code, message)
	respondJSON(w, result.Meta.Status, result)
}

func respondOK(w http.ResponseWriter, payload any) {
	respondResult(w, domain.CodeSuccess, payload, "")
}

// respondUnknown logs err and answers with the generic failure envelope.
func respondUnknown(w http.ResponseWriter, logger *slog.Logger, r *http.Request, err error) {
	logger.Error("request failed", "path", r.URL.Path, "error", err)
	respondResult(w, domain.CodeUnknownError, nil, "")
}
