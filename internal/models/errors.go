package models

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the structured error envelope for every terminal
// failure. Suggestions give the analyst something actionable instead of a
// raw error chain.
type ErrorResponse struct {
	Error       string   `json:"error"`
	ErrorType   string   `json:"error_type"`
	Suggestions []string `json:"suggestions"`
}

func WriteError(w http.ResponseWriter, code int, resp ErrorResponse) {
	if resp.Suggestions == nil {
		resp.Suggestions = []string{}
	}
	WriteJSON(w, code, resp)
}

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
