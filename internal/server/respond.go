package server

import (
	"encoding/json"
	"net/http"
)

// Error codes shared with the client.
const (
	codeMissingFields      = "MISSING_FIELDS"
	codeInvalidAccountType = "INVALID_ACCOUNT_TYPE"
	codeDuplicateAccount   = "DUPLICATE_ACCOUNT"
	codeInvalidAmount      = "INVALID_AMOUNT"
	codeInvalidDate        = "INVALID_DATE"
	codeSameAccounts       = "SAME_ACCOUNTS"
	codeNotFound           = "NOT_FOUND"
	codeDatabaseError      = "DATABASE_ERROR"
)

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Err     string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func respondData(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, envelope{Success: true, Data: data, Message: message})
}

func respondError(w http.ResponseWriter, status int, errMsg, code string) {
	writeJSON(w, status, envelope{Success: false, Err: errMsg, Code: code})
}
