package rest

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/gophtasks/internal/validation"
)

// Messages sent to clients. Internal causes never appear here.
const (
	msgUnauthenticated    = "Unauthenticated."
	msgBadCredentials     = "The provided credentials are incorrect."
	msgMalformedBody      = "The request body is not valid JSON."
	msgTaskNotFound       = "Task not found."
	msgUnexpected         = "An unexpected error occurred."
	msgTooManyAttempts    = "Too Many Attempts."
	msgLoggedOut          = "Logged out successfully"
	msgTasksFetched       = "Tasks fetched successfully"
	msgTaskFetched        = "Task fetched successfully"
	msgTaskCreated        = "Task created successfully"
	msgTaskUpdated        = "Task updated successfully"
	msgTaskDeleted        = "Task deleted successfully"
	msgServiceUnavailable = "Service unavailable."
)

// ErrorBody is the JSON shape of every non-2xx response. Errors is only
// present for validation failures.
type ErrorBody struct {
	Message string            `json:"message"`
	Errors  validation.Errors `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorBody{Message: message})
}

// writeValidation answers 422 with the field map. The summary message
// repeats the first failure and counts the rest.
func writeValidation(w http.ResponseWriter, errs validation.Errors) {
	writeJSON(w, http.StatusUnprocessableEntity, ErrorBody{Message: summarize(errs), Errors: errs})
}

func summarize(errs validation.Errors) string {
	fields := errs.Fields()
	if len(fields) == 0 {
		return "The given data was invalid."
	}

	total := 0
	for _, f := range fields {
		total += len(errs[f])
	}

	first := errs.First(fields[0])
	switch rest := total - 1; rest {
	case 0:
		return first
	case 1:
		return fmt.Sprintf("%s (and 1 more error)", first)
	default:
		return fmt.Sprintf("%s (and %d more errors)", first, rest)
	}
}
