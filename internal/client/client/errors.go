package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/gophtasks/internal/validation"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
	Errors     validation.Errors
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed: %s", http.StatusText(e.StatusCode))
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// NetworkError means the request never produced a response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool {
	return target == ErrUnavailable
}

// AsAPIError returns the *APIError in err's chain, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func IsNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.StatusCode == http.StatusNotFound
}

// ValidationErrors returns the field errors of a 422 response.
func ValidationErrors(err error) (validation.Errors, bool) {
	apiErr, ok := AsAPIError(err)
	if !ok || apiErr.StatusCode != http.StatusUnprocessableEntity {
		return nil, false
	}
	if apiErr.Errors == nil {
		return validation.Errors{}, true
	}
	return apiErr.Errors, true
}
