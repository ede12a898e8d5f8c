package tasklist

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/gophtasks/internal/client/client"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"network", &client.NetworkError{Op: "GET /tasks", Err: errors.New("refused")}, msgUnavailable},
		{"api with message", &client.APIError{StatusCode: http.StatusNotFound, Message: "Task not found."}, "Task not found."},
		{"api without message", &client.APIError{StatusCode: http.StatusInternalServerError}, msgFailed},
		{"other", errors.New("boom"), msgFailed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ErrorMessage(tc.err))
		})
	}
}
