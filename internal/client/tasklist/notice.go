package tasklist

import (
	"errors"

	"github.com/dmitrijs2005/gophtasks/internal/client/client"
	"github.com/dmitrijs2005/gophtasks/internal/validation"
)

type NoticeKind int

const (
	NoticeSuccess NoticeKind = iota
	NoticeError
	NoticeValidation
)

// Notice is a transient message for the user.
type Notice struct {
	Kind    NoticeKind
	Message string
	Fields  validation.Errors
}

type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

const (
	msgUnavailable = "Could not reach the server. Please try again."
	msgFailed      = "Something went wrong. Please try again."
)

// ErrorMessage turns a request failure into text for a notice.
func ErrorMessage(err error) string {
	if errors.Is(err, client.ErrUnavailable) {
		return msgUnavailable
	}
	if apiErr, ok := client.AsAPIError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return msgFailed
}
