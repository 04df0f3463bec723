package transport

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by Send when the channel is not connected. The caller
// is responsible for surfacing the failure; nothing is queued or retried.
var ErrClosed = errors.New("transport: channel closed")

// CallError is a descriptive error string carried inside an ack payload. On
// the server it marks a validation failure that must be resolved to the
// caller rather than thrown across the connection; on the client it is the
// decoded form of a string-shaped response.
type CallError struct {
	Message string
}

func (e *CallError) Error() string { return e.Message }

// Errorf builds a CallError.
func Errorf(format string, args ...any) error {
	return &CallError{Message: fmt.Sprintf(format, args...)}
}
