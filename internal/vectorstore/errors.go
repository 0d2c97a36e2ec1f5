package vectorstore

import (
	"errors"
	"fmt"
)

var (
	// ErrBackendUnavailable indicates that initialization or a required
	// remote call could not reach or configure the backend. Fatal to the
	// adapter instance.
	ErrBackendUnavailable = errors.New("vector backend unavailable")

	// ErrCapabilityUnavailable indicates an extended operation was invoked
	// while the optional extension is absent and no safe fallback exists.
	ErrCapabilityUnavailable = errors.New("capability unavailable")
)

// RemoteError is a non-success HTTP response on a required backend call.
// It carries the status code, response body, and backend/collection context
// so failures are diagnosable without re-running the request.
type RemoteError struct {
	// Backend is the backend discriminator ("vectra", "chroma", ...).
	Backend string
	// Op is the logical operation that failed ("insert", "query", ...).
	Op string
	// Collection is the logical collection id involved, if any.
	Collection string
	// Status is the HTTP status code returned by the remote.
	Status int
	// Body is the response body, truncated for logging.
	Body string
}

// maxErrBodyLen bounds how much of a response body is kept on a RemoteError.
const maxErrBodyLen = 512

// NewRemoteError builds a RemoteError, truncating the body to a loggable size.
func NewRemoteError(backend, op, collection string, status int, body []byte) *RemoteError {
	b := string(body)
	if len(b) > maxErrBodyLen {
		b = b[:maxErrBodyLen] + "..."
	}
	return &RemoteError{
		Backend:    backend,
		Op:         op,
		Collection: collection,
		Status:     status,
		Body:       b,
	}
}

// Error formats the failure with full backend and collection context.
func (e *RemoteError) Error() string {
	if e.Collection == "" {
		return fmt.Sprintf("%s: %s failed: HTTP %d: %s", e.Backend, e.Op, e.Status, e.Body)
	}
	return fmt.Sprintf("%s: %s failed for collection %q: HTTP %d: %s", e.Backend, e.Op, e.Collection, e.Status, e.Body)
}
