// Package apperr holds the failure taxonomy shared by the enrollment core.
//
// Components return these sentinels, usually wrapped with context, and the
// HTTP layer translates them with HTTPStatus and Message. Agent failures are
// reported as *agent.Error values that match the agent sentinels via errors.Is.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrAgentUnreachable   = errors.New("capture agent unreachable")
	ErrAgentTimeout       = errors.New("capture agent timed out")
	ErrAgentError         = errors.New("capture agent reported failure")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrIncompletePayload  = errors.New("incomplete enrollment payload")
	ErrDuplicateIdentity  = errors.New("identity already enrolled")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrPayloadRejected    = errors.New("enrollment payload rejected")
	ErrNotFound           = errors.New("not found")
)

// HTTPStatus maps an error onto the status code reported to callers.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrIncompletePayload),
		errors.Is(err, ErrPayloadRejected):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateIdentity):
		return http.StatusConflict
	case errors.Is(err, ErrAgentUnreachable), errors.Is(err, ErrAgentTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// messenger is implemented by errors that carry a caller-safe message, such
// as the failure text reported by the capture agent.
type messenger interface {
	PublicMessage() string
}

// Message returns the text shown to callers. Storage and unknown failures
// collapse to a generic message so driver details never leak.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var m messenger
	if errors.As(err, &m) {
		if msg := m.PublicMessage(); msg != "" {
			return msg
		}
	}
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrIncompletePayload),
		errors.Is(err, ErrPayloadRejected),
		errors.Is(err, ErrDuplicateIdentity),
		errors.Is(err, ErrNotFound):
		return err.Error()
	case errors.Is(err, ErrAgentUnreachable):
		return "fingerprint capture agent is not running"
	case errors.Is(err, ErrAgentTimeout):
		return "fingerprint capture agent did not respond in time"
	case errors.Is(err, ErrAgentError):
		return "fingerprint capture agent reported an error"
	case errors.Is(err, ErrStorageUnavailable):
		return "failed to access enrollment storage"
	default:
		return "internal server error"
	}
}
