package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type agentish struct{ msg string }

func (a agentish) Error() string         { return "agent: " + a.msg }
func (a agentish) PublicMessage() string { return a.msg }
func (a agentish) Unwrap() error         { return ErrAgentError }

func TestHTTPStatus(t *testing.T) {
	cases := map[error]int{
		nil:                                           http.StatusOK,
		fmt.Errorf("name: %w", ErrInvalidRequest):     http.StatusBadRequest,
		ErrIncompletePayload:                          http.StatusBadRequest,
		ErrPayloadRejected:                            http.StatusBadRequest,
		ErrNotFound:                                   http.StatusNotFound,
		fmt.Errorf("%w: ID-1", ErrDuplicateIdentity):  http.StatusConflict,
		ErrAgentUnreachable:                           http.StatusServiceUnavailable,
		ErrAgentTimeout:                               http.StatusServiceUnavailable,
		ErrAgentError:                                 http.StatusInternalServerError,
		fmt.Errorf("tx: %w", ErrStorageUnavailable):   http.StatusInternalServerError,
		errors.New("boom"):                            http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, HTTPStatus(err), "error %v", err)
	}
}

func TestMessageHidesStorageDetail(t *testing.T) {
	err := fmt.Errorf("insert identity: %w: %w", ErrStorageUnavailable, errors.New("disk I/O error"))
	assert.Equal(t, "failed to access enrollment storage", Message(err))
	assert.Equal(t, "internal server error", Message(errors.New("secret detail")))
}

func TestMessagePrefersPublicMessage(t *testing.T) {
	err := fmt.Errorf("start enrollment: %w", agentish{msg: "sensor not initialised"})
	assert.Equal(t, "sensor not initialised", Message(err))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
}

func TestMessageKeepsDuplicateContext(t *testing.T) {
	err := fmt.Errorf("%w: ID-001", ErrDuplicateIdentity)
	assert.Equal(t, "identity already enrolled: ID-001", Message(err))
}
