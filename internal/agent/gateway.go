package agent

//go:generate mockgen -source=gateway.go -destination=mocks/mocks.go -package=mocks Gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ovaphlow/pitchfork/service-enrollment-go/internal/biometric/entity"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/pkg/apperr"
)

// Gateway is the request/response side of the external capture agent. The
// agent owns all sensor work; replies of pass-through operations are returned
// to callers unmodified.
type Gateway interface {
	StartEnrollment(ctx context.Context) (json.RawMessage, error)
	FetchEnrollmentData(ctx context.Context) (*entity.EnrollmentPayload, error)
	CreateTemplate(ctx context.Context, req CreateTemplateRequest) (json.RawMessage, error)
	MatchTemplates(ctx context.Context) (json.RawMessage, error)
	Identify(ctx context.Context) (json.RawMessage, error)
	GetStatus(ctx context.Context) (json.RawMessage, error)
	SetConfig(ctx context.Context, options json.RawMessage) (json.RawMessage, error)
	InitDevice(ctx context.Context) (json.RawMessage, error)
}

// CreateTemplateRequest asks the agent to (re)capture a single slot.
type CreateTemplateRequest struct {
	Slot        entity.TemplateSlot
	CaptureType string
}

// Validate checks the request shape only; capture modes are agent-defined.
func (r CreateTemplateRequest) Validate() error {
	if !r.Slot.Valid() {
		return fmt.Errorf("%w: unknown template slot %q", apperr.ErrInvalidRequest, r.Slot)
	}
	if strings.TrimSpace(r.CaptureType) == "" {
		return fmt.Errorf("%w: capture type is required", apperr.ErrInvalidRequest)
	}
	return nil
}

// ValidateOptions accepts any well-formed JSON object.
func ValidateOptions(options json.RawMessage) error {
	trimmed := strings.TrimSpace(string(options))
	if trimmed == "" || trimmed == "null" {
		return fmt.Errorf("%w: configuration payload is required", apperr.ErrInvalidRequest)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return fmt.Errorf("%w: configuration payload must be a JSON object", apperr.ErrInvalidRequest)
	}
	return nil
}

// Error is a normalized agent failure. Kind is one of apperr.ErrAgentUnreachable,
// apperr.ErrAgentTimeout or apperr.ErrAgentError.
type Error struct {
	Op      string
	Kind    error
	Status  int    // agent HTTP status, 0 when no response was received
	Message string // failure text reported by the agent, if any
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "agent %s: %v", e.Op, e.Kind)
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// PublicMessage exposes the agent's own failure text to callers.
func (e *Error) PublicMessage() string {
	if e.Kind == apperr.ErrAgentError {
		return e.Message
	}
	return ""
}
