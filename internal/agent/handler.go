package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-enrollment-go/internal/biometric/entity"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/pkg/apperr"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/pkg/utilities"
)

// Handler exposes the pass-through agent operations to callers.
type Handler struct {
	gw     Gateway
	logger *zap.SugaredLogger
}

func NewHandler(gw Gateway, logger *zap.SugaredLogger) *Handler {
	return &Handler{gw: gw, logger: logger}
}

// createTemplateBody accepts the agent's field names as well as camelCase;
// template_no may be a finger position or a slot name.
type createTemplateBody struct {
	TemplateNo   json.RawMessage `json:"template_no"`
	TemplateSlot json.RawMessage `json:"templateSlot"`
	CaptureType  string          `json:"capture_type"`
	CaptureMode  string          `json:"captureType"`
}

func (b createTemplateBody) toRequest() (CreateTemplateRequest, error) {
	raw := scalar(b.TemplateNo)
	if raw == "" {
		raw = scalar(b.TemplateSlot)
	}
	if raw == "" {
		return CreateTemplateRequest{}, fmt.Errorf("%w: template slot is required", apperr.ErrInvalidRequest)
	}
	slot, ok := entity.ParseTemplateSlot(raw)
	if !ok {
		return CreateTemplateRequest{}, fmt.Errorf("%w: unknown template slot %q", apperr.ErrInvalidRequest, raw)
	}
	capture := b.CaptureType
	if capture == "" {
		capture = b.CaptureMode
	}
	req := CreateTemplateRequest{Slot: slot, CaptureType: strings.TrimSpace(capture)}
	return req, req.Validate()
}

// scalar renders a JSON string or number as plain text.
func scalar(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}

func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var body createTemplateBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utilities.WriteError(w, h.logger, "create_template", fmt.Errorf("%w: invalid payload", apperr.ErrInvalidRequest))
		return
	}
	req, err := body.toRequest()
	if err != nil {
		utilities.WriteError(w, h.logger, "create_template", err)
		return
	}
	reply, err := h.gw.CreateTemplate(r.Context(), req)
	h.reply(w, "create_template", reply, err)
}

func (h *Handler) MatchTemplates(w http.ResponseWriter, r *http.Request) {
	h.passThrough(w, r, "match_templates", h.gw.MatchTemplates)
}

func (h *Handler) Identify(w http.ResponseWriter, r *http.Request) {
	h.passThrough(w, r, "identify", h.gw.Identify)
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	h.passThrough(w, r, "device_status", h.gw.GetStatus)
}

func (h *Handler) InitDevice(w http.ResponseWriter, r *http.Request) {
	h.passThrough(w, r, "init_device", h.gw.InitDevice)
}

func (h *Handler) SetConfig(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		utilities.WriteError(w, h.logger, "config", fmt.Errorf("%w: unreadable body", apperr.ErrInvalidRequest))
		return
	}
	if err := ValidateOptions(body); err != nil {
		utilities.WriteError(w, h.logger, "config", err)
		return
	}
	reply, err := h.gw.SetConfig(r.Context(), json.RawMessage(body))
	h.reply(w, "config", reply, err)
}

func (h *Handler) passThrough(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context) (json.RawMessage, error)) {
	reply, err := fn(r.Context())
	h.reply(w, op, reply, err)
}

func (h *Handler) reply(w http.ResponseWriter, op string, reply json.RawMessage, err error) {
	if err != nil {
		utilities.WriteError(w, h.logger, op, err)
		return
	}
	utilities.WriteRaw(w, http.StatusOK, reply)
}
