package enrollment

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-enrollment-go/pkg/apperr"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/pkg/utilities"
)

// Handler exposes HTTP endpoints for enrollment start, finalize and removal.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handler{svc: svc, logger: logger}
}

// SaveRequest request body for the save endpoint.
type SaveRequest struct {
	Name     string `json:"name"`
	IDNumber string `json:"idNumber"`
}

// SaveResponse acknowledges a stored enrollment.
type SaveResponse struct {
	Success bool   `json:"success"`
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

type ackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	reply, err := h.svc.Start(r.Context())
	if err != nil {
		utilities.WriteError(w, h.logger, "start_enrollment", err)
		return
	}
	utilities.WriteRaw(w, http.StatusOK, reply)
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid save payload", "err", err)
		utilities.WriteError(w, h.logger, "save_enrollment", fmt.Errorf("%w: invalid payload", apperr.ErrInvalidRequest))
		return
	}
	res, err := h.svc.Finalize(r.Context(), req.Name, req.IDNumber)
	if err != nil {
		utilities.WriteError(w, h.logger, "save_enrollment", err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, SaveResponse{
		Success: true,
		ID:      res.ID,
		Message: fmt.Sprintf("data for %s saved with id %d", res.Name, res.ID),
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		utilities.WriteError(w, h.logger, "delete_identity", fmt.Errorf("%w: invalid identity id", apperr.ErrInvalidRequest))
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		utilities.WriteError(w, h.logger, "delete_identity", err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, ackResponse{Success: true, Message: fmt.Sprintf("identity %d deleted", id)})
}
