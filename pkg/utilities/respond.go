package utilities

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-enrollment-go/pkg/apperr"
)

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteRaw writes an already encoded JSON document, such as an agent reply.
func WriteRaw(w http.ResponseWriter, status int, raw json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(raw)
}

// Failure is the body of every failed call.
type Failure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// WriteError maps err through the apperr taxonomy. Server-side failures are
// logged at error level, caller mistakes at debug.
func WriteError(w http.ResponseWriter, logger *zap.SugaredLogger, op string, err error) {
	status := apperr.HTTPStatus(err)
	if logger != nil {
		if status >= http.StatusInternalServerError {
			logger.Errorw(op+" failed", "status", status, "err", err)
		} else {
			logger.Debugw(op+" rejected", "status", status, "err", err)
		}
	}
	WriteJSON(w, status, Failure{Success: false, Message: apperr.Message(err)})
}
