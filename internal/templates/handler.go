package templates

import (
	"encoding/base64"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-enrollment-go/pkg/utilities"
)

// Handler serves the combined template list to matchers.
type Handler struct {
	agg    *Aggregator
	logger *zap.SugaredLogger
}

func NewHandler(agg *Aggregator, logger *zap.SugaredLogger) *Handler {
	return &Handler{agg: agg, logger: logger}
}

// TemplateRecord is one entry of the list response.
type TemplateRecord struct {
	UserID                 int64  `json:"user_id"`
	IDNumber               string `json:"id_number"`
	Name                   string `json:"name"`
	CombinedTemplateBase64 string `json:"combined_template_base64"`
}

// ListResponse wraps the records of every enrolled identity.
type ListResponse struct {
	Success bool             `json:"success"`
	Data    []TemplateRecord `json:"data"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	combined, err := h.agg.ListCombinedTemplates(r.Context())
	if err != nil {
		utilities.WriteError(w, h.logger, "get_all_templates", err)
		return
	}
	data := make([]TemplateRecord, 0, len(combined))
	for _, c := range combined {
		data = append(data, TemplateRecord{
			UserID:                 c.IdentityID,
			IDNumber:               c.IDNumber,
			Name:                   c.Name,
			CombinedTemplateBase64: base64.StdEncoding.EncodeToString(c.Template),
		})
	}
	utilities.WriteJSON(w, http.StatusOK, ListResponse{Success: true, Data: data})
}
