package templates

import (
	"context"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-enrollment-go/internal/biometric/entity"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/pkg/metrics"
)

// Source yields every stored identity with its template set.
type Source interface {
	ListIdentities(ctx context.Context) ([]entity.Identity, error)
}

// Aggregator derives one combined matching template per identity. It never
// writes and keeps no state between calls.
type Aggregator struct {
	src     Source
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
}

func NewAggregator(src Source, logger *zap.SugaredLogger, m *metrics.Metrics) *Aggregator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Aggregator{src: src, logger: logger, metrics: m}
}

// ListCombinedTemplates returns one record per identity in id order. An
// identity without any template still yields a record with an empty
// template; no identities yields an empty, non-nil slice.
func (a *Aggregator) ListCombinedTemplates(ctx context.Context) ([]entity.CombinedTemplate, error) {
	identities, err := a.src.ListIdentities(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.CombinedTemplate, 0, len(identities))
	for _, id := range identities {
		out = append(out, entity.CombinedTemplate{
			IdentityID: id.ID,
			IDNumber:   id.IDNumber,
			Name:       id.Name,
			Template:   id.Templates.Combined(),
		})
	}
	a.metrics.AddTemplatesListed(len(out))
	a.logger.Debugw("combined templates listed", "count", len(out))
	return out, nil
}
