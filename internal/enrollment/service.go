package enrollment

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-enrollment-go/internal/agent"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/internal/biometric/entity"
	enrollmentrepo "github.com/ovaphlow/pitchfork/service-enrollment-go/internal/enrollment/repo"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/pkg/apperr"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/pkg/metrics"
)

// Store is the transactional persistence the service needs.
type Store interface {
	Save(ctx context.Context, name, idNumber string, p *entity.EnrollmentPayload) (entity.SaveResult, error)
	Delete(ctx context.Context, id int64) error
}

var _ Store = (*enrollmentrepo.EnrollmentRepo)(nil)

// Service orchestrates enrollment: start capture on the agent, then fetch,
// validate and persist the result.
type Service struct {
	gw      agent.Gateway
	store   Store
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
}

func NewService(gw agent.Gateway, store Store, logger *zap.SugaredLogger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{gw: gw, store: store, logger: logger, metrics: m}
}

// Start asks the agent to begin a capture session and returns its acknowledgement.
func (s *Service) Start(ctx context.Context) (json.RawMessage, error) {
	return s.gw.StartEnrollment(ctx)
}

// Finalize fetches the completed capture from the agent and stores it under
// name and idNumber. Nothing is written unless the payload is complete.
func (s *Service) Finalize(ctx context.Context, name, idNumber string) (entity.SaveResult, error) {
	name = strings.TrimSpace(name)
	idNumber = strings.TrimSpace(idNumber)
	if name == "" || idNumber == "" {
		s.metrics.IncrementEnrollment("invalid")
		return entity.SaveResult{}, fmt.Errorf("%w: name and idNumber are required", apperr.ErrInvalidRequest)
	}

	payload, err := s.gw.FetchEnrollmentData(ctx)
	if err != nil {
		s.metrics.IncrementEnrollment("agent_error")
		return entity.SaveResult{}, err
	}
	if err := Validate(payload); err != nil {
		s.metrics.IncrementEnrollment("incomplete")
		s.logger.Warnw("rejecting incomplete enrollment", "id_number", idNumber, "err", err)
		return entity.SaveResult{}, err
	}

	res, err := s.store.Save(ctx, name, idNumber, payload)
	if err != nil {
		s.metrics.IncrementEnrollment(saveOutcome(err))
		return entity.SaveResult{}, err
	}
	s.metrics.IncrementEnrollment("saved")
	s.logger.Infow("enrollment saved", "id", res.ID, "id_number", idNumber,
		"templates", len(payload.Templates), "images", len(payload.Images))
	return res, nil
}

func saveOutcome(err error) string {
	switch {
	case errors.Is(err, apperr.ErrDuplicateIdentity):
		return "duplicate"
	case errors.Is(err, apperr.ErrPayloadRejected):
		return "rejected"
	default:
		return "storage_error"
	}
}

// Delete removes an identity together with its images.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: identity id must be positive", apperr.ErrInvalidRequest)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Infow("identity deleted", "id", id)
	return nil
}
