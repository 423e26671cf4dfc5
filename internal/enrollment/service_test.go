package enrollment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/ovaphlow/pitchfork/service-enrollment-go/internal/agent"
	agentmocks "github.com/ovaphlow/pitchfork/service-enrollment-go/internal/agent/mocks"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/internal/biometric/entity"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/internal/enrollment"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/internal/enrollment/mocks"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/pkg/apperr"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/pkg/testutil"
)

type ServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	gw      *agentmocks.MockGateway
	store   *mocks.MockStore
	service *enrollment.Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.gw = agentmocks.NewMockGateway(s.ctrl)
	s.store = mocks.NewMockStore(s.ctrl)
	s.service = enrollment.NewService(s.gw, s.store, nil, nil)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) TestFinalize() {
	ctx := context.Background()

	s.Run("fetches, validates and stores trimmed identity", func() {
		payload := testutil.FullPayload("alice")
		want := entity.SaveResult{ID: 1, Name: "Alice", EnrolledAt: time.Now()}
		gomock.InOrder(
			s.gw.EXPECT().FetchEnrollmentData(gomock.Any()).Return(payload, nil),
			s.store.EXPECT().Save(gomock.Any(), "Alice", "ID-001", payload).Return(want, nil),
		)

		res, err := s.service.Finalize(ctx, "  Alice ", "ID-001\n")
		s.Require().NoError(err)
		s.Equal(want, res)
	})

	s.Run("missing name or id number never reaches the agent", func() {
		for _, tc := range [][2]string{{"", "ID-1"}, {"Bob", ""}, {"   ", "\t"}} {
			_, err := s.service.Finalize(ctx, tc[0], tc[1])
			s.ErrorIs(err, apperr.ErrInvalidRequest)
		}
	})

	s.Run("agent failure is returned unchanged", func() {
		agentErr := &agent.Error{Op: "get_enrollment_data", Kind: apperr.ErrAgentTimeout}
		s.gw.EXPECT().FetchEnrollmentData(gomock.Any()).Return(nil, agentErr)

		_, err := s.service.Finalize(ctx, "Carol", "ID-003")
		s.ErrorIs(err, apperr.ErrAgentTimeout)
		var got *agent.Error
		s.Require().True(errors.As(err, &got))
		s.Same(agentErr, got)
	})

	s.Run("incomplete payload is never stored", func() {
		payload := testutil.FullPayload("dan")
		delete(payload.Templates, entity.TemplateLeftLittle)
		s.gw.EXPECT().FetchEnrollmentData(gomock.Any()).Return(payload, nil)

		_, err := s.service.Finalize(ctx, "Dan", "ID-004")
		s.ErrorIs(err, apperr.ErrIncompletePayload)
	})

	s.Run("duplicate from store is propagated", func() {
		payload := testutil.FullPayload("eve")
		s.gw.EXPECT().FetchEnrollmentData(gomock.Any()).Return(payload, nil)
		s.store.EXPECT().Save(gomock.Any(), "Eve", "ID-001", payload).
			Return(entity.SaveResult{}, apperr.ErrDuplicateIdentity)

		_, err := s.service.Finalize(ctx, "Eve", "ID-001")
		s.ErrorIs(err, apperr.ErrDuplicateIdentity)
	})
}

func (s *ServiceSuite) TestDelete() {
	ctx := context.Background()

	s.Run("rejects non-positive ids", func() {
		s.ErrorIs(s.service.Delete(ctx, 0), apperr.ErrInvalidRequest)
	})

	s.Run("delegates to store", func() {
		s.store.EXPECT().Delete(gomock.Any(), int64(7)).Return(apperr.ErrNotFound)
		s.ErrorIs(s.service.Delete(ctx, 7), apperr.ErrNotFound)
	})
}
