package agent_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/ovaphlow/pitchfork/service-enrollment-go/internal/agent"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/internal/agent/mocks"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/internal/biometric/entity"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/pkg/apperr"
)

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	gw      *mocks.MockGateway
	handler *agent.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.gw = mocks.NewMockGateway(s.ctrl)
	s.handler = agent.NewHandler(s.gw, nil)
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerSuite) serve(fn http.HandlerFunc, method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	fn(rec, req)
	return rec
}

func (s *HandlerSuite) failureMessage(rec *httptest.ResponseRecorder) string {
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.False(body.Success)
	return body.Message
}

func (s *HandlerSuite) TestCreateTemplate() {
	s.Run("finger position and capture type", func() {
		s.gw.EXPECT().
			CreateTemplate(gomock.Any(), agent.CreateTemplateRequest{Slot: entity.TemplateLeftRing, CaptureType: "single"}).
			Return(json.RawMessage(`{"success":true,"message":"captured"}`), nil)

		rec := s.serve(s.handler.CreateTemplate, http.MethodPost, `{"template_no":9,"capture_type":"single"}`)
		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"success":true,"message":"captured"}`, rec.Body.String())
	})

	s.Run("slot name in camelCase fields", func() {
		s.gw.EXPECT().
			CreateTemplate(gomock.Any(), agent.CreateTemplateRequest{Slot: entity.TemplateRightIndex, CaptureType: "rolled"}).
			Return(json.RawMessage(`{"success":true}`), nil)

		rec := s.serve(s.handler.CreateTemplate, http.MethodPost, `{"templateSlot":"right_index","captureType":"rolled"}`)
		s.Equal(http.StatusOK, rec.Code)
	})

	for name, body := range map[string]string{
		"missing slot":          `{"capture_type":"single"}`,
		"position out of range": `{"template_no":11,"capture_type":"single"}`,
		"unknown slot name":     `{"template_no":"fmr_tail","capture_type":"single"}`,
		"missing capture type":  `{"template_no":1}`,
		"malformed json":        `{"template_no":`,
	} {
		s.Run(name, func() {
			rec := s.serve(s.handler.CreateTemplate, http.MethodPost, body)
			s.Equal(http.StatusBadRequest, rec.Code)
			s.NotEmpty(s.failureMessage(rec))
		})
	}
}

func (s *HandlerSuite) TestPassThroughReturnsAgentReplyVerbatim() {
	reply := json.RawMessage(`{"connected":true,"model":"slap-scanner","firmware":"2.1"}`)
	s.gw.EXPECT().GetStatus(gomock.Any()).Return(reply, nil)

	rec := s.serve(s.handler.Status, http.MethodGet, "")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("application/json", rec.Header().Get("Content-Type"))
	s.JSONEq(string(reply), rec.Body.String())
}

func (s *HandlerSuite) TestAgentFailuresMapToStatus() {
	s.Run("unreachable", func() {
		s.gw.EXPECT().Identify(gomock.Any()).
			Return(nil, &agent.Error{Op: "identify", Kind: apperr.ErrAgentUnreachable, Err: fmt.Errorf("connection refused")})

		rec := s.serve(s.handler.Identify, http.MethodPost, "")
		s.Equal(http.StatusServiceUnavailable, rec.Code)
		s.Equal("fingerprint capture agent is not running", s.failureMessage(rec))
	})

	s.Run("timeout", func() {
		s.gw.EXPECT().MatchTemplates(gomock.Any()).
			Return(nil, &agent.Error{Op: "match_templates", Kind: apperr.ErrAgentTimeout})

		rec := s.serve(s.handler.MatchTemplates, http.MethodPost, "")
		s.Equal(http.StatusServiceUnavailable, rec.Code)
	})

	s.Run("agent error keeps agent text", func() {
		s.gw.EXPECT().InitDevice(gomock.Any()).
			Return(nil, &agent.Error{Op: "init", Kind: apperr.ErrAgentError, Status: 500, Message: "no scanner attached"})

		rec := s.serve(s.handler.InitDevice, http.MethodPost, "")
		s.Equal(http.StatusInternalServerError, rec.Code)
		s.Equal("no scanner attached", s.failureMessage(rec))
	})
}

func (s *HandlerSuite) TestSetConfig() {
	s.Run("forwards object", func() {
		s.gw.EXPECT().SetConfig(gomock.Any(), json.RawMessage(`{"preview":false}`)).
			Return(json.RawMessage(`{"success":true}`), nil)

		rec := s.serve(s.handler.SetConfig, http.MethodPost, `{"preview":false}`)
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("rejects non-object without calling the agent", func() {
		rec := s.serve(s.handler.SetConfig, http.MethodPost, `["preview"]`)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}
