package enrollment_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ovaphlow/pitchfork/service-enrollment-go/internal/agent"
	agentmocks "github.com/ovaphlow/pitchfork/service-enrollment-go/internal/agent/mocks"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/internal/biometric/entity"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/internal/enrollment"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/internal/enrollment/repo"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/pkg/apperr"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/pkg/testutil"
)

type handlerEnv struct {
	mux  *http.ServeMux
	gw   *agentmocks.MockGateway
	repo *repo.EnrollmentRepo
	db   *sqlx.DB
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	store := repo.NewEnrollmentRepo(db)
	require.NoError(t, store.EnsureTables(context.Background()))

	gw := agentmocks.NewMockGateway(gomock.NewController(t))
	h := enrollment.NewHandler(enrollment.NewService(gw, store, nil, nil), nil)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/start_enrollment", h.Start)
	mux.HandleFunc("POST /api/save_enrollment", h.Save)
	mux.HandleFunc("DELETE /api/identities/{id}", h.Delete)
	return &handlerEnv{mux: mux, gw: gw, repo: store, db: db}
}

func (e *handlerEnv) do(method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func (e *handlerEnv) identities(t *testing.T) []entity.Identity {
	t.Helper()
	ids, err := e.repo.ListIdentities(context.Background())
	require.NoError(t, err)
	return ids
}

func TestEnrollAliceThenDuplicate(t *testing.T) {
	env := newHandlerEnv(t)
	env.gw.EXPECT().FetchEnrollmentData(gomock.Any()).Return(testutil.FullPayload("alice"), nil)
	env.gw.EXPECT().FetchEnrollmentData(gomock.Any()).Return(testutil.FullPayload("other"), nil)

	rec, body := env.do(http.MethodPost, "/api/save_enrollment", `{"name":"Alice","idNumber":"ID-001"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["id"])
	assert.Contains(t, body["message"], "Alice")

	rec, body = env.do(http.MethodPost, "/api/save_enrollment", `{"name":"Alicia","idNumber":"ID-001"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["message"], "ID-001")

	ids := env.identities(t)
	require.Len(t, ids, 1)
	assert.Equal(t, "Alice", ids[0].Name)
	assert.Len(t, ids[0].Templates.Combined(), testutil.TemplateTotal("alice"))
}

func TestSaveWithNineTemplatesWritesNothing(t *testing.T) {
	env := newHandlerEnv(t)
	payload := testutil.FullPayload("bob")
	delete(payload.Templates, entity.TemplateRightMiddle)
	env.gw.EXPECT().FetchEnrollmentData(gomock.Any()).Return(payload, nil)

	rec, body := env.do(http.MethodPost, "/api/save_enrollment", `{"name":"Bob","idNumber":"ID-002"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["message"], "fmr_right_middle")
	assert.Empty(t, env.identities(t))
}

func TestSaveValidatesRequestBeforeAgent(t *testing.T) {
	env := newHandlerEnv(t)

	for _, payload := range []string{`{"name":"","idNumber":"ID-1"}`, `{"name":"Zed"}`, `not json`} {
		rec, body := env.do(http.MethodPost, "/api/save_enrollment", payload)
		assert.Equal(t, http.StatusBadRequest, rec.Code, payload)
		assert.Equal(t, false, body["success"])
	}
}

func TestSaveAgentDownIs503(t *testing.T) {
	env := newHandlerEnv(t)
	env.gw.EXPECT().FetchEnrollmentData(gomock.Any()).
		Return(nil, &agent.Error{Op: "get_enrollment_data", Kind: apperr.ErrAgentUnreachable})

	rec, body := env.do(http.MethodPost, "/api/save_enrollment", `{"name":"Cy","idNumber":"ID-3"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "fingerprint capture agent is not running", body["message"])
	assert.Empty(t, env.identities(t))
}

func TestStartReturnsAgentAcknowledgement(t *testing.T) {
	env := newHandlerEnv(t)
	env.gw.EXPECT().StartEnrollment(gomock.Any()).
		Return(json.RawMessage(`{"success":true,"message":"enrollment started"}`), nil)

	rec, _ := env.do(http.MethodPost, "/api/start_enrollment", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"enrollment started"}`, rec.Body.String())
}

func TestDeleteIdentity(t *testing.T) {
	env := newHandlerEnv(t)
	res, err := env.repo.Save(context.Background(), "Dee", "ID-4", testutil.FullPayload("dee"))
	require.NoError(t, err)

	rec, body := env.do(http.MethodDelete, "/api/identities/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, int64(1), res.ID)

	var images int
	require.NoError(t, env.db.Get(&images, `SELECT COUNT(*) FROM fingerprint_images`))
	assert.Zero(t, images)

	rec, _ = env.do(http.MethodDelete, "/api/identities/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = env.do(http.MethodDelete, "/api/identities/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
