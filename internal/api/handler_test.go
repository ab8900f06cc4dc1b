package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"thumblytic-backend-go/internal/config"
	"thumblytic-backend-go/internal/core"
	"thumblytic-backend-go/internal/gemini"
	"thumblytic-backend-go/internal/middleware"
	"thumblytic-backend-go/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier struct{}

func (stubVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	switch idToken {
	case "user":
		return &auth.Token{UID: "u1", Claims: map[string]interface{}{"email": "u1@example.com"}}, nil
	case "admin":
		return &auth.Token{UID: "a1", Claims: map[string]interface{}{"role": "admin"}}, nil
	}
	return nil, errors.New("invalid token")
}

type stubProfiles struct {
	profile *models.Profile
	err     error
}

func (s *stubProfiles) Sync(context.Context, models.Identity) (*models.Profile, error) {
	return s.profile, s.err
}

func (s *stubProfiles) GetByID(context.Context, string) (*models.Profile, error) {
	return s.profile, s.err
}

type stubGenerations struct {
	result  *core.GenerationResult
	err     error
	history []*models.Generation
	limit   int
}

func (s *stubGenerations) Create(context.Context, models.Identity, models.ThumbnailConfig) (*core.GenerationResult, error) {
	return s.result, s.err
}

func (s *stubGenerations) Edit(context.Context, models.Identity, models.EditRequest) (*core.GenerationResult, error) {
	return s.result, s.err
}

func (s *stubGenerations) History(_ context.Context, _ string, limit int) ([]*models.Generation, error) {
	s.limit = limit
	return s.history, s.err
}

type stubSuggestions struct{ err error }

func (s *stubSuggestions) Suggest(context.Context, string) (*models.Suggestion, error) {
	return &models.Suggestion{SuggestedText: "GO FAST"}, s.err
}

func (s *stubSuggestions) Audit(context.Context, models.ThumbnailConfig) (*models.AuditResult, error) {
	return &models.AuditResult{Score: 70}, s.err
}

type stubAppeals struct {
	err     error
	gotOpts models.ApprovalOptions
}

func (s *stubAppeals) Submit(_ context.Context, id models.Identity, plan models.RequestedPlan, msg string) (*models.Appeal, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Appeal{ID: "ap1", UserID: id.UID, RequestedPlan: plan, Message: msg, Status: models.AppealPending}, nil
}

func (s *stubAppeals) ListMine(context.Context, string) ([]*models.Appeal, error) {
	return nil, s.err
}

func (s *stubAppeals) Approve(_ context.Context, _ models.Identity, id string, opts models.ApprovalOptions) (*models.Appeal, error) {
	s.gotOpts = opts
	if s.err != nil {
		return nil, s.err
	}
	return &models.Appeal{ID: id, Status: models.AppealApproved}, nil
}

func (s *stubAppeals) Reject(_ context.Context, _ models.Identity, id string) (*models.Appeal, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Appeal{ID: id, Status: models.AppealRejected}, nil
}

type stubAdmin struct {
	err        error
	auditLimit int
}

func (s *stubAdmin) Overview(context.Context) (*core.Overview, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &core.Overview{GenerationCount: 4}, nil
}

func (s *stubAdmin) SetSuspended(_ context.Context, _ models.Identity, id string, v bool) (*models.Profile, error) {
	return &models.Profile{ID: id, IsSuspended: v}, s.err
}

func (s *stubAdmin) ToggleSuspension(_ context.Context, _ models.Identity, id string) (*models.Profile, error) {
	return &models.Profile{ID: id, IsSuspended: true}, s.err
}

func (s *stubAdmin) OverridePlan(_ context.Context, _ models.Identity, id string, p models.Plan) (*models.Profile, error) {
	return &models.Profile{ID: id, Plan: p}, s.err
}

func (s *stubAdmin) ResetAllPlans(_ context.Context, _ models.Identity, confirmation string) (int64, error) {
	if confirmation != core.ResetConfirmationPhrase {
		return 0, core.ErrConfirmationRequired
	}
	return 2, s.err
}

func (s *stubAdmin) ApplySchema(context.Context, models.Identity) (*core.MigrationResult, error) {
	return &core.MigrationResult{Version: 1, Applied: true}, s.err
}

func (s *stubAdmin) AuditLogs(_ context.Context, limit int) ([]*models.AuditLog, error) {
	s.auditLimit = limit
	return []*models.AuditLog{}, s.err
}

type stubAccounts struct{ err error }

func (s *stubAccounts) SignUp(context.Context, string, string, string) (*core.SignUpResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &core.SignUpResult{UID: "new"}, nil
}

func (s *stubAccounts) SignOut(context.Context, string) error { return s.err }

type testServer struct {
	router      *gin.Engine
	profiles    *stubProfiles
	generations *stubGenerations
	suggestions *stubSuggestions
	appeals     *stubAppeals
	admin       *stubAdmin
	accounts    *stubAccounts
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		profiles:    &stubProfiles{profile: &models.Profile{ID: "u1", Plan: models.PlanFree, Credits: 3}},
		generations: &stubGenerations{},
		suggestions: &stubSuggestions{},
		appeals:     &stubAppeals{},
		admin:       &stubAdmin{},
		accounts:    &stubAccounts{},
	}
	catalog, err := config.LoadPlanCatalog("")
	require.NoError(t, err)

	ts.router = gin.New()
	SetupRoutes(ts.router, zap.NewNop(),
		middleware.NewAuthMiddleware(stubVerifier{}, "role", zap.NewNop()),
		middleware.NewRateLimiter(1000, 1000, zap.NewNop()),
		Services{
			Profiles:    ts.profiles,
			Generations: ts.generations,
			Suggestions: ts.suggestions,
			Appeals:     ts.appeals,
			Admin:       ts.admin,
			Accounts:    ts.accounts,
		}, catalog)
	return ts
}

func (ts *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	ts.router.ServeHTTP(resp, req)
	return resp
}

func decode(t *testing.T, resp *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out), resp.Body.String())
	return out
}

func TestPublicRoutes(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.do(http.MethodGet, "/api/v1/plans", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	body := decode(t, resp)
	assert.Equal(t, "PKR", body["currency"])

	resp = ts.do(http.MethodGet, "/api/v1/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestGetProfile(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(http.MethodGet, "/api/v1/profile", "user", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	body := decode(t, resp)
	assert.Equal(t, true, body["initialized"])
	assert.EqualValues(t, 3, body["credits"])
}

func TestGetProfileSoftFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.profiles.profile = nil
	ts.profiles.err = core.ErrProfileUnavailable

	resp := ts.do(http.MethodGet, "/api/v1/profile", "user", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	body := decode(t, resp)
	assert.Equal(t, false, body["initialized"])
	assert.Equal(t, "Designer", body["full_name"])
	assert.EqualValues(t, 3, body["credits"])

	resp = ts.do(http.MethodPost, "/api/v1/profile/sync", "user", nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
	body = decode(t, resp)
	assert.Equal(t, "store_unavailable", body["code"])
	assert.NotContains(t, body, "schema_sql")
}

func TestUserRoutesHideSchemaScript(t *testing.T) {
	ts := newTestServer(t)
	ts.appeals.err = core.ErrSchemaMissing

	resp := ts.do(http.MethodPost, "/api/v1/appeals", "user", SubmitAppealRequest{RequestedPlan: models.RequestedPro, Message: "ref"})
	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
	body := decode(t, resp)
	assert.Equal(t, "schema_missing", body["code"])
	assert.NotContains(t, body, "schema_sql")

	resp = ts.do(http.MethodPost, "/api/v1/admin/appeals/ap1/approve", "admin", nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Contains(t, decode(t, resp)["schema_sql"], "CREATE TABLE")
}

func TestCreateGenerationStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		check  func(t *testing.T, body map[string]interface{})
	}{
		{"exhausted", core.ErrCreditsExhausted, http.StatusPaymentRequired, func(t *testing.T, body map[string]interface{}) {
			assert.Equal(t, "pricing", body["redirect"])
		}},
		{"suspended", core.ErrProfileSuspended, http.StatusForbidden, nil},
		{"empty topic", core.ErrEmptyTopic, http.StatusBadRequest, nil},
		{"provider", &gemini.ProviderError{Op: "render", Err: gemini.ErrNoImageGenerated}, http.StatusBadGateway,
			func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "No image generated.", body["error"])
			}},
		{"schema", fmt.Errorf("%w: %w", core.ErrProfileUnavailable, core.ErrSchemaMissing), http.StatusServiceUnavailable,
			func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "schema_missing", body["code"])
				assert.NotContains(t, body, "schema_sql")
				assert.NotContains(t, body, "retry")
			}},
		{"store outage", fmt.Errorf("%w: dial tcp 10.0.0.5:5432: connect: connection refused", core.ErrProfileUnavailable),
			http.StatusServiceUnavailable, func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "store_unavailable", body["code"])
				assert.NotContains(t, body, "schema_sql")
			}},
		{"unexpected", errors.New("tx aborted"), http.StatusInternalServerError, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.generations.err = tc.err
			resp := ts.do(http.MethodPost, "/api/v1/generations", "user", models.DefaultThumbnailConfig())
			require.Equal(t, tc.status, resp.Code, resp.Body.String())
			if tc.check != nil {
				tc.check(t, decode(t, resp))
			}
		})
	}
}

func TestCreateGenerationSuccess(t *testing.T) {
	ts := newTestServer(t)
	ts.generations.result = &core.GenerationResult{
		Generation: &models.Generation{ID: "g1", Topic: "t"},
		Profile:    &models.Profile{ID: "u1", Credits: 2},
	}
	resp := ts.do(http.MethodPost, "/api/v1/generations", "user", models.DefaultThumbnailConfig())
	require.Equal(t, http.StatusCreated, resp.Code)
	body := decode(t, resp)
	assert.EqualValues(t, 2, body["profile"].(map[string]interface{})["credits"])
}

func TestCreateGenerationBadBody(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generations", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer user")
	resp := httptest.NewRecorder()
	ts.router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestListGenerationsLimit(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(http.MethodGet, "/api/v1/generations", "user", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "[]", resp.Body.String())
	assert.Equal(t, 50, ts.generations.limit)

	resp = ts.do(http.MethodGet, "/api/v1/generations?limit=5000", "user", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, maxHistoryLimit, ts.generations.limit)

	resp = ts.do(http.MethodGet, "/api/v1/generations?limit=abc", "user", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSuggestionsAndAudits(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(http.MethodPost, "/api/v1/suggestions", "user", SuggestRequest{Topic: "Go"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "GO FAST", decode(t, resp)["suggestedText"])

	ts.suggestions.err = &gemini.ProviderError{Op: "audit", Err: gemini.ErrAuditFailed}
	resp = ts.do(http.MethodPost, "/api/v1/audits", "user", models.DefaultThumbnailConfig())
	require.Equal(t, http.StatusBadGateway, resp.Code)
	assert.Equal(t, "Audit failed.", decode(t, resp)["error"])
}

func TestSubmitAppeal(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(http.MethodPost, "/api/v1/appeals", "user", SubmitAppealRequest{RequestedPlan: models.RequestedPro, Message: "TX-1"})
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, "pending", decode(t, resp)["status"])

	ts.appeals.err = core.ErrEmptyAppealMessage
	resp = ts.do(http.MethodPost, "/api/v1/appeals", "user", SubmitAppealRequest{RequestedPlan: models.RequestedPro})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	ts.appeals.err = core.ErrAppealMessageTooLong
	resp = ts.do(http.MethodPost, "/api/v1/appeals", "user", SubmitAppealRequest{RequestedPlan: models.RequestedPro, Message: "long"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, core.ErrAppealMessageTooLong.Error(), decode(t, resp)["error"])

	ts.appeals.err = nil
	resp = ts.do(http.MethodGet, "/api/v1/appeals", "user", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "[]", resp.Body.String())
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(http.MethodGet, "/api/v1/admin/overview", "user", nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.do(http.MethodGet, "/api/v1/admin/overview", "admin", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.EqualValues(t, 4, decode(t, resp)["generation_count"])
}

func TestAdminOverviewSchemaMissing(t *testing.T) {
	ts := newTestServer(t)
	ts.admin.err = core.ErrSchemaMissing

	resp := ts.do(http.MethodGet, "/api/v1/admin/overview", "admin", nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Equal(t, "schema_missing", decode(t, resp)["code"])
}

func TestAdminGenericFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.admin.err = errors.New("pq: connection reset by peer")

	resp := ts.do(http.MethodPut, "/api/v1/admin/users/u1/plan", "admin", OverridePlanRequest{Plan: models.PlanPro})
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.NotContains(t, resp.Body.String(), "connection reset")
}

func TestAdminMutations(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(http.MethodPatch, "/api/v1/admin/users/u9/suspension", "admin", map[string]bool{"suspended": true})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, true, decode(t, resp)["is_suspended"])

	resp = ts.do(http.MethodPatch, "/api/v1/admin/users/u9/suspension", "admin", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.do(http.MethodPost, "/api/v1/admin/users/u9/suspension/toggle", "admin", nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.do(http.MethodPost, "/api/v1/admin/plans/reset", "admin", ResetPlansRequest{Confirmation: "yes"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.do(http.MethodPost, "/api/v1/admin/plans/reset", "admin", ResetPlansRequest{Confirmation: core.ResetConfirmationPhrase})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.EqualValues(t, 2, decode(t, resp)["affected"])

	resp = ts.do(http.MethodGet, "/api/v1/admin/schema", "admin", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, decode(t, resp)["schema_sql"], "profiles")

	resp = ts.do(http.MethodPost, "/api/v1/admin/schema/migrate", "admin", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, true, decode(t, resp)["applied"])

	resp = ts.do(http.MethodGet, "/api/v1/admin/audit-logs?limit=5", "admin", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 5, ts.admin.auditLimit)

	resp = ts.do(http.MethodGet, "/api/v1/admin/audit-logs?limit=10000000", "admin", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, maxAuditLogLimit, ts.admin.auditLimit)

	resp = ts.do(http.MethodGet, "/api/v1/admin/audit-logs", "admin", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, defaultAuditLogLimit, ts.admin.auditLimit)

	resp = ts.do(http.MethodGet, "/api/v1/admin/audit-logs?limit=zero", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAdminAppealDecisions(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(http.MethodPost, "/api/v1/admin/appeals/ap1/approve", "admin", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Nil(t, ts.appeals.gotOpts.Plan)

	resp = ts.do(http.MethodPost, "/api/v1/admin/appeals/ap1/approve", "admin", map[string]interface{}{"plan": "pro", "credits": 25})
	require.Equal(t, http.StatusOK, resp.Code)
	require.NotNil(t, ts.appeals.gotOpts.Plan)
	assert.Equal(t, models.PlanPro, *ts.appeals.gotOpts.Plan)
	assert.Equal(t, 25, *ts.appeals.gotOpts.Credits)

	ts.appeals.err = core.ErrAppealNotPending
	resp = ts.do(http.MethodPost, "/api/v1/admin/appeals/ap1/reject", "admin", nil)
	assert.Equal(t, http.StatusConflict, resp.Code)

	ts.appeals.err = core.ErrAppealNotFound
	resp = ts.do(http.MethodPost, "/api/v1/admin/appeals/missing/approve", "admin", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSignUpAndSignOut(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(http.MethodPost, "/api/v1/auth/signup", "", SignUpRequest{Email: "a@b.co", Password: "secret1"})
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, "new", decode(t, resp)["uid"])

	ts.accounts.err = core.ErrEmailTaken
	resp = ts.do(http.MethodPost, "/api/v1/auth/signup", "", SignUpRequest{Email: "a@b.co", Password: "secret1"})
	assert.Equal(t, http.StatusConflict, resp.Code)

	ts.accounts.err = nil
	resp = ts.do(http.MethodPost, "/api/v1/auth/signout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	resp = ts.do(http.MethodPost, "/api/v1/auth/signout", "user", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
}
