package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claude-review-dashboard/internal/application/importer"
	"claude-review-dashboard/internal/application/settings"
	"claude-review-dashboard/internal/application/usage"
	"claude-review-dashboard/internal/config"
	"claude-review-dashboard/internal/domain/entity"
	"claude-review-dashboard/internal/domain/repository"
	"claude-review-dashboard/internal/domain/service"
	"claude-review-dashboard/internal/interfaces/http/handler"
	apperrors "claude-review-dashboard/pkg/errors"
	"claude-review-dashboard/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUsageRepo struct {
	records []*entity.UsageRecord
	err     error
}

func (f *fakeUsageRepo) Scan(context.Context) ([]*entity.UsageRecord, error) {
	return f.records, f.err
}
func (f *fakeUsageRepo) Put(context.Context, *entity.UsageRecord) error        { return f.err }
func (f *fakeUsageRepo) BatchPut(context.Context, []*entity.UsageRecord) error { return f.err }
func (f *fakeUsageRepo) HasAny(context.Context) (bool, error)                  { return len(f.records) > 0, f.err }

type fakeSettingsRepo struct {
	stored *entity.PartialSettings
	err    error
}

func (f *fakeSettingsRepo) Get(context.Context) (*entity.PartialSettings, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.stored == nil {
		return nil, repository.ErrNotFound
	}
	return f.stored, nil
}

func (f *fakeSettingsRepo) Put(_ context.Context, s *entity.OrganizationSettings) error {
	if f.err != nil {
		return f.err
	}
	f.stored = s.ToPartial()
	return nil
}

type fakeIdentity struct{}

func (fakeIdentity) CurrentUser(_ context.Context, token string) (*service.GitHubUser, error) {
	switch token {
	case "gh-aspenas":
		return &service.GitHubUser{Login: "aspenas", Name: "Patrick", AvatarURL: "https://a/1"}, nil
	case "gh-mallory":
		return &service.GitHubUser{Login: "mallory"}, nil
	}
	return nil, errors.New("401 Bad credentials")
}

type fakeRunner struct {
	report *importer.ImportReport
	err    error
}

func (f *fakeRunner) Import(context.Context) (*importer.ImportReport, error) {
	return f.report, f.err
}

type pingFunc func(context.Context) error

func (p pingFunc) Ping(ctx context.Context) error { return p(ctx) }

type fixture struct {
	cfg      *config.Config
	usage    *fakeUsageRepo
	settings *fakeSettingsRepo
	runner   *fakeRunner
	sessions *utils.SessionManager
	pingErr  error
}

func newFixture() *fixture {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.Observability.Metrics.Enabled = true
	cfg.Observability.Metrics.Path = "/metrics"
	cfg.Security.Auth.AllowedUsers = []string{"aspenas", "aaron", "tyler"}
	cfg.Security.JWT.Expiration = time.Hour

	return &fixture{
		cfg: cfg,
		usage: &fakeUsageRepo{records: []*entity.UsageRecord{
			{ReviewID: "a", Timestamp: "2025-01-01T10:00:00Z", Repository: "api", ReviewType: "standard", TotalCost: 1.5},
			{ReviewID: "b", Timestamp: "2025-01-03T10:00:00Z", Repository: "web", ReviewType: "security", TotalCost: 2.5},
		}},
		settings: &fakeSettingsRepo{},
		runner:   &fakeRunner{report: &importer.ImportReport{Message: "Import completed", Source: importer.SourceGitHub, Imported: 3}},
		sessions: utils.NewSessionManager("test-secret", "claude-review-dashboard"),
	}
}

func (f *fixture) engine() *gin.Engine {
	handlers := Handlers{
		Health: handler.NewHealthHandler("test", "1.0.0", map[string]repository.HealthChecker{
			"storage": pingFunc(func(context.Context) error { return f.pingErr }),
		}),
		Usage:    handler.NewUsageHandler(usage.NewService(f.usage)),
		Settings: handler.NewSettingsHandler(settings.NewResolver(f.settings)),
		Auth:     handler.NewAuthHandler(fakeIdentity{}, f.sessions, utils.NewAllowList(f.cfg.Security.Auth.AllowedUsers), f.cfg.Security.JWT.Expiration),
		Import:   handler.NewImportHandler(f.runner),
	}
	return New(f.cfg, handlers, f.sessions, nil).Engine()
}

func do(t *testing.T, e *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	f := newFixture()
	e := f.engine()

	w := do(t, e, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test", body["environment"])
	assert.NotEmpty(t, body["timestamp"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = do(t, e, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	f.pingErr = errors.New("table missing")
	w = do(t, e, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "table missing")
}

func TestCosts(t *testing.T) {
	f := newFixture()
	e := f.engine()

	w := do(t, e, http.MethodGet, "/api/costs", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, 4.0, body["total_cost"])
	assert.Equal(t, 2.0, body["total_reviews"])
	days := body["cost_by_day"].([]any)
	require.Len(t, days, 3, "gap day is zero-filled")
	assert.Equal(t, 0.0, days[1].(map[string]any)["cost"])

	w = do(t, e, http.MethodGet, "/api/costs?start=2025-01-02", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2.5, decode(t, w)["total_cost"])

	w = do(t, e, http.MethodGet, "/api/costs?start=2025-02-01&end=2025-01-01", "", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(apperrors.CodeInvalidDateRange), decode(t, w)["code"])

	f.usage.err = errors.New("ProvisionedThroughputExceeded")
	w = do(t, e, http.MethodGet, "/api/costs", "", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body = decode(t, w)
	assert.Equal(t, "Failed to fetch cost data", body["error"])
	assert.NotContains(t, w.Body.String(), "ProvisionedThroughputExceeded")
}

func TestRepositoriesAndReviews(t *testing.T) {
	e := newFixture().engine()

	w := do(t, e, http.MethodGet, "/api/repositories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var repos []entity.RepositorySummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &repos))
	require.Len(t, repos, 2)
	assert.Equal(t, "web", repos[0].Name)

	w = do(t, e, http.MethodGet, "/api/reviews?limit=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var reviews []entity.UsageRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reviews))
	require.Len(t, reviews, 1)
	assert.Equal(t, "b", reviews[0].ReviewID)
}

func TestSettings(t *testing.T) {
	f := newFixture()
	e := f.engine()

	w := do(t, e, http.MethodGet, "/api/settings", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5000.0, decode(t, w)["monthly_budget"])

	w = do(t, e, http.MethodPatch, "/api/settings", `{"monthly_budget":7000}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Settings updated successfully", body["message"])
	s := body["settings"].(map[string]any)
	assert.Equal(t, 7000.0, s["monthly_budget"])
	assert.Equal(t, 100.0, s["per_repo_daily"])
	assert.Equal(t, true, s["auto_incremental"])

	// PUT 同样是整体替换：未提供的字段回到默认值
	w = do(t, e, http.MethodPut, "/api/settings", `{"per_pr_maximum":35}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	s = decode(t, w)["settings"].(map[string]any)
	assert.Equal(t, 5000.0, s["monthly_budget"])
	assert.Equal(t, 35.0, s["per_pr_maximum"])

	w = do(t, e, http.MethodPatch, "/api/settings", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, e, http.MethodPatch, "/api/settings", `{"monthly_budget":-1}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, e, http.MethodPatch, "/api/settings", `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, e, http.MethodPatch, "/api/settings", `{"skip_patterns":["*.lock","*.lock"]}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["detail"], "skip_patterns[1] duplicates")
}

func TestImport(t *testing.T) {
	f := newFixture()
	e := f.engine()

	w := do(t, e, http.MethodPost, "/api/import", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3.0, decode(t, w)["imported"])

	f.runner.err = apperrors.Wrap(errors.New("no token"), apperrors.CodeGitHubError, "GitHub access unavailable")
	w = do(t, e, http.MethodPost, "/api/import", "", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestAuthFlow(t *testing.T) {
	f := newFixture()
	f.cfg.Security.Auth.Enabled = true
	e := f.engine()

	w := do(t, e, http.MethodGet, "/api/costs", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized", decode(t, w)["error"])

	w = do(t, e, http.MethodGet, "/api/costs", "", map[string]string{"Authorization": "Bearer nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, e, http.MethodPost, "/api/auth/github", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, e, http.MethodPost, "/api/auth/github", "", map[string]string{"Authorization": "Bearer gh-bad"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, e, http.MethodPost, "/api/auth/github", "", map[string]string{"Authorization": "Bearer gh-mallory"})
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied", decode(t, w)["error"])

	w = do(t, e, http.MethodPost, "/api/auth/github", `{"token":"gh-aspenas"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	token := body["token"].(string)
	assert.Equal(t, "aspenas", body["user"].(map[string]any)["login"])

	w = do(t, e, http.MethodGet, "/api/costs", "", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code)

	// 白名单收紧后，已签发的会话同样被拒绝
	stranger, _, err := f.sessions.Issue("mallory", "", "", time.Hour)
	require.NoError(t, err)
	w = do(t, e, http.MethodGet, "/api/costs", "", map[string]string{"Authorization": "Bearer " + stranger})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, e, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	e := newFixture().engine()

	w := do(t, e, http.MethodOptions, "/api/settings", "", map[string]string{
		"Origin":                        "https://dashboard.example.com",
		"Access-Control-Request-Method": http.MethodPatch,
	})
	assert.Less(t, w.Code, 300)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	e := newFixture().engine()

	w := do(t, e, http.MethodGet, "/api/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, e, http.MethodDelete, "/api/settings", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "Method not allowed", decode(t, w)["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	e := newFixture().engine()
	do(t, e, http.MethodGet, "/api/costs", "", nil)

	w := do(t, e, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "claude_review_http_requests_total")
}
