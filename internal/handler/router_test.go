package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/gitbounty/internal/bounty"
	"github.com/hitoshi/gitbounty/internal/middleware"
	"github.com/hitoshi/gitbounty/internal/model"
)

type mockTokenUserFinder struct {
	findByTokenFn func(ctx context.Context, token string) (*model.User, error)
}

func (m *mockTokenUserFinder) FindByToken(ctx context.Context, token string) (*model.User, error) {
	if m.findByTokenFn != nil {
		return m.findByTokenFn(ctx, token)
	}
	return nil, nil
}

type mockPinger struct {
	pingFn func(ctx context.Context) error
}

func (m *mockPinger) PingContext(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

func testRouter(t *testing.T, deps *RouterDeps) http.Handler {
	t.Helper()
	if deps.RateLimiter == nil {
		rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig(120, 60))
		t.Cleanup(rl.Stop)
		deps.RateLimiter = rl
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.NewRegistry()
	}
	if deps.ActivationService == nil {
		deps.ActivationService = &mockActivationService{}
	}
	if deps.TokenVerifier == nil {
		deps.TokenVerifier = &mockTokenVerifier{}
	}
	if deps.CompanyService == nil {
		deps.CompanyService = &mockCompanyService{}
	}
	if deps.BountyService == nil {
		deps.BountyService = &mockBountyService{}
	}
	if deps.WebhookService == nil {
		deps.WebhookService = &mockWebhookService{
			handlePullRequestFn: func(ctx context.Context, event *bounty.PullRequestEvent) (*bounty.Result, error) {
				return &bounty.Result{Outcome: bounty.OutcomeIgnored}, nil
			},
		}
	}
	if deps.TokenUserFinder == nil {
		deps.TokenUserFinder = &mockTokenUserFinder{}
	}
	return NewRouter(deps, nil)
}

func TestRouter_PublicRoutes(t *testing.T) {
	router := testRouter(t, &RouterDeps{DB: &mockPinger{}})

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/", "", http.StatusOK},
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodPost, "/github/", `{"action":"edited"}`, http.StatusOK},
		{http.MethodGet, "/github/bounties/", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			var req *http.Request
			if tt.body == "" {
				req = httptest.NewRequest(tt.method, tt.path, nil)
			} else {
				req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			}
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRouter_AdminRoutesRequireToken(t *testing.T) {
	router := testRouter(t, &RouterDeps{DB: &mockPinger{}})

	paths := []string{"/admin/company/", "/admin/currencies/"}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", path, rec.Code)
		}
	}
}

func TestRouter_AdminRouteWithValidToken(t *testing.T) {
	deps := &RouterDeps{
		DB: &mockPinger{},
		TokenUserFinder: &mockTokenUserFinder{
			findByTokenFn: func(ctx context.Context, token string) (*model.User, error) {
				if token != "admin-token" {
					return nil, nil
				}
				return &model.User{ID: "user-1", CompanyID: "company-1"}, nil
			},
		},
		CompanyService: &mockCompanyService{
			getCompanyFn: func(ctx context.Context, companyID string) (*model.Company, error) {
				return &model.Company{Identifier: "abc", Name: "Acme"}, nil
			},
		},
	}
	router := testRouter(t, deps)

	req := httptest.NewRequest(http.MethodGet, "/admin/company/", nil)
	req.Header.Set("Authorization", "Token admin-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRouter_HealthReportsDatabaseFailure(t *testing.T) {
	deps := &RouterDeps{
		DB: &mockPinger{
			pingFn: func(ctx context.Context) error {
				return context.DeadlineExceeded
			},
		},
	}
	router := testRouter(t, deps)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestRouter_WebhookSignatureEnforced(t *testing.T) {
	deps := &RouterDeps{
		DB:            &mockPinger{},
		WebhookSecret: "webhook-secret",
	}
	router := testRouter(t, deps)

	req := httptest.NewRequest(http.MethodPost, "/github/", strings.NewReader(`{"action":"opened"}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestRouter_SecurityHeaders(t *testing.T) {
	router := testRouter(t, &RouterDeps{DB: &mockPinger{}})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
}

func TestRouter_RecoversFromPanic(t *testing.T) {
	deps := &RouterDeps{
		DB: &mockPinger{},
		BountyService: &mockBountyService{
			listFn: func(ctx context.Context, page, pageSize int) ([]*model.GithubIssueBounty, int, error) {
				panic("boom")
			},
		},
	}
	router := testRouter(t, deps)

	req := httptest.NewRequest(http.MethodGet, "/github/bounties/", nil)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		router.ServeHTTP(rec, req)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not return")
	}

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
