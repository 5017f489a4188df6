package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

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

func okHandler(t *testing.T, wantCompanyID string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		companyID, err := CompanyIDFromContext(r.Context())
		if err != nil {
			t.Errorf("company ID not in context: %v", err)
		}
		if companyID != wantCompanyID {
			t.Errorf("companyID = %q, want %q", companyID, wantCompanyID)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	finder := &mockTokenUserFinder{
		findByTokenFn: func(ctx context.Context, token string) (*model.User, error) {
			if token != "secret-token" {
				t.Errorf("token = %q, want secret-token", token)
			}
			return &model.User{ID: "user-1", CompanyID: "company-1"}, nil
		},
	}

	mw := NewAuthMiddleware(finder)
	handler := mw(okHandler(t, "company-1"))

	req := httptest.NewRequest(http.MethodGet, "/admin/company/", nil)
	req.Header.Set("Authorization", "Token secret-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
		finder *mockTokenUserFinder
	}{
		{
			name:   "ヘッダーなし",
			header: "",
			finder: &mockTokenUserFinder{},
		},
		{
			name:   "Bearer形式は拒否",
			header: "Bearer secret-token",
			finder: &mockTokenUserFinder{},
		},
		{
			name:   "未知のトークン",
			header: "Token nope",
			finder: &mockTokenUserFinder{},
		},
		{
			name:   "企業未所属ユーザー",
			header: "Token orphan",
			finder: &mockTokenUserFinder{
				findByTokenFn: func(ctx context.Context, token string) (*model.User, error) {
					return &model.User{ID: "user-1", CompanyID: ""}, nil
				},
			},
		},
		{
			name:   "検索エラー",
			header: "Token secret-token",
			finder: &mockTokenUserFinder{
				findByTokenFn: func(ctx context.Context, token string) (*model.User, error) {
					return nil, errors.New("db down")
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			mw := NewAuthMiddleware(tt.finder)
			handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/admin/company/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			if called {
				t.Error("next handler should not be called")
			}

			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON body: %v", err)
			}
			if body["status"] != "error" {
				t.Errorf("status field = %v, want error", body["status"])
			}
		})
	}
}

func TestCompanyIDFromContext_Missing(t *testing.T) {
	if _, err := CompanyIDFromContext(context.Background()); err == nil {
		t.Error("expected error for missing company ID")
	}
}

func TestContextWithCompanyID_RoundTrip(t *testing.T) {
	ctx := ContextWithCompanyID(context.Background(), "company-9")
	companyID, err := CompanyIDFromContext(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if companyID != "company-9" {
		t.Errorf("companyID = %q, want company-9", companyID)
	}
}
