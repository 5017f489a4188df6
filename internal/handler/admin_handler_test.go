package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/gitbounty/internal/middleware"
	"github.com/hitoshi/gitbounty/internal/model"
)

type mockCompanyService struct {
	getCompanyFn     func(ctx context.Context, companyID string) (*model.Company, error)
	updateNameFn     func(ctx context.Context, companyID, name string) (*model.Company, error)
	listCurrenciesFn func(ctx context.Context, companyID, code string, page, pageSize int) ([]*model.Currency, int, error)
	getCurrencyFn    func(ctx context.Context, companyID, code string) (*model.Currency, error)
}

func (m *mockCompanyService) GetCompany(ctx context.Context, companyID string) (*model.Company, error) {
	if m.getCompanyFn != nil {
		return m.getCompanyFn(ctx, companyID)
	}
	return nil, nil
}

func (m *mockCompanyService) UpdateName(ctx context.Context, companyID, name string) (*model.Company, error) {
	if m.updateNameFn != nil {
		return m.updateNameFn(ctx, companyID, name)
	}
	return nil, nil
}

func (m *mockCompanyService) ListCurrencies(ctx context.Context, companyID, code string, page, pageSize int) ([]*model.Currency, int, error) {
	if m.listCurrenciesFn != nil {
		return m.listCurrenciesFn(ctx, companyID, code, page, pageSize)
	}
	return nil, 0, nil
}

func (m *mockCompanyService) GetCurrency(ctx context.Context, companyID, code string) (*model.Currency, error) {
	if m.getCurrencyFn != nil {
		return m.getCurrencyFn(ctx, companyID, code)
	}
	return nil, nil
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(middleware.ContextWithCompanyID(req.Context(), "company-1"))
}

func TestGetCompany_Success(t *testing.T) {
	service := &mockCompanyService{
		getCompanyFn: func(ctx context.Context, companyID string) (*model.Company, error) {
			if companyID != "company-1" {
				t.Errorf("companyID = %q, want company-1", companyID)
			}
			return &model.Company{Identifier: "abc", Name: "Acme", Secret: "secret"}, nil
		},
	}
	h := NewAdminHandler(service)

	rec := httptest.NewRecorder()
	h.GetCompany(rec, authedRequest(http.MethodGet, "/admin/company/", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["name"] != "Acme" {
		t.Errorf("name = %v, want Acme", data["name"])
	}
	if data["identifier"] != "abc" {
		t.Errorf("identifier = %v, want abc", data["identifier"])
	}
	// 管理者は自社のWebhookシークレットを取得できること
	if data["secret"] != "secret" {
		t.Errorf("secret = %v, want secret", data["secret"])
	}
}

func TestGetCompany_WithoutAuthContext(t *testing.T) {
	h := NewAdminHandler(&mockCompanyService{})

	req := httptest.NewRequest(http.MethodGet, "/admin/company/", nil)
	rec := httptest.NewRecorder()

	h.GetCompany(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestUpdateCompany_Success(t *testing.T) {
	service := &mockCompanyService{
		updateNameFn: func(ctx context.Context, companyID, name string) (*model.Company, error) {
			if name != "New Name" {
				t.Errorf("name = %q, want New Name", name)
			}
			return &model.Company{Identifier: "abc", Secret: "company-secret", Name: name}, nil
		},
	}
	h := NewAdminHandler(service)

	rec := httptest.NewRecorder()
	h.UpdateCompany(rec, authedRequest(http.MethodPatch, "/admin/company/", `{"name":"New Name"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["name"] != "New Name" {
		t.Errorf("name = %v, want New Name", data["name"])
	}
	if data["secret"] != "company-secret" {
		t.Errorf("secret = %v, want company-secret", data["secret"])
	}
}

func TestUpdateCompany_EmptyName(t *testing.T) {
	h := NewAdminHandler(&mockCompanyService{})

	rec := httptest.NewRecorder()
	h.UpdateCompany(rec, authedRequest(http.MethodPatch, "/admin/company/", `{"name":""}`))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestListCurrencies_PassesQueryParams(t *testing.T) {
	service := &mockCompanyService{
		listCurrenciesFn: func(ctx context.Context, companyID, code string, page, pageSize int) ([]*model.Currency, int, error) {
			if code != "USD" {
				t.Errorf("code = %q, want USD", code)
			}
			if page != 2 || pageSize != 5 {
				t.Errorf("page = %d pageSize = %d, want 2/5", page, pageSize)
			}
			return []*model.Currency{
				{Code: "USD", Symbol: "$", Divisibility: 2, Enabled: true},
			}, 1, nil
		},
	}
	h := NewAdminHandler(service)

	rec := httptest.NewRecorder()
	h.ListCurrencies(rec, authedRequest(http.MethodGet, "/admin/currencies/?code=USD&page=2&page_size=5", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["count"] != float64(1) {
		t.Errorf("count = %v, want 1", data["count"])
	}
	results := data["results"].([]any)
	if len(results) != 1 {
		t.Fatalf("results length = %d, want 1", len(results))
	}
}

func TestGetCurrency_NotFound(t *testing.T) {
	service := &mockCompanyService{
		getCurrencyFn: func(ctx context.Context, companyID, code string) (*model.Currency, error) {
			return nil, model.NewCurrencyNotFoundError(code)
		},
	}
	h := NewAdminHandler(service)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("code", "XYZ")
	req := authedRequest(http.MethodGet, "/admin/currencies/XYZ/", "")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	h.GetCurrency(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
