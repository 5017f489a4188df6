package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/gitbounty/internal/middleware"
	"github.com/hitoshi/gitbounty/internal/model"
)

// CompanyServiceInterface は管理ハンドラーが必要とするサービスインターフェース。
type CompanyServiceInterface interface {
	// GetCompany は企業プロフィールを取得する。
	GetCompany(ctx context.Context, companyID string) (*model.Company, error)
	// UpdateName は企業名を更新する。
	UpdateName(ctx context.Context, companyID, name string) (*model.Company, error)
	// ListCurrencies は企業の通貨一覧と総件数を返す。codeは完全一致フィルター（空で無効）。
	ListCurrencies(ctx context.Context, companyID, code string, page, pageSize int) ([]*model.Currency, int, error)
	// GetCurrency は通貨コードで1件取得する。大文字小文字を区別しない。
	GetCurrency(ctx context.Context, companyID, code string) (*model.Currency, error)
}

// AdminHandler は企業管理APIのHTTPハンドラー。
// 認証ミドルウェアが注入した企業IDをコンテキストから取り出して使う。
type AdminHandler struct {
	service CompanyServiceInterface
}

// NewAdminHandler はAdminHandlerを生成する。
func NewAdminHandler(service CompanyServiceInterface) *AdminHandler {
	return &AdminHandler{
		service: service,
	}
}

// adminCompanyResponse は管理APIで返す企業情報。
// secretはWebhook設定に使うため管理者自身には開示する。
type adminCompanyResponse struct {
	Identifier string    `json:"identifier"`
	Secret     string    `json:"secret"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}

// currencyResponse は管理APIで返す通貨情報。
type currencyResponse struct {
	Code         string `json:"code"`
	Description  string `json:"description"`
	Symbol       string `json:"symbol"`
	Unit         string `json:"unit"`
	Divisibility int    `json:"divisibility"`
	Enabled      bool   `json:"enabled"`
}

// pagedResponse はページネーション付き一覧のdataフィールド。
type pagedResponse struct {
	Count   int `json:"count"`
	Results any `json:"results"`
}

// GetCompany は認証済み企業のプロフィールを返す。
// GET /admin/company/
func (h *AdminHandler) GetCompany(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.CompanyIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	company, err := h.service.GetCompany(r.Context(), companyID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, toAdminCompanyResponse(company))
}

// updateCompanyRequest は企業プロフィール更新のリクエストボディ。
type updateCompanyRequest struct {
	Name string `json:"name"`
}

// UpdateCompany は認証済み企業の名前を更新する。
// PATCH /admin/company/
func (h *AdminHandler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.CompanyIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req updateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}
	if req.Name == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("name", "Name is required."))
		return
	}

	company, err := h.service.UpdateName(r.Context(), companyID, req.Name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, toAdminCompanyResponse(company))
}

// ListCurrencies は認証済み企業の通貨一覧を返す。
// GET /admin/currencies/?page=&page_size=&code=
func (h *AdminHandler) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.CompanyIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	page, pageSize := paginationParams(r)
	code := r.URL.Query().Get("code")

	currencies, total, err := h.service.ListCurrencies(r.Context(), companyID, code, page, pageSize)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]currencyResponse, 0, len(currencies))
	for _, c := range currencies {
		results = append(results, toCurrencyResponse(c))
	}

	writeSuccess(w, http.StatusOK, pagedResponse{
		Count:   total,
		Results: results,
	})
}

// GetCurrency は通貨コードで1件取得する。
// GET /admin/currencies/{code}/
func (h *AdminHandler) GetCurrency(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.CompanyIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	code := chi.URLParam(r, "code")

	currency, err := h.service.GetCurrency(r.Context(), companyID, code)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, toCurrencyResponse(currency))
}

func toAdminCompanyResponse(company *model.Company) adminCompanyResponse {
	return adminCompanyResponse{
		Identifier: company.Identifier,
		Secret:     company.Secret,
		Name:       company.Name,
		CreatedAt:  company.CreatedAt,
	}
}

func toCurrencyResponse(c *model.Currency) currencyResponse {
	return currencyResponse{
		Code:         c.Code,
		Description:  c.Description,
		Symbol:       c.Symbol,
		Unit:         c.Unit,
		Divisibility: c.Divisibility,
		Enabled:      c.Enabled,
	}
}

// paginationParams はクエリからpage/page_sizeを取り出す。
// 解析できない値はサービス層のデフォルトに任せるため0を返す。
func paginationParams(r *http.Request) (page, pageSize int) {
	q := r.URL.Query()
	page, _ = strconv.Atoi(q.Get("page"))
	pageSize, _ = strconv.Atoi(q.Get("page_size"))
	return page, pageSize
}
