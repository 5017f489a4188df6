package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/gitbounty/internal/model"
)

// ActivationServiceInterface はアクティベーションハンドラーが必要とするサービスインターフェース。
type ActivationServiceInterface interface {
	// Activate はプロバイダトークンを検証し、企業・管理者・通貨を一括登録する。
	Activate(ctx context.Context, token string) (*model.Company, error)
	// Deactivate は企業と関連レコードを削除する。
	Deactivate(ctx context.Context, token string) error
}

// TokenVerifier はサービストークンの検証に必要なインターフェース。
// ledger.Clientの部分集合として定義する。
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (json.RawMessage, error)
}

// ActivationHandler は企業アクティベーションのHTTPハンドラー。
type ActivationHandler struct {
	service      ActivationServiceInterface
	verifier     TokenVerifier
	serviceToken string
}

// NewActivationHandler はActivationHandlerを生成する。
// serviceTokenは/verify/で検証するこのサービス自身のプロバイダトークン。
func NewActivationHandler(service ActivationServiceInterface, verifier TokenVerifier, serviceToken string) *ActivationHandler {
	return &ActivationHandler{
		service:      service,
		verifier:     verifier,
		serviceToken: serviceToken,
	}
}

// tokenRequest はアクティベーション系エンドポイント共通のリクエストボディ。
type tokenRequest struct {
	Token string `json:"token"`
}

// companyResponse はアクティベーション成功時に返す企業情報。
type companyResponse struct {
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
	Secret     string `json:"secret"`
}

// Activate は企業をアクティベートする。
// POST /activate/
func (h *ActivationHandler) Activate(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}
	if req.Token == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("token", "Token is required."))
		return
	}

	company, err := h.service.Activate(r.Context(), req.Token)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, companyResponse{
		Identifier: company.Identifier,
		Name:       company.Name,
		Secret:     company.Secret,
	})
}

// Deactivate は企業をディアクティベートする。
// POST /deactivate/
func (h *ActivationHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}
	if req.Token == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("token", "Token is required."))
		return
	}

	if err := h.service.Deactivate(r.Context(), req.Token); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, nil)
}

// Verify はサービストークンの有効性をプロバイダに確認する。
// GET /verify/
func (h *ActivationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	data, err := h.verifier.VerifyToken(r.Context(), h.serviceToken)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, data)
}
