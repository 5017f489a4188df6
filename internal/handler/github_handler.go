package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/gitbounty/internal/bounty"
	"github.com/hitoshi/gitbounty/internal/ledger"
)

// WebhookServiceInterface はGitHub Webhookハンドラーが必要とするサービスインターフェース。
type WebhookServiceInterface interface {
	// HandlePullRequest はプルリクエストイベントを処理する。
	HandlePullRequest(ctx context.Context, event *bounty.PullRequestEvent) (*bounty.Result, error)
}

// GithubHandler はGitHub WebhookのHTTPハンドラー。
type GithubHandler struct {
	service WebhookServiceInterface
}

// NewGithubHandler はGithubHandlerを生成する。
func NewGithubHandler(service WebhookServiceInterface) *GithubHandler {
	return &GithubHandler{
		service: service,
	}
}

// transactionResponse はWebhook処理で作成・更新した台帳トランザクションの表現。
type transactionResponse struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
	Reference string `json:"reference"`
}

// HandleWebhook はGitHubのプルリクエストWebhookを処理する。
// POST /github/
//
// 処理結果に応じて以下を返す:
//
//	トランザクション作成・更新: 201、dataにトランザクション
//	pull_requestキーなし: 200、data "FAIL"
//	対象外アクション: 200、data "IGNORED"
func (h *GithubHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	var event bounty.PullRequestEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	result, err := h.service.HandlePullRequest(r.Context(), &event)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if result.Outcome == bounty.OutcomeTransaction {
		writeSuccess(w, http.StatusCreated, toTransactionResponse(result.Transaction))
		return
	}

	writeSuccess(w, http.StatusOK, string(result.Outcome))
}

func toTransactionResponse(tx *ledger.Transaction) transactionResponse {
	return transactionResponse{
		ID:        tx.ID,
		Amount:    tx.Amount,
		Currency:  tx.Currency,
		Status:    tx.Status,
		Reference: tx.Reference,
	}
}
