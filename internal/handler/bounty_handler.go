package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/gitbounty/internal/model"
	"github.com/hitoshi/gitbounty/internal/money"
)

// BountyServiceInterface は報奨金ハンドラーが必要とするサービスインターフェース。
type BountyServiceInterface interface {
	// List は報奨金一覧と総件数を作成日時の降順で返す。
	List(ctx context.Context, page, pageSize int) ([]*model.GithubIssueBounty, int, error)
	// Get は指定IDの報奨金を取得する。
	Get(ctx context.Context, id string) (*model.GithubIssueBounty, error)
	// Create は報奨金レコードを作成する。amountMinorは最小単位の整数。
	Create(ctx context.Context, issueNr int, url string, amountMinor int64, status string) (*model.GithubIssueBounty, error)
}

// BountyHandler は報奨金管理APIのHTTPハンドラー。
type BountyHandler struct {
	service BountyServiceInterface
}

// NewBountyHandler はBountyHandlerを生成する。
func NewBountyHandler(service BountyServiceInterface) *BountyHandler {
	return &BountyHandler{
		service: service,
	}
}

// bountyResponse は報奨金のレスポンス表現。金額は最小単位の整数。
type bountyResponse struct {
	ID        string    `json:"id"`
	IssueNr   int       `json:"issue_nr"`
	URL       string    `json:"url"`
	Amount    int64     `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// createBountyRequest は報奨金作成のリクエストボディ。
type createBountyRequest struct {
	IssueNr int    `json:"issue_nr"`
	URL     string `json:"url"`
	Amount  int64  `json:"amount"`
	Status  string `json:"status"`
}

// ListBounties は報奨金一覧を返す。
// GET /github/bounties/?page=&page_size=
func (h *BountyHandler) ListBounties(w http.ResponseWriter, r *http.Request) {
	page, pageSize := paginationParams(r)

	bounties, total, err := h.service.List(r.Context(), page, pageSize)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]bountyResponse, 0, len(bounties))
	for _, b := range bounties {
		results = append(results, toBountyResponse(b))
	}

	writeSuccess(w, http.StatusOK, pagedResponse{
		Count:   total,
		Results: results,
	})
}

// CreateBounty は報奨金レコードを作成する。
// POST /github/bounties/
func (h *BountyHandler) CreateBounty(w http.ResponseWriter, r *http.Request) {
	var req createBountyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	status := req.Status
	if status == "" {
		status = string(model.BountyStatusPending)
	}

	bounty, err := h.service.Create(r.Context(), req.IssueNr, req.URL, req.Amount, status)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, toBountyResponse(bounty))
}

// GetBounty は指定IDの報奨金を返す。
// GET /github/bounties/{id}/
func (h *BountyHandler) GetBounty(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	bounty, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, toBountyResponse(bounty))
}

func toBountyResponse(b *model.GithubIssueBounty) bountyResponse {
	return bountyResponse{
		ID:        b.ID,
		IssueNr:   b.IssueNr,
		URL:       b.URL,
		Amount:    money.ToCents(b.Amount, 0),
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt,
	}
}
