package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/hitoshi/gitbounty/internal/model"
)

type mockBountyService struct {
	listFn   func(ctx context.Context, page, pageSize int) ([]*model.GithubIssueBounty, int, error)
	getFn    func(ctx context.Context, id string) (*model.GithubIssueBounty, error)
	createFn func(ctx context.Context, issueNr int, url string, amountMinor int64, status string) (*model.GithubIssueBounty, error)
}

func (m *mockBountyService) List(ctx context.Context, page, pageSize int) ([]*model.GithubIssueBounty, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, page, pageSize)
	}
	return nil, 0, nil
}

func (m *mockBountyService) Get(ctx context.Context, id string) (*model.GithubIssueBounty, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, nil
}

func (m *mockBountyService) Create(ctx context.Context, issueNr int, url string, amountMinor int64, status string) (*model.GithubIssueBounty, error) {
	if m.createFn != nil {
		return m.createFn(ctx, issueNr, url, amountMinor, status)
	}
	return nil, nil
}

func TestListBounties_SerializesAmountInMinorUnits(t *testing.T) {
	service := &mockBountyService{
		listFn: func(ctx context.Context, page, pageSize int) ([]*model.GithubIssueBounty, int, error) {
			return []*model.GithubIssueBounty{
				{
					ID:      "bounty-1",
					IssueNr: 7,
					URL:     "https://github.com/acme/repo/issues/7",
					Amount:  decimal.NewFromInt(50),
					Status:  model.BountyStatusPending,
				},
			}, 1, nil
		},
	}
	h := NewBountyHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/github/bounties/", nil)
	rec := httptest.NewRecorder()

	h.ListBounties(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	results := data["results"].([]any)
	first := results[0].(map[string]any)
	if first["amount"] != float64(50) {
		t.Errorf("amount = %v, want 50", first["amount"])
	}
	if first["status"] != "pending" {
		t.Errorf("status = %v, want pending", first["status"])
	}
}

func TestCreateBounty_DefaultsStatusToPending(t *testing.T) {
	service := &mockBountyService{
		createFn: func(ctx context.Context, issueNr int, url string, amountMinor int64, status string) (*model.GithubIssueBounty, error) {
			if status != "pending" {
				t.Errorf("status = %q, want pending", status)
			}
			return &model.GithubIssueBounty{
				ID:      "bounty-1",
				IssueNr: issueNr,
				URL:     url,
				Amount:  decimal.NewFromInt(amountMinor),
				Status:  model.BountyStatus(status),
			}, nil
		},
	}
	h := NewBountyHandler(service)

	body := `{"issue_nr":7,"url":"https://github.com/acme/repo/issues/7","amount":50}`
	req := httptest.NewRequest(http.MethodPost, "/github/bounties/", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.CreateBounty(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
}

func TestCreateBounty_ValidationError(t *testing.T) {
	service := &mockBountyService{
		createFn: func(ctx context.Context, issueNr int, url string, amountMinor int64, status string) (*model.GithubIssueBounty, error) {
			return nil, model.NewValidationError("issue_nr", "Issue number must be positive.")
		},
	}
	h := NewBountyHandler(service)

	req := httptest.NewRequest(http.MethodPost, "/github/bounties/", strings.NewReader(`{"url":"u","amount":1}`))
	rec := httptest.NewRecorder()

	h.CreateBounty(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if _, ok := data["issue_nr"]; !ok {
		t.Error("expected field-scoped error for issue_nr")
	}
}

func TestGetBounty_NotFound(t *testing.T) {
	service := &mockBountyService{
		getFn: func(ctx context.Context, id string) (*model.GithubIssueBounty, error) {
			return nil, model.NewBountyNotFoundError(id)
		},
	}
	h := NewBountyHandler(service)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "no-such-id")
	req := httptest.NewRequest(http.MethodGet, "/github/bounties/no-such-id/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	h.GetBounty(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
