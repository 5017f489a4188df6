package bounty

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/hitoshi/gitbounty/internal/model"
)

func TestList_ClampsPagination(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		pageSize   int
		wantLimit  int
		wantOffset int
	}{
		{"デフォルト", 0, 0, 10, 0},
		{"2ページ目", 2, 20, 20, 20},
		{"負のページ", -1, 5, 5, 0},
		{"上限超過", 1, 1000, 250, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotLimit, gotOffset int
			repo := &mockBountyRepo{
				listFn: func(ctx context.Context, limit, offset int) ([]*model.GithubIssueBounty, int, error) {
					gotLimit = limit
					gotOffset = offset
					return nil, 0, nil
				},
			}
			svc := NewService(repo, &mockUserRepo{}, &mockLedgerClient{}, nil, "USD")

			if _, _, err := svc.List(context.Background(), tt.page, tt.pageSize); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if gotLimit != tt.wantLimit || gotOffset != tt.wantOffset {
				t.Errorf("List(%d, %d) = limit %d offset %d, want limit %d offset %d",
					tt.page, tt.pageSize, gotLimit, gotOffset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := NewService(&mockBountyRepo{}, &mockUserRepo{}, &mockLedgerClient{}, nil, "USD")

	_, err := svc.Get(context.Background(), "no-such-id")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeBountyNotFound {
		t.Fatalf("expected bounty not found error, got %v", err)
	}
}

func TestGet_ReturnsBounty(t *testing.T) {
	repo := &mockBountyRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.GithubIssueBounty, error) {
			return &model.GithubIssueBounty{ID: id, IssueNr: 7}, nil
		},
	}
	svc := NewService(repo, &mockUserRepo{}, &mockLedgerClient{}, nil, "USD")

	bounty, err := svc.Get(context.Background(), "bounty-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if bounty.IssueNr != 7 {
		t.Errorf("IssueNr = %d, want 7", bounty.IssueNr)
	}
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name    string
		issueNr int
		url     string
		amount  int64
		status  string
	}{
		{"issue番号が0", 0, "https://example.com/1", 10, "pending"},
		{"issue番号が負", -3, "https://example.com/1", 10, "pending"},
		{"URLが空", 7, "", 10, "pending"},
		{"金額が負", 7, "https://example.com/1", -1, "pending"},
		{"不正なステータス", 7, "https://example.com/1", 10, "open"},
	}

	svc := NewService(&mockBountyRepo{}, &mockUserRepo{}, &mockLedgerClient{}, nil, "USD")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.issueNr, tt.url, tt.amount, tt.status)
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreate_PersistsBounty(t *testing.T) {
	var created *model.GithubIssueBounty
	repo := &mockBountyRepo{
		createFn: func(ctx context.Context, bounty *model.GithubIssueBounty) error {
			created = bounty
			return nil
		},
	}
	svc := NewService(repo, &mockUserRepo{}, &mockLedgerClient{}, nil, "USD")

	bounty, err := svc.Create(context.Background(), 7, "https://github.com/acme/repo/issues/7", 50, "pending")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created == nil {
		t.Fatal("bounty was not persisted")
	}
	if bounty.ID == "" {
		t.Error("expected generated ID")
	}
	if !bounty.Amount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Amount = %s, want 50", bounty.Amount)
	}
	if bounty.Status != model.BountyStatusPending {
		t.Errorf("Status = %q, want pending", bounty.Status)
	}
}
