// Package bounty はGitHub issue報奨金のドメインロジックを提供する。
// 報奨金レコードのCRUDと、プルリクエストWebhookイベントに応じた
// 台帳トランザクションの作成・確定・失敗を扱う。
package bounty

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hitoshi/gitbounty/internal/ledger"
	"github.com/hitoshi/gitbounty/internal/model"
	"github.com/hitoshi/gitbounty/internal/money"
	"github.com/hitoshi/gitbounty/internal/repository"
)

const (
	// defaultPageSize はページネーションのデフォルト件数。
	defaultPageSize = 10
	// maxPageSize は1ページの最大件数。
	maxPageSize = 250
)

// LedgerClient は報奨金処理が必要とする台帳プロバイダ操作のインターフェース。
type LedgerClient interface {
	// GetUserByIdentifier は指定identifierのプロバイダユーザーを取得する。
	GetUserByIdentifier(ctx context.Context, identifier string) (*ledger.User, error)
	// CreateUser は新規プロバイダユーザーを作成する。
	CreateUser(ctx context.Context) (*ledger.User, error)
	// CreateCreditTransaction はクレジットトランザクションを作成する。
	CreateCreditTransaction(ctx context.Context, userIdentifier string, amount int64, currency, status, reference string) (*ledger.Transaction, error)
	// ListTransactionsByReference は指定referenceに一致するトランザクション一覧を取得する。
	ListTransactionsByReference(ctx context.Context, reference string) ([]ledger.Transaction, error)
	// ConfirmTransaction は指定トランザクションを確定する。
	ConfirmTransaction(ctx context.Context, id string) (*ledger.Transaction, error)
	// FailTransaction は指定トランザクションを失敗としてマークする。
	FailTransaction(ctx context.Context, id string) (*ledger.Transaction, error)
}

// EventRecorder はWebhook処理のメトリクス記録インターフェース。nil可。
type EventRecorder interface {
	RecordWebhookEvent(action string)
	RecordTransactionCreated()
	RecordTransactionConfirmed()
	RecordTransactionFailed()
}

// Service は報奨金のサービス層。
type Service struct {
	bountyRepo repository.BountyRepository
	userRepo   repository.UserRepository
	ledger     LedgerClient
	metrics    EventRecorder
	currency   string // 報奨金支払いに使う固定通貨コード
}

// NewService はServiceの新しいインスタンスを生成する。
// currencyは報奨金トランザクションに使う通貨コード。metricsはnil可。
func NewService(bountyRepo repository.BountyRepository, userRepo repository.UserRepository, ledgerClient LedgerClient, metrics EventRecorder, currency string) *Service {
	return &Service{
		bountyRepo: bountyRepo,
		userRepo:   userRepo,
		ledger:     ledgerClient,
		metrics:    metrics,
		currency:   currency,
	}
}

// List は報奨金一覧と総件数を作成日時の降順で返す。pageは1始まり。
func (s *Service) List(ctx context.Context, page, pageSize int) ([]*model.GithubIssueBounty, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	bounties, total, err := s.bountyRepo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("報奨金一覧の取得に失敗しました: %w", err)
	}
	return bounties, total, nil
}

// Get は指定IDの報奨金を取得する。
func (s *Service) Get(ctx context.Context, id string) (*model.GithubIssueBounty, error) {
	bounty, err := s.bountyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("報奨金の取得に失敗しました: %w", err)
	}
	if bounty == nil {
		return nil, model.NewBountyNotFoundError(id)
	}
	return bounty, nil
}

// Create は報奨金レコードを作成する。
// amountMinorは最小単位の整数（divisibility 0）で受け取る。
func (s *Service) Create(ctx context.Context, issueNr int, url string, amountMinor int64, status string) (*model.GithubIssueBounty, error) {
	if issueNr <= 0 {
		return nil, model.NewValidationError("issue_nr", "Issue number must be positive.")
	}
	if url == "" {
		return nil, model.NewValidationError("url", "URL is required.")
	}
	if amountMinor < 0 {
		return nil, model.NewValidationError("amount", "Amount must not be negative.")
	}
	bountyStatus := model.BountyStatus(status)
	if !bountyStatus.IsValid() {
		return nil, model.NewValidationError("status", fmt.Sprintf("Invalid status: %s", status))
	}

	bounty := &model.GithubIssueBounty{
		ID:      uuid.NewString(),
		IssueNr: issueNr,
		URL:     url,
		Amount:  money.FromCents(amountMinor, 0),
		Status:  bountyStatus,
	}

	if err := s.bountyRepo.Create(ctx, bounty); err != nil {
		return nil, fmt.Errorf("報奨金の作成に失敗しました: %w", err)
	}
	return bounty, nil
}
