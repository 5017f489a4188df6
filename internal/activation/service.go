// Package activation は企業のアクティベーション／ディアクティベーションの
// ドメインロジックを提供する。
package activation

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hitoshi/gitbounty/internal/ledger"
	"github.com/hitoshi/gitbounty/internal/model"
	"github.com/hitoshi/gitbounty/internal/repository"
)

// LedgerClient はアクティベーションが必要とする台帳プロバイダ操作のインターフェース。
type LedgerClient interface {
	// GetUser は指定トークンのユーザープロフィールを取得する。
	GetUser(ctx context.Context, token string) (*ledger.User, error)
	// GetAdminCompany は指定トークンの管理ユーザーが属する企業を取得する。
	GetAdminCompany(ctx context.Context, token string) (*ledger.Company, error)
	// ListCompanyCurrencies は指定トークンの企業の通貨一覧を取得する。
	ListCompanyCurrencies(ctx context.Context, token string) ([]ledger.Currency, error)
}

// Service はアクティベーションワークフローのサービス層。
type Service struct {
	ledger      LedgerClient
	companyRepo repository.CompanyRepository
	userRepo    repository.UserRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(ledgerClient LedgerClient, companyRepo repository.CompanyRepository, userRepo repository.UserRepository) *Service {
	return &Service{
		ledger:      ledgerClient,
		companyRepo: companyRepo,
		userRepo:    userRepo,
	}
}

// adminGroups はアクティベーションを許可するプロバイダグループ。
var adminGroups = map[string]bool{
	"admin":   true,
	"service": true,
}

// hasAdminGroup はグループ名の集合にadmin/serviceが含まれるかを返す。
func hasAdminGroup(names []string) bool {
	for _, name := range names {
		if adminGroups[name] {
			return true
		}
	}
	return false
}

// Activate はトークンを検証し、企業・管理ユーザー・通貨群を1つの
// アトミックな単位として作成する。
// ステップ1〜4は副作用のない事前検証で、プロバイダエラーはそこで
// アクティベーション全体を中断する。ローカル書き込みはステップ5の
// 単一トランザクションのみ。
func (s *Service) Activate(ctx context.Context, token string) (*model.Company, error) {
	// 1. トークンをプロバイダで認証し、admin/serviceグループを要求する
	providerUser, err := s.ledger.GetUser(ctx, token)
	if err != nil {
		return nil, model.NewInvalidUserError()
	}
	if !hasAdminGroup(providerUser.GroupNames()) {
		return nil, model.NewInvalidAdminUserError()
	}

	// 2. プロバイダから企業を取得する
	providerCompany, err := s.ledger.GetAdminCompany(ctx, token)
	if err != nil {
		return nil, model.NewInvalidCompanyError()
	}

	// 3. 既にアクティベート済みでないことを確認する
	existing, err := s.companyRepo.FindByIdentifier(ctx, providerCompany.Identifier)
	if err != nil {
		return nil, fmt.Errorf("企業の検索に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewAlreadyActivatedError()
	}

	// 4. プロバイダから通貨一覧を取得する
	providerCurrencies, err := s.ledger.ListCompanyCurrencies(ctx, token)
	if err != nil {
		return nil, model.NewUnknownProviderError()
	}

	identifier, err := providerIdentifierHex(providerUser.Identifier)
	if err != nil {
		return nil, model.NewUnknownProviderError()
	}

	// 5. 管理ユーザー・企業・通貨を単一トランザクションで作成する
	admin := &model.User{
		ID:         uuid.NewString(),
		Identifier: identifier,
		Token:      token,
	}
	company := &model.Company{
		ID:          uuid.NewString(),
		Identifier:  providerCompany.Identifier,
		Secret:      uuid.NewString(),
		Name:        providerCompany.Name,
		AdminUserID: admin.ID,
	}
	currencies := make([]*model.Currency, 0, len(providerCurrencies))
	for _, pc := range providerCurrencies {
		currencies = append(currencies, &model.Currency{
			ID:           uuid.NewString(),
			Code:         pc.Code,
			Description:  pc.Description,
			Symbol:       pc.Symbol,
			Unit:         pc.Unit,
			Divisibility: pc.Divisibility,
			Enabled:      pc.Enabled,
		})
	}

	if err := s.companyRepo.CreateActivation(ctx, admin, company, currencies); err != nil {
		return nil, fmt.Errorf("アクティベーションの保存に失敗しました: %w", err)
	}

	slog.Info("企業をアクティベートしました",
		slog.String("identifier", company.Identifier),
		slog.Int("currencies", len(currencies)),
	)

	return company, nil
}

// Deactivate はトークンを再検証し、企業の管理ユーザーを削除する。
// 企業と通貨はCASCADE削除される。
func (s *Service) Deactivate(ctx context.Context, token string) error {
	providerUser, err := s.ledger.GetUser(ctx, token)
	if err != nil {
		return model.NewInvalidUserError()
	}
	if !hasAdminGroup(providerUser.GroupNames()) {
		return model.NewInvalidAdminUserError()
	}

	company, err := s.companyRepo.FindByIdentifier(ctx, providerUser.Company)
	if err != nil {
		return fmt.Errorf("企業の検索に失敗しました: %w", err)
	}
	if company == nil {
		return model.NewNotActivatedError()
	}

	if err := s.userRepo.DeleteByID(ctx, company.AdminUserID); err != nil {
		return fmt.Errorf("管理ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("企業をディアクティベートしました",
		slog.String("identifier", company.Identifier),
	)

	return nil
}

// providerIdentifierHex はプロバイダのユーザーUUIDを32桁のhex文字列に正規化する。
func providerIdentifierHex(identifier string) (string, error) {
	parsed, err := uuid.Parse(identifier)
	if err != nil {
		return "", fmt.Errorf("invalid provider user identifier: %w", err)
	}
	return hex.EncodeToString(parsed[:]), nil
}
