// Package company は管理者向けの企業・通貨参照のドメインロジックを提供する。
package company

import (
	"context"
	"fmt"

	"github.com/hitoshi/gitbounty/internal/model"
	"github.com/hitoshi/gitbounty/internal/repository"
)

const (
	// defaultPageSize はページネーションのデフォルト件数。
	defaultPageSize = 10
	// maxPageSize は1ページの最大件数。
	maxPageSize = 250
)

// Service は管理者向けクエリのサービス層。
type Service struct {
	companyRepo  repository.CompanyRepository
	currencyRepo repository.CurrencyRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(companyRepo repository.CompanyRepository, currencyRepo repository.CurrencyRepository) *Service {
	return &Service{
		companyRepo:  companyRepo,
		currencyRepo: currencyRepo,
	}
}

// GetCompany は認証済み管理者の企業プロフィールを取得する。
// 認証ミドルウェアを通過したcompanyIDに対して呼ばれるため、
// 見つからない場合は認証情報の失効として扱う。
func (s *Service) GetCompany(ctx context.Context, companyID string) (*model.Company, error) {
	company, err := s.companyRepo.FindByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("企業の取得に失敗しました: %w", err)
	}
	if company == nil {
		return nil, model.NewUnauthorizedError()
	}
	return company, nil
}

// UpdateName は企業名を更新し、更新後の企業を返す。
// identifierとsecretは変更できない。
func (s *Service) UpdateName(ctx context.Context, companyID, name string) (*model.Company, error) {
	company, err := s.GetCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	if err := s.companyRepo.UpdateName(ctx, companyID, name); err != nil {
		return nil, fmt.Errorf("企業名の更新に失敗しました: %w", err)
	}
	company.Name = name
	return company, nil
}

// ListCurrencies は企業の通貨一覧と総件数を返す。
// codeが空でない場合は完全一致でフィルタする。pageは1始まり。
func (s *Service) ListCurrencies(ctx context.Context, companyID, code string, page, pageSize int) ([]*model.Currency, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	offset := (page - 1) * pageSize
	currencies, total, err := s.currencyRepo.ListByCompany(ctx, companyID, code, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("通貨一覧の取得に失敗しました: %w", err)
	}
	return currencies, total, nil
}

// GetCurrency は企業内の通貨をcodeの大文字小文字を無視して取得する。
func (s *Service) GetCurrency(ctx context.Context, companyID, code string) (*model.Currency, error) {
	currency, err := s.currencyRepo.FindByCompanyAndCode(ctx, companyID, code)
	if err != nil {
		return nil, fmt.Errorf("通貨の取得に失敗しました: %w", err)
	}
	if currency == nil {
		return nil, model.NewCurrencyNotFoundError(code)
	}
	return currency, nil
}
