// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/gitbounty/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByUsername はGitHubログイン名でユーザーを検索する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// FindByToken は保存済みプロバイダトークンでユーザーを検索する。
	// アクティベーション時に作成された管理ユーザーのみトークンを持つ。
	// 見つからない場合はnilを返す。
	FindByToken(ctx context.Context, token string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// UpdateIdentifier はユーザーのプロバイダidentifierを更新する。
	// プロバイダ側でユーザーが作り直された場合のマッピング修復に使う。
	UpdateIdentifier(ctx context.Context, id, identifier string) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 管理ユーザーの場合、所有する企業と通貨はCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// CompanyRepository は企業データの永続化インターフェース。
type CompanyRepository interface {
	// FindByID は指定IDの企業を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Company, error)

	// FindByIdentifier はプロバイダidentifierで企業を検索する。見つからない場合はnilを返す。
	FindByIdentifier(ctx context.Context, identifier string) (*model.Company, error)

	// UpdateName は企業名を更新する。
	UpdateName(ctx context.Context, id, name string) error

	// CreateActivation は管理ユーザー・企業・通貨群を同一トランザクションで作成する。
	// すべて成功するか、すべてロールバックされるかのいずれか。
	CreateActivation(ctx context.Context, admin *model.User, company *model.Company, currencies []*model.Currency) error
}

// CurrencyRepository は通貨データの永続化インターフェース。
type CurrencyRepository interface {
	// ListByCompany は企業の通貨一覧と総件数を返す。
	// codeが空でない場合は完全一致でフィルタする。code昇順で返す。
	ListByCompany(ctx context.Context, companyID, code string, limit, offset int) ([]*model.Currency, int, error)

	// FindByCompanyAndCode は企業内の通貨をcodeの大文字小文字を無視した
	// 完全一致で検索する。見つからない場合はnilを返す。
	FindByCompanyAndCode(ctx context.Context, companyID, code string) (*model.Currency, error)
}

// BountyRepository は報奨金データの永続化インターフェース。
type BountyRepository interface {
	// Create は報奨金レコードを作成する。
	Create(ctx context.Context, bounty *model.GithubIssueBounty) error

	// FindByID は指定IDの報奨金を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.GithubIssueBounty, error)

	// FindByIssueNr はissue番号で報奨金を検索する。複数ある場合は最新を返す。
	// 見つからない場合はnilを返す。
	FindByIssueNr(ctx context.Context, issueNr int) (*model.GithubIssueBounty, error)

	// List は報奨金一覧と総件数を作成日時の降順で返す。
	List(ctx context.Context, limit, offset int) ([]*model.GithubIssueBounty, int, error)

	// DeleteByURL はissue URLに一致する報奨金を削除する。
	// 削除した場合はtrueを返す。
	DeleteByURL(ctx context.Context, url string) (bool, error)
}
