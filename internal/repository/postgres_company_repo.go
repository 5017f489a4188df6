package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/gitbounty/internal/model"
)

// PostgresCompanyRepo はPostgreSQLを使用した企業リポジトリ。
type PostgresCompanyRepo struct {
	db *sql.DB
}

// NewPostgresCompanyRepo はPostgresCompanyRepoを生成する。
func NewPostgresCompanyRepo(db *sql.DB) *PostgresCompanyRepo {
	return &PostgresCompanyRepo{db: db}
}

const companyColumns = `id, identifier, secret, name, admin_user_id, created_at, updated_at`

// scanCompany は1行をmodel.Companyに読み取る。
func scanCompany(row *sql.Row) (*model.Company, error) {
	company := &model.Company{}
	var name sql.NullString
	err := row.Scan(&company.ID, &company.Identifier, &company.Secret, &name,
		&company.AdminUserID, &company.CreatedAt, &company.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	company.Name = name.String
	return company, nil
}

// FindByID は指定IDの企業を取得する。見つからない場合はnilを返す。
func (r *PostgresCompanyRepo) FindByID(ctx context.Context, id string) (*model.Company, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = $1`, id)
	company, err := scanCompany(row)
	if err != nil {
		return nil, fmt.Errorf("failed to find company by ID: %w", err)
	}
	return company, nil
}

// FindByIdentifier はプロバイダidentifierで企業を検索する。見つからない場合はnilを返す。
func (r *PostgresCompanyRepo) FindByIdentifier(ctx context.Context, identifier string) (*model.Company, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE identifier = $1`, identifier)
	company, err := scanCompany(row)
	if err != nil {
		return nil, fmt.Errorf("failed to find company by identifier: %w", err)
	}
	return company, nil
}

// UpdateName は企業名を更新する。
func (r *PostgresCompanyRepo) UpdateName(ctx context.Context, id, name string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE companies SET name = $2, updated_at = now() WHERE id = $1`,
		id, nullString(name),
	)
	if err != nil {
		return fmt.Errorf("failed to update company name: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("company not found: %s", id)
	}
	return nil
}

// CreateActivation は管理ユーザー・企業・通貨群を同一トランザクションで作成する。
// 作成順序: user（company_idなし）→ company → userにcompany_idを付与 → currencies。
// secretの一意性制約違反を含め、いずれかの失敗で全体がロールバックされる。
func (r *PostgresCompanyRepo) CreateActivation(ctx context.Context, admin *model.User, company *model.Company, currencies []*model.Currency) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()

	// 管理ユーザーを作成（企業はまだ存在しないためcompany_idはNULL）
	admin.CreatedAt = now
	admin.UpdatedAt = now
	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, identifier, username, token, company_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, NULL, $5, $6)`,
		admin.ID, admin.Identifier, nullString(admin.Username), nullString(admin.Token),
		admin.CreatedAt, admin.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert admin user: %w", err)
	}

	// 企業を作成
	company.CreatedAt = now
	company.UpdatedAt = now
	_, err = tx.ExecContext(ctx,
		`INSERT INTO companies (id, identifier, secret, name, admin_user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		company.ID, company.Identifier, company.Secret, nullString(company.Name),
		company.AdminUserID, company.CreatedAt, company.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert company: %w", err)
	}

	// 管理ユーザーを企業に所属させる
	_, err = tx.ExecContext(ctx,
		`UPDATE users SET company_id = $2, updated_at = $3 WHERE id = $1`,
		admin.ID, company.ID, now,
	)
	if err != nil {
		return fmt.Errorf("failed to attach admin user to company: %w", err)
	}
	admin.CompanyID = company.ID

	// プロバイダ由来の通貨を追加する
	for _, currency := range currencies {
		currency.CompanyID = company.ID
		currency.CreatedAt = now
		currency.UpdatedAt = now
		_, err = tx.ExecContext(ctx,
			`INSERT INTO currencies (id, company_id, code, description, symbol, unit, divisibility, enabled, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			currency.ID, currency.CompanyID, currency.Code, nullString(currency.Description),
			nullString(currency.Symbol), nullString(currency.Unit),
			currency.Divisibility, currency.Enabled, currency.CreatedAt, currency.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert currency %s: %w", currency.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// compile-time interface check
var _ CompanyRepository = (*PostgresCompanyRepo)(nil)
