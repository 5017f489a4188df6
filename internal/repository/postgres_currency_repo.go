package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/gitbounty/internal/model"
)

// PostgresCurrencyRepo はPostgreSQLを使用した通貨リポジトリ。
type PostgresCurrencyRepo struct {
	db *sql.DB
}

// NewPostgresCurrencyRepo はPostgresCurrencyRepoを生成する。
func NewPostgresCurrencyRepo(db *sql.DB) *PostgresCurrencyRepo {
	return &PostgresCurrencyRepo{db: db}
}

const currencyColumns = `id, company_id, code, description, symbol, unit, divisibility, enabled, created_at, updated_at`

// ListByCompany は企業の通貨一覧と総件数を返す。
// codeが空でない場合は完全一致でフィルタする。code昇順で返す。
func (r *PostgresCurrencyRepo) ListByCompany(ctx context.Context, companyID, code string, limit, offset int) ([]*model.Currency, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM currencies WHERE company_id = $1`
	listQuery := `SELECT ` + currencyColumns + ` FROM currencies WHERE company_id = $1`
	args := []any{companyID}

	if code != "" {
		countQuery += ` AND code = $2`
		listQuery += ` AND code = $2`
		args = append(args, code)
	}

	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count currencies: %w", err)
	}

	listQuery += fmt.Sprintf(` ORDER BY code ASC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list currencies: %w", err)
	}
	defer rows.Close()

	var currencies []*model.Currency
	for rows.Next() {
		currency, err := scanCurrencyRow(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan currency: %w", err)
		}
		currencies = append(currencies, currency)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate currencies: %w", err)
	}

	return currencies, total, nil
}

// FindByCompanyAndCode は企業内の通貨をcodeの大文字小文字を無視した完全一致で検索する。
// 見つからない場合はnilを返す。
func (r *PostgresCurrencyRepo) FindByCompanyAndCode(ctx context.Context, companyID, code string) (*model.Currency, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+currencyColumns+` FROM currencies
		 WHERE company_id = $1 AND LOWER(code) = LOWER($2)
		 LIMIT 1`,
		companyID, code,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find currency: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to find currency: %w", err)
		}
		return nil, nil
	}

	currency, err := scanCurrencyRow(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan currency: %w", err)
	}
	return currency, nil
}

// scanCurrencyRow は現在行をmodel.Currencyに読み取る。
func scanCurrencyRow(rows *sql.Rows) (*model.Currency, error) {
	currency := &model.Currency{}
	var description, symbol, unit sql.NullString
	err := rows.Scan(&currency.ID, &currency.CompanyID, &currency.Code,
		&description, &symbol, &unit,
		&currency.Divisibility, &currency.Enabled,
		&currency.CreatedAt, &currency.UpdatedAt)
	if err != nil {
		return nil, err
	}
	currency.Description = description.String
	currency.Symbol = symbol.String
	currency.Unit = unit.String
	return currency, nil
}

// compile-time interface check
var _ CurrencyRepository = (*PostgresCurrencyRepo)(nil)
