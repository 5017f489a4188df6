package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hitoshi/gitbounty/internal/model"
)

// PostgresBountyRepo はPostgreSQLを使用した報奨金リポジトリ。
type PostgresBountyRepo struct {
	db *sql.DB
}

// NewPostgresBountyRepo はPostgresBountyRepoを生成する。
func NewPostgresBountyRepo(db *sql.DB) *PostgresBountyRepo {
	return &PostgresBountyRepo{db: db}
}

const bountyColumns = `id, issue_nr, url, amount, status, created_at, updated_at`

// Create は報奨金レコードを作成する。
func (r *PostgresBountyRepo) Create(ctx context.Context, bounty *model.GithubIssueBounty) error {
	now := time.Now()
	bounty.CreatedAt = now
	bounty.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO github_issue_bounties (id, issue_nr, url, amount, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		bounty.ID, bounty.IssueNr, bounty.URL, bounty.Amount.String(), string(bounty.Status),
		bounty.CreatedAt, bounty.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bounty: %w", err)
	}
	return nil
}

// FindByID は指定IDの報奨金を取得する。見つからない場合はnilを返す。
func (r *PostgresBountyRepo) FindByID(ctx context.Context, id string) (*model.GithubIssueBounty, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bountyColumns+` FROM github_issue_bounties WHERE id = $1`, id)
	bounty, err := scanBounty(row)
	if err != nil {
		return nil, fmt.Errorf("failed to find bounty by ID: %w", err)
	}
	return bounty, nil
}

// FindByIssueNr はissue番号で報奨金を検索する。複数ある場合は最新を返す。
// 見つからない場合はnilを返す。
func (r *PostgresBountyRepo) FindByIssueNr(ctx context.Context, issueNr int) (*model.GithubIssueBounty, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bountyColumns+` FROM github_issue_bounties
		 WHERE issue_nr = $1 ORDER BY created_at DESC LIMIT 1`,
		issueNr)
	bounty, err := scanBounty(row)
	if err != nil {
		return nil, fmt.Errorf("failed to find bounty by issue number: %w", err)
	}
	return bounty, nil
}

// List は報奨金一覧と総件数を作成日時の降順で返す。
func (r *PostgresBountyRepo) List(ctx context.Context, limit, offset int) ([]*model.GithubIssueBounty, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM github_issue_bounties`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count bounties: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bountyColumns+` FROM github_issue_bounties
		 ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bounties: %w", err)
	}
	defer rows.Close()

	var bounties []*model.GithubIssueBounty
	for rows.Next() {
		bounty, err := scanBountyRow(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan bounty: %w", err)
		}
		bounties = append(bounties, bounty)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate bounties: %w", err)
	}

	return bounties, total, nil
}

// DeleteByURL はissue URLに一致する報奨金を削除する。削除した場合はtrueを返す。
func (r *PostgresBountyRepo) DeleteByURL(ctx context.Context, url string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM github_issue_bounties WHERE url = $1`, url)
	if err != nil {
		return false, fmt.Errorf("failed to delete bounty: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// scanBounty は1行をmodel.GithubIssueBountyに読み取る。
func scanBounty(row *sql.Row) (*model.GithubIssueBounty, error) {
	bounty := &model.GithubIssueBounty{}
	var amount, status string
	err := row.Scan(&bounty.ID, &bounty.IssueNr, &bounty.URL, &amount, &status,
		&bounty.CreatedAt, &bounty.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return finishBounty(bounty, amount, status)
}

// scanBountyRow は現在行をmodel.GithubIssueBountyに読み取る。
func scanBountyRow(rows *sql.Rows) (*model.GithubIssueBounty, error) {
	bounty := &model.GithubIssueBounty{}
	var amount, status string
	err := rows.Scan(&bounty.ID, &bounty.IssueNr, &bounty.URL, &amount, &status,
		&bounty.CreatedAt, &bounty.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return finishBounty(bounty, amount, status)
}

// finishBounty は文字列カラムをドメイン型に変換する。
func finishBounty(bounty *model.GithubIssueBounty, amount, status string) (*model.GithubIssueBounty, error) {
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount in database: %w", err)
	}
	bounty.Amount = parsed
	bounty.Status = model.BountyStatus(status)
	return bounty, nil
}

// compile-time interface check
var _ BountyRepository = (*PostgresBountyRepo)(nil)
