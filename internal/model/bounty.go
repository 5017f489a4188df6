// Package model はドメインモデルを定義する。
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BountyStatus は報奨金レコードの状態を表す。
type BountyStatus string

const (
	// BountyStatusPending は支払い待ちの状態。
	BountyStatusPending BountyStatus = "pending"
	// BountyStatusClosed は支払い済みまたは終了した状態。
	BountyStatusClosed BountyStatus = "closed"
)

// IsValid はステータスが定義済みの値かどうかを返す。
func (s BountyStatus) IsValid() bool {
	switch s {
	case BountyStatusPending, BountyStatusClosed:
		return true
	}
	return false
}

// GithubIssueBounty はGitHub issueに紐付いた報奨金を表す。
// プルリクエスト本文中の「#<issue番号>」参照で照合され、
// マージ時に台帳トランザクションとして支払われる。
type GithubIssueBounty struct {
	ID        string
	IssueNr   int
	URL       string
	Amount    decimal.Decimal
	Status    BountyStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
