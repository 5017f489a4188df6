// Package model はドメインモデルを定義する。
package model

import "time"

// Company は台帳プロバイダに対してアクティベート済みの企業を表す。
// secretは作成時に一度だけ採番され、以後変更されない。
type Company struct {
	ID          string
	Identifier  string
	Secret      string
	Name        string
	AdminUserID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// User は台帳プロバイダ上のユーザーとの紐付けを表す。
// IdentifierはプロバイダのユーザーUUIDを32桁のhex文字列で保持する。
// CompanyIDが空のユーザーはWebhook経由で作成された報奨金受取人。
// Tokenはアクティベーション時に作成された管理ユーザーにのみ保存される。
type User struct {
	ID         string
	Identifier string
	Username   string
	Token      string
	CompanyID  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Currency は企業に属する通貨を表す。
// Divisibilityは最小単位（セント）への変換に使う小数桁数。
type Currency struct {
	ID           string
	CompanyID    string
	Code         string
	Description  string
	Symbol       string
	Unit         string
	Divisibility int
	Enabled      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
