// Package ledger は外部台帳プロバイダAPIのクライアントを提供する。
// ユーザー・企業・通貨の参照、クレジットトランザクションの作成・確定・失敗、
// トークン検証を薄いHTTPクライアントとしてラップする。
package ledger

import "fmt"

// Group はプロバイダ上のユーザーグループを表す。
type Group struct {
	Name string `json:"name"`
}

// User はプロバイダ上のユーザーを表す。
type User struct {
	Identifier string  `json:"identifier"`
	Username   string  `json:"username"`
	Company    string  `json:"company"`
	Groups     []Group `json:"groups"`
}

// GroupNames はユーザーの所属グループ名の一覧を返す。
func (u *User) GroupNames() []string {
	names := make([]string, 0, len(u.Groups))
	for _, g := range u.Groups {
		names = append(names, g.Name)
	}
	return names
}

// Company はプロバイダ上の企業を表す。
type Company struct {
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
}

// Currency はプロバイダ上の通貨を表す。
type Currency struct {
	Code         string `json:"code"`
	Description  string `json:"description"`
	Symbol       string `json:"symbol"`
	Unit         string `json:"unit"`
	Divisibility int    `json:"divisibility"`
	Enabled      bool   `json:"enabled"`
}

// Transaction はプロバイダ上の台帳トランザクションを表す。
// Amountは通貨の最小単位の整数。
type Transaction struct {
	ID        string `json:"id"`
	User      string `json:"user"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
	Reference string `json:"reference"`
}

// APIError はプロバイダAPIのエラーレスポンスを表す。
type APIError struct {
	StatusCode int
	Message    string
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("ledger provider returned status %d: %s", e.StatusCode, e.Message)
}
