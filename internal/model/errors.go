// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError はAPIレスポンスに変換可能なドメインエラーを表す。
// Fieldが空でない場合はフィールドスコープのバリデーションエラーとして
// レスポンスに含める。メッセージは外部契約（元の台帳連携API）に合わせた英語。
type APIError struct {
	Code    string // エラーコード
	Message string // エラーメッセージ
	Field   string // 対象フィールド（空の場合はnon-fieldエラー）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidUser      = "INVALID_USER"
	ErrCodeInvalidCompany   = "INVALID_COMPANY"
	ErrCodeAlreadyActivated = "ALREADY_ACTIVATED"
	ErrCodeNotActivated     = "NOT_ACTIVATED"
	ErrCodeUnknownProvider  = "UNKNOWN_ERROR"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeCurrencyNotFound = "CURRENCY_NOT_FOUND"
	ErrCodeBountyNotFound   = "BOUNTY_NOT_FOUND"
	ErrCodeTxNotFound       = "TRANSACTION_NOT_FOUND"
)

// NewInvalidUserError はプロバイダトークンがユーザーに解決できない場合のエラーを生成する。
func NewInvalidUserError() *APIError {
	return &APIError{
		Code:    ErrCodeInvalidUser,
		Message: "Invalid user.",
		Field:   "token",
	}
}

// NewInvalidAdminUserError はユーザーがadmin/serviceグループに属さない場合のエラーを生成する。
func NewInvalidAdminUserError() *APIError {
	return &APIError{
		Code:    ErrCodeInvalidUser,
		Message: "Invalid admin user.",
		Field:   "token",
	}
}

// NewInvalidCompanyError はプロバイダから企業情報を取得できない場合のエラーを生成する。
func NewInvalidCompanyError() *APIError {
	return &APIError{
		Code:    ErrCodeInvalidCompany,
		Message: "Invalid company.",
		Field:   "token",
	}
}

// NewAlreadyActivatedError は同一identifierの企業が既に存在する場合のエラーを生成する。
func NewAlreadyActivatedError() *APIError {
	return &APIError{
		Code:    ErrCodeAlreadyActivated,
		Message: "Company already activated.",
		Field:   "token",
	}
}

// NewNotActivatedError は未アクティベートの企業に対する操作のエラーを生成する。
func NewNotActivatedError() *APIError {
	return &APIError{
		Code:    ErrCodeNotActivated,
		Message: "Company has not been activated yet.",
		Field:   "token",
	}
}

// NewUnknownProviderError はプロバイダの予期しない失敗を表すエラーを生成する。
func NewUnknownProviderError() *APIError {
	return &APIError{
		Code:    ErrCodeUnknownProvider,
		Message: "Unknown error.",
	}
}

// NewUnauthorizedError は管理トークンが解決できない場合のエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:    ErrCodeUnauthorized,
		Message: "Invalid admin token.",
	}
}

// NewValidationError はフィールドスコープのバリデーションエラーを生成する。
func NewValidationError(field, message string) *APIError {
	return &APIError{
		Code:    ErrCodeValidation,
		Message: message,
		Field:   field,
	}
}

// NewCurrencyNotFoundError は通貨が見つからない場合のエラーを生成する。
func NewCurrencyNotFoundError(code string) *APIError {
	return &APIError{
		Code:    ErrCodeCurrencyNotFound,
		Message: fmt.Sprintf("Currency not found: %s", code),
	}
}

// NewBountyNotFoundError は報奨金レコードが見つからない場合のエラーを生成する。
func NewBountyNotFoundError(id string) *APIError {
	return &APIError{
		Code:    ErrCodeBountyNotFound,
		Message: fmt.Sprintf("Bounty not found: %s", id),
	}
}

// NewTransactionNotFoundError は参照に一致する台帳トランザクションが
// 存在しない場合のエラーを生成する。
func NewTransactionNotFoundError(reference string) *APIError {
	return &APIError{
		Code:    ErrCodeTxNotFound,
		Message: fmt.Sprintf("No transaction found for reference: %s", reference),
		Field:   "reference",
	}
}
