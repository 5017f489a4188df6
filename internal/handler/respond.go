// Package handler はHTTPハンドラーとルーティングを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/gitbounty/internal/model"
)

// envelope はAPIレスポンスの統一フォーマット。
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// writeSuccess は成功レスポンスをエンベロープ形式で書き込む。
func writeSuccess(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(envelope{
		Status: "success",
		Data:   data,
	})
}

// writeAPIErrorResponse はエラーレスポンスをエンベロープ形式で書き込む。
// フィールドスコープのエラーはdataに {field: [messages]} として含める。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	var data any
	if apiErr.Field != "" {
		data = map[string][]string{
			apiErr.Field: {apiErr.Message},
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(envelope{
		Status:  "error",
		Message: apiErr.Message,
		Data:    data,
	})
}

// writeInvalidRequestBody はJSONボディの解析失敗に対する400レスポンスを書き込む。
func writeInvalidRequestBody(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusBadRequest,
		model.NewValidationError("body", "Could not parse request body."))
}

// handleServiceError はサービス層のエラーをHTTPレスポンスに変換する。
// APIError以外のエラーは詳細をログにのみ記録し、500を返す。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, statusCodeFor(apiErr.Code), apiErr)
		return
	}

	slog.Error("内部エラーが発生しました",
		slog.String("error", err.Error()),
	)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(envelope{
		Status:  "error",
		Message: "Internal server error.",
	})
}

// statusCodeFor はエラーコードをHTTPステータスコードに対応付ける。
func statusCodeFor(code string) int {
	switch code {
	case model.ErrCodeBountyNotFound, model.ErrCodeCurrencyNotFound:
		return http.StatusNotFound
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}
