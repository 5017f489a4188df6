// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/gitbounty/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// companyIDContextKey はリクエストコンテキストに企業IDを格納するためのキー。
var companyIDContextKey = contextKey("company_id")

// TokenUserFinder は管理者トークンからユーザーを検索するインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type TokenUserFinder interface {
	FindByToken(ctx context.Context, token string) (*model.User, error)
}

// NewAuthMiddleware はAuthorizationヘッダーの管理者トークンを検証するミドルウェアを返す。
// ヘッダー形式は「Token <値>」。トークンに対応するユーザーが存在する場合、
// そのユーザーの所属企業IDをリクエストコンテキストに注入する。
// 未認証リクエストには401 Unauthorizedをエンベロープ形式で返す。
func NewAuthMiddleware(userFinder TokenUserFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r.Header.Get("Authorization"))
			if token == "" {
				writeUnauthorized(w)
				return
			}

			user, err := userFinder.FindByToken(r.Context(), token)
			if err != nil {
				slog.Error("トークンによるユーザー検索に失敗しました",
					slog.String("error", err.Error()),
				)
				writeUnauthorized(w)
				return
			}
			if user == nil || user.CompanyID == "" {
				writeUnauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), companyIDContextKey, user.CompanyID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken は「Token <値>」形式のAuthorizationヘッダーからトークンを取り出す。
func extractToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Token") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// writeUnauthorized は401レスポンスをエンベロープ形式で書き込む。
func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "error",
		"message": "Invalid admin user.",
	})
}

// CompanyIDFromContext はリクエストコンテキストから企業IDを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func CompanyIDFromContext(ctx context.Context) (string, error) {
	companyID, ok := ctx.Value(companyIDContextKey).(string)
	if !ok || companyID == "" {
		return "", fmt.Errorf("company ID not found in context")
	}
	return companyID, nil
}

// ContextWithCompanyID はコンテキストに企業IDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithCompanyID(ctx context.Context, companyID string) context.Context {
	return context.WithValue(ctx, companyIDContextKey, companyID)
}
