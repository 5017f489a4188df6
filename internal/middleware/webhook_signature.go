package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// maxWebhookBodySize はWebhookボディの最大サイズ（1MiB）。
const maxWebhookBodySize = 1 << 20

// NewWebhookSignatureMiddleware はGitHubのX-Hub-Signature-256ヘッダーを検証する
// ミドルウェアを返す。署名はボディのHMAC-SHA256をhexエンコードしたもの。
// secretが空の場合は検証をスキップする（検証なし運用）。
// 検証のためボディを読み切り、後続ハンドラーが再度読めるよう差し替える。
func NewWebhookSignatureMiddleware(secret string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodySize))
			if err != nil {
				writeSignatureRejection(w, "Could not read request body.")
				return
			}
			r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(body))

			signature := r.Header.Get("X-Hub-Signature-256")
			if !verifySignature(secret, body, signature) {
				slog.Warn("Webhook署名の検証に失敗しました",
					slog.String("remote_addr", r.RemoteAddr),
				)
				writeSignatureRejection(w, "Invalid webhook signature.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// verifySignature は「sha256=<hex>」形式の署名ヘッダーを定数時間比較で検証する。
func verifySignature(secret string, body []byte, header string) bool {
	const prefix = "sha256="
	if !strings.HasPrefix(header, prefix) {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.TrimPrefix(header, prefix)))
}

// writeSignatureRejection は403レスポンスをエンベロープ形式で書き込む。
func writeSignatureRejection(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "error",
		"message": message,
	})
}
