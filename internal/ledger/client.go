package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// CallRecorder はプロバイダ呼び出しのメトリクス記録インターフェース。
// nilの場合は記録しない。
type CallRecorder interface {
	RecordProviderCall(statusCode int, duration time.Duration)
}

// Client は台帳プロバイダAPIのクライアント。
// 認証はリクエストごとのベアラートークンで行う。呼び出し元トークンを
// 受け取らないメソッドは、構築時に注入されたサービストークンを使用する。
// リトライは行わない。すべての呼び出しは単発・同期。
type Client struct {
	httpClient   *http.Client
	logger       *slog.Logger
	baseURL      string // テスト用にエンドポイントを差し替え可能
	serviceToken string
	metrics      CallRecorder
}

// NewClient はClientの新しいインスタンスを生成する。
// serviceTokenはこのサービス自身のプロバイダトークン。
// metricsはnil可。
func NewClient(httpClient *http.Client, logger *slog.Logger, baseURL, serviceToken string, metrics CallRecorder) *Client {
	return &Client{
		httpClient:   httpClient,
		logger:       logger,
		baseURL:      baseURL,
		serviceToken: serviceToken,
		metrics:      metrics,
	}
}

// envelope はプロバイダAPIの統一レスポンス形式。
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// GetUser は指定トークンのユーザープロフィールを取得する。
func (c *Client) GetUser(ctx context.Context, token string) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/user/", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetAdminCompany は指定トークンの管理ユーザーが属する企業を取得する。
func (c *Client) GetAdminCompany(ctx context.Context, token string) (*Company, error) {
	var company Company
	if err := c.do(ctx, http.MethodGet, "/admin/company/", token, nil, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

// ListCompanyCurrencies は指定トークンの企業の通貨一覧を取得する。
func (c *Client) ListCompanyCurrencies(ctx context.Context, token string) ([]Currency, error) {
	var currencies []Currency
	if err := c.do(ctx, http.MethodGet, "/company/currencies/", token, nil, &currencies); err != nil {
		return nil, err
	}
	return currencies, nil
}

// GetUserByIdentifier はサービストークンで指定identifierのユーザーを取得する。
func (c *Client) GetUserByIdentifier(ctx context.Context, identifier string) (*User, error) {
	var user User
	path := fmt.Sprintf("/admin/users/%s/", url.PathEscape(identifier))
	if err := c.do(ctx, http.MethodGet, path, c.serviceToken, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser はサービストークンで新規プロバイダユーザーを作成する。
func (c *Client) CreateUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPost, "/admin/users/", c.serviceToken, struct{}{}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// createCreditRequest はクレジットトランザクション作成のリクエストボディ。
type createCreditRequest struct {
	User      string `json:"user"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
	Reference string `json:"reference"`
}

// CreateCreditTransaction はサービストークンでクレジットトランザクションを作成する。
// amountは通貨の最小単位の整数。referenceは後からの再検索に使う相関キー。
func (c *Client) CreateCreditTransaction(ctx context.Context, userIdentifier string, amount int64, currency, status, reference string) (*Transaction, error) {
	req := createCreditRequest{
		User:      userIdentifier,
		Amount:    amount,
		Currency:  currency,
		Status:    status,
		Reference: reference,
	}
	var tx Transaction
	if err := c.do(ctx, http.MethodPost, "/admin/transactions/credit/", c.serviceToken, req, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// ListTransactionsByReference は指定referenceに一致するトランザクション一覧を取得する。
func (c *Client) ListTransactionsByReference(ctx context.Context, reference string) ([]Transaction, error) {
	var txs []Transaction
	path := "/admin/transactions/?reference=" + url.QueryEscape(reference)
	if err := c.do(ctx, http.MethodGet, path, c.serviceToken, nil, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// ConfirmTransaction は指定トランザクションを確定する。
func (c *Client) ConfirmTransaction(ctx context.Context, id string) (*Transaction, error) {
	var tx Transaction
	path := fmt.Sprintf("/admin/transactions/%s/confirm/", url.PathEscape(id))
	if err := c.do(ctx, http.MethodPost, path, c.serviceToken, struct{}{}, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// FailTransaction は指定トランザクションを失敗としてマークする。
func (c *Client) FailTransaction(ctx context.Context, id string) (*Transaction, error) {
	var tx Transaction
	path := fmt.Sprintf("/admin/transactions/%s/fail/", url.PathEscape(id))
	if err := c.do(ctx, http.MethodPost, path, c.serviceToken, struct{}{}, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// VerifyToken は指定トークンの有効性をプロバイダに問い合わせる。
// プロバイダの応答をそのまま返す。
func (c *Client) VerifyToken(ctx context.Context, token string) (json.RawMessage, error) {
	req := struct {
		Token string `json:"token"`
	}{Token: token}

	var data json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/auth/tokens/verify/", "", req, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// do はプロバイダAPIへのHTTPリクエストを実行し、dataフィールドをoutにデコードする。
// tokenが空の場合はAuthorizationヘッダーを付与しない。
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("リクエストボディのエンコードに失敗しました: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.logger.Error("台帳プロバイダの呼び出しに失敗しました",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("台帳プロバイダの呼び出しに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if c.metrics != nil {
		c.metrics.RecordProviderCall(resp.StatusCode, duration)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	var env envelope
	if len(raw) > 0 {
		// エラーレスポンスはJSONでない可能性があるためデコード失敗は握りつぶす
		_ = json.Unmarshal(raw, &env)
	}

	if resp.StatusCode >= 400 {
		c.logger.Warn("台帳プロバイダがエラーステータスを返しました",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("http_status", resp.StatusCode),
		)
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
		}
	}

	return nil
}
