package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Ledger provider
	LedgerAPIURL    string
	LedgerAuthToken string // サービス自身のプロバイダトークン（Webhook・verify用）
	LedgerTimeout   time.Duration

	// GitHub webhook
	GithubWebhookSecret string // 空の場合は署名検証をスキップする
	BountyCurrency      string

	// Rate Limit
	RateLimitGeneral int
	RateLimitWebhook int

	// Server
	ServerPort string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.LedgerAPIURL = os.Getenv("LEDGER_API_URL")
	if cfg.LedgerAPIURL == "" {
		missing = append(missing, "LEDGER_API_URL")
	}

	cfg.LedgerAuthToken = os.Getenv("LEDGER_AUTH_TOKEN")
	if cfg.LedgerAuthToken == "" {
		missing = append(missing, "LEDGER_AUTH_TOKEN")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.LedgerTimeout = getEnvDuration("LEDGER_TIMEOUT", 10*time.Second)
	cfg.GithubWebhookSecret = getEnvString("GITHUB_WEBHOOK_SECRET", "")
	cfg.BountyCurrency = getEnvString("BOUNTY_CURRENCY", "USD")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitWebhook = getEnvInt("RATE_LIMIT_WEBHOOK", 60)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
