package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/gitbounty/internal/metrics"
	"github.com/hitoshi/gitbounty/internal/middleware"
)

// Pinger はヘルスチェックに必要なデータベース疎通確認のインターフェース。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenUserFinder middleware.TokenUserFinder
	RateLimiter     *middleware.RateLimiter
	WebhookSecret   string

	// サービス
	ActivationService ActivationServiceInterface
	TokenVerifier     TokenVerifier
	ServiceToken      string
	CompanyService    CompanyServiceInterface
	BountyService     BountyServiceInterface
	WebhookService    WebhookServiceInterface

	// 運用
	DB       Pinger
	Gatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → Logging → (ルートごとの認証・署名検証・レート制限)
//
// Webhookルートは署名検証とWebhook専用レート制限、管理ルートはトークン認証と
// 全般レート制限を通る。それ以外のルートは認証なし。
// loggingはリクエストログミドルウェア。nilの場合は無効。
func NewRouter(deps *RouterDeps, logging func(next http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	if logging != nil {
		r.Use(logging)
	}

	activationHandler := NewActivationHandler(deps.ActivationService, deps.TokenVerifier, deps.ServiceToken)
	adminHandler := NewAdminHandler(deps.CompanyService)
	bountyHandler := NewBountyHandler(deps.BountyService)
	githubHandler := NewGithubHandler(deps.WebhookService)

	// --- 認証不要のルート ---

	r.Get("/", handleIndex)
	r.Get("/health", handleHealth(deps.DB))
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))

	r.Post("/activate/", activationHandler.Activate)
	r.Post("/deactivate/", activationHandler.Deactivate)
	r.Get("/verify/", activationHandler.Verify)

	// GitHub Webhook（署名検証 → Webhook専用レート制限）
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewWebhookSignatureMiddleware(deps.WebhookSecret))
		r.Use(deps.RateLimiter.WebhookMiddleware())
		r.Post("/github/", githubHandler.HandleWebhook)
	})

	// 報奨金管理
	r.Route("/github/bounties", func(r chi.Router) {
		r.Get("/", bountyHandler.ListBounties)
		r.Post("/", bountyHandler.CreateBounty)
		r.Get("/{id}/", bountyHandler.GetBounty)
	})

	// --- 管理トークン認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenUserFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/admin", func(r chi.Router) {
			r.Get("/company/", adminHandler.GetCompany)
			r.Patch("/company/", adminHandler.UpdateCompany)
			r.Get("/currencies/", adminHandler.ListCurrencies)
			r.Get("/currencies/{code}/", adminHandler.GetCurrency)
		})
	})

	return r
}

// handleIndex は提供ルートの一覧を返す。
// GET /
func handleIndex(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]string{
		"activate":   "/activate/",
		"deactivate": "/deactivate/",
		"verify":     "/verify/",
		"github":     "/github/",
		"bounties":   "/github/bounties/",
		"company":    "/admin/company/",
		"currencies": "/admin/currencies/",
		"health":     "/health",
		"metrics":    "/metrics",
	})
}

// handleHealth はデータベース疎通を含む死活確認を行う。
// GET /health
func handleHealth(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"error","message":"Database is unreachable."}`))
				return
			}
		}
		writeSuccess(w, http.StatusOK, map[string]string{"state": "healthy"})
	}
}
