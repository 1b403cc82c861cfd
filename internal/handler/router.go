package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/rentafamily/internal/auth"
	"github.com/hitoshi/rentafamily/internal/metrics"
	"github.com/hitoshi/rentafamily/internal/middleware"
)

// HealthChecker はヘルスチェックで疎通を確認する依存先。*sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	HealthChecker     HealthChecker
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	Logger            *slog.Logger

	// メトリクス（nilの場合は記録・公開しない）
	Metrics         metrics.MetricsCollector
	MetricsGatherer prometheus.Gatherer

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ファミリー・公開ディレクトリ
	FamilyService    FamilyServiceInterface
	DirectoryService DirectoryServiceInterface

	// 募集
	OpportunityService OpportunityServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Session → Logging → Metrics → RateLimit(General) → CSRF
//
// /health と /metrics はレート制限とCSRF検証の外に配置する。
// /api/csrf-token はCSRF検証の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware(middleware.SecurityHeadersConfig{HSTS: deps.CSRFConfig.CookieSecure}))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}

	r.Get("/health", healthHandler(deps.HealthChecker))
	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	general, action := passthrough, passthrough
	if deps.RateLimiter != nil {
		general = deps.RateLimiter.GeneralMiddleware()
		action = deps.RateLimiter.ActionMiddleware()
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	familyHandler := NewFamilyHandler(deps.FamilyService)
	publicHandler := NewPublicHandler(deps.DirectoryService)
	oppHandler := NewOpportunityHandler(deps.OpportunityService)

	// トークンを自ら発行するためCSRFミドルウェアの外に置く
	r.With(general).Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	r.Group(func(r chi.Router) {
		r.Use(general)
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

		// --- 認証不要のルート ---

		r.Route("/auth", func(r chi.Router) {
			r.With(action).Post("/signup", authHandler.SignUp)
			r.With(action).Post("/login", authHandler.Login)
			r.Get("/google/login", authHandler.GoogleLogin)
			r.Get("/google/callback", authHandler.GoogleCallback)
			r.Post("/logout", authHandler.Logout)
		})

		r.Route("/api/public", func(r chi.Router) {
			r.Get("/families", publicHandler.ListFamilies)
			r.Get("/families/{ownerID}", publicHandler.GetProfile)
			r.Get("/members", publicHandler.ListMembers)
		})

		// --- 認証が必要なルート ---
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/api/me", authHandler.Me)
			r.Get("/api/dashboard", familyHandler.Dashboard)

			r.Route("/api/family", func(r chi.Router) {
				r.Put("/", familyHandler.UpdateFamily)
				r.With(action).Post("/members", familyHandler.AddMember)
			})

			r.Route("/api/opportunities", func(r chi.Router) {
				r.Get("/", oppHandler.ListAll)
				r.Get("/mine", oppHandler.ListOwn)
				r.With(action).Post("/", oppHandler.Create)

				r.Route("/{ownerID}/{opportunityID}", func(r chi.Router) {
					r.With(action).Post("/accept", oppHandler.Accept)
					r.Post("/close", oppHandler.Close)
					r.With(action).Post("/rsvps", oppHandler.RSVP)
					r.Get("/rsvps/count", oppHandler.CountRSVPs)
				})
			})
		})
	})

	return r
}

// healthHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
// GET /health
func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func passthrough(next http.Handler) http.Handler {
	return next
}

// compile-time interface check
var _ AuthServiceInterface = (*auth.Service)(nil)
