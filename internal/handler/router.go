package handler

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/meetman/internal/metrics"
	"github.com/hitoshi/meetman/internal/middleware"
	"github.com/hitoshi/meetman/internal/validation"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	JWTSecret         string
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// サービス
	MeetingService      MeetingServiceInterface
	RegistrationService RegistrationServiceInterface
	UserService         UserServiceInterface

	// 観測
	Metrics  middleware.HTTPMetricsRecorder
	Gatherer prometheus.Gatherer

	// ヘルスチェック用DB
	DB *sql.DB
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Recovery → Logging → Metrics → BearerAuth → RateLimit(General)
//
// BearerAuthはトークンを検証してユーザーIDをコンテキストに注入するだけで、
// リクエストを拒否しない。認証必須の判断は各ハンドラーが行う
// （認証欠落を404 "User not found"で返す元システム互換の挙動のため）。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	validator := validation.New()
	meetingHandler := NewMeetingHandler(deps.MeetingService, validator)
	registrationHandler := NewRegistrationHandler(deps.RegistrationService, validator)
	userHandler := NewUserHandler(deps.UserService, validator)

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewBearerAuthMiddleware(deps.JWTSecret, deps.SessionFinder))

	// --- 運用エンドポイント（レート制限の外） ---

	r.Get("/health", newHealthHandler(deps.DB))
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	// --- APIルート ---

	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/api/v1", func(r chi.Router) {
			// ミーティング管理
			r.Route("/meeting", func(r chi.Router) {
				r.Get("/", meetingHandler.List)
				// ミーティング作成は専用のレート制限を追加
				r.With(deps.RateLimiter.MeetingCreationMiddleware()).Post("/", meetingHandler.Create)

				// 登録管理
				r.Route("/registration", func(r chi.Router) {
					r.Post("/", registrationHandler.Register)
					r.Delete("/{id}", registrationHandler.Unregister)
				})

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", meetingHandler.Show)
					r.Put("/", meetingHandler.Update)
					r.Patch("/", meetingHandler.Update)
					r.Delete("/", meetingHandler.Destroy)
				})
			})

			// ユーザー登録・認証
			r.Route("/user", func(r chi.Router) {
				r.Post("/", userHandler.Signup)
				r.Post("/signin", userHandler.Signin)
				r.Post("/signout", userHandler.Signout)
			})
		})
	})

	return r
}

// newHealthHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				slog.Error("healthcheck failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, msgResponse{Msg: "unhealthy"})
				return
			}
		}
		writeJSON(w, http.StatusOK, msgResponse{Msg: "ok"})
	}
}
