package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/johernandezvaz/vitrine/internal/middleware"
)

// Pinger はヘルスチェックが必要とするDB疎通確認インターフェース。
// sql.DBの部分集合として定義する。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	TokenDecoder      middleware.TokenDecoder
	TokenMetrics      middleware.TokenMetrics
	StatusMetrics     middleware.StatusMetrics

	// RevocationChecker が nil でない場合、認証ルートで失効リスト照合を行う。
	RevocationChecker middleware.BlacklistChecker

	// サービス
	AuthService    AuthServiceInterface
	ProjectService ProjectServiceInterface

	// ストレージとインフラ
	Storage        DocumentOpener
	DB             Pinger
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RecoveryMiddleware → LoggingMiddleware → CORSMiddleware → AuthMiddleware（認証ルートのみ）
//
// /api/login と /api/register、/health、/metrics、/api/files は認証ミドルウェアの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.StatusMetrics))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService)
	projectHandler := NewProjectHandler(deps.ProjectService)
	fileHandler := NewFileHandler(deps.Storage)

	// --- 認証不要のルート ---

	r.Post("/api/register", authHandler.Register)
	r.Post("/api/login", authHandler.Login)

	// アップロード済み書類の配信（URLを知っている者のみアクセス可能）
	r.Get("/api/files/{name}", fileHandler.Download)

	// 死活監視
	r.Get("/health", healthHandler(deps.DB))

	// Prometheusメトリクス
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- 認証が必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenDecoder, deps.TokenMetrics))
		if deps.RevocationChecker != nil {
			r.Use(middleware.NewRevocationMiddleware(deps.RevocationChecker))
		}

		// トークン管理
		r.Post("/api/logout", authHandler.Logout)
		r.Post("/api/verify-token", authHandler.VerifyToken)
		r.Get("/api/dashboard", authHandler.Dashboard)

		// プロジェクト管理
		r.Route("/api/projects", func(r chi.Router) {
			r.Get("/", projectHandler.ListProjects)
			r.Post("/", projectHandler.CreateProject)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", projectHandler.GetProject)
				r.Delete("/", projectHandler.CancelProject)

				r.Get("/documents", projectHandler.ListDocuments)
				r.Post("/documents", projectHandler.UploadDocuments)
			})
		})

		// 通知メッセージ
		r.Get("/api/messages", projectHandler.ListMessages)
	})

	return r
}

// healthHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
