package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/simplesocial/internal/metrics"
	"github.com/hitoshi/simplesocial/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Metrics           metrics.MetricsCollector
	MetricsHandler    http.Handler // nilの場合/metricsは公開しない

	HealthChecker HealthChecker

	UserService   UserServiceInterface
	PostService   PostServiceInterface
	FollowService FollowServiceInterface
	LikeService   LikeServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Logging → Metrics → Recovery → SecurityHeaders → CORS → RateLimit(General → Write)
//
// /healthと/metricsはレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mc := deps.Metrics
	if mc == nil {
		mc = metrics.Nop{}
	}

	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewMetricsMiddleware(mc))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeAPIErrorResponse(w, http.StatusNotFound, notFoundRouteError())
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeAPIErrorResponse(w, http.StatusMethodNotAllowed, methodNotAllowedError())
	})

	// --- 運用系のルート ---
	if deps.HealthChecker != nil {
		r.Get("/health", NewHealthHandler(deps.HealthChecker))
	}
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	userHandler := NewUserHandler(deps.UserService)
	postHandler := NewPostHandler(deps.PostService)
	followHandler := NewFollowHandler(deps.FollowService)
	likeHandler := NewLikeHandler(deps.LikeService)

	// --- APIルート ---
	// ミドルウェアスタック: RateLimit(General) → RateLimit(Write)
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
			r.Use(deps.RateLimiter.WriteMiddleware())
		}

		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.CreateUser)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", userHandler.GetUser)
				r.Get("/follow/{followedId}", followHandler.GetFollow)
				r.Post("/follow/{followedId}", followHandler.Follow)
				r.Delete("/follow/{followedId}", followHandler.Unfollow)
				r.Get("/followers/count", followHandler.CountFollowers)
				r.Get("/following/count", followHandler.CountFollowing)
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", postHandler.ListPosts)
			r.Post("/", postHandler.CreatePost)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", postHandler.GetPost)
				r.Get("/like/{userId}", likeHandler.GetLike)
				r.Post("/like/{userId}", likeHandler.Like)
				r.Delete("/like/{userId}", likeHandler.Unlike)
				r.Get("/likes/count", likeHandler.CountLikes)
			})
		})
	})

	return r
}
