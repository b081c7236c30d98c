// Package server assembles the public API router and the diagnostics router.
package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/ncnews/internal/article"
	"github.com/SergeyParamoshkin/ncnews/internal/comment"
	"github.com/SergeyParamoshkin/ncnews/internal/config"
	"github.com/SergeyParamoshkin/ncnews/internal/errresponse"
	"github.com/SergeyParamoshkin/ncnews/internal/logger"
	"github.com/SergeyParamoshkin/ncnews/internal/telemetry"
	"github.com/SergeyParamoshkin/ncnews/internal/topic"
	"github.com/SergeyParamoshkin/ncnews/internal/user"
)

const welcomeMsg = "Welcome to the NC News API! Please go to /api to see a list of " +
	"available endpoints and what response you can expect."

//go:embed endpoints.json
var endpoints []byte

// CommentStore is what both the article and the comment handlers need from
// comment storage.
type CommentStore interface {
	article.CommentStore
	comment.Store
}

type Deps struct {
	Articles  article.Store
	Comments  CommentStore
	Topics    topic.Store
	Users     user.Store
	Logger    *zap.Logger
	Metrics   *telemetry.Metrics
	RateLimit config.RateLimitConfig
}

// NewRouter returns the public API router.
func NewRouter(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(d.Logger))
	r.Use(middleware.Recoverer)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}
	if d.RateLimit.RPS > 0 {
		r.Use(NewRateLimiter(d.RateLimit).Middleware)
	}
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		renderStatic(w, r, errresponse.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		renderStatic(w, r, errresponse.ErrMethodNotAllowed)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, render.M{"msg": welcomeMsg})
	})

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Debugw("ping")
		render.PlainText(w, r, "pong")
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			render.JSON(w, r, render.M{"endpoints": json.RawMessage(endpoints)})
		})

		r.Mount("/topics", topic.NewHandler(d.Topics).Routes())
		r.Mount("/articles", article.NewHandler(d.Articles, d.Comments).Routes())
		r.Mount("/comments", comment.NewHandler(d.Comments).Routes())
		r.Mount("/users", user.NewHandler(d.Users).Routes())
	})

	return r
}

// Pinger reports storage health; *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewDiagRouter serves /metrics and /healthz on the diagnostics listener.
func NewDiagRouter(metrics *telemetry.Metrics, db Pinger) chi.Router {
	r := chi.NewRouter()

	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, render.M{"status": "unavailable", "error": err.Error()})

			return
		}

		render.JSON(w, r, render.M{"status": "ok"})
	})

	return r
}

// RequestLogger puts a request scoped sugared logger on the context and
// writes one access log line per request.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLog := log.Sugar().With("request_id", middleware.GetReqID(r.Context()))
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), reqLog)))

			reqLog.Infow("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
			)
		})
	}
}

func renderStatic(w http.ResponseWriter, r *http.Request, v render.Renderer) {
	if err := render.Render(w, r, v); err != nil {
		logger.FromContext(r.Context()).Errorw("render error response", "error", err)
	}
}
