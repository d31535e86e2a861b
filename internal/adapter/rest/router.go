package rest

import (
	"net/http"
	"time"

	"github.com/CesarOsorioP/StateView-sub000/internal/domain"
	"github.com/CesarOsorioP/StateView-sub000/internal/middleware"
	"github.com/CesarOsorioP/StateView-sub000/internal/platform/logger"
	"github.com/CesarOsorioP/StateView-sub000/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// RouterConfig carries what the router needs besides the handler.
type RouterConfig struct {
	ServiceName    string
	JWTSecret      string
	RequestTimeout time.Duration
	Metrics        *metrics.MetricsManager
	Logger         *logger.Logger
}

// NewRouter wires the API routes. Reads are public, writes need a token, and
// moderation routes are gated by role.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	log := cfg.Logger.Named("Router")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.Logger(log))
	r.Use(middleware.Metrics(cfg.Metrics))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/items/{variant}/{itemID}", h.HandleGetItem)
		r.Get("/reviews", h.HandleListReviews)
		r.Get("/reviews/{reviewID}", h.HandleGetReview)
		r.Get("/reviews/{reviewID}/comments", h.HandleListComments)

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(cfg.JWTSecret, log))

			r.Post("/reviews", h.HandleCreateReview)
			r.Put("/reviews/{reviewID}", h.HandleUpdateReview)
			r.Delete("/reviews/{reviewID}", h.HandleDeleteReview)
			r.Post("/reviews/{reviewID}/like", h.HandleToggleReviewLike)
			r.Post("/reviews/{reviewID}/comments", h.HandleCreateComment)

			r.Put("/comments/{commentID}", h.HandleUpdateComment)
			r.Delete("/comments/{commentID}", h.HandleDeleteComment)
			r.Post("/comments/{commentID}/like", h.HandleToggleCommentLike)

			r.Post("/reports", h.HandleCreateReport)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleModerator, log))

				r.Get("/reports", h.HandleListReports)
				r.Put("/reports/{reportID}/state", h.HandleResolveReport)
				r.Get("/reports/{reportID}/content", h.HandleGetReportedContent)
				r.Get("/users/{userID}", h.HandleGetPerson)
				r.Put("/users/{userID}/state", h.HandleSetAccountState)
				r.Put("/reviews/{reviewID}/state", h.HandleSetReviewState)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleAdmin, log))

				r.Delete("/reports/{reportID}", h.HandleDeleteReport)
				r.Put("/users/{userID}/role", h.HandleSetRole)
				r.Post("/items/{variant}/{itemID}/recalculate", h.HandleRecalculateRating)
			})
		})
	})

	return r
}
