package router

import (
	"net/http"
	"time"

	"github.com/actuallystonmai/alt-choice/internal/auth"
	"github.com/actuallystonmai/alt-choice/internal/handler"
	"github.com/actuallystonmai/alt-choice/internal/logging"
	"github.com/actuallystonmai/alt-choice/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func Setup(h *handler.Handler, authManager *auth.Manager, corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "PUT", "PATCH", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(metrics.Middleware)

	verified := r.With(authManager.Verify)
	sameUser := verified.With(auth.RequireEmailMatch("email"))

	// Auth
	r.Post("/jwt", h.IssueToken)
	r.Get("/logout", h.Logout)

	// Queries
	r.Get("/query", h.ListQueries)
	r.Get("/query/{id}", h.GetQuery)
	verified.Get("/my-query/{email}", h.ListMyQueries)
	r.Post("/query", h.CreateQuery)
	r.Put("/update-query/{id}", h.UpdateQuery)
	r.Delete("/delete-query/{id}", h.DeleteQuery)
	r.Post("/increment/{id}", h.IncrementRecommendationCount)
	r.Post("/decrement/{id}", h.DecrementRecommendationCount)

	// Recommendations
	r.Get("/recommendations", h.ListRecommendations)
	r.Get("/recommendations/{id}", h.ListQueryRecommendations)
	sameUser.Get("/recommendations/user-email/{email}", h.ListMyRecommendations)
	sameUser.Get("/recommendations/query-user/{email}", h.ListRecommendationsForMe)
	r.Post("/recommendations", h.CreateRecommendation)
	r.Delete("/delete-recommendation/{id}", h.DeleteRecommendation)

	// Ops
	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Handle("/metrics", metrics.Handler())

	return r
}
