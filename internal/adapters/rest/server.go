package rest

import (
	"context"
	"net/http"

	"kama-bff/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Handlers - всё, что нужно роутеру.
type Handlers struct {
	Search    *SearchHandler
	Alerts    *AlertsHandler
	Favorites *FavoritesHandler
	Events    *EventsHandler
}

// HTTPMetrics - middleware и эндпоинт метрик.
type HTTPMetrics interface {
	Middleware(next http.Handler) http.Handler
	Handler() http.Handler
}

type Server struct {
	httpServer *http.Server
	logger     port.LoggerPort
}

// NewRouter собирает chi-роутер. Вынесен отдельно для тестов.
func NewRouter(
	handlers Handlers,
	validator port.TokenValidatorPort,
	metrics HTTPMetrics,
	allowedOrigins []string,
	loginURL string,
	baseLogger port.LoggerPort,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", traceIDHeader},
		ExposedHeaders:   []string{traceIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(LoggerMiddleware(baseLogger))
	if metrics != nil {
		r.Use(metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// публичные роуты
		r.Get("/search/filters", handlers.Search.GetFilters)
		r.Get("/properties", handlers.Search.FindProperties)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(validator, loginURL))

			r.Get("/alerts", handlers.Alerts.GetAlerts)
			r.Post("/alerts", handlers.Alerts.CreateAlert)
			r.Get("/alerts/matching", handlers.Alerts.GetMatchingProperties)
			r.Delete("/alerts/{alertID}", handlers.Alerts.DeleteAlert)
			r.Post("/alerts/{alertID}/toggle", handlers.Alerts.ToggleAlert)

			r.Get("/favorites", handlers.Favorites.GetFavorites)
			r.Post("/favorites/{propertyID}/toggle", handlers.Favorites.ToggleFavorite)

			r.Get("/events/subscribe", handlers.Events.Subscribe)
		})
	})

	return r
}

func NewServer(listenPort string, router http.Handler, baseLogger port.LoggerPort) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:    ":" + listenPort,
			Handler: router,
		},
		logger: baseLogger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("Starting REST server", port.Fields{"address": s.httpServer.Addr})
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST server...", nil)
	return s.httpServer.Shutdown(ctx)
}
