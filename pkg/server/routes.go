package server

import (
	"fmt"
	"net/http"
	"time"

	httpLogger "github.com/chi-middleware/logrus-logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/getzep/nlp-annotator-api/pkg/auth"
	"github.com/getzep/nlp-annotator-api/pkg/cache"
	"github.com/getzep/nlp-annotator-api/pkg/controller"
	"github.com/getzep/nlp-annotator-api/pkg/metrics"
	"github.com/getzep/nlp-annotator-api/pkg/models"
)

const ReadHeaderTimeout = 5 * time.Second

// Create creates a new HTTP server with the given app state
func Create(
	appState *models.AppState,
	cacheLayer *cache.Layer,
	m *metrics.Metrics,
) *http.Server {
	cfg := appState.Config.Server
	router := setupRouter(appState, cacheLayer, m)
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           otelhttp.NewHandler(router, appState.Config.Tracing.ServiceName),
		ReadHeaderTimeout: ReadHeaderTimeout,
	}
}

func setupRouter(
	appState *models.AppState,
	cacheLayer *cache.Layer,
	m *metrics.Metrics,
) *chi.Mux {
	ctrl := controller.NewController(appState, m)

	router := chi.NewRouter()
	router.Use(httpLogger.Logger("router", log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(ResponseHeaders)
	router.Use(middleware.Heartbeat("/healthz"))
	router.Use(m.Middleware)

	router.Handle("/metrics", m.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middlewares(appState.Config)...)
		r.Use(middleware.RequestSize(appState.Config.Server.MaxRequestSize))

		r.Get("/annotators", GetAnnotatorsHandler(ctrl))
		r.Post("/annotators/{annotator}", RunAnnotatorHandler(ctrl, cacheLayer))
	})

	return router
}
