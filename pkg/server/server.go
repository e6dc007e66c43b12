package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/seo-tools/searchledger/pkg/handlers/reports"
	ledgermiddleware "github.com/seo-tools/searchledger/pkg/server/middleware"
	"github.com/seo-tools/searchledger/pkg/services/account"
)

const defaultShutdownTimeout = 10 * time.Second

type WebAPI struct {
	router          *chi.Mux
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

type Dependencies struct {
	Account account.Explorer

	// Registry serves /metrics when set; a nil registry leaves the
	// endpoint unmounted.
	Registry *prometheus.Registry
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	handler := reports.NewHandler(config.Dependencies.Account)

	router := chi.NewRouter()

	router.Use(ledgermiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/accounts", handler.ListAccounts)

		r.Route("/accounts/{account}", func(r chi.Router) {
			r.Get("/reports/queries", handler.RevenueQueries)
			r.Get("/reports/categories", handler.CategoryPerformance)
			r.Get("/reports/opportunities", handler.ContentOpportunities)
			r.Get("/reports/pages", handler.PageSummaries)
			r.Get("/reports/summary", handler.Summary)

			r.Get("/cache/stats", handler.CacheStats)
			r.Delete("/cache", handler.ClearCache)

			r.Get("/baselines", handler.ListBaselines)
			r.Post("/baselines", handler.CreateBaseline)
			r.Get("/baselines/{label}/compare", handler.CompareBaseline)
		})
	})

	if config.Dependencies.Registry != nil {
		router.Method(http.MethodGet, "/metrics",
			promhttp.HandlerFor(config.Dependencies.Registry, promhttp.HandlerOpts{}))
	}

	timeout := config.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	return &WebAPI{
		router:          router,
		logger:          &logger,
		shutdownTimeout: timeout,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
	}
}

// Router exposes the configured mux so tests can mount it on their own
// listener.
func (w *WebAPI) Router() http.Handler {
	return w.router
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
