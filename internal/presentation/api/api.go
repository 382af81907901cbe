package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/juanmoore-creator/elimpostor/internal/infrastructure/configs"
	"github.com/juanmoore-creator/elimpostor/internal/infrastructure/ratelimiter"
	auditHandler "github.com/juanmoore-creator/elimpostor/internal/presentation/handler/audit"
	healthHandler "github.com/juanmoore-creator/elimpostor/internal/presentation/handler/health"
	roomHandler "github.com/juanmoore-creator/elimpostor/internal/presentation/handler/rooms"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type Application struct {
	config        configs.Config
	roomHandler   *roomHandler.Handler
	healthHandler *healthHandler.Handler
	auditHandler  *auditHandler.Handler // nil when the backend has no audit repository
	logger        *zap.SugaredLogger
	ratelimiter   ratelimiter.Limiter
}

func NewApplication(
	config configs.Config,
	roomHandler *roomHandler.Handler,
	healthHandler *healthHandler.Handler,
	auditHandler *auditHandler.Handler,
	logger *zap.SugaredLogger,
	ratelimiter ratelimiter.Limiter,
) *Application {
	return &Application{
		config:        config,
		roomHandler:   roomHandler,
		healthHandler: healthHandler,
		auditHandler:  auditHandler,
		logger:        logger,
		ratelimiter:   ratelimiter,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(app.rateLimiterMiddleware)
	r.Use(app.enableCors)

	r.Route("/api", func(r chi.Router) {
		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", app.roomHandler.ListPublicRoomsHandler)
			r.Post("/", app.roomHandler.CreateRoomHandler)
			r.Get("/feed/ws", app.roomHandler.WatchFeedHandler)

			r.Route("/{code}", func(r chi.Router) {
				r.Get("/", app.roomHandler.GetRoomHandler)
				r.Get("/ws", app.roomHandler.WatchRoomHandler)
				r.Post("/join", app.roomHandler.JoinRoomHandler)
				r.Post("/leave", app.roomHandler.LeaveRoomHandler)
				r.Post("/start", app.roomHandler.StartGameHandler)
				r.Post("/reset", app.roomHandler.ResetGameHandler)

				if app.auditHandler != nil {
					r.Get("/audit", app.auditHandler.GetRoomAuditHandler)
				}
			})
		})

		r.Get("/categories", app.roomHandler.ListCategoriesHandler)

		r.Get("/health", app.healthHandler.GetHealth)
		r.Get("/healthz", app.healthHandler.GetHealth)
		r.Get("/ready", app.healthHandler.GetHealth)
		r.Get("/live", app.healthHandler.GetHealth)
	})

	r.Handle("/metrics", promhttp.Handler())

	return otelhttp.NewHandler(r, "elimpostor-http")
}

func (app *Application) Run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", app.config.HTTP.Host, app.config.HTTP.Port),
		Handler:      mux,
		WriteTimeout: app.config.HTTP.WriteTimeout,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", srv.Addr)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", srv.Addr)

	return nil
}
