package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"collabroom/internal/api"
	"collabroom/internal/config"
	"collabroom/internal/models"
	"collabroom/internal/ratelimit"
	"collabroom/internal/routers"
	"collabroom/internal/session"
	"collabroom/internal/utils"
)

func main() {
	// Load local .env (dev only)
	_ = godotenv.Load()

	cfg := config.Load()
	logger := utils.NewLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	registry := session.NewRegistry()
	dispatcher := session.NewDispatcher(logger, registry)

	// Optional cross-instance fanout
	if cfg.RedisAddr != "" {
		bus, err := session.NewRedisBus(ctx, cfg.RedisAddr, cfg.RedisDB, logger)
		if err != nil {
			logger.Error("redis connect failed", "addr", cfg.RedisAddr, "error", err.Error())
			log.Fatal(err)
		}
		defer bus.Close()
		dispatcher.AttachBus(bus)
		go bus.Run(ctx, func(roomID string, frame models.WSFrame) {
			dispatcher.Post(session.Event{Remote: true, RemoteRoom: roomID, Frame: frame})
		})
	}

	go dispatcher.Run(ctx)

	h := api.NewHandlers(logger, dispatcher, registry, cfg.AllowOrigins, []byte(cfg.JWTSecret))
	limiter := ratelimit.New(cfg.WSRateMax, cfg.WSRatePer)

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Mount("/", routers.New(h, cfg.AllowOrigins, limiter))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("collab-room listening", "addr", cfg.HTTPAddr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server crashed", "error", err.Error())
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	_ = srv.Shutdown(shutdownCtx)
}
