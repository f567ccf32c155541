package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/ArowuTest/poolgame-backend/api/routes"
	"github.com/ArowuTest/poolgame-backend/internal/app"
	"github.com/ArowuTest/poolgame-backend/internal/config"
	"github.com/ArowuTest/poolgame-backend/internal/logging"
	"github.com/ArowuTest/poolgame-backend/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(gin.ReleaseMode)

	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to start")
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			logger.WithError(err).Error("error closing connections")
		}
	}()

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched, err = scheduler.New(cfg.Scheduler.Spec, a.Rounds, a.Settlements, cfg.Scheduler.AutoSettle, logger)
		if err != nil {
			logger.WithError(err).Fatal("invalid scheduler spec")
		}
		sched.Start()
	}

	router := routes.SetupRouter(cfg, routes.Services{
		Draws:       a.Draws,
		Settlements: a.Settlements,
		Rounds:      a.Rounds,
	}, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("listen failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	if sched != nil {
		sched.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}

	logger.Info("server exiting")
}
