package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/ArowuTest/poolgame-backend/internal/app"
	"github.com/ArowuTest/poolgame-backend/internal/config"
	"github.com/ArowuTest/poolgame-backend/internal/logging"
	"github.com/ArowuTest/poolgame-backend/internal/scheduler"
)

func main() {
	once := flag.Bool("once", false, "run a single tick and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to start")
	}
	defer a.Close(context.Background())

	sched, err := scheduler.New(cfg.Scheduler.Spec, a.Rounds, a.Settlements, cfg.Scheduler.AutoSettle, logger)
	if err != nil {
		logger.WithError(err).Fatal("invalid scheduler spec")
	}

	if *once {
		closed, settled := sched.RunOnce(ctx)
		logger.WithFields(log.Fields{"closed": closed, "settled": settled}).Info("tick complete")
		return
	}

	sched.Start()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	sched.Stop()
}
