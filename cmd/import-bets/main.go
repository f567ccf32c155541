package main

import (
	"context"
	"flag"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/ArowuTest/poolgame-backend/internal/app"
	"github.com/ArowuTest/poolgame-backend/internal/config"
	"github.com/ArowuTest/poolgame-backend/internal/importer"
	"github.com/ArowuTest/poolgame-backend/internal/logging"
)

// Imports a CSV export of bets into an open round:
//
//	import-bets -round <id> bets.csv
func main() {
	roundID := flag.String("round", "", "id of the open round to import into")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if *roundID == "" || flag.NArg() != 1 {
		logger.Fatal("usage: import-bets -round <id> <file.csv>")
	}

	file, err := os.Open(flag.Arg(0))
	if err != nil {
		logger.WithError(err).Fatal("failed to open CSV file")
	}
	defer file.Close()

	ctx := context.Background()
	store, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to open store")
	}
	defer store.Close(ctx)

	result, err := importer.NewBetImporter(store.Rounds, store.Bets).Import(ctx, *roundID, file)
	if err != nil {
		logger.WithError(err).Fatal("import failed")
	}

	entry := logger.WithFields(log.Fields{
		"roundId":  *roundID,
		"rows":     result.TotalRows,
		"parsed":   result.Parsed,
		"inserted": result.Inserted,
	})
	for _, msg := range result.Errors {
		logger.WithField("roundId", *roundID).Warn(msg)
	}
	entry.Info("bets imported")
}
