package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/noah-isme/mru-results-api/internal/app"
	"github.com/noah-isme/mru-results-api/internal/dto"
	"github.com/noah-isme/mru-results-api/internal/models"
	"github.com/noah-isme/mru-results-api/pkg/config"
	"github.com/noah-isme/mru-results-api/pkg/logger"
)

func main() {
	table := flag.String("table", "acad_results", "remote table to sync")
	rangeLimit := flag.Int("range-limit", 0, "rows per page (default from SYNC_RANGE_LIMIT)")
	startID := flag.Int64("start-id", 0, "resume after this remote ID")
	minYear := flag.String("min-year", "", "skip rows older than this academic year (YYYY/YYYY)")
	upsertMode := flag.String("upsert-mode", "", "native or check")
	resume := flag.String("resume", "", "resume an existing paused or failed run by ID")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := app.Build(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to build services", zap.Error(err))
	}
	defer container.Close()

	var run *models.SyncRun
	if *resume != "" {
		run, err = container.Sync.Execute(ctx, *resume)
	} else {
		run, err = container.Sync.RunSync(ctx, dto.StartSyncRequest{
			TableName:       *table,
			RangeLimit:      *rangeLimit,
			StartID:         *startID,
			MinAcademicYear: *minYear,
			UpsertMode:      *upsertMode,
			TriggeredBy:     "sync-cli",
		})
	}

	if run != nil {
		message := ""
		if run.Message != nil {
			message = *run.Message
		}
		fmt.Printf("sync %s [%s] %s\n", run.ID, run.Status, message)
	}
	if err != nil {
		logr.Error("sync did not complete", zap.Error(err))
		container.Close()
		os.Exit(1)
	}
}
