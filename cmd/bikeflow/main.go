package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bikeflow-data/internal/api"
	"github.com/bikeflow-data/internal/common/config"
	"github.com/bikeflow-data/internal/common/db"
	"github.com/bikeflow-data/internal/common/discord"
	"github.com/bikeflow-data/internal/common/logger"
	"github.com/bikeflow-data/internal/snapshot"
	"github.com/bikeflow-data/pkg/bikeshare/models"
)

func main() {
	// .env is optional; the environment may already be set
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.NewFromConfig(logger.LoggerConfig{
		Level:           logger.ParseLogLevel(cfg.Logging.Level),
		Console:         true,
		File:            cfg.Logging.FilePath != "",
		FilePath:        cfg.Logging.FilePath,
		MaxSizeMB:       10,
		MaxBackups:      5,
		MaxAgeDays:      30,
		Compress:        true,
		TimeFieldFormat: "2006-01-02T15:04:05Z07:00",
		Alerter:         discord.NewClient(cfg.Logging.DiscordURL),
	})

	if envErr != nil {
		log.Debug("No .env file loaded", "error", envErr)
	}

	log.Info("Bikeflow service starting",
		"version", "1.0.0",
		"log_level", cfg.Logging.Level,
		"source", cfg.Data.Source,
		"port", cfg.Server.Port,
	)

	loc, err := cfg.Data.Location()
	if err != nil {
		log.Fatal("Invalid trip time zone", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src, info, closeSource, err := openSource(ctx, cfg, loc, log)
	if err != nil {
		log.Fatal("Failed to open snapshot source", "source", cfg.Data.Source, "error", err)
	}
	defer closeSource()

	loadCtx, loadCancel := context.WithTimeout(ctx, cfg.Data.FetchTimeout)
	snap, err := snapshot.Load(loadCtx, src, log)
	loadCancel()
	if err != nil {
		log.Fatal("Failed to load snapshot", "error", err)
	}
	info.LoadedAt = snap.Info.LoadedAt
	snap.Info = info

	server := api.NewServer(snap, cfg.Map, cfg.Server.FrameCacheSize, log)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.Handler(),
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("Shutdown signal received")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", "error", err)
		}
	}()

	log.Info("HTTP server listening", "addr", httpServer.Addr)
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("HTTP server error", "error", err)
	}

	log.Info("Bikeflow service stopped")
}

// openSource builds the configured snapshot source and describes it
func openSource(ctx context.Context, cfg *config.Config, loc *time.Location, log logger.Logger) (snapshot.Source, models.SnapshotInfo, func(), error) {
	switch cfg.Data.Source {
	case config.SourcePostgres:
		if err := cfg.Database.Validate(); err != nil {
			return nil, models.SnapshotInfo{}, nil, err
		}
		database, err := db.New(ctx, cfg.Database.ConnectionString(), log)
		if err != nil {
			return nil, models.SnapshotInfo{}, nil, err
		}

		active, err := db.NewSnapshotVersions(database).GetActive(ctx)
		if err != nil {
			database.Close()
			return nil, models.SnapshotInfo{}, nil, err
		}
		active.Source = config.SourcePostgres
		log.Info("Using Postgres snapshot", "version", active.VersionName, "version_id", active.VersionID)

		closeDB := func() {
			if err := database.Close(); err != nil {
				log.Error("Failed to close database", "error", err)
			}
		}
		return db.NewSnapshotReader(database, active.VersionID, loc), *active, closeDB, nil

	default:
		log.Info("Using HTTP snapshot",
			"stations_url", cfg.Data.StationsURL,
			"trips_url", cfg.Data.TripsURL)
		src := snapshot.NewHTTPSource(cfg.Data.StationsURL, cfg.Data.TripsURL, cfg.Data.FetchTimeout, loc, log)
		return src, models.SnapshotInfo{Source: config.SourceHTTP}, func() {}, nil
	}
}
