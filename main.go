package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/inngest/inngestgo"
	"github.com/mauv0809/padel-roster/internal/club"
	"github.com/mauv0809/padel-roster/internal/config"
	"github.com/mauv0809/padel-roster/internal/database"
	server "github.com/mauv0809/padel-roster/internal/http"
	"github.com/mauv0809/padel-roster/internal/inngest"
	"github.com/mauv0809/padel-roster/internal/metrics"
	"github.com/mauv0809/padel-roster/internal/notifier"
	"github.com/mauv0809/padel-roster/internal/notifier/slack"
	"github.com/mauv0809/padel-roster/internal/notifier/telegram"
	"github.com/mauv0809/padel-roster/internal/period"
	"github.com/mauv0809/padel-roster/internal/processor"
	"github.com/mauv0809/padel-roster/internal/pubsub"
	"github.com/mauv0809/padel-roster/internal/roster"
	"github.com/mauv0809/padel-roster/internal/sheets"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	sink, err := sheets.New(context.Background(), cfg.Google.CredentialsFile)
	if err != nil {
		log.Fatalf("Failed to initialize Google Sheets client: %s", err)
	}

	clubStore := club.New(db)
	counters := metrics.New(db)
	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()

	notifiers := notifier.Multi{slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)}
	if cfg.Telegram.Token != "" {
		tg, err := telegram.NewNotifier(cfg.Telegram.Token, metricsSvc)
		if err != nil {
			log.Fatalf("Failed to initialize Telegram bot: %s", err)
		}
		notifiers = append(notifiers, tg)
	}

	pubsubClient := pubsub.New(cfg.ProjectID)
	defer pubsubClient.Close()

	engine := roster.New(clubStore, metricsSvc)
	periods := period.New(clubStore, sink, notifiers, metricsSvc, period.Config{
		WorksheetPrefix:   cfg.Roster.WorksheetPrefix,
		MaxGroupsPerAdmin: cfg.Roster.MaxGroupsPerAdmin,
	})
	proc := processor.New(clubStore, engine, sink, pubsubClient, notifiers, metricsSvc, counters, processor.Config{
		WorksheetPrefix: cfg.Roster.WorksheetPrefix,
		Workers:         cfg.Roster.SyncWorkers,
	})

	var inngestClient inngest.InngestClient
	if cfg.Inngest.Enabled() {
		options := inngestgo.ClientOpts{
			AppID:      cfg.Inngest.AppID,
			SigningKey: &cfg.Inngest.SigningKey,
			EventKey:   &cfg.Inngest.EventKey,
			Dev:        &cfg.Inngest.Dev,
		}
		inngestProvider, err := inngestgo.NewClient(options)
		if err != nil {
			log.Fatalf("Failed to initialize inngest: %s", err)
		}
		inngestClient = inngest.New(inngestProvider, proc, cfg.Roster.SyncCron)
	} else {
		log.Warn("Inngest is not configured, scheduled sync is disabled")
	}

	s := server.NewServer(
		clubStore,
		metricsHandler,
		counters,
		cfg,
		notifiers,
		engine,
		periods,
		proc,
		pubsubClient,
		inngestClient,
	)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}
