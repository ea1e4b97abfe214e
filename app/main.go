package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/politics-watch/app/alert"
	"github.com/lysyi3m/politics-watch/app/api"
	"github.com/lysyi3m/politics-watch/app/cfg"
	"github.com/lysyi3m/politics-watch/app/database"
	"github.com/lysyi3m/politics-watch/app/feed"
	"github.com/lysyi3m/politics-watch/app/fetch"
	"github.com/lysyi3m/politics-watch/app/tasks"
)

func main() {
	os.Exit(run())
}

func run() int {
	appConfig, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}
	if appConfig == nil {
		return 0
	}

	setupLogger(appConfig.Debug)

	notifier := alert.NewNotifier(appConfig.SMTP)

	if appConfig.TestAlert {
		return sendTestAlert(notifier)
	}

	db, err := database.NewConnection(appConfig.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "path", appConfig.DBPath, "error", err)
		return 1
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		return 1
	}
	slog.Debug("Database ready", "path", appConfig.DBPath, "schema_version", version, "dirty", dirty)

	subjects, err := feed.LoadSubjects(appConfig.SubjectsFile)
	if err != nil {
		slog.Error("Failed to load subjects", "path", appConfig.SubjectsFile, "error", err)
		return 1
	}

	extraFeeds, err := feed.LoadFeeds(appConfig.FeedsFile)
	if err != nil {
		slog.Error("Failed to load extra feeds", "path", appConfig.FeedsFile, "error", err)
		return 1
	}

	settings := tasks.WatchSettings{
		Subjects:      subjects,
		Feeds:         feed.MergeFeeds(feed.BaseFeeds, extraFeeds),
		SearchURL:     appConfig.SearchURL,
		MaxFetches:    appConfig.MaxFetches,
		SnippetRadius: appConfig.SnippetRadius,
		OutDir:        appConfig.OutDir,
	}

	slog.Debug("Watch configured",
		"subjects", len(settings.Subjects),
		"feeds", len(settings.Feeds),
		"max_fetches", settings.MaxFetches)

	fetcher := fetch.NewClient(fetch.Options{
		Timeout:           appConfig.Timeout,
		UserAgent:         appConfig.UserAgent,
		RequestsPerSecond: appConfig.FetchRPS,
	})
	seenRepo := database.NewSeenRepository(db)
	hitRepo := database.NewHitRepository(db)

	newWatchTask := func() *tasks.WatchTask {
		return tasks.NewWatchTask(settings, fetcher, seenRepo, hitRepo, notifier)
	}

	if appConfig.Serve {
		return serve(appConfig, newWatchTask, seenRepo, hitRepo)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := newWatchTask().Execute(ctx)
	if err != nil {
		slog.Error("Watch run failed", "error", err)
		return 1
	}

	if len(result.NewHits) > 0 {
		fmt.Printf("[ok] New hits: %d\n", len(result.NewHits))
	} else {
		fmt.Println("[ok] No matches; staying silent.")
	}

	return 0
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func sendTestAlert(notifier *alert.Notifier) int {
	subject, body := alert.TestMessage(time.Now())

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	sent, err := notifier.Send(ctx, subject, body)
	if err != nil {
		slog.Error("Test alert failed", "error", err)
		return 1
	}

	if sent {
		fmt.Println("[ok] Test alert sent.")
	} else {
		fmt.Println("[ok] Test alert skipped; SMTP settings incomplete.")
	}
	return 0
}

func serve(appConfig *cfg.Cfg, newWatchTask func() *tasks.WatchTask,
	seenRepo database.SeenRepository, hitRepo database.HitRepository) int {
	scheduler, err := tasks.NewScheduler(appConfig.Schedule, newWatchTask)
	if err != nil {
		slog.Error("Failed to create scheduler", "error", err)
		return 1
	}

	slog.Info("Starting watch scheduler", "schedule", appConfig.Schedule)
	scheduler.Start()
	defer scheduler.Stop()

	apiHandler := api.NewHandler(seenRepo, hitRepo, scheduler, appConfig.Version)
	server := api.NewServer(apiHandler, appConfig.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appConfig.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appConfig.Port, "version", appConfig.Version)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
		exitCode = 1
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	return exitCode
}
