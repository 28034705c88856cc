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

	"github.com/lysyi3m/tube-comb/app/api"
	"github.com/lysyi3m/tube-comb/app/cfg"
	"github.com/lysyi3m/tube-comb/app/database"
	"github.com/lysyi3m/tube-comb/app/feed"
	"github.com/lysyi3m/tube-comb/app/notify"
	"github.com/lysyi3m/tube-comb/app/report"
	"github.com/lysyi3m/tube-comb/app/resolver"
	"github.com/lysyi3m/tube-comb/app/tasks"
	"github.com/lysyi3m/tube-comb/app/transcript"
)

func main() {
	appCfg, err := cfg.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	setupLogger(appCfg)

	if err := run(appCfg); err != nil {
		slog.Error("Tube Comb stopped with error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(appCfg *cfg.Cfg) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if appCfg.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if appCfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func run(appCfg *cfg.Cfg) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Starting Tube Comb", "version", appCfg.Version, "daemon", appCfg.Daemon(), "dry_run", appCfg.DryRun)

	configCache := feed.NewConfigCache(appCfg.ChannelsDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Some channel configurations failed to load, continuing without them", "error", err)
	}
	slog.Info("Channel configurations loaded", "dir", appCfg.ChannelsDir, "count", configCache.GetConfigCount())

	processed, err := database.Open(ctx, appCfg.StateBackend, appCfg.StateFile, appCfg.StateDSN)
	if err != nil {
		return fmt.Errorf("failed to open processed log: %w", err)
	}
	defer processed.Close()
	slog.Info("Processed log opened", "backend", appCfg.StateBackend, "processed", processed.Count())

	httpClient := &http.Client{Timeout: appCfg.HTTPTimeout}

	generator := report.NewClient(appCfg.LLMAPIKey, appCfg.LLMBaseURL, appCfg.LLMModel, appCfg.ReportLanguage)
	if !generator.Ready() {
		slog.Warn("Report model API key not set, every report generation will fail")
	}

	var notifier notify.Notifier
	if !appCfg.DryRun {
		if notifier, err = newNotifier(appCfg, httpClient); err != nil {
			return err
		}
	}

	deps := tasks.Dependencies{
		Resolver: resolver.New(
			resolver.NewPageStrategy(httpClient, appCfg.UserAgent, appCfg.AcceptLanguage),
			resolver.NewListingStrategy(httpClient, appCfg.UserAgent),
			resolver.NewSearchStrategy(httpClient, appCfg.SearchBaseURL, appCfg.YouTubeAPIKey),
		),
		Fetcher:  feed.NewFetcher(httpClient, feed.NewParser(), appCfg.FeedBaseURL, appCfg.UserAgent, appCfg.FeedWindow),
		Selector: feed.NewFilterer(),
		Transcripts: transcript.NewFetcher(httpClient, transcript.Options{
			UserAgent:      appCfg.UserAgent,
			AcceptLanguage: appCfg.AcceptLanguage,
			Preferred:      appCfg.TranscriptLanguage,
			Secondary:      appCfg.TranscriptFallbackLanguage,
			MaxChars:       appCfg.TranscriptMaxChars,
		}),
		Generator: generator,
		Notifier:  notifier,
		Processed: processed,
	}
	runner := tasks.NewRunner(configCache, deps, appCfg.DryRun)

	if !appCfg.Daemon() {
		runner.Run(ctx)
		return nil
	}

	return serve(ctx, appCfg, runner, configCache, processed)
}

func newNotifier(appCfg *cfg.Cfg, httpClient *http.Client) (notify.Notifier, error) {
	switch appCfg.Notifier {
	case "telegram":
		if appCfg.TelegramToken == "" || appCfg.TelegramChatID == 0 {
			return nil, errors.New("TELEGRAM_TOKEN and TELEGRAM_CHAT_ID are required for the telegram notifier")
		}
		return notify.NewTelegram(appCfg.TelegramToken, "", appCfg.TelegramChatID)
	default:
		if appCfg.LineAccessToken == "" || appCfg.LineUserID == "" {
			return nil, errors.New("LINE_ACCESS_TOKEN and LINE_USER_ID are required for the line notifier")
		}
		return notify.NewLine(httpClient, notify.DefaultLineBaseURL, appCfg.LineAccessToken, appCfg.LineUserID)
	}
}

func serve(ctx context.Context, appCfg *cfg.Cfg, runner *tasks.Runner, configCache *feed.ConfigCache, processed database.ProcessedLog) error {
	scheduler, err := tasks.NewScheduler(runner, appCfg.Schedule, appCfg.Location())
	if err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(configCache, processed, runner, scheduler, appCfg.Version)
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler, appCfg.APIAccessKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port, "schedule", appCfg.Schedule, "timezone", appCfg.Timezone)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case serveErr = <-serverErrChan:
		slog.Error("Server error", "error", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	return serveErr
}
