package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/gcalmettes/christmas-elf-officer/aocclient"
	"github.com/gcalmettes/christmas-elf-officer/config"
	"github.com/gcalmettes/christmas-elf-officer/core"
	"github.com/gcalmettes/christmas-elf-officer/observability/logging"
	telemetry "github.com/gcalmettes/christmas-elf-officer/observability/otel"
	"github.com/gcalmettes/christmas-elf-officer/schedule"
	"github.com/gcalmettes/christmas-elf-officer/server"
	"github.com/gcalmettes/christmas-elf-officer/slack"
	"github.com/gcalmettes/christmas-elf-officer/storage"
)

const eventQueueSize = 64

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "path to configuration file (TOML, optional)")
	flag.Parse()

	// A local .env keeps dev credentials out of the shell history; in
	// production the variables come from the environment directly.
	_ = godotenv.Load()

	env := strings.TrimSpace(os.Getenv("ELF_ENV"))

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := logging.Setup("elfd", env, logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	logger.Info("starting christmas elf officer",
		slog.String("base_url", cfg.AOC.BaseURL),
		slog.Int64("board", cfg.AOC.PrivateLeaderboardID),
		slog.Bool("all_years", cfg.AOC.AllYears),
		slog.String("channel", cfg.Slack.DefaultChannel),
		slog.String("storage", cfg.Storage.Driver),
		logging.MaskField("session_cookie", cfg.AOC.SessionCookie),
		logging.MaskField("bot_token", cfg.Slack.BotToken),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if endpoint := strings.TrimSpace(cfg.Telemetry.Endpoint); endpoint != "" {
		shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
			ServiceName: "elfd",
			Environment: env,
			Endpoint:    endpoint,
			Insecure:    cfg.Telemetry.Insecure,
		})
		if err != nil {
			logger.Error("initialise telemetry", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = shutdownTelemetry(shutdownCtx)
		}()
	}

	cache := storage.NewCache()

	var archive *storage.Archive
	if cfg.Storage.Driver != config.DriverOff {
		archive, err = storage.OpenArchive(cfg.Storage.Driver, cfg.Storage.DSN)
		if err != nil {
			logger.Error("open archive", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer archive.Close()

		private, global, err := archive.Load(ctx)
		if err != nil {
			logger.Error("replay archive", slog.String("error", err.Error()))
			os.Exit(1)
		}
		cache.UpdatePrivate(private)
		cache.UpdateGlobal(global)
		p, g := cache.Sizes()
		logger.Info("archive replayed", slog.Int("private", p), slog.Int("global", g))
	}

	events := make(chan core.Event, eventQueueSize)

	fetcher := aocclient.NewClient(cfg.AOC.BaseURL, cfg.AOC.SessionCookie, cfg.AOC.PrivateLeaderboardID, cfg.AOC.Timeout.Std())
	jobs := schedule.NewJobs(fetcher, cache, archive, events, schedule.Options{
		GlobalPollInterval: cfg.Schedule.GlobalPollInterval.Std(),
		AllYears:           cfg.AOC.AllYears,
	}, logger)

	sched := schedule.NewScheduler(logger)
	for _, job := range []struct {
		name string
		spec string
		fn   schedule.JobFunc
	}{
		{"private_refresh", cfg.Schedule.PrivateRefreshCron, jobs.RefreshPrivate},
		{"global_watch", cfg.Schedule.GlobalWatchCron, jobs.WatchGlobal},
		{"daily_challenge", cfg.Schedule.DailyChallengeCron, jobs.AnnounceDailyChallenge},
		{"solutions_thread", cfg.Schedule.SolutionsThreadCron, jobs.OpenSolutionsThread},
		{"daily_summary", cfg.Schedule.DailySummaryCron, jobs.DailySummary},
	} {
		if _, err := sched.AddJob(job.name, job.spec, job.fn); err != nil {
			logger.Error("register job", slog.String("job", job.name), slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
	sched.Start(ctx)
	defer sched.Stop()
	sched.RunOnce(ctx, "bootstrap", jobs.Bootstrap)

	chat := slack.NewClient(slack.DefaultAPIURL, cfg.Slack.BotToken, cfg.Slack.AppToken)
	poster := slack.NewPoster(chat, cfg.Slack.DefaultChannel, cfg.Slack.MonitoringChannel, logger)
	go poster.Run(ctx, events)

	socket := slack.NewSocketMode(chat, slack.NewCommandHandler(cache, events, logger), cfg.Slack.BotsAuthorizedIDs, logger)
	go func() {
		if err := socket.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("socket mode stopped", slog.String("error", err.Error()))
			cancel()
		}
	}()

	var admin *http.Server
	if listen := strings.TrimSpace(cfg.Server.Listen); listen != "" {
		admin = &http.Server{
			Addr:              listen,
			Handler:           server.New(server.Config{Boards: cache, Logger: logger}).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("admin server listening", slog.String("addr", listen))
			if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("admin server stopped", slog.String("error", err.Error()))
				cancel()
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")
	if admin != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = admin.Shutdown(shutdownCtx)
	}
}
