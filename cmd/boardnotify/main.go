package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teamtools/boardnotify/internal/config"
	"github.com/teamtools/boardnotify/internal/github"
	"github.com/teamtools/boardnotify/internal/jobs"
	"github.com/teamtools/boardnotify/internal/logging"
	"github.com/teamtools/boardnotify/internal/notify"
	"github.com/teamtools/boardnotify/internal/tracker"
	"github.com/teamtools/boardnotify/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "boardnotify:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.yml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger, err := logging.Setup(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return err
	}

	catcher := tracker.NewHTTPCatcher(cfg.Tracker.URL, cfg.Tracker.Token, logger)
	gh := github.NewClient(cfg.GitHub.Token, github.WithLogger(logger))
	notifier := notify.NewClient(cfg.Notifier.URL, notify.WithLogger(logger))
	metrics := jobs.NewMetrics()

	runner := &jobs.Runner{
		GitHub:   gh,
		Notifier: notifier,
		Catcher:  catcher,
		Config:   cfg,
		Logger:   logger,
		Metrics:  metrics,
	}

	scheduler, err := jobs.NewScheduler(cfg.Schedules.Timezone, logger)
	if err != nil {
		return err
	}
	scheduler.Register(jobs.JobToDo, cfg.Schedules.ToDo, runner.ToDoDigest)
	scheduler.Register(jobs.JobPR, cfg.Schedules.PullRequests, runner.PullRequestDigest)
	scheduler.Register(jobs.JobMeeting, cfg.Schedules.Meeting, runner.MeetingReminder)
	scheduler.Start()
	logger.Info("boardnotify started", "timezone", cfg.Schedules.Timezone)

	var opsServer *web.Server
	if cfg.ListenAddr != "" {
		opsServer = web.NewServer(cfg.ListenAddr, metrics, logger)
		go opsServer.Start()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	<-scheduler.Stop().Done()
	if opsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("ops server shutdown", "error", err.Error())
		}
	}
	return nil
}
