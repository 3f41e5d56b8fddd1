package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/chengus/nyu-course-scraper/internal/bulletin"
	"github.com/chengus/nyu-course-scraper/internal/catalog"
	"github.com/chengus/nyu-course-scraper/internal/config"
	applog "github.com/chengus/nyu-course-scraper/internal/log"
	"github.com/chengus/nyu-course-scraper/internal/store"
	"github.com/chengus/nyu-course-scraper/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	once       bool
}

func main() {
	applog.Info("courseapi starting")

	flags := parseFlags()

	// .env is optional; absence is not an error in production.
	_ = godotenv.Load()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		applog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	conf.ApplyEnv()
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	applog.Info("effective config",
		"listen", conf.Listen,
		"db_path", conf.DBPath,
		"term", conf.Term,
		"career", conf.Career,
		"campuses", len(conf.Campuses),
		"default_year", conf.DefaultYear,
		"refresh", conf.RefreshCron,
	)

	db, err := store.Open(conf.DBPath)
	if err != nil {
		applog.Error("failed to open catalog database", err, "db_path", conf.DBPath)
		os.Exit(1)
	}
	defer db.Close()

	client := bulletin.NewClient()
	refresher := catalog.NewRefresher(client, db, conf)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if flags.once {
		refresher.RefreshAll(ctx)
		return
	}

	// Periodic catalog refresh.
	var scheduler *cron.Cron
	if conf.RefreshCron != "" {
		scheduler = cron.New()
		if _, err := scheduler.AddFunc(conf.RefreshCron, func() {
			refresher.RefreshAll(ctx)
		}); err != nil {
			applog.Error("invalid refresh cron expression", err, "refresh", conf.RefreshCron)
			os.Exit(1)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	server := &http.Server{
		Addr:    conf.Listen,
		Handler: web.NewServer(conf, db, client, refresher).Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		applog.Info("http server listening", "listen", "http://"+conf.Listen)
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		applog.Info("signal received, shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Error("http server failed", err)
			os.Exit(1)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		applog.Error("shutdown failed", err)
	}
	applog.Info("courseapi exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "./config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one catalog refresh and exit")

	flag.Parse()
	return cfg
}
