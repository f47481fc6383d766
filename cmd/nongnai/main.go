package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nongnai/nongnai/internal/analyzer"
	"github.com/nongnai/nongnai/internal/config"
	"github.com/nongnai/nongnai/internal/executor"
	"github.com/nongnai/nongnai/internal/gateway"
	"github.com/nongnai/nongnai/internal/intent"
	"github.com/nongnai/nongnai/internal/metrics"
	"github.com/nongnai/nongnai/internal/schedule"
	"github.com/nongnai/nongnai/internal/state/store"
	"github.com/nongnai/nongnai/internal/template"
	"github.com/nongnai/nongnai/internal/version"
	"github.com/nongnai/nongnai/pkg/logx"
	"github.com/redis/go-redis/v9"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Get())
		os.Exit(0)
	}

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.Parse([]byte("{}"))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logx.Init(cfg.Development)
	logx.Info().Str("version", version.Get().Version).Msg("starting NongNai guide daemon")

	if err := run(cfg); err != nil {
		logx.Fatal().Err(err).Msg("daemon exited")
	}
}

func run(cfg *config.Config) error {
	templates := template.Seeded()
	for _, path := range cfg.TemplatePacks {
		if err := templates.LoadPack(path); err != nil {
			return fmt.Errorf("loading template pack %s: %w", path, err)
		}
	}

	mappings := intent.SeededMapper()
	for _, path := range cfg.IntentPacks {
		if err := mappings.LoadPack(path); err != nil {
			return fmt.Errorf("loading intent pack %s: %w", path, err)
		}
	}

	resolver := intent.NewResolver(templates, mappings)

	db, err := store.Open(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening state store: %w", err)
	}
	defer db.Close()

	m := metrics.New()

	var anl analyzer.Analyzer
	if cfg.Analyzer.URL != "" {
		anl = analyzer.NewHTTPAnalyzer(cfg.Analyzer.URL)
		if cfg.Redis.Addr != "" {
			rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
			anl = analyzer.NewCachedAnalyzer(anl, rdb, cfg.Redis.TTL.Std())
		}
	}

	exec := executor.New(executor.Config{
		Metrics: m,
		Store:   store.NewExecutionStore(db),
	})

	sched := schedule.New(resolver, exec)

	srv := gateway.New(gateway.Config{
		Resolver:  resolver,
		Executor:  exec,
		Templates: templates,
		Mappings:  mappings,
		Metrics:   m,
		Analyzer:  anl,
		Scheduler: sched,
	})
	exec.SetNotifier(srv.Notify)

	// Announcements may fire immediately, so the stream hub must be wired
	// before the cron runner starts.
	sched.Start(cfg.Announcements)
	defer sched.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = srv.ListenAndServe(ctx, cfg.Listen)
	logx.Info().Msg("daemon stopped")
	return err
}
