package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/timemory/doxsite/internal/config"
	"github.com/timemory/doxsite/internal/daemon"
	"github.com/timemory/doxsite/internal/history"
	"github.com/timemory/doxsite/internal/layout"
	"github.com/timemory/doxsite/internal/pipeline"
	"github.com/timemory/doxsite/internal/server"
	"github.com/timemory/doxsite/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"doxsite.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		SkipCMake bool `help:"Skip the CMake stage; reuse doxygen output already in the scratch directory"`
		KeepBuild bool `short:"k" help:"Keep the scratch build directory after the run"`
	} `cmd:"" help:"Build the documentation tree once"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Watch struct{} `cmd:"" help:"Watch documentation sources and rebuild on change"`

	Daemon struct{} `cmd:"" help:"Run the continuous build service with preview server"`

	Serve struct {
		Addr string `short:"a" help:"Listen address" default:":9180"`
	} `cmd:"" help:"Serve the built documentation tree for local preview"`

	History struct {
		Limit int    `short:"n" help:"Number of builds to show" default:"20"`
		ID    string `help:"Show one build by ID"`
	} `cmd:"" help:"Show recorded build history"`

	Version struct{} `cmd:"" help:"Print version information"`
}

func main() {
	ctx := kong.Parse(&CLI)

	// Set up logging
	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	switch ctx.Command() {
	case "build":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if CLI.Build.KeepBuild {
			cfg.CMake.KeepBuild = true
		}
		if err := runBuild(cfg, CLI.Build.SkipCMake); err != nil {
			slog.Error("Build failed", "error", err)
			os.Exit(1)
		}
	case "init":
		if err := runInit(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
	case "watch":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runWatch(cfg); err != nil {
			slog.Error("Watch failed", "error", err)
			os.Exit(1)
		}
	case "daemon":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runDaemon(cfg); err != nil {
			slog.Error("Daemon failed", "error", err)
			os.Exit(1)
		}
	case "serve":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runServe(cfg, CLI.Serve.Addr); err != nil {
			slog.Error("Serve failed", "error", err)
			os.Exit(1)
		}
	case "history":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runHistory(cfg, CLI.History.ID, CLI.History.Limit); err != nil {
			slog.Error("History failed", "error", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("doxsite %s (commit %s, built %s)\n",
			version.Version, version.GitCommit, version.BuildTime)
	}
}

func runBuild(cfg *config.Config, skipCMake bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := pipeline.Execute(ctx, cfg, pipeline.Options{
		Trigger:   "manual",
		SkipCMake: skipCMake,
	})
	if err != nil {
		return err
	}

	for _, stage := range report.Stages {
		slog.Info("Stage result",
			"stage", string(stage.Stage),
			"result", string(stage.Result),
			"duration", stage.Duration)
	}

	switch report.Outcome {
	case pipeline.OutcomeSuccess:
		return nil
	case pipeline.OutcomeWarning:
		slog.Warn("Build finished with warnings", "link_findings", report.LinkFindings)
		return nil
	default:
		return report.Err
	}
}

func runInit(configPath string, force bool) error {
	slog.Info("Initializing configuration", "path", configPath, "force", force)
	return config.Init(configPath, force)
}

func runWatch(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := daemon.New(cfg)
	if err != nil {
		return err
	}
	return d.Watch(ctx)
}

func runDaemon(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := daemon.New(cfg)
	if err != nil {
		return err
	}
	return d.Run(ctx)
}

func runServe(cfg *config.Config, addr string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lay, err := layout.Resolve(cfg)
	if err != nil {
		return err
	}

	opts := server.Options{Addr: addr, DocsRoot: lay.DocsDir}

	// Reuse the daemon's history database when one exists.
	if _, serr := os.Stat(cfg.Daemon.HistoryDB); serr == nil {
		store, herr := history.NewStore(cfg.Daemon.HistoryDB)
		if herr != nil {
			return herr
		}
		defer func() { _ = store.Close() }()
		opts.History = store
	}

	return server.New(opts).Run(ctx)
}

func runHistory(cfg *config.Config, id string, limit int) error {
	ctx := context.Background()

	store, err := history.NewStore(cfg.Daemon.HistoryDB)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if id != "" {
		b, err := store.ByID(ctx, id)
		if err != nil {
			return err
		}
		printBuild(b)
		return nil
	}

	builds, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(builds) == 0 {
		fmt.Println("no builds recorded")
		return nil
	}
	for _, b := range builds {
		printBuild(b)
	}
	return nil
}

func printBuild(b history.Build) {
	fmt.Printf("%s  %-8s  %-8s  %s  %s\n",
		b.StartedAt.Format("2006-01-02 15:04:05"),
		b.Outcome, b.Trigger, b.Duration.Round(time.Millisecond), b.ID)
	if b.Error != "" {
		fmt.Printf("    error: %s\n", b.Error)
	}
}
