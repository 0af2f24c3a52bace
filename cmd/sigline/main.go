package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/sigline/sigline/config"
	"github.com/sigline/sigline/pkg/logger"
	"github.com/sigline/sigline/pkg/metrics"
	"github.com/sigline/sigline/pkg/sigslot"
	"github.com/sigline/sigline/pkg/taskqueue"
	"github.com/sigline/sigline/pkg/version"
)

var (
	configPath  = flag.String("config", "", "Path to configuration file")
	versionFlag = flag.Bool("version", false, "Print version information")
	helpFlag    = flag.Bool("help", false, "Print help information")

	// CLI overrides
	appName   = flag.String("app-name", "", "Override app name")
	logLevel  = flag.String("log-level", "", "Override log level")
	debugMode = flag.Bool("debug", false, "Enable debug mode")
	watchFlag = flag.Bool("watch", false, "Watch the config file and hot-apply the log level")
)

// heartbeat is the demo event emitted by the runtime loop.
type heartbeat struct {
	Seq  uint64
	Time time.Time
}

func main() {
	flag.Parse()

	if *helpFlag {
		printHelp()
		os.Exit(0)
	}

	if *versionFlag {
		printVersion()
		os.Exit(0)
	}

	overrides := buildOverrides()

	cfg, err := config.Load(*configPath, overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration:\n%s\n", err)
		os.Exit(1)
	}

	logCfg := &logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	if cfg.App.Debug || *debugMode {
		logCfg.Level = logger.DebugLevel
	}
	log := logger.New(logCfg)
	logger.SetGlobal(log)

	log.Info("Starting Sigline",
		"version", version.Version,
		"buildTime", version.BuildTime,
		"gitCommit", version.GitCommit,
		"app", cfg.App.Name,
		"environment", cfg.App.Environment,
	)
	log.Debug("Configuration loaded", "config", cfg.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	ossignal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Metrics manager and recorders.
	metricsCfg := metrics.Config{
		Enabled:             cfg.Metrics.Enabled,
		Port:                cfg.Metrics.Port,
		Path:                cfg.Metrics.Path,
		TaskDurationBuckets: metrics.DefaultConfig().TaskDurationBuckets,
		LatenessBuckets:     metrics.DefaultConfig().LatenessBuckets,
	}
	metricsManager := metrics.NewManager(metricsCfg)
	sigslot.SetMetricsRecorder(metricsManager)

	if metricsManager.Enabled() {
		go func() {
			log.Info("Starting metrics server", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
			if err := metricsManager.StartServer(ctx, cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
				log.Error("Metrics server error", "error", err)
			}
		}()
	}

	// Worker queues from configuration.
	queues := taskqueue.NewManager()
	queues.SetMetrics(metricsManager)
	if err := queues.Create(cfg.Queues.Names...); err != nil {
		log.Error("Failed to create worker queues", "error", err)
		os.Exit(1)
	}
	log.Info("Worker queues ready", "queues", queues.Names())

	// Optional config hot-reload: only the log level is applied live.
	if *watchFlag && *configPath != "" {
		watcher, err := config.NewWatcher(*configPath, config.NewLoader())
		if err != nil {
			log.Error("Failed to create config watcher", "error", err)
			os.Exit(1)
		}
		watcher.OnChange(func(next *config.Config) {
			level := logger.ParseLevel(next.Log.Level)
			log.SetLevel(level)
			log.Info("Applied config change", "log_level", level)
		})
		go func() {
			if err := watcher.Watch(ctx); err != nil && ctx.Err() == nil {
				log.Warn("Config watcher stopped", "error", err)
			}
		}()
		defer watcher.Stop()
	}

	// Demo workload: a heartbeat signal fanned out onto the first
	// configured queue.
	if len(cfg.Queues.Names) == 0 {
		log.Error("No worker queues configured")
		os.Exit(1)
	}

	var beat sigslot.Signal[heartbeat]

	workQueue, err := queues.Get(cfg.Queues.Names[0])
	if err != nil {
		log.Error("Failed to resolve work queue", "error", err)
		os.Exit(1)
	}

	beat.Connect(func(hb heartbeat) {
		log.Debug("Heartbeat", "seq", hb.Seq, "at", hb.Time.Format(time.RFC3339))
	}, sigslot.WithMode(sigslot.Queued), sigslot.WithQueue(workQueue))

	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		var seq uint64
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				seq++
				beat.Emit(heartbeat{Seq: seq, Time: now})
			}
		}
	}()

	log.Info("Sigline is running", "metrics_port", cfg.Metrics.Port)
	log.Info("Press Ctrl+C to stop")

	select {
	case sig := <-sigChan:
		log.Info("Received shutdown signal", "signal", sig)
	case <-ctx.Done():
		log.Info("Context cancelled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Info("Stopping worker queues")
	beat.DisconnectAll()
	if err := queues.Close(shutdownCtx); err != nil {
		log.Error("Error during queue shutdown", "error", err)
	}

	log.Info("Sigline stopped gracefully")
}

func buildOverrides() map[string]interface{} {
	overrides := make(map[string]interface{})

	if *appName != "" {
		overrides["app.name"] = *appName
	}
	if *logLevel != "" {
		overrides["log.level"] = *logLevel
	}
	if *debugMode {
		overrides["app.debug"] = true
	}

	return overrides
}

func printVersion() {
	fmt.Printf("Sigline - Signal/Slot Dispatch Engine\n")
	fmt.Printf("Version:    %s\n", version.Version)
	fmt.Printf("Build Time: %s\n", version.BuildTime)
	fmt.Printf("Git Commit: %s\n", version.GitCommit)
	fmt.Printf("Go Version: %s\n", version.GoVersion)
}

func printHelp() {
	fmt.Printf("Sigline - Typed in-process signal/slot dispatch with named worker queues\n\n")
	fmt.Printf("Usage: sigline [options]\n\n")
	fmt.Printf("Options:\n")
	flag.PrintDefaults()
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  sigline                                   # Run with default config\n")
	fmt.Printf("  sigline -config config.yaml               # Use specific config file\n")
	fmt.Printf("  sigline -config config.yaml -watch        # Hot-apply log level on change\n")
	fmt.Printf("  sigline -log-level debug                  # Override specific options\n")
	fmt.Printf("  sigline -version                          # Print version info\n")
}
