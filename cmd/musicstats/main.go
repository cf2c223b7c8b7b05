package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"musicstats/internal/config"
	"musicstats/internal/logger"
	"musicstats/internal/pipeline"
	"musicstats/internal/progress"
	"musicstats/internal/report"
	"musicstats/internal/shutdown"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] %v\n", err)
	}

	cfg, configPath, err := parseArgs(os.Args[1:])
	switch {
	case errors.Is(err, errHelp):
		printUsage(os.Stdout)
		return
	case errors.Is(err, errInitConfig):
		if err := initConfigFile(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
			os.Exit(1)
		}
		return
	case err != nil:
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'musicstats --help' for usage.")
		os.Exit(1)
	}

	sh := shutdown.New()
	sh.Listen()
	defer sh.Shutdown()

	log := logger.New(cfg.Verbose)
	sh.AddCleanup(func() { log.Close() })

	// Keep stdout clean for the report.
	log.SetOutput(os.Stderr, os.Stderr)

	if !cfg.Verbose {
		logFile := filepath.Join(config.GetDefaultLogPath(), "musicstats.log")
		if err := log.SetFileLog(logFile, cfg.LogMaxSizeMB, cfg.LogMaxBackups); err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] Failed to setup file logging: %v\n", err)
		} else {
			log.Debug("Logging to file: %s", logFile)
		}
	}

	if configPath != "" {
		log.Debug("Loaded configuration from: %s", configPath)
	}

	if err := cfg.Validate(); err != nil {
		log.Error("Configuration error: %v", err)
		sh.Shutdown()
		os.Exit(1)
	}

	if err := run(sh, cfg, log); err != nil {
		log.Error("%v", err)
		sh.Shutdown()
		os.Exit(1)
	}
}

func run(sh *shutdown.Handler, cfg config.Config, log *logger.Logger) error {
	var bar *progress.Bar
	hooks := pipeline.Hooks{
		OnEnrichStart: func(total int) {
			if !cfg.Verbose {
				bar = progress.NewWithWriter(os.Stderr, "Reading tags", total)
				log.SetProgressBar(true)
			}
		},
		OnProgress: func() {
			if bar != nil {
				bar.Increment()
			}
		},
	}

	summary, err := pipeline.Run(sh.Context(), cfg, log, hooks)

	if bar != nil {
		bar.Finish()
		log.SetProgressBar(false)
	}

	if err != nil {
		return err
	}

	if cfg.Format == "json" {
		return report.WriteJSON(os.Stdout, *summary)
	}
	return report.WriteText(os.Stdout, *summary)
}
