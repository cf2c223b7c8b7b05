package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"musicstats/internal/config"
	"musicstats/internal/logger"
	"musicstats/internal/shutdown"
	"musicstats/internal/web"
)

func main() {
	var (
		addr        string
		configPath  string
		libraryPath string
		verbose     bool
	)

	flag.StringVar(&addr, "addr", "", "HTTP listen address (default from config, :8080)")
	flag.StringVar(&configPath, "config", "", "Config file path")
	flag.StringVar(&libraryPath, "library", "", "Library.xml to serve")
	flag.BoolVar(&verbose, "verbose", false, "Log to the console in detail")
	flag.Parse()

	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	cfg, err := config.LoadConfigFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if addr != "" {
		cfg.ListenAddr = addr
	}
	if libraryPath != "" {
		cfg.LibraryPath = config.ExpandHome(libraryPath)
	}
	cfg.Verbose = cfg.Verbose || verbose
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Setup logger with file logging
	l := logger.New(cfg.Verbose)
	logPath := filepath.Join(config.GetDefaultLogPath(), "musicstats-web.log")
	if err := l.SetFileLog(logPath, cfg.LogMaxSizeMB, cfg.LogMaxBackups); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to setup file logging: %v\n", err)
	}
	defer l.Close()

	store := web.NewStore(cfg.LibraryPath)
	if snap, err := store.Load(); err != nil {
		// Serve 503 until the file shows up or becomes valid.
		l.Warn("Initial load of %s failed: %v", cfg.LibraryPath, err)
	} else {
		l.Info("Loaded %d tracks from %s", snap.Library.Len(), cfg.LibraryPath)
	}

	sh := shutdown.New()
	sh.Listen()

	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		if err := web.Watch(sh.Context(), store, l); err != nil {
			l.Error("Library watcher stopped: %v", err)
		}
	}()

	server := web.NewServer(store, cfg, l)

	// HTTP server
	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		l.Info("Starting web server on %s", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	exitCode := 0
	select {
	case <-sh.Context().Done():
	case err := <-serveErr:
		l.Error("Server error: %v", err)
		exitCode = 1
	}

	l.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		l.Error("Server shutdown error: %v", err)
	}
	sh.Shutdown()
	<-watchDone

	l.Info("Server stopped")
	if exitCode != 0 {
		l.Close()
		os.Exit(exitCode)
	}
}
