package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"

	"github.com/kaioguedesm/chronofit/internal/config"
	"github.com/kaioguedesm/chronofit/internal/journal"
	"github.com/kaioguedesm/chronofit/internal/mcp"
	"github.com/kaioguedesm/chronofit/internal/motivation"
	"github.com/kaioguedesm/chronofit/internal/reminder"
	"github.com/kaioguedesm/chronofit/internal/server"
	"github.com/kaioguedesm/chronofit/internal/session"
	"github.com/kaioguedesm/chronofit/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("ChronoFit starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Run migrations
	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Connect database
	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Local crash-recovery journal
	var jrnl *journal.Journal
	if cfg.Journal.Dir != "" {
		jrnl, err = journal.Open(cfg.Journal.Dir)
		if err != nil {
			log.Error("failed to open journal", "dir", cfg.Journal.Dir, "error", err)
			os.Exit(1)
		}
		defer jrnl.Close()

		// Orphaned entries mean a previous process died mid-workout.
		if open, err := jrnl.OpenSessions(); err != nil {
			log.Warn("journal scan failed", "error", err)
		} else if len(open) > 0 {
			log.Warn("journal has events from unfinished sessions", "count", len(open))
		}
	}

	// Post-workout message service
	var motiv session.Motivator
	if cfg.Motivation.BaseURL != "" {
		timeout := time.Duration(cfg.Motivation.TimeoutSec) * time.Second
		motiv = motivation.NewClient(cfg.Motivation.BaseURL, timeout)
		log.Info("motivation service enabled", "base_url", cfg.Motivation.BaseURL)
	}

	// Create server
	srv := server.New(db, jrnl, motiv, cfg.Auth.APIKey, log)

	// MCP over streamable HTTP at /mcp
	mcpSrv := mcp.New(db, Version, log)
	srv.SetMCP(mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return mcp.WithUserID(ctx, 1)
		}),
	))

	// Workout reminders
	if len(cfg.Reminders) > 0 {
		entries := make([]reminder.Entry, 0, len(cfg.Reminders))
		for _, r := range cfg.Reminders {
			entries = append(entries, reminder.Entry{Schedule: r.Schedule, Message: r.Message})
		}
		sched, err := reminder.New(entries, reminder.LogNotifier{Log: log}, log)
		if err != nil {
			log.Error("invalid reminder config", "error", err)
			os.Exit(1)
		}
		sched.Start()
		defer sched.Stop()
		log.Info("reminders scheduled", "count", len(entries))
	}

	// Start server — tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
