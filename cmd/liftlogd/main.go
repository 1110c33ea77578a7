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

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"

	"github.com/claude/liftlog/internal/api"
	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/controller"
	"github.com/claude/liftlog/internal/mcp"
	"github.com/claude/liftlog/internal/saveflow"
	"github.com/claude/liftlog/internal/server"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/store"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	// .env is optional; real config comes from the YAML file and LIFTLOG_ vars.
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run postgres migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("LiftLog daemon starting", "version", Version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Workout persistence backend: the remote API, or a self-hosted postgres.
	var (
		creator saveflow.WorkoutCreator
		auth    saveflow.AuthProvider
		stats   server.LastStatsFetcher
	)
	switch cfg.Persistence.Mode {
	case "postgres":
		dsn := cfg.Persistence.Database.DSN()
		if err := storage.RunMigrations(dsn, "migrations"); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied")
		if *migrateOnly {
			log.Info("migrate-only: exiting")
			return
		}

		db, err := storage.New(context.Background(), dsn)
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		log.Info("database connected")

		creator = db
		stats = db
		// Self-hosted persistence needs no account; saves never defer.
		auth = alwaysAuthenticated{}
	default:
		if *migrateOnly {
			log.Info("migrate-only: nothing to do in api mode")
			return
		}
		client := api.NewClient(cfg.API.BaseURL, cfg.API.Token)
		creator = client
		auth = client
		stats = client
	}

	// Durable local session state.
	st, err := store.Open(cfg.Store.Dir, log)
	if err != nil {
		log.Error("failed to open session store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	ctrl := controller.New(st, log, controller.WithRestExpired(func(exercise, set int) {
		log.Info("rest timer expired", "exercise", exercise, "set", set)
	}))
	ctrl.Init()
	defer ctrl.Close()

	flow := saveflow.New(ctrl, auth, creator, st, log)

	// A save deferred through sign-in before the last shutdown completes now.
	if result, err := flow.ResumePending(context.Background()); err != nil {
		log.Warn("pending save resume failed", "error", err)
	} else if result != nil {
		log.Info("deferred save completed", "workout_id", result.WorkoutID)
	}

	srv := server.New(ctrl, flow, stats, cfg.Auth.APIKey, log)
	srv.Mount("/mcp", mcpserver.NewStreamableHTTPServer(mcp.New(ctrl, flow, Version, log)))

	// Listener — tsnet or plain TCP.
	var listener net.Listener
	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
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
		log.Info("server starting", "addr", addr)
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: the session survives in the store and rehydrates on
	// the next start.
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

// alwaysAuthenticated satisfies the auth signal for self-hosted persistence.
type alwaysAuthenticated struct{}

func (alwaysAuthenticated) AuthStatus(context.Context) api.AuthState {
	return api.AuthAuthenticated
}
