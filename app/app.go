// Package app wires a Config into a running server.
package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/forgewebtools/forge-server/config"
	"github.com/forgewebtools/forge-server/core"
)

// App is the application instance: configuration plus the server it drives.
type App struct {
	cfg *config.Config
	srv *core.Server
}

// New builds a server from cfg. The logger is attached first so the
// remaining configuration steps are logged.
func New(cfg *config.Config) (*App, error) {
	srv := core.New()

	if cfg.LogFile != "" {
		if err := srv.SetLogger(cfg.LogFile); err != nil {
			return nil, fmt.Errorf("configure logger: %w", err)
		}
	}

	srv.SetHost(cfg.Host)
	srv.SetWorkers(cfg.Workers)
	srv.SetQueueDepth(cfg.QueueDepth)
	srv.SetReadBufferSize(cfg.ReadBuffer)
	srv.SetMaxConns(cfg.MaxConns)
	srv.UseIndexOf(cfg.IndexOf)
	if cfg.DocumentRoot != "" {
		srv.SetDocumentRoot(cfg.DocumentRoot)
	}

	return &App{cfg: cfg, srv: srv}, nil
}

// Server exposes the underlying server for route registration.
func (a *App) Server() *core.Server {
	return a.srv
}

// Run starts serving on the configured port and blocks. The core accept
// loop has no shutdown signal; SIGINT and SIGTERM terminate the process
// here, at the application layer.
func (a *App) Run() error {
	go a.awaitSignal()
	return a.srv.Start(a.cfg.Port)
}

func (a *App) awaitSignal() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	os.Exit(0)
}
