package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/romangod6/sitemapper/internal/api"
	"github.com/romangod6/sitemapper/internal/audit"
	"github.com/romangod6/sitemapper/internal/sitemap"
)

type ServeCmd struct {
	Port int `help:"Port to listen on (default from config)." short:"p"`
}

func (cmd *ServeCmd) Run(g *Globals) error {
	port := g.Config.Server.Port
	if cmd.Port > 0 {
		port = cmd.Port
	}

	extractor := sitemap.New(g.Config.ExtractorOptions()...)
	auditor := audit.New(g.Config.AuditorConfig(), g.Logger)
	server := api.NewServer(port, extractor, auditor, g.Logger)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	return waitForShutdown(server, errCh, g.Logger)
}

func waitForShutdown(server *api.Server, errCh <-chan error, logger *log.Logger) error {
	// Handle system signals for shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err, ok := <-errCh:
		if ok {
			logger.Error("API server stopped", "err", err)
		}
		return err
	case <-sigChan:
	}
	logger.Info("Shutting down...")

	// Graceful server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Error shutting down server", "err", err)
		return err
	}
	logger.Info("Server shut down gracefully")
	return nil
}
