package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"investgame/src/api"
	"investgame/src/config"
	"investgame/src/utils"
	"investgame/src/worker"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.LoadConfig("./settings", os.Getenv("ENV"))
	if err != nil {
		logrus.WithError(err).Fatal("Error while loading config")
	}
	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.File)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("Error while running")
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	var httpServer *http.Server
	var closer func()
	if cfg.Service.Type == config.API {
		server, err := api.NewServer(ctx, cfg, logger)
		if err != nil {
			return err
		}
		httpServer = api.NewHTTPServer(server)
		closer = server.Close
	} else {
		server, err := worker.NewServer(ctx, cfg, logger)
		if err != nil {
			return err
		}
		httpServer = worker.NewHTTPServer(server)
		closer = server.Close
	}
	defer closer()

	errC := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"type": cfg.Service.Type,
			"port": cfg.Service.Port,
		}).Info("Starting server")

		// "ListenAndServe always returns a non-nil error. After Shutdown or Close, the returned error is
		// ErrServerClosed."
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
		close(errC)
	}()

	select {
	case err := <-errC:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
