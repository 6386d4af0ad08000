package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/airreservation/api"
	"github.com/Domenick1991/airreservation/config"
	"github.com/Domenick1991/airreservation/internal/bootstrap"
	"github.com/Domenick1991/airreservation/internal/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg = config.Default()
	case err != nil:
		logger.New(logger.Config{Service: "airreservation"}).Fatal("load config", "path", cfgPath, "error", err)
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Service: "airreservation"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gin.SetMode(gin.ReleaseMode)
	app := bootstrap.New(ctx, cfg, log)
	go app.Persister.Run(ctx, cfg.Ledger.AutosaveInterval())

	router := api.NewRouter(api.RouterConfig{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Logger:         log.With("component", "http"),
		Validator:      app.Validator,
	}, app.Catalog, app.Ledger, app.Persister)

	runErr := bootstrap.Run(ctx, cfg.HTTP, router, log)

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Close(closeCtx); err != nil {
		log.Error("shutdown", "error", err)
	}
	if runErr != nil {
		log.Fatal("server error", "error", runErr)
	}
	log.Info("stopped")
}
