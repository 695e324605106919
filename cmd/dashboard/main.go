package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Faarae/dashboard-SmartEcoBin/config"
	"github.com/Faarae/dashboard-SmartEcoBin/handlers"
	"github.com/Faarae/dashboard-SmartEcoBin/ingest"
	"github.com/Faarae/dashboard-SmartEcoBin/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	log := config.NewLogger(cfg.Log)
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		log.Warn(".env not loaded", "err", envErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	classifier := services.NewClassifier(services.LoadPredictor(cfg.Classifier.ModelPath, log), log)

	source, err := ingest.New(cfg, log)
	if err != nil {
		log.Error("failed to create sensor source", "err", err)
		os.Exit(1)
	}
	defer source.Close()

	// the source keeps retrying on its own; the dashboard shows offline meanwhile
	if err := source.Start(ctx); err != nil {
		log.Warn("sensor source not ready", "source", source.Name(), "err", err)
	}

	feed, err := services.NewLiveFeed(ctx, cfg.Redis, cfg.Dashboard.StalenessWindow, log)
	if err != nil {
		log.Warn("redis live feed disabled", "err", err)
	}
	defer feed.Close()

	hub := services.NewHub()
	monitor := services.NewMonitor(cfg, source, classifier, hub, feed, log)

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handlers.SetupRouter(cfg, monitor, hub, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	monitorDone := startMonitor(ctx, monitor)

	go func() {
		log.Info("dashboard listening", "addr", server.Addr, "source", source.Name(), "model_loaded", classifier.ModelLoaded())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("dashboard shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", "err", err)
	}

	// the source and feed are closed by the defers above, only once no tick is running
	<-monitorDone
}

// startMonitor runs the render loop and returns a channel closed once Run
// has returned.
func startMonitor(ctx context.Context, monitor *services.Monitor) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		monitor.Run(ctx)
	}()
	return done
}
