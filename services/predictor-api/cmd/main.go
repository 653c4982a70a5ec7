package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nimeshabuddhika/credit-risk-api/pkg"
	"github.com/nimeshabuddhika/credit-risk-api/services/predictor-api/app"
	"github.com/nimeshabuddhika/credit-risk-api/services/predictor-api/configs"
	"go.uber.org/zap"
)

// @title        Credit Risk Prediction API
// @version      1.0
// @description  Scores loan applicants with a pre-trained credit default model.
// @BasePath     /
func main() {
	// Initialize logger
	pkg.InitLogger()
	logger := pkg.Logger

	cfg, err := configs.Load(logger)
	if err != nil {
		logger.Fatal("failed_to_load_config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The model is loaded exactly once here; a failure aborts startup.
	srv, cleanup, err := app.NewApp(ctx, logger, cfg)
	if err != nil {
		logger.Fatal("failed_to_start", zap.Error(err))
	}

	go func() {
		logger.Info("predictor_api_started", zap.String("port", cfg.Port), zap.String("model", cfg.ModelPath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server_error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting_down")

	// Drain in-flight predictions before exit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_error", zap.Error(err))
	}
	cleanup()

	_ = logger.Sync()
	os.Exit(0)
}
