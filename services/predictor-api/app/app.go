package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/credit-risk-api/pkg"
	middleware "github.com/nimeshabuddhika/credit-risk-api/pkg/middlewares"
	"github.com/nimeshabuddhika/credit-risk-api/pkg/model"
	pkgotel "github.com/nimeshabuddhika/credit-risk-api/pkg/otel"
	"github.com/nimeshabuddhika/credit-risk-api/services/predictor-api/configs"
	_ "github.com/nimeshabuddhika/credit-risk-api/services/predictor-api/docs"
	"github.com/nimeshabuddhika/credit-risk-api/services/predictor-api/internal/features"
	"github.com/nimeshabuddhika/credit-risk-api/services/predictor-api/internal/handlers"
	"github.com/nimeshabuddhika/credit-risk-api/services/predictor-api/internal/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// NewApp loads the model, wires dependencies, builds the Gin engine, and returns an *http.Server and a cleanup func.
// A missing or unreadable model artifact is returned as an error; the server is never built without a model.
func NewApp(ctx context.Context, logger *zap.Logger, cfg *configs.Config) (*http.Server, func(), error) {
	shutdownTracing, err := pkgotel.Setup(ctx, logger, cfg.ServiceName, cfg.OtelCollectorURL)
	if err != nil {
		return nil, nil, fmt.Errorf("setup tracing: %w", err)
	}
	cleanup := func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing_shutdown_failed", zap.Error(err))
		}
	}

	clf, err := model.Load(cfg.ModelPath, features.CreditRisk.Names())
	if err != nil {
		logger.Error("failed_to_load_model", zap.String("path", cfg.ModelPath), zap.Error(err))
		cleanup()
		return nil, nil, pkg.NewAppError(pkg.ErrModelLoadCode, cfg.ModelPath, err)
	}
	logger.Info("model_loaded", zap.String("path", cfg.ModelPath), zap.Ints("classes", clf.Classes()))

	predictionService, err := services.NewPredictionService(services.PredictionServiceConfig{
		Logger:     logger,
		Classifier: clf,
		Schema:     features.CreditRisk,
		Tracer:     pkgotel.GetTracer(),
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	r := NewRouter(logger, cfg, predictionService)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
	return srv, cleanup, nil
}

// NewRouter registers the prediction, health, metrics and swagger routes.
func NewRouter(logger *zap.Logger, cfg *configs.Config, svc services.PredictionService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if gin.Mode() != gin.TestMode {
		r.Use(gin.Logger())
	}
	r.Use(cors.New(corsConfig(cfg.CorsAllowedOrigins)))
	r.Use(otelgin.Middleware(cfg.ServiceName))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("")
	api.Use(middleware.TraceID())
	api.Use(middleware.Metrics())
	api.Use(middleware.RateLimit(logger, pkg.NewAdmissionLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)))

	handlers.NewPredictionHandler(logger, svc).RegisterRoutes(api)
	handlers.NewBaseHandler(logger).RegisterRoutes(r)
	return r
}

func corsConfig(allowed string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", pkg.HeaderTraceId},
		ExposeHeaders: []string{pkg.HeaderTraceId},
	}
	var origins []string
	for _, o := range strings.Split(allowed, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
