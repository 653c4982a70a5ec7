package configs

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/nimeshabuddhika/credit-risk-api/pkg/utils"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds application configuration for predictor-api.
type Config struct {
	Port               string        `mapstructure:"PORT" validate:"required,numeric"`
	ModelPath          string        `mapstructure:"MODEL_PATH" validate:"required"`
	ServiceName        string        `mapstructure:"SERVICE_NAME" validate:"required"`
	ShutdownTimeout    time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" validate:"required"`
	ReadHeaderTimeout  time.Duration `mapstructure:"READ_HEADER_TIMEOUT" validate:"required"`
	CorsAllowedOrigins string        `mapstructure:"CORS_ALLOWED_ORIGINS" validate:"required"` // comma separated, "*" allows any origin
	OtelCollectorURL   string        `mapstructure:"OTEL_COLLECTOR_URL"`                       // tracing is disabled when empty
	RateLimitRPS       int           `mapstructure:"RATE_LIMIT_RPS" validate:"gte=0"`          // 0 disables admission limiting
	RateLimitBurst     int           `mapstructure:"RATE_LIMIT_BURST" validate:"gte=0"`
}

func Load(logger *zap.Logger) (*Config, error) {
	// A local .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	viper.SetEnvPrefix("app") // Prefix for env vars
	viper.AutomaticEnv()

	// Default values
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("MODEL_PATH", "models/random_forest_credit.json")
	viper.SetDefault("SERVICE_NAME", "credit-risk-api")
	viper.SetDefault("SHUTDOWN_TIMEOUT", "5s")
	viper.SetDefault("READ_HEADER_TIMEOUT", "5s")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("RATE_LIMIT_RPS", 0)
	viper.SetDefault("RATE_LIMIT_BURST", 0)

	// Optional: Read from config.yaml if exists
	if gin.ReleaseMode == gin.Mode() {
		viper.SetConfigName("config.prod")
	} else if gin.TestMode == gin.Mode() {
		logger.Warn("running_in_test_mode")
		viper.SetConfigName("config.test")
	} else {
		logger.Warn("running_in_development_mode")
		viper.SetConfigName("config.dev")
	}
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./services/predictor-api/configs")
	_ = viper.ReadInConfig() // Ignore if no file

	var cfg Config
	if err := utils.ParseStructEnv(&cfg); err != nil {
		return nil, err
	}

	// Validate after unmarshal
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, utils.FormatConfigErrors(logger, err, cfg)
	}
	return &cfg, nil
}
