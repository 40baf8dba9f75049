package config

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logOnce sync.Once
	slog    *zap.SugaredLogger
)

// Logger returns the process-wide structured logger, building it on first use.
func Logger() *zap.SugaredLogger {
	logOnce.Do(func() {
		var cfg zap.Config
		if os.Getenv("APP_ENV") == "production" {
			cfg = zap.NewProductionConfig()
			cfg.EncoderConfig.TimeKey = "timestamp"
			cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		} else {
			cfg = zap.NewDevelopmentConfig()
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		cfg.InitialFields = map[string]interface{}{
			"service": "fee-billing",
		}

		logger, err := cfg.Build()
		if err != nil {
			panic(err)
		}
		slog = logger.Sugar()
	})
	return slog
}
