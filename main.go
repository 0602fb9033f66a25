package main

import (
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfg    *Config
	logger *zap.Logger
)

func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	l, err := zcfg.Build()
	if err != nil {
		panic(err)
	}
	return l
}

func main() {
	_ = godotenv.Load()
	cfg = LoadConfig()

	logger = newLogger(cfg.LogLevel)
	defer logger.Sync()

	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}
	jwtSecret = []byte(cfg.JWTSecret)
	if cfg.ClaimTicketKey == "" {
		// Claim codes stay decryptable across restarts only with a stable key.
		logger.Warn("CLAIM_TICKET_KEY not set, deriving from JWT_SECRET")
		cfg.ClaimTicketKey = cfg.JWTSecret
	}

	initDB(cfg)

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		logger.Info("migration complete, exiting")
		return
	}

	r := setupRouter()
	logger.Info("listening", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
