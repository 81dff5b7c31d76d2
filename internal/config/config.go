package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port             string
	LogLevel         string
	JWTSecret        string
	OperatorUser     string
	OperatorPassHash string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string
	OpsEmail     string

	CBRURL    string
	ModelURL  string
	RedisAddr string

	SnapshotPath     string
	ExportCron       string
	LedgerPassphrase string

	USDINRFallback float64

	RiskWeight   float64
	MarketWeight float64
	ProfitWeight float64
	LearningRate float64

	HighRiskThreshold float64
}

// NewConfig loads configuration from environment variables, reading a .env
// file first if one is present (real environment values win).
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:        getEnv("JWT_SECRET", "secret"),
		OperatorUser:     getEnv("OPERATOR_USER", "admin"),
		OperatorPassHash: getEnv("OPERATOR_PASSWORD_HASH", ""),
		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         getEnv("SMTP_PORT", "587"),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		SenderEmail:      getEnv("SENDER_EMAIL", "noreply@creditai.example"),
		OpsEmail:         getEnv("OPS_EMAIL", ""),
		CBRURL:           getEnv("CBR_URL", "https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"),
		ModelURL:         getEnv("MODEL_URL", ""),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		SnapshotPath:     getEnv("LEDGER_SNAPSHOT_PATH", "data/decisions.json"),
		ExportCron:       getEnv("LEDGER_EXPORT_CRON", ""),
		LedgerPassphrase: getEnv("LEDGER_PASSPHRASE", ""),
	}

	var err error
	if cfg.USDINRFallback, err = getEnvFloat("USD_INR_RATE", 83.0); err != nil {
		return nil, err
	}
	if cfg.RiskWeight, err = getEnvFloat("RISK_WEIGHT", 0.6); err != nil {
		return nil, err
	}
	if cfg.MarketWeight, err = getEnvFloat("MARKET_WEIGHT", 0.3); err != nil {
		return nil, err
	}
	if cfg.ProfitWeight, err = getEnvFloat("PROFIT_WEIGHT", 0.1); err != nil {
		return nil, err
	}
	if cfg.LearningRate, err = getEnvFloat("LEARNING_RATE", 0.01); err != nil {
		return nil, err
	}
	if cfg.HighRiskThreshold, err = getEnvFloat("HIGH_RISK_ALERT_THRESHOLD", 0.5); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.SnapshotPath == "" {
		return nil, fmt.Errorf("LEDGER_SNAPSHOT_PATH is required")
	}
	if cfg.USDINRFallback <= 0 {
		return nil, fmt.Errorf("USD_INR_RATE must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) (float64, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
