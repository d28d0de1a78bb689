// Package config loads prediction service settings from the environment,
// with optional .env file support.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the prediction service settings.
type Config struct {
	Listen string

	// Security
	SecretKey         string
	AccessTokenExpiry time.Duration

	// Admin credentials. The password is stored as a bcrypt hash,
	// generated with `riskmon hash-password`.
	AdminUsername     string
	AdminPasswordHash string

	// Risk thresholds
	LowRiskThreshold  float64
	HighRiskThreshold float64

	// Factor weights
	WeightHRV        float64
	WeightHeartRate  float64
	WeightMovement   float64
	WeightSleep      float64
	WeightMedication float64

	CORSOrigins []string
}

// Load reads settings from the environment. A .env file in the working
// directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Listen:            getEnv("LISTEN_ADDR", "localhost:8000"),
		SecretKey:         getEnv("SECRET_KEY", ""),
		AccessTokenExpiry: time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 1440)) * time.Minute,
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		LowRiskThreshold:  getEnvFloat("LOW_RISK_THRESHOLD", 0.33),
		HighRiskThreshold: getEnvFloat("HIGH_RISK_THRESHOLD", 0.67),
		WeightHRV:         getEnvFloat("WEIGHT_HRV", 0.25),
		WeightHeartRate:   getEnvFloat("WEIGHT_HEART_RATE", 0.20),
		WeightMovement:    getEnvFloat("WEIGHT_MOVEMENT", 0.15),
		WeightSleep:       getEnvFloat("WEIGHT_SLEEP", 0.25),
		WeightMedication:  getEnvFloat("WEIGHT_MEDICATION", 0.15),
		CORSOrigins:       []string{getEnv("CORS_ORIGIN", "*")},
	}

	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("SECRET_KEY must be set")
	}
	if cfg.AdminPasswordHash == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD_HASH must be set, generate one with `riskmon hash-password`")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
