package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort        string
	FirebaseProject   string
	Environment       string
	DevTokenSecret    string
	DevTokenExpiry    int64
	ExpirySweepPeriod time.Duration
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		FirebaseProject:   getEnv("FIREBASE_PROJECT_ID", ""),
		Environment:       getEnv("ENVIRONMENT", "development"),
		DevTokenSecret:    getEnv("DEV_TOKEN_SECRET", "dev-only-secret"),
		DevTokenExpiry:    getEnvAsInt64("DEV_TOKEN_EXPIRY", 24*60*60), // 24 hours
		ExpirySweepPeriod: time.Duration(getEnvAsInt64("NEGOTIATION_SWEEP_MINUTES", 10)) * time.Minute,
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
