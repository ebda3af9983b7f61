package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config carries everything main needs to wire the process together.
type Config struct {
	Port           string
	MongoURI       string
	DBName         string
	TrustCertsURL  string
	TrustProjectID string
	AppEnv         string
}

// Load reads .env if present, then the environment. The trust-service
// settings have no sane default and are required.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getenv("PORT", "8080"),
		MongoURI:       getenv("MONGODB_URI", "mongodb://localhost:27017"),
		DBName:         getenv("DB_NAME", "collabStudy"),
		TrustCertsURL:  os.Getenv("TRUST_CERTS_URL"),
		TrustProjectID: os.Getenv("TRUST_PROJECT_ID"),
		AppEnv:         getenv("APP_ENV", "development"),
	}

	if cfg.TrustCertsURL == "" {
		return nil, fmt.Errorf("TRUST_CERTS_URL is not set")
	}
	if cfg.TrustProjectID == "" {
		return nil, fmt.Errorf("TRUST_PROJECT_ID is not set")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
