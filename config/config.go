// config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	// MediaModeCloud delegates media hosting to the cloud media API.
	MediaModeCloud = "cloud"
	// MediaModeLocal stores media under the local uploads/ tree and serves it
	// from this process.
	MediaModeLocal = "local"
)

// Config holds every startup setting. Load fails if a required value is
// missing so the process never starts half-configured.
type Config struct {
	MongoURI       string
	DBName         string
	Port           string
	Env            string
	JWTSecret      string
	AdminUsername  string
	AdminPassword  string
	MediaMode      string
	CloudName      string
	CloudAPIKey    string
	CloudAPISecret string
	AllowedOrigins []string
	MaxUploadMB    int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		MongoURI:      getMongoURI(),
		DBName:        getEnvDefault("DB_NAME", "melodeon"),
		Port:          getEnvDefault("PORT", "8080"),
		Env:           getEnvDefault("ENV", "development"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		MediaMode:     getEnvDefault("MEDIA_STORE", MediaModeCloud),

		CloudName:      os.Getenv("CLOUD_NAME"),
		CloudAPIKey:    os.Getenv("CLOUD_API_KEY"),
		CloudAPISecret: os.Getenv("CLOUD_API_SECRET"),

		MaxUploadMB: 100,
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	}

	if mbStr := os.Getenv("MAX_UPLOAD_MB"); mbStr != "" {
		mb, err := strconv.Atoi(mbStr)
		if err != nil || mb <= 0 {
			return nil, fmt.Errorf("invalid MAX_UPLOAD_MB value: %q", mbStr)
		}
		cfg.MaxUploadMB = mb
	}

	if cfg.MediaMode != MediaModeCloud && cfg.MediaMode != MediaModeLocal {
		return nil, fmt.Errorf("invalid MEDIA_STORE value: %q (expected %q or %q)",
			cfg.MediaMode, MediaModeCloud, MediaModeLocal)
	}

	var missing []string
	if cfg.MongoURI == "" {
		missing = append(missing, "MONGO_URI")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if cfg.AdminUsername == "" {
		missing = append(missing, "ADMIN_USERNAME")
	}
	if cfg.AdminPassword == "" {
		missing = append(missing, "ADMIN_PASSWORD")
	}
	if cfg.MediaMode == MediaModeCloud {
		if cfg.CloudName == "" {
			missing = append(missing, "CLOUD_NAME")
		}
		if cfg.CloudAPIKey == "" {
			missing = append(missing, "CLOUD_API_KEY")
		}
		if cfg.CloudAPISecret == "" {
			missing = append(missing, "CLOUD_API_SECRET")
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

func getMongoURI() string {
	// Check both MONGO_URI and MONGODB_URI
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		return uri
	}
	return os.Getenv("MONGODB_URI")
}

func getEnvDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
