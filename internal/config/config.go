package config

import (
	"os"
	"strings"

	"github.com/soaringjerry/Intake/internal/forms"
)

// Config holds the runtime settings of the process. Everything comes from
// environment variables; only the database connection string is mandatory.
type Config struct {
	Addr        string
	DatabaseURL string
	LogLevel    string
	StaticDir   string
}

// Load reads the environment. A missing DATABASE_URL is a fatal
// configuration error: the caller must abort before serving.
func Load() (Config, error) {
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		return Config{}, forms.NewConfigError("DATABASE_URL must be configured")
	}
	return Config{
		Addr:        envOrDefault("INTAKE_ADDR", ":3005"),
		DatabaseURL: dbURL,
		LogLevel:    envOrDefault("INTAKE_LOG_LEVEL", "info"),
		StaticDir:   strings.TrimSpace(os.Getenv("INTAKE_STATIC_DIR")),
	}, nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
