package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	CORSOrigins string
	TablePrefix string
	// Generation
	Generator         string // lorem, anthropic, openai, gemini, command
	GeneratorModel    string
	GenerationTimeout time.Duration
	AnthropicAPIKey   string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	GeminiAPIKey      string
	GeneratorCommand  string
	// Sessions
	RedisURL   string
	SessionTTL time.Duration
	// Logging
	LogDir      string
	LogMaxFiles int
	// Debug flags
	Debug bool // Enables debug logging
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: getTablePrefix(env),
		// Generation
		Generator:         getEnv("GENERATOR", "lorem"),
		GeneratorModel:    getEnv("GENERATOR_MODEL", ""),
		GenerationTimeout: getDuration("GENERATION_TIMEOUT", DefaultGenerationTimeout),
		AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeneratorCommand:  getEnv("GENERATOR_COMMAND", ""),
		// Sessions
		RedisURL:   getEnv("REDIS_URL", ""),
		SessionTTL: getDuration("SESSION_TTL", 24*time.Hour),
		// Logging
		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getInt("LOG_MAX_FILES", 10),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// Validate reports configuration that cannot work
func (c *Config) Validate() error {
	switch c.Generator {
	case "lorem":
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("GENERATOR=anthropic requires ANTHROPIC_API_KEY")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("GENERATOR=openai requires OPENAI_API_KEY")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GENERATOR=gemini requires GEMINI_API_KEY")
		}
	case "command":
		if c.GeneratorCommand == "" {
			return fmt.Errorf("GENERATOR=command requires GENERATOR_COMMAND")
		}
	default:
		return fmt.Errorf("unknown GENERATOR %q", c.Generator)
	}
	if c.GenerationTimeout <= 0 {
		return fmt.Errorf("GENERATION_TIMEOUT must be positive")
	}
	return nil
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration accepts Go durations ("45s") or plain seconds ("45")
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}
