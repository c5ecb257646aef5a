package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// generateConsumerID creates a unique consumer ID using hostname and PID
func generateConsumerID() string {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "report"
	}
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}

type Config struct {
	Port        string
	Environment string
	APIBaseURL  string

	// Database
	DatabaseURL string
	MongoDBURL  string
	MongoDBName string
	RedisURL    string

	// OpenAI
	OpenAIAPIKey   string
	LLMModel       string
	LLMMaxTokens   int
	LLMTemperature float64
	LLMTimeoutSec  int

	// Mail (Gmail API sender)
	MailSenderAddress  string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRefreshToken string
	MailMaxRetries     int

	// Consumer (Redis Stream)
	ConsumerID       string
	ConsumerBatch    int
	ConsumerBlockMS  int

	// Report analysis
	WeatherKeywords  []string
	ActivityKeywords []string

	// Document store
	DocumentTTL time.Duration

	// CORS
	AllowedOrigins []string

	// Scheduler
	SchedulerEnabled bool
}

// Default tag keyword sets from the Korean diary corpus. Overridable via env
// for localization; classification order (weather before activity) is fixed.
var (
	defaultWeatherKeywords  = []string{"맑음", "흐림", "비", "눈", "더움", "추움", "날씨"}
	defaultActivityKeywords = []string{"운동", "산책", "독서", "영화", "게임", "요리", "청소"}
)

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		APIBaseURL:  getEnv("API_BASE_URL", "http://localhost:8080"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", ""),
		MongoDBURL:  getEnv("MONGODB_URL", ""),
		MongoDBName: getEnv("MONGODB_DATABASE", "diary_reports"),
		RedisURL:    getEnv("REDIS_URL", ""),

		// OpenAI
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		LLMModel:       getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMMaxTokens:   getEnvInt("LLM_MAX_TOKENS", 2048),
		LLMTemperature: getEnvFloat("LLM_TEMPERATURE", 0.3),
		LLMTimeoutSec:  getEnvInt("LLM_TIMEOUT_SEC", 60),

		// Mail
		MailSenderAddress:  getEnv("MAIL_SENDER_ADDRESS", ""),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRefreshToken: getEnv("GOOGLE_REFRESH_TOKEN", ""),
		MailMaxRetries:     getEnvInt("MAIL_MAX_RETRIES", 2),

		// Consumer
		ConsumerID:      getEnv("CONSUMER_ID", generateConsumerID()),
		ConsumerBatch:   getEnvInt("CONSUMER_BATCH_SIZE", 10),
		ConsumerBlockMS: getEnvInt("CONSUMER_BLOCK_MS", 5000),

		// Report analysis
		WeatherKeywords:  getEnvSlice("TAG_WEATHER_KEYWORDS", defaultWeatherKeywords),
		ActivityKeywords: getEnvSlice("TAG_ACTIVITY_KEYWORDS", defaultActivityKeywords),

		// Document store
		DocumentTTL: time.Duration(getEnvInt("DOCUMENT_TTL_DAYS", 365)) * 24 * time.Hour,

		// CORS
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),

		// Scheduler
		SchedulerEnabled: getEnvBool("SCHEDULER_ENABLED", true),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
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
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
