package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingJWTSecret is returned by Validate when JWT_SECRET is unset.
var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Google   GoogleConfig
	Gemini   GeminiConfig
	Redis    RedisConfig
	Scoring  ScoringConfig
}

type ServerConfig struct {
	Port        string
	Env         string
	Domain      string
	CORSOrigins string
}

type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SQLitePath string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	StateTTL     time.Duration
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type RedisConfig struct {
	URL string
}

type ScoringConfig struct {
	Workers   int
	QueueSize int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using environment and defaults.")
	}

	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "3000"),
			Env:         getEnv("ENV", "development"),
			Domain:      strings.TrimRight(getEnv("DOMAIN", "http://localhost:3000"), "/"),
			CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", "postgres"),
			DBName:     getEnv("DB_NAME", "career_coach"),
			SQLitePath: getEnv("SQLITE_PATH", "career_coach.db"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getEnvAsDuration("JWT_TTL", "60m"),
		},
		Google: GoogleConfig{
			ClientID:     getEnv("GOOGLE_AUTH_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_AUTH_SECRET", ""),
			StateTTL:     getEnvAsDuration("OAUTH_STATE_TTL", "10m"),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Scoring: ScoringConfig{
			Workers:   getEnvAsInt("SCORING_WORKERS", 2),
			QueueSize: getEnvAsInt("SCORING_QUEUE_SIZE", 100),
		},
	}
}

// Validate rejects configurations the server must not start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return ErrMissingJWTSecret
	}
	return nil
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// GoogleRedirectURL is the callback registered with the Google OAuth client.
func (c *Config) GoogleRedirectURL() string {
	return c.Server.Domain + "/api/auth/google/callback"
}

func (c *Config) GoogleEnabled() bool {
	return c.Google.ClientID != "" && c.Google.ClientSecret != "" && c.Redis.URL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
