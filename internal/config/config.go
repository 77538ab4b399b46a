package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session store backends
const (
	SessionStoreFile   = "file"
	SessionStoreMemory = "memory"
	SessionStoreMySQL  = "mysql"
	SessionStoreSQLite = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	API      APIConfig
	Session  SessionConfig
	Database DatabaseConfig
	Refresh  RefreshConfig
}

// APIConfig describes the storefront API the client talks to
type APIConfig struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	RateBurst int
}

// SessionConfig selects where the credential pair is kept
type SessionConfig struct {
	Store  string
	File   string
	Secret string
}

// DatabaseConfig holds database configuration for the gorm session stores
type DatabaseConfig struct {
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SQLitePath string
}

// RefreshConfig schedules proactive token refresh
type RefreshConfig struct {
	Schedule string
	Leeway   time.Duration
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	session, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		API:      loadAPIConfig(),
		Session:  session,
		Database: loadDatabaseConfig(appMode),
		Refresh:  loadRefreshConfig(),
	}

	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s, API: %s, SESSION: %s]",
		appMode, config.API.BaseURL, config.Session.Store)
	return config, nil
}

func loadAPIConfig() APIConfig {
	return APIConfig{
		BaseURL:   strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080/api"), "/"),
		Timeout:   time.Duration(getEnvInt("API_TIMEOUT_SECONDS", 30)) * time.Second,
		RateLimit: getEnvFloat("API_RATE_LIMIT", 20),
		RateBurst: getEnvInt("API_RATE_BURST", 40),
	}
}

func loadSessionConfig() (SessionConfig, error) {
	store := strings.ToLower(strings.TrimSpace(getEnv("SESSION_STORE", SessionStoreFile)))
	switch store {
	case SessionStoreFile, SessionStoreMemory, SessionStoreMySQL, SessionStoreSQLite:
	default:
		return SessionConfig{}, fmt.Errorf("invalid SESSION_STORE: '%s' (must be file, memory, mysql or sqlite)", store)
	}

	return SessionConfig{
		Store:  store,
		File:   getEnv("SESSION_FILE", defaultSessionFile()),
		Secret: os.Getenv("SESSION_SECRET"),
	}, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	return DatabaseConfig{
		Host:       getEnv(prefix+"DB_HOST", "localhost"),
		Port:       getEnv(prefix+"DB_PORT", "3306"),
		User:       getEnv(prefix+"DB_USER", "root"),
		Password:   getEnv(prefix+"DB_PASS", ""),
		DBName:     getEnv(prefix+"DB_NAME", "storefront"),
		SQLitePath: getEnv("SQLITE_PATH", "storefront.db"),
	}
}

func loadRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Schedule: getEnv("REFRESH_SCHEDULE", "@every 1m"),
		Leeway:   time.Duration(getEnvInt("REFRESH_LEEWAY_SECONDS", 120)) * time.Second,
	}
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "session.json"
	}
	return filepath.Join(home, ".storefront", "session.json")
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	f, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return f
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "http://localhost:" + c.Port
	}
	return origins
}
