package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server        ServerConfig
	Log           LogConfig
	Cache         CacheConfig
	GitHub        GitHubConfig
	Gitee         GiteeConfig
	Contributions ContributionsConfig
}

type ServerConfig struct {
	Port         string
	Mode         string
	ReadTimeout  int
	WriteTimeout int
}

type LogConfig struct {
	Level string
}

type CacheConfig struct {
	// Driver selects the cache backend: sqlite, postgres or memory.
	Driver          string
	Path            string
	DatabaseURL     string
	TTL             time.Duration
	CleanupInterval time.Duration
}

type GitHubConfig struct {
	Token  string
	APIURL string
}

type GiteeConfig struct {
	BaseURL string
}

type ContributionsConfig struct {
	FetchTimeout time.Duration
	MergePolicy  string
}

var AppConfig *Config

// Load loads configuration from .env file and environment variables
func Load() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Mode:         getEnv("GIN_MODE", "release"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 30),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Cache: CacheConfig{
			Driver:          strings.ToLower(getEnv("CACHE_DRIVER", "sqlite")),
			Path:            getEnv("DB_PATH", "./contribstats.db"),
			DatabaseURL:     getEnv("DATABASE_URL", ""),
			TTL:             getEnvAsDuration("CACHE_TTL", 900*time.Second),
			CleanupInterval: getEnvAsDuration("CACHE_CLEANUP_INTERVAL", 10*time.Minute),
		},
		GitHub: GitHubConfig{
			Token:  getEnv("GITHUB_TOKEN", ""),
			APIURL: getEnv("GITHUB_API_URL", ""),
		},
		Gitee: GiteeConfig{
			BaseURL: getEnv("GITEE_BASE_URL", "https://gitee.com"),
		},
		Contributions: ContributionsConfig{
			FetchTimeout: getEnvAsDuration("FETCH_TIMEOUT", 10*time.Second),
			MergePolicy:  strings.ToLower(getEnv("CONTRIBUTION_MERGE_POLICY", "gitee")),
		},
	}

	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration strings ("15m") or plain seconds ("900")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}
