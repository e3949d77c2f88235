package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Search   SearchConfig
	HTTP     HTTPConfig
	Browser  BrowserConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Output   OutputConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

type SearchConfig struct {
	EbayEndpoint      string
	AmazonEndpoint    string
	DetailConcurrency int
	ResultLimit       int
	DefaultSite       string
}

type HTTPConfig struct {
	UserAgent string
	// Timeout of zero keeps the transport default.
	Timeout      time.Duration
	RateLimitMin time.Duration
	RateLimitMax time.Duration
	Adaptive     bool
	UseBrowser   bool
}

type BrowserConfig struct {
	Headless       bool
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	TimezoneID     string
	Locale         string
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// OutputConfig holds the diagnostic sinks. Empty paths disable them.
type OutputConfig struct {
	DumpDir     string
	ArchivePath string
	ArchiveSize int
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", "8080"),
			Host:            getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 2*time.Minute),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			AllowedOrigins:  getStringSliceOrDefault("SERVER_ALLOWED_ORIGINS", []string{"*"}),
		},
		Search: SearchConfig{
			EbayEndpoint:      getEnvOrDefault("SEARCH_EBAY_ENDPOINT", "https://www.ebay.com/sch/i.html?_nkw="),
			AmazonEndpoint:    getEnvOrDefault("SEARCH_AMAZON_ENDPOINT", "https://www.amazon.com/s?k="),
			DetailConcurrency: getIntOrDefault("SEARCH_DETAIL_CONCURRENCY", 4),
			ResultLimit:       getIntOrDefault("SEARCH_RESULT_LIMIT", 10),
			DefaultSite:       getEnvOrDefault("SEARCH_DEFAULT_SITE", "ebay"),
		},
		HTTP: HTTPConfig{
			UserAgent:    getEnvOrDefault("HTTP_USER_AGENT", defaultUserAgent),
			Timeout:      getDurationOrDefault("HTTP_TIMEOUT", 0),
			RateLimitMin: getDurationOrDefault("HTTP_RATE_LIMIT_MIN", 0),
			RateLimitMax: getDurationOrDefault("HTTP_RATE_LIMIT_MAX", 0),
			Adaptive:     getBoolOrDefault("HTTP_RATE_LIMIT_ADAPTIVE", false),
			UseBrowser:   getBoolOrDefault("HTTP_USE_BROWSER", false),
		},
		Browser: BrowserConfig{
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", true),
			Timeout:        getDurationOrDefault("BROWSER_TIMEOUT", 30*time.Second),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			AcceptLanguage: getEnvOrDefault("BROWSER_ACCEPT_LANGUAGE", "en-US,en;q=0.9"),
			TimezoneID:     getEnvOrDefault("BROWSER_TIMEZONE", "America/New_York"),
			Locale:         getEnvOrDefault("BROWSER_LOCALE", "en-US"),
		},
		Database: DatabaseConfig{
			Enabled:  getBoolOrDefault("DB_ENABLED", false),
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getIntOrDefault("DB_PORT", 5432),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", ""),
			DBName:   getEnvOrDefault("DB_NAME", "marketplace_search"),
			SSLMode:  getEnvOrDefault("DB_SSL_MODE", "disable"),
			MaxConns: getIntOrDefault("DB_MAX_CONNS", 10),
		},
		Redis: RedisConfig{
			Enabled:  getBoolOrDefault("REDIS_ENABLED", false),
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getIntOrDefault("REDIS_DB", 0),
			CacheTTL: getDurationOrDefault("CACHE_TTL", 15*time.Minute),
		},
		Output: OutputConfig{
			DumpDir:     getEnvOrDefault("OUTPUT_DUMP_DIR", ""),
			ArchivePath: getEnvOrDefault("OUTPUT_ARCHIVE_PATH", ""),
			ArchiveSize: getIntOrDefault("OUTPUT_ARCHIVE_SIZE", 100),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Search.DetailConcurrency < 1 {
		return fmt.Errorf("SEARCH_DETAIL_CONCURRENCY must be at least 1")
	}

	if c.Search.ResultLimit < 1 {
		return fmt.Errorf("SEARCH_RESULT_LIMIT must be at least 1")
	}

	if c.Search.EbayEndpoint == "" || c.Search.AmazonEndpoint == "" {
		return fmt.Errorf("search endpoints cannot be empty")
	}

	if c.HTTP.RateLimitMin > c.HTTP.RateLimitMax {
		return fmt.Errorf("HTTP_RATE_LIMIT_MIN cannot be greater than HTTP_RATE_LIMIT_MAX")
	}

	if c.Redis.Enabled && c.Redis.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive when redis is enabled")
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
