package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	Env       string
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	GigaChat  GigaChatConfig
	OCR       OCRConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Recurring RecurringConfig
	Logger    LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
}

type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MaxConns       int
	ConnectRetries int
	RetryInterval  time.Duration
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	RefreshExp time.Duration
}

// GigaChatConfig configures optional category suggestions for scanned
// receipts. An empty APIKey disables them.
type GigaChatConfig struct {
	APIKey             string
	Scope              string
	Model              string
	InsecureSkipVerify bool
}

type OCRConfig struct {
	Provider      string
	Languages     []string
	UploadDir     string
	MaxUploadSize int64
}

// RedisConfig configures the scan result cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	ScanTTL  time.Duration
}

type RateLimitConfig struct {
	ScansPerMinute int
	ScanBurst      int
}

type RecurringConfig struct {
	RunOnStartup bool
}

func Load() (*Config, error) {
	// .env is optional; plain environment variables work for Docker/K8s
	for _, envFile := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, err := parseDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	writeTimeout, err := parseDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	bodyLimit, err := parseIntEnv("SERVER_BODY_LIMIT_MB", 12)
	if err != nil {
		return nil, err
	}
	maxConns, err := parseIntEnv("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}
	connectRetries, err := parseIntEnv("DB_CONNECT_RETRIES", 5)
	if err != nil {
		return nil, err
	}
	retryInterval, err := parseDurationEnv("DB_RETRY_INTERVAL", 2*time.Second)
	if err != nil {
		return nil, err
	}
	jwtExp, err := parseIntEnv("JWT_EXPIRATION_HOURS", 24)
	if err != nil {
		return nil, err
	}
	refreshExp, err := parseIntEnv("JWT_REFRESH_EXPIRATION_HOURS", 168)
	if err != nil {
		return nil, err
	}
	maxUploadMB, err := parseIntEnv("OCR_MAX_UPLOAD_MB", 10)
	if err != nil {
		return nil, err
	}
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("REDIS_DB must be an integer: %w", err)
	}
	scanTTL, err := parseDurationEnv("REDIS_SCAN_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	scansPerMinute, err := parseIntEnv("SCAN_RATE_LIMIT_PER_MINUTE", 10)
	if err != nil {
		return nil, err
	}
	scanBurst, err := parseIntEnv("SCAN_RATE_LIMIT_BURST", 3)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env: getEnv("APP_ENV", "local"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			BodyLimit:    bodyLimit * 1024 * 1024,
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "pocket_ledger"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxConns:       maxConns,
			ConnectRetries: connectRetries,
			RetryInterval:  retryInterval,
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", defaultJWTSecret),
			Expiration: time.Duration(jwtExp) * time.Hour,
			RefreshExp: time.Duration(refreshExp) * time.Hour,
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			Model:              getEnv("GIGACHAT_MODEL", "GigaChat"),
			InsecureSkipVerify: getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "true") == "true",
		},
		OCR: OCRConfig{
			Provider:      getEnv("OCR_PROVIDER", "tesseract"),
			Languages:     parseCSVEnv("OCR_LANGUAGES", []string{"eng", "ind"}),
			UploadDir:     getEnv("OCR_UPLOAD_DIR", "./uploads"),
			MaxUploadSize: int64(maxUploadMB) * 1024 * 1024,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
			ScanTTL:  scanTTL,
		},
		RateLimit: RateLimitConfig{
			ScansPerMinute: scansPerMinute,
			ScanBurst:      scanBurst,
		},
		Recurring: RecurringConfig{
			RunOnStartup: getEnv("RECURRING_RUN_ON_STARTUP", "true") == "true",
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DSN returns the libpq keyword/value connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *Config) Validate() error {
	if c.Env == "production" && (c.JWT.SecretKey == "" || c.JWT.SecretKey == defaultJWTSecret) {
		return errors.New("JWT_SECRET_KEY must be set in production")
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		return errors.New("DB_HOST and DB_NAME are required")
	}
	if c.OCR.Provider != "tesseract" {
		return fmt.Errorf("OCR_PROVIDER %q is not supported", c.OCR.Provider)
	}
	if c.Redis.DB < 0 {
		return errors.New("REDIS_DB must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}
	return parsed, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}
	return parsed, nil
}

func parseCSVEnv(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
