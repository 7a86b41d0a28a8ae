// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Redis       RedisConfig
	Storage     StorageConfig
	Payment     PaymentConfig
	Email       EmailConfig
	AI          AIConfig
	Realtime    RealtimeConfig
	Seed        SeedConfig
	I18n        I18nConfig
	Frontend    FrontendConfig
}

type FrontendConfig struct {
	BaseURL string
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  int // in hours
	RefreshTokenTTL int // in hours
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// StorageConfig selects the object store. Provider is one of "s3", "minio"
// or "local".
type StorageConfig struct {
	Provider        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	CloudFrontURL   string
	MinioEndpoint   string
	MinioUseSSL     bool
	LocalPath       string
	PublicBaseURL   string
}

type PaymentConfig struct {
	StripeSecretKey string
	Currency        string
	MinimumPayout   float64
}

type EmailConfig struct {
	SMTPHost         string
	SMTPPort         string
	SMTPUsername     string
	SMTPPassword     string
	FromEmail        string
	FromName         string
	AdminNotifyEmail string
	AdminNotifyName  string
}

type AIConfig struct {
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	TimeoutSecs   int
	AutoReply     bool
}

type RealtimeConfig struct {
	RedisChannel string
}

type SeedConfig struct {
	AdminEmail    string
	AdminName     string
	AdminPassword string
}

type I18nConfig struct {
	DefaultLocale string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "sap_music"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "info"),
		},
		JWT: JWTConfig{
			SecretKey:       getEnv("JWT_SECRET", defaultJWTSecret),
			AccessTokenTTL:  getEnvAsInt("JWT_ACCESS_TTL", 24),   // 24 hours
			RefreshTokenTTL: getEnvAsInt("JWT_REFRESH_TTL", 168), // 7 days
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Storage: StorageConfig{
			Provider:        getEnv("STORAGE_PROVIDER", "local"),
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY_ID", getEnv("AWS_ACCESS_KEY_ID", "")),
			SecretAccessKey: getEnv("STORAGE_SECRET_ACCESS_KEY", getEnv("AWS_SECRET_ACCESS_KEY", "")),
			Bucket:          getEnv("STORAGE_BUCKET", "sap-music-assets"),
			CloudFrontURL:   getEnv("AWS_CLOUDFRONT_URL", ""),
			MinioEndpoint:   getEnv("MINIO_ENDPOINT", "localhost:9000"),
			MinioUseSSL:     getEnvAsBool("MINIO_USE_SSL", false),
			LocalPath:       getEnv("STORAGE_LOCAL_PATH", "./uploads"),
			PublicBaseURL:   getEnv("STORAGE_PUBLIC_BASE_URL", "http://localhost:8080/uploads"),
		},
		Payment: PaymentConfig{
			StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),
			Currency:        getEnv("PAYOUT_CURRENCY", "usd"),
			MinimumPayout:   getEnvAsFloat("PAYOUT_MINIMUM", 50.0),
		},
		Email: EmailConfig{
			SMTPHost:         getEnv("SMTP_HOST", ""),
			SMTPPort:         getEnv("SMTP_PORT", "587"),
			SMTPUsername:     getEnv("SMTP_USERNAME", ""),
			SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
			FromEmail:        getEnv("FROM_EMAIL", "onboarding@resend.dev"),
			FromName:         getEnv("FROM_NAME", "Sap Music Group"),
			AdminNotifyEmail: getEnv("ADMIN_NOTIFY_EMAIL", "admin@sapmusicgroup.com"),
			AdminNotifyName:  getEnv("ADMIN_NOTIFY_NAME", "Admin"),
		},
		AI: AIConfig{
			GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
			GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			TimeoutSecs:   getEnvAsInt("GEMINI_TIMEOUT", 30),
			AutoReply:     getEnvAsBool("CHAT_AI_AUTO_REPLY", true),
		},
		Realtime: RealtimeConfig{
			RedisChannel: getEnv("REALTIME_REDIS_CHANNEL", "sapmusic:realtime"),
		},
		Seed: SeedConfig{
			AdminEmail:    getEnv("SEED_ADMIN_EMAIL", "admin@sapmusicgroup.com"),
			AdminName:     getEnv("SEED_ADMIN_NAME", "Admin"),
			AdminPassword: getEnv("SEED_ADMIN_PASSWORD", "admin123!@#"),
		},
		I18n: I18nConfig{
			DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
		},
		Frontend: FrontendConfig{
			BaseURL: getEnv("FRONTEND_BASE_URL", "http://localhost:5173"),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == defaultJWTSecret && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	switch c.Storage.Provider {
	case "s3", "minio", "local":
	default:
		return fmt.Errorf("unknown storage provider %q", c.Storage.Provider)
	}

	if c.Payment.MinimumPayout < 0 {
		return fmt.Errorf("minimum payout cannot be negative")
	}

	return nil
}

// AIEnabled reports whether a Gemini key is configured.
func (c *Config) AIEnabled() bool {
	return c.AI.GeminiAPIKey != ""
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
