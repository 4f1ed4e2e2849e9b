package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	StoreDriver   string
	DatabaseURL   string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	DBMaxConns    int32
	MigrationsDir string

	RedisURL      string
	RedisAddr     string
	RedisPassword string

	JWTSecret string
	JWTExpiry time.Duration

	OriginURL string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
}

// LoadConfig reads .env when present, then the process environment.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", "8082")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "mini_shop")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 25)
	v.SetDefault("MIGRATIONS_DIR", "database/migration")
	v.SetDefault("JWT_SECRET", "secret")
	v.SetDefault("JWT_EXPIRY", "24h")
	v.SetDefault("SMTP_PORT", 587)

	port := v.GetString("PORT")
	if port == "" {
		port = v.GetString("APP_PORT")
	}

	cfg := Config{
		AppEnv:   v.GetString("APP_ENV"),
		Port:     port,
		LogLevel: v.GetString("LOG_LEVEL"),

		StoreDriver:   strings.ToLower(v.GetString("STORE_DRIVER")),
		DatabaseURL:   v.GetString("DATABASE_URL"),
		DBHost:        v.GetString("DB_HOST"),
		DBPort:        v.GetString("DB_PORT"),
		DBUser:        v.GetString("DB_USER"),
		DBPassword:    v.GetString("DB_PASSWORD"),
		DBName:        v.GetString("DB_NAME"),
		DBSSLMode:     v.GetString("DB_SSLMODE"),
		DBMaxConns:    v.GetInt32("DB_MAX_CONNS"),
		MigrationsDir: v.GetString("MIGRATIONS_DIR"),

		RedisURL:      v.GetString("REDIS_URL"),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),

		JWTSecret: v.GetString("JWT_SECRET"),
		JWTExpiry: v.GetDuration("JWT_EXPIRY"),

		OriginURL: v.GetString("ORIGIN_URL"),

		SMTPHost:     v.GetString("SMTP_HOST"),
		SMTPPort:     v.GetInt("SMTP_PORT"),
		SMTPUser:     v.GetString("SMTP_USER"),
		SMTPPassword: v.GetString("SMTP_PASS"),
		SMTPFrom:     v.GetString("SMTP_FROM"),
	}

	switch cfg.StoreDriver {
	case DriverPostgres, DriverMemory:
	default:
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.JWTExpiry <= 0 {
		return Config{}, fmt.Errorf("JWT_EXPIRY must be a positive duration")
	}
	if cfg.AppEnv == "production" && cfg.JWTSecret == "secret" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set in production")
	}
	return cfg, nil
}

// DSN prefers DATABASE_URL and falls back to the individual DB_* values.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}
