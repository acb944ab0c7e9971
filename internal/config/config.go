package config

import (
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Posting modes for the bill workflow
const (
	PostingModeAtomic     = "atomic"
	PostingModeBestEffort = "best_effort"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Auth      AuthConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Printer   PrinterConfig
	Billing   BillingConfig
	Scheduler SchedulerConfig
}

type AppConfig struct {
	Name            string
	Env             string
	Port            string
	Debug           bool
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
	Seed     bool

	// Demo cashier created by the seeder
	SeedUserEmail    string
	SeedUserPassword string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours time.Duration
}

type AuthConfig struct {
	Enabled bool
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

type LogConfig struct {
	Level string
}

type PrinterConfig struct {
	Type      string
	USBPath   string
	Address   string
	CharWidth int
}

type BillingConfig struct {
	PostingMode    string
	GSTRate        decimal.Decimal
	SnowflakeNode  int64
	StoreName      string
	StoreAddress   string
	StorePhone     string
	IdempotencyTTL time.Duration
}

type SchedulerConfig struct {
	IdempotencyPurgeCron string
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	setDefaults()
	return fromViper()
}

func setDefaults() {
	viper.SetDefault("APP_NAME", "pharmacy-pos")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("APP_SHUTDOWN_TIMEOUT_SECONDS", 10)
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "pharmacy")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("DB_SEED", true)
	viper.SetDefault("DB_SEED_USER_EMAIL", "cashier@ligimed.local")
	viper.SetDefault("DB_SEED_USER_PASSWORD", "cashier123")
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 12)
	viper.SetDefault("AUTH_ENABLED", false)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_METHODS", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
	viper.SetDefault("CORS_ALLOWED_HEADERS", "")
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("PRINTER_TYPE", "none")
	viper.SetDefault("PRINTER_USB_PATH", "/dev/usb/lp0")
	viper.SetDefault("PRINTER_ADDRESS", "")
	viper.SetDefault("PRINTER_CHAR_WIDTH", 32)
	viper.SetDefault("BILLING_POSTING_MODE", PostingModeAtomic)
	viper.SetDefault("BILLING_GST_RATE", "0.12")
	viper.SetDefault("BILLING_SNOWFLAKE_NODE", 1)
	viper.SetDefault("BILLING_STORE_NAME", "LIGIMED PHARMACY")
	viper.SetDefault("BILLING_STORE_ADDRESS", "")
	viper.SetDefault("BILLING_STORE_PHONE", "")
	viper.SetDefault("BILLING_IDEMPOTENCY_TTL_HOURS", 24)
	viper.SetDefault("SCHEDULER_IDEMPOTENCY_PURGE_CRON", "@every 1h")
}

func fromViper() *Config {
	gst, err := decimal.NewFromString(viper.GetString("BILLING_GST_RATE"))
	if err != nil {
		log.Printf("Warning: invalid BILLING_GST_RATE %q, using 0.12", viper.GetString("BILLING_GST_RATE"))
		gst = decimal.New(12, -2)
	}

	mode := strings.ToLower(viper.GetString("BILLING_POSTING_MODE"))
	if mode != PostingModeBestEffort {
		mode = PostingModeAtomic
	}

	return &Config{
		App: AppConfig{
			Name:            viper.GetString("APP_NAME"),
			Env:             viper.GetString("APP_ENV"),
			Port:            viper.GetString("APP_PORT"),
			Debug:           viper.GetBool("APP_DEBUG"),
			ShutdownTimeout: time.Duration(viper.GetInt("APP_SHUTDOWN_TIMEOUT_SECONDS")) * time.Second,
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(viper.GetString("DB_DRIVER")),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
			Seed:     viper.GetBool("DB_SEED"),

			SeedUserEmail:    viper.GetString("DB_SEED_USER_EMAIL"),
			SeedUserPassword: viper.GetString("DB_SEED_USER_PASSWORD"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		},
		Auth: AuthConfig{
			Enabled: viper.GetBool("AUTH_ENABLED"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
			AllowedMethods: splitList(viper.GetString("CORS_ALLOWED_METHODS")),
			AllowedHeaders: splitList(viper.GetString("CORS_ALLOWED_HEADERS")),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Printer: PrinterConfig{
			Type:      viper.GetString("PRINTER_TYPE"),
			USBPath:   viper.GetString("PRINTER_USB_PATH"),
			Address:   viper.GetString("PRINTER_ADDRESS"),
			CharWidth: viper.GetInt("PRINTER_CHAR_WIDTH"),
		},
		Billing: BillingConfig{
			PostingMode:    mode,
			GSTRate:        gst,
			SnowflakeNode:  viper.GetInt64("BILLING_SNOWFLAKE_NODE"),
			StoreName:      viper.GetString("BILLING_STORE_NAME"),
			StoreAddress:   viper.GetString("BILLING_STORE_ADDRESS"),
			StorePhone:     viper.GetString("BILLING_STORE_PHONE"),
			IdempotencyTTL: time.Duration(viper.GetInt("BILLING_IDEMPOTENCY_TTL_HOURS")) * time.Hour,
		},
		Scheduler: SchedulerConfig{
			IdempotencyPurgeCron: viper.GetString("SCHEDULER_IDEMPOTENCY_PURGE_CRON"),
		},
	}
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

// IsProduction reports whether the app runs with production settings
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}
