package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"nfccard-backend/internal/domain"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Gateway   GatewayConfig   `yaml:"gateway"`
	Email     EmailConfig     `yaml:"email"`
	Admin     AdminConfig     `yaml:"admin"`
	JWT       JWTConfig       `yaml:"jwt"`
	Storage   StorageConfig   `yaml:"storage"`
	Upload    UploadConfig    `yaml:"upload"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	CORS      CORSConfig      `yaml:"cors"`
	Pricing   PricingConfig   `yaml:"pricing"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	Environment            string `yaml:"environment"` // "development" exposes internal error text
	ReadTimeoutSeconds     int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds    int    `yaml:"write_timeout_seconds"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	SSLMode      string `yaml:"ssl_mode"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	AutoMigrate  bool   `yaml:"auto_migrate"`
}

// GatewayConfig contains payment gateway credentials
type GatewayConfig struct {
	KeyID     string `yaml:"key_id"`
	KeySecret string `yaml:"key_secret"`
	Currency  string `yaml:"currency"`
}

// EmailConfig selects the mail transport and the notification addresses
type EmailConfig struct {
	Provider       string         `yaml:"provider"` // "smtp", "sendgrid" or "ses"
	From           string         `yaml:"from"`
	FromName       string         `yaml:"from_name"`
	AdminRecipient string         `yaml:"admin_recipient"`
	TimeoutSeconds int            `yaml:"timeout_seconds"`
	SMTP           SMTPConfig     `yaml:"smtp"`
	SendGrid       SendGridConfig `yaml:"sendgrid"`
	SES            SESConfig      `yaml:"ses"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type SendGridConfig struct {
	APIKey string `yaml:"api_key"`
}

type SESConfig struct {
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

// AdminConfig holds the single administrator's login
type AdminConfig struct {
	Email        string `yaml:"email"`
	PasswordHash string `yaml:"password_hash"` // bcrypt
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// StorageConfig contains file storage settings
type StorageConfig struct {
	Type      string   `yaml:"type"`       // "local" or "s3"
	UploadDir string   `yaml:"upload_dir"` // For local storage
	BaseURL   string   `yaml:"base_url"`
	S3        S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Prefix   string `yaml:"prefix"`
	Endpoint string `yaml:"endpoint"`
}

type UploadConfig struct {
	MaxFileSizeMB int64 `yaml:"max_file_size_mb"`
}

func (u UploadConfig) MaxFileSizeBytes() int64 {
	return u.MaxFileSizeMB * 1024 * 1024
}

// RedisConfig enables the notification retry queue when Address is set
type RedisConfig struct {
	Address       string `yaml:"address"`
	Password      string `yaml:"password"`
	DB            int    `yaml:"db"`
	RetryQueueKey string `yaml:"retry_queue_key"`
	MaxAttempts   int    `yaml:"max_attempts"`
}

func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	Burst             int `yaml:"burst"`
	// TrustedProxies lists proxy IPs or CIDRs whose X-Forwarded-For is honored.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// PricingConfig overrides the built-in plan table when Plans is non-empty
type PricingConfig struct {
	DefaultPlan string        `yaml:"default_plan"`
	Plans       []domain.Plan `yaml:"plans"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ReconcileOrders       string `yaml:"reconcile_orders"`
	RetryNotifications    string `yaml:"retry_notifications"`
	ReconcileAfterMinutes int    `yaml:"reconcile_after_minutes"`
	BatchSize             int    `yaml:"batch_size"`
}

func (s SchedulerConfig) ReconcileAfter() time.Duration {
	return time.Duration(s.ReconcileAfterMinutes) * time.Minute
}

// Load reads configuration from a YAML file. A .env file next to the
// working directory is loaded first when present.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	setString(&c.Database.Host, "DB_HOST")
	setInt(&c.Database.Port, "DB_PORT")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.Database, "DB_NAME")
	setString(&c.Database.SSLMode, "DB_SSL_MODE")

	// Gateway
	setString(&c.Gateway.KeyID, "RAZORPAY_KEY_ID")
	setString(&c.Gateway.KeySecret, "RAZORPAY_KEY_SECRET")

	// Email. ADMIN_EMAIL doubles as the SMTP login and the notification recipient.
	if val := os.Getenv("ADMIN_EMAIL"); val != "" {
		c.Email.AdminRecipient = val
		if c.Email.SMTP.User == "" {
			c.Email.SMTP.User = val
		}
		if c.Email.From == "" {
			c.Email.From = val
		}
	}
	setString(&c.Email.SMTP.Password, "ADMIN_EMAIL_PASS")
	setString(&c.Email.Provider, "EMAIL_PROVIDER")
	setString(&c.Email.SMTP.Host, "SMTP_HOST")
	setInt(&c.Email.SMTP.Port, "SMTP_PORT")
	setString(&c.Email.SMTP.User, "SMTP_USER")
	setString(&c.Email.SMTP.Password, "SMTP_PASSWORD")
	setString(&c.Email.From, "SMTP_FROM")
	setString(&c.Email.SendGrid.APIKey, "SENDGRID_API_KEY")

	// Admin login
	setString(&c.Admin.Email, "ADMIN_LOGIN_EMAIL")
	setString(&c.Admin.PasswordHash, "ADMIN_PASSWORD_HASH")

	// JWT
	setString(&c.JWT.Secret, "JWT_SECRET")

	// Server
	setString(&c.Server.Host, "SERVER_HOST")
	setInt(&c.Server.Port, "SERVER_PORT")
	setInt(&c.Server.Port, "PORT")
	setString(&c.Server.Environment, "APP_ENV")

	// Storage
	setString(&c.Storage.Type, "STORAGE_TYPE")
	setString(&c.Storage.UploadDir, "UPLOAD_DIR")
	setString(&c.Storage.S3.Bucket, "S3_BUCKET")

	// Redis
	setString(&c.Redis.Address, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")

	// Rate limit
	if val := os.Getenv("TRUSTED_PROXIES"); val != "" {
		c.RateLimit.TrustedProxies = strings.Split(val, ",")
	}

	// Log
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func setString(dst *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func setInt(dst *int, key string) {
	if val := os.Getenv(key); val != "" {
		fmt.Sscanf(val, "%d", dst)
	}
}

// Validate checks if the configuration is valid and fills defaults
func (c *Config) Validate() error {
	// Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.Environment == "" {
		c.Server.Environment = "production"
	}
	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = 30
	}
	if c.Server.WriteTimeoutSeconds == 0 {
		c.Server.WriteTimeoutSeconds = 30
	}
	if c.Server.ShutdownTimeoutSeconds == 0 {
		c.Server.ShutdownTimeoutSeconds = 15
	}

	// Database
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}

	// Gateway
	if c.Gateway.KeyID == "" || c.Gateway.KeySecret == "" {
		return fmt.Errorf("payment gateway key id and secret are required")
	}
	if c.Gateway.Currency == "" {
		c.Gateway.Currency = "INR"
	}

	// Email
	if c.Email.Provider == "" {
		c.Email.Provider = "smtp"
	}
	switch c.Email.Provider {
	case "smtp":
		if c.Email.SMTP.Host == "" {
			c.Email.SMTP.Host = "smtp.gmail.com"
		}
		if c.Email.SMTP.Port == 0 {
			c.Email.SMTP.Port = 587
		}
		if c.Email.SMTP.Port < 0 || c.Email.SMTP.Port > 65535 {
			return fmt.Errorf("invalid SMTP port: %d", c.Email.SMTP.Port)
		}
	case "sendgrid":
		if c.Email.SendGrid.APIKey == "" {
			return fmt.Errorf("sendgrid api key is required")
		}
	case "ses":
		if c.Email.SES.Region == "" {
			return fmt.Errorf("SES region is required")
		}
	default:
		return fmt.Errorf("unknown email provider: %s", c.Email.Provider)
	}
	if c.Email.From == "" {
		return fmt.Errorf("email from address is required")
	}
	if c.Email.AdminRecipient == "" {
		c.Email.AdminRecipient = c.Email.From
	}
	if c.Email.FromName == "" {
		c.Email.FromName = "NFC Card Team"
	}
	if c.Email.TimeoutSeconds == 0 {
		c.Email.TimeoutSeconds = 30
	}

	// Admin
	if c.Admin.Email == "" {
		c.Admin.Email = c.Email.AdminRecipient
	}
	if c.Admin.PasswordHash == "" {
		return fmt.Errorf("admin password hash is required")
	}

	// JWT
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}

	// Storage
	if c.Storage.Type == "" {
		c.Storage.Type = "local"
	}
	switch c.Storage.Type {
	case "local":
		if c.Storage.UploadDir == "" {
			c.Storage.UploadDir = "uploads"
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required")
		}
		if c.Storage.S3.Region == "" {
			return fmt.Errorf("S3 region is required")
		}
	default:
		return fmt.Errorf("unknown storage type: %s", c.Storage.Type)
	}
	if c.Upload.MaxFileSizeMB == 0 {
		c.Upload.MaxFileSizeMB = 5
	}

	// Redis
	if c.Redis.RetryQueueKey == "" {
		c.Redis.RetryQueueKey = "nfccard:notifications:retry"
	}
	if c.Redis.MaxAttempts == 0 {
		c.Redis.MaxAttempts = 5
	}

	// Rate limit
	if c.RateLimit.RequestsPerMinute == 0 {
		c.RateLimit.RequestsPerMinute = 30
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 10
	}
	for i, p := range c.RateLimit.TrustedProxies {
		p = strings.TrimSpace(p)
		if _, err := netip.ParsePrefix(p); err != nil {
			if _, err := netip.ParseAddr(p); err != nil {
				return fmt.Errorf("invalid trusted proxy %q", p)
			}
		}
		c.RateLimit.TrustedProxies[i] = p
	}

	// CORS
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	for i, o := range c.CORS.AllowedOrigins {
		c.CORS.AllowedOrigins[i] = strings.TrimRight(strings.TrimSpace(o), "/")
	}

	// Scheduler defaults
	if c.Scheduler.ReconcileOrders == "" {
		c.Scheduler.ReconcileOrders = "0 */15 * * * *" // every 15 minutes
	}
	if c.Scheduler.RetryNotifications == "" {
		c.Scheduler.RetryNotifications = "0 */5 * * * *" // every 5 minutes
	}
	if c.Scheduler.ReconcileAfterMinutes == 0 {
		c.Scheduler.ReconcileAfterMinutes = 30
	}
	if c.Scheduler.BatchSize == 0 {
		c.Scheduler.BatchSize = 50
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) EmailTimeout() time.Duration {
	return time.Duration(c.Email.TimeoutSeconds) * time.Second
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.JWT.AccessTokenExpiry) * time.Minute
}
