package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  port: 5000
  environment: development
database:
  host: localhost
  user: nfc
  database: nfccard
gateway:
  key_id: rzp_test_123
  key_secret: shh
email:
  from: cards@example.com
admin:
  password_hash: "$2a$10$abcdefghijklmnopqrstuu"
jwt:
  secret: "0123456789abcdef0123456789abcdef"
pricing:
  default_plan: Starter Pack
  plans:
    - name: Starter Pack
      tier: basic
      price: 799
      features: [Card]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "INR", cfg.Gateway.Currency)
	assert.Equal(t, "smtp", cfg.Email.Provider)
	assert.Equal(t, "smtp.gmail.com", cfg.Email.SMTP.Host)
	assert.Equal(t, 587, cfg.Email.SMTP.Port)
	assert.Equal(t, "cards@example.com", cfg.Email.AdminRecipient)
	assert.Equal(t, "cards@example.com", cfg.Admin.Email)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "uploads", cfg.Storage.UploadDir)
	assert.Equal(t, int64(5*1024*1024), cfg.Upload.MaxFileSizeBytes())
	assert.Equal(t, 30*time.Minute, cfg.Scheduler.ReconcileAfter())
	assert.Equal(t, "0 */15 * * * *", cfg.Scheduler.ReconcileOrders)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "info", cfg.Log.Level)
	require.Len(t, cfg.Pricing.Plans, 1)
	assert.Equal(t, 799.0, cfg.Pricing.Plans[0].Price)
	assert.Equal(t, "postgres://nfc:@localhost:5432/nfccard?sslmode=disable", cfg.GetDatabaseConnectionString())
	assert.Equal(t, ":5000", cfg.GetServerAddress())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("RAZORPAY_KEY_ID", "rzp_live_abc")
	t.Setenv("RAZORPAY_KEY_SECRET", "live_secret")
	t.Setenv("ADMIN_EMAIL", "owner@example.com")
	t.Setenv("ADMIN_EMAIL_PASS", "app-password")
	t.Setenv("PORT", "8080")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.7")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "rzp_live_abc", cfg.Gateway.KeyID)
	assert.Equal(t, "live_secret", cfg.Gateway.KeySecret)
	assert.Equal(t, "owner@example.com", cfg.Email.AdminRecipient)
	assert.Equal(t, "owner@example.com", cfg.Email.SMTP.User)
	assert.Equal(t, "cards@example.com", cfg.Email.From)
	assert.Equal(t, "app-password", cfg.Email.SMTP.Password)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.7"}, cfg.RateLimit.TrustedProxies)
}

func TestValidate_Errors(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 5000},
			Database: DatabaseConfig{Host: "h", User: "u", Database: "d"},
			Gateway:  GatewayConfig{KeyID: "k", KeySecret: "s"},
			Email:    EmailConfig{From: "a@b.co"},
			Admin:    AdminConfig{PasswordHash: "hash"},
			JWT:      JWTConfig{Secret: "0123456789abcdef0123456789abcdef"},
		}
	}
	require.NoError(t, base().Validate())

	cases := map[string]func(c *Config){
		"invalid server port":    func(c *Config) { c.Server.Port = 0 },
		"database host":          func(c *Config) { c.Database.Host = "" },
		"gateway":                func(c *Config) { c.Gateway.KeySecret = "" },
		"unknown email provider": func(c *Config) { c.Email.Provider = "pigeon" },
		"sendgrid api key":       func(c *Config) { c.Email.Provider = "sendgrid" },
		"from address":           func(c *Config) { c.Email.From = "" },
		"admin password hash":    func(c *Config) { c.Admin.PasswordHash = "" },
		"at least 32":            func(c *Config) { c.JWT.Secret = "short" },
		"S3 bucket":              func(c *Config) { c.Storage.Type = "s3" },
		"invalid trusted proxy":  func(c *Config) { c.RateLimit.TrustedProxies = []string{"10.0.0.0/8", "proxy.local"} },
	}
	for want, mutate := range cases {
		c := base()
		mutate(c)
		err := c.Validate()
		require.Error(t, err, want)
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}
