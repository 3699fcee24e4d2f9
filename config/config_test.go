package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 5*time.Minute, cfg.AdminOTPTTL)
	assert.Equal(t, 10*time.Minute, cfg.UserOTPTTL)
	assert.Equal(t, "* * * * *", cfg.PublishSchedule)
	assert.Equal(t, 20, cfg.RateLimitPerMinute)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.CORSOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://db:27017")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SMTP_PORT", "587")
	t.Setenv("OTP_ADMIN_TTL", "90s")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, 90*time.Second, cfg.AdminOTPTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"JWT_TTL", "24"},
		{"OTP_ADMIN_TTL", "5"},
		{"RATE_LIMIT_PER_MINUTE", "twenty"},
		{"SMTP_PORT", "smtp"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadRequiresMongoURI(t *testing.T) {
	t.Setenv("MONGODB_URI", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGODB_URI")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			MongoURI:           "mongodb://x",
			JWTSecret:          "x",
			JWTTTL:             time.Hour,
			AdminOTPTTL:        time.Minute,
			UserOTPTTL:         time.Minute,
			RateLimitPerMinute: 1,
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no mongo", func(c *Config) { c.MongoURI = "" }, "MONGODB_URI must be set"},
		{"no secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET must be set"},
		{"zero ttl", func(c *Config) { c.JWTTTL = 0 }, "JWT_TTL must be positive"},
		{"negative otp ttl", func(c *Config) { c.UserOTPTTL = -time.Second }, "OTP TTLs must be positive"},
		{"zero rate limit", func(c *Config) { c.RateLimitPerMinute = 0 }, "RATE_LIMIT_PER_MINUTE must be at least 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.EqualError(t, cfg.Validate(), tt.want)
		})
	}
}
