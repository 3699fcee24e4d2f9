package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	GinMode string `env:"GIN_MODE" envDefault:"debug"`

	MongoURI      string `env:"MONGODB_URI,required,notEmpty"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"newsdesk"`

	// JWTSecret is only needed by the API server; see Validate.
	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000"`

	CloudinaryURL string `env:"CLOUDINARY_URL"`

	SMTPHost     string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"465"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFromName string `env:"MAIL_FROM_NAME" envDefault:"News App"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	KafkaBrokers            []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopicPostPublished string   `env:"KAFKA_TOPIC_POST_PUBLISHED" envDefault:"post.published"`
	KafkaTopicPostDeleted   string   `env:"KAFKA_TOPIC_POST_DELETED" envDefault:"post.deleted"`

	AdminOTPTTL time.Duration `env:"OTP_ADMIN_TTL" envDefault:"5m"`
	UserOTPTTL  time.Duration `env:"OTP_USER_TTL" envDefault:"10m"`

	PublishSchedule    string `env:"PUBLISH_SCHEDULE" envDefault:"* * * * *"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
}

// Load reads .env (if present) and then the process environment. Malformed
// values are reported rather than replaced by defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: no .env file loaded: %v", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	cfg.CORSOrigins = compact(cfg.CORSOrigins)
	cfg.KafkaBrokers = compact(cfg.KafkaBrokers)
	return &cfg, nil
}

// Validate checks the settings the API server needs beyond what Load enforces.
func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return errors.New("MONGODB_URI must be set")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if c.AdminOTPTTL <= 0 || c.UserOTPTTL <= 0 {
		return errors.New("OTP TTLs must be positive")
	}
	if c.RateLimitPerMinute < 1 {
		return errors.New("RATE_LIMIT_PER_MINUTE must be at least 1")
	}
	return nil
}

// compact trims list entries and drops empty ones ("a, b," → [a b]).
func compact(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
