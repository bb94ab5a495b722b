package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

type MailProvider string

const (
	MailSMTP   MailProvider = "smtp"
	MailResend MailProvider = "resend"
	MailNone   MailProvider = "none"
)

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicBaseURL   string
}

// Enabled reports whether results archiving is configured.
func (c R2Config) Enabled() bool { return c.BucketName != "" }

type Config struct {
	ServerPort   int
	JWTSecretKey string
	AdminToken   string
	DatabaseURL  string
	RedisURL     string

	LogLevel  string
	LogFormat string
	LogFile   string

	MailProvider MailProvider
	SMTP         SMTPConfig
	ResendAPIKey string
	MailFrom     string

	R2 R2Config

	InvitationTTL       time.Duration
	StatusPushSpec      string
	InvitationSweepSpec string
	CORSAllowedOrigins  []string
}

// Load reads the configuration from the environment, after loading .env when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		JWTSecretKey: os.Getenv("JWT_SECRET_KEY"),
		AdminToken:   os.Getenv("ADMIN_TOKEN"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RedisURL:     os.Getenv("REDIS_URL"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "json"),
		LogFile:      os.Getenv("LOG_FILE"),
		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		MailFrom:     getEnv("MAIL_FROM", "tournaments@example.com"),
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			From:     os.Getenv("SMTP_FROM"),
		},
		R2: R2Config{
			AccountID:       os.Getenv("R2_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
			BucketName:      os.Getenv("R2_BUCKET_NAME"),
			PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
		},
		StatusPushSpec:      getEnv("STATUS_PUSH_SPEC", "@every 30s"),
		InvitationSweepSpec: getEnv("INVITATION_SWEEP_SPEC", "@every 1m"),
		CORSAllowedOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	if cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := getInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}
	cfg.ServerPort = port

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid LOG_LEVEL %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "json", "console":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q", cfg.LogFormat)
	}

	if err := cfg.loadMail(); err != nil {
		return nil, err
	}

	ttl, err := time.ParseDuration(getEnv("INVITATION_TTL", "4h"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("invalid INVITATION_TTL: must be a positive duration")
	}
	cfg.InvitationTTL = ttl

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for name, spec := range map[string]string{
		"STATUS_PUSH_SPEC":      cfg.StatusPushSpec,
		"INVITATION_SWEEP_SPEC": cfg.InvitationSweepSpec,
	} {
		if _, err := parser.Parse(spec); err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", name, spec, err)
		}
	}

	if cfg.R2.Enabled() && (cfg.R2.AccountID == "" || cfg.R2.AccessKeyID == "" || cfg.R2.SecretAccessKey == "") {
		return nil, fmt.Errorf("R2_BUCKET_NAME is set but R2 credentials are incomplete")
	}

	return cfg, nil
}

func (cfg *Config) loadMail() error {
	provider := MailProvider(strings.ToLower(getEnv("MAIL_PROVIDER", string(MailNone))))
	switch provider {
	case MailNone:
	case MailSMTP:
		if cfg.SMTP.Host == "" {
			return fmt.Errorf("MAIL_PROVIDER=smtp requires SMTP_HOST")
		}
		port, err := getInt("SMTP_PORT", 587)
		if err != nil {
			return err
		}
		cfg.SMTP.Port = port
		if cfg.SMTP.From == "" {
			cfg.SMTP.From = cfg.MailFrom
		}
	case MailResend:
		if cfg.ResendAPIKey == "" {
			return fmt.Errorf("MAIL_PROVIDER=resend requires RESEND_API_KEY")
		}
	default:
		return fmt.Errorf("invalid MAIL_PROVIDER %q", provider)
	}
	cfg.MailProvider = provider
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
