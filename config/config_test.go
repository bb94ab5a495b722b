package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, MailNone, cfg.MailProvider)
	assert.Equal(t, 4*time.Hour, cfg.InvitationTTL)
	assert.Equal(t, "@every 30s", cfg.StatusPushSpec)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.R2.Enabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("MAIL_PROVIDER", "SMTP")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("INVITATION_TTL", "90m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("INVITATION_SWEEP_SPEC", "*/5 * * * *")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.ServerPort)
	assert.Equal(t, MailSMTP, cfg.MailProvider)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, "tournaments@example.com", cfg.SMTP.From)
	assert.Equal(t, 90*time.Minute, cfg.InvitationTTL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"JWT_SECRET_KEY": ""}},
		{"bad port", map[string]string{"SERVER_PORT": "eighty"}},
		{"port out of range", map[string]string{"SERVER_PORT": "70000"}},
		{"bad level", map[string]string{"LOG_LEVEL": "loud"}},
		{"smtp without host", map[string]string{"MAIL_PROVIDER": "smtp"}},
		{"resend without key", map[string]string{"MAIL_PROVIDER": "resend"}},
		{"unknown provider", map[string]string{"MAIL_PROVIDER": "pigeon"}},
		{"bad ttl", map[string]string{"INVITATION_TTL": "-1h"}},
		{"bad cron", map[string]string{"STATUS_PUSH_SPEC": "every now and then"}},
		{"partial r2", map[string]string{"R2_BUCKET_NAME": "results"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET_KEY", "secret")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
