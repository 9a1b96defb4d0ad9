package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "OUTCOME_TOPIC", "OUTCOME_SINK", "AMQP_URL", "DB_USER", "DB_PASSWORD", "DB_HOST", "DB_PORT", "DB_NAME", "DB_SSLMODE"} {
		t.Setenv(k, "")
	}
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CORS_ORIGINS", "https://app.acme.test, https://admin.acme.test ,")

	cfg := Load()
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "message_outcomes", cfg.OutcomeTopic)
	assert.Equal(t, []string{"https://app.acme.test", "https://admin.acme.test"}, cfg.CORSOrigins)
	assert.Equal(t, "postgres://postgres:@localhost:5432/broadcaster?sslmode=disable", cfg.DSN())
	assert.NoError(t, cfg.Validate())
	assert.Empty(t, cfg.EnvFile, "no .env next to the package")
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("JWT_ISSUER=broadcaster-test\n"), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Cleanup(func() { os.Unsetenv("JWT_ISSUER") })

	cfg := Load()
	assert.Equal(t, ".env", cfg.EnvFile)
	assert.Equal(t, "broadcaster-test", cfg.JWTIssuer)
}

func TestSink(t *testing.T) {
	tests := []struct {
		name    string
		cfg     AppConfig
		want    string
		wantErr bool
	}{
		{name: "default is direct", cfg: AppConfig{JWTSecret: "x"}, want: SinkDirect},
		{name: "amqp url implies amqp", cfg: AppConfig{JWTSecret: "x", AMQPURL: "amqp://localhost"}, want: SinkAMQP},
		{name: "explicit memory", cfg: AppConfig{JWTSecret: "x", OutcomeSink: "memory", AMQPURL: "amqp://localhost"}, want: SinkMemory},
		{name: "amqp without url", cfg: AppConfig{JWTSecret: "x", OutcomeSink: "amqp"}, want: SinkAMQP, wantErr: true},
		{name: "unknown sink", cfg: AppConfig{JWTSecret: "x", OutcomeSink: "kafka"}, want: "kafka", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Sink())
			if tt.wantErr {
				assert.Error(t, tt.cfg.Validate())
			} else {
				assert.NoError(t, tt.cfg.Validate())
			}
		})
	}
}

func TestValidate_RequiresJWTSecret(t *testing.T) {
	assert.EqualError(t, AppConfig{}.Validate(), "JWT_SECRET is required")
}

func TestWarnings(t *testing.T) {
	assert.Len(t, AppConfig{}.Warnings(), 2)
	assert.Empty(t, AppConfig{
		ResendAPIKey: "re_x", ResendFromEmail: "news@acme.test",
		TwilioAccountSID: "AC1", TwilioAuthToken: "tok", TwilioWhatsAppFrom: "+14155238886",
	}.Warnings())
}
