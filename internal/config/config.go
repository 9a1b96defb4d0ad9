package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	SinkDirect = "direct"
	SinkMemory = "memory"
	SinkAMQP   = "amqp"
)

type AppConfig struct {
	HTTPAddr string
	LogLevel string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string
	DBSSLMode  string

	// OutcomeSink is where delivery outcomes go: "direct" inserts in the
	// request, "memory" writes through the in-process queue, "amqp" publishes
	// to RabbitMQ for cmd/worker. AMQP_URL alone implies "amqp".
	OutcomeSink  string
	AMQPURL      string
	OutcomeTopic string

	ResendAPIKey    string
	ResendFromEmail string

	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string

	JWTSecret string
	JWTIssuer string

	CORSOrigins []string

	// EnvFile is the dotenv file that was loaded, or "" when settings come
	// from the process environment only.
	EnvFile string
}

const defaultEnvFile = ".env"

func Load() AppConfig {
	envFile := defaultEnvFile
	if err := godotenv.Load(envFile); err != nil {
		envFile = ""
	}
	return AppConfig{
		EnvFile: envFile,

		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBName:     getEnv("DB_NAME", "broadcaster"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		OutcomeSink:  getEnv("OUTCOME_SINK", ""),
		AMQPURL:      getEnv("AMQP_URL", ""),
		OutcomeTopic: getEnv("OUTCOME_TOPIC", "message_outcomes"),

		ResendAPIKey:    getEnv("RESEND_API_KEY", ""),
		ResendFromEmail: getEnv("RESEND_FROM_EMAIL", ""),

		TwilioAccountSID:   getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:    getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioWhatsAppFrom: getEnv("TWILIO_WHATSAPP_FROM", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", ""),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
	}
}

// DSN builds the postgres connection string from the DB_* settings.
func (c AppConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// Sink resolves the outcome sink, defaulting by whether AMQP is configured.
func (c AppConfig) Sink() string {
	if c.OutcomeSink != "" {
		return c.OutcomeSink
	}
	if c.AMQPURL != "" {
		return SinkAMQP
	}
	return SinkDirect
}

// Validate reports settings the server cannot start without. Missing provider
// credentials are not fatal; the affected channel fails per message instead.
func (c AppConfig) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.Sink() {
	case SinkDirect, SinkMemory:
	case SinkAMQP:
		if c.AMQPURL == "" {
			return errors.New("OUTCOME_SINK=amqp requires AMQP_URL")
		}
	default:
		return fmt.Errorf("unknown OUTCOME_SINK %q", c.OutcomeSink)
	}
	return nil
}

// Warnings lists optional settings that are missing.
func (c AppConfig) Warnings() []string {
	var out []string
	if c.ResendAPIKey == "" || c.ResendFromEmail == "" {
		out = append(out, "RESEND_API_KEY/RESEND_FROM_EMAIL not set, email sends will fail")
	}
	if c.TwilioAccountSID == "" || c.TwilioAuthToken == "" || c.TwilioWhatsAppFrom == "" {
		out = append(out, "TWILIO_* not set, WhatsApp sends will fail")
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
