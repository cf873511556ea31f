package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// AppConfig is the resolved runtime configuration of the service.
type AppConfig struct {
	Env         string
	Port        string
	FrontendURL string
	CORSOrigins []string
	LogLevel    string

	Mongo    MongoDBConfig
	JWT      JWTConfig
	Mail     EmailConfig
	Reminder ReminderConfig
}

type JWTConfig struct {
	Key []byte
	TTL time.Duration

	// ResetTTL bounds how long a password reset link stays valid.
	ResetTTL time.Duration
}

type ReminderConfig struct {
	Schedule      string
	Timezone      string
	DueSoonWindow time.Duration
}

func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("port", "8080")
	v.SetDefault("frontend_url", "http://localhost:5173")
	v.SetDefault("cors_origins", "http://localhost:5173")
	v.SetDefault("log_level", "info")
	v.SetDefault("mongo_db", "taskflow")
	v.SetDefault("jwt_ttl", 24*time.Hour)
	v.SetDefault("password_reset_ttl", time.Hour)
	v.SetDefault("mail_driver", "log")
	v.SetDefault("mail_from", "noreply@taskflow.local")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("reminder_schedule", "0 8 * * *")
	v.SetDefault("reminder_timezone", "UTC")
	v.SetDefault("due_soon_window", 24*time.Hour)
}

// Load reads the configuration from the environment. Keys are the upper-case
// form of the viper keys, e.g. MONGO_URI.
func Load() (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*AppConfig, error) {
	cfg := &AppConfig{
		Env:         strings.ToLower(v.GetString("env")),
		Port:        v.GetString("port"),
		FrontendURL: strings.TrimRight(v.GetString("frontend_url"), "/"),
		CORSOrigins: splitList(v.GetString("cors_origins")),
		LogLevel:    v.GetString("log_level"),
		Mongo: MongoDBConfig{
			URI:      v.GetString("mongo_uri"),
			Database: v.GetString("mongo_db"),
		},
		JWT: JWTConfig{
			Key:      []byte(v.GetString("jwt_key")),
			TTL:      v.GetDuration("jwt_ttl"),
			ResetTTL: v.GetDuration("password_reset_ttl"),
		},
		Mail: EmailConfig{
			Driver:       strings.ToLower(v.GetString("mail_driver")),
			From:         v.GetString("mail_from"),
			SMTPHost:     v.GetString("smtp_host"),
			SMTPPort:     v.GetInt("smtp_port"),
			SMTPUsername: v.GetString("smtp_username"),
			SMTPPassword: v.GetString("smtp_password"),
			ResendAPIKey: v.GetString("resend_api_key"),
		},
		Reminder: ReminderConfig{
			Schedule:      v.GetString("reminder_schedule"),
			Timezone:      v.GetString("reminder_timezone"),
			DueSoonWindow: v.GetDuration("due_soon_window"),
		},
	}

	if cfg.Mongo.URI == "" {
		return nil, errors.New("MONGO_URI not set")
	}
	if len(cfg.JWT.Key) == 0 {
		return nil, errors.New("JWT_KEY not set")
	}
	if err := cfg.Mail.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
