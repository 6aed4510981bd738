package config

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port      int    `envconfig:"PORT" default:"8080"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty bool   `envconfig:"LOG_PRETTY" default:"false"`
	Version   string `envconfig:"VERSION" default:"dev"`

	SupabaseURL       string `envconfig:"SUPABASE_URL" required:"true" validate:"url"`
	SupabaseKey       string `envconfig:"SUPABASE_KEY" required:"true"`
	SupabaseJWTSecret string `envconfig:"SUPABASE_JWT_SECRET"`

	StoreBackend   string `envconfig:"STORE_BACKEND" default:"postgrest" validate:"oneof=postgrest postgres"`
	DatabaseURL    string `envconfig:"DATABASE_URL" validate:"required_if=StoreBackend postgres"`
	MigrateOnStart bool   `envconfig:"MIGRATE_ON_START" default:"false"`

	HTTPClientTimeout time.Duration `envconfig:"HTTP_CLIENT_TIMEOUT" default:"10s" validate:"gt=0"`

	ErrorLog        bool `envconfig:"ERROR_LOG" default:"true"`
	ErrorStackTrace bool `envconfig:"ERROR_STACK_TRACE" default:"false"`
}

// Load reads configuration from environment variables into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return errors.Errorf("invalid configuration: %s failed %q", fe.Namespace(), fe.Tag()+paramSuffix(fe.Param()))
		}
		return errors.Wrap(err, "invalid configuration")
	}
	return nil
}

func paramSuffix(p string) string {
	if p == "" {
		return ""
	}
	return "=" + p
}
