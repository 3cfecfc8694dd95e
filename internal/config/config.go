package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string   `mapstructure:"PORT"`
	Env             string   `mapstructure:"ENV"`
	DatabaseURL     string   `mapstructure:"DATABASE_URL"`
	DBMaxConns      int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins     []string `mapstructure:"CORS_ORIGINS"`
	AuthSecret      string   `mapstructure:"AUTH_SECRET"`
	TokenTTLMinutes int      `mapstructure:"TOKEN_TTL_MINUTES"`
	SeedDemoData    bool     `mapstructure:"SEED_DEMO_DATA"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("TOKEN_TTL_MINUTES", 60)
	v.SetDefault("SEED_DEMO_DATA", true)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("AUTH_SECRET")
	v.BindEnv("TOKEN_TTL_MINUTES")
	v.BindEnv("SEED_DEMO_DATA")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// UseMemoryStore reports whether the process runs on the in-memory record
// store. This is the demo default; set DATABASE_URL to run on PostgreSQL.
func (c *Config) UseMemoryStore() bool {
	return c.DatabaseURL == ""
}

// Validate checks that the configuration is safe to run. Outside development
// the login token secret must be set explicitly; the in-memory store is
// allowed everywhere but loses all data on restart.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if !c.IsDev() && c.AuthSecret == "" {
		return fmt.Errorf("AUTH_SECRET is required when ENV=%q", c.Env)
	}
	if c.TokenTTLMinutes <= 0 {
		return fmt.Errorf("TOKEN_TTL_MINUTES must be positive, got %d", c.TokenTTLMinutes)
	}
	return nil
}
