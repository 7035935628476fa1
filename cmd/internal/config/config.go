package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	"github.com/spf13/viper"
)

var ErrMissingSecret = errors.New("JWT_SECRET is required outside development")

const devSecret = "nabha-development-secret"

type Config struct {
	Port            string        `mapstructure:"PORT"`
	Env             string        `mapstructure:"ENV"`
	DatabasePath    string        `mapstructure:"DATABASE_PATH"`
	LedgerPath      string        `mapstructure:"LEDGER_PATH"`
	JWTSecret       string        `mapstructure:"JWT_SECRET"`
	TokenTTL        time.Duration `mapstructure:"TOKEN_TTL"`
	MockOtp         string        `mapstructure:"MOCK_OTP"`
	DemoDoctorPhone string        `mapstructure:"DEMO_DOCTOR_PHONE"`
	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int           `mapstructure:"REDIS_DB"`
	CORSOrigins     []string      `mapstructure:"-"`
	SeedDemo        bool          `mapstructure:"SEED_DEMO"`
}

var keys = []string{
	"PORT", "ENV", "DATABASE_PATH", "LEDGER_PATH", "JWT_SECRET", "TOKEN_TTL",
	"MOCK_OTP", "DEMO_DOCTOR_PHONE", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"CORS_ORIGINS", "SEED_DEMO",
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file loaded: %v", err)
	}

	v := viper.New()
	v.SetDefault("PORT", "6060")
	v.SetDefault("ENV", "development")
	v.SetDefault("DATABASE_PATH", "file::memory:?cache=shared")
	v.SetDefault("LEDGER_PATH", "")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("MOCK_OTP", "123456")
	v.SetDefault("DEMO_DOCTOR_PHONE", "+919876543210")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("SEED_DEMO", true)

	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.IsDev() && cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET not set, signing tokens with the development secret")
		cfg.JWTSecret = devSecret
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) Validate() error {
	if !c.IsDev() && c.JWTSecret == "" {
		return ErrMissingSecret
	}

	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}

	if len(c.MockOtp) != 6 {
		return fmt.Errorf("MOCK_OTP must have 6 digits")
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
