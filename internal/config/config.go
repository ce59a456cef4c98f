package config

import (
	"crypto/rsa"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

// Config is the API server configuration, read from the environment.
type Config struct {
	Port               string        `mapstructure:"PORT" validate:"required,numeric"`
	Env                string        `mapstructure:"APP_ENV" validate:"oneof=development production test"`
	StoreBackend       string        `mapstructure:"STORE_BACKEND" validate:"oneof=postgres memory"`
	DatabaseURL        string        `mapstructure:"DB_CONNECTION_STRING" validate:"required_if=StoreBackend postgres"`
	RedisAddress       string        `mapstructure:"REDIS_ADDRESS"`
	RedisPassword      string        `mapstructure:"REDIS_PASSWORD"`
	LockTTL            time.Duration `mapstructure:"LOCK_TTL" validate:"gt=0"`
	PublicKeyPath      string        `mapstructure:"PUBLIC_KEY_PATH" validate:"required"`
	CORSAllowedOrigins string        `mapstructure:"CORS_ALLOWED_ORIGINS"`

	JWTPublicKey *rsa.PublicKey `mapstructure:"-"`
}

var validate = validator.New()

// Load reads the configuration and panics when it is unusable.
func Load() *Config {
	cfg, err := LoadFrom(viper.New())
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	publicKey, err := loadPublicKey(cfg.PublicKeyPath)
	if err != nil {
		panic("Failed to load public key: " + err.Error())
	}
	cfg.JWTPublicKey = publicKey

	return cfg
}

// LoadFrom applies defaults and environment overrides to v and validates the
// result. Key material is not read.
func LoadFrom(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("STORE_BACKEND", "postgres")
	v.SetDefault("DB_CONNECTION_STRING", "")
	v.SetDefault("REDIS_ADDRESS", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("LOCK_TTL", "10s")
	v.SetDefault("PUBLIC_KEY_PATH", "/etc/certs/public.pem")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func loadPublicKey(path string) (*rsa.PublicKey, error) {
	keyData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(keyData)
	if err != nil {
		return nil, err
	}
	return publicKey, nil
}
