package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// RelayConfig holds configuration for the outbox relay service.
type RelayConfig struct {
	Env                string `mapstructure:"APP_ENV" validate:"oneof=development production test"`
	DatabaseURL        string `mapstructure:"DB_CONNECTION_STRING" validate:"required"`
	RabbitMQURL        string `mapstructure:"RABBITMQ_URL" validate:"required"`
	LifecycleQueueName string `mapstructure:"LIFECYCLE_QUEUE_NAME" validate:"required"`
	HealthPort         string `mapstructure:"RELAY_HEALTH_PORT" validate:"required,numeric"`
}

func LoadRelayConfig() *RelayConfig {
	cfg, err := LoadRelayConfigFrom(viper.New())
	if err != nil {
		panic("Failed to load relay configuration: " + err.Error())
	}
	return cfg
}

func LoadRelayConfigFrom(v *viper.Viper) (*RelayConfig, error) {
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "production")
	v.SetDefault("DB_CONNECTION_STRING", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("LIFECYCLE_QUEUE_NAME", "donor-lifecycle")
	v.SetDefault("RELAY_HEALTH_PORT", "8090")

	var cfg RelayConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode relay config into struct: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid relay configuration: %w", err)
	}

	return &cfg, nil
}
