package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/app/configs")

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Allow common env vars without APP_ prefix for Docker/VM deploys
	viper.BindEnv("http.port", "HTTP_PORT", "APP_HTTP_PORT")
	viper.BindEnv("database.url", "DATABASE_URL", "APP_DATABASE_URL")
	viper.BindEnv("redis.url", "REDIS_URL", "APP_REDIS_URL")
	viper.BindEnv("queue.nats_url", "NATS_URL", "APP_QUEUE_NATS_URL")
	viper.BindEnv("queue.rabbitmq_url", "RABBITMQ_URL", "APP_QUEUE_RABBITMQ_URL")
	viper.BindEnv("payment.stripe.secret_key", "STRIPE_SECRET_KEY")
	viper.BindEnv("notification.email.api_key", "SENDGRID_API_KEY")
	viper.BindEnv("vault.address", "VAULT_ADDR")
	viper.BindEnv("vault.token", "VAULT_TOKEN")
	viper.BindEnv("app.environment", "APP_ENVIRONMENT")
	viper.BindEnv("logging.level", "LOG_LEVEL")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// no config file is fine, env vars can carry everything
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
