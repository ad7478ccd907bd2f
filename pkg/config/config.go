package config

import "time"

type Config struct {
	App            AppConfig            `mapstructure:"app"`
	HTTP           HTTPConfig           `mapstructure:"http"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Queue          QueueConfig          `mapstructure:"queue"`
	Session        SessionConfig        `mapstructure:"session"`
	Store          StoreConfig          `mapstructure:"store"`
	OpenTelemetry  OpenTelemetryConfig  `mapstructure:"opentelemetry"`
	Prometheus     PrometheusConfig     `mapstructure:"prometheus"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	CORS           CORSConfig           `mapstructure:"cors"`
	Payment        PaymentConfig        `mapstructure:"payment"`
	Notification   NotificationConfig   `mapstructure:"notification"`
	Cache          CacheConfig          `mapstructure:"cache"`
	Vault          VaultConfig          `mapstructure:"vault"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type HTTPConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	LogQueries      bool          `mapstructure:"log_queries"`
}

type RedisConfig struct {
	URL         string        `mapstructure:"url"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
}

// QueueConfig selects the event broker. Driver is "nats" or "rabbitmq".
type QueueConfig struct {
	Driver      string `mapstructure:"driver"`
	NATSURL     string `mapstructure:"nats_url"`
	RabbitMQURL string `mapstructure:"rabbitmq_url"`
}

// URL returns the broker URL for the configured driver.
func (q QueueConfig) URL() string {
	if q.Driver == "rabbitmq" {
		return q.RabbitMQURL
	}
	return q.NATSURL
}

// SessionConfig controls cart session lifetime.
type SessionConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// StoreConfig is the store identity printed on receipt headers.
type StoreConfig struct {
	Name    string `mapstructure:"name"`
	Address string `mapstructure:"address"`
	Phone   string `mapstructure:"phone"`
	TaxID   string `mapstructure:"tax_id"`
}

type OpenTelemetryConfig struct {
	Enabled     bool         `mapstructure:"enabled"`
	Jaeger      JaegerConfig `mapstructure:"jaeger"`
	ServiceName string       `mapstructure:"service_name"`
}

type JaegerConfig struct {
	Endpoint     string  `mapstructure:"endpoint"`
	SamplerType  string  `mapstructure:"sampler_type"`
	SamplerParam float64 `mapstructure:"sampler_param"`
}

type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      int           `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold float64       `mapstructure:"failure_threshold"`
}

type CORSConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
	ExposeHeaders  []string `mapstructure:"expose_headers"`
	MaxAge         int      `mapstructure:"max_age"`
	Credentials    bool     `mapstructure:"credentials"`
}

type PaymentConfig struct {
	Stripe StripeConfig `mapstructure:"stripe"`
}

type StripeConfig struct {
	SecretKey string `mapstructure:"secret_key"`
	Currency  string `mapstructure:"currency"`
}

type NotificationConfig struct {
	Email EmailConfig `mapstructure:"email"`
}

type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Provider string `mapstructure:"provider"`
	APIKey   string `mapstructure:"api_key"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
}

type CacheConfig struct {
	ProductTTL time.Duration `mapstructure:"product_ttl"`
}

type VaultConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
	Token   string `mapstructure:"token"`
}
