package config

import (
	"fmt"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server       ServerConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	MinIO        MinIOConfig
	RabbitMQ     RabbitMQConfig
	JWT          JWTConfig
	Session      SessionConfig
	RateLimit    RateLimitConfig
	Worker       WorkerConfig
	Log          LogConfig
	Sentry       SentryConfig
	Mail         MailConfig
	Payment      PaymentConfig
	Schedule     ScheduleConfig
	Registration RegistrationConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Env         string `mapstructure:"env"`
	Version     string `mapstructure:"version"`
	CORSOrigins string `mapstructure:"cors_origins"`
	// PublicURL is used to build links in outgoing emails.
	PublicURL string `mapstructure:"public_url"`
}

// PostgresConfig holds PostgreSQL configuration
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
	// Debug logs every query through the reporting connection.
	Debug bool `mapstructure:"debug"`
}

// DSN returns the PostgreSQL connection string
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MinIOConfig holds MinIO configuration
type MinIOConfig struct {
	Endpoint   string        `mapstructure:"endpoint"`
	AccessKey  string        `mapstructure:"access_key"`
	SecretKey  string        `mapstructure:"secret_key"`
	UseSSL     bool          `mapstructure:"use_ssl"`
	Bucket     string        `mapstructure:"bucket"`
	PresignTTL time.Duration `mapstructure:"presign_ttl"`
}

// RabbitMQConfig holds the broker used for delayed registration expiry
type RabbitMQConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
	Queue    string `mapstructure:"queue"`
	// MaxRetries bounds redeliveries of a failed message before it is dead-lettered.
	MaxRetries int           `mapstructure:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string        `mapstructure:"secret"`
	ExpiryHours       int           `mapstructure:"expiry_hours"`
	RefreshExpiryDays int           `mapstructure:"refresh_expiry_days"`
	Expiry            time.Duration `mapstructure:"-"`
	RefreshExpiry     time.Duration `mapstructure:"-"`
	Issuer            string        `mapstructure:"issuer"`
}

// SessionConfig holds the session cookie settings
type SessionConfig struct {
	CookieName string `mapstructure:"cookie_name"`
	Secure     bool   `mapstructure:"secure"`
	Domain     string `mapstructure:"domain"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"`
}

// WorkerConfig holds background worker configuration
type WorkerConfig struct {
	Concurrency   int    `mapstructure:"concurrency"`
	QueueCritical string `mapstructure:"queue_critical"`
	QueueDefault  string `mapstructure:"queue_default"`
	QueueLow      string `mapstructure:"queue_low"`
	// ExpiryBroker selects how payment-window expiry is scheduled: "asynq" or "rabbitmq".
	ExpiryBroker string `mapstructure:"expiry_broker"`
	// AuditRetention is how long audit logs are kept by the daily cleanup.
	AuditRetention time.Duration `mapstructure:"audit_retention"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SentryConfig holds error reporting configuration
type SentryConfig struct {
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// MailConfig holds SMTP configuration
type MailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// PaymentConfig holds payment provider configuration
type PaymentConfig struct {
	Provider      string `mapstructure:"provider"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	CheckoutURL   string `mapstructure:"checkout_url"`
}

// ScheduleConfig holds schedule grid defaults
type ScheduleConfig struct {
	GridStartHour int           `mapstructure:"grid_start_hour"`
	GridEndHour   int           `mapstructure:"grid_end_hour"`
	HourHeightPx  int           `mapstructure:"hour_height_px"`
	MinHeightPx   int           `mapstructure:"min_height_px"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
}

// RegistrationConfig holds registration defaults
type RegistrationConfig struct {
	DefaultPaymentWindow time.Duration `mapstructure:"default_payment_window"`
	InvitationTTL        time.Duration `mapstructure:"invitation_ttl"`
}

// IsDevelopment returns true if running in development mode
func (c Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c Config) IsProduction() bool {
	return c.Server.Env == "production"
}
