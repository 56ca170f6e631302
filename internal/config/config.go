package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	API          APIConfig          `mapstructure:"api"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Queue        QueueConfig        `mapstructure:"queue"`
	Mail         MailConfig         `mapstructure:"mail"`
	Notification NotificationConfig `mapstructure:"notification"`
	Archive      ArchiveConfig      `mapstructure:"archive"`
	Seed         SeedConfig         `mapstructure:"seed"`
}

// AppConfig holds application identity settings used in outgoing mail.
type AppConfig struct {
	Name string `mapstructure:"name"`
	// URL is the public base URL of the web application, without trailing slash.
	URL string `mapstructure:"url"`
}

// APIConfig holds REST API server configuration.
type APIConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	PoolMin        int32         `mapstructure:"pool_min"`
	PoolMax        int32         `mapstructure:"pool_max"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level     string `mapstructure:"level"`
	Output    string `mapstructure:"output"`
	FilePath  string `mapstructure:"file_path"`
	MaxSizeMB int    `mapstructure:"max_size_mb"`
	MaxFiles  int    `mapstructure:"max_files"`
}

// AuthConfig holds JWT signing configuration.
type AuthConfig struct {
	SigningKey        string        `mapstructure:"signing_key"`
	AccessTokenExpiry time.Duration `mapstructure:"access_token_expiry"`
	Issuer            string        `mapstructure:"issuer"`
	Audience          string        `mapstructure:"audience"`
	// Failed logins per email before lockout; needs the redis queue backend.
	LoginAttemptsLimit   int           `mapstructure:"login_attempts_limit"`
	LoginLockoutDuration time.Duration `mapstructure:"login_lockout_duration"`
	// Users allowed to call the operator endpoints (dead-letter reprocess).
	AdminEmails []string `mapstructure:"admin_emails"`
}

// QueueConfig holds work queue configuration shared by producers and workers.
type QueueConfig struct {
	Type            string        `mapstructure:"type"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	StreamName      string        `mapstructure:"stream_name"`
	GroupName       string        `mapstructure:"group_name"`
	Workers         int           `mapstructure:"workers"`
	BlockTimeout    time.Duration `mapstructure:"block_timeout"`
	ProcessTimeout  time.Duration `mapstructure:"process_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	SQSQueueURL     string        `mapstructure:"sqs_queue_url"`
	SQSDLQueueURL   string        `mapstructure:"sqs_dlq_url"`
	SQSRegion       string        `mapstructure:"sqs_region"`
	SQSEndpoint     string        `mapstructure:"sqs_endpoint"`
	SQSWaitTime     int32         `mapstructure:"sqs_wait_time"`
	SQSVisTimeout   int32         `mapstructure:"sqs_visibility_timeout"`
	// MetricsAddr is where the worker serves /metrics and /readyz.
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// MailConfig selects and configures the outbound email provider.
type MailConfig struct {
	Provider     string        `mapstructure:"provider"`
	FromAddress  string        `mapstructure:"from_address"`
	FromName     string        `mapstructure:"from_name"`
	APIKey       string        `mapstructure:"api_key"`
	Endpoint     string        `mapstructure:"endpoint"`
	Domain       string        `mapstructure:"domain"`
	Timeout      time.Duration `mapstructure:"timeout"`
	SMTPHost     string        `mapstructure:"smtp_host"`
	SMTPPort     int           `mapstructure:"smtp_port"`
	SMTPUsername string        `mapstructure:"smtp_username"`
	SMTPPassword string        `mapstructure:"smtp_password"`
	SMTPStartTLS bool          `mapstructure:"smtp_starttls"`
}

// NotificationConfig tunes the fan-out pipeline.
type NotificationConfig struct {
	// PageSize bounds how many recipients are held in memory at once.
	PageSize int32 `mapstructure:"page_size"`
}

// ArchiveConfig configures where rendered notification emails are kept.
type ArchiveConfig struct {
	Type       string `mapstructure:"type"` // none, local, s3
	Path       string `mapstructure:"path"`
	S3Bucket   string `mapstructure:"s3_bucket"`
	S3Prefix   string `mapstructure:"s3_prefix"`
	S3Endpoint string `mapstructure:"s3_endpoint"`
	S3Region   string `mapstructure:"s3_region"`
}

// SeedConfig lists users created at API server startup in development.
type SeedConfig struct {
	Enabled bool       `mapstructure:"enabled"`
	Users   []SeedUser `mapstructure:"users"`
}

// SeedUser is a single seeded account.
type SeedUser struct {
	Name     string `mapstructure:"name"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

// ChirpsURL returns the fixed chirps listing URL used as the call to action
// in notification emails.
func (c AppConfig) ChirpsURL() string {
	return strings.TrimRight(c.URL, "/") + "/chirps"
}

// Load reads configuration from the given config directory path.
// It looks for a file named "config.yaml" in that directory.
// Environment variables with prefix CHIRPER_ override file values.
// For example, CHIRPER_DATABASE_URL overrides database.url.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)

	v.SetEnvPrefix("CHIRPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Chirper")
	v.SetDefault("app.url", "http://localhost:8080")
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.read_timeout", 10*time.Second)
	v.SetDefault("api.write_timeout", 10*time.Second)
	v.SetDefault("database.pool_min", 2)
	v.SetDefault("database.pool_max", 10)
	v.SetDefault("database.connect_timeout", 5*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("auth.access_token_expiry", 24*time.Hour)
	v.SetDefault("auth.issuer", "chirper")
	v.SetDefault("auth.audience", "chirper-api")
	v.SetDefault("auth.login_attempts_limit", 5)
	v.SetDefault("auth.login_lockout_duration", 15*time.Minute)
	v.SetDefault("auth.admin_emails", []string{})
	v.SetDefault("queue.type", "redis")
	v.SetDefault("queue.redis_addr", "localhost:6379")
	v.SetDefault("queue.stream_name", "chirper")
	v.SetDefault("queue.group_name", "chirper-workers")
	v.SetDefault("queue.workers", 10)
	v.SetDefault("queue.block_timeout", 5*time.Second)
	v.SetDefault("queue.process_timeout", 30*time.Second)
	v.SetDefault("queue.shutdown_timeout", 30*time.Second)
	v.SetDefault("queue.max_retries", 5)
	v.SetDefault("queue.sqs_wait_time", 20)
	v.SetDefault("queue.sqs_visibility_timeout", 30)
	v.SetDefault("queue.metrics_addr", ":9090")
	v.SetDefault("mail.from_address", "no-reply@chirper.local")
	v.SetDefault("mail.from_name", "Chirper")
	v.SetDefault("mail.provider", "stdout")
	v.SetDefault("mail.timeout", 30*time.Second)
	v.SetDefault("mail.smtp_port", 587)
	v.SetDefault("notification.page_size", 100)
	v.SetDefault("archive.type", "none")
}
