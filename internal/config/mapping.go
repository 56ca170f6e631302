package config

import (
	"github.com/sungwon/chirper/internal/auth"
	"github.com/sungwon/chirper/internal/logger"
	"github.com/sungwon/chirper/internal/msgstore"
	"github.com/sungwon/chirper/internal/provider"
	"github.com/sungwon/chirper/internal/queue"
)

// LoggerConfig maps the logging section onto logger.Config.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:     c.Logging.Level,
		Output:    c.Logging.Output,
		FilePath:  c.Logging.FilePath,
		MaxSizeMB: c.Logging.MaxSizeMB,
		MaxFiles:  c.Logging.MaxFiles,
	}
}

// QueueConfig maps the queue section onto queue.Config.
func (c *Config) QueueConfig() queue.Config {
	q := c.Queue
	return queue.Config{
		Type:            q.Type,
		RedisAddr:       q.RedisAddr,
		RedisPassword:   q.RedisPassword,
		RedisDB:         q.RedisDB,
		StreamName:      q.StreamName,
		GroupName:       q.GroupName,
		WorkerCount:     q.Workers,
		BlockTimeout:    q.BlockTimeout,
		ProcessTimeout:  q.ProcessTimeout,
		ShutdownTimeout: q.ShutdownTimeout,
		MaxRetries:      q.MaxRetries,
		SQSQueueURL:     q.SQSQueueURL,
		SQSDLQueueURL:   q.SQSDLQueueURL,
		SQSRegion:       q.SQSRegion,
		SQSEndpoint:     q.SQSEndpoint,
		SQSWaitTime:     q.SQSWaitTime,
		SQSVisTimeout:   q.SQSVisTimeout,
	}
}

// ProviderConfig maps the mail section onto provider.ProviderConfig.
func (c *Config) ProviderConfig() provider.ProviderConfig {
	m := c.Mail
	return provider.ProviderConfig{
		Type:         m.Provider,
		APIKey:       m.APIKey,
		Endpoint:     m.Endpoint,
		Timeout:      m.Timeout,
		Domain:       m.Domain,
		SMTPHost:     m.SMTPHost,
		SMTPPort:     m.SMTPPort,
		SMTPUsername: m.SMTPUsername,
		SMTPPassword: m.SMTPPassword,
		SMTPStartTLS: m.SMTPStartTLS,
	}
}

// ArchiveConfig maps the archive section onto msgstore.Config.
func (c *Config) ArchiveConfig() msgstore.Config {
	a := c.Archive
	return msgstore.Config{
		Type:       a.Type,
		Path:       a.Path,
		S3Bucket:   a.S3Bucket,
		S3Prefix:   a.S3Prefix,
		S3Endpoint: a.S3Endpoint,
		S3Region:   a.S3Region,
	}
}

// JWTConfig maps the auth section onto auth.JWTConfig.
func (c *Config) JWTConfig() auth.JWTConfig {
	return auth.JWTConfig{
		SigningKey:        c.Auth.SigningKey,
		AccessTokenExpiry: c.Auth.AccessTokenExpiry,
		Issuer:            c.Auth.Issuer,
		Audience:          c.Auth.Audience,
	}
}

// LoginLimiterConfig maps the auth lockout settings onto auth.LoginLimiterConfig.
func (c *Config) LoginLimiterConfig() auth.LoginLimiterConfig {
	return auth.LoginLimiterConfig{
		MaxAttempts:     c.Auth.LoginAttemptsLimit,
		LockoutDuration: c.Auth.LoginLockoutDuration,
	}
}
