package queue

import "time"

// Config holds configuration for the job queue.
type Config struct {
	// Type selects the backend: "redis" (default) or "sqs".
	Type          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// StreamName names the Redis stream pair queue:{name} and dlq:{name}.
	StreamName      string
	GroupName       string
	WorkerCount     int
	BlockTimeout    time.Duration
	ProcessTimeout  time.Duration
	ShutdownTimeout time.Duration
	MaxRetries      int

	SQSQueueURL   string
	SQSDLQueueURL string
	SQSRegion     string
	SQSEndpoint   string
	SQSWaitTime   int32 // long poll seconds
	SQSVisTimeout int32 // seconds
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Type:            "redis",
		RedisAddr:       "localhost:6379",
		StreamName:      "chirper",
		GroupName:       "chirper-workers",
		WorkerCount:     10,
		BlockTimeout:    5 * time.Second,
		ProcessTimeout:  30 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		MaxRetries:      5,
		SQSWaitTime:     20,
		SQSVisTimeout:   30,
	}
}

// withDefaults fills zero-valued fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.StreamName == "" {
		c.StreamName = d.StreamName
	}
	if c.GroupName == "" {
		c.GroupName = d.GroupName
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = d.WorkerCount
	}
	if c.BlockTimeout <= 0 {
		c.BlockTimeout = d.BlockTimeout
	}
	if c.ProcessTimeout <= 0 {
		c.ProcessTimeout = d.ProcessTimeout
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.SQSWaitTime <= 0 {
		c.SQSWaitTime = d.SQSWaitTime
	}
	if c.SQSVisTimeout <= 0 {
		c.SQSVisTimeout = d.SQSVisTimeout
	}
	return c
}
