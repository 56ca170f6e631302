package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultLogFile   = "logs/chirper.log"
	defaultMaxSizeMB = 100
	defaultMaxFiles  = 5
)

// Config is the subset of config.LoggingConfig the logger needs.
type Config struct {
	Level     string
	Output    string // stdout (default), console, file
	FilePath  string
	MaxSizeMB int
	MaxFiles  int
}

type ctxKey int

const (
	loggerKey ctxKey = iota
	correlationIDKey
)

// New returns a JSON logger on stdout at the given level. Unknown levels fall
// back to info.
func New(level string) zerolog.Logger {
	return build(os.Stdout, level)
}

// NewFromConfig builds a logger whose sink is picked by cfg.Output.
func NewFromConfig(cfg Config) zerolog.Logger {
	var w io.Writer
	switch cfg.Output {
	case "file":
		w = rotatingFile(cfg)
	case "console":
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	default:
		w = os.Stdout
	}
	return build(w, cfg.Level)
}

// rotatingFile maps the logging.file_path, logging.max_size_mb and
// logging.max_files keys onto a lumberjack writer. Rotated files are gzipped.
func rotatingFile(cfg Config) *lumberjack.Logger {
	l := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxFiles,
		Compress:   true,
	}
	if l.Filename == "" {
		l.Filename = defaultLogFile
	}
	if l.MaxSize <= 0 {
		l.MaxSize = defaultMaxSizeMB
	}
	if l.MaxBackups <= 0 {
		l.MaxBackups = defaultMaxFiles
	}
	return l
}

func build(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// WithLogger stores a logger in the context.
func WithLogger(ctx context.Context, log zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, log)
}

// WithCorrelationID stores a correlation ID in the context.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey, correlationID)
}

// CorrelationIDFromContext returns the correlation ID or "".
func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}

// FromContext returns the request logger, tagged with the correlation ID when
// one is set. Without a stored logger it falls back to an info logger.
func FromContext(ctx context.Context) zerolog.Logger {
	log, ok := ctx.Value(loggerKey).(zerolog.Logger)
	if !ok {
		log = New("info")
	}
	if id := CorrelationIDFromContext(ctx); id != "" {
		log = log.With().Str("correlation_id", id).Logger()
	}
	return log
}

// NewCorrelationID generates a new UUID-based correlation ID.
func NewCorrelationID() string {
	return uuid.NewString()
}
