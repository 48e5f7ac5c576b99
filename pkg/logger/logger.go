package logger

import (
	"os"

	"go.uber.org/zap"
)

type CanonicalLogger struct {
	l *zap.Logger
}

// NewLoggerFromEnv creates a new logger based on the LOG_FORMAT environment variable.
// Supported LOG_FORMAT values:
//   - "console" or "development": Human-readable console output with colored levels, ISO8601 timestamps
//   - "json" or "production" (default): Structured JSON output for production environments
//
// The logger skips one caller frame so the caller field points at the calling code
// rather than this wrapper.
func NewLoggerFromEnv(component string) (*CanonicalLogger, error) {
	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "production"
	}

	var cfg zap.Config
	if logFormat == "console" || logFormat == "development" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	zapLogger, err := cfg.Build(
		zap.AddCallerSkip(1),
		zap.Fields(zap.String("component", component)),
	)
	if err != nil {
		return nil, err
	}

	return &CanonicalLogger{
		l: zapLogger,
	}, nil
}

// NewNop returns a logger that discards everything. Used by tests and as the
// default when a component is built without a logger.
func NewNop() *CanonicalLogger {
	return &CanonicalLogger{l: zap.NewNop()}
}

// New wraps an existing zap logger.
func New(l *zap.Logger) *CanonicalLogger {
	return &CanonicalLogger{l: l}
}

func (c *CanonicalLogger) Sync() {
	_ = c.l.Sync()
}

func (c *CanonicalLogger) Info(msg string, fields ...zap.Field) {
	c.l.Info(msg, fields...)
}

func (c *CanonicalLogger) Debug(msg string, fields ...zap.Field) {
	c.l.Debug(msg, fields...)
}

func (c *CanonicalLogger) Warn(msg string, fields ...zap.Field) {
	c.l.Warn(msg, fields...)
}

func (c *CanonicalLogger) Error(msg string, fields ...zap.Field) {
	c.l.Error(msg, fields...)
}

func (c *CanonicalLogger) Fatal(msg string, fields ...zap.Field) {
	c.l.Fatal(msg, fields...)
}

func (c *CanonicalLogger) WithError(err error) *CanonicalLogger {
	return &CanonicalLogger{l: c.l.With(zap.Error(err))}
}

func (c *CanonicalLogger) WithPollID(id string) *CanonicalLogger {
	return &CanonicalLogger{l: c.l.With(zap.String(FieldPollID, id))}
}

func (c *CanonicalLogger) WithPath(path string) *CanonicalLogger {
	return &CanonicalLogger{l: c.l.With(zap.String(FieldDocumentPath, path))}
}

// Component names a sub-logger; the process-wide "component" field set by
// NewLoggerFromEnv is kept.
func (c *CanonicalLogger) Component(name string) *CanonicalLogger {
	return &CanonicalLogger{l: c.l.Named(name)}
}

func (c *CanonicalLogger) HTTPError(method, path string, status int, err error) {
	c.l.Error("http_error", zap.String("method", method), zap.String("path", path), zap.Int("status", status), zap.Error(err))
}
