package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap logger with detector-specific helpers
type Logger struct {
	*zap.Logger
}

// NewLogger creates a new production logger at the given level
func NewLogger(level string) (*Logger, error) {
	config := zap.NewProductionConfig()

	// Unknown levels fall back to info
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{Logger: logger}, nil
}

// NewNopLogger creates a logger that discards everything, for tests
func NewNopLogger() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// WithComponent adds a component field to the logger
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.Logger.With(zap.String("component", component))}
}

// WithTransaction scopes the logger to a single analyzed transaction
func (l *Logger) WithTransaction(chainID uint64, txHash string) *Logger {
	return &Logger{Logger: l.Logger.With(
		zap.Uint64("chain_id", chainID),
		zap.String("tx_hash", txHash),
	)}
}
