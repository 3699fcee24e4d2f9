package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger. It is a no-op until Init runs so packages
// and tests can log without setup.
var Log = zap.NewNop()

// Init builds a production logger at the given level (info on parse failure).
func Init(logLevel string) error {
	cfg := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	cfg.Level.SetLevel(level)
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = l
	return nil
}

// Sync flushes buffered entries.
func Sync() {
	_ = Log.Sync()
}
