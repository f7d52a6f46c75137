// Package dbg builds the process loggers. The terminal binary picks between
// the two based on the --debug flag; tests pass zap.NewNop instead.
package dbg

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns a console logger at debug level when verbose is set,
// otherwise a JSON logger at info level.
func NewLogger(verbose bool) *zap.Logger {
	if verbose {
		return NewDevLogger()
	}
	return NewProdLogger()
}

func NewDevLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableCaller = true

	return build(cfg)
}

func NewProdLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableCaller = true

	return build(cfg)
}

func build(cfg zap.Config) *zap.Logger {
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
