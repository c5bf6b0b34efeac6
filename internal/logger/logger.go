// Package logger builds the zap loggers injected into the parser components.
package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"md-article-parser/internal/config"
)

// New creates a zap logger with a console core and an optional rotated file core
func New(cfg config.LogConfig) (*zap.Logger, error) {
	globalLevel := parseLogLevel(cfg.Level)

	var cores []zapcore.Core

	if cfg.Console.Enabled {
		level := resolveLogLevel(cfg.Console.Level, globalLevel)
		cores = append(cores, zapcore.NewCore(createEncoder(cfg.Console.Format), zapcore.Lock(os.Stderr), level))
	}

	if cfg.File.Enabled {
		if cfg.File.Path == "" {
			return nil, fmt.Errorf("file.path must be specified when file logging is enabled")
		}
		level := resolveLogLevel(cfg.File.Level, globalLevel)
		cores = append(cores, zapcore.NewCore(createEncoder(cfg.File.Format), createFileWriter(cfg.File), level))
	}

	if len(cores) == 0 {
		return nil, fmt.Errorf("at least one log output (console or file) must be enabled")
	}

	if len(cores) == 1 {
		return zap.New(cores[0]), nil
	}
	return zap.New(zapcore.NewTee(cores...)), nil
}

// NewDefault returns a console logger at info level, falling back to a no-op logger
func NewDefault() *zap.Logger {
	l, err := New(config.DefaultLogConfig())
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func parseLogLevel(level string) zapcore.Level {
	switch level {
	case config.LogLevelDebug:
		return zap.DebugLevel
	case config.LogLevelInfo:
		return zap.InfoLevel
	case config.LogLevelWarn:
		return zap.WarnLevel
	case config.LogLevelError:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// resolveLogLevel prefers the output's own level over the global one
func resolveLogLevel(outputLevel string, globalLevel zapcore.Level) zapcore.Level {
	if outputLevel != "" {
		return parseLogLevel(outputLevel)
	}
	return globalLevel
}

func createEncoder(format string) zapcore.Encoder {
	if format == config.LogFormatJSON {
		return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	if format == config.LogFormatText {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	return zapcore.NewConsoleEncoder(encoderConfig)
}

func createFileWriter(cfg config.FileLogConfig) zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.Rotation.MaxSize,
		MaxAge:     cfg.Rotation.MaxAge,
		MaxBackups: cfg.Rotation.MaxBackups,
		Compress:   cfg.Rotation.Compress,
	})
}
