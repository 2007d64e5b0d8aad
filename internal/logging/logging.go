package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls logger construction.
type Config struct {
	// Debug forces the debug level and a human-readable console encoder.
	Debug bool

	// Level is ignored when Debug is set.
	Level Level

	// File, when non-empty, adds a size-rotated log file next to the console
	// output. Rotation knobs are fixed; the file is the only thing operators
	// tend to change.
	File string

	// Console receives log lines. Defaults to stderr.
	Console io.Writer
}

const (
	fileMaxSizeMB  = 100
	fileMaxBackups = 5
	fileMaxAgeDays = 14
)

// NewLogger builds a zap logger from config.
func NewLogger(config Config) (*zap.Logger, error) {
	level, err := config.Level.toZapCoreLevel()
	if err != nil {
		return nil, fmt.Errorf("invalid logging config: %w", err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	var encoder zapcore.Encoder
	if config.Debug {
		level = zapcore.DebugLevel
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	console := config.Console
	if console == nil {
		console = os.Stderr
	}
	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(console)), level),
	}

	if config.File != "" {
		sink := zapcore.AddSync(&lumberjack.Logger{
			Filename:   config.File,
			MaxSize:    fileMaxSizeMB,
			MaxBackups: fileMaxBackups,
			MaxAge:     fileMaxAgeDays,
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(encoder, sink, level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// New is NewLogger wrapped in Interface.
func New(config Config) (Interface, error) {
	logger, err := NewLogger(config)
	if err != nil {
		return nil, err
	}
	return ForZap(logger), nil
}
