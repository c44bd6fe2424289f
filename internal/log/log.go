// Package log provides the process-wide zap logger used by the motionsync tools.
package log

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.SugaredLogger
var baseLogger *zap.Logger

// Init initializes the package-level logger. Debug mode switches to zap's
// development encoder so shell sessions get readable console output.
func Init(debug bool) error {
	zapLogger, err := build(debug)
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %v", err)
	}

	baseLogger = zapLogger
	log = zapLogger.Sugar()
	return nil
}

func build(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment(zap.AddCallerSkip(1))
	}
	cfg := zap.NewProductionConfig()
	// The shell owns stdout; keep structured logs on stderr.
	cfg.OutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build(zap.AddCallerSkip(1))
}

func ensure() {
	if log == nil {
		// Fallback logger if not initialized
		baseLogger, _ = zap.NewProduction(zap.AddCallerSkip(1))
		log = baseLogger.Sugar()
	}
}

// GetSugaredLogger returns the sugared logger instance handed to components.
// The package-level caller skip is undone so component log lines point at
// the component, not at this package.
func GetSugaredLogger() *zap.SugaredLogger {
	ensure()
	return log.WithOptions(zap.AddCallerSkip(-1))
}

// Sync flushes any buffered log entries
func Sync() {
	if log != nil {
		log.Sync()
	}
}

func Infof(template string, args ...interface{}) {
	ensure()
	log.Infof(template, args...)
}

func Errorf(template string, args ...interface{}) {
	ensure()
	log.Errorf(template, args...)
}

func Fatalf(template string, args ...interface{}) {
	ensure()
	log.Fatalf(template, args...)
	os.Exit(1)
}
