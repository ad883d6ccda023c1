// Package observability holds the process-wide CLI logger. Commands log
// through CLILogger; library packages receive a logger explicitly.
package observability

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLILogger is the logger used by the command layer. It defaults to a no-op
// logger so packages stay usable before Init runs (and in tests).
var CLILogger = zap.NewNop()

var runID = uuid.New().String()

// RunID identifies this invocation in log output.
func RunID() string {
	return runID
}

// Init replaces CLILogger with a real logger at the given level and format
// ("console" or "json"). Every entry carries the invocation's run id.
func Init(level, format string) error {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	switch strings.ToLower(format) {
	case "console":
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	case "json":
		cfg.Encoding = "json"
	default:
		return fmt.Errorf("unsupported log format %q", format)
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	CLILogger = logger.With(zap.String("run_id", runID))
	return nil
}
