package logger

import (
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
)

const (
	outputStdout = "stdout"
	outputStderr = "stderr"
)

// LoggerConfig is the process logging setup read from the environment.
type LoggerConfig struct {
	Level      zapcore.Level
	Format     string
	OutputFile string
}

// DefaultConfig reads LOG_LEVEL, LOG_FORMAT and LOG_OUTPUT_FILE.
// An unknown level logs at info.
func DefaultConfig() *LoggerConfig {
	level, err := zapcore.ParseLevel(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if err != nil {
		level = zapcore.InfoLevel
	}
	cfg := &LoggerConfig{
		Level:      level,
		Format:     strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT"))),
		OutputFile: strings.TrimSpace(os.Getenv("LOG_OUTPUT_FILE")),
	}
	if cfg.Format == "" {
		cfg.Format = "json"
	}
	if cfg.OutputFile == "" {
		cfg.OutputFile = outputStdout
	}
	return cfg
}

func (c *LoggerConfig) isConsole() bool {
	return c.Format == "console" || c.Format == "text"
}

func (c *LoggerConfig) writesToFile() bool {
	return c.OutputFile != outputStdout && c.OutputFile != outputStderr
}
