package internal

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns the diagnostic logger for CLI runs: a console writer on
// stderr with --debug, otherwise a no-op logger so nothing leaks to the user.
func NewLogger(config *Config) zerolog.Logger {
	if !config.Debug {
		return zerolog.Nop()
	}
	return newConsoleLogger(os.Stderr, zerolog.DebugLevel)
}

func newConsoleLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	return zerolog.New(out).With().Timestamp().Logger().Level(level)
}

// NewMCPLogger returns a JSON file logger for the MCP server. stdio carries
// the protocol, so the server never logs to stdout or stderr.
func NewMCPLogger(config *Config) (zerolog.Logger, io.Closer) {
	if !config.MCPLogEnabled {
		return zerolog.Nop(), io.NopCloser(nil)
	}

	logPath := config.LogFile()
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		// If we can't create the log directory, disable logging
		return zerolog.Nop(), io.NopCloser(nil)
	}

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.Nop(), io.NopCloser(nil)
	}

	level := zerolog.InfoLevel
	if config.Debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(logFile).With().Timestamp().Str("component", "mcp").Logger().Level(level)
	return log, logFile
}
