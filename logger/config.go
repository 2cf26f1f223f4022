package logger

import (
	"fmt"
	"path/filepath"
	"slices"

	"go.uber.org/zap/zapcore"
)

// ManagerConfig is shared by every module logger of one Manager
type ManagerConfig struct {
	Level      string `mapstructure:"level"`
	AppName    string `mapstructure:"app_name"` // injected into every entry, even when empty
	Encoding   string `mapstructure:"encoding"` // json or console
	LoggerName string `mapstructure:"logger_name"`

	EnableConsole bool `mapstructure:"enable_console"`

	// File output: <base_log_dir>/<module>/<module>-info.log and -error.log
	EnableFile bool   `mapstructure:"enable_file"`
	BaseLogDir string `mapstructure:"base_log_dir"`
	MaxSize    int    `mapstructure:"max_size"`    // MB
	MaxBackups int    `mapstructure:"max_backups"` // rotated files kept
	MaxAge     int    `mapstructure:"max_age"`     // days
	Compress   bool   `mapstructure:"compress"`

	EnableCaller     bool   `mapstructure:"enable_caller"`
	EnableStacktrace bool   `mapstructure:"enable_stacktrace"`
	StacktraceLevel  string `mapstructure:"stacktrace_level"`
	StacktraceDepth  int    `mapstructure:"stacktrace_depth"` // 0 = default depth

	EnableTraceID    bool   `mapstructure:"enable_trace_id"`
	TraceIDKey       string `mapstructure:"trace_id_key"`        // context key
	TraceIDFieldName string `mapstructure:"trace_id_field_name"` // log field
}

var (
	validLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validEncodings = []string{"json", "console"}
)

// DefaultManagerConfig console-only json logging at info level
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		Level:            "info",
		Encoding:         "json",
		LoggerName:       "logger",
		EnableConsole:    true,
		BaseLogDir:       "logs",
		MaxSize:          100,
		MaxBackups:       3,
		MaxAge:           28,
		Compress:         true,
		EnableCaller:     true,
		EnableStacktrace: true,
		StacktraceLevel:  "error",
		StacktraceDepth:  5,
		EnableTraceID:    true,
		TraceIDKey:       "trace_id",
		TraceIDFieldName: "trace_id",
	}
}

// ApplyDefaults fills zero-valued fields in place. Booleans are left alone
// because a false cannot be told apart from "not configured".
func (c *ManagerConfig) ApplyDefaults() {
	d := DefaultManagerConfig()

	if c.Level == "" {
		c.Level = d.Level
	}
	if c.Encoding == "" {
		c.Encoding = d.Encoding
	}
	if c.LoggerName == "" {
		c.LoggerName = d.LoggerName
	}
	if c.BaseLogDir == "" {
		c.BaseLogDir = d.BaseLogDir
	}
	if c.MaxSize == 0 {
		c.MaxSize = d.MaxSize
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = d.MaxBackups
	}
	if c.MaxAge == 0 {
		c.MaxAge = d.MaxAge
	}
	if c.StacktraceLevel == "" {
		c.StacktraceLevel = d.StacktraceLevel
	}
	if c.TraceIDKey == "" {
		c.TraceIDKey = d.TraceIDKey
	}
	if c.TraceIDFieldName == "" {
		c.TraceIDFieldName = d.TraceIDFieldName
	}
}

// Validate implements config.Validator
func (c ManagerConfig) Validate() error {
	if !slices.Contains(validLevels, c.Level) {
		return fmt.Errorf("invalid log level: %s (valid values: %v)", c.Level, validLevels)
	}
	if !slices.Contains(validEncodings, c.Encoding) {
		return fmt.Errorf("invalid log encoding: %s (valid values: %v)", c.Encoding, validEncodings)
	}
	if !slices.Contains(validLevels, c.StacktraceLevel) {
		return fmt.Errorf("invalid stacktrace level: %s (valid values: %v)", c.StacktraceLevel, validLevels)
	}
	if c.EnableFile {
		if c.MaxSize < 1 || c.MaxSize > 10000 {
			return fmt.Errorf("max_size must be between 1-10000 MB, current: %d", c.MaxSize)
		}
		if c.MaxBackups < 0 || c.MaxBackups > 1000 {
			return fmt.Errorf("max_backups must be between 0-1000, current: %d", c.MaxBackups)
		}
		if c.MaxAge < 0 || c.MaxAge > 3650 {
			return fmt.Errorf("max_age must be between 0-3650 days, current: %d", c.MaxAge)
		}
	}
	return nil
}

// ParseLevel maps a level name to zapcore; unknown names mean info
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// filePath builds logs/<module>/<module>-<level>.log
func (c ManagerConfig) filePath(module, level string) string {
	return filepath.Join(c.BaseLogDir, module, module+"-"+level+".log")
}
