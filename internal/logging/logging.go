// Package logging configures the structured logger of the service.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

const modulePath = "github.com/zephyrtronium/mathexpr"

// Config configures logging.
type Config struct {
	LogToFile       bool   `json:"log_to_file" yaml:"log_to_file"`
	Filename        string `json:"filename" yaml:"filename"`
	MaxSize         int    `json:"max_size" yaml:"max_size"`       // megabytes
	MaxAge          int    `json:"max_age" yaml:"max_age"`         // days
	MaxBackups      int    `json:"max_backups" yaml:"max_backups"` // files
	LogLevel        string `json:"log_level" yaml:"log_level"`
	IncludeSrc      bool   `json:"include_src" yaml:"include_src"`
	CompressOldLogs bool   `json:"compress_old_logs" yaml:"compress_old_logs"`
}

// InitLogger creates a logger writing JSON to stdout, and to a rotating file
// if the config asks for one, and makes it the default logger.
func InitLogger(conf Config) *slog.Logger {
	logger := New(os.Stdout, conf)
	slog.SetDefault(logger)
	return logger
}

// New creates a logger writing JSON to w, and to a rotating file if the
// config asks for one.
func New(w io.Writer, conf Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     LevelFromString(conf.LogLevel),
		AddSource: conf.IncludeSrc,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.SourceKey {
				source, _ := a.Value.Any().(*slog.Source)
				if source != nil {
					source.File = filepath.Base(source.File)
					source.Function = strings.TrimPrefix(source.Function, modulePath)
				}
			}
			return a
		},
	}
	if conf.LogToFile && conf.Filename != "" {
		target := &lumberjack.Logger{
			Filename:   conf.Filename,
			MaxSize:    conf.MaxSize,
			MaxAge:     conf.MaxAge,
			MaxBackups: conf.MaxBackups,
			Compress:   conf.CompressOldLogs,
		}
		w = io.MultiWriter(w, target)
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// LevelFromString converts a level name to a level. Unknown names are info.
func LevelFromString(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
