// Package logging builds the zap logger used by bcv.
//
// The TUI owns the terminal, so log output goes to a size-rotated file
// instead of stdout or stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/daviddao/bikecard_viewer/internal/config"
)

// New returns a logger writing JSON lines to cfg.File. An empty File yields
// a no-op logger. When stderr is non-nil log lines are also copied there.
// The returned close function flushes and closes the file.
func New(cfg config.LogConfig, stderr io.Writer) (*zap.Logger, func() error, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var cores []zapcore.Core
	var rotator *lumberjack.Logger

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		rotator = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(rotator), level))
	}
	if stderr != nil {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(stderr), level))
	}

	if len(cores) == 0 {
		return zap.NewNop(), func() error { return nil }, nil
	}

	logger := zap.New(zapcore.NewTee(cores...))
	closeFn := func() error {
		_ = logger.Sync()
		if rotator != nil {
			return rotator.Close()
		}
		return nil
	}
	return logger, closeFn, nil
}
