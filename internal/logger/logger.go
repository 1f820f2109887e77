package logger

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/zlog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/fedotovm/imagestore/internal/config"
)

// Setup routes the process logger to both the console and a rolling JSON log
// file. The file is what the /logs endpoint tails, so it must exist for the
// lifetime of the process.
func Setup(cfg *config.Log) error {
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	fileWriter := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    100, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr}
	zlog.Logger = zlog.Logger.Output(zerolog.MultiLevelWriter(console, fileWriter))

	return nil
}
