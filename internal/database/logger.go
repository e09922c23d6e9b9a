package database

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm/logger"
)

// slogWriter sends gorm's log lines to the process slog logger.
type slogWriter struct{}

func (slogWriter) Printf(format string, args ...interface{}) {
	slog.Default().Warn(fmt.Sprintf(format, args...), "component", "gorm")
}

// newGormLogger reports slow queries and errors only. Not-found lookups are expected and stay silent.
func newGormLogger() logger.Interface {
	return logger.New(slogWriter{}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
