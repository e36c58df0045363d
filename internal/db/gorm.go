package db

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// gormLogger bridges gorm's logger.Interface onto zap.
type gormLogger struct {
	logs     *zap.SugaredLogger
	logLevel logger.LogLevel
}

func newGormLogger(logs *zap.SugaredLogger) logger.Interface {
	return &gormLogger{
		logs:     logs,
		logLevel: logger.Warn,
	}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newLogger := *l
	newLogger.logLevel = level
	return &newLogger
}

func (l *gormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Info {
		l.logs.Infof(msg, data...)
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Warn {
		l.logs.Warnf(msg, data...)
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Error {
		l.logs.Errorf(msg, data...)
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.logLevel <= logger.Silent {
		return
	}
	sql, rows := fc()
	elapsed := time.Since(begin)
	if err != nil {
		l.logs.Errorw("query failed", "error", err, "sql", sql, "rows", rows, "elapsed", elapsed)
		return
	}
	if elapsed > 200*time.Millisecond {
		l.logs.Warnw("slow query", "sql", sql, "rows", rows, "elapsed", elapsed)
	}
}
