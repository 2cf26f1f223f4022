package testutil

import (
	"github.com/KOMKZ/go-yogan-event/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// ObservedLogger returns a module logger whose entries at or above level are kept in memory
func ObservedLogger(module string, level zapcore.Level) (*logger.CtxZapLogger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return logger.FromZap(zap.New(core), module), logs
}
