package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func NewLogger() *zap.Logger {
	return NewLoggerAt("")
}

// NewLoggerAt builds the development logger at the given level. An empty or unknown level
// keeps the development default of debug.
func NewLoggerAt(level string) *zap.Logger {
	loggerConfig := zap.NewDevelopmentConfig()
	loggerConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if lvl, err := zapcore.ParseLevel(level); level != "" && err == nil {
		loggerConfig.Level = zap.NewAtomicLevelAt(lvl)
	}

	logger, err := loggerConfig.Build()
	if nil != err {
		panic(err)
	}

	return logger
}
