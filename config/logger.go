package config

import (
	"fmt"
	"os"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the zap logger described by the config. Console output always
// goes to stderr so stdout stays clean for rendered results; when LogFile is set a
// rotated copy is written there too.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", c.LogLevel, err)
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(os.Stderr), level),
	}

	if c.LogFile != "" {
		logFile := &lumberjack.Logger{
			Filename:   c.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 7,
			MaxAge:     28, // days
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(logFile),
			level,
		))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}
