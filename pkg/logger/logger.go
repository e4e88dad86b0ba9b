package logger

import (
	"fmt"

	"github.com/Leopold1975/recipebox/internal/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Debug(args ...interface{})
	Debugf(template string, args ...interface{})
	Info(args ...interface{})
	Infof(template string, args ...interface{})
	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
	Error(args ...interface{})
	Errorf(template string, args ...interface{})
}

func New(cfg config.Logger) (Logger, error) {
	lvl, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse level error: %w", err)
	}

	output := cfg.Output
	if len(output) == 0 {
		output = []string{"stdout"}
	}

	errOutput := cfg.ErrOutput
	if len(errOutput) == 0 {
		errOutput = []string{"stderr"}
	}

	zapCfg := zap.Config{ //nolint:exhaustruct
		Level:            zap.NewAtomicLevelAt(lvl),
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      output,
		ErrorOutputPaths: errOutput,
	}

	lg, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger error: %w", err)
	}

	return lg.Sugar(), nil
}
