package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewDiagnostic builds the process logger. Output goes to stderr only: the
// hook's stdout belongs to the host and its stderr lines are shown to the
// agent, so the default level keeps routine events quiet.
func NewDiagnostic(level zapcore.Level) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	cfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       false,
		DisableStacktrace: true,
		Encoding:          "console",
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger.Named("hookguard")
}
