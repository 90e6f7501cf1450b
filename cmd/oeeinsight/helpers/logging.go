package helpers

import (
	"os"

	"go.elastic.co/ecszap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogging sets up the global zap logger with ECS encoding. LOGGING_LEVEL
// DEVELOPMENT enables debug output.
func InitLogging(logLevel string) {
	encoderConfig := ecszap.NewDefaultEncoderConfig()
	var core zapcore.Core
	switch logLevel {
	case "DEVELOPMENT":
		core = ecszap.NewCore(encoderConfig, os.Stdout, zap.DebugLevel)
	default:
		core = ecszap.NewCore(encoderConfig, os.Stdout, zap.InfoLevel)
	}
	logger := zap.New(core, zap.AddCaller())
	zap.ReplaceGlobals(logger)
}

// InitTestLogging is used by tests that want log output without ECS noise.
func InitTestLogging() {
	logger, _ := zap.NewDevelopment()
	zap.ReplaceGlobals(logger)
}
