// Package observability provides the per-run logger and formatted summary
// output for the CLI.
package observability

import (
	"go.uber.org/zap"
)

// NewLogger builds the logger for one command invocation. It is constructed
// once per run and passed explicitly into each component; there is no
// process-wide logging singleton to reconfigure.
func NewLogger(verbose bool) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if verbose {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
