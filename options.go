package s3p

import (
	"io"
	"log/slog"
)

// defaultWriteConcurrency is the payload write parallelism used when no
// ExtractWithConcurrency option is set.
const defaultWriteConcurrency = 4

// extractConfig holds configuration for extraction.
type extractConfig struct {
	logger      *slog.Logger
	concurrency int
}

// ExtractOption configures extraction.
type ExtractOption func(*extractConfig)

// ExtractWithLogger sets the logger used during extraction. By default
// nothing is logged.
func ExtractWithLogger(l *slog.Logger) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.logger = l
	}
}

// ExtractWithConcurrency sets how many payload files are written in
// parallel (default: 4). Values < 1 are treated as 1.
func ExtractWithConcurrency(n int) ExtractOption {
	return func(cfg *extractConfig) {
		if n < 1 {
			n = 1
		}
		cfg.concurrency = n
	}
}

func (cfg *extractConfig) log() *slog.Logger {
	if cfg.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return cfg.logger
}

// packConfig holds configuration for packing.
type packConfig struct {
	logger *slog.Logger
}

// PackOption configures packing.
type PackOption func(*packConfig)

// PackWithLogger sets the logger used during packing. By default nothing
// is logged.
func PackWithLogger(l *slog.Logger) PackOption {
	return func(cfg *packConfig) {
		cfg.logger = l
	}
}

func (cfg *packConfig) log() *slog.Logger {
	if cfg.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return cfg.logger
}
