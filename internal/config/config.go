// Package config handles application configuration and setup
package config

import (
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings. While the
// terminal frontend owns the screen only errors are logged, unless debug
// output was requested.
func CreateLogger(opts options.Program) *log.Logger {
	cfg := log.DefaultConfig()
	switch {
	case opts.Debug:
		cfg.Level = log.DebugLevel
	case opts.Quiet, Interactive(opts):
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// Interactive returns whether the options run a program in the terminal frontend.
func Interactive(opts options.Program) bool {
	return opts.Input != "" && !opts.Headless && !opts.List
}
