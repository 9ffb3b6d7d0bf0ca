// Package config handles application configuration and setup
package config

import (
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// CreateProgramLogger creates the logger for a run of the interpreter.
// The terminal front end owns the screen while it runs, so only errors are
// logged unless debugging is requested.
func CreateProgramLogger(opts options.Program) *log.Logger {
	interactive := !opts.Headless && !opts.List
	return CreateLogger(opts.Debug, opts.Quiet || interactive)
}
