// Package app provides the main application flow of the interpreter.
package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrochip8/internal/terminal"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// Run loads the ROM and either prints its listing or runs it until the
// context is canceled, the user quits or the frame limit is reached.
// Text output of listing and headless mode is written to w.
func Run(ctx context.Context, logger *log.Logger, opts options.Program, w io.Writer) error {
	rom, err := loader.New(logger).Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading rom: %w", err)
	}

	if opts.List {
		if err := disasm.Listing(w, rom, chip8.ProgramStart); err != nil {
			return fmt.Errorf("writing listing: %w", err)
		}
		return nil
	}

	frontend, err := createFrontend(opts, w)
	if err != nil {
		return err
	}

	machineOptions := []chip8.Option{runner.BuzzerFor(frontend)}
	if opts.Seed != 0 {
		machineOptions = append(machineOptions, chip8.WithSeed(opts.Seed))
	}
	machine := chip8.New(machineOptions...)
	if err := machine.Load(rom); err != nil {
		_ = frontend.Close()
		return fmt.Errorf("loading rom into machine: %w", err)
	}

	logger.Info("Running CHIP-8 ROM",
		log.String("file", opts.Input),
		log.Int("size", len(rom)),
		log.Int("clock_rate", opts.ClockRate))

	r := runner.New(logger, machine, frontend, runner.Config{
		ClockRate: opts.ClockRate,
		FrameRate: options.DefaultFrameRate,
		MaxFrames: opts.Frames,
	})
	runErr := r.Run(ctx)

	// the front end is closed first so that the terminal is restored
	// before any error is printed
	if err := frontend.Close(); err != nil && runErr == nil {
		return fmt.Errorf("closing front end: %w", err)
	}
	if runErr != nil {
		return fmt.Errorf("running rom: %w", runErr)
	}

	logger.Info("Execution finished", log.Int("frames", r.Frames()))
	return nil
}

func createFrontend(opts options.Program, w io.Writer) (runner.Frontend, error) {
	if opts.Headless {
		return runner.NewHeadless(w), nil
	}

	frontend, err := terminal.New(opts.KeyHold)
	if err != nil {
		return nil, fmt.Errorf("creating terminal front end: %w", err)
	}
	return frontend, nil
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	logger.Info("retrochip8", log.String("version", buildinfo.Version(version, commit, date)))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Debug("Build", log.String("date", date))
	}
}
