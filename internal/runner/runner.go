// Package runner drives a CHIP-8 machine at a fixed clock and frame rate
// and connects it to a front end.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrogolib/log"
)

// ErrQuit is returned by RunFrame when the front end requested to stop.
var ErrQuit = errors.New("quit requested")

// Config contains the timing settings of a runner.
type Config struct {
	ClockRate int // instructions per second
	FrameRate int // timer ticks and display refreshes per second
	MaxFrames int // number of frames to run, 0 runs until canceled
}

// Runner executes the machine frame by frame. Each frame executes the share
// of instructions of the clock rate, decrements the timers once and renders
// the display if it changed.
type Runner struct {
	logger   *log.Logger
	machine  *chip8.Machine
	frontend Frontend
	config   Config

	cyclesPerFrame int
	frames         int
	display        chip8.Display
}

// New returns a new runner. The machine should be created with a buzzer
// that calls the Beep method of the front end, see BuzzerFor.
func New(logger *log.Logger, machine *chip8.Machine, frontend Frontend, config Config) *Runner {
	cyclesPerFrame := config.ClockRate / config.FrameRate
	if cyclesPerFrame < 1 {
		cyclesPerFrame = 1
	}

	return &Runner{
		logger:         logger,
		machine:        machine,
		frontend:       frontend,
		config:         config,
		cyclesPerFrame: cyclesPerFrame,
		display:        machine.Display(),
	}
}

// BuzzerFor returns a machine option that forwards the buzzer signal to the
// front end.
func BuzzerFor(frontend Frontend) chip8.Option {
	return chip8.WithBuzzer(frontend.Beep)
}

// Frames returns the number of frames that were run.
func (r *Runner) Frames() int {
	return r.frames
}

// Run executes frames at the configured frame rate until the context is
// canceled, the front end requests to quit, the frame limit is reached or
// the machine faults. Only a machine fault is returned as error.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Debug("Starting machine",
		log.Int("clock_rate", r.config.ClockRate),
		log.Int("frame_rate", r.config.FrameRate),
		log.Int("cycles_per_frame", r.cyclesPerFrame))

	ticker := time.NewTicker(time.Second / time.Duration(r.config.FrameRate))
	defer ticker.Stop()

	for !r.done() {
		select {
		case <-ctx.Done():
			r.logger.Debug("Machine stopped", log.Int("frames", r.frames))
			return nil

		case <-ticker.C:
			if err := r.RunFrame(); err != nil {
				if errors.Is(err, ErrQuit) {
					r.logger.Debug("Quit requested", log.Int("frames", r.frames))
					return nil
				}
				return err
			}
		}
	}

	r.logger.Debug("Frame limit reached", log.Int("frames", r.frames))
	return nil
}

// RunFrame processes pending input events, executes one frame worth of
// instructions, decrements the timers and renders the display if it changed.
func (r *Runner) RunFrame() error {
	if err := r.processEvents(); err != nil {
		return err
	}

	for range r.cyclesPerFrame {
		if err := r.machine.Tick(); err != nil {
			return r.faultError(err)
		}
	}
	r.machine.TickTimers()
	r.frames++

	display := r.machine.Display()
	if display == r.display {
		return nil
	}
	r.display = display
	if err := r.frontend.Render(&r.display); err != nil {
		return fmt.Errorf("rendering display: %w", err)
	}
	return nil
}

// done returns whether the frame limit is reached.
func (r *Runner) done() bool {
	return r.config.MaxFrames > 0 && r.frames >= r.config.MaxFrames
}

// processEvents forwards all pending key events to the machine.
func (r *Runner) processEvents() error {
	events := r.frontend.Events()
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if event.Quit {
				return ErrQuit
			}
			if err := r.machine.Keypress(event.Key, event.Pressed); err != nil {
				r.logger.Warn("Ignoring key event", log.Int("key", event.Key), log.Err(err))
			}

		default:
			return nil
		}
	}
}

// faultError annotates a machine fault with the faulting instruction. The
// error is returned instead of logged as the front end may own the terminal.
func (r *Runner) faultError(err error) error {
	address := r.machine.InstructionAddress()
	r.logger.Debug("Machine halted", log.Hex("address", address), log.Int("frame", r.frames))

	opcode, opErr := r.machine.Opcode(address)
	if opErr != nil {
		return fmt.Errorf("executing instruction at $%04X: %w", address, err)
	}
	text, _ := disasm.Instruction(opcode)
	return fmt.Errorf("executing instruction '%s' at $%04X: %w", text, address, err)
}
