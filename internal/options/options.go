// Package options contains the program options.
package options

import "time"

// Defaults of the interpreter timing.
const (
	DefaultClockRate = 700 // instructions per second
	DefaultFrameRate = 60  // timer and display updates per second
	DefaultKeyHold   = 100 * time.Millisecond
)

// Parameters contains file path options.
type Parameters struct {
	Input string `flag:"i" usage:"input ROM file"`
}

// Flags contains behavior options.
type Flags struct {
	ClockRate int           `flag:"clock" usage:"instructions executed per second" default:"700"`
	Frames    int           `flag:"frames" usage:"stop after the given number of frames (0: run until quit)"`
	Seed      uint64        `flag:"seed" usage:"seed for the random number instruction (0: random)"`
	KeyHold   time.Duration `flag:"keyhold" usage:"duration a terminal key press is held down" default:"100ms"`
	Headless  bool          `flag:"headless" usage:"run without terminal output, print the final display"`
	List      bool          `flag:"list" usage:"print a disassembly listing of the ROM and exit"`
	Debug     bool          `flag:"debug" usage:"enable debug logging"`
	Quiet     bool          `flag:"q" usage:"quiet mode"`
}

// Program options of the interpreter.
type Program struct {
	Parameters
	Flags
}
