package runner

import (
	"github.com/retroenv/retrochip8/internal/chip8"
)

// Event is an input event of a front end.
type Event struct {
	Key     int  // keypad key 0-F
	Pressed bool // new state of the key
	Quit    bool // the user requested to stop, Key and Pressed are ignored
}

// Frontend presents the machine to the user.
type Frontend interface {
	// Render shows the display. It is only called when the display changed.
	Render(display *chip8.Display) error
	// Beep signals the expiry of the sound timer.
	Beep()
	// Events returns the channel that input events are delivered on.
	Events() <-chan Event
	// Close releases all resources of the front end.
	Close() error
}
