package runner

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/retrochip8/internal/chip8"
)

// Headless is a front end without any interactive output. It keeps the last
// rendered display and writes it as text when it is closed.
type Headless struct {
	writer  io.Writer
	events  chan Event
	display chip8.Display
	renders int
	beeps   int
}

// NewHeadless returns a headless front end that writes the final display to w.
func NewHeadless(w io.Writer) *Headless {
	return &Headless{
		writer: w,
		events: make(chan Event, chip8.KeyCount),
	}
}

// Render stores the display.
func (h *Headless) Render(display *chip8.Display) error {
	h.display = *display
	h.renders++
	return nil
}

// Beep counts the buzzer signals.
func (h *Headless) Beep() {
	h.beeps++
}

// Events returns the input event channel, see Send.
func (h *Headless) Events() <-chan Event {
	return h.events
}

// Send queues an input event for the runner.
func (h *Headless) Send(event Event) {
	h.events <- event
}

// Renders returns how often the display was rendered.
func (h *Headless) Renders() int {
	return h.renders
}

// Beeps returns how often the buzzer was signaled.
func (h *Headless) Beeps() int {
	return h.beeps
}

// Close writes the last rendered display.
func (h *Headless) Close() error {
	if _, err := io.WriteString(h.writer, FormatDisplay(&h.display)); err != nil {
		return fmt.Errorf("writing display: %w", err)
	}
	return nil
}

// FormatDisplay returns the display as text, one line per pixel row with
// '#' for lit and '.' for dark pixels.
func FormatDisplay(display *chip8.Display) string {
	var buf strings.Builder
	buf.Grow((chip8.DisplayWidth + 1) * chip8.DisplayHeight)

	for y := range chip8.DisplayHeight {
		for x := range chip8.DisplayWidth {
			if display.Pixel(x, y) {
				buf.WriteByte('#')
			} else {
				buf.WriteByte('.')
			}
		}
		buf.WriteByte('\n')
	}
	return buf.String()
}
