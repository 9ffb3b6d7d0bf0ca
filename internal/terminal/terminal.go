// Package terminal implements a text terminal front end based on termbox.
// Two vertically adjacent pixels are drawn as one character cell using
// half block characters.
package terminal

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/nsf/termbox-go"
	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/runner"
)

const (
	upperHalfBlock = '▀'
	lowerHalfBlock = '▄'
	fullBlock      = '█'

	bell = "\a"
)

// Compile-time check to ensure Terminal implements runner.Frontend.
var _ runner.Frontend = (*Terminal)(nil)

// Terminal is a termbox based front end.
type Terminal struct {
	events  chan runner.Event
	keyHold time.Duration

	mu       sync.Mutex
	releases [chip8.KeyCount]*time.Timer
	closed   bool
}

// New initializes the terminal and starts reading input events. Terminals
// only report key presses, a pressed key is released after keyHold.
func New(keyHold time.Duration) (*Terminal, error) {
	if err := termbox.Init(); err != nil {
		return nil, fmt.Errorf("initializing terminal: %w", err)
	}
	termbox.SetInputMode(termbox.InputEsc)
	termbox.HideCursor()
	if err := termbox.Clear(termbox.ColorDefault, termbox.ColorDefault); err != nil {
		termbox.Close()
		return nil, fmt.Errorf("clearing terminal: %w", err)
	}

	t := &Terminal{
		events:  make(chan runner.Event, 2*chip8.KeyCount),
		keyHold: keyHold,
	}
	go t.pollEvents()
	return t, nil
}

// Render draws the display into the top left corner of the terminal.
func (t *Terminal) Render(display *chip8.Display) error {
	for y := 0; y < chip8.DisplayHeight; y += 2 {
		for x := range chip8.DisplayWidth {
			ch := cellRune(display.Pixel(x, y), display.Pixel(x, y+1))
			termbox.SetCell(x, y/2, ch, termbox.ColorWhite, termbox.ColorDefault)
		}
	}
	if err := termbox.Flush(); err != nil {
		return fmt.Errorf("flushing terminal: %w", err)
	}
	return nil
}

// Beep rings the terminal bell.
func (t *Terminal) Beep() {
	_, _ = os.Stdout.WriteString(bell)
}

// Events returns the channel of key and quit events.
func (t *Terminal) Events() <-chan runner.Event {
	return t.events
}

// Close restores the terminal.
func (t *Terminal) Close() error {
	t.mu.Lock()
	t.closed = true
	for _, timer := range t.releases {
		if timer != nil {
			timer.Stop()
		}
	}
	t.mu.Unlock()

	termbox.Interrupt()
	termbox.Close()
	return nil
}

// pollEvents translates termbox events until the terminal is closed.
func (t *Terminal) pollEvents() {
	for {
		ev := termbox.PollEvent()
		switch ev.Type {
		case termbox.EventInterrupt, termbox.EventError:
			return

		case termbox.EventKey:
			if ev.Key == termbox.KeyEsc || ev.Key == termbox.KeyCtrlC {
				t.send(runner.Event{Quit: true})
				continue
			}
			if key, ok := KeyFor(ev.Ch); ok {
				t.press(key)
			}
		}
	}
}

// press sends a key press and schedules the matching release. Repeated
// presses of a held key extend the hold time.
func (t *Terminal) press(key int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}

	if timer := t.releases[key]; timer != nil && timer.Stop() {
		timer.Reset(t.keyHold)
		return
	}

	t.sendLocked(runner.Event{Key: key, Pressed: true})
	t.releases[key] = time.AfterFunc(t.keyHold, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if !t.closed {
			t.sendLocked(runner.Event{Key: key, Pressed: false})
		}
	})
}

func (t *Terminal) send(event runner.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.sendLocked(event)
	}
}

// sendLocked queues an event, dropping it if the runner is not keeping up.
func (t *Terminal) sendLocked(event runner.Event) {
	select {
	case t.events <- event:
	default:
	}
}

// cellRune returns the character that shows the given upper and lower pixel.
func cellRune(upper, lower bool) rune {
	switch {
	case upper && lower:
		return fullBlock
	case upper:
		return upperHalfBlock
	case lower:
		return lowerHalfBlock
	default:
		return ' '
	}
}
