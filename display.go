package ocho

import (
	"io"
	"os"
	"sync"
)

// Display abstraction for a rendering surface
type Display interface {
	// Boot initializes the component
	Boot() error
	// Render receives the framebuffer after every frame. The slice is
	// row-major, ScreenWidth*ScreenHeight pixels, and must not be retained.
	Render(frame []bool) error
}

// DummyDisplay is a display that does nothing
type DummyDisplay struct {
}

func NewDummyDisplay() *DummyDisplay {
	return &DummyDisplay{}
}

func (d DummyDisplay) Boot() error {
	return nil
}

func (d DummyDisplay) Render(frame []bool) error {
	return nil
}

// InMemoryDisplay keeps a copy of the last rendered frame. Safe for
// concurrent use; hosts read the frame from their own loop.
type InMemoryDisplay struct {
	mu    sync.RWMutex
	frame [ScreenWidth * ScreenHeight]bool
}

func NewInMemoryDisplay() *InMemoryDisplay {
	return &InMemoryDisplay{}
}

// Boot implements Display.
func (d *InMemoryDisplay) Boot() error {
	return nil
}

// Render implements Display.
func (d *InMemoryDisplay) Render(frame []bool) error {
	d.mu.Lock()
	copy(d.frame[:], frame)
	d.mu.Unlock()

	return nil
}

// Frame copies the last rendered frame into dst
func (d *InMemoryDisplay) Frame(dst []bool) {
	d.mu.RLock()
	copy(dst, d.frame[:])
	d.mu.RUnlock()
}

const esc = 0x1B

// TerminalDisplay renders the framebuffer as character cells using ANSI
// cursor control.
type TerminalDisplay struct {
	terminal        io.Writer
	OnChar, OffChar string
}

func NewTerminalDisplay() *TerminalDisplay {
	return NewTerminalDisplayWithOutput(os.Stdout)
}

func NewTerminalDisplayWithOutput(out io.Writer) *TerminalDisplay {
	return &TerminalDisplay{
		terminal: out,
		OnChar:   "##",
		OffChar:  "  ",
	}
}

// Boot implements Display.
func (disp *TerminalDisplay) Boot() error {
	_, err := disp.terminal.Write([]byte{
		// Move cursor to start
		esc, '[', '1', 'H',
		// clear the terminal
		esc, '[', '0', 'J',
	})

	return err
}

// Render implements Display.
func (disp *TerminalDisplay) Render(frame []bool) error {
	buff := make([]byte, 0, len(frame)*len(disp.OnChar)+ScreenHeight*2+8)
	buff = append(buff, esc, '[', '1', 'H')

	for i, px := range frame {
		if px {
			buff = append(buff, disp.OnChar...)
		} else {
			buff = append(buff, disp.OffChar...)
		}

		if (i+1)%ScreenWidth == 0 {
			buff = append(buff, '\r', '\n')
		}
	}

	_, err := disp.terminal.Write(buff)
	return err
}
