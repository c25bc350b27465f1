package ocho

import (
	"os"
	"sync"
	"time"
	"unicode"

	"github.com/pkg/term"
)

// KeyboardState is the pressed state of the 16-key hexadecimal keypad
type KeyboardState [NumKeys]bool

// Keyboard abstraction for an input device
type Keyboard interface {
	// Boot initializes the component
	Boot() error
	IsPressed(k byte) bool
}

// KeyboardLayout maps host characters to keypad indexes
type KeyboardLayout map[rune]byte

// DefaultKeyboardLayout is the classic COSMAC VIP arrangement:
//
//	1 2 3 C        1 2 3 4
//	4 5 6 D   <-   q w e r
//	7 8 9 E        a s d f
//	A 0 B F        z x c v
var DefaultKeyboardLayout = KeyboardLayout{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// InMemoryKeyboard is a keyboard whose state is set programmatically. Safe
// for concurrent use; hosts press and release keys from their own loop.
type InMemoryKeyboard struct {
	mu    sync.RWMutex
	state KeyboardState
}

func NewInMemoryKeyboard() *InMemoryKeyboard {
	return &InMemoryKeyboard{}
}

// Boot implements Keyboard.
func (kb *InMemoryKeyboard) Boot() error {
	return nil
}

// IsPressed implements Keyboard.
func (kb *InMemoryKeyboard) IsPressed(k byte) bool {
	if k >= NumKeys {
		return false
	}

	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.state[k]
}

func (kb *InMemoryKeyboard) Get() KeyboardState {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.state
}

func (kb *InMemoryKeyboard) Press(k byte) {
	if k >= NumKeys {
		return
	}

	kb.mu.Lock()
	kb.state[k] = true
	kb.mu.Unlock()
}

func (kb *InMemoryKeyboard) Release(k byte) {
	if k >= NumKeys {
		return
	}

	kb.mu.Lock()
	kb.state[k] = false
	kb.mu.Unlock()
}

// DefaultKeyHold is how long a terminal keystroke counts as held down.
// Terminals only report key presses, never releases.
const DefaultKeyHold = 150 * time.Millisecond

// TerminalKeyboard reads raw bytes from the controlling terminal and maps
// them onto the keypad through a layout. A key is released automatically
// after HoldFor, since the terminal gives no key-up events.
type TerminalKeyboard struct {
	*InMemoryKeyboard

	Layout  KeyboardLayout
	HoldFor time.Duration

	tty *term.Term
}

func NewTerminalKeyboard() *TerminalKeyboard {
	return &TerminalKeyboard{
		InMemoryKeyboard: NewInMemoryKeyboard(),

		Layout:  DefaultKeyboardLayout,
		HoldFor: DefaultKeyHold,
	}
}

// Boot implements Keyboard. It puts the terminal into raw mode and starts
// the read loop.
func (kb *TerminalKeyboard) Boot() error {
	tty, err := term.Open("/dev/tty", term.RawMode)
	if err != nil {
		return err
	}

	kb.tty = tty
	go kb.readLoop()

	return nil
}

// Close restores the terminal state
func (kb *TerminalKeyboard) Close() error {
	if kb.tty == nil {
		return nil
	}

	if err := kb.tty.Restore(); err != nil {
		return err
	}

	return kb.tty.Close()
}

func (kb *TerminalKeyboard) readLoop() {
	buff := make([]byte, 1)

	for {
		n, err := kb.tty.Read(buff)
		if err != nil || n == 0 {
			return
		}

		// ctrl-c still has to work in raw mode
		if buff[0] == 0x03 {
			kb.tty.Restore()
			kb.tty.Close()
			os.Exit(0)
		}

		k, ok := kb.Layout[unicode.ToLower(rune(buff[0]))]
		if !ok {
			continue
		}

		kb.Press(k)
		time.AfterFunc(kb.HoldFor, func() {
			kb.Release(k)
		})
	}
}
