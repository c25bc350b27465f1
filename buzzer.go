package ocho

import (
	"io"
	"os"
)

// Buzzer abstraction for the sound timer tone. Play is called on every frame
// while the sound timer is nonzero, Stop on every frame while it is zero.
type Buzzer interface {
	// Boot initializes the component
	Boot() error
	Play()
	Stop()
}

// DummyBuzzer is a buzzer that only records its state
type DummyBuzzer struct {
	IsPlaying bool
}

func NewDummyBuzzer() *DummyBuzzer {
	return &DummyBuzzer{
		IsPlaying: false,
	}
}

// Boot implements Buzzer.
func (b *DummyBuzzer) Boot() error {
	return nil
}

// Play implements Buzzer.
func (b *DummyBuzzer) Play() {
	b.IsPlaying = true
}

// Stop implements Buzzer.
func (b *DummyBuzzer) Stop() {
	b.IsPlaying = false
}

// TerminalBuzzer rings the terminal bell once per tone
type TerminalBuzzer struct {
	out       io.Writer
	isPlaying bool
}

func NewTerminalBuzzer() *TerminalBuzzer {
	return &TerminalBuzzer{
		out: os.Stdout,
	}
}

// Boot implements Buzzer.
func (b *TerminalBuzzer) Boot() error {
	return nil
}

// Play implements Buzzer.
func (b *TerminalBuzzer) Play() {
	if !b.isPlaying {
		b.isPlaying = true
		b.out.Write([]byte{0x07})
	}
}

// Stop implements Buzzer.
func (b *TerminalBuzzer) Stop() {
	b.isPlaying = false
}
