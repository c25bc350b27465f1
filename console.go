package ocho

import (
	"errors"
	"time"
)

var ErrConsoleIsNotBooted = errors.New("the console has not been booted properly")

const (
	DefaultSpeed          uint = 500
	MaxSpeed              uint = 700
	MinSpeed              uint = 5
	DefaultCyclesPerFrame uint = 10
)

// Console drives a Machine the way a host loop is expected to: per rendered
// frame it runs CyclesPerFrame instruction cycles, ticks the timers once,
// gates the buzzer on the sound timer and hands the framebuffer to the
// display. The machine itself carries no pacing; all of it lives here.
type Console struct {
	Machine *Machine

	Display  Display
	Keyboard Keyboard
	Buzzer   Buzzer

	// CyclesPerFrame is the number of instruction cycles per rendered frame
	CyclesPerFrame uint

	// program holds the last loaded program so Reset can restart it
	program []byte

	cycles uint
	frames uint

	speedInHz uint
	frameStep time.Duration

	isBooted  bool
	isPaused  bool
	isHalted  bool
	lastError error

	// Hooks that run before every frame
	beforeFrameHooks []Hook
	// Hooks that run before every cycle
	beforeCycleHooks []Hook
	// Hooks that run after every cycle
	afterCycleHooks []Hook
	// Hooks that run after every frame
	afterFrameHooks []Hook
	// Hooks that run after an error
	errorHooks []Hook
}

func NewConsole(display Display, keyboard Keyboard, buzzer Buzzer) *Console {
	c := &Console{
		Machine: NewMachine(),

		Display:  display,
		Keyboard: keyboard,
		Buzzer:   buzzer,

		CyclesPerFrame: DefaultCyclesPerFrame,

		beforeFrameHooks: make([]Hook, 0),
		beforeCycleHooks: make([]Hook, 0),
		afterCycleHooks:  make([]Hook, 0),
		afterFrameHooks:  make([]Hook, 0),
		errorHooks:       make([]Hook, 0),
	}
	c.SetSpeedInHz(DefaultSpeed)

	return c
}

func (c Console) IsRunning() bool {
	return !c.isPaused
}

func (c Console) IsHalted() bool {
	return c.isHalted
}

func (c Console) SpeedInHz() uint {
	return c.speedInHz
}

// SetSpeedInHz sets the instruction cycle rate. The frame rate follows from
// it: speedInHz / CyclesPerFrame frames per second. Speeds below MinSpeed
// are clamped to it.
func (c *Console) SetSpeedInHz(inHz uint) {
	c.speedInHz = max(inHz, MinSpeed)
	c.frameStep = time.Second * time.Duration(c.CyclesPerFrame) / time.Duration(c.speedInHz)
}

func (c Console) Cycles() uint {
	return c.cycles
}

func (c Console) Frames() uint {
	return c.frames
}

func (c Console) LastError() error {
	return c.lastError
}

// Boot initializes all the devices
// If the console was already booted, this method is a noop
func (c *Console) Boot() error {
	if c.isBooted {
		return nil
	}

	if err := c.Display.Boot(); err != nil {
		return err
	}

	if err := c.Keyboard.Boot(); err != nil {
		return err
	}

	if err := c.Buzzer.Boot(); err != nil {
		return err
	}

	c.isBooted = true

	return nil
}

// LoadProgram loads the program into a fresh machine. The bytes are kept so
// that Reset restarts the same program from the beginning.
func (c *Console) LoadProgram(program []byte) error {
	if len(program) > MemorySize-startOfProgram {
		return ErrProgramDoesNotFitIntoMemory
	}

	c.program = append(program[:0:0], program...)
	c.Reset()

	return nil
}

// Reset restores the machine to its initial state, puts the last loaded
// program back into memory and clears the counters and any previous error.
func (c *Console) Reset() {
	c.Machine.Reset()
	// The program fit when it was loaded, so Load cannot fail here.
	_ = c.Machine.Load(c.program)
	c.frames = 0
	c.cycles = 0
	c.isHalted = false
	c.lastError = nil

	if c.isBooted {
		c.Display.Render(c.Machine.Display())
	}
}

// Start resumes execution after a Stop
func (c *Console) Start() {
	c.isPaused = false
}

// Stop pauses execution; frames still run their hooks but no cycle executes
func (c *Console) Stop() {
	c.isPaused = true
}

// LoopAtSpeed sets the speed and starts the loop
func (c *Console) LoopAtSpeed(speedInHz uint) error {
	c.SetSpeedInHz(speedInHz)
	return c.Loop()
}

// Loop runs frames at the current speed until the program runs off the end
// of memory or a cycle fails.
func (c *Console) Loop() error {
	if !c.isBooted {
		return ErrConsoleIsNotBooted
	}

	if c.lastError != nil {
		return c.lastError
	}

	var last time.Time

	for !c.isHalted {
		if err := c.runFrame(); err != nil {
			return err
		}

		// Prevent the loop from running faster than expected
		time.Sleep(max(c.frameStep-time.Since(last), 0))
		last = time.Now()
	}

	return nil
}

// SingleFrame runs a single frame bypassing the pause state
func (c *Console) SingleFrame() error {
	if !c.isBooted {
		return ErrConsoleIsNotBooted
	}

	if c.lastError != nil {
		return c.lastError
	}

	prev := c.isPaused
	c.isPaused = false
	defer func(c *Console, prev bool) {
		c.isPaused = prev
	}(c, prev)

	return c.runFrame()
}

func (c *Console) runFrame() error {
	c.runHooks(c.beforeFrameHooks)

	if c.isPaused {
		return nil
	}

	c.syncKeyboard()

	for i := uint(0); i < c.CyclesPerFrame; i++ {
		c.runHooks(c.beforeCycleHooks)

		if err := c.Machine.Tick(); err != nil {
			c.lastError = err
			c.runHooks(c.errorHooks)
			return err
		}
		c.cycles++

		c.runHooks(c.afterCycleHooks)

		// Running past the end of memory is the conventional way for a
		// program to terminate.
		if c.Machine.Pc >= MemorySize {
			c.isHalted = true
			break
		}
	}

	c.Machine.TickTimers()

	if c.Machine.IsSoundTimerActive() {
		c.Buzzer.Play()
	} else {
		c.Buzzer.Stop()
	}

	if err := c.Display.Render(c.Machine.Display()); err != nil {
		c.lastError = err
		c.runHooks(c.errorHooks)
		return err
	}

	c.frames++
	c.runHooks(c.afterFrameHooks)

	return nil
}

// syncKeyboard copies the device key states into the machine once per frame
func (c *Console) syncKeyboard() {
	for k := byte(0); k < NumKeys; k++ {
		c.Machine.Keypress(k, c.Keyboard.IsPressed(k))
	}
}
