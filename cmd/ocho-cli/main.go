// Command ocho-cli runs a program in the terminal: the framebuffer is drawn
// with ANSI escapes, the keypad is read from the raw terminal and the sound
// timer rings the bell.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/retrogolib/log"

	"github.com/avaldes/ocho"
)

func main() {
	speed := flag.Uint("speed", ocho.DefaultSpeed, "speed of the machine in Hz")
	cyclesPerFrame := flag.Uint("xframes", ocho.DefaultCyclesPerFrame, "instruction cycles per rendered frame")
	debug := flag.Bool("debug", false, "enable debug logging")

	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "usage: ocho-cli [options] <rom>\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger := createLogger(*debug)

	program, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		logger.Fatal("reading program failed", log.Err(err))
	}

	keyboard := ocho.NewTerminalKeyboard()
	defer keyboard.Close()

	console := ocho.NewConsole(ocho.NewTerminalDisplay(), keyboard, ocho.NewTerminalBuzzer())
	console.CyclesPerFrame = *cyclesPerFrame

	if err := console.LoadProgram(program); err != nil {
		logger.Fatal("loading program failed", log.Err(err))
	}

	if err := console.Boot(); err != nil {
		logger.Fatal("booting console failed", log.Err(err))
	}

	logger.Debug("running", log.String("rom", flag.Arg(0)), log.Int("speed", int(*speed)))

	if err := console.LoopAtSpeed(*speed); err != nil {
		keyboard.Close()
		logger.Fatal("execution failed", log.Err(err))
	}
}

func createLogger(debug bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	}
	return log.NewWithConfig(cfg)
}
