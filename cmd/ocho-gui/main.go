// Command ocho-gui runs the emulator in a raylib window. A program can be
// passed as an argument or dropped onto the window.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/avaldes/ocho"
	"github.com/avaldes/ocho/gui"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{})))
}

func main() {
	autostart := flag.Bool("start", false, "start the console automatically if a program is loaded")
	speed := flag.Uint("speed", ocho.DefaultSpeed, fmt.Sprintf("starting speed of the machine in Hz, in the range [%d, %d]", ocho.MinSpeed, ocho.MaxSpeed))
	cyclesPerFrame := flag.Uint("xframes", ocho.DefaultCyclesPerFrame, "instruction cycles per rendered frame")

	flag.Parse()

	app := gui.NewApp(func(config *gui.AppConfig) {
		config.Speed = min(max(*speed, ocho.MinSpeed), ocho.MaxSpeed)
		config.CyclesPerFrame = *cyclesPerFrame
	})

	if flag.NArg() > 0 {
		app.Load(flag.Arg(0))
	}

	app.Run(*autostart)
}
