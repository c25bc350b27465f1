// Command ocho-web serves the emulator over HTTP: the framebuffer streams to
// the browser on a websocket and an SSE channel exposes machine state.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/retrogolib/log"

	"github.com/avaldes/ocho"
	"github.com/avaldes/ocho/web"
)

func main() {
	port := flag.Int("port", 9999, "port of the server")
	speed := flag.Uint("speed", ocho.DefaultSpeed, "speed of the machine in Hz")
	static := flag.String("static", "./static", "directory with the browser page")
	debugger := flag.Bool("debugger", false, "expose machine state snapshots on /events")

	flag.Parse()

	logger := log.NewWithConfig(log.DefaultConfig())

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "usage: ocho-web [options] <rom>\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	program, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		logger.Fatal("reading program failed", log.Err(err))
	}

	server := web.NewServer(logger, func(config *web.ServerConfig) {
		config.SpeedInHz = *speed
		config.UseDebugger = *debugger
		config.StaticDir = *static
	})

	if err := server.LoadProgram(program); err != nil {
		logger.Fatal("loading program failed", log.Err(err))
	}

	if err := server.Listen(*port); err != nil {
		logger.Fatal("server failed", log.Err(err))
	}
}
