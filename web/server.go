// Package web hosts the emulator behind an HTTP server: the framebuffer is
// streamed to a browser over a websocket, key events come back the same way,
// and a server-sent-events channel exposes machine state snapshots.
package web

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/retroenv/retrogolib/log"

	"github.com/avaldes/ocho"
)

// Server owns a console whose display is a websocket connection and whose
// keyboard is fed by messages from the browser.
type Server struct {
	*ocho.InMemoryKeyboard

	console  *ocho.Console
	debugger *Debugger
	logger   *log.Logger

	upgrader websocket.Upgrader
	socket   *websocket.Conn
	wsMutex  sync.RWMutex

	staticDir string
}

type ServerConfig struct {
	SpeedInHz      uint
	CyclesPerFrame uint
	UseDebugger    bool
	// StaticDir is served at /; it holds the browser-side page
	StaticDir string
}

type ServerConfigCb func(config *ServerConfig)

func NewServer(logger *log.Logger, configs ...ServerConfigCb) *Server {
	config := &ServerConfig{
		SpeedInHz:      ocho.DefaultSpeed,
		CyclesPerFrame: ocho.DefaultCyclesPerFrame,
		UseDebugger:    false,
		StaticDir:      "./static",
	}
	for _, cb := range configs {
		cb(config)
	}

	s := &Server{
		InMemoryKeyboard: ocho.NewInMemoryKeyboard(),

		logger: logger,

		upgrader: websocket.Upgrader{
			// The page may be served from elsewhere during development
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	s.console = ocho.NewConsole(s, s, ocho.NewDummyBuzzer())
	s.console.CyclesPerFrame = config.CyclesPerFrame
	s.console.SetSpeedInHz(config.SpeedInHz)

	if config.UseDebugger {
		s.debugger = NewDebugger(s.console)
	}

	s.staticDir = config.StaticDir

	return s
}

// SetSpeedInHz changes the console speed
func (s *Server) SetSpeedInHz(inHz uint) {
	s.console.SetSpeedInHz(inHz)
}

// LoadProgram resets the console and loads the program
func (s *Server) LoadProgram(program []byte) error {
	return s.console.LoadProgram(program)
}

// Listen boots the console, starts its loop paused and serves HTTP on the
// given port. It blocks until the HTTP server fails.
func (s *Server) Listen(port int) error {
	if err := s.console.Boot(); err != nil {
		return fmt.Errorf("booting console: %w", err)
	}

	go func() {
		s.console.Stop()
		if err := s.console.Loop(); err != nil {
			s.logger.Error("console loop failed", log.Err(err))
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	mux.HandleFunc("/ws", s.handleSocket)
	mux.HandleFunc("/start", s.handleStart)
	mux.HandleFunc("/stop", s.handleStop)
	mux.HandleFunc("/reset", s.handleReset)

	if s.debugger != nil {
		mux.HandleFunc("/events", s.debugger.ServeEvents)
	}

	s.logger.Info("listening", log.Int("port", port))

	return http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
}

// keyMessage is what the browser sends for key up/down events
type keyMessage struct {
	Key     byte `json:"key"`
	Pressed bool `json:"pressed"`
}

func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", log.Err(err))
		return
	}

	s.setWs(conn)
	defer func() {
		s.unsetWs()
		conn.Close()
	}()

	s.logger.Info("display connected", log.String("remote", r.RemoteAddr))

	for {
		var msg keyMessage
		if err := conn.ReadJSON(&msg); err != nil {
			s.logger.Info("display disconnected", log.String("remote", r.RemoteAddr))
			return
		}

		if msg.Pressed {
			s.Press(msg.Key)
		} else {
			s.Release(msg.Key)
		}
	}
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	allowAnyOrigin(w)
	s.console.Start()
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	allowAnyOrigin(w)
	s.console.Stop()
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	allowAnyOrigin(w)
	s.console.Reset()
}

func allowAnyOrigin(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Expose-Headers", "Content-Type")
	w.Header().Set("Cache-Control", "no-cache")
}

func (s *Server) setWs(conn *websocket.Conn) {
	s.wsMutex.Lock()
	s.socket = conn
	s.wsMutex.Unlock()
}

func (s *Server) unsetWs() {
	s.wsMutex.Lock()
	s.socket = nil
	s.wsMutex.Unlock()
}

// Boot implements ocho.Display.
func (s *Server) Boot() error {
	return nil
}

// Render implements ocho.Display. The frame is packed to one bit per pixel,
// row-major, most significant bit first, and sent as a single binary
// message. Frames rendered while no browser is connected are dropped.
func (s *Server) Render(frame []bool) error {
	s.wsMutex.RLock()
	defer s.wsMutex.RUnlock()

	if s.socket == nil {
		return nil
	}

	return s.socket.WriteMessage(websocket.BinaryMessage, packFrame(frame))
}

func packFrame(frame []bool) []byte {
	packed := make([]byte, (len(frame)+7)/8)
	for i, px := range frame {
		if px {
			packed[i/8] |= 0x80 >> (i % 8)
		}
	}

	return packed
}
