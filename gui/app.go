// Package gui is the desktop host: a raylib window showing the framebuffer
// with a raygui toolbar for speed and execution control.
package gui

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/avaldes/ocho"
)

const (
	ToolbarGap       = 5
	ToolbarBtnWidth  = 80
	ToolbarBtnHeight = 40
	ToolbarHeight    = 50
	ToolbarBtnOffset = ToolbarBtnWidth + ToolbarGap

	ScreenPixelSize = 15
	ScreenPositionX = 0
	ScreenPositionY = ToolbarHeight + 1

	MessageBarGap    = 5
	MessageBarHeight = 30
)

var ScreenBgColor = rl.Black
var ScreenPixelColor = rl.Lime
var MessageBarBgColor = rl.DarkGray
var MessageBarInfoColor = rl.SkyBlue
var MessageBarErrorColor = rl.Red

type MessageType byte

const (
	MessageInfo MessageType = iota
	MessageError
)

// keyBindings maps raylib key codes onto the keypad with the classic COSMAC
// arrangement (see ocho.DefaultKeyboardLayout).
var keyBindings = map[int32]byte{
	rl.KeyOne: 0x1, rl.KeyTwo: 0x2, rl.KeyThree: 0x3, rl.KeyFour: 0xC,
	rl.KeyQ: 0x4, rl.KeyW: 0x5, rl.KeyE: 0x6, rl.KeyR: 0xD,
	rl.KeyA: 0x7, rl.KeyS: 0x8, rl.KeyD: 0x9, rl.KeyF: 0xE,
	rl.KeyZ: 0xA, rl.KeyX: 0x0, rl.KeyC: 0xB, rl.KeyV: 0xF,
}

type AppConfig struct {
	Speed          uint
	CyclesPerFrame uint
}

type AppConfigCb func(config *AppConfig)

// App is the window and the console it drives. It doubles as the console's
// display and keyboard devices.
type App struct {
	*ocho.InMemoryKeyboard

	Console *ocho.Console

	// Speed in Hz, bound to the toolbar slider
	speed float32

	frameMu sync.RWMutex
	frame   [ocho.ScreenWidth * ocho.ScreenHeight]bool

	// Window width and height
	winW, winH int

	// Toolbar
	startBtn, stopBtn, stepBtn, resetBtn bool

	loadedProgramPath string

	lastMessage      string
	lastMessageColor rl.Color
}

func NewApp(configs ...AppConfigCb) *App {
	config := &AppConfig{
		Speed:          ocho.DefaultSpeed,
		CyclesPerFrame: ocho.DefaultCyclesPerFrame,
	}
	for _, cb := range configs {
		cb(config)
	}

	app := &App{
		InMemoryKeyboard: ocho.NewInMemoryKeyboard(),

		speed: float32(config.Speed),
	}

	app.Console = ocho.NewConsole(app, app, ocho.NewDummyBuzzer())
	app.Console.CyclesPerFrame = config.CyclesPerFrame
	app.Console.SetSpeedInHz(config.Speed)

	app.winW = ocho.ScreenWidth * ScreenPixelSize
	app.winH = ocho.ScreenHeight*ScreenPixelSize + ToolbarHeight + MessageBarHeight

	return app
}

// Boot implements ocho.Display.
func (app *App) Boot() error {
	return nil
}

// Render implements ocho.Display.
func (app *App) Render(frame []bool) error {
	app.frameMu.Lock()
	copy(app.frame[:], frame)
	app.frameMu.Unlock()

	return nil
}

// Load reads a program from disk into the console
func (app *App) Load(path string) {
	program, err := os.ReadFile(path)
	if err != nil {
		slog.Error("Error reading program", slog.String("path", path), slog.Any("error", err))
		app.showMessage(err.Error(), MessageError)
		return
	}

	if err = app.Console.LoadProgram(program); err != nil {
		slog.Error("Error loading program", slog.String("path", path), slog.Any("error", err))
		app.showMessage(err.Error(), MessageError)
		return
	}

	app.loadedProgramPath = path
	slog.Info("Program loaded", slog.String("path", path))
	app.showMessage(fmt.Sprintf("Program '%s' loaded", path), MessageInfo)
}

// Run starts the console loop in the background and runs the UI loop until
// the window is closed.
func (app *App) Run(autostart bool) {
	go func(c *ocho.Console) {
		slog.Info("starting console loop on pause")
		if err := c.Boot(); err != nil {
			slog.Error("Error booting console", slog.Any("error", err))
			return
		}

		if !(autostart && app.hasProgramLoaded()) {
			c.Stop()
		}

		if err := c.Loop(); err != nil {
			app.showMessage(err.Error(), MessageError)
			slog.Error("Console loop failed", slog.Any("error", err))
		}
	}(app.Console)

	rl.InitWindow(int32(app.winW), int32(app.winH), "ocho")
	defer rl.CloseWindow()

	rl.SetTargetFPS(60)
	for !rl.WindowShouldClose() {
		rl.BeginDrawing()

		rl.ClearBackground(rl.Black)

		app.handleFileLoad()
		app.handleActions()
		app.handleKeyPress()
		app.updateConsoleSpeed()

		app.drawMessageBar()
		app.drawScreen()
		app.drawToolbar()

		rl.EndDrawing()
	}
}

func (app App) hasProgramLoaded() bool {
	return len(app.loadedProgramPath) > 0
}

func (app *App) handleFileLoad() {
	if rl.IsFileDropped() {
		files := rl.LoadDroppedFiles()
		defer rl.UnloadDroppedFiles()

		app.Load(files[0])
	}
}

func (app *App) handleActions() {
	if app.startBtn {
		if app.hasProgramLoaded() {
			app.Console.Start()
			slog.Info("Starting the console")
		} else {
			app.showMessage("No program loaded", MessageError)
		}
	}
	if app.stopBtn {
		app.Console.Stop()
		slog.Info("Stopping the console")
	}
	if app.resetBtn {
		app.Console.Reset()
		slog.Info("Resetting the program to the beginning")
	}
	if app.stepBtn {
		if err := app.Console.SingleFrame(); err != nil {
			app.showMessage(err.Error(), MessageError)
		}
	}
}

func (app *App) handleKeyPress() {
	for code, k := range keyBindings {
		if rl.IsKeyDown(code) {
			app.Press(k)
		} else {
			app.Release(k)
		}
	}
}

func (app *App) updateConsoleSpeed() {
	app.Console.SetSpeedInHz(uint(app.speed))
}

func (app *App) drawToolbar() {
	rl.DrawRectangle(0, 0, int32(rl.GetScreenWidth()), ToolbarHeight, rl.Gray)

	gui.Label(
		rl.NewRectangle(ToolbarGap, 26, 50, 20),
		fmt.Sprintf("%.0f Hz", app.speed),
	)

	app.speed = gui.Slider(
		rl.NewRectangle(ToolbarGap*6, ToolbarGap, 100, 20),
		fmt.Sprintf("%d Hz", ocho.MinSpeed),
		fmt.Sprintf("%d Hz", ocho.MaxSpeed),
		app.speed,
		float32(ocho.MinSpeed),
		float32(ocho.MaxSpeed),
	)

	app.startBtn = gui.Button(
		rl.NewRectangle(float32(app.winW)-4*ToolbarBtnOffset, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_PLAYER_PLAY, "Start"),
	)
	app.stopBtn = gui.Button(
		rl.NewRectangle(float32(app.winW)-3*ToolbarBtnOffset, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_PLAYER_STOP, "Stop"),
	)
	app.stepBtn = gui.Button(
		rl.NewRectangle(float32(app.winW)-2*ToolbarBtnOffset, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_PLAYER_NEXT, "Step"),
	)
	app.resetBtn = gui.Button(
		rl.NewRectangle(float32(app.winW)-1*ToolbarBtnOffset, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_ROTATE, "Reset"),
	)
}

func (app *App) drawScreen() {
	app.frameMu.RLock()
	defer app.frameMu.RUnlock()

	for y := 0; y < ocho.ScreenHeight; y++ {
		for x := 0; x < ocho.ScreenWidth; x++ {
			color := ScreenBgColor
			if app.frame[y*ocho.ScreenWidth+x] {
				color = ScreenPixelColor
			}

			rl.DrawRectangle(
				ScreenPositionX+ScreenPixelSize*int32(x),
				ScreenPositionY+ScreenPixelSize*int32(y),
				ScreenPixelSize,
				ScreenPixelSize,
				color)
		}
	}
}

func (app *App) showMessage(msg string, mType MessageType) {
	app.lastMessage = msg
	switch mType {
	case MessageInfo:
		app.lastMessageColor = MessageBarInfoColor

	case MessageError:
		app.lastMessageColor = MessageBarErrorColor
	}
}

func (app *App) drawMessageBar() {
	rl.DrawRectangle(
		0,
		int32(app.winH)-MessageBarHeight,
		int32(app.winW),
		MessageBarHeight,
		MessageBarBgColor,
	)

	rl.DrawText(
		app.lastMessage,
		MessageBarGap,
		int32(app.winH)-MessageBarHeight+MessageBarGap,
		16,
		app.lastMessageColor,
	)
}
