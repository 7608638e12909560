// Package tcellhost runs the watch emulator directly on a tcell screen. It
// drives the bridge the same way the Bubble Tea host does but paints cells
// itself, which keeps the repaint cost low on large faces.
package tcellhost

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"

	"github.com/vovakirdan/wearbridge/internal/bridge"
	"github.com/vovakirdan/wearbridge/internal/core"
	"github.com/vovakirdan/wearbridge/internal/platform/emu"
)

const (
	repaintRate  = 30
	statusRows   = 2
	touchPointer = 0
	upperHalf    = '▀'
)

var (
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorGray)
	faultStyle  = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

// emulator owns the tcell screen and translates its events for the host.
type emulator struct {
	screen  tcell.Screen
	host    emu.Host
	surface *emu.FrameSurface
	speaker *emu.Speaker
	holder  *emu.KeyHolder

	size      core.Size
	fixedSize bool
	created   bool
	screenOn  bool
	paused    bool
	muted     bool
	touching  bool
	fault     error
	now       func() time.Time
}

func newEmulator(screen tcell.Screen, host emu.Host, surface *emu.FrameSurface, spk *emu.Speaker, size core.Size) *emulator {
	return &emulator{
		screen:    screen,
		host:      host,
		surface:   surface,
		speaker:   spk,
		holder:    emu.NewKeyHolder(emu.DefaultHold, host.OnInputEvent),
		size:      size,
		fixedSize: !size.Empty(),
		screenOn:  true,
		now:       time.Now,
	}
}

// handle processes one screen event and reports whether the user quit.
func (e *emulator) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return e.handleKey(ev)
	case *tcell.EventMouse:
		e.handleMouse(ev)
	case *tcell.EventResize:
		w, h := ev.Size()
		e.handleResize(w, h)
	}
	return false
}

func (e *emulator) handleKey(ev *tcell.EventKey) bool {
	name := keyName(ev)

	switch emu.ControlFor(name) {
	case emu.ControlQuit:
		e.holder.ReleaseAll()
		return true
	case emu.ControlPause:
		e.paused = !e.paused
		if e.paused {
			e.host.OnPauseRequested()
		} else {
			e.host.OnResumeRequested()
		}
		return false
	case emu.ControlScreen:
		e.toggleScreen()
		return false
	case emu.ControlMute:
		if e.speaker != nil {
			e.muted = e.speaker.ToggleMute()
		}
		return false
	case emu.ControlHelp:
		return false
	}

	if !e.screenOn {
		return false
	}
	now := e.now()
	for _, k := range emu.KeysFor(name) {
		e.holder.Press(k, now)
	}
	return false
}

// keyName converts a tcell key to the names emu.KeysFor and emu.ControlFor
// understand.
func keyName(ev *tcell.EventKey) string {
	switch ev.Key() {
	case tcell.KeyUp:
		return "up"
	case tcell.KeyDown:
		return "down"
	case tcell.KeyLeft:
		return "left"
	case tcell.KeyRight:
		return "right"
	case tcell.KeyEnter:
		return "enter"
	case tcell.KeyEscape:
		return "esc"
	case tcell.KeyTab:
		return "tab"
	case tcell.KeyCtrlC:
		return "ctrl+c"
	case tcell.KeyCtrlQ:
		return "ctrl+q"
	case tcell.KeyRune:
		return string(ev.Rune())
	}
	return ""
}

func (e *emulator) toggleScreen() {
	if !e.created {
		return
	}
	e.screenOn = !e.screenOn
	if e.screenOn {
		e.host.OnSurfaceCreated(e.surface, e.size)
		return
	}
	e.holder.ReleaseAll()
	e.touching = false
	e.host.OnSurfaceDestroyed()
	e.surface.Clear()
}

// handleMouse follows the same rules as the Bubble Tea host: button one is
// a touch contact, the wheel turns the bezel.
func (e *emulator) handleMouse(ev *tcell.EventMouse) {
	if !e.screenOn || !e.created {
		return
	}

	col, row := ev.Position()
	x, y := emu.CellToPixel(col, row)
	btn := ev.Buttons()

	switch {
	case btn&tcell.WheelUp != 0:
		e.host.OnInputEvent(bridge.RawEvent{Kind: bridge.EventRotary, Delta: -1})
	case btn&tcell.WheelDown != 0:
		e.host.OnInputEvent(bridge.RawEvent{Kind: bridge.EventRotary, Delta: 1})
	case btn&tcell.Button1 != 0 && !e.touching:
		if x < float64(e.size.W) && y < float64(e.size.H) {
			e.touching = true
			e.host.OnInputEvent(e.touch(bridge.EventTouchDown, x, y))
		}
	case btn&tcell.Button1 != 0:
		e.host.OnInputEvent(e.touch(bridge.EventTouchMove, x, y))
	case e.touching:
		e.touching = false
		e.host.OnInputEvent(e.touch(bridge.EventTouchUp, x, y))
	}
}

func (e *emulator) touch(kind bridge.EventKind, x, y float64) bridge.RawEvent {
	return bridge.RawEvent{
		Kind:    kind,
		Pointer: touchPointer,
		X:       min(x, float64(e.size.W)-0.5),
		Y:       min(y, float64(e.size.H)-0.5),
		Surface: e.size,
	}
}

func (e *emulator) handleResize(cols, rows int) {
	if !e.fixedSize {
		next := emu.FaceSize(cols, rows, statusRows)
		if e.created && next != e.size && e.screenOn {
			e.host.OnSurfaceResized(next)
		}
		e.size = next
	}
	if !e.created {
		e.created = true
		e.host.OnSurfaceCreated(e.surface, e.size)
	}
	e.screen.Sync()
}

// draw paints the face and the status line.
func (e *emulator) draw() {
	e.screen.Clear()

	if e.created && e.screenOn {
		e.surface.View(func(img *image.RGBA) {
			if img == nil {
				return
			}
			emu.HalfBlocks(img, func(col, row int, top, bottom color.RGBA) {
				style := tcell.StyleDefault.
					Foreground(rgb(top)).
					Background(rgb(bottom))
				e.screen.SetContent(col, row, upperHalf, nil, style)
			})
		})
	}

	row := emu.CellRows(e.size)
	switch {
	case !e.created:
		drawText(e.screen, 0, 0, statusStyle, "waiting for terminal size...")
	case e.fault != nil:
		drawText(e.screen, 0, row, faultStyle, "core fault: "+e.fault.Error())
	default:
		drawText(e.screen, 0, row, statusStyle, e.status())
	}
	drawText(e.screen, 0, row+1, statusStyle, "wasd move  space fire  p pause  z screen  v mute  ctrl+c quit")

	e.screen.Show()
}

func (e *emulator) status() string {
	st := e.host.Stats()
	s := fmt.Sprintf("%s  tick %d  presents %d  dropped %d  skipped %d  underruns %d",
		st.State, st.Ticks, st.Presents, st.DroppedPresents, st.SkippedTicks, st.AudioUnderruns)
	if !e.screenOn {
		s += "  screen off"
	}
	if e.muted {
		s += "  muted"
	}
	return s
}

func rgb(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}

// Options configures Run.
type Options struct {
	Size   core.Size // watch face in pixels, zero follows the terminal
	Audio  bool
	Logger *log.Logger
}

// Run opens the terminal, starts the bridge and serves events until the
// user quits or ctx ends. It returns the bridge's run result.
func Run(ctx context.Context, b *bridge.Bridge, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	screen.EnableMouse()
	screen.HideCursor()

	var spk *emu.Speaker
	if opts.Audio && b.Audio() != nil {
		spk, err = emu.StartSpeaker(b.Audio())
		if err != nil {
			logger.Warn("audio unavailable", "err", err)
		} else {
			defer spk.Close()
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	surface := emu.NewFrameSurface()
	e := newEmulator(screen, b, surface, spk, opts.Size)

	runErr := make(chan error, 1)
	go func() { runErr <- b.Run(ctx) }()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return // screen finalized
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(time.Second / repaintRate)
	defer ticker.Stop()

	faults := b.Faults()
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case ev := <-events:
			if e.handle(ev) {
				break loop
			}
		case err := <-faults:
			e.fault = err
			logger.Error("core fault", "err", err)
		case <-surface.Updated():
			e.draw()
		case now := <-ticker.C:
			e.holder.Expire(now)
			e.draw()
		}
	}

	b.OnSurfaceDestroyed()
	cancel()
	screen.Fini()
	return <-runErr
}
