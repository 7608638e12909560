package tcellhost

import (
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/vovakirdan/wearbridge/internal/bridge"
	"github.com/vovakirdan/wearbridge/internal/core"
	"github.com/vovakirdan/wearbridge/internal/platform/emu"
)

type fakeHost struct {
	events    []bridge.RawEvent
	created   []core.Size
	resized   []core.Size
	destroyed int
	pauses    int
	resumes   int
}

func (h *fakeHost) OnSurfaceCreated(_ bridge.Surface, size core.Size) {
	h.created = append(h.created, size)
}
func (h *fakeHost) OnSurfaceResized(size core.Size) { h.resized = append(h.resized, size) }
func (h *fakeHost) OnSurfaceDestroyed() { h.destroyed++ }
func (h *fakeHost) OnInputEvent(ev bridge.RawEvent) { h.events = append(h.events, ev) }
func (h *fakeHost) OnPauseRequested() { h.pauses++ }
func (h *fakeHost) OnResumeRequested() { h.resumes++ }
func (h *fakeHost) Stats() bridge.Stats { return bridge.Stats{Ticks: 3} }

func newTestEmulator(t *testing.T, size core.Size) (*emulator, *fakeHost, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 30)

	host := &fakeHost{}
	e := newEmulator(screen, host, emu.NewFrameSurface(), nil, size)
	e.handle(tcell.NewEventResize(80, 30))
	return e, host, screen
}

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestKeyName(t *testing.T) {
	tests := []struct {
		ev   *tcell.EventKey
		want string
	}{
		{tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), "up"},
		{tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), "esc"},
		{tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl), "ctrl+c"},
		{runeKey('W'), "W"},
		{runeKey(' '), " "},
	}
	for _, tt := range tests {
		if got := keyName(tt.ev); got != tt.want {
			t.Errorf("keyName(%v) = %q, expected %q", tt.ev.Name(), got, tt.want)
		}
	}
}

func TestResizeCreatesSurface(t *testing.T) {
	e, host, _ := newTestEmulator(t, core.Size{})

	if len(host.created) != 1 || host.created[0] != (core.Size{W: 56, H: 56}) {
		t.Fatalf("created = %v, expected [56x56]", host.created)
	}

	e.handle(tcell.NewEventResize(40, 30))
	if len(host.created) != 1 {
		t.Errorf("surface created %d times, expected once", len(host.created))
	}
	if len(host.resized) != 1 || host.resized[0] != (core.Size{W: 40, H: 40}) {
		t.Errorf("resized = %v, expected [40x40]", host.resized)
	}
}

func TestFixedSizeIgnoresResize(t *testing.T) {
	e, host, _ := newTestEmulator(t, core.Size{W: 32, H: 32})

	e.handle(tcell.NewEventResize(100, 50))
	if len(host.resized) != 0 {
		t.Errorf("resized = %v, expected none", host.resized)
	}
	if host.created[0] != (core.Size{W: 32, H: 32}) {
		t.Errorf("created = %v, expected 32x32", host.created[0])
	}
}

func TestKeyPressAndRelease(t *testing.T) {
	e, host, _ := newTestEmulator(t, core.Size{})
	start := time.Unix(100, 0)
	e.now = func() time.Time { return start }

	e.handle(runeKey('w'))
	e.handle(runeKey('w'))
	if len(host.events) != 1 || host.events[0].Kind != bridge.EventKeyDown || host.events[0].Key != bridge.KeyForward {
		t.Fatalf("events = %v, expected one KeyDown Forward", host.events)
	}

	e.holder.Expire(start.Add(emu.DefaultHold))
	if len(host.events) != 2 || host.events[1].Kind != bridge.EventKeyUp {
		t.Errorf("events = %v, expected KeyUp after hold", host.events)
	}
}

func TestQuitKey(t *testing.T) {
	e, _, _ := newTestEmulator(t, core.Size{})

	if e.handle(runeKey('w')) {
		t.Error("handle(w) quit, expected to continue")
	}
	if !e.handle(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)) {
		t.Error("handle(ctrl+c) did not quit")
	}
	if e.holder.Held() != 0 {
		t.Errorf("Held() = %d after quit, expected 0", e.holder.Held())
	}
}

func TestPauseAndScreenToggle(t *testing.T) {
	e, host, _ := newTestEmulator(t, core.Size{})

	e.handle(runeKey('p'))
	e.handle(runeKey('p'))
	if host.pauses != 1 || host.resumes != 1 {
		t.Errorf("pauses, resumes = %d, %d, expected 1, 1", host.pauses, host.resumes)
	}

	e.handle(runeKey('z'))
	if host.destroyed != 1 {
		t.Errorf("destroyed = %d, expected 1", host.destroyed)
	}
	e.handle(runeKey('w'))
	if len(host.events) != 0 {
		t.Errorf("events = %v while screen off, expected none", host.events)
	}
	e.handle(runeKey('z'))
	if len(host.created) != 2 {
		t.Errorf("created %d times, expected 2", len(host.created))
	}
}

func TestMouseTouch(t *testing.T) {
	e, host, _ := newTestEmulator(t, core.Size{})

	e.handle(tcell.NewEventMouse(10, 5, tcell.Button1, tcell.ModNone))
	e.handle(tcell.NewEventMouse(12, 6, tcell.Button1, tcell.ModNone))
	e.handle(tcell.NewEventMouse(12, 6, tcell.ButtonNone, tcell.ModNone))

	kinds := []bridge.EventKind{bridge.EventTouchDown, bridge.EventTouchMove, bridge.EventTouchUp}
	if len(host.events) != len(kinds) {
		t.Fatalf("events = %v, expected %d", host.events, len(kinds))
	}
	for i, k := range kinds {
		if host.events[i].Kind != k {
			t.Errorf("events[%d].Kind = %v, expected %v", i, host.events[i].Kind, k)
		}
	}
	if host.events[0].X != 10.5 || host.events[0].Y != 11 {
		t.Errorf("touch at (%.1f, %.1f), expected (10.5, 11.0)", host.events[0].X, host.events[0].Y)
	}
}

func TestMouseOutsideFaceIgnored(t *testing.T) {
	e, host, _ := newTestEmulator(t, core.Size{W: 20, H: 20})

	e.handle(tcell.NewEventMouse(30, 2, tcell.Button1, tcell.ModNone))
	e.handle(tcell.NewEventMouse(30, 2, tcell.ButtonNone, tcell.ModNone))
	if len(host.events) != 0 {
		t.Errorf("events = %v, expected none", host.events)
	}
}

func TestWheelRotary(t *testing.T) {
	e, host, _ := newTestEmulator(t, core.Size{})

	e.handle(tcell.NewEventMouse(1, 1, tcell.WheelDown, tcell.ModNone))
	e.handle(tcell.NewEventMouse(1, 1, tcell.WheelUp, tcell.ModNone))
	if len(host.events) != 2 || host.events[0].Delta != 1 || host.events[1].Delta != -1 {
		t.Errorf("events = %v, expected rotary +1 then -1", host.events)
	}
}

func TestDrawPaintsHalfBlocks(t *testing.T) {
	e, _, screen := newTestEmulator(t, core.Size{W: 4, H: 4})

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	img.SetRGBA(0, 1, color.RGBA{B: 255, A: 255})
	if err := e.surface.Present(t.Context(), img); err != nil {
		t.Fatalf("Present() error = %v", err)
	}
	e.draw()

	r, _, style, _ := screen.GetContent(0, 0)
	if r != upperHalf {
		t.Fatalf("cell (0,0) = %q, expected %q", r, upperHalf)
	}
	fg, bg, _ := style.Decompose()
	if fg != tcell.NewRGBColor(255, 0, 0) || bg != tcell.NewRGBColor(0, 0, 255) {
		t.Errorf("cell (0,0) colours = %v/%v, expected red over blue", fg, bg)
	}

	// Status line sits below the two face rows.
	r, _, _, _ = screen.GetContent(0, 2)
	if r != 's' {
		t.Errorf("status starts with %q, expected 's' of stopped", r)
	}
}

func TestDrawShowsFault(t *testing.T) {
	e, _, screen := newTestEmulator(t, core.Size{W: 4, H: 4})
	e.fault = &bridge.CoreFault{Phase: "tick", Err: errors.New("boom")}
	e.draw()

	r, _, _, _ := screen.GetContent(0, 2)
	if r != 'c' {
		t.Errorf("fault line starts with %q, expected 'c'", r)
	}
}
