package mobile

import (
	"testing"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/event/touch"

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
func (h *fakeHost) Stats() bridge.Stats { return bridge.Stats{} }

var (
	toVisible = lifecycle.Event{From: lifecycle.StageAlive, To: lifecycle.StageVisible}
	toFocused = lifecycle.Event{From: lifecycle.StageVisible, To: lifecycle.StageFocused}
	toHidden  = lifecycle.Event{From: lifecycle.StageFocused, To: lifecycle.StageAlive}
	toDead    = lifecycle.Event{From: lifecycle.StageAlive, To: lifecycle.StageDead}
)

func newVisibleRouter(t *testing.T) (*Router, *fakeHost) {
	t.Helper()
	host := &fakeHost{}
	r := NewRouter(host, emu.NewFrameSurface())
	r.Size(size.Event{WidthPx: 454, HeightPx: 454})
	r.Lifecycle(toVisible)
	if len(host.created) != 1 {
		t.Fatalf("created = %v, expected one surface", host.created)
	}
	return r, host
}

func TestSurfaceWaitsForSizeAndVisibility(t *testing.T) {
	host := &fakeHost{}
	r := NewRouter(host, emu.NewFrameSurface())

	r.Lifecycle(toVisible)
	if len(host.created) != 0 {
		t.Fatalf("created before size: %v", host.created)
	}
	r.Size(size.Event{WidthPx: 390, HeightPx: 390})
	if len(host.created) != 1 || host.created[0] != (core.Size{W: 390, H: 390}) {
		t.Errorf("created = %v, expected [390x390]", host.created)
	}
}

func TestSizeChangeResizes(t *testing.T) {
	r, host := newVisibleRouter(t)

	r.Size(size.Event{WidthPx: 454, HeightPx: 454})
	if len(host.resized) != 0 {
		t.Errorf("resized on same size: %v", host.resized)
	}
	r.Size(size.Event{WidthPx: 320, HeightPx: 320})
	if len(host.resized) != 1 || host.resized[0] != (core.Size{W: 320, H: 320}) {
		t.Errorf("resized = %v, expected [320x320]", host.resized)
	}
}

func TestLifecycleFocusAndVisibility(t *testing.T) {
	r, host := newVisibleRouter(t)

	r.Lifecycle(toFocused)
	if host.resumes != 1 {
		t.Errorf("resumes = %d, expected 1", host.resumes)
	}

	// Leaving focus and visibility in one step pauses and destroys.
	if r.Lifecycle(toHidden) {
		t.Error("Lifecycle(hidden) reported dead")
	}
	if host.pauses != 1 || host.destroyed != 1 {
		t.Errorf("pauses, destroyed = %d, %d, expected 1, 1", host.pauses, host.destroyed)
	}

	if !r.Lifecycle(toDead) {
		t.Error("Lifecycle(dead) did not report dead")
	}
	if host.destroyed != 1 {
		t.Errorf("destroyed = %d after dead, expected still 1", host.destroyed)
	}
}

func TestTouchAssignsPointers(t *testing.T) {
	r, host := newVisibleRouter(t)

	r.Touch(touch.Event{X: 10, Y: 20, Sequence: 41, Type: touch.TypeBegin})
	r.Touch(touch.Event{X: 30, Y: 40, Sequence: 97, Type: touch.TypeBegin})
	r.Touch(touch.Event{X: 11, Y: 21, Sequence: 41, Type: touch.TypeMove})
	r.Touch(touch.Event{X: 11, Y: 21, Sequence: 41, Type: touch.TypeEnd})
	r.Touch(touch.Event{X: 50, Y: 50, Sequence: 5, Type: touch.TypeBegin})

	want := []struct {
		kind    bridge.EventKind
		pointer int
	}{
		{bridge.EventTouchDown, 0},
		{bridge.EventTouchDown, 1},
		{bridge.EventTouchMove, 0},
		{bridge.EventTouchUp, 0},
		{bridge.EventTouchDown, 0}, // freed id is reused
	}
	if len(host.events) != len(want) {
		t.Fatalf("events = %v, expected %d", host.events, len(want))
	}
	for i, w := range want {
		ev := host.events[i]
		if ev.Kind != w.kind || ev.Pointer != w.pointer {
			t.Errorf("events[%d] = %v pointer %d, expected %v pointer %d", i, ev.Kind, ev.Pointer, w.kind, w.pointer)
		}
	}
	if host.events[0].Surface != (core.Size{W: 454, H: 454}) {
		t.Errorf("Surface = %v, expected 454x454", host.events[0].Surface)
	}
}

func TestTouchPointerLimit(t *testing.T) {
	r, host := newVisibleRouter(t)

	for i := range bridge.MaxPointers + 2 {
		r.Touch(touch.Event{Sequence: touch.Sequence(i), Type: touch.TypeBegin})
	}
	if len(host.events) != bridge.MaxPointers {
		t.Errorf("events = %d, expected %d", len(host.events), bridge.MaxPointers)
	}

	// A move for an unknown sequence is ignored.
	r.Touch(touch.Event{Sequence: 999, Type: touch.TypeMove})
	if len(host.events) != bridge.MaxPointers {
		t.Errorf("events = %d after unknown move, expected %d", len(host.events), bridge.MaxPointers)
	}
}

func TestKeys(t *testing.T) {
	r, host := newVisibleRouter(t)

	r.Key(key.Event{Code: key.CodeSpacebar, Direction: key.DirPress})
	r.Key(key.Event{Code: key.CodeSpacebar, Direction: key.DirNone})
	r.Key(key.Event{Code: key.CodeSpacebar, Direction: key.DirRelease})
	r.Key(key.Event{Code: key.CodeVolumeDown, Direction: key.DirPress})
	r.Key(key.Event{Code: key.CodeVolumeDown, Direction: key.DirRelease})
	r.Key(key.Event{Code: key.CodeZ, Direction: key.DirPress})

	if len(host.events) != 3 {
		t.Fatalf("events = %v, expected 3", host.events)
	}
	if host.events[0].Kind != bridge.EventKeyDown || host.events[0].Key != bridge.KeyFire {
		t.Errorf("events[0] = %v, expected KeyDown Fire", host.events[0])
	}
	if host.events[1].Kind != bridge.EventKeyUp {
		t.Errorf("events[1] = %v, expected KeyUp", host.events[1])
	}
	if host.events[2].Kind != bridge.EventRotary || host.events[2].Delta != 1 {
		t.Errorf("events[2] = %v, expected rotary +1", host.events[2])
	}
}

func TestInputIgnoredWithoutSurface(t *testing.T) {
	host := &fakeHost{}
	r := NewRouter(host, emu.NewFrameSurface())

	r.Touch(touch.Event{Type: touch.TypeBegin})
	r.Key(key.Event{Code: key.CodeW, Direction: key.DirPress})
	if len(host.events) != 0 {
		t.Errorf("events = %v, expected none", host.events)
	}
}
