// Package mobile hosts the bridge in an Android activity through
// golang.org/x/mobile. The activity glue needs the android build tag; the
// event routing here is plain Go so it can be tested on any machine.
package mobile

import (
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/event/touch"

	"github.com/vovakirdan/wearbridge/internal/bridge"
	"github.com/vovakirdan/wearbridge/internal/core"
	"github.com/vovakirdan/wearbridge/internal/platform/emu"
)

// keyCodes maps hardware and keyboard keys to bridge keys. Watches mostly
// report the stem buttons; the rest helps on emulators with a keyboard.
var keyCodes = map[key.Code]bridge.Key{
	key.CodeUpArrow:     bridge.KeyForward,
	key.CodeDownArrow:   bridge.KeyBack,
	key.CodeLeftArrow:   bridge.KeyTurnLeft,
	key.CodeRightArrow:  bridge.KeyTurnRight,
	key.CodeW:           bridge.KeyForward,
	key.CodeS:           bridge.KeyBack,
	key.CodeA:           bridge.KeyStrafeLeft,
	key.CodeD:           bridge.KeyStrafeRight,
	key.CodeLeftShift:   bridge.KeyRun,
	key.CodeSpacebar:    bridge.KeyFire,
	key.CodeF:           bridge.KeyUse,
	key.CodeEscape:      bridge.KeyMenu,
	key.CodeReturnEnter: bridge.KeyConfirm,
	key.CodeHome:        bridge.KeyStemPrimary,
	key.CodeTab:         bridge.KeyStemSecondary,
	key.Code1:           bridge.KeyWeapon1,
	key.Code2:           bridge.KeyWeapon2,
	key.Code3:           bridge.KeyWeapon3,
	key.Code4:           bridge.KeyWeapon4,
	key.Code5:           bridge.KeyWeapon5,
	key.Code6:           bridge.KeyWeapon6,
	key.Code7:           bridge.KeyWeapon7,
}

// Router turns x/mobile app events into bridge host callbacks. It is used
// from the app event loop only.
type Router struct {
	host    emu.Host
	surface bridge.Surface

	size    core.Size
	visible bool
	created bool

	// Touch sequences are assigned the lowest free pointer id.
	seqs [bridge.MaxPointers]touch.Sequence
	used [bridge.MaxPointers]bool
}

// NewRouter creates a router presenting to surface.
func NewRouter(host emu.Host, surface bridge.Surface) *Router {
	return &Router{host: host, surface: surface}
}

// Lifecycle handles a lifecycle transition and reports whether the app is
// going away. Visibility creates and destroys the surface; focus maps to
// pause and resume.
func (r *Router) Lifecycle(e lifecycle.Event) (dead bool) {
	switch e.Crosses(lifecycle.StageVisible) {
	case lifecycle.CrossOn:
		r.visible = true
		r.attach()
	case lifecycle.CrossOff:
		r.visible = false
		r.detach()
	}

	switch e.Crosses(lifecycle.StageFocused) {
	case lifecycle.CrossOn:
		r.host.OnResumeRequested()
	case lifecycle.CrossOff:
		r.host.OnPauseRequested()
	}

	return e.To == lifecycle.StageDead
}

// Size handles a window size change.
func (r *Router) Size(e size.Event) {
	next := core.Size{W: e.WidthPx, H: e.HeightPx}
	if next == r.size {
		return
	}
	r.size = next
	if r.created && !next.Empty() {
		r.host.OnSurfaceResized(next)
		return
	}
	r.attach()
}

func (r *Router) attach() {
	if r.created || !r.visible || r.size.Empty() {
		return
	}
	r.created = true
	r.host.OnSurfaceCreated(r.surface, r.size)
}

func (r *Router) detach() {
	if !r.created {
		return
	}
	r.created = false
	r.used = [bridge.MaxPointers]bool{}
	r.host.OnSurfaceDestroyed()
}

// Touch handles a touch event. Sequences beyond the pointer limit are
// ignored.
func (r *Router) Touch(e touch.Event) {
	if !r.created {
		return
	}

	ev := bridge.RawEvent{X: float64(e.X), Y: float64(e.Y), Surface: r.size}
	switch e.Type {
	case touch.TypeBegin:
		id, ok := r.claim(e.Sequence)
		if !ok {
			return
		}
		ev.Kind, ev.Pointer = bridge.EventTouchDown, id
	case touch.TypeMove:
		id, ok := r.lookup(e.Sequence)
		if !ok {
			return
		}
		ev.Kind, ev.Pointer = bridge.EventTouchMove, id
	case touch.TypeEnd:
		id, ok := r.lookup(e.Sequence)
		if !ok {
			return
		}
		r.used[id] = false
		ev.Kind, ev.Pointer = bridge.EventTouchUp, id
	default:
		return
	}
	r.host.OnInputEvent(ev)
}

func (r *Router) claim(seq touch.Sequence) (int, bool) {
	if id, ok := r.lookup(seq); ok {
		return id, true
	}
	for id := range r.used {
		if !r.used[id] {
			r.used[id] = true
			r.seqs[id] = seq
			return id, true
		}
	}
	return 0, false
}

func (r *Router) lookup(seq touch.Sequence) (int, bool) {
	for id := range r.used {
		if r.used[id] && r.seqs[id] == seq {
			return id, true
		}
	}
	return 0, false
}

// Key handles a key event. The volume rocker stands in for the rotary
// bezel. Auto-repeat reports are dropped since the bridge tracks held keys.
func (r *Router) Key(e key.Event) {
	if !r.created {
		return
	}

	switch e.Code {
	case key.CodeVolumeUp, key.CodeVolumeDown:
		if e.Direction == key.DirPress {
			delta := 1
			if e.Code == key.CodeVolumeUp {
				delta = -1
			}
			r.host.OnInputEvent(bridge.RawEvent{Kind: bridge.EventRotary, Delta: delta})
		}
		return
	}

	k, ok := keyCodes[e.Code]
	if !ok {
		return
	}
	switch e.Direction {
	case key.DirPress:
		r.host.OnInputEvent(bridge.RawEvent{Kind: bridge.EventKeyDown, Key: k})
	case key.DirRelease:
		r.host.OnInputEvent(bridge.RawEvent{Kind: bridge.EventKeyUp, Key: k})
	}
}
