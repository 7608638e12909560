package bridge

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/vovakirdan/wearbridge/internal/config"
	"github.com/vovakirdan/wearbridge/internal/core"
)

// MaxPointers is the number of simultaneously tracked touch contacts.
const MaxPointers = 8

// EventKind classifies a raw device input event.
type EventKind uint8

const (
	EventTouchDown EventKind = iota + 1
	EventTouchMove
	EventTouchUp
	EventRotary
	EventKeyDown
	EventKeyUp
	// EventCancel releases every held contact and key, e.g. when the
	// surface goes away mid-gesture.
	EventCancel
)

func (k EventKind) String() string {
	switch k {
	case EventTouchDown:
		return "TouchDown"
	case EventTouchMove:
		return "TouchMove"
	case EventTouchUp:
		return "TouchUp"
	case EventRotary:
		return "Rotary"
	case EventKeyDown:
		return "KeyDown"
	case EventKeyUp:
		return "KeyUp"
	case EventCancel:
		return "Cancel"
	default:
		return "Unknown"
	}
}

// Key is a physical button as seen by the bridge. Hosts map their native
// key codes onto these.
type Key uint8

const (
	KeyNone Key = iota
	KeyForward
	KeyBack
	KeyStrafeLeft
	KeyStrafeRight
	KeyTurnLeft
	KeyTurnRight
	KeyFire
	KeyUse
	KeyMenu
	KeyConfirm
	KeyRun
	KeyWeapon1
	KeyWeapon2
	KeyWeapon3
	KeyWeapon4
	KeyWeapon5
	KeyWeapon6
	KeyWeapon7
	KeyStemPrimary   // watch crown press, opens the menu
	KeyStemSecondary // second side button, cycles weapons
	keyCount
)

// RawEvent is one device input event as delivered by the host.
type RawEvent struct {
	Kind EventKind

	// Touch: pointer id 0..MaxPointers-1 and position in surface pixels.
	Pointer int
	X, Y    float64

	// Surface is the surface size the position refers to. Push fills it in
	// with the current size when left empty.
	Surface core.Size

	// Rotary: signed detent count, positive is clockwise.
	Delta int

	// Key events.
	Key Key
}

type pointer struct {
	active bool
	zone   zone
	x, y   float64 // normalized
}

// inputState is the state carried from one batch to the next. It is a plain
// value so translating a batch never mutates the committed state.
type inputState struct {
	pointers [MaxPointers]pointer
	keys     [keyCount]bool
	weapon   int // last selected weapon, 0 before the first selection
}

// Translator turns raw device input into one CommandFrame per tick.
//
// Push may be called from any goroutine. Next and Translate belong to the
// frame pump goroutine.
type Translator struct {
	cfg    config.InputConfig
	layout Layout

	mu      sync.Mutex
	pending []RawEvent
	spare   []RawEvent
	surface core.Size
	cap     int

	state inputState

	dropped *counter
	log     *log.Logger
	diag    rate.Sometimes
}

// NewTranslator creates a translator for the given input configuration.
func NewTranslator(cfg config.InputConfig, logger *log.Logger) *Translator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	capacity := cfg.EventBuffer
	if capacity < 1 {
		capacity = 1
	}
	return &Translator{
		cfg:     cfg,
		layout:  NewLayout(cfg),
		pending: make([]RawEvent, 0, capacity),
		spare:   make([]RawEvent, 0, capacity),
		cap:     capacity,
		dropped: &counter{},
		log:     logger,
		diag:    rate.Sometimes{Interval: 5 * time.Second},
	}
}

// Layout returns the control layout in use.
func (t *Translator) Layout() Layout {
	return t.layout
}

// Dropped returns the number of raw events discarded on a full buffer.
func (t *Translator) Dropped() uint64 {
	return t.dropped.load()
}

func (t *Translator) useCounters(c *counters) {
	t.dropped = &c.inputDropped
}

// SetSurfaceSize sets the size used for events that carry none.
func (t *Translator) SetSurfaceSize(size core.Size) {
	t.mu.Lock()
	t.surface = size
	t.mu.Unlock()
}

// Push queues a raw event for the next tick. Consecutive moves of the same
// pointer collapse into the latest one and consecutive rotary deltas are
// summed. When the buffer is still full the oldest move or rotary event is
// dropped, or the oldest event if there is none, so contacts and keys are
// not lost while positions are.
func (t *Translator) Push(ev RawEvent) {
	t.mu.Lock()
	if ev.Surface.Empty() {
		ev.Surface = t.surface
	}

	if n := len(t.pending); n > 0 {
		last := &t.pending[n-1]
		switch {
		case ev.Kind == EventTouchMove && last.Kind == EventTouchMove && last.Pointer == ev.Pointer:
			*last = ev
			t.mu.Unlock()
			return
		case ev.Kind == EventRotary && last.Kind == EventRotary:
			last.Delta += ev.Delta
			t.mu.Unlock()
			return
		}
	}

	full := len(t.pending) >= t.cap
	if full {
		i := 0
		for j, p := range t.pending {
			if p.Kind == EventTouchMove || p.Kind == EventRotary {
				i = j
				break
			}
		}
		t.pending = append(t.pending[:i], t.pending[i+1:]...)
	}
	t.pending = append(t.pending, ev)
	t.mu.Unlock()

	if full {
		t.dropped.inc()
		t.diag.Do(func() {
			t.log.Warn("input buffer full, dropped oldest event", "total", t.dropped.load())
		})
	}
}

// drain takes the pending batch. The returned slice is valid until the next
// drain.
func (t *Translator) drain() []RawEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	batch := t.pending
	t.pending = t.spare[:0]
	t.spare = batch
	return batch
}

// Next drains everything pushed since the previous call, translates it and
// commits the resulting state. The frame has no sequence number yet.
func (t *Translator) Next() core.CommandFrame {
	frame, next := t.apply(t.state, t.drain())
	t.state = next
	return frame
}

// Translate returns the frame a batch would produce on top of the current
// state without committing anything. The same batch always yields the same
// frame.
func (t *Translator) Translate(batch []RawEvent) core.CommandFrame {
	frame, _ := t.apply(t.state, batch)
	return frame
}

// Contact returns the normalized position of the contact steering the
// joystick, if any. Pump goroutine only.
func (t *Translator) Contact() (nx, ny float64, ok bool) {
	for _, p := range t.state.pointers {
		if p.active && p.zone == zoneJoystick {
			return p.x, p.y, true
		}
	}
	return 0, 0, false
}

// Reset releases all held contacts and keys and forgets the weapon.
func (t *Translator) Reset() {
	t.drain()
	t.state = inputState{}
}

func (t *Translator) apply(s inputState, batch []RawEvent) (core.CommandFrame, inputState) {
	var (
		pulse   core.Action // raised by presses inside this batch
		detents int
		weapon  int
	)

	for _, ev := range batch {
		switch ev.Kind {
		case EventTouchDown:
			nx, ny, ok := normalize(ev)
			if !ok || ev.Pointer < 0 || ev.Pointer >= MaxPointers {
				continue
			}
			z := t.layout.hit(nx, ny)
			if z == zoneNone {
				continue
			}
			s.pointers[ev.Pointer] = pointer{active: true, zone: z, x: nx, y: ny}
			switch z {
			case zoneFire:
				pulse |= core.ActionFire
			case zoneUse:
				pulse |= core.ActionUse
			case zoneMenu:
				pulse |= core.ActionMenu
			case zoneConfirm:
				pulse |= core.ActionConfirm
			case zoneWeapon:
				s.weapon = cycleWeapon(s.weapon)
				weapon = s.weapon
			}

		case EventTouchMove:
			nx, ny, ok := normalize(ev)
			if !ok || ev.Pointer < 0 || ev.Pointer >= MaxPointers {
				continue
			}
			// The zone is fixed at touch-down so a thumb sliding off the
			// joystick keeps steering.
			if p := &s.pointers[ev.Pointer]; p.active {
				p.x, p.y = nx, ny
			}

		case EventTouchUp:
			if ev.Pointer >= 0 && ev.Pointer < MaxPointers {
				s.pointers[ev.Pointer] = pointer{}
			}

		case EventRotary:
			detents += ev.Delta

		case EventKeyDown:
			if ev.Key == KeyNone || ev.Key >= keyCount || s.keys[ev.Key] {
				continue
			}
			s.keys[ev.Key] = true
			switch k := ev.Key; {
			case k == KeyFire:
				pulse |= core.ActionFire
			case k == KeyUse:
				pulse |= core.ActionUse
			case k == KeyMenu || k == KeyStemPrimary:
				pulse |= core.ActionMenu
			case k == KeyConfirm:
				pulse |= core.ActionConfirm
			case k == KeyRun:
				pulse |= core.ActionRun
			case k >= KeyWeapon1 && k <= KeyWeapon7:
				s.weapon = int(k-KeyWeapon1) + 1
				weapon = s.weapon
			case k == KeyStemSecondary:
				s.weapon = cycleWeapon(s.weapon)
				weapon = s.weapon
			}

		case EventKeyUp:
			if ev.Key < keyCount {
				s.keys[ev.Key] = false
			}

		case EventCancel:
			s.pointers = [MaxPointers]pointer{}
			s.keys = [keyCount]bool{}
		}
	}

	frame := core.CommandFrame{Actions: pulse, Weapon: weapon}

	// Movement: the lowest-numbered contact on the joystick steers.
	for _, p := range s.pointers {
		if !p.active {
			continue
		}
		switch p.zone {
		case zoneJoystick:
			if frame.MoveX == 0 && frame.MoveY == 0 {
				frame.MoveX, frame.MoveY = t.layout.stick(p.x, p.y)
			}
		case zoneFire:
			frame.Actions |= core.ActionFire
		case zoneUse:
			frame.Actions |= core.ActionUse
		}
	}

	frame.MoveX += keyAxis(s.keys[KeyStrafeRight], s.keys[KeyStrafeLeft])
	frame.MoveY += keyAxis(s.keys[KeyForward], s.keys[KeyBack])
	frame.MoveX = core.ClampF(frame.MoveX, -1, 1)
	frame.MoveY = core.ClampF(frame.MoveY, -1, 1)

	if s.keys[KeyFire] {
		frame.Actions |= core.ActionFire
	}
	if s.keys[KeyUse] {
		frame.Actions |= core.ActionUse
	}
	if s.keys[KeyRun] {
		frame.Actions |= core.ActionRun
	}

	turn := float64(detents)*t.cfg.RotaryGain +
		keyAxis(s.keys[KeyTurnRight], s.keys[KeyTurnLeft])*t.cfg.KeyTurnRate
	frame.Turn = core.ClampF(turn, -t.cfg.MaxTurn, t.cfg.MaxTurn)

	return frame, s
}

func normalize(ev RawEvent) (float64, float64, bool) {
	if ev.Surface.Empty() {
		return 0, 0, false
	}
	return ev.X / float64(ev.Surface.W), ev.Y / float64(ev.Surface.H), true
}

func keyAxis(pos, neg bool) float64 {
	switch {
	case pos && !neg:
		return 1
	case neg && !pos:
		return -1
	default:
		return 0
	}
}

func cycleWeapon(w int) int {
	return w%core.MaxWeapon + 1
}
