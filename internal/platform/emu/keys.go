package emu

import (
	"slices"
	"time"

	"github.com/vovakirdan/wearbridge/internal/bridge"
)

// DefaultHold is how long a key counts as held after its last repeat.
// Terminals report presses and auto-repeats but no releases.
const DefaultHold = 150 * time.Millisecond

// keyTable maps terminal key names to bridge keys. Upper-case movement
// letters arrive with shift held and also engage run.
var keyTable = map[string][]bridge.Key{
	"up":    {bridge.KeyForward},
	"w":     {bridge.KeyForward},
	"down":  {bridge.KeyBack},
	"s":     {bridge.KeyBack},
	"a":     {bridge.KeyStrafeLeft},
	"d":     {bridge.KeyStrafeRight},
	"left":  {bridge.KeyTurnLeft},
	"q":     {bridge.KeyTurnLeft},
	"right": {bridge.KeyTurnRight},
	"e":     {bridge.KeyTurnRight},
	"W":     {bridge.KeyForward, bridge.KeyRun},
	"S":     {bridge.KeyBack, bridge.KeyRun},
	"A":     {bridge.KeyStrafeLeft, bridge.KeyRun},
	"D":     {bridge.KeyStrafeRight, bridge.KeyRun},
	" ":     {bridge.KeyFire},
	"space": {bridge.KeyFire},
	"f":     {bridge.KeyUse},
	"esc":   {bridge.KeyMenu},
	"enter": {bridge.KeyConfirm},
	"m":     {bridge.KeyStemPrimary},
	"tab":   {bridge.KeyStemSecondary},
	"1":     {bridge.KeyWeapon1},
	"2":     {bridge.KeyWeapon2},
	"3":     {bridge.KeyWeapon3},
	"4":     {bridge.KeyWeapon4},
	"5":     {bridge.KeyWeapon5},
	"6":     {bridge.KeyWeapon6},
	"7":     {bridge.KeyWeapon7},
}

// KeysFor returns the bridge keys bound to a terminal key name, or nil.
func KeysFor(name string) []bridge.Key {
	return keyTable[name]
}

// Control is an emulator action that does not reach the core.
type Control int

const (
	ControlNone   Control = iota
	ControlQuit           // leave the emulator
	ControlPause          // toggle an explicit pause
	ControlScreen         // switch the watch screen off or on
	ControlMute           // toggle speaker output
	ControlHelp           // toggle the full help
)

// ControlFor returns the emulator control bound to a terminal key name.
func ControlFor(name string) Control {
	switch name {
	case "ctrl+c", "ctrl+q":
		return ControlQuit
	case "p":
		return ControlPause
	case "z":
		return ControlScreen
	case "v":
		return ControlMute
	case "?":
		return ControlHelp
	}
	return ControlNone
}

// KeyHolder turns press-and-repeat key reports into down/up pairs. A key
// goes down on its first report and up once no repeat arrived for the hold
// time. It is not safe for concurrent use.
type KeyHolder struct {
	hold  time.Duration
	until map[bridge.Key]time.Time
	send  func(bridge.RawEvent)
}

// NewKeyHolder creates a holder delivering events to send.
func NewKeyHolder(hold time.Duration, send func(bridge.RawEvent)) *KeyHolder {
	if hold <= 0 {
		hold = DefaultHold
	}
	return &KeyHolder{
		hold:  hold,
		until: make(map[bridge.Key]time.Time),
		send:  send,
	}
}

// Press reports a key press or repeat at now.
func (h *KeyHolder) Press(k bridge.Key, now time.Time) {
	if _, held := h.until[k]; !held {
		h.send(bridge.RawEvent{Kind: bridge.EventKeyDown, Key: k})
	}
	h.until[k] = now.Add(h.hold)
}

// Expire releases every key whose hold ran out by now.
func (h *KeyHolder) Expire(now time.Time) {
	var expired []bridge.Key
	for k, t := range h.until {
		if !now.Before(t) {
			expired = append(expired, k)
		}
	}
	h.release(expired)
}

// ReleaseAll releases every held key.
func (h *KeyHolder) ReleaseAll() {
	keys := make([]bridge.Key, 0, len(h.until))
	for k := range h.until {
		keys = append(keys, k)
	}
	h.release(keys)
}

// Held returns the number of keys currently down.
func (h *KeyHolder) Held() int {
	return len(h.until)
}

func (h *KeyHolder) release(keys []bridge.Key) {
	// Stable order keeps the event stream reproducible.
	slices.Sort(keys)
	for _, k := range keys {
		delete(h.until, k)
		h.send(bridge.RawEvent{Kind: bridge.EventKeyUp, Key: k})
	}
}
