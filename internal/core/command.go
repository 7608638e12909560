package core

import "strings"

// Action is a discrete engine command, abstracted from whatever physical
// control produced it (touch zone, stem button, keyboard).
type Action uint8

const (
	ActionFire    Action = 1 << iota // primary attack, held
	ActionUse                        // open doors / flip switches, held
	ActionMenu                       // toggle the engine menu, edge-triggered
	ActionConfirm                    // confirm a menu entry
	ActionRun                        // speed modifier, held
)

// String returns a human-readable name for the action set.
func (a Action) String() string {
	if a == 0 {
		return "None"
	}
	names := []struct {
		bit  Action
		name string
	}{
		{ActionFire, "Fire"},
		{ActionUse, "Use"},
		{ActionMenu, "Menu"},
		{ActionConfirm, "Confirm"},
		{ActionRun, "Run"},
	}
	var parts []string
	for _, n := range names {
		if a&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "Unknown"
	}
	return strings.Join(parts, "|")
}

// MaxWeapon is the highest weapon slot the engine understands.
const MaxWeapon = 7

// CommandFrame is the translated input for exactly one simulation tick.
// It is a value type; once built it is never modified.
type CommandFrame struct {
	Seq     uint64  // tick number this frame belongs to, starting at 1
	MoveX   float64 // strafe axis in [-1, 1], positive is right
	MoveY   float64 // forward axis in [-1, 1], positive is forward
	Turn    float64 // turn rate for this tick, positive is clockwise
	Actions Action  // discrete actions active during this tick
	Weapon  int     // weapon slot to select this tick, 0 for no change
}

// Has returns true if the given action is active in this frame.
func (f CommandFrame) Has(a Action) bool {
	return f.Actions&a != 0
}

// Neutral reports whether the frame carries no input at all.
// The sequence number is not considered.
func (f CommandFrame) Neutral() bool {
	return f.MoveX == 0 && f.MoveY == 0 && f.Turn == 0 && f.Actions == 0 && f.Weapon == 0
}

// WithSeq returns a copy of the frame stamped with the given tick number.
func (f CommandFrame) WithSeq(seq uint64) CommandFrame {
	f.Seq = seq
	return f
}
