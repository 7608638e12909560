package glider

import (
	"math/rand"

	"github.com/vovakirdan/wearbridge/internal/core"
)

// Gate layout, in pixels.
const (
	GateWidth   = 20
	GateSpacing = 110
	GateSpeed   = 2
	MinGap      = 56
	MaxGap      = 80
	GateMargin  = 16
)

// Gate is a vertical obstacle with a gap to fly through.
type Gate struct {
	X      int  // left edge
	GapY   int  // top of the gap
	GapH   int  // height of the gap
	Passed bool // player has cleared it
}

// TopRect returns the solid part above the gap.
func (gt Gate) TopRect() core.Rect {
	return core.NewRect(gt.X, 0, GateWidth, gt.GapY)
}

// BottomRect returns the solid part below the gap, down to the floor.
func (gt Gate) BottomRect(floor int) core.Rect {
	y := gt.GapY + gt.GapH
	return core.NewRect(gt.X, y, GateWidth, floor-y)
}

// GateManager spawns, scrolls and retires gates.
type GateManager struct {
	gates []Gate
	rng   *rand.Rand
	width int
	floor int
}

// NewGateManager creates a manager for a playfield of the given width whose
// floor is at y = floor.
func NewGateManager(seed int64, width, floor int) *GateManager {
	gm := &GateManager{
		gates: make([]Gate, 0, 4),
		width: width,
		floor: floor,
	}
	gm.Reset(seed)
	return gm
}

// Reset clears all gates and reseeds the RNG.
func (gm *GateManager) Reset(seed int64) {
	gm.rng = rand.New(rand.NewSource(seed))
	gm.Clear()
}

// Clear removes all gates without touching the RNG.
func (gm *GateManager) Clear() {
	gm.gates = gm.gates[:0]
}

// Update scrolls the gates left, retires those off screen and spawns new
// ones. It returns how many gates the player at playerX cleared this tick.
func (gm *GateManager) Update(playerX int) int {
	passed := 0
	for i := range gm.gates {
		gm.gates[i].X -= GateSpeed
		if !gm.gates[i].Passed && gm.gates[i].X+GateWidth < playerX {
			gm.gates[i].Passed = true
			passed++
		}
	}

	kept := gm.gates[:0]
	for _, gt := range gm.gates {
		if gt.X+GateWidth > 0 {
			kept = append(kept, gt)
		}
	}
	gm.gates = kept

	if len(gm.gates) == 0 || gm.gates[len(gm.gates)-1].X < gm.width-GateSpacing {
		gm.spawn()
	}
	return passed
}

func (gm *GateManager) spawn() {
	gapH := MinGap + gm.rng.Intn(MaxGap-MinGap+1)
	lo, hi := GateMargin, gm.floor-GateMargin-gapH
	gapY := lo
	if hi > lo {
		gapY = lo + gm.rng.Intn(hi-lo+1)
	}
	gm.gates = append(gm.gates, Gate{X: gm.width, GapY: gapY, GapH: gapH})
}

// Gates returns the live gates, left to right.
func (gm *GateManager) Gates() []Gate {
	return gm.gates
}

// Collides reports whether r overlaps any solid gate part.
func (gm *GateManager) Collides(r core.Rect) bool {
	for _, gt := range gm.gates {
		if overlaps(r, gt.TopRect()) || overlaps(r, gt.BottomRect(gm.floor)) {
			return true
		}
	}
	return false
}

func overlaps(a, b core.Rect) bool {
	return a.X < b.Right() && b.X < a.Right() && a.Y < b.Bottom() && b.Y < a.Bottom()
}
