// Package glider implements a side-scrolling glide core.
// The player flaps through gaps in a row of gates; it exercises the bridge
// with a fast-changing frame and short, frequent sound effects.
package glider

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/wearbridge/internal/core"
	"github.com/vovakirdan/wearbridge/internal/registry"
)

// Physics constants, in pixels per tick at the default tick rate.
const (
	Gravity      = 0.45
	FlapImpulse  = -5.5
	MaxFallSpeed = 7.0
	PlayerX      = 60
	PlayerSize   = 8
	GroundHeight = 12
)

// Game implements the glider simulation core.
type Game struct {
	runtime core.RuntimeConfig

	playerY   float64 // top of the player hitbox
	playerVel float64
	gates     *GateManager
	score     int
	best      int
	crashed   bool
	menuOpen  bool
	held      bool // flap was active on the previous tick
	ticks     uint64

	buf     *core.PixelBuffer
	sfx     chirp
	pending []core.AudioFrame
}

// New creates a glider core.
func New() *Game {
	return &Game{}
}

// ID returns the unique identifier for this core.
func (g *Game) ID() string {
	return "glider"
}

// Title returns the display name for this core.
func (g *Game) Title() string {
	return "Glider"
}

// Reset initializes or restarts the simulation.
func (g *Game) Reset(runtime core.RuntimeConfig) error {
	if runtime.TickRate <= 0 {
		return fmt.Errorf("glider: invalid tick rate %d", runtime.TickRate)
	}
	g.runtime = runtime
	g.ticks = 0
	g.best = 0
	g.sfx = chirp{}
	g.pending = g.pending[:0]
	if g.buf == nil {
		g.buf = core.NewPixelBuffer(core.NativeWidth, core.NativeHeight)
	}
	if g.gates == nil {
		g.gates = NewGateManager(runtime.Seed, core.NativeWidth, core.NativeHeight-GroundHeight)
	} else {
		g.gates.Reset(runtime.Seed)
	}
	g.restart()
	return nil
}

// restart starts a new flight. The gate sequence continues from the RNG.
func (g *Game) restart() {
	g.playerY = float64(core.NativeHeight-GroundHeight) / 2
	g.playerVel = 0
	g.score = 0
	g.crashed = false
	g.menuOpen = false
	g.held = false
	g.gates.Clear()
}

// Tick advances the simulation by one step.
func (g *Game) Tick(cmd core.CommandFrame) error {
	if g.gates == nil {
		return errors.New("glider: tick before reset")
	}
	g.ticks++
	defer g.mixAudio()

	if cmd.Has(core.ActionMenu) {
		g.menuOpen = !g.menuOpen
	}
	if g.menuOpen {
		return nil
	}

	if g.crashed {
		if cmd.Has(core.ActionConfirm) {
			g.restart()
		}
		return nil
	}

	// Flapping is edge-triggered so a held button does not hover.
	flap := cmd.Has(core.ActionFire) || cmd.MoveY > 0
	if flap && !g.held {
		g.playerVel = FlapImpulse
		g.sfx.start(660, g.samplesPerTick()*2)
	}
	g.held = flap

	g.playerVel += Gravity
	if g.playerVel > MaxFallSpeed {
		g.playerVel = MaxFallSpeed
	}
	g.playerY += g.playerVel

	if passed := g.gates.Update(PlayerX); passed > 0 {
		g.score += passed
		g.best = max(g.best, g.score)
		g.sfx.start(990, g.samplesPerTick()*3)
	}

	floor := core.NativeHeight - GroundHeight
	switch {
	case g.playerY < 0:
		g.playerY = 0
		g.crash()
	case int(g.playerY)+PlayerSize >= floor:
		g.playerY = float64(floor - PlayerSize)
		g.crash()
	case g.gates.Collides(g.playerRect()):
		g.crash()
	}
	return nil
}

func (g *Game) crash() {
	g.crashed = true
	g.sfx.start(110, g.samplesPerTick()*8)
}

func (g *Game) playerRect() core.Rect {
	return core.NewRect(PlayerX, int(g.playerY), PlayerSize, PlayerSize)
}

// Score returns the gates passed in the current flight.
func (g *Game) Score() int {
	return g.score
}

// Best returns the highest score since the last reset.
func (g *Game) Best() int {
	return g.best
}

// Crashed reports whether the current flight has ended.
func (g *Game) Crashed() bool {
	return g.crashed
}

// MenuOpen reports whether the menu overlay is shown.
func (g *Game) MenuOpen() bool {
	return g.menuOpen
}

// Altitude returns the top of the player hitbox in pixels.
func (g *Game) Altitude() float64 {
	return g.playerY
}

func init() {
	registry.Register("glider", func() registry.Core {
		return New()
	})
}
