// Package corridor implements a small deterministic grid raycaster.
// It stands in for the real engine so the bridge can be exercised end to end:
// the player walks a fixed level, opens doors and shoots target blocks.
package corridor

import (
	"errors"
	"fmt"
	"math"

	"github.com/vovakirdan/wearbridge/internal/core"
	"github.com/vovakirdan/wearbridge/internal/registry"
)

// ErrInjectedFault is returned by Tick once the configured fault point is reached.
var ErrInjectedFault = errors.New("corridor: injected fault")

// Movement tuning, in cells and radians per tick.
const (
	moveSpeed  = 0.09
	runFactor  = 1.8
	turnSpeed  = 0.12
	playerSize = 0.2
	useReach   = 1.5
)

// Options tune a core instance.
type Options struct {
	// FaultAfterTicks makes Tick fail once this many ticks succeeded.
	// Zero disables the fault.
	FaultAfterTicks uint64
}

// defaultOptions is used by the registry factory.
var defaultOptions Options

// SetFaultAfter sets the fault point for cores created through the registry.
func SetFaultAfter(ticks uint64) {
	defaultOptions.FaultAfterTicks = ticks
}

// Game implements the corridor simulation core.
type Game struct {
	opts    Options
	runtime core.RuntimeConfig
	level   *Level

	posX, posY float64 // player position in cells
	angle      float64 // view direction, clockwise from +x

	weapon   int
	cooldown int // ticks until the next shot
	flash    int // ticks of muzzle flash left
	menuOpen bool
	score    int
	ticks    uint64

	buf     *core.PixelBuffer
	tone    tone
	pending []core.AudioFrame
}

// New creates a corridor core with the registry defaults.
func New() *Game {
	return NewWithOptions(defaultOptions)
}

// NewWithOptions creates a corridor core with explicit options.
func NewWithOptions(opts Options) *Game {
	return &Game{opts: opts}
}

// ID returns the unique identifier for this core.
func (g *Game) ID() string {
	return "corridor"
}

// Title returns the display name for this core.
func (g *Game) Title() string {
	return "Corridor Demo"
}

// Reset initializes or restarts the simulation.
func (g *Game) Reset(runtime core.RuntimeConfig) error {
	if runtime.TickRate <= 0 {
		return fmt.Errorf("corridor: invalid tick rate %d", runtime.TickRate)
	}
	g.runtime = runtime
	g.ticks = 0
	g.tone = tone{}
	g.pending = g.pending[:0]
	if g.buf == nil {
		g.buf = core.NewPixelBuffer(core.NativeWidth, core.NativeHeight)
	}
	g.restart()
	return nil
}

// restart puts the player back at the start of a fresh level.
func (g *Game) restart() {
	g.level = newLevel(g.runtime.Seed)
	g.posX, g.posY = g.level.startX, g.level.startY
	g.angle = 0
	g.weapon = 1
	g.cooldown = 0
	g.flash = 0
	g.menuOpen = false
	g.score = 0
}

// Tick advances the simulation by one step.
func (g *Game) Tick(cmd core.CommandFrame) error {
	if g.level == nil {
		return errors.New("corridor: tick before reset")
	}
	if g.opts.FaultAfterTicks > 0 && g.ticks >= g.opts.FaultAfterTicks {
		return fmt.Errorf("%w after %d ticks", ErrInjectedFault, g.ticks)
	}
	g.ticks++
	defer g.mixAudio()

	if cmd.Has(core.ActionMenu) {
		g.menuOpen = !g.menuOpen
	}
	if g.menuOpen {
		// The only menu entry restarts the level.
		if cmd.Has(core.ActionConfirm) {
			g.restart()
		}
		return nil
	}

	if cmd.Weapon != 0 {
		g.weapon = core.Clamp(cmd.Weapon, 1, core.MaxWeapon)
	}

	g.angle = math.Mod(g.angle+cmd.Turn*turnSpeed, 2*math.Pi)
	if g.angle < 0 {
		g.angle += 2 * math.Pi
	}

	speed := moveSpeed
	if cmd.Has(core.ActionRun) {
		speed *= runFactor
	}
	dirX, dirY := math.Cos(g.angle), math.Sin(g.angle)
	rightX, rightY := -dirY, dirX
	g.move(
		(dirX*cmd.MoveY+rightX*cmd.MoveX)*speed,
		(dirY*cmd.MoveY+rightY*cmd.MoveX)*speed,
	)

	if cmd.Has(core.ActionUse) {
		g.use()
	}

	if g.cooldown > 0 {
		g.cooldown--
	}
	if g.flash > 0 {
		g.flash--
	}
	if cmd.Has(core.ActionFire) && g.cooldown == 0 {
		g.fire()
	}
	return nil
}

// move slides the player along each axis independently so walls can be
// brushed without sticking.
func (g *Game) move(dx, dy float64) {
	if nx := g.posX + dx; !g.blocked(nx, g.posY) {
		g.posX = nx
	}
	if ny := g.posY + dy; !g.blocked(g.posX, ny) {
		g.posY = ny
	}
}

// blocked reports whether a player centered at (x, y) overlaps a solid cell.
func (g *Game) blocked(x, y float64) bool {
	for _, c := range [][2]float64{
		{x - playerSize, y - playerSize},
		{x + playerSize, y - playerSize},
		{x - playerSize, y + playerSize},
		{x + playerSize, y + playerSize},
	} {
		if g.level.solid(int(math.Floor(c[0])), int(math.Floor(c[1]))) {
			return true
		}
	}
	return false
}

// use opens a closed door straight ahead within reach.
func (g *Game) use() {
	hit := g.cast(math.Cos(g.angle), math.Sin(g.angle))
	if hit.cell == cellDoor && hit.dist <= useReach {
		g.level.set(hit.x, hit.y, cellOpen)
		g.tone.start(110, g.samplesPerTick()*4)
	}
}

// fire shoots along the view direction. Target blocks hit are removed.
func (g *Game) fire() {
	g.cooldown = weaponCooldown(g.weapon)
	g.flash = 3

	hit := g.cast(math.Cos(g.angle), math.Sin(g.angle))
	if hit.cell == cellMark {
		g.level.set(hit.x, hit.y, cellFloor)
		g.score++
		g.tone.start(880, g.samplesPerTick()*6)
		return
	}
	g.tone.start(weaponPitch(g.weapon), g.samplesPerTick()*5)
}

// weaponCooldown returns ticks between shots; higher slots fire slower.
func weaponCooldown(w int) int {
	return 3 + w
}

// weaponPitch returns the shot tone of a weapon slot in Hz.
func weaponPitch(w int) float64 {
	return 220 * (1 + 0.25*float64(w-1))
}

// Score returns the number of targets destroyed since the last restart.
func (g *Game) Score() int {
	return g.score
}

// TargetsLeft returns how many target blocks remain in the level.
func (g *Game) TargetsLeft() int {
	if g.level == nil {
		return 0
	}
	return g.level.targets()
}

// Position returns the player position and view angle.
func (g *Game) Position() (x, y, angle float64) {
	return g.posX, g.posY, g.angle
}

// Weapon returns the selected weapon slot.
func (g *Game) Weapon() int {
	return g.weapon
}

// MenuOpen reports whether the menu overlay is shown.
func (g *Game) MenuOpen() bool {
	return g.menuOpen
}

func init() {
	registry.Register("corridor", func() registry.Core {
		return New()
	})
}
