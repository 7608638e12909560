package bridge

import (
	"math"

	"github.com/vovakirdan/wearbridge/internal/config"
	"github.com/vovakirdan/wearbridge/internal/core"
)

// zone identifies an on-screen control region.
type zone uint8

const (
	zoneNone zone = iota
	zoneJoystick
	zoneFire
	zoneUse
	zoneWeapon
	zoneMenu
	zoneConfirm
)

func (z zone) String() string {
	switch z {
	case zoneJoystick:
		return "joystick"
	case zoneFire:
		return "fire"
	case zoneUse:
		return "use"
	case zoneWeapon:
		return "weapon"
	case zoneMenu:
		return "menu"
	case zoneConfirm:
		return "confirm"
	default:
		return "none"
	}
}

// Layout places the virtual controls on the surface in normalized
// coordinates: (0,0) is the top-left corner, (1,1) the bottom-right.
type Layout struct {
	Joystick core.Zone
	Fire     core.Zone
	Use      core.Zone
	Weapon   core.Zone
	Menu     core.Zone
	Confirm  core.Zone
	Deadzone float64 // joystick deadzone as a fraction of its radius
}

// NewLayout builds a layout from the input configuration.
func NewLayout(cfg config.InputConfig) Layout {
	return Layout{
		Joystick: cfg.Zones.Joystick,
		Fire:     cfg.Zones.Fire,
		Use:      cfg.Zones.Use,
		Weapon:   cfg.Zones.Weapon,
		Menu:     cfg.Zones.Menu,
		Confirm:  cfg.Zones.Confirm,
		Deadzone: cfg.Deadzone,
	}
}

// hit returns the zone under a normalized point. Small discrete buttons win
// over the large movement and fire areas when they overlap.
func (l Layout) hit(nx, ny float64) zone {
	switch {
	case l.Menu.Contains(nx, ny):
		return zoneMenu
	case l.Confirm.Contains(nx, ny):
		return zoneConfirm
	case l.Weapon.Contains(nx, ny):
		return zoneWeapon
	case l.Use.Contains(nx, ny):
		return zoneUse
	case l.Fire.Contains(nx, ny):
		return zoneFire
	case l.Joystick.Contains(nx, ny):
		return zoneJoystick
	default:
		return zoneNone
	}
}

// stick converts a contact inside the joystick zone into movement axes.
// The zone center is rest; its edges are full deflection. Up is forward
// (positive y). Deflection inside the deadzone is zero and the remaining
// range is rescaled so output starts at 0 at the deadzone edge.
func (l Layout) stick(nx, ny float64) (x, y float64) {
	cx, cy := l.Joystick.Center()
	hw, hh := l.Joystick.W/2, l.Joystick.H/2
	if hw <= 0 || hh <= 0 {
		return 0, 0
	}

	dx := (nx - cx) / hw
	dy := (cy - ny) / hh
	r := math.Hypot(dx, dy)
	if r <= l.Deadzone || r == 0 {
		return 0, 0
	}

	mag := (math.Min(r, 1) - l.Deadzone) / (1 - l.Deadzone)
	return dx / r * mag, dy / r * mag
}
