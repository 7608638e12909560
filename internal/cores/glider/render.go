package glider

import (
	"errors"
	"image/color"

	"github.com/vovakirdan/wearbridge/internal/core"
)

// Palette
var (
	colorSky    = color.RGBA{R: 90, G: 160, B: 220, A: 255}
	colorGround = color.RGBA{R: 70, G: 140, B: 60, A: 255}
	colorGate   = color.RGBA{R: 40, G: 110, B: 40, A: 255}
	colorCap    = color.RGBA{R: 30, G: 80, B: 30, A: 255}
	colorPlayer = color.RGBA{R: 250, G: 210, B: 50, A: 255}
	colorCrash  = color.RGBA{R: 220, G: 50, B: 40, A: 255}
	colorPip    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colorMenu   = color.RGBA{R: 20, G: 20, B: 90, A: 255}
)

// capHeight is the darker lip drawn where a gate meets its gap.
const capHeight = 4

// Render draws the current state into the core's buffer.
func (g *Game) Render() (*core.PixelBuffer, error) {
	if g.gates == nil || g.buf == nil {
		return nil, errors.New("glider: render before reset")
	}
	w, h := g.buf.Width(), g.buf.Height()
	floor := h - GroundHeight

	g.buf.DrawRect(core.NewRect(0, 0, w, floor), colorSky)
	g.buf.DrawRect(core.NewRect(0, floor, w, GroundHeight), colorGround)

	for _, gt := range g.gates.Gates() {
		top := gt.TopRect()
		bottom := gt.BottomRect(floor)
		g.buf.DrawRect(top, colorGate)
		g.buf.DrawRect(bottom, colorGate)
		g.buf.DrawRect(core.NewRect(top.X, top.Bottom()-capHeight, GateWidth, capHeight), colorCap)
		g.buf.DrawRect(core.NewRect(bottom.X, bottom.Y, GateWidth, capHeight), colorCap)
	}

	c := colorPlayer
	if g.crashed {
		c = colorCrash
	}
	g.buf.DrawRect(g.playerRect(), c)

	// Score as a row of pips, ten per row.
	for i := 0; i < g.score; i++ {
		g.buf.DrawRect(core.NewRect(4+(i%10)*6, 4+(i/10)*6, 4, 4), colorPip)
	}

	if g.menuOpen {
		g.buf.DrawRect(core.NewRect(w/4, h/3, w/2, h/3), colorMenu)
	}
	return g.buf, nil
}
