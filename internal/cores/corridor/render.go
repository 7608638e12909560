package corridor

import (
	"errors"
	"image/color"
	"math"

	"github.com/vovakirdan/wearbridge/internal/core"
)

// Palette
var (
	colorCeiling = color.RGBA{R: 40, G: 40, B: 48, A: 255}
	colorFloor   = color.RGBA{R: 72, G: 56, B: 40, A: 255}
	colorWall    = color.RGBA{R: 150, G: 150, B: 160, A: 255}
	colorDoor    = color.RGBA{R: 140, G: 90, B: 40, A: 255}
	colorMark    = color.RGBA{R: 200, G: 40, B: 40, A: 255}
	colorCross   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colorFlash   = color.RGBA{R: 255, G: 220, B: 120, A: 255}
	colorMenu    = color.RGBA{R: 20, G: 20, B: 90, A: 255}
	colorBorder  = color.RGBA{R: 230, G: 230, B: 80, A: 255}
)

// fov is the camera plane length; 0.66 gives roughly 66 degrees.
const fov = 0.66

// maxDepth bounds the DDA walk in cells.
const maxDepth = 64

// rayHit describes the first solid cell a ray reaches.
type rayHit struct {
	x, y int
	cell byte
	dist float64 // perpendicular distance
	side int     // 0 for an x-side hit, 1 for a y-side hit
}

// cast walks the grid from the player along (rayX, rayY) using DDA.
func (g *Game) cast(rayX, rayY float64) rayHit {
	mapX, mapY := int(math.Floor(g.posX)), int(math.Floor(g.posY))

	// Axis-parallel rays never cross the other axis.
	deltaX, deltaY := 1e30, 1e30
	if rayX != 0 {
		deltaX = math.Abs(1 / rayX)
	}
	if rayY != 0 {
		deltaY = math.Abs(1 / rayY)
	}

	var stepX, stepY int
	var sideX, sideY float64
	if rayX < 0 {
		stepX = -1
		sideX = (g.posX - float64(mapX)) * deltaX
	} else {
		stepX = 1
		sideX = (float64(mapX) + 1 - g.posX) * deltaX
	}
	if rayY < 0 {
		stepY = -1
		sideY = (g.posY - float64(mapY)) * deltaY
	} else {
		stepY = 1
		sideY = (float64(mapY) + 1 - g.posY) * deltaY
	}

	hit := rayHit{cell: cellWall, dist: maxDepth}
	for i := 0; i < maxDepth; i++ {
		if sideX < sideY {
			sideX += deltaX
			mapX += stepX
			hit.side = 0
		} else {
			sideY += deltaY
			mapY += stepY
			hit.side = 1
		}
		if g.level.solid(mapX, mapY) {
			hit.x, hit.y = mapX, mapY
			hit.cell = g.level.at(mapX, mapY)
			if hit.side == 0 {
				hit.dist = sideX - deltaX
			} else {
				hit.dist = sideY - deltaY
			}
			break
		}
	}
	return hit
}

// Render draws the current view into the core's buffer.
func (g *Game) Render() (*core.PixelBuffer, error) {
	if g.level == nil || g.buf == nil {
		return nil, errors.New("corridor: render before reset")
	}
	w, h := g.buf.Width(), g.buf.Height()

	g.buf.DrawRect(core.NewRect(0, 0, w, h/2), colorCeiling)
	g.buf.DrawRect(core.NewRect(0, h/2, w, h-h/2), colorFloor)

	dirX, dirY := math.Cos(g.angle), math.Sin(g.angle)
	planeX, planeY := -dirY*fov, dirX*fov
	for x := 0; x < w; x++ {
		camX := 2*float64(x)/float64(w) - 1
		hit := g.cast(dirX+planeX*camX, dirY+planeY*camX)

		dist := math.Max(hit.dist, 1e-3)
		lineH := int(float64(h) / dist)
		top := h/2 - lineH/2
		bottom := h/2 + lineH/2
		g.buf.DrawVLine(x, core.Clamp(top, 0, h-1), core.Clamp(bottom, 0, h-1), shade(wallColor(hit.cell), hit.side, dist))
	}

	g.drawHUD(w, h)
	if g.menuOpen {
		g.drawMenu(w, h)
	}
	return g.buf, nil
}

func wallColor(c byte) color.RGBA {
	switch c {
	case cellDoor:
		return colorDoor
	case cellMark:
		return colorMark
	}
	return colorWall
}

// shade darkens a wall colour with distance; y-sides are darker still.
func shade(c color.RGBA, side int, dist float64) color.RGBA {
	f := 1 / (1 + dist*0.15)
	if side == 1 {
		f *= 0.75
	}
	return color.RGBA{
		R: uint8(float64(c.R) * f),
		G: uint8(float64(c.G) * f),
		B: uint8(float64(c.B) * f),
		A: 255,
	}
}

func (g *Game) drawHUD(w, h int) {
	cx, cy := w/2, h/2
	g.buf.DrawRect(core.NewRect(cx-4, cy, 9, 1), colorCross)
	g.buf.DrawRect(core.NewRect(cx, cy-4, 1, 9), colorCross)

	// Weapon slots along the bottom, selected one highlighted.
	for i := 1; i <= core.MaxWeapon; i++ {
		c := color.RGBA{R: 60, G: 60, B: 60, A: 255}
		if i == g.weapon {
			c = colorBorder
		}
		g.buf.DrawRect(core.NewRect(4+(i-1)*8, h-8, 6, 4), c)
	}

	if g.flash > 0 {
		g.buf.DrawRect(core.NewRect(cx-10, h-24, 21, 14), colorFlash)
	}

	// One pip per remaining target.
	for i := 0; i < g.level.targets(); i++ {
		g.buf.DrawRect(core.NewRect(w-8-i*6, 4, 4, 4), colorMark)
	}
}

func (g *Game) drawMenu(w, h int) {
	box := core.NewRect(w/4, h/3, w/2, h/3)
	g.buf.DrawRect(box, colorMenu)
	border := colorBorder
	if (g.ticks/10)%2 == 1 {
		border = colorCross
	}
	g.buf.DrawRect(core.NewRect(box.X, box.Y, box.W, 2), border)
	g.buf.DrawRect(core.NewRect(box.X, box.Bottom()-2, box.W, 2), border)
	g.buf.DrawRect(core.NewRect(box.X, box.Y, 2, box.H), border)
	g.buf.DrawRect(core.NewRect(box.Right()-2, box.Y, 2, box.H), border)
}
