package bridge

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/vovakirdan/wearbridge/internal/core"
)

// Overlay colours per zone, drawn over the frame at half opacity.
var (
	overlayJoystick = color.NRGBA{R: 255, G: 255, B: 255, A: 0x80}
	overlayFire     = color.NRGBA{R: 255, G: 64, B: 64, A: 0x80}
	overlayUse      = color.NRGBA{R: 64, G: 255, B: 64, A: 0x80}
	overlayWeapon   = color.NRGBA{R: 255, G: 220, B: 64, A: 0x80}
	overlayMenu     = color.NRGBA{R: 64, G: 128, B: 255, A: 0x80}
	overlayConfirm  = color.NRGBA{R: 64, G: 230, B: 230, A: 0x80}
)

// contact is the joystick touch shown by the overlay.
type contact struct {
	x, y float64 // normalized
	ok   bool
}

// zoneRect maps a normalized zone onto a surface of the given size.
func zoneRect(z core.Zone, size core.Size) image.Rectangle {
	r := image.Rect(
		int(math.Floor(z.X*float64(size.W))),
		int(math.Floor(z.Y*float64(size.H))),
		int(math.Ceil((z.X+z.W)*float64(size.W))),
		int(math.Ceil((z.Y+z.H)*float64(size.H))),
	)
	return r.Intersect(image.Rect(0, 0, size.W, size.H))
}

// drawOverlay outlines every control zone of l on dst and draws the
// joystick as a ring with a thumb at the current contact, or at rest.
func drawOverlay(dst *image.RGBA, l Layout, c contact) {
	size := core.Size{W: dst.Rect.Dx(), H: dst.Rect.Dy()}
	th := max(1, min(size.W, size.H)/96)

	for _, z := range []struct {
		zone core.Zone
		col  color.NRGBA
	}{
		{l.Fire, overlayFire},
		{l.Use, overlayUse},
		{l.Weapon, overlayWeapon},
		{l.Menu, overlayMenu},
		{l.Confirm, overlayConfirm},
	} {
		outline(dst, zoneRect(z.zone, size), th, z.col)
	}

	js := zoneRect(l.Joystick, size)
	if js.Empty() {
		return
	}
	src := image.NewUniform(overlayJoystick)
	cx, cy := (js.Min.X+js.Max.X)/2, (js.Min.Y+js.Max.Y)/2
	radius := min(js.Dx(), js.Dy())/2 - 1
	if radius > th {
		xdraw.DrawMask(dst, js, src, image.Point{}, &ring{cx: cx, cy: cy, outer: radius, inner: radius - th}, js.Min, xdraw.Over)
	}

	tr := 3 * th
	tx, ty := cx, cy
	if c.ok {
		tx = int(c.x * float64(size.W))
		ty = int(c.y * float64(size.H))
	}
	// Keep the thumb inside the zone even when the finger slid off it.
	tx = core.Clamp(tx, js.Min.X+tr, js.Max.X-tr-1)
	ty = core.Clamp(ty, js.Min.Y+tr, js.Max.Y-tr-1)
	thumb := image.Rect(tx-tr, ty-tr, tx+tr+1, ty+tr+1).Intersect(js)
	xdraw.DrawMask(dst, thumb, src, image.Point{}, &ring{cx: tx, cy: ty, outer: tr, inner: -1}, thumb.Min, xdraw.Over)
}

// outline draws the border of r, th pixels wide.
func outline(dst *image.RGBA, r image.Rectangle, th int, col color.NRGBA) {
	if r.Empty() {
		return
	}
	src := image.NewUniform(col)
	for _, side := range []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+th),
		image.Rect(r.Min.X, r.Max.Y-th, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y+th, r.Min.X+th, r.Max.Y-th),
		image.Rect(r.Max.X-th, r.Min.Y+th, r.Max.X, r.Max.Y-th),
	} {
		xdraw.Draw(dst, side.Intersect(r), src, image.Point{}, xdraw.Over)
	}
}

// ring is an alpha mask that is opaque between two radii around a center.
// A negative inner radius gives a filled disc.
type ring struct {
	cx, cy       int
	outer, inner int
}

func (m *ring) ColorModel() color.Model { return color.AlphaModel }

func (m *ring) Bounds() image.Rectangle {
	return image.Rect(m.cx-m.outer, m.cy-m.outer, m.cx+m.outer+1, m.cy+m.outer+1)
}

func (m *ring) At(x, y int) color.Color {
	dx, dy := x-m.cx, y-m.cy
	d := dx*dx + dy*dy
	if d <= m.outer*m.outer && (m.inner < 0 || d > m.inner*m.inner) {
		return color.Alpha{A: 0xff}
	}
	return color.Alpha{}
}
