// Package desktop shows the watch face in a GLFW window. Build with the glfw
// tag; the window code needs cgo and the GLFW system headers.
package desktop

import (
	"math"

	"github.com/vovakirdan/wearbridge/internal/core"
)

// cursorToSurface converts a cursor position in window coordinates to
// surface pixels. On HiDPI screens the framebuffer is larger than the
// window, and the surface follows the framebuffer.
func cursorToSurface(cx, cy float64, win, fb core.Size) (x, y float64) {
	if win.Empty() {
		return 0, 0
	}
	x = cx * float64(fb.W) / float64(win.W)
	y = cy * float64(fb.H) / float64(win.H)
	x = math.Max(0, math.Min(x, float64(fb.W)-0.5))
	y = math.Max(0, math.Min(y, float64(fb.H)-0.5))
	return x, y
}

// scrollAccumulator turns smooth scroll offsets into whole bezel detents.
// Mouse wheels report whole steps; trackpads report fractions that add up.
type scrollAccumulator struct {
	rest float64
}

// add takes a vertical scroll offset and returns the detents to report.
// Scrolling down (negative offset) turns clockwise, matching the terminal
// hosts.
func (s *scrollAccumulator) add(yoff float64) int {
	s.rest -= yoff
	n := int(s.rest) // truncates toward zero
	s.rest -= float64(n)
	return n
}
