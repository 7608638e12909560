// Package core provides the value types shared by the bridge, the simulation
// cores and the platform hosts. It has no dependencies on any host toolkit so
// cores and the bridge stay pure and testable.
package core

import "fmt"

// Size is a surface or buffer size in pixels.
type Size struct {
	W, H int
}

// Empty reports whether the size has no drawable area.
func (s Size) Empty() bool {
	return s.W <= 0 || s.H <= 0
}

// String formats the size as WxH.
func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.W, s.H)
}

// Rect represents an axis-aligned rectangle in pixel coordinates.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains returns true if the point (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Center returns the center point of the rectangle.
func (r Rect) Center() (int, int) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Fit returns the largest rectangle with the aspect ratio of src that fits
// inside dst, centered. Leftover space is split evenly between the borders,
// the odd pixel going to the right/bottom border.
func Fit(src, dst Size) Rect {
	if src.Empty() || dst.Empty() {
		return Rect{}
	}

	// Compare src.W/src.H against dst.W/dst.H without floating point.
	if src.W*dst.H >= dst.W*src.H {
		// Source is wider: full width, letterbox top and bottom.
		h := dst.W * src.H / src.W
		if h < 1 {
			h = 1
		}
		return Rect{X: 0, Y: (dst.H - h) / 2, W: dst.W, H: h}
	}

	// Source is taller: full height, pillarbox left and right.
	w := dst.H * src.W / src.H
	if w < 1 {
		w = 1
	}
	return Rect{X: (dst.W - w) / 2, Y: 0, W: w, H: dst.H}
}

// Zone is a rectangle in normalized surface coordinates, where (0, 0) is the
// top-left corner of the surface and (1, 1) the bottom-right one.
type Zone struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

// Contains reports whether the normalized point (nx, ny) is inside the zone.
func (z Zone) Contains(nx, ny float64) bool {
	return nx >= z.X && nx < z.X+z.W && ny >= z.Y && ny < z.Y+z.H
}

// Center returns the normalized center of the zone.
func (z Zone) Center() (float64, float64) {
	return z.X + z.W/2, z.Y + z.H/2
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Abs returns the absolute value of an integer.
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
