package emu

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/vovakirdan/wearbridge/internal/core"
)

// MinFace is the smallest watch face the emulators lay out, in pixels.
const MinFace = 16

// ParseSize parses a "WxH" surface size in pixels.
func ParseSize(s string) (core.Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return core.Size{}, fmt.Errorf("emu: size %q is not WxH", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return core.Size{}, fmt.Errorf("emu: size %q: bad width: %w", s, err)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return core.Size{}, fmt.Errorf("emu: size %q: bad height: %w", s, err)
	}
	if width < MinFace || height < MinFace {
		return core.Size{}, fmt.Errorf("emu: size %q is below %dx%d", s, MinFace, MinFace)
	}
	return core.Size{W: width, H: height}, nil
}

// FaceSize returns the largest square face that fits a terminal of cols x
// rows cells with reserved rows kept free for status lines. Each cell holds
// two vertical pixels. The side is even so the face fills whole cells.
func FaceSize(cols, rows, reserved int) core.Size {
	side := min(cols, 2*(rows-reserved))
	side -= side % 2
	if side < MinFace {
		side = MinFace
	}
	return core.Size{W: side, H: side}
}

// CellRows returns how many terminal rows a face of the given size uses.
func CellRows(size core.Size) int {
	return (size.H + 1) / 2
}

// CellToPixel maps a terminal cell to the surface position of its center.
func CellToPixel(col, row int) (x, y float64) {
	return float64(col) + 0.5, float64(2*row) + 1
}

// HalfBlocks walks img two pixel rows at a time. fn gets the cell position
// and the colours of its upper and lower half. An odd last row has a black
// lower half.
func HalfBlocks(img *image.RGBA, fn func(col, row int, top, bottom color.RGBA)) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top := img.RGBAAt(x, y)
			bottom := color.RGBA{A: 0xff}
			if y+1 < b.Max.Y {
				bottom = img.RGBAAt(x, y+1)
			}
			fn(x-b.Min.X, (y-b.Min.Y)/2, top, bottom)
		}
	}
}

// Hex formats a colour as #rrggbb.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
