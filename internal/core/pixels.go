package core

import (
	"image"
	"image/color"
)

// Native engine resolution.
const (
	NativeWidth  = 320
	NativeHeight = 200
)

// PixelBuffer is a fixed-resolution RGBA frame produced by a simulation core.
// The core owns it for the duration of one render call; the bridge copies it
// into its own handoff slot before presenting, so the core may reuse it.
type PixelBuffer struct {
	width  int
	height int
	pix    []uint8 // 4 bytes per pixel, row-major, no padding
}

// NewPixelBuffer creates a new buffer with the given dimensions, cleared to
// opaque black.
func NewPixelBuffer(width, height int) *PixelBuffer {
	b := &PixelBuffer{
		width:  width,
		height: height,
		pix:    make([]uint8, width*height*4),
	}
	b.Fill(color.RGBA{A: 0xff})
	return b
}

// Width returns the buffer width in pixels.
func (b *PixelBuffer) Width() int {
	return b.width
}

// Height returns the buffer height in pixels.
func (b *PixelBuffer) Height() int {
	return b.height
}

// Size returns the buffer dimensions.
func (b *PixelBuffer) Size() Size {
	return Size{W: b.width, H: b.height}
}

// Pix exposes the raw RGBA bytes.
func (b *PixelBuffer) Pix() []uint8 {
	return b.pix
}

// Fill sets every pixel to c.
func (b *PixelBuffer) Fill(c color.RGBA) {
	for i := 0; i < len(b.pix); i += 4 {
		b.pix[i] = c.R
		b.pix[i+1] = c.G
		b.pix[i+2] = c.B
		b.pix[i+3] = c.A
	}
}

// Set writes a pixel. Out-of-bounds coordinates are silently ignored.
func (b *PixelBuffer) Set(x, y int, c color.RGBA) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	i := (y*b.width + x) * 4
	b.pix[i] = c.R
	b.pix[i+1] = c.G
	b.pix[i+2] = c.B
	b.pix[i+3] = c.A
}

// At returns the pixel at (x, y), or transparent black when out of bounds.
func (b *PixelBuffer) At(x, y int) color.RGBA {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return color.RGBA{}
	}
	i := (y*b.width + x) * 4
	return color.RGBA{R: b.pix[i], G: b.pix[i+1], B: b.pix[i+2], A: b.pix[i+3]}
}

// DrawRect fills a rectangle, clipped to the buffer.
func (b *PixelBuffer) DrawRect(r Rect, c color.RGBA) {
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			b.Set(x, y, c)
		}
	}
}

// DrawVLine draws a vertical line from (x, y0) to (x, y1) inclusive.
func (b *PixelBuffer) DrawVLine(x, y0, y1 int, c color.RGBA) {
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		b.Set(x, y, c)
	}
}

// CopyFrom copies src into b, reallocating when the dimensions differ.
func (b *PixelBuffer) CopyFrom(src *PixelBuffer) {
	if b.width != src.width || b.height != src.height {
		b.width = src.width
		b.height = src.height
		b.pix = make([]uint8, len(src.pix))
	}
	copy(b.pix, src.pix)
}

// Clone returns a deep copy of the buffer.
func (b *PixelBuffer) Clone() *PixelBuffer {
	c := &PixelBuffer{}
	c.CopyFrom(b)
	return c
}

// RGBA returns an *image.RGBA view sharing the buffer's memory.
// Writes through the view are visible in the buffer.
func (b *PixelBuffer) RGBA() *image.RGBA {
	return &image.RGBA{
		Pix:    b.pix,
		Stride: b.width * 4,
		Rect:   image.Rect(0, 0, b.width, b.height),
	}
}
