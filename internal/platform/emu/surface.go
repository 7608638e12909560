// Package emu holds the pieces shared by the terminal watch emulators: an
// in-memory surface, key-hold synthesis for terminals without key-up events,
// half-block rasterization and speaker output.
package emu

import (
	"context"
	"image"
	"sync"

	"github.com/vovakirdan/wearbridge/internal/bridge"
	"github.com/vovakirdan/wearbridge/internal/core"
)

// Host is the part of the bridge a terminal emulator drives.
// *bridge.Bridge implements it.
type Host interface {
	OnSurfaceCreated(s bridge.Surface, size core.Size)
	OnSurfaceResized(size core.Size)
	OnSurfaceDestroyed()
	OnInputEvent(ev bridge.RawEvent)
	OnPauseRequested()
	OnResumeRequested()
	Stats() bridge.Stats
}

// FrameSurface is a bridge.Surface that keeps the most recent image for a
// terminal to repaint at its own pace.
type FrameSurface struct {
	mu     sync.Mutex
	img    *image.RGBA
	frames uint64

	updated chan struct{}
}

// NewFrameSurface creates an empty surface.
func NewFrameSurface() *FrameSurface {
	return &FrameSurface{updated: make(chan struct{}, 1)}
}

// Present copies img so the bridge may reuse its staging buffer.
func (s *FrameSurface) Present(ctx context.Context, img *image.RGBA) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.img == nil || s.img.Rect != img.Rect {
		s.img = image.NewRGBA(img.Rect)
	}
	copy(s.img.Pix, img.Pix)
	s.frames++
	s.mu.Unlock()

	select {
	case s.updated <- struct{}{}:
	default:
	}
	return nil
}

// View calls fn with the latest image, or nil before the first present.
// fn must not keep the image.
func (s *FrameSurface) View(fn func(img *image.RGBA)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.img)
}

// Frames returns how many images were presented.
func (s *FrameSurface) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Updated receives after a present. Several presents may collapse into one
// notification.
func (s *FrameSurface) Updated() <-chan struct{} {
	return s.updated
}

// Clear forgets the latest image, e.g. when the screen is switched off.
func (s *FrameSurface) Clear() {
	s.mu.Lock()
	s.img = nil
	s.mu.Unlock()
}
