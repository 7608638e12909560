package bridge

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vovakirdan/wearbridge/internal/config"
	"github.com/vovakirdan/wearbridge/internal/core"
)

func newTestPresenter(t *testing.T) *Presenter {
	t.Helper()
	p, err := NewPresenter(testConfig().Presenter, nil)
	if err != nil {
		t.Fatalf("NewPresenter() failed: %v", err)
	}
	return p
}

func TestPresentLetterboxes(t *testing.T) {
	p := newTestPresenter(t)
	surf := newRecordingSurface()
	p.Attach(surf, core.Size{W: 192, H: 192})

	red := color.RGBA{R: 255, A: 255}
	buf := core.NewPixelBuffer(core.NativeWidth, core.NativeHeight)
	buf.Fill(red)

	if err := p.Present(buf); err != nil {
		t.Fatalf("Present() failed: %v", err)
	}
	img := surf.all()[0]
	if img.Rect != image.Rect(0, 0, 192, 192) {
		t.Fatalf("image bounds = %v, expected 192x192", img.Rect)
	}

	black := color.RGBA{A: 255}
	// 320x200 fits 192x120, centered at y=36.
	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{96, 0, black},
		{96, 35, black},
		{96, 36, red},
		{0, 96, red},
		{191, 155, red},
		{96, 156, black},
		{96, 191, black},
	}
	for _, tt := range tests {
		if got := img.RGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d) = %v, expected %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestPresentWithoutSurface(t *testing.T) {
	p := newTestPresenter(t)
	buf := core.NewPixelBuffer(4, 4)

	if err := p.Present(buf); !errors.Is(err, ErrSurfaceLost) {
		t.Errorf("Present() = %v, expected ErrSurfaceLost", err)
	}

	p.Attach(newRecordingSurface(), core.Size{W: 10, H: 10})
	p.Detach()
	if err := p.Present(buf); !errors.Is(err, ErrSurfaceLost) {
		t.Errorf("Present() after Detach = %v, expected ErrSurfaceLost", err)
	}
	if p.dropped.load() != 2 {
		t.Errorf("dropped = %d, expected 2", p.dropped.load())
	}
}

func TestPresentFollowsResize(t *testing.T) {
	p := newTestPresenter(t)
	surf := newRecordingSurface()
	p.Attach(surf, core.Size{W: 192, H: 192})
	p.Resize(core.Size{W: 200, H: 100})

	if err := p.Present(core.NewPixelBuffer(8, 8)); err != nil {
		t.Fatalf("Present() failed: %v", err)
	}
	if got := surf.all()[0].Rect; got != image.Rect(0, 0, 200, 100) {
		t.Errorf("image bounds = %v, expected 200x100", got)
	}
}

func TestDetachCancelsInFlightPresent(t *testing.T) {
	p := newTestPresenter(t)

	entered := make(chan struct{})
	var returned, detached, touchedAfter atomic.Bool
	surf := SurfaceFunc(func(ctx context.Context, img *image.RGBA) error {
		if detached.Load() {
			touchedAfter.Store(true)
			return nil
		}
		close(entered)
		<-ctx.Done()
		returned.Store(true)
		return ctx.Err()
	})
	p.Attach(surf, core.Size{W: 64, H: 64})

	done := make(chan error, 1)
	go func() { done <- p.Present(core.NewPixelBuffer(8, 8)) }()

	waitFor(t, entered, "present to start")
	p.Detach()
	detached.Store(true)

	if !returned.Load() {
		t.Fatal("Detach returned while the surface call was still running")
	}
	select {
	case err := <-done:
		if !errors.Is(err, ErrSurfaceLost) {
			t.Errorf("Present() = %v, expected ErrSurfaceLost", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Present did not return")
	}

	if err := p.Present(core.NewPixelBuffer(8, 8)); !errors.Is(err, ErrSurfaceLost) {
		t.Errorf("Present() after Detach = %v, expected ErrSurfaceLost", err)
	}
	if touchedAfter.Load() {
		t.Error("surface used after Detach returned")
	}
}

func TestLastFrameIsACopy(t *testing.T) {
	p := newTestPresenter(t)
	if p.LastFrame() != nil {
		t.Fatal("LastFrame() before any present is not nil")
	}

	p.Attach(newRecordingSurface(), core.Size{W: 16, H: 16})
	buf := core.NewPixelBuffer(16, 16)
	buf.Fill(color.RGBA{G: 255, A: 255})
	if err := p.Present(buf); err != nil {
		t.Fatalf("Present() failed: %v", err)
	}

	last := p.LastFrame()
	last.SetRGBA(0, 0, color.RGBA{R: 1, A: 255})
	if got := p.LastFrame().RGBAAt(0, 0); got != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("LastFrame() pixel = %v, expected the presented green", got)
	}
}

func TestScalerNames(t *testing.T) {
	for _, name := range []string{config.ScalerNearest, config.ScalerApproxBiLinear, config.ScalerBiLinear, config.ScalerCatmullRom} {
		if _, err := Scaler(name); err != nil {
			t.Errorf("Scaler(%q) failed: %v", name, err)
		}
	}
	if _, err := Scaler("lanczos"); err == nil {
		t.Error("Scaler(lanczos) returned nil error")
	}
}

func newOverlayPresenter(t *testing.T) (*Presenter, *recordingSurface) {
	t.Helper()
	cfg := testConfig()
	cfg.Presenter.Overlay = true
	p, err := NewPresenter(cfg.Presenter, nil)
	if err != nil {
		t.Fatalf("NewPresenter() failed: %v", err)
	}
	p.SetLayout(NewLayout(cfg.Input))
	surf := newRecordingSurface()
	p.Attach(surf, face)
	return p, surf
}

func TestOverlayStaysInsideZones(t *testing.T) {
	p, surf := newOverlayPresenter(t)
	if err := p.Present(core.NewPixelBuffer(core.NativeWidth, core.NativeHeight)); err != nil {
		t.Fatalf("Present() failed: %v", err)
	}
	img := surf.all()[0]

	l := p.layout
	zones := []core.Zone{l.Joystick, l.Fire, l.Use, l.Weapon, l.Menu, l.Confirm}
	bounds := func(z core.Zone) (x0, y0, x1, y1 int) {
		return int(math.Floor(z.X * float64(face.W))), int(math.Floor(z.Y * float64(face.H))),
			int(math.Ceil((z.X + z.W) * float64(face.W))), int(math.Ceil((z.Y + z.H) * float64(face.H)))
	}
	inZone := func(x, y int) bool {
		for _, z := range zones {
			x0, y0, x1, y1 := bounds(z)
			if x >= x0 && x < x1 && y >= y0 && y < y1 {
				return true
			}
		}
		return false
	}

	black := color.RGBA{A: 255}
	lit := 0
	for y := 0; y < face.H; y++ {
		for x := 0; x < face.W; x++ {
			if img.RGBAAt(x, y) == black {
				continue
			}
			lit++
			if !inZone(x, y) {
				t.Fatalf("overlay pixel (%d,%d) = %v lies outside every zone", x, y, img.RGBAAt(x, y))
			}
		}
	}
	if lit == 0 {
		t.Fatal("overlay drew nothing")
	}

	// Every button is outlined from its top-left corner.
	for i, z := range zones[1:] {
		x0, y0, _, _ := bounds(z)
		if img.RGBAAt(x0, y0) == black {
			t.Errorf("zone %d corner (%d,%d) is not outlined", i+1, x0, y0)
		}
	}
}

func TestOverlayThumbFollowsContact(t *testing.T) {
	p, surf := newOverlayPresenter(t)
	buf := core.NewPixelBuffer(core.NativeWidth, core.NativeHeight)
	black := color.RGBA{A: 255}

	jx, jy := p.layout.Joystick.Center()
	rest := zoneRect(p.layout.Joystick, face)
	rx, ry := (rest.Min.X+rest.Max.X)/2, (rest.Min.Y+rest.Max.Y)/2

	if err := p.Present(buf); err != nil {
		t.Fatalf("Present() failed: %v", err)
	}
	if img := surf.all()[0]; img.RGBAAt(rx, ry) == black {
		t.Errorf("thumb missing at rest position (%d,%d)", rx, ry)
	}

	p.SetContact(jx+0.1, jy, true)
	if err := p.Present(buf); err != nil {
		t.Fatalf("Present() failed: %v", err)
	}
	img := surf.all()[1]
	if img.RGBAAt(rx, ry) != black {
		t.Errorf("pixel at rest position (%d,%d) = %v, expected the thumb to have moved", rx, ry, img.RGBAAt(rx, ry))
	}
	tx := int((jx + 0.1) * float64(face.W))
	if img.RGBAAt(tx, ry) == black {
		t.Errorf("thumb missing at contact (%d,%d)", tx, ry)
	}
}
