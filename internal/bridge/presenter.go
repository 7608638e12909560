package bridge

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/time/rate"

	"github.com/vovakirdan/wearbridge/internal/config"
	"github.com/vovakirdan/wearbridge/internal/core"
)

// Surface is the platform drawable a host hands to the bridge.
//
// Present is called on the frame pump goroutine with a complete image at
// the surface size. It must return once ctx is cancelled and must not keep
// img after returning.
type Surface interface {
	Present(ctx context.Context, img *image.RGBA) error
}

// SurfaceFunc adapts a function to the Surface interface.
type SurfaceFunc func(ctx context.Context, img *image.RGBA) error

// Present calls f(ctx, img).
func (f SurfaceFunc) Present(ctx context.Context, img *image.RGBA) error {
	return f(ctx, img)
}

// Scaler returns the x/image scaler for a configured name.
func Scaler(name string) (xdraw.Scaler, error) {
	switch name {
	case config.ScalerNearest:
		return xdraw.NearestNeighbor, nil
	case config.ScalerApproxBiLinear:
		return xdraw.ApproxBiLinear, nil
	case config.ScalerBiLinear:
		return xdraw.BiLinear, nil
	case config.ScalerCatmullRom:
		return xdraw.CatmullRom, nil
	default:
		return nil, fmt.Errorf("bridge: unknown scaler %q", name)
	}
}

// Presenter scales rendered frames onto the current surface.
//
// The surface slot is guarded by mu, which Present holds for the duration of
// the surface call. Detach cancels the slot context first, so an in-flight
// Present unblocks, and then takes mu; once Detach returns no present call
// references the old surface.
type Presenter struct {
	scaler     xdraw.Scaler
	background color.RGBA

	// Control overlay, pump goroutine only.
	overlay bool
	layout  Layout
	contact contact

	mu      sync.Mutex
	surface Surface
	size    core.Size
	gen     uint64 // bumped whenever the surface goes away

	cancelMu sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc

	// Pump-side buffers. handoff holds a private copy of the core's frame;
	// staging alternates so the image last shown stays intact for LastFrame.
	handoff *core.PixelBuffer
	staging [2]*image.RGBA
	next    int

	lastMu sync.Mutex
	last   *image.RGBA

	presents *counter
	dropped  *counter

	log  *log.Logger
	diag rate.Sometimes
}

// NewPresenter creates a presenter from the presenter configuration.
func NewPresenter(cfg config.PresenterConfig, logger *log.Logger) (*Presenter, error) {
	scaler, err := Scaler(cfg.Scaler)
	if err != nil {
		return nil, err
	}
	bg, err := config.ParseColor(cfg.Background)
	if err != nil {
		return nil, fmt.Errorf("bridge: presenter background: %w", err)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Presenter{
		scaler:     scaler,
		background: bg,
		overlay:    cfg.Overlay,
		handoff:    core.NewPixelBuffer(core.NativeWidth, core.NativeHeight),
		presents:   &counter{},
		dropped:    &counter{},
		log:        logger,
		diag:       rate.Sometimes{Interval: 5 * time.Second},
	}, nil
}

func (p *Presenter) useCounters(c *counters) {
	p.presents = &c.presents
	p.dropped = &c.droppedPresents
}

// SetLayout sets the control zones outlined when the overlay is enabled.
func (p *Presenter) SetLayout(l Layout) {
	p.layout = l
}

// SetContact moves the overlay's joystick thumb to the normalized point
// (nx, ny); ok false puts it back at rest. Pump goroutine only.
func (p *Presenter) SetContact(nx, ny float64, ok bool) {
	p.contact = contact{x: nx, y: ny, ok: ok}
}

// Attach makes s the presentation target.
func (p *Presenter) Attach(s Surface, size core.Size) {
	ctx, cancel := context.WithCancel(context.Background())

	p.cancelMu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.ctx, p.cancel = ctx, cancel
	p.cancelMu.Unlock()

	p.mu.Lock()
	p.surface = s
	p.size = size
	p.mu.Unlock()
}

// Resize changes the target size of the current surface.
func (p *Presenter) Resize(size core.Size) {
	p.mu.Lock()
	p.size = size
	p.mu.Unlock()
}

// Detach cancels any in-flight present and releases the surface. It
// returns only after no present call references the surface.
func (p *Presenter) Detach() {
	p.cancelMu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.cancelMu.Unlock()

	p.mu.Lock()
	p.surface = nil
	p.size = core.Size{}
	p.gen++
	p.mu.Unlock()
}

// Size returns the current target size; empty when detached.
func (p *Presenter) Size() core.Size {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.size
}

// Present copies buf, scales it to the surface and hands the complete image
// to the surface. It returns ErrSurfaceLost when there is no surface or the
// surface went away meanwhile; the frame is then dropped.
//
// Present must only be called from the frame pump goroutine.
func (p *Presenter) Present(buf *core.PixelBuffer) error {
	p.handoff.CopyFrom(buf)

	p.mu.Lock()
	gen, size, ok := p.gen, p.size, p.surface != nil
	p.mu.Unlock()
	if !ok || size.Empty() {
		return p.drop(ErrSurfaceLost)
	}

	p.cancelMu.Lock()
	ctx := p.ctx
	p.cancelMu.Unlock()

	img := p.stage(size)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.surface == nil || p.gen != gen || p.size != size || ctx.Err() != nil {
		return p.drop(ErrSurfaceLost)
	}

	if err := p.surface.Present(ctx, img); err != nil {
		if ctx.Err() != nil || errors.Is(err, ErrSurfaceLost) {
			return p.drop(ErrSurfaceLost)
		}
		return p.drop(fmt.Errorf("bridge: present: %w", err))
	}

	p.lastMu.Lock()
	p.last = img
	p.lastMu.Unlock()
	p.next ^= 1

	p.presents.inc()
	return nil
}

// stage scales the handoff buffer into the next staging image, letterboxed
// on the background colour, and draws the control overlay on top.
func (p *Presenter) stage(size core.Size) *image.RGBA {
	dst := p.staging[p.next]
	if dst == nil || dst.Rect.Dx() != size.W || dst.Rect.Dy() != size.H {
		dst = image.NewRGBA(image.Rect(0, 0, size.W, size.H))
		p.staging[p.next] = dst
	}

	xdraw.Draw(dst, dst.Rect, image.NewUniform(p.background), image.Point{}, xdraw.Src)

	src := p.handoff.RGBA()
	fit := core.Fit(p.handoff.Size(), size)
	dr := image.Rect(fit.X, fit.Y, fit.Right(), fit.Bottom())
	p.scaler.Scale(dst, dr, src, src.Rect, xdraw.Src, nil)
	if p.overlay {
		drawOverlay(dst, p.layout, p.contact)
	}
	return dst
}

func (p *Presenter) drop(err error) error {
	p.dropped.inc()
	p.diag.Do(func() {
		p.log.Debug("frame dropped", "err", err, "total", p.dropped.load())
	})
	return err
}

// LastFrame returns a copy of the most recently presented image, or nil if
// nothing has been presented yet.
func (p *Presenter) LastFrame() *image.RGBA {
	p.lastMu.Lock()
	defer p.lastMu.Unlock()
	if p.last == nil {
		return nil
	}
	c := image.NewRGBA(p.last.Rect)
	copy(c.Pix, p.last.Pix)
	return c
}
