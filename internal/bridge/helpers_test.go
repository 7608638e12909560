package bridge

import (
	"context"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/wearbridge/internal/config"
	"github.com/vovakirdan/wearbridge/internal/core"
)

// fakeCore records every call made by the pump.
type fakeCore struct {
	mu      sync.Mutex
	frames  []core.CommandFrame
	resets  int
	renders int
	pulls   int
	buf     *core.PixelBuffer

	onTick  func(n int) // called after tick n was recorded
	failAt  int         // tick number that returns failErr
	failErr error
}

func newFakeCore() *fakeCore {
	return &fakeCore{buf: core.NewPixelBuffer(core.NativeWidth, core.NativeHeight)}
}

func (c *fakeCore) ID() string    { return "fake" }
func (c *fakeCore) Title() string { return "Fake" }

func (c *fakeCore) Reset(core.RuntimeConfig) error {
	c.mu.Lock()
	c.resets++
	c.mu.Unlock()
	return nil
}

func (c *fakeCore) Tick(cmd core.CommandFrame) error {
	c.mu.Lock()
	c.frames = append(c.frames, cmd)
	n := len(c.frames)
	fail := c.failAt != 0 && n == c.failAt
	c.mu.Unlock()

	if fail {
		return c.failErr
	}
	if c.onTick != nil {
		c.onTick(n)
	}
	return nil
}

// Render fills the whole buffer with one colour derived from the render
// count, so a torn frame would show two colours.
func (c *fakeCore) Render() (*core.PixelBuffer, error) {
	c.mu.Lock()
	c.renders++
	n := c.renders
	c.mu.Unlock()
	c.buf.Fill(color.RGBA{R: uint8(40 * n), G: 200, B: uint8(255 - 20*n), A: 255})
	return c.buf, nil
}

func (c *fakeCore) PullAudio() []core.AudioFrame {
	c.mu.Lock()
	c.pulls++
	c.mu.Unlock()
	f := core.NewAudioFrame(4)
	for i := range f.Samples {
		f.Samples[i] = 1000
	}
	return []core.AudioFrame{f}
}

func (c *fakeCore) tickCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func (c *fakeCore) snapshot() (frames []core.CommandFrame, renders, pulls, resets int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]core.CommandFrame(nil), c.frames...), c.renders, c.pulls, c.resets
}

// recordingSurface keeps a copy of every presented image.
type recordingSurface struct {
	mu     sync.Mutex
	images []*image.RGBA
	notify chan struct{}
}

func newRecordingSurface() *recordingSurface {
	return &recordingSurface{notify: make(chan struct{}, 64)}
}

func (s *recordingSurface) Present(ctx context.Context, img *image.RGBA) error {
	c := image.NewRGBA(img.Rect)
	copy(c.Pix, img.Pix)
	s.mu.Lock()
	s.images = append(s.images, c)
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
	return nil
}

func (s *recordingSurface) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.images)
}

func (s *recordingSurface) all() []*image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*image.RGBA(nil), s.images...)
}

// testConfig returns the defaults with a nearest scaler so solid colours
// survive scaling exactly.
func testConfig() config.BridgeConfig {
	cfg := config.DefaultBridgeConfig()
	cfg.Presenter.Scaler = config.ScalerNearest
	return cfg
}

func newTestBridge(t *testing.T, c *fakeCore, cfg config.BridgeConfig) (*Bridge, *StepClock) {
	t.Helper()
	clock := NewStepClock(time.Unix(0, 0))
	b, err := New(c, cfg, WithClock(clock))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return b, clock
}

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func waitErr(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Run to return")
		return nil
	}
}
