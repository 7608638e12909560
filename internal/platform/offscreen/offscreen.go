// Package offscreen runs a core through the bridge without a display. Time
// is virtual, so a run takes as long as the core needs and its counters are
// reproducible. It backs the headless command and end-to-end tests.
package offscreen

import (
	"context"
	"errors"
	"image"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/wearbridge/internal/bridge"
	"github.com/vovakirdan/wearbridge/internal/config"
	"github.com/vovakirdan/wearbridge/internal/core"
	"github.com/vovakirdan/wearbridge/internal/registry"
)

// DefaultSize is the surface size when none is given, a small round watch.
var DefaultSize = core.Size{W: 192, H: 192}

// ErrNoTicks is returned when a run is asked for zero ticks.
var ErrNoTicks = errors.New("offscreen: tick count must be positive")

// Options configures Run.
type Options struct {
	Ticks    uint64        // ticks to execute before stopping
	Size     core.Size     // surface size, zero means DefaultSize
	Overload time.Duration // virtual time every tick spends inside the core
	Seed     int64
	Logger   *log.Logger
}

// Result summarizes a run.
type Result struct {
	Stats     bridge.Stats
	Elapsed   time.Duration // virtual time from start to stop
	Frames    int           // images the surface received
	LastFrame *image.RGBA
}

// Run executes opts.Ticks ticks of c. A core fault ends the run early; the
// result then holds the counters up to the fault and the error is the
// *bridge.CoreFault.
func Run(ctx context.Context, c registry.Core, cfg config.BridgeConfig, opts Options) (Result, error) {
	if opts.Ticks == 0 {
		return Result{}, ErrNoTicks
	}
	size := opts.Size
	if size.Empty() {
		size = DefaultSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	clock := bridge.NewStepClock(time.Unix(0, 0))
	budget := &budgetCore{
		Core:     c,
		clock:    clock,
		overload: opts.Overload,
		limit:    opts.Ticks,
		done:     cancel,
	}

	b, err := bridge.New(budget, cfg,
		bridge.WithLogger(logger),
		bridge.WithClock(clock),
		bridge.WithSeed(opts.Seed),
	)
	if err != nil {
		return Result{}, err
	}
	defer b.Close()

	surface := &drainSurface{audio: b.Audio(), frameSamples: core.SamplesPerTick(cfg.Pump.TickRate) * core.AudioChannels}
	b.OnSurfaceCreated(surface, size)

	start := clock.Now()
	runErr := b.Run(ctx)
	b.OnSurfaceDestroyed()

	res := Result{
		Stats:     b.Stats(),
		Elapsed:   clock.Now().Sub(start),
		Frames:    surface.count(),
		LastFrame: b.LastFrame(),
	}
	logger.Info("offscreen run finished", "core", c.ID(), "ticks", res.Stats.Ticks,
		"presents", res.Stats.Presents, "skipped", res.Stats.SkippedTicks, "elapsed", res.Elapsed)
	return res, runErr
}

// budgetCore stops the run after limit ticks and charges overload to the
// virtual clock on every tick.
type budgetCore struct {
	registry.Core
	clock    *bridge.StepClock
	overload time.Duration
	limit    uint64
	ticks    uint64
	done     context.CancelFunc
}

func (c *budgetCore) Tick(cmd core.CommandFrame) error {
	if err := c.Core.Tick(cmd); err != nil {
		return err
	}
	c.clock.Advance(c.overload)
	c.ticks++
	if c.ticks >= c.limit {
		c.done()
	}
	return nil
}

// drainSurface counts presented images and consumes the audio the pump
// produced since the previous present, the way a device would play it.
type drainSurface struct {
	audio        *bridge.AudioSink
	frameSamples int

	mu     sync.Mutex
	frames int
	buf    []int16
}

func (s *drainSurface) Present(_ context.Context, _ *image.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames++
	if s.audio != nil {
		if n := s.audio.Buffered() * s.frameSamples; n > 0 {
			if cap(s.buf) < n {
				s.buf = make([]int16, n)
			}
			s.audio.ReadSamples(s.buf[:n])
		}
	}
	return nil
}

func (s *drainSurface) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}
