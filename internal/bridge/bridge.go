// Package bridge drives a simulation core on a wearable device: it runs the
// fixed-timestep frame pump, presents rendered frames on the platform
// surface, feeds the audio output and translates touch, rotary and button
// input into command frames. Hosts talk to it only through the callbacks of
// Bridge.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/wearbridge/internal/config"
	"github.com/vovakirdan/wearbridge/internal/core"
	"github.com/vovakirdan/wearbridge/internal/registry"
)

// pumpActive enforces a single running frame pump per process.
var pumpActive atomic.Bool

// Bridge connects one simulation core to one platform host.
type Bridge struct {
	core    registry.Core
	cfg     config.BridgeConfig
	runtime core.RuntimeConfig
	clock   Clock
	log     *log.Logger

	gate      *gate
	input     *Translator
	presenter *Presenter
	audio     *AudioSink
	surfaces  *lifecycle
	stats     *counters

	faults chan error
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(b *Bridge) { b.log = l }
}

// WithClock replaces the wall clock driving the pump.
func WithClock(c Clock) Option {
	return func(b *Bridge) { b.clock = c }
}

// WithSeed sets the seed passed to the core on reset.
func WithSeed(seed int64) Option {
	return func(b *Bridge) { b.runtime.Seed = seed }
}

// New creates a bridge for c. The configuration is validated first.
func New(c registry.Core, cfg config.BridgeConfig, opts ...Option) (*Bridge, error) {
	if c == nil {
		return nil, ErrNoCore
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("bridge: invalid config: %w", err)
	}

	b := &Bridge{
		core:    c,
		cfg:     cfg,
		runtime: core.RuntimeConfig{TickRate: cfg.Pump.TickRate},
		clock:   RealClock(),
		log:     log.New(io.Discard),
		gate:    newGate(),
		faults:  make(chan error, 1),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.log == nil {
		b.log = log.New(io.Discard)
	}
	if b.clock == nil {
		b.clock = RealClock()
	}

	var err error
	b.presenter, err = NewPresenter(cfg.Presenter, b.log.WithPrefix("presenter"))
	if err != nil {
		return nil, err
	}
	b.input = NewTranslator(cfg.Input, b.log.WithPrefix("input"))
	b.presenter.SetLayout(b.input.Layout())

	var buffered func() int
	if cfg.Audio.Enabled {
		b.audio = NewAudioSink(cfg.Audio.BufferFrames, cfg.Audio.Volume, b.log.WithPrefix("audio"))
		buffered = b.audio.Buffered
	}

	b.stats, err = newCounters(c.ID(), buffered)
	if err != nil {
		return nil, fmt.Errorf("bridge: metrics: %w", err)
	}
	b.presenter.useCounters(b.stats)
	b.input.useCounters(b.stats)
	if b.audio != nil {
		b.audio.useCounters(b.stats)
	}

	b.surfaces = &lifecycle{
		gate:      b.gate,
		presenter: b.presenter,
		input:     b.input,
		log:       b.log.WithPrefix("surface"),
	}
	return b, nil
}

// Run resets the core and drives it until ctx is done or the core faults.
// It returns nil when ctx ends the run and the *CoreFault otherwise, which
// is also delivered on Faults. The pump only executes while a surface is
// ready and no pause is requested.
//
// Only one Run may be active per process; a second one gets ErrPumpActive.
func (b *Bridge) Run(ctx context.Context) error {
	if !pumpActive.CompareAndSwap(false, true) {
		return ErrPumpActive
	}
	defer pumpActive.Store(false)

	b.gate.clearFault()
	b.input.Reset()
	if b.audio != nil {
		b.audio.Reset()
	}

	if err := b.core.Reset(b.runtime); err != nil {
		b.gate.fault()
		return b.report(&CoreFault{CoreID: b.core.ID(), Phase: PhaseReset, Err: err})
	}

	p := newPump(b.core, b.clock, b.cfg.Pump, b.gate, b.input, b.presenter, b.audio, b.stats, b.log.WithPrefix("pump"))

	b.log.Info("run started", "core", b.core.ID(), "tick_rate", b.cfg.Pump.TickRate,
		"render_every", b.cfg.Pump.RenderEvery, "surface", b.surfaces.State())
	b.gate.setRunRequested(true)
	defer b.gate.setRunRequested(false)

	err := p.run(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		b.log.Info("run finished", "ticks", b.stats.ticks.load())
		return nil
	}
	return b.report(err)
}

func (b *Bridge) report(err error) error {
	select {
	case b.faults <- err:
	default:
	}
	return err
}

// OnSurfaceCreated makes s the presentation target and lets the pump run if
// a run was requested and no pause is pending.
func (b *Bridge) OnSurfaceCreated(s Surface, size core.Size) {
	b.surfaces.created(s, size)
}

// OnSurfaceResized updates the presentation size without restarting the core.
func (b *Bridge) OnSurfaceResized(size core.Size) {
	b.surfaces.resized(size)
}

// OnSurfaceDestroyed pauses the pump and returns once no present call
// references the surface.
func (b *Bridge) OnSurfaceDestroyed() {
	b.surfaces.destroyed()
}

// OnInputEvent queues a raw input event for the next tick.
func (b *Bridge) OnInputEvent(ev RawEvent) {
	b.input.Push(ev)
}

// OnPauseRequested pauses the pump. A tick or render already past the state
// check may still run; within one tick interval no further tick, render,
// present or audio call starts.
func (b *Bridge) OnPauseRequested() {
	st := b.gate.setUserPaused(true)
	b.log.Debug("pause requested", "run_state", st)
}

// OnResumeRequested lifts an explicit pause.
func (b *Bridge) OnResumeRequested() {
	st := b.gate.setUserPaused(false)
	b.log.Debug("resume requested", "run_state", st)
}

// State returns the current run state.
func (b *Bridge) State() RunState {
	return b.gate.State()
}

// SurfaceState returns the current surface lifecycle state.
func (b *Bridge) SurfaceState() SurfaceState {
	return b.surfaces.State()
}

// Stats returns a snapshot of the bridge counters.
func (b *Bridge) Stats() Stats {
	s := b.stats.snapshot()
	s.State = b.gate.State()
	if b.audio != nil {
		s.AudioBuffered = b.audio.Buffered()
	}
	return s
}

// Faults delivers core faults. It buffers one; later faults are dropped
// until it is read.
func (b *Bridge) Faults() <-chan error {
	return b.faults
}

// Audio returns the audio sink, or nil when audio is disabled.
func (b *Bridge) Audio() *AudioSink {
	return b.audio
}

// LastFrame returns a copy of the most recently presented image, or nil.
func (b *Bridge) LastFrame() *image.RGBA {
	return b.presenter.LastFrame()
}

// Core returns the simulation core driven by the bridge.
func (b *Bridge) Core() registry.Core {
	return b.core
}

// Close releases the metric callbacks held by the bridge. Call it once the
// bridge is no longer run.
func (b *Bridge) Close() error {
	if err := b.stats.close(); err != nil {
		return fmt.Errorf("bridge: %w", err)
	}
	return nil
}

// Config returns the configuration the bridge was built with.
func (b *Bridge) Config() config.BridgeConfig {
	return b.cfg
}
