package bridge

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/vovakirdan/wearbridge/internal/bridge"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// counter is a local total mirrored into an OTel counter.
type counter struct {
	n    atomic.Uint64
	inst metric.Int64Counter
	attr metric.AddOption
}

func (c *counter) inc() { c.add(1) }

func (c *counter) add(n uint64) {
	if n == 0 {
		return
	}
	c.n.Add(n)
	if c.inst != nil {
		c.inst.Add(context.Background(), int64(n), c.attr)
	}
}

func (c *counter) load() uint64 {
	if c == nil {
		return 0
	}
	return c.n.Load()
}

// counters holds every counter of one bridge instance.
type counters struct {
	ticks           counter
	renders         counter
	presents        counter
	droppedPresents counter
	coalesced       counter
	skipped         counter
	underruns       counter
	overruns        counter
	inputDropped    counter

	maxCatchUp atomic.Int64
	lastSeq    atomic.Uint64

	reg metric.Registration // audio gauge callback, nil without audio
}

// newCounters creates the counters and registers them with the global OTel
// meter provider (no-op if not configured). audioBuffered, when non-nil, is
// observed as a gauge.
func newCounters(coreID string, audioBuffered func() int) (*counters, error) {
	c := &counters{}
	m := meter()
	attr := metric.WithAttributes(attribute.String("core", coreID))

	for _, def := range []struct {
		c    *counter
		name string
		desc string
	}{
		{&c.ticks, "bridge.pump.ticks", "Simulation ticks executed"},
		{&c.renders, "bridge.pump.renders", "Frames rendered by the core"},
		{&c.presents, "bridge.presenter.presents", "Frames presented to the surface"},
		{&c.droppedPresents, "bridge.presenter.dropped", "Frames dropped because the surface was lost"},
		{&c.coalesced, "bridge.pump.renders.coalesced", "Due renders merged during catch-up"},
		{&c.skipped, "bridge.pump.ticks.skipped", "Ticks of backlog discarded by the catch-up bound"},
		{&c.underruns, "bridge.audio.underruns", "Audio reads padded with silence"},
		{&c.overruns, "bridge.audio.overruns", "Audio frames dropped because the ring was full"},
		{&c.inputDropped, "bridge.input.dropped", "Raw input events dropped because the buffer was full"},
	} {
		inst, err := m.Int64Counter(def.name, metric.WithDescription(def.desc))
		if err != nil {
			return nil, fmt.Errorf("creating %s counter: %w", def.name, err)
		}
		def.c.inst = inst
		def.c.attr = attr
	}

	if audioBuffered != nil {
		gauge, err := m.Int64ObservableGauge(
			"bridge.audio.buffered",
			metric.WithDescription("Audio frames waiting in the ring"),
		)
		if err != nil {
			return nil, fmt.Errorf("creating audio buffered gauge: %w", err)
		}
		c.reg, err = m.RegisterCallback(
			func(ctx context.Context, o metric.Observer) error {
				o.ObserveInt64(gauge, int64(audioBuffered()), attr)
				return nil
			},
			gauge,
		)
		if err != nil {
			return nil, fmt.Errorf("registering audio callback: %w", err)
		}
	}

	return c, nil
}

// close unregisters the gauge callback. It is safe to call more than once.
func (c *counters) close() error {
	if c.reg == nil {
		return nil
	}
	reg := c.reg
	c.reg = nil
	if err := reg.Unregister(); err != nil {
		return fmt.Errorf("unregistering audio callback: %w", err)
	}
	return nil
}

// observeCatchUp records the number of ticks run in one pump iteration.
func (c *counters) observeCatchUp(n int) {
	for {
		cur := c.maxCatchUp.Load()
		if int64(n) <= cur || c.maxCatchUp.CompareAndSwap(cur, int64(n)) {
			return
		}
	}
}
