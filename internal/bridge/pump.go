package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/vovakirdan/wearbridge/internal/config"
	"github.com/vovakirdan/wearbridge/internal/registry"
)

// pump is the fixed-timestep loop. Every call into the core happens on the
// goroutine running pump.run.
type pump struct {
	core      registry.Core
	clock     Clock
	cfg       config.PumpConfig
	step      time.Duration
	gate      *gate
	input     *Translator
	presenter *Presenter
	audio     *AudioSink // nil when audio output is disabled
	stats     *counters
	log       *log.Logger
	diag      rate.Sometimes

	seq         uint64
	sinceRender int
	renderDue   bool
}

func newPump(c registry.Core, clock Clock, cfg config.PumpConfig, g *gate, in *Translator,
	pr *Presenter, audio *AudioSink, stats *counters, logger *log.Logger) *pump {
	return &pump{
		core:      c,
		clock:     clock,
		cfg:       cfg,
		step:      time.Second / time.Duration(cfg.TickRate),
		gate:      g,
		input:     in,
		presenter: pr,
		audio:     audio,
		stats:     stats,
		log:       logger,
		diag:      rate.Sometimes{Interval: 5 * time.Second},
	}
}

// run drives the core until ctx is done or the core faults. While the gate
// is not Running it only waits for the next state change.
func (p *pump) run(ctx context.Context) error {
	// Silence read once the run is over is not an underrun.
	defer p.setAudioActive(false)

	var (
		acc       time.Duration
		last      time.Time
		resumeSeq uint64
	)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		state, seq, wake := p.gate.snapshot()
		if state != Running {
			p.setAudioActive(false)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-wake:
			}
			continue
		}

		// A new Running period starts with an empty accumulator, so time
		// spent paused never turns into catch-up ticks.
		if seq != resumeSeq {
			resumeSeq = seq
			acc = 0
			last = p.clock.Now()
			p.setAudioActive(true)
			p.log.Debug("pump resumed", "seq", p.seq)
		}

		now := p.clock.Now()
		acc += now.Sub(last)
		last = now

		n := int(acc / p.step)
		if n > p.cfg.MaxCatchUpTicks {
			skipped := n - p.cfg.MaxCatchUpTicks
			acc -= time.Duration(skipped) * p.step
			n = p.cfg.MaxCatchUpTicks
			p.stats.skipped.add(uint64(skipped))
			p.diag.Do(func() {
				p.log.Warn("pump behind, skipping ticks", "skipped", skipped, "total", p.stats.skipped.load())
			})
		}

		ran := 0
		for ; ran < n; ran++ {
			if !p.gate.running() || ctx.Err() != nil {
				break
			}
			if err := p.tick(); err != nil {
				return err
			}
			acc -= p.step
		}
		p.stats.observeCatchUp(ran)

		if p.renderDue && p.gate.running() {
			p.renderDue = false
			if err := p.render(); err != nil {
				return err
			}
		}

		if ran > 0 && p.gate.running() {
			p.drainAudio()
		}

		wait := p.step - acc
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-wake:
		case <-p.clock.After(wait):
		}
	}
}

func (p *pump) tick() error {
	p.seq++
	cmd := p.input.Next().WithSeq(p.seq)
	if err := p.core.Tick(cmd); err != nil {
		return p.fault(PhaseTick, err)
	}
	p.stats.ticks.inc()
	p.stats.lastSeq.Store(p.seq)

	p.sinceRender++
	if p.sinceRender >= p.cfg.RenderEvery {
		p.sinceRender = 0
		if p.renderDue {
			p.stats.coalesced.inc()
		}
		p.renderDue = true
	}
	return nil
}

func (p *pump) render() error {
	buf, err := p.core.Render()
	if err == nil && buf == nil {
		err = errors.New("render returned no buffer")
	}
	if err != nil {
		return p.fault(PhaseRender, err)
	}
	p.stats.renders.inc()

	p.presenter.SetContact(p.input.Contact())

	// Presentation failures only cost this frame.
	if err := p.presenter.Present(buf); err != nil && !errors.Is(err, ErrSurfaceLost) {
		p.diag.Do(func() {
			p.log.Warn("present failed", "err", err)
		})
	}
	return nil
}

func (p *pump) drainAudio() {
	frames := p.core.PullAudio()
	if p.audio != nil {
		p.audio.Write(frames...)
	}
}

func (p *pump) setAudioActive(v bool) {
	if p.audio != nil {
		p.audio.setActive(v)
	}
}

func (p *pump) fault(phase string, err error) error {
	p.gate.fault()
	p.setAudioActive(false)
	f := &CoreFault{CoreID: p.core.ID(), Seq: p.seq, Phase: phase, Err: err}
	p.log.Error("core fault, run stopped", "phase", phase, "seq", p.seq, "err", err)
	return f
}
