package corridor

import (
	"github.com/vovakirdan/wearbridge/internal/core"
)

// toneAmplitude is the peak sample value of a fresh tone.
const toneAmplitude = 6000

// tone is a decaying square wave. A new tone replaces the playing one.
type tone struct {
	freq  float64
	phase float64 // position within the current period, [0, 1)
	left  int     // sample pairs still to play
	total int
}

func (t *tone) start(freq float64, samples int) {
	t.freq = freq
	t.phase = 0
	t.left = samples
	t.total = samples
}

// fill writes the tone into f, leaving silence once the tone has ended.
func (t *tone) fill(f core.AudioFrame) {
	step := t.freq / core.AudioSampleRate
	for i := 0; i < f.Len(); i++ {
		var v int16
		if t.left > 0 {
			amp := float64(toneAmplitude) * float64(t.left) / float64(t.total)
			if t.phase < 0.5 {
				v = int16(amp)
			} else {
				v = int16(-amp)
			}
			t.phase += step
			if t.phase >= 1 {
				t.phase -= 1
			}
			t.left--
		}
		f.Samples[2*i] = v
		f.Samples[2*i+1] = v
	}
}

func (g *Game) samplesPerTick() int {
	return core.SamplesPerTick(g.runtime.TickRate)
}

// mixAudio appends this tick's frame to the pending queue.
func (g *Game) mixAudio() {
	f := core.NewAudioFrame(g.samplesPerTick())
	g.tone.fill(f)
	g.pending = append(g.pending, f)
}

// PullAudio returns the frames mixed since the previous call, one per tick.
func (g *Game) PullAudio() []core.AudioFrame {
	if len(g.pending) == 0 {
		return nil
	}
	out := g.pending
	g.pending = nil
	return out
}
