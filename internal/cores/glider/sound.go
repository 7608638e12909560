package glider

import (
	"math"

	"github.com/vovakirdan/wearbridge/internal/core"
)

// chirpAmplitude is the peak sample value of a fresh chirp.
const chirpAmplitude = 5000

// chirp is a sine blip whose pitch falls by half over its length.
type chirp struct {
	freq  float64
	phase float64 // radians
	left  int     // sample pairs still to play
	total int
}

func (c *chirp) start(freq float64, samples int) {
	c.freq = freq
	c.phase = 0
	c.left = samples
	c.total = samples
}

// fill writes the chirp into f, leaving silence once it has ended.
func (c *chirp) fill(f core.AudioFrame) {
	for i := 0; i < f.Len(); i++ {
		var v int16
		if c.left > 0 {
			rest := float64(c.left) / float64(c.total)
			freq := c.freq * (0.5 + 0.5*rest)
			v = int16(chirpAmplitude * rest * math.Sin(c.phase))
			c.phase += 2 * math.Pi * freq / core.AudioSampleRate
			if c.phase >= 2*math.Pi {
				c.phase -= 2 * math.Pi
			}
			c.left--
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
	g.sfx.fill(f)
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
