// Package otoaudio plays the bridge audio ring through oto on the native
// hosts.
package otoaudio

import (
	"fmt"
	"io"
	"time"

	"github.com/hajimehoshi/oto/v2"

	"github.com/vovakirdan/wearbridge/internal/core"
)

// bufferTime is the player buffer. It stays close to the bridge ring so the
// added latency is a few ticks.
const bufferTime = 60 * time.Millisecond

// Output streams PCM from a reader to the default audio device.
type Output struct {
	ctx    *oto.Context
	player oto.Player
}

// Start opens the device and starts pulling from src, which must yield
// interleaved stereo little-endian int16 at core.AudioSampleRate.
// oto allows one context per process, so Start is called once.
func Start(src io.Reader) (*Output, error) {
	ctx, ready, err := oto.NewContext(core.AudioSampleRate, core.AudioChannels, oto.FormatSignedInt16LE)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	player := ctx.NewPlayer(src)
	if s, ok := player.(oto.BufferSizeSetter); ok {
		bytesPerSecond := core.AudioSampleRate * core.AudioChannels * 2
		s.SetBufferSize(int(bufferTime.Seconds() * float64(bytesPerSecond)))
	}
	player.Play()

	return &Output{ctx: ctx, player: player}, nil
}

// SetPaused suspends or resumes the device stream.
func (o *Output) SetPaused(paused bool) {
	if paused {
		o.player.Pause()
		return
	}
	o.player.Play()
}

// Close stops playback.
func (o *Output) Close() error {
	return o.player.Close()
}
