package emu

import (
	"fmt"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/vovakirdan/wearbridge/internal/core"
)

// speakerLatency is the device buffer handed to the speaker.
const speakerLatency = 100 * time.Millisecond

// Speaker plays a bridge audio stream on the default output device.
type Speaker struct {
	ctrl *beep.Ctrl
}

// StartSpeaker opens the output device and starts pulling from src.
// The speaker runs at the core sample rate so no resampling is needed.
func StartSpeaker(src beep.Streamer) (*Speaker, error) {
	sr := beep.SampleRate(core.AudioSampleRate)
	if err := speaker.Init(sr, sr.N(speakerLatency)); err != nil {
		return nil, fmt.Errorf("emu: speaker init: %w", err)
	}

	s := &Speaker{ctrl: &beep.Ctrl{Streamer: src}}
	speaker.Play(s.ctrl)
	return s, nil
}

// ToggleMute stops or restarts pulling from the stream and reports whether
// the speaker is now muted.
func (s *Speaker) ToggleMute() bool {
	speaker.Lock()
	defer speaker.Unlock()
	s.ctrl.Paused = !s.ctrl.Paused
	return s.ctrl.Paused
}

// Close stops playback and releases the device.
func (s *Speaker) Close() {
	speaker.Clear()
	speaker.Close()
}
