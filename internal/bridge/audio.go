package bridge

import (
	"encoding/binary"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/vovakirdan/wearbridge/internal/core"
)

// MaxVolume is the top of the master volume range.
const MaxVolume = 127

// AudioSink is a bounded ring of audio frames between the frame pump and
// the platform audio output. The pump writes whole frames; the output reads
// samples at its own pace through ReadSamples, Read or Stream.
//
// On overrun the oldest frames are dropped. On underrun the reader gets
// silence; a read never blocks on the producer.
type AudioSink struct {
	mu    sync.Mutex
	ring  []core.AudioFrame
	head  int // index of the oldest frame
	count int

	cur     []int16 // frame being consumed, owned by the reader side
	pos     int
	scratch []int16 // conversion buffer of Read and Stream, reader side

	// active is false while the pump is not running; silence read then is
	// expected and not counted as an underrun.
	active atomic.Bool
	volume atomic.Int32

	underruns *counter
	overruns  *counter

	log  *log.Logger
	diag rate.Sometimes
}

// NewAudioSink creates a sink holding up to capacity frames.
func NewAudioSink(capacity, volume int, logger *log.Logger) *AudioSink {
	if capacity < 1 {
		capacity = 1
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &AudioSink{
		ring:      make([]core.AudioFrame, capacity),
		underruns: &counter{},
		overruns:  &counter{},
		log:       logger,
		diag:      rate.Sometimes{Interval: 5 * time.Second},
	}
	s.SetVolume(volume)
	return s
}

// Capacity returns the ring size in frames.
func (s *AudioSink) Capacity() int {
	return len(s.ring)
}

// Buffered returns the number of whole frames waiting in the ring.
func (s *AudioSink) Buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// SetVolume sets the master volume, clamped to 0..MaxVolume.
func (s *AudioSink) SetVolume(v int) {
	s.volume.Store(int32(core.Clamp(v, 0, MaxVolume)))
}

// Volume returns the master volume.
func (s *AudioSink) Volume() int {
	return int(s.volume.Load())
}

// Underruns returns how many reads were padded with silence while active.
func (s *AudioSink) Underruns() uint64 { return s.underruns.load() }

// Overruns returns how many frames were dropped on a full ring.
func (s *AudioSink) Overruns() uint64 { return s.overruns.load() }

func (s *AudioSink) useCounters(c *counters) {
	s.underruns = &c.underruns
	s.overruns = &c.overruns
}

func (s *AudioSink) setActive(v bool) {
	s.active.Store(v)
}

// Write appends frames to the ring, copying their samples. When the ring is
// full the oldest frame is dropped to make room.
func (s *AudioSink) Write(frames ...core.AudioFrame) {
	if len(frames) == 0 {
		return
	}

	s.mu.Lock()
	dropped := 0
	for _, f := range frames {
		if s.count == len(s.ring) {
			s.head = (s.head + 1) % len(s.ring)
			s.count--
			dropped++
		}
		slot := &s.ring[(s.head+s.count)%len(s.ring)]
		slot.Samples = append(slot.Samples[:0], f.Samples...)
		s.count++
	}
	s.mu.Unlock()

	if dropped > 0 {
		s.overruns.add(uint64(dropped))
		s.diag.Do(func() {
			s.log.Warn("audio overrun, dropped oldest frames", "dropped", dropped, "total", s.overruns.load())
		})
	}
}

// Reset discards all buffered audio.
func (s *AudioSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.head, s.count = 0, 0
	s.cur, s.pos = nil, 0
}

// ReadSamples fills dst with interleaved stereo samples, padding with
// silence when the ring runs dry. It returns the number of samples that came
// from the ring.
func (s *AudioSink) ReadSamples(dst []int16) int {
	s.mu.Lock()
	n := 0
	for n < len(dst) {
		if s.pos >= len(s.cur) {
			if s.count == 0 {
				break
			}
			// Write reuses slot storage once the slot is freed.
			slot := &s.ring[s.head]
			s.cur = append(s.cur[:0], slot.Samples...)
			s.pos = 0
			s.head = (s.head + 1) % len(s.ring)
			s.count--
			continue
		}
		c := copy(dst[n:], s.cur[s.pos:])
		s.pos += c
		n += c
	}
	s.mu.Unlock()

	applyVolume(dst[:n], s.Volume())
	clear(dst[n:])

	if n < len(dst) && s.active.Load() {
		s.underruns.inc()
		missing := len(dst) - n
		s.diag.Do(func() {
			s.log.Warn("audio underrun, playing silence", "missing_samples", missing, "total", s.underruns.load())
		})
	}
	return n
}

func applyVolume(samples []int16, vol int) {
	if vol == MaxVolume {
		return
	}
	for i, v := range samples {
		samples[i] = int16(int32(v) * int32(vol) / MaxVolume)
	}
}

// Read implements io.Reader over little-endian int16 PCM, the format oto
// players consume. It always fills p (rounded down to whole samples) and
// never returns an error.
func (s *AudioSink) Read(p []byte) (int, error) {
	samples := s.scratchFor(len(p) / 2)
	s.ReadSamples(samples)
	for i, v := range samples {
		binary.LittleEndian.PutUint16(p[2*i:], uint16(v))
	}
	return len(samples) * 2, nil
}

// Stream implements beep.Streamer. The stream never ends; silence fills
// gaps.
func (s *AudioSink) Stream(samples [][2]float64) (int, bool) {
	buf := s.scratchFor(len(samples) * core.AudioChannels)
	s.ReadSamples(buf)
	for i := range samples {
		samples[i][0] = float64(buf[2*i]) / 32768
		samples[i][1] = float64(buf[2*i+1]) / 32768
	}
	return len(samples), true
}

// scratchFor returns the reader's conversion buffer resized to n samples.
// It only grows, so a steady callback size allocates once.
func (s *AudioSink) scratchFor(n int) []int16 {
	if cap(s.scratch) < n {
		s.scratch = make([]int16, n)
	}
	return s.scratch[:n]
}

// Err implements beep.Streamer.
func (s *AudioSink) Err() error {
	return nil
}
