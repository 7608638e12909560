package core

// Audio format shared by every simulation core and the audio sink.
const (
	AudioSampleRate = 44100
	AudioChannels   = 2
)

// AudioFrame is a fixed-length block of interleaved stereo int16 PCM.
// Samples holds Len()*AudioChannels values: L, R, L, R, ...
type AudioFrame struct {
	Samples []int16
}

// NewAudioFrame allocates a silent frame holding n sample pairs.
func NewAudioFrame(n int) AudioFrame {
	return AudioFrame{Samples: make([]int16, n*AudioChannels)}
}

// Len returns the number of sample pairs in the frame.
func (f AudioFrame) Len() int {
	return len(f.Samples) / AudioChannels
}

// SamplesPerTick returns how many sample pairs one tick of audio holds at the
// given tick rate. Cores produce one frame of this length per tick.
func SamplesPerTick(tickRate int) int {
	if tickRate <= 0 {
		return 0
	}
	return AudioSampleRate / tickRate
}
