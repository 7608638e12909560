package bridge

import "sync"

// RunState governs whether the frame pump executes.
type RunState int

const (
	Stopped RunState = iota
	Running
	Paused
)

func (s RunState) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// gate derives the run state from the inputs that may change it: a run
// requested by Run, a ready surface, an explicit user pause and a core fault.
// Every state change closes the current wake channel, so a waiting pump sees
// it without polling.
type gate struct {
	mu           sync.Mutex
	runRequested bool
	surfaceReady bool
	userPaused   bool
	faulted      bool

	state     RunState
	resumeSeq uint64 // incremented on every transition into Running
	wake      chan struct{}
}

func newGate() *gate {
	return &gate{wake: make(chan struct{})}
}

// snapshot returns the current state, the resume sequence and a channel that
// is closed on the next state change.
func (g *gate) snapshot() (RunState, uint64, <-chan struct{}) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state, g.resumeSeq, g.wake
}

func (g *gate) State() RunState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *gate) running() bool {
	return g.State() == Running
}

func (g *gate) setRunRequested(v bool) RunState {
	return g.update(func() { g.runRequested = v })
}

func (g *gate) setSurfaceReady(v bool) RunState {
	return g.update(func() { g.surfaceReady = v })
}

func (g *gate) setUserPaused(v bool) RunState {
	return g.update(func() { g.userPaused = v })
}

func (g *gate) fault() RunState {
	return g.update(func() { g.faulted = true })
}

func (g *gate) clearFault() RunState {
	return g.update(func() { g.faulted = false })
}

func (g *gate) update(fn func()) RunState {
	g.mu.Lock()
	defer g.mu.Unlock()

	fn()

	next := Paused
	switch {
	case g.faulted || !g.runRequested:
		next = Stopped
	case g.surfaceReady && !g.userPaused:
		next = Running
	}

	if next != g.state {
		if next == Running {
			g.resumeSeq++
		}
		g.state = next
		close(g.wake)
		g.wake = make(chan struct{})
	}
	return g.state
}
