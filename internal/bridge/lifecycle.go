package bridge

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/wearbridge/internal/core"
)

// SurfaceState is the state of the surface lifecycle.
type SurfaceState int

const (
	NoSurface SurfaceState = iota
	SurfaceReady
)

func (s SurfaceState) String() string {
	if s == SurfaceReady {
		return "ready"
	}
	return "none"
}

// lifecycle is the surface state machine:
//
//	NoSurface --created--> SurfaceReady --resized--> SurfaceReady --destroyed--> NoSurface
//
// Events outside these transitions are ignored.
type lifecycle struct {
	mu    sync.Mutex
	state SurfaceState
	size  core.Size

	gate      *gate
	presenter *Presenter
	input     *Translator
	log       *log.Logger
}

func (l *lifecycle) State() SurfaceState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *lifecycle) created(s Surface, size core.Size) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != NoSurface {
		l.log.Debug("surface created while one is active, ignored", "size", size)
		return
	}
	if s == nil {
		l.log.Debug("surface created without a handle, ignored")
		return
	}

	l.presenter.Attach(s, size)
	l.input.SetSurfaceSize(size)
	l.size = size
	l.state = SurfaceReady
	st := l.gate.setSurfaceReady(true)
	l.log.Info("surface created", "size", size, "run_state", st)
}

func (l *lifecycle) resized(size core.Size) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != SurfaceReady {
		l.log.Debug("surface resized without a surface, ignored", "size", size)
		return
	}
	if size == l.size {
		return
	}

	l.presenter.Resize(size)
	l.input.SetSurfaceSize(size)
	l.size = size
	l.log.Info("surface resized", "size", size)
}

// destroyed pauses the pump, cancels any in-flight present and waits for it
// to finish before returning. Held input is released.
func (l *lifecycle) destroyed() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != SurfaceReady {
		l.log.Debug("surface destroyed without a surface, ignored")
		return
	}

	st := l.gate.setSurfaceReady(false)
	l.presenter.Detach()
	l.input.Push(RawEvent{Kind: EventCancel})
	l.input.SetSurfaceSize(core.Size{})
	l.size = core.Size{}
	l.state = NoSurface
	l.log.Info("surface destroyed", "run_state", st)
}
