package bridge

import (
	"errors"
	"fmt"
)

var (
	// ErrSurfaceLost is returned by Present when there is no valid surface
	// or the surface went away while presenting. The frame is dropped.
	ErrSurfaceLost = errors.New("bridge: surface lost")

	// ErrPumpActive is returned by Run when another frame pump is already
	// running in this process.
	ErrPumpActive = errors.New("bridge: frame pump already active")

	// ErrNoCore is returned by New when no simulation core is given.
	ErrNoCore = errors.New("bridge: no simulation core")
)

// Phases in which a simulation core can fault.
const (
	PhaseReset  = "reset"
	PhaseTick   = "tick"
	PhaseRender = "render"
)

// CoreFault wraps an unrecoverable simulation core failure. A fault stops
// the current run; the bridge never presents frames from a faulted core.
type CoreFault struct {
	CoreID string
	Seq    uint64 // tick sequence number at the time of the fault
	Phase  string
	Err    error
}

func (f *CoreFault) Error() string {
	return fmt.Sprintf("bridge: core %s fault during %s at tick %d: %v", f.CoreID, f.Phase, f.Seq, f.Err)
}

func (f *CoreFault) Unwrap() error {
	return f.Err
}

// IsCoreFault reports whether err is or wraps a *CoreFault.
func IsCoreFault(err error) bool {
	var f *CoreFault
	return errors.As(err, &f)
}
