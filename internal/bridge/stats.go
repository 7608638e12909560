package bridge

// Stats is a point-in-time snapshot of the bridge counters.
type Stats struct {
	State RunState

	Ticks            uint64 // simulation ticks executed
	LastSeq          uint64 // sequence number of the last command frame
	Renders          uint64 // core render calls
	Presents         uint64 // frames that reached the surface
	DroppedPresents  uint64 // frames dropped on a lost surface
	CoalescedRenders uint64 // due renders merged during catch-up
	SkippedTicks     uint64 // backlog discarded by the catch-up bound
	MaxCatchUp       int    // most ticks run in a single iteration

	AudioUnderruns uint64
	AudioOverruns  uint64
	AudioBuffered  int

	InputDropped uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Ticks:            c.ticks.load(),
		LastSeq:          c.lastSeq.Load(),
		Renders:          c.renders.load(),
		Presents:         c.presents.load(),
		DroppedPresents:  c.droppedPresents.load(),
		CoalescedRenders: c.coalesced.load(),
		SkippedTicks:     c.skipped.load(),
		MaxCatchUp:       int(c.maxCatchUp.Load()),
		AudioUnderruns:   c.underruns.load(),
		AudioOverruns:    c.overruns.load(),
		InputDropped:     c.inputDropped.load(),
	}
}
