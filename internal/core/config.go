package core

// DefaultTickRate is the engine's historical simulation rate in ticks per second.
const DefaultTickRate = 35

// RuntimeConfig contains configuration passed to simulation cores at reset.
type RuntimeConfig struct {
	TickRate int   // Simulation ticks per second (default 35)
	Seed     int64 // RNG seed for deterministic simulation
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		TickRate: DefaultTickRate,
		Seed:     0, // 0 means use current time in the host
	}
}
