package config

import "fmt"

// Profile is a named power/thermal trade-off.
type Profile string

const (
	ProfileSaver       Profile = "saver"
	ProfileBalanced    Profile = "balanced"
	ProfilePerformance Profile = "performance"
)

// Profiles lists the known profiles in order of increasing power draw.
func Profiles() []Profile {
	return []Profile{ProfileSaver, ProfileBalanced, ProfilePerformance}
}

// ParseProfile validates a profile name. The empty string means no profile.
func ParseProfile(name string) (Profile, error) {
	switch p := Profile(name); p {
	case "", ProfileSaver, ProfileBalanced, ProfilePerformance:
		return p, nil
	default:
		return "", fmt.Errorf("config: unknown profile %q", name)
	}
}

// ApplyProfile modifies the config based on a power profile.
// Simulation rate is never touched; only render cadence, scaling quality and
// how hard the pump tries to catch up after a stall.
func ApplyProfile(cfg *BridgeConfig, p Profile) {
	switch p {
	case ProfileSaver:
		cfg.Pump.RenderEvery = 3
		cfg.Pump.MaxCatchUpTicks = 2
		cfg.Presenter.Scaler = ScalerNearest
	case ProfileBalanced:
		cfg.Pump.RenderEvery = 2
		cfg.Pump.MaxCatchUpTicks = 4
		cfg.Presenter.Scaler = ScalerApproxBiLinear
	case ProfilePerformance:
		cfg.Pump.RenderEvery = 1
		cfg.Pump.MaxCatchUpTicks = 5
		cfg.Presenter.Scaler = ScalerBiLinear
	}
}
