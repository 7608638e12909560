package config

import (
	_ "embed"

	"github.com/vovakirdan/wearbridge/internal/core"
)

//go:embed defaults/bridge.yaml
var defaultBridgeYAML []byte

// DefaultBridgeConfig returns the default bridge configuration.
// It matches defaults/bridge.yaml and is used when the embedded file cannot
// be parsed.
func DefaultBridgeConfig() BridgeConfig {
	return BridgeConfig{
		Pump: PumpConfig{
			TickRate:        core.DefaultTickRate,
			RenderEvery:     2,
			MaxCatchUpTicks: 4,
		},
		Presenter: PresenterConfig{
			Scaler:     ScalerApproxBiLinear,
			Background: "#000000",
		},
		Audio: AudioConfig{
			Enabled:      true,
			BufferFrames: 8, // ~230ms at 35 ticks per second
			Volume:       100,
		},
		Input: InputConfig{
			MaxTurn:     1.0,
			RotaryGain:  0.25,
			KeyTurnRate: 0.5,
			Deadzone:    0.15,
			EventBuffer: 256,
			Zones: ZoneConfig{
				Joystick: core.Zone{X: 0.05, Y: 0.50, W: 0.45, H: 0.45},
				Fire:     core.Zone{X: 0.55, Y: 0.50, W: 0.40, H: 0.45},
				Use:      core.Zone{X: 0.60, Y: 0.20, W: 0.35, H: 0.30},
				Weapon:   core.Zone{X: 0.05, Y: 0.20, W: 0.35, H: 0.30},
				Menu:     core.Zone{X: 0.30, Y: 0.00, W: 0.40, H: 0.20},
				Confirm:  core.Zone{X: 0.40, Y: 0.22, W: 0.20, H: 0.20},
			},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultYAML returns the embedded default YAML.
func DefaultYAML() []byte {
	return defaultBridgeYAML
}
