// Package config provides YAML-based bridge configuration loading and power
// profile management.
package config

import "github.com/vovakirdan/wearbridge/internal/core"

// BridgeConfig contains all configuration for the engine bridge.
type BridgeConfig struct {
	Pump      PumpConfig      `yaml:"pump"`
	Presenter PresenterConfig `yaml:"presenter"`
	Audio     AudioConfig     `yaml:"audio"`
	Input     InputConfig     `yaml:"input"`
	Log       LogConfig       `yaml:"log"`
}

// PumpConfig defines the fixed-timestep loop parameters.
type PumpConfig struct {
	TickRate        int `yaml:"tick_rate"`          // Simulation ticks per second
	RenderEvery     int `yaml:"render_every"`       // Render once every N ticks
	MaxCatchUpTicks int `yaml:"max_catch_up_ticks"` // Upper bound of ticks per loop iteration
}

// PresenterConfig defines how frames are scaled onto the surface.
type PresenterConfig struct {
	Scaler     string `yaml:"scaler"`     // nearest, approx-bilinear, bilinear, catmull-rom
	Background string `yaml:"background"` // letterbox colour as #rrggbb
	Overlay    bool   `yaml:"overlay"`    // outline the touch zones over the frame
}

// AudioConfig defines the audio ring buffer.
type AudioConfig struct {
	Enabled      bool `yaml:"enabled"`
	BufferFrames int  `yaml:"buffer_frames"` // ring capacity in audio frames (one frame per tick)
	Volume       int  `yaml:"volume"`        // 0..127
}

// InputConfig defines how wearable input maps onto engine commands.
type InputConfig struct {
	MaxTurn     float64    `yaml:"max_turn"`      // turn rate clamp per tick
	RotaryGain  float64    `yaml:"rotary_gain"`   // turn rate per rotary detent
	KeyTurnRate float64    `yaml:"key_turn_rate"` // turn rate while a turn key is held
	Deadzone    float64    `yaml:"deadzone"`      // joystick deadzone radius, 0..1
	EventBuffer int        `yaml:"event_buffer"`  // raw events kept between ticks
	Zones       ZoneConfig `yaml:"zones"`
}

// ZoneConfig places the on-screen controls in normalized surface coordinates.
type ZoneConfig struct {
	Joystick core.Zone `yaml:"joystick"`
	Fire     core.Zone `yaml:"fire"`
	Use      core.Zone `yaml:"use"`
	Weapon   core.Zone `yaml:"weapon"`
	Menu     core.Zone `yaml:"menu"`
	Confirm  core.Zone `yaml:"confirm"`
}

// LogConfig defines logging output.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // empty means the host decides
}

// Scaler names accepted by PresenterConfig.Scaler.
const (
	ScalerNearest        = "nearest"
	ScalerApproxBiLinear = "approx-bilinear"
	ScalerBiLinear       = "bilinear"
	ScalerCatmullRom     = "catmull-rom"
)
