package config

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/wearbridge/internal/core"
)

// ValidationError describes one invalid configuration value.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Field, e.Message)
}

// Validate checks every section and returns all problems joined together.
func (c BridgeConfig) Validate() error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.Pump.TickRate < 1 || c.Pump.TickRate > 1000 {
		add("pump.tick_rate", "must be in 1..1000, got %d", c.Pump.TickRate)
	}
	if c.Pump.RenderEvery < 1 {
		add("pump.render_every", "must be at least 1, got %d", c.Pump.RenderEvery)
	}
	if c.Pump.MaxCatchUpTicks < 1 {
		add("pump.max_catch_up_ticks", "must be at least 1, got %d", c.Pump.MaxCatchUpTicks)
	}

	switch c.Presenter.Scaler {
	case ScalerNearest, ScalerApproxBiLinear, ScalerBiLinear, ScalerCatmullRom:
	default:
		add("presenter.scaler", "unknown scaler %q", c.Presenter.Scaler)
	}
	if _, err := ParseColor(c.Presenter.Background); err != nil {
		add("presenter.background", "%v", err)
	}

	if c.Audio.BufferFrames < 1 {
		add("audio.buffer_frames", "must be at least 1, got %d", c.Audio.BufferFrames)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 127 {
		add("audio.volume", "must be in 0..127, got %d", c.Audio.Volume)
	}

	if c.Input.MaxTurn <= 0 {
		add("input.max_turn", "must be positive, got %g", c.Input.MaxTurn)
	}
	if c.Input.Deadzone < 0 || c.Input.Deadzone >= 1 {
		add("input.deadzone", "must be in [0, 1), got %g", c.Input.Deadzone)
	}
	if c.Input.EventBuffer < 1 {
		add("input.event_buffer", "must be at least 1, got %d", c.Input.EventBuffer)
	}
	for _, nz := range []struct {
		name string
		zone core.Zone
	}{
		{"joystick", c.Input.Zones.Joystick},
		{"fire", c.Input.Zones.Fire},
		{"use", c.Input.Zones.Use},
		{"weapon", c.Input.Zones.Weapon},
		{"menu", c.Input.Zones.Menu},
		{"confirm", c.Input.Zones.Confirm},
	} {
		name, z := nz.name, nz.zone
		if z.W <= 0 || z.H <= 0 || z.X < 0 || z.Y < 0 || z.X+z.W > 1.0001 || z.Y+z.H > 1.0001 {
			add("input.zones."+name, "must lie inside the unit square, got %+v", z)
		}
	}

	if c.Log.Level != "" {
		if _, err := log.ParseLevel(c.Log.Level); err != nil {
			add("log.level", "%v", err)
		}
	}

	return errors.Join(errs...)
}

// ParseColor parses a #rrggbb colour into an opaque RGBA value.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("colour %q is not #rrggbb", "#"+s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("colour %q is not #rrggbb: %w", "#"+s, err)
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}
