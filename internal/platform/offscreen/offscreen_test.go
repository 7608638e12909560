package offscreen

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vovakirdan/wearbridge/internal/bridge"
	"github.com/vovakirdan/wearbridge/internal/config"
	"github.com/vovakirdan/wearbridge/internal/core"
	"github.com/vovakirdan/wearbridge/internal/cores/corridor"
	"github.com/vovakirdan/wearbridge/internal/cores/glider"
)

func testConfig() config.BridgeConfig {
	cfg := config.DefaultBridgeConfig()
	cfg.Pump.RenderEvery = 10
	cfg.Audio.BufferFrames = 16
	return cfg
}

func TestRunPresentsEveryTenTicks(t *testing.T) {
	res, err := Run(context.Background(), corridor.New(), testConfig(), Options{Ticks: 50})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if res.Stats.Ticks != 50 {
		t.Errorf("Ticks = %d, expected 50", res.Stats.Ticks)
	}
	if res.Stats.Presents != 5 || res.Frames != 5 {
		t.Errorf("Presents = %d, Frames = %d, expected 5", res.Stats.Presents, res.Frames)
	}
	if res.Stats.SkippedTicks != 0 {
		t.Errorf("SkippedTicks = %d, expected 0", res.Stats.SkippedTicks)
	}
	if res.Stats.AudioUnderruns != 0 || res.Stats.AudioOverruns != 0 {
		t.Errorf("audio underruns, overruns = %d, %d, expected 0, 0", res.Stats.AudioUnderruns, res.Stats.AudioOverruns)
	}
	if res.LastFrame == nil || res.LastFrame.Rect.Dx() != 192 || res.LastFrame.Rect.Dy() != 192 {
		t.Fatalf("LastFrame = %v, expected 192x192", res.LastFrame)
	}

	step := time.Second / 35
	if res.Elapsed < 50*step {
		t.Errorf("Elapsed = %v, expected at least %v", res.Elapsed, 50*step)
	}
}

func TestRunGlider(t *testing.T) {
	res, err := Run(context.Background(), glider.New(), testConfig(), Options{Ticks: 70})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Stats.Ticks != 70 || res.Stats.Presents != 7 {
		t.Errorf("Ticks, Presents = %d, %d, expected 70, 7", res.Stats.Ticks, res.Stats.Presents)
	}
}

func TestRunCustomSize(t *testing.T) {
	res, err := Run(context.Background(), corridor.New(), testConfig(), Options{
		Ticks: 10,
		Size:  core.Size{W: 320, H: 100},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.LastFrame == nil || res.LastFrame.Rect.Dx() != 320 || res.LastFrame.Rect.Dy() != 100 {
		t.Errorf("LastFrame = %v, expected 320x100", res.LastFrame)
	}
}

func TestRunOverloadSkipsTicks(t *testing.T) {
	cfg := testConfig()
	step := time.Second / time.Duration(cfg.Pump.TickRate)

	res, err := Run(context.Background(), corridor.New(), cfg, Options{
		Ticks:    50,
		Overload: 3 * step,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Stats.Ticks != 50 {
		t.Errorf("Ticks = %d, expected 50", res.Stats.Ticks)
	}
	if res.Stats.SkippedTicks == 0 {
		t.Error("SkippedTicks = 0, expected the catch-up bound to discard backlog")
	}
	if res.Stats.MaxCatchUp != cfg.Pump.MaxCatchUpTicks {
		t.Errorf("MaxCatchUp = %d, expected %d", res.Stats.MaxCatchUp, cfg.Pump.MaxCatchUpTicks)
	}
}

func TestRunReportsFault(t *testing.T) {
	c := corridor.NewWithOptions(corridor.Options{FaultAfterTicks: 20})

	res, err := Run(context.Background(), c, testConfig(), Options{Ticks: 50})
	if !bridge.IsCoreFault(err) {
		t.Fatalf("Run() error = %v, expected a core fault", err)
	}
	if !errors.Is(err, corridor.ErrInjectedFault) {
		t.Errorf("Run() error = %v, expected to wrap ErrInjectedFault", err)
	}
	if res.Stats.Ticks != 20 {
		t.Errorf("Ticks = %d, expected 20", res.Stats.Ticks)
	}
}

func TestRunRejectsZeroTicks(t *testing.T) {
	if _, err := Run(context.Background(), corridor.New(), testConfig(), Options{}); !errors.Is(err, ErrNoTicks) {
		t.Errorf("Run() error = %v, expected ErrNoTicks", err)
	}
}

func TestRunDeterministic(t *testing.T) {
	opts := Options{Ticks: 40, Seed: 7}

	a, err := Run(context.Background(), corridor.New(), testConfig(), opts)
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	b, err := Run(context.Background(), corridor.New(), testConfig(), opts)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if !bytes.Equal(a.LastFrame.Pix, b.LastFrame.Pix) {
		t.Error("same seed produced different final frames")
	}
}
