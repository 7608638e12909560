package glider

import (
	"bytes"
	"testing"

	"github.com/vovakirdan/wearbridge/internal/core"
	"github.com/vovakirdan/wearbridge/internal/registry"
)

func newTestGame(t *testing.T) *Game {
	t.Helper()
	g := New()
	if err := g.Reset(core.RuntimeConfig{TickRate: 35, Seed: 7}); err != nil {
		t.Fatalf("Reset() failed: %v", err)
	}
	return g
}

func tick(t *testing.T, g *Game, cmd core.CommandFrame) {
	t.Helper()
	if err := g.Tick(cmd); err != nil {
		t.Fatalf("Tick() failed: %v", err)
	}
}

var flap = core.CommandFrame{Actions: core.ActionFire}

func TestRegistered(t *testing.T) {
	c, err := registry.Create("glider")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if c.Title() != "Glider" {
		t.Errorf("Title() = %q, expected %q", c.Title(), "Glider")
	}
}

func TestCallsBeforeReset(t *testing.T) {
	g := New()
	if err := g.Tick(core.CommandFrame{Seq: 1}); err == nil {
		t.Error("Tick() before Reset returned nil error")
	}
	if _, err := g.Render(); err == nil {
		t.Error("Render() before Reset returned nil error")
	}
	if err := g.Reset(core.RuntimeConfig{}); err == nil {
		t.Error("Reset() with zero tick rate returned nil error")
	}
}

func TestGravity(t *testing.T) {
	g := newTestGame(t)
	before := g.Altitude()

	tick(t, g, core.CommandFrame{})

	if g.Altitude() <= before {
		t.Errorf("Altitude() = %f, expected below %f", g.Altitude(), before)
	}
	if g.playerVel <= 0 {
		t.Errorf("velocity = %f, expected positive after gravity", g.playerVel)
	}
}

func TestFlapIsEdgeTriggered(t *testing.T) {
	g := newTestGame(t)
	before := g.Altitude()

	tick(t, g, flap)
	if g.Altitude() >= before {
		t.Errorf("flap should move the player up, was %f, now %f", before, g.Altitude())
	}
	first := g.playerVel

	// Still held: gravity only.
	tick(t, g, flap)
	if g.playerVel <= first {
		t.Errorf("held flap velocity = %f, expected above %f", g.playerVel, first)
	}

	// Released and pressed again.
	tick(t, g, core.CommandFrame{})
	tick(t, g, core.CommandFrame{MoveY: 1})
	if g.playerVel != first {
		t.Errorf("second flap velocity = %f, expected %f", g.playerVel, first)
	}
}

func TestPassingGateScores(t *testing.T) {
	g := newTestGame(t)
	g.gates.gates = append(g.gates.gates, Gate{X: PlayerX - GateWidth - 1, GapY: 20, GapH: 60})

	tick(t, g, core.CommandFrame{})

	if g.Score() != 1 {
		t.Errorf("Score() = %d, expected 1", g.Score())
	}
	if g.Best() != 1 {
		t.Errorf("Best() = %d, expected 1", g.Best())
	}
}

func TestGateCollision(t *testing.T) {
	g := newTestGame(t)
	// Overlaps the player with the gap far above it.
	g.gates.gates = append(g.gates.gates, Gate{X: PlayerX - 1, GapY: 0, GapH: 10})

	tick(t, g, core.CommandFrame{})

	if !g.Crashed() {
		t.Error("player should crash into the gate")
	}
}

func TestGroundCrashAndRestart(t *testing.T) {
	g := newTestGame(t)
	g.playerY = float64(core.NativeHeight - GroundHeight - PlayerSize - 1)
	g.playerVel = MaxFallSpeed

	tick(t, g, core.CommandFrame{})
	if !g.Crashed() {
		t.Fatal("player should crash into the ground")
	}

	// A crashed flight ignores flaps.
	y := g.Altitude()
	tick(t, g, flap)
	if g.Altitude() != y {
		t.Errorf("Altitude() = %f after crash, expected %f", g.Altitude(), y)
	}

	tick(t, g, core.CommandFrame{Actions: core.ActionConfirm})
	if g.Crashed() {
		t.Error("Confirm should start a new flight")
	}
	if g.Score() != 0 {
		t.Errorf("Score() = %d after restart, expected 0", g.Score())
	}
}

func TestMenuFreezesFlight(t *testing.T) {
	g := newTestGame(t)

	tick(t, g, core.CommandFrame{Actions: core.ActionMenu})
	if !g.MenuOpen() {
		t.Fatal("menu should be open")
	}
	y := g.Altitude()
	tick(t, g, core.CommandFrame{})
	if g.Altitude() != y {
		t.Errorf("Altitude() = %f with menu open, expected %f", g.Altitude(), y)
	}

	tick(t, g, core.CommandFrame{Actions: core.ActionMenu})
	if g.MenuOpen() {
		t.Error("menu should be closed")
	}
}

func TestRender(t *testing.T) {
	g := newTestGame(t)
	buf, err := g.Render()
	if err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	if buf.Width() != core.NativeWidth || buf.Height() != core.NativeHeight {
		t.Errorf("Render() size = %dx%d, expected %dx%d", buf.Width(), buf.Height(), core.NativeWidth, core.NativeHeight)
	}
	if got := buf.At(core.NativeWidth-1, 0); got != colorSky {
		t.Errorf("pixel top right = %v, expected sky %v", got, colorSky)
	}
	if got := buf.At(0, core.NativeHeight-1); got != colorGround {
		t.Errorf("pixel bottom = %v, expected ground %v", got, colorGround)
	}
	if got := buf.At(PlayerX, int(g.Altitude())); got != colorPlayer {
		t.Errorf("pixel at player = %v, expected %v", got, colorPlayer)
	}
}

func TestDeterministic(t *testing.T) {
	run := func() ([]byte, int) {
		g := newTestGame(t)
		for i := 0; i < 300; i++ {
			cmd := core.CommandFrame{Seq: uint64(i + 1)}
			if i%12 == 0 {
				cmd.Actions = core.ActionFire
			}
			if i%90 == 89 {
				cmd.Actions |= core.ActionConfirm
			}
			tick(t, g, cmd)
		}
		buf, err := g.Render()
		if err != nil {
			t.Fatalf("Render() failed: %v", err)
		}
		return bytes.Clone(buf.Pix()), g.Best()
	}

	pixA, bestA := run()
	pixB, bestB := run()
	if !bytes.Equal(pixA, pixB) {
		t.Error("identical inputs produced different frames")
	}
	if bestA != bestB {
		t.Errorf("Best() = %d and %d, expected equal", bestA, bestB)
	}
}

func TestAudio(t *testing.T) {
	g := newTestGame(t)
	tick(t, g, core.CommandFrame{})
	tick(t, g, flap)

	frames := g.PullAudio()
	if len(frames) != 2 {
		t.Fatalf("PullAudio() = %d frames, expected 2", len(frames))
	}
	for i, f := range frames {
		if f.Len() != 1260 {
			t.Errorf("frame %d Len() = %d, expected 1260", i, f.Len())
		}
	}
	for _, s := range frames[0].Samples {
		if s != 0 {
			t.Fatal("frame 0 is not silent without input")
		}
	}
	loud := false
	for _, s := range frames[1].Samples {
		if s != 0 {
			loud = true
			break
		}
	}
	if !loud {
		t.Error("flap frame is silent")
	}
	if again := g.PullAudio(); again != nil {
		t.Errorf("second PullAudio() = %d frames, expected none", len(again))
	}
}
