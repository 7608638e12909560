package bridge

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vovakirdan/wearbridge/internal/config"
	"github.com/vovakirdan/wearbridge/internal/core"
)

func TestNewRejectsMissingCore(t *testing.T) {
	if _, err := New(nil, testConfig()); !errors.Is(err, ErrNoCore) {
		t.Errorf("New(nil) error = %v, expected ErrNoCore", err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Pump.TickRate = 0
	var verr config.ValidationError
	if _, err := New(newFakeCore(), cfg); !errors.As(err, &verr) {
		t.Errorf("New() error = %v, expected a ValidationError", err)
	}
}

// Surface at 192x192, ten ticks of alternating movement, one render every
// two ticks: exactly five complete presents.
func TestTenTicksFivePresents(t *testing.T) {
	fc := newFakeCore()
	cfg := testConfig()
	cfg.Pump.RenderEvery = 2
	b, _ := newTestBridge(t, fc, cfg)

	surf := newRecordingSurface()
	b.OnSurfaceCreated(surf, core.Size{W: 192, H: 192})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fc.onTick = func(n int) {
		kind := EventKeyUp
		if n%2 == 1 {
			kind = EventKeyDown
		}
		b.OnInputEvent(RawEvent{Kind: kind, Key: KeyForward})
		if n == 10 {
			cancel()
		}
	}

	if err := b.Run(ctx); err != nil {
		t.Fatalf("Run() = %v, expected nil", err)
	}

	frames, renders, _, _ := fc.snapshot()
	if len(frames) != 10 {
		t.Fatalf("ticks = %d, expected 10", len(frames))
	}
	for i, f := range frames {
		if f.Seq != uint64(i+1) {
			t.Errorf("frame %d Seq = %d, expected %d", i, f.Seq, i+1)
		}
		wantY := 0.0
		if i%2 == 1 {
			wantY = 1
		}
		if f.MoveY != wantY {
			t.Errorf("frame %d MoveY = %v, expected %v", i, f.MoveY, wantY)
		}
	}

	if renders != 5 {
		t.Errorf("renders = %d, expected 5", renders)
	}
	images := surf.all()
	if len(images) != 5 {
		t.Fatalf("presents = %d, expected 5", len(images))
	}
	for i, img := range images {
		if img.Rect != image.Rect(0, 0, 192, 192) {
			t.Errorf("present %d bounds = %v, expected 192x192", i, img.Rect)
		}
		assertSolidContent(t, i, img)
	}

	st := b.Stats()
	if st.Ticks != 10 || st.Presents != 5 || st.LastSeq != 10 {
		t.Errorf("Stats() = %+v, expected 10 ticks, 5 presents, last seq 10", st)
	}
	if st.State != Stopped {
		t.Errorf("State after Run = %v, expected stopped", st.State)
	}
}

// assertSolidContent checks the letterboxed content area holds one colour,
// which a torn frame would not.
func assertSolidContent(t *testing.T, i int, img *image.RGBA) {
	t.Helper()
	fit := core.Fit(core.Size{W: core.NativeWidth, H: core.NativeHeight}, core.Size{W: img.Rect.Dx(), H: img.Rect.Dy()})
	want := img.RGBAAt(fit.X, fit.Y)
	for y := fit.Y; y < fit.Bottom(); y++ {
		for x := fit.X; x < fit.Right(); x++ {
			if got := img.RGBAAt(x, y); got != want {
				t.Errorf("present %d pixel (%d,%d) = %v, expected %v", i, x, y, got, want)
				return
			}
		}
	}
}

func TestEveryTickGetsOneFrame(t *testing.T) {
	fc := newFakeCore()
	b, _ := newTestBridge(t, fc, testConfig())
	b.OnSurfaceCreated(newRecordingSurface(), core.Size{W: 192, H: 192})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fc.onTick = func(n int) {
		if n == 50 {
			cancel()
		}
	}

	if err := b.Run(ctx); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	frames, _, _, _ := fc.snapshot()
	if len(frames) != 50 {
		t.Fatalf("ticks = %d, expected 50", len(frames))
	}
	for i, f := range frames {
		if !f.Neutral() {
			t.Errorf("frame %d = %+v, expected neutral without input", i, f)
		}
	}
}

func TestCatchUpIsBounded(t *testing.T) {
	fc := newFakeCore()
	cfg := testConfig()
	cfg.Pump.MaxCatchUpTicks = 3
	cfg.Pump.RenderEvery = 1
	b, clock := newTestBridge(t, fc, cfg)
	b.OnSurfaceCreated(newRecordingSurface(), core.Size{W: 64, H: 64})

	step := time.Second / time.Duration(cfg.Pump.TickRate)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Each tick takes five tick intervals: sustained overload.
	fc.onTick = func(n int) {
		clock.Advance(5 * step)
		if n == 30 {
			cancel()
		}
	}

	if err := b.Run(ctx); err != nil {
		t.Fatalf("Run() = %v", err)
	}

	st := b.Stats()
	if st.MaxCatchUp > 3 {
		t.Errorf("MaxCatchUp = %d, expected at most 3", st.MaxCatchUp)
	}
	if st.SkippedTicks == 0 {
		t.Error("SkippedTicks = 0, expected backlog to be discarded")
	}
	if st.CoalescedRenders == 0 {
		t.Error("CoalescedRenders = 0, expected renders merged during catch-up")
	}
	if st.Renders >= st.Ticks {
		t.Errorf("Renders = %d with %d ticks, expected at most one render per iteration", st.Renders, st.Ticks)
	}

	frames, _, _, _ := fc.snapshot()
	for i, f := range frames {
		if f.Seq != uint64(i+1) {
			t.Fatalf("frame %d Seq = %d, expected %d", i, f.Seq, i+1)
		}
	}
}

func TestPauseStopsAllCoreCalls(t *testing.T) {
	fc := newFakeCore()
	cfg := testConfig()
	cfg.Pump.RenderEvery = 1
	b, _ := newTestBridge(t, fc, cfg)
	surf := newRecordingSurface()
	b.OnSurfaceCreated(surf, core.Size{W: 64, H: 64})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	paused := make(chan struct{})
	fc.onTick = func(n int) {
		switch n {
		case 3:
			b.OnPauseRequested()
			close(paused)
		case 6:
			cancel()
		}
	}

	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	waitFor(t, paused, "pause")
	time.Sleep(50 * time.Millisecond)

	frames, renders, pulls, _ := fc.snapshot()
	if len(frames) != 3 {
		t.Errorf("ticks while paused = %d, expected 3", len(frames))
	}
	// Tick 3 requested the pause, so its render and audio never happen.
	if renders != 2 || surf.count() != 2 || pulls != 2 {
		t.Errorf("renders/presents/pulls while paused = %d/%d/%d, expected 2/2/2", renders, surf.count(), pulls)
	}
	if b.State() != Paused {
		t.Errorf("State() = %v, expected paused", b.State())
	}

	b.OnResumeRequested()
	if err := waitErr(t, done); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if n := fc.tickCount(); n != 6 {
		t.Errorf("ticks = %d, expected 6", n)
	}
}

func TestDestroyDuringPresentThenRecreate(t *testing.T) {
	fc := newFakeCore()
	cfg := testConfig()
	cfg.Pump.RenderEvery = 1
	b, _ := newTestBridge(t, fc, cfg)

	entered := make(chan struct{})
	var first atomic.Bool
	var destroyed, usedAfterDestroy atomic.Bool
	blocking := SurfaceFunc(func(ctx context.Context, img *image.RGBA) error {
		if destroyed.Load() {
			usedAfterDestroy.Store(true)
			return nil
		}
		if first.CompareAndSwap(false, true) {
			close(entered)
		}
		<-ctx.Done()
		return ctx.Err()
	})
	b.OnSurfaceCreated(blocking, core.Size{W: 96, H: 96})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	waitFor(t, entered, "present to start")
	b.OnSurfaceDestroyed()
	destroyed.Store(true)

	if b.State() != Paused {
		t.Errorf("State() after destroy = %v, expected paused", b.State())
	}
	if b.SurfaceState() != NoSurface {
		t.Errorf("SurfaceState() = %v, expected none", b.SurfaceState())
	}

	// Lifecycle races are no-ops.
	b.OnSurfaceDestroyed()
	b.OnSurfaceResized(core.Size{W: 10, H: 10})

	second := newRecordingSurface()
	b.OnSurfaceCreated(second, core.Size{W: 96, H: 96})
	waitFor(t, second.notify, "present on the new surface")

	cancel()
	if err := waitErr(t, done); err != nil {
		t.Fatalf("Run() = %v, expected nil after destroy", err)
	}
	if usedAfterDestroy.Load() {
		t.Error("destroyed surface used after OnSurfaceDestroyed returned")
	}
	if _, _, _, resets := fc.snapshot(); resets != 1 {
		t.Errorf("core resets = %d, expected 1 (no engine restart)", resets)
	}
	if st := b.Stats(); st.DroppedPresents == 0 {
		t.Error("DroppedPresents = 0, expected the cancelled present to be dropped")
	}
}

func TestCoreFaultStopsRun(t *testing.T) {
	fc := newFakeCore()
	boom := errors.New("boom")
	fc.failAt = 4
	fc.failErr = boom
	b, _ := newTestBridge(t, fc, testConfig())
	surf := newRecordingSurface()
	b.OnSurfaceCreated(surf, core.Size{W: 64, H: 64})

	err := b.Run(context.Background())
	var fault *CoreFault
	if !errors.As(err, &fault) {
		t.Fatalf("Run() = %v, expected *CoreFault", err)
	}
	if fault.Seq != 4 || fault.Phase != PhaseTick || !errors.Is(err, boom) {
		t.Errorf("fault = %+v, expected tick 4 wrapping boom", fault)
	}
	if b.State() != Stopped {
		t.Errorf("State() = %v, expected stopped", b.State())
	}

	select {
	case got := <-b.Faults():
		if !IsCoreFault(got) {
			t.Errorf("Faults() delivered %v, expected a CoreFault", got)
		}
	default:
		t.Error("Faults() delivered nothing")
	}

	presents := surf.count()
	time.Sleep(20 * time.Millisecond)
	if surf.count() != presents {
		t.Error("frames presented after the fault")
	}
}

func TestSecondPumpRejected(t *testing.T) {
	b1, _ := newTestBridge(t, newFakeCore(), testConfig())
	b2, _ := newTestBridge(t, newFakeCore(), testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	started := make(chan struct{})
	go func() {
		close(started)
		done <- b1.Run(ctx)
	}()
	<-started

	// b1 has no surface, so it parks in the paused wait.
	deadline := time.Now().Add(2 * time.Second)
	for b1.State() != Paused && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	if err := b2.Run(context.Background()); !errors.Is(err, ErrPumpActive) {
		t.Errorf("second Run() = %v, expected ErrPumpActive", err)
	}

	cancel()
	if err := waitErr(t, done); err != nil {
		t.Errorf("first Run() = %v", err)
	}
}

func TestAudioFlowsThroughSink(t *testing.T) {
	fc := newFakeCore()
	b, _ := newTestBridge(t, fc, testConfig())
	b.OnSurfaceCreated(newRecordingSurface(), core.Size{W: 64, H: 64})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fc.onTick = func(n int) {
		if n == 3 {
			cancel()
		}
	}
	if err := b.Run(ctx); err != nil {
		t.Fatalf("Run() = %v", err)
	}

	// Three iterations with one tick each, one pulled frame per iteration.
	if got := b.Audio().Buffered(); got != 3 {
		t.Errorf("Buffered() = %d, expected 3", got)
	}
	dst := make([]int16, 4)
	if n := b.Audio().ReadSamples(dst); n != 4 || dst[0] == 0 {
		t.Errorf("ReadSamples() = %d %v, expected core audio", n, dst)
	}

	// The output keeps reading after the run; that silence is expected.
	rest := make([]int16, 1<<16)
	for i := 0; i < 5; i++ {
		b.Audio().ReadSamples(rest)
	}
	if got := b.Stats().AudioUnderruns; got != 0 {
		t.Errorf("AudioUnderruns = %d after Run returned, expected 0", got)
	}
}

func TestAudioDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Audio.Enabled = false
	b, _ := newTestBridge(t, newFakeCore(), cfg)
	if b.Audio() != nil {
		t.Error("Audio() != nil with audio disabled")
	}
	if err := b.Close(); err != nil {
		t.Errorf("Close() = %v, expected nil without audio", err)
	}
}

func TestCloseReleasesMetrics(t *testing.T) {
	b, _ := newTestBridge(t, newFakeCore(), testConfig())
	if b.stats.reg == nil {
		t.Fatal("audio gauge callback not registered")
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if b.stats.reg != nil {
		t.Error("registration kept after Close")
	}
	if err := b.Close(); err != nil {
		t.Errorf("second Close() = %v, expected nil", err)
	}
}
