package core

import "testing"

func TestCommandFrameNeutral(t *testing.T) {
	var f CommandFrame
	if !f.Neutral() {
		t.Error("zero CommandFrame should be neutral")
	}

	f = f.WithSeq(42)
	if !f.Neutral() {
		t.Error("sequence number should not affect Neutral()")
	}
	if f.Seq != 42 {
		t.Errorf("Seq = %d, expected 42", f.Seq)
	}

	f.Actions = ActionFire
	if f.Neutral() {
		t.Error("frame with Fire should not be neutral")
	}
}

func TestCommandFrameHas(t *testing.T) {
	f := CommandFrame{Actions: ActionFire | ActionRun}

	if !f.Has(ActionFire) {
		t.Error("Has(Fire) = false, expected true")
	}
	if f.Has(ActionUse) {
		t.Error("Has(Use) = true, expected false")
	}
}

func TestActionString(t *testing.T) {
	tests := []struct {
		a        Action
		expected string
	}{
		{0, "None"},
		{ActionFire, "Fire"},
		{ActionFire | ActionMenu, "Fire|Menu"},
		{ActionRun, "Run"},
	}
	for _, tc := range tests {
		if got := tc.a.String(); got != tc.expected {
			t.Errorf("Action(%d).String() = %q, expected %q", tc.a, got, tc.expected)
		}
	}
}

func TestSamplesPerTick(t *testing.T) {
	if got := SamplesPerTick(35); got != 1260 {
		t.Errorf("SamplesPerTick(35) = %d, expected 1260", got)
	}
	if got := SamplesPerTick(0); got != 0 {
		t.Errorf("SamplesPerTick(0) = %d, expected 0", got)
	}
	f := NewAudioFrame(1260)
	if f.Len() != 1260 || len(f.Samples) != 2520 {
		t.Errorf("NewAudioFrame(1260): Len()=%d samples=%d", f.Len(), len(f.Samples))
	}
}
