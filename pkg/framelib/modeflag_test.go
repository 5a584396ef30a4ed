package framelib

import "testing"

// TestFlagGetSet verifies basic flag behavior.
func TestFlagGetSet(t *testing.T) {
	var f Flag
	if f.Get() {
		t.Fatal("zero-value flag should be false")
	}
	f.Set(true)
	if !f.Get() {
		t.Fatal("flag should be true after Set(true)")
	}
	f.Set(false)
	if f.Get() {
		t.Fatal("flag should be false after Set(false)")
	}
}

// TestFlagCompareAndSet verifies the swap only happens on a matching
// expectation.
func TestFlagCompareAndSet(t *testing.T) {
	var f Flag
	if !f.CompareAndSet(false, true) {
		t.Fatal("first CompareAndSet(false, true) should succeed")
	}
	if f.CompareAndSet(false, true) {
		t.Fatal("second CompareAndSet(false, true) should fail")
	}
	if !f.Get() {
		t.Fatal("flag should remain true")
	}
}

// TestParseMode verifies the settings-string mapping and the random
// default for unknown values.
func TestParseMode(t *testing.T) {
	if ParseMode("sequential") != ModeSequential {
		t.Error(`ParseMode("sequential") should be sequential`)
	}
	if ParseMode("random") != ModeRandom {
		t.Error(`ParseMode("random") should be random`)
	}
	if ParseMode("shuffled?") != ModeRandom {
		t.Error("unknown order strings should fall back to random")
	}
	if ModeSequential.String() != "sequential" || ModeRandom.String() != "random" {
		t.Error("Mode.String should round-trip the settings values")
	}
}
