package logging

import "testing"

func TestProgressSamplerEmitsOnBucketChange(t *testing.T) {
	sampler := NewProgressSampler(5)

	if !sampler.ShouldLog(0, "walk") {
		t.Fatal("expected first event to emit")
	}
	if sampler.ShouldLog(2, "walk") {
		t.Fatal("expected 2%% to stay in the first bucket")
	}
	if !sampler.ShouldLog(5, "walk") {
		t.Fatal("expected 5%% to cross into the next bucket")
	}
	if sampler.ShouldLog(7, "walk") {
		t.Fatal("expected 7%% to be suppressed")
	}
	if !sampler.ShouldLog(100, "walk") {
		t.Fatal("expected completion to emit")
	}
}

func TestProgressSamplerEmitsOnPhaseChange(t *testing.T) {
	sampler := NewProgressSampler(10)

	if !sampler.ShouldLog(50, "walk") {
		t.Fatal("expected first event to emit")
	}
	if !sampler.ShouldLog(50, "sidecars") {
		t.Fatal("expected phase change to emit even at the same percent")
	}
	if sampler.ShouldLog(52, "sidecars") {
		t.Fatal("expected same bucket in the new phase to be suppressed")
	}
}

func TestProgressSamplerUnknownPercent(t *testing.T) {
	sampler := NewProgressSampler(5)

	if !sampler.ShouldLog(-1, "walk") {
		t.Fatal("expected unknown percent with new phase to emit")
	}
	if sampler.ShouldLog(-1, "walk") {
		t.Fatal("expected repeated unknown percent in same phase to be suppressed")
	}
}

func TestProgressSamplerReset(t *testing.T) {
	sampler := NewProgressSampler(5)
	sampler.ShouldLog(50, "walk")
	sampler.Reset()
	if !sampler.ShouldLog(50, "walk") {
		t.Fatal("expected emit after reset")
	}
}

func TestProgressSamplerNilReceiver(t *testing.T) {
	var sampler *ProgressSampler
	if !sampler.ShouldLog(10, "walk") {
		t.Fatal("expected nil sampler to always log")
	}
	sampler.Reset()
}
