package logging

import (
	"slices"
	"testing"
)

func TestProgressSamplerDefaultsStep(t *testing.T) {
	for _, step := range []int{0, -5} {
		if s := NewProgressSampler(step); s.step != 25 {
			t.Fatalf("NewProgressSampler(%d).step = %d, want 25", step, s.step)
		}
	}
}

func TestProgressSamplerBuckets(t *testing.T) {
	s := NewProgressSampler(25)
	var logged []int
	for _, p := range []int{0, 5, 10, 25, 30, 49, 50, 75, 99, 100, 100} {
		if s.ShouldLog(p) {
			logged = append(logged, p)
		}
	}
	if want := []int{0, 25, 50, 75, 100}; !slices.Equal(logged, want) {
		t.Fatalf("logged = %v, want %v", logged, want)
	}
}

func TestProgressSamplerSkippedBuckets(t *testing.T) {
	s := NewProgressSampler(10)
	if s.ShouldLog(-1) {
		t.Fatal("negative percent should not log")
	}
	if !s.ShouldLog(45) {
		t.Fatal("first known percent should log")
	}
	if s.ShouldLog(49) {
		t.Fatal("same bucket should not log")
	}
	if !s.ShouldLog(95) {
		t.Fatal("jump across buckets should log")
	}
	if !s.ShouldLog(150) {
		t.Fatal("final bucket should log")
	}
	if s.ShouldLog(100) {
		t.Fatal("100 after clamp should not log twice")
	}
}

func TestProgressSamplerNil(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(50) {
		t.Fatal("nil sampler should always log")
	}
}
