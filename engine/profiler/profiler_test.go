package profiler

import (
	"testing"
	"time"
)

// fakeClock advances by a fixed step on every read.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) now() time.Time {
	t := c.t
	c.t = c.t.Add(c.step)
	return t
}

func TestTickReportsWindow(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0), step: 10 * time.Millisecond}
	p := NewProfiler(WithClock(clock.now), WithQuiet(true))

	reported := 0
	for i := 0; i < 100; i++ {
		if p.Tick() {
			reported++
		}
	}
	if reported != 1 {
		t.Fatalf("expected one report over one second of frames, got %d", reported)
	}

	s := p.Last()
	if s.FPS < 99 || s.FPS > 101 {
		t.Errorf("expected about 100 FPS, got %.2f", s.FPS)
	}
	if s.MeanFrameTime != 10*time.Millisecond {
		t.Errorf("expected 10ms mean frame time, got %v", s.MeanFrameTime)
	}
	if s.MaxFrameTime != 10*time.Millisecond {
		t.Errorf("expected 10ms max frame time, got %v", s.MaxFrameTime)
	}
}

func TestTickBeforeInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0), step: time.Millisecond}
	p := NewProfiler(WithClock(clock.now), WithQuiet(true), WithInterval(time.Minute))
	for i := 0; i < 50; i++ {
		if p.Tick() {
			t.Fatal("no window should close before the interval")
		}
	}
	if p.Last() != (Stats{}) {
		t.Errorf("expected zero stats, got %+v", p.Last())
	}
}
