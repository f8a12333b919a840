package profiler

import (
	"log"
	"runtime"
	"sync"
	"time"
)

// Stats is one reporting window of frame and memory statistics.
type Stats struct {
	FPS           float64
	MeanFrameTime time.Duration
	// MaxFrameTime is the slowest single frame in the window.
	MaxFrameTime time.Duration
	HeapMB       float64
	AllocRateMB  float64
	NumGC        uint32
}

// Profiler counts rendered frames and periodically logs the frame rate, frame times and
// heap statistics. It replaces an on-screen FPS panel.
type Profiler struct {
	mu *sync.Mutex

	interval time.Duration
	now      func() time.Time
	quiet    bool

	windowStart time.Time
	lastFrame   time.Time
	frames      int
	maxFrame    time.Duration

	memStats       runtime.MemStats
	lastTotalAlloc uint64

	last Stats
}

// ProfilerOption configures a Profiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often statistics are reported. Defaults to one second.
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		p.now = now
	}
}

// WithQuiet computes statistics without logging them.
func WithQuiet(quiet bool) ProfilerOption {
	return func(p *Profiler) {
		p.quiet = quiet
	}
}

// NewProfiler creates a new Profiler. The first reporting window starts now.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		mu:       &sync.Mutex{},
		interval: time.Second,
		now:      time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	start := p.now()
	p.windowStart = start
	p.lastFrame = start
	return p
}

// Tick records one finished frame. When the reporting interval has elapsed it computes a
// Stats window, logs it and starts a new window.
//
// Returns:
//   - bool: true if a window was closed on this tick
func (p *Profiler) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	t := p.now()
	p.frames++
	p.maxFrame = max(p.maxFrame, t.Sub(p.lastFrame))
	p.lastFrame = t

	elapsed := t.Sub(p.windowStart)
	if elapsed < p.interval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc

	p.last = Stats{
		FPS:           float64(p.frames) / elapsed.Seconds(),
		MeanFrameTime: elapsed / time.Duration(p.frames),
		MaxFrameTime:  p.maxFrame,
		HeapMB:        float64(p.memStats.HeapAlloc) / 1024 / 1024,
		AllocRateMB:   float64(allocDelta) / 1024 / 1024 / elapsed.Seconds(),
		NumGC:         p.memStats.NumGC,
	}
	if !p.quiet {
		log.Printf("[Profiler] FPS: %.1f | frame: %.2f ms (max %.2f ms) | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d",
			p.last.FPS,
			float64(p.last.MeanFrameTime.Microseconds())/1000,
			float64(p.last.MaxFrameTime.Microseconds())/1000,
			p.last.HeapMB, p.last.AllocRateMB, p.last.NumGC)
	}

	p.frames = 0
	p.maxFrame = 0
	p.windowStart = t
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the most recently closed Stats window, or the zero value before the first.
func (p *Profiler) Last() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}
