package profiler

import (
	"fmt"
	"log"
	"runtime"
	"sync/atomic"
	"time"
)

const mib = 1 << 20

// Stats is one logging window of the profiler.
type Stats struct {
	FPS       float64
	Frames    int
	Requests  int64
	Coalesced int64
	HeapMB    float64
	AllocRate float64 // MB/s allocated during the window
	GCs       uint32
	LastPause time.Duration
	MaxPause  time.Duration
	SysMB     float64
}

func (s Stats) String() string {
	return fmt.Sprintf("FPS: %.2f | Frames: %d | Requests: %d (coalesced: %d) | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %s, max: %s) | Sys: %.2f MB",
		s.FPS, s.Frames, s.Requests, s.Coalesced, s.HeapMB, s.AllocRate, s.GCs, s.LastPause, s.MaxPause, s.SysMB)
}

// Profiler counts drawn frames against frame requests and samples the Go heap. Frames are drawn
// on request, so a request count above the frame count means requests were coalesced.
type Profiler struct {
	requests       atomic.Int64
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration

	mem         runtime.MemStats
	lastGCCount uint32
	lastAlloc   uint64
}

// NewProfiler creates a Profiler that logs at most once per interval. A non-positive interval
// means one second.
//
// Parameters:
//   - interval: the minimum time between log lines
//
// Returns:
//   - *Profiler: the new profiler
func NewProfiler(interval time.Duration) *Profiler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: interval,
	}
}

// Request records one frame request. Safe to call from any goroutine.
func (p *Profiler) Request() {
	p.requests.Add(1)
}

// Tick records a drawn frame. The interval is only checked here, so an idle stretch shows up as
// a low FPS on the next line rather than as missing lines.
//
// Returns:
//   - bool: true if a stats line was logged
func (p *Profiler) Tick() bool {
	p.frameCount++
	now := time.Now()
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	log.Printf("[Profiler] %s", p.sample(elapsed))
	p.frameCount = 0
	p.lastTime = now
	return true
}

// sample closes the current window and resets the request counter.
func (p *Profiler) sample(elapsed time.Duration) Stats {
	runtime.ReadMemStats(&p.mem)
	secs := elapsed.Seconds()

	s := Stats{
		FPS:       float64(p.frameCount) / secs,
		Frames:    p.frameCount,
		Requests:  p.requests.Swap(0),
		HeapMB:    float64(p.mem.Alloc) / mib,
		AllocRate: float64(p.mem.TotalAlloc-p.lastAlloc) / mib / secs,
		GCs:       p.mem.NumGC,
		SysMB:     float64(p.mem.Sys) / mib,
	}
	s.Coalesced = coalesced(s.Requests, s.Frames)
	s.LastPause, s.MaxPause = pauses(&p.mem, p.lastGCCount)

	p.lastGCCount = p.mem.NumGC
	p.lastAlloc = p.mem.TotalAlloc
	return s
}

// pauses reads the most recent GC pause and the longest one since the since-th collection.
// PauseNs is a ring of the last 256 pauses.
func pauses(m *runtime.MemStats, since uint32) (last, longest time.Duration) {
	n := m.NumGC
	if n == 0 {
		return 0, 0
	}
	ring := uint32(len(m.PauseNs))
	last = time.Duration(m.PauseNs[(n-1)%ring])
	if n-since > ring {
		since = n - ring
	}
	for i := since; i < n; i++ {
		longest = max(longest, time.Duration(m.PauseNs[i%ring]))
	}
	return last, longest
}

// coalesced returns how many frame requests did not produce a frame of their own.
func coalesced(requests int64, frames int) int64 {
	return max(requests-int64(frames), 0)
}
