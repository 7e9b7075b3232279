// Package profiler logs frame rate, draw call and memory statistics.
package profiler

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/common"
)

// Profiler accumulates frame and draw call counts and logs them at a fixed interval.
type Profiler struct {
	frameCount     int
	drawCalls      int
	culled         int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	now    func() time.Time
	logger *slog.Logger
}

// Sample is what a Profiler logged for one interval.
type Sample struct {
	FPS          float64
	DrawCalls    float64 // per frame
	Culled       float64 // per frame
	HeapMB       float64
	AllocRateMBs float64
	GCCount      uint32
	MaxPauseUs   uint64
}

// NewProfiler creates a profiler that logs once per interval.
//
// Parameters:
//   - interval: the time between two log lines, one second when not positive
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(interval time.Duration) *Profiler {
	if interval <= 0 {
		interval = time.Second
	}
	p := &Profiler{
		updateInterval: interval,
		now:            time.Now,
		logger:         common.Logger("Profiler"),
	}
	p.lastTime = p.now()
	return p
}

// Tick records one frame. When the interval has elapsed it logs a Sample at info level
// and starts a new interval.
//
// Parameters:
//   - drawCalls: the draw calls issued this frame
//   - culled: the draw calls skipped by frustum culling this frame
//
// Returns:
//   - Sample: the logged statistics
//   - bool: true if stats were logged this tick
func (p *Profiler) Tick(drawCalls, culled int) (Sample, bool) {
	p.frameCount++
	p.drawCalls += drawCalls
	p.culled += culled

	current := p.now()
	elapsed := current.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Sample{}, false
	}

	runtime.ReadMemStats(&p.memStats)
	frames := float64(p.frameCount)
	s := Sample{
		FPS:          frames / elapsed.Seconds(),
		DrawCalls:    float64(p.drawCalls) / frames,
		Culled:       float64(p.culled) / frames,
		HeapMB:       float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMBs: float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:      p.memStats.NumGC,
	}

	// PauseNs is a circular buffer of the last 256 pauses.
	start := p.lastGCCount
	if s.GCCount-start > 256 {
		start = s.GCCount - 256
	}
	for i := start; i < s.GCCount; i++ {
		s.MaxPauseUs = max(s.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
	}

	p.logger.Info("frame stats",
		"fps", s.FPS,
		"draw_calls", s.DrawCalls,
		"culled", s.Culled,
		"heap_mb", s.HeapMB,
		"alloc_mb_s", s.AllocRateMBs,
		"gc", s.GCCount,
		"max_pause_us", s.MaxPauseUs,
	)

	p.frameCount, p.drawCalls, p.culled = 0, 0, 0
	p.lastTime = current
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return s, true
}
