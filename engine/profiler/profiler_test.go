package profiler

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickLogsOncePerInterval(t *testing.T) {
	var buf bytes.Buffer
	clock := time.Unix(0, 0)

	p := NewProfiler(time.Second)
	p.now = func() time.Time { return clock }
	p.lastTime = clock
	p.logger = slog.New(slog.NewTextHandler(&buf, nil))

	for i := 0; i < 3; i++ {
		clock = clock.Add(250 * time.Millisecond)
		_, logged := p.Tick(10, 2)
		assert.False(t, logged)
	}

	clock = clock.Add(250 * time.Millisecond)
	s, logged := p.Tick(14, 2)
	require.True(t, logged)
	assert.InDelta(t, 4.0, s.FPS, 1e-9)
	assert.InDelta(t, 11.0, s.DrawCalls, 1e-9)
	assert.InDelta(t, 2.0, s.Culled, 1e-9)
	assert.Contains(t, buf.String(), "frame stats")
	assert.Contains(t, buf.String(), "draw_calls=11")

	// The next interval starts from zero.
	clock = clock.Add(time.Second)
	s, logged = p.Tick(5, 0)
	require.True(t, logged)
	assert.InDelta(t, 1.0, s.FPS, 1e-9)
	assert.InDelta(t, 5.0, s.DrawCalls, 1e-9)
}

func TestNewProfilerDefaultsInterval(t *testing.T) {
	p := NewProfiler(0)
	assert.Equal(t, time.Second, p.updateInterval)
}
