package device

import (
	"context"
	"time"
)

// RefreshRateMeasurer estimates the display refresh rate by counting frame
// ticks over a sampling window. Frames come from a tick source so tests can
// drive the measurement deterministically; the default source simulates a
// 60 Hz panel, which is what a headless environment reports.
type RefreshRateMeasurer struct {
	// Interval between simulated frames when no Ticks source is set.
	FrameInterval time.Duration
	// Ticks overrides the frame source entirely when non-nil.
	Ticks <-chan time.Time
}

func NewRefreshRateMeasurer() *RefreshRateMeasurer {
	return &RefreshRateMeasurer{FrameInterval: time.Second / 60}
}

// Measure counts frames for the given window and returns the rate in Hz.
// A canceled context ends the measurement early with the rate observed so
// far over the elapsed time.
func (m *RefreshRateMeasurer) Measure(ctx context.Context, window time.Duration) float64 {
	ticks := m.Ticks
	if ticks == nil {
		t := time.NewTicker(m.FrameInterval)
		defer t.Stop()
		ticks = t.C
	}

	deadline := time.NewTimer(window)
	defer deadline.Stop()

	start := time.Now()
	frames := 0

	for {
		select {
		case <-ctx.Done():
			return rate(frames, time.Since(start))
		case <-deadline.C:
			return rate(frames, window)
		case <-ticks:
			frames++
		}
	}
}

func rate(frames int, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(frames) / elapsed.Seconds()
}
