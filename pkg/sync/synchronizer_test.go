package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecideSleepsAndPresentsWhenAhead(t *testing.T) {
	var slept time.Duration
	d := Decide(150, 100, DriftToleranceMS, func(dur time.Duration) { slept = dur })
	require.Equal(t, Present, d)
	require.Equal(t, 50*time.Millisecond, slept)
}

func TestDecideDropsWhenLate(t *testing.T) {
	// Inject a video frame whose PTS is elapsed - 25ms: must drop.
	d := Decide(100-25, 100, DriftToleranceMS, func(time.Duration) { t.Fatal("must not sleep") })
	require.Equal(t, Drop, d)
}

func TestDecidePresentsWithinTolerance(t *testing.T) {
	// elapsed - 15ms is within the 20ms tolerance: must present.
	d := Decide(100-15, 100, DriftToleranceMS, func(time.Duration) { t.Fatal("must not sleep") })
	require.Equal(t, Present, d)
}

func TestClockLatchesOnlyAfterBothReady(t *testing.T) {
	c := NewClock()
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.WaitLatched(ctx) }()

	c.MarkReady("video")
	select {
	case err := <-done:
		t.Fatalf("latched too early: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	before := time.Now()
	c.MarkReady("audio")
	require.NoError(t, <-done)
	require.WithinDuration(t, before, c.StartInstant(), 5*time.Millisecond)
}

func TestRunFirstFrameBarrier(t *testing.T) {
	// S3: feed the video decoder's ready signal but not audio's; no
	// presentation should occur until both fire.
	clock := NewClock()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	videoReady := make(chan struct{})
	videoIn := make(chan int64, 1)
	var presented []int64
	go Run(ctx, clock, "video", videoReady, videoIn, func(p int64) int64 { return p },
		func(p int64) { presented = append(presented, p) }, func(int64) {})

	close(videoReady)
	videoIn <- 10

	time.Sleep(30 * time.Millisecond)
	require.Empty(t, presented, "must not present before both streams are ready")

	clock.MarkReady("audio")
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, []int64{10}, presented)
}
