// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package sync

import (
	"context"
	"time"
)

// DriftToleranceMS is the default late-frame drop threshold (spec.md §4.5).
const DriftToleranceMS = 20

// Decision is the synchronizer's verdict for one frame.
type Decision int

const (
	Present Decision = iota
	Drop
)

// Decide implements the spec.md §4.5 pseudocode against an injected
// elapsed/sleep pair, so scenario tests (S4) can drive it without a real
// clock.
func Decide(ptsMillis, elapsedMillis int64, driftToleranceMillis int64, sleep func(time.Duration)) Decision {
	if ptsMillis > elapsedMillis {
		sleep(time.Duration(ptsMillis-elapsedMillis) * time.Millisecond)
		return Present
	}
	if ptsMillis+driftToleranceMillis < elapsedMillis {
		return Drop
	}
	return Present
}

// Run drives one stream's synchronizer loop: as soon as ready fires (the
// decoder's first-frame signal, spec.md §4.4 step 5) it marks the clock
// ready for this stream, then waits for the clock to latch before
// consuming frames from in, applying Decide to each and invoking present or
// drop accordingly. An optional driftToleranceMillis overrides
// DriftToleranceMS, so callers can source it from the Config Loader (C9)
// instead of the hard-coded default.
func Run[T any](ctx context.Context, clock *Clock, stream string, ready <-chan struct{}, in <-chan T, ptsOf func(T) int64, present func(T), drop func(T), driftToleranceMillis ...int64) {
	tolerance := int64(DriftToleranceMS)
	if len(driftToleranceMillis) > 0 && driftToleranceMillis[0] > 0 {
		tolerance = driftToleranceMillis[0]
	}
	go func() {
		select {
		case <-ready:
			clock.MarkReady(stream)
		case <-ctx.Done():
		}
	}()
	if err := clock.WaitLatched(ctx); err != nil {
		return
	}
	for {
		select {
		case frame, ok := <-in:
			if !ok {
				return
			}
			pts := ptsOf(frame)
			elapsed := clock.Elapsed()
			decision := Decide(pts, elapsed, tolerance, func(d time.Duration) {
				sleepCtx(ctx, d)
			})
			if ctx.Err() != nil {
				return
			}
			if decision == Present {
				present(frame)
			} else {
				drop(frame)
			}
		case <-ctx.Done():
			return
		}
	}
}

// sleepCtx sleeps for d or returns early if ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
