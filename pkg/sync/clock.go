// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package sync implements the presentation clock and per-stream
// synchronizer (spec.md §4.5, C5): a monotonic start instant latched only
// once both decoders have produced their first frame, and a drift-tolerant
// sleep/present/drop decision per frame thereafter.
package sync

import (
	"context"
	"sync"
	"time"
)

// Clock is the shared presentation clock for one play session. start_instant
// is latched the moment both VideoReady and AudioReady have fired once.
type Clock struct {
	mu           sync.Mutex
	startInstant time.Time
	latched      bool
	videoReady   bool
	audioReady   bool
	latchedCh    chan struct{}
}

// NewClock returns an unlatched clock.
func NewClock() *Clock {
	return &Clock{latchedCh: make(chan struct{})}
}

// MarkReady records that one stream produced its first frame, latching
// start_instant once both streams have reported in.
func (c *Clock) MarkReady(stream string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch stream {
	case "video":
		c.videoReady = true
	case "audio":
		c.audioReady = true
	}
	if !c.latched && c.videoReady && c.audioReady {
		c.startInstant = time.Now()
		c.latched = true
		close(c.latchedCh)
	}
}

// WaitLatched blocks until both streams have signaled ready, or ctx is done.
func (c *Clock) WaitLatched(ctx context.Context) error {
	select {
	case <-c.latchedCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Elapsed returns the milliseconds since start_instant. Only valid after
// WaitLatched has returned successfully.
func (c *Clock) Elapsed() int64 {
	c.mu.Lock()
	start := c.startInstant
	c.mu.Unlock()
	return time.Since(start).Milliseconds()
}

// StartInstant returns the latched start_instant (zero Time if not yet
// latched), for tests asserting scenario S3's ±1ms invariant.
func (c *Clock) StartInstant() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startInstant
}
