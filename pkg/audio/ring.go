// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package audio

import (
	"context"
	"sync"
)

// ring is a bounded single-producer/single-consumer PCM sample queue. push
// blocks cooperatively while full; tryPop never blocks, so it is safe to
// call from the device's real-time callback. slots counts free capacity so
// push can wait on it with a context-aware select instead of holding the
// mutex across a blocking wait.
type ring struct {
	mu    sync.Mutex
	buf   []float32
	head  int
	size  int
	slots chan struct{}
}

func newRing(capacity int) *ring {
	slots := make(chan struct{}, capacity)
	for i := 0; i < capacity; i++ {
		slots <- struct{}{}
	}
	return &ring{buf: make([]float32, capacity), slots: slots}
}

func (r *ring) push(ctx context.Context, s float32) error {
	select {
	case <-r.slots:
	case <-ctx.Done():
		return ctx.Err()
	}
	r.mu.Lock()
	tail := (r.head + r.size) % len(r.buf)
	r.buf[tail] = s
	r.size++
	r.mu.Unlock()
	return nil
}

// tryPop pops one sample without blocking, for use on the real-time
// callback thread.
func (r *ring) tryPop() (float32, bool) {
	r.mu.Lock()
	if r.size == 0 {
		r.mu.Unlock()
		return 0, false
	}
	s := r.buf[r.head]
	r.head = (r.head + 1) % len(r.buf)
	r.size--
	r.mu.Unlock()
	select {
	case r.slots <- struct{}{}:
	default:
	}
	return s, true
}
