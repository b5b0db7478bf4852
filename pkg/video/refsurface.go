// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package video

import (
	"sync"

	"github.com/dash-player/dashplayer/pkg/decode"
)

// RefSurface is a reference Surface collaborator for tests: it reports a
// fixed inner size and records the last presented frame and scale instead
// of uploading to a GPU.
type RefSurface struct {
	mu        sync.Mutex
	Width     int
	Height    int
	Presented int
	LastScale [2]float64
	LastFrame decode.VideoFrame
}

// NewRefSurface returns a RefSurface reporting the given window size.
func NewRefSurface(width, height int) *RefSurface {
	return &RefSurface{Width: width, Height: height}
}

func (s *RefSurface) InnerSize() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Width, s.Height
}

// Resize updates the reported inner size, as a real host would on a window
// resize event.
func (s *RefSurface) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Width, s.Height = width, height
}

func (s *RefSurface) Present(frame decode.VideoFrame, scaleX, scaleY float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Presented++
	s.LastScale = [2]float64{scaleX, scaleY}
	s.LastFrame = frame
	return nil
}
