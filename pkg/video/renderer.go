// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package video implements the video renderer (spec.md §4.7, C7): it owns
// the GPU surface and presents decoded frames on the next present cycle,
// computing the letterbox scale that fits the frame's aspect ratio inside
// the window's.
package video

import (
	"github.com/dash-player/dashplayer/pkg/decode"
)

// Surface is the external host collaborator (spec.md §6 "Video output
// interface"): an OS window/surface able to upload and present a frame.
type Surface interface {
	InnerSize() (width, height int)
	Present(frame decode.VideoFrame, scaleX, scaleY float64) error
}

// StreamBuildError reports a failure acquiring or resizing the GPU surface.
type StreamBuildError struct {
	Err error
}

func (e *StreamBuildError) Error() string { return "video: surface error: " + e.Err.Error() }
func (e *StreamBuildError) Unwrap() error { return e.Err }

// Renderer owns the surface exclusively; Render is only ever invoked from
// the single-threaded event loop (spec.md §5), so it needs no locking.
type Renderer struct {
	surface     Surface
	frameWidth  int
	frameHeight int
}

// New returns a Renderer over the given frame dimensions (from the
// representation's Width/Height) and host surface.
func New(surface Surface, frameWidth, frameHeight int) *Renderer {
	return &Renderer{surface: surface, frameWidth: frameWidth, frameHeight: frameHeight}
}

// Render presents frame on the surface's next vsync-aligned cycle. It does
// not interpret PTS: the synchronizer has already gated the call.
func (r *Renderer) Render(frame decode.VideoFrame) error {
	winW, winH := r.surface.InnerSize()
	sx, sy := LetterboxScale(winW, winH, r.frameWidth, r.frameHeight)
	if err := r.surface.Present(frame, sx, sy); err != nil {
		return &StreamBuildError{Err: err}
	}
	return nil
}

// LetterboxScale returns the vertex-quad scale factors that fit a
// frameW x frameH picture inside a winW x winH window, blacking unused
// aspect-ratio regions (spec.md §4.7): scale = min(window_aspect,
// frame_aspect) applied per-axis so the frame's own aspect ratio is
// preserved.
func LetterboxScale(winW, winH, frameW, frameH int) (scaleX, scaleY float64) {
	if winW <= 0 || winH <= 0 || frameW <= 0 || frameH <= 0 {
		return 1, 1
	}
	windowAspect := float64(winW) / float64(winH)
	frameAspect := float64(frameW) / float64(frameH)
	if frameAspect > windowAspect {
		// Frame is relatively wider than the window: fit width, shrink height.
		return 1, windowAspect / frameAspect
	}
	// Frame is relatively taller (or equal): fit height, shrink width.
	return frameAspect / windowAspect, 1
}
