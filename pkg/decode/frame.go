// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package decode

import "sync/atomic"

// CodecPacket is one unit of codec-specific elementary stream data fed to a
// VideoDecoder or AudioDecoder, with its presentation timestamp already
// converted to milliseconds since stream start (spec.md §4.4).
type CodecPacket struct {
	Payload   []byte
	PTSMillis int64
}

// VideoFrame is an opaque decoded picture plus its presentation timestamp.
// It carries a shared-ownership handle (spec.md §3) so the frame survives
// channel hand-off until the renderer has presented or dropped it: Retain
// bumps the reference count, Release drops it and invokes the underlying
// decoder's free callback once the count reaches zero.
type VideoFrame struct {
	PTSMillis int64
	Picture   any // CPU plane bytes or an opaque GPU texture handle, per spec.md §9.
	refCount  *int32
	onRelease func()
}

// NewVideoFrame wraps picture data in a single-owner frame handle.
func NewVideoFrame(ptsMillis int64, picture any, onRelease func()) VideoFrame {
	rc := int32(1)
	return VideoFrame{PTSMillis: ptsMillis, Picture: picture, refCount: &rc, onRelease: onRelease}
}

// Retain increments the frame's reference count, e.g. when handing it to a
// renderer that may hold it across a present cycle.
func (f VideoFrame) Retain() {
	if f.refCount != nil {
		atomic.AddInt32(f.refCount, 1)
	}
}

// Release decrements the reference count and runs the release callback once
// it reaches zero. Safe to call more than once per Retain.
func (f VideoFrame) Release() {
	if f.refCount == nil {
		return
	}
	if atomic.AddInt32(f.refCount, -1) == 0 && f.onRelease != nil {
		f.onRelease()
	}
}

// AudioFrame is interleaved f32 PCM resampled to the audio device's rate and
// channel layout (spec.md §3/§4.4), plus its presentation timestamp.
type AudioFrame struct {
	Samples   []float32
	PTSMillis int64
}

// VideoDecoder is the external codec collaborator for video (spec.md §1,
// §4.4): pre-fed with Annex-B parameter sets, then driven packet by packet.
type VideoDecoder interface {
	Configure(parameterSets [][]byte) error
	Decode(pkt CodecPacket) error
	Drain() ([]VideoFrame, error)
	Close() error
}

// AudioDecoder is the external codec collaborator for audio: pre-fed with a
// synthesized ADTS header, then driven packet by packet.
type AudioDecoder interface {
	Configure(adtsHeader [8]byte) error
	Decode(pkt CodecPacket) error
	Drain() ([]AudioFrame, error)
	Close() error
}
