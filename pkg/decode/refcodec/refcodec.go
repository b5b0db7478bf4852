// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package refcodec provides reference, software-only implementations of the
// decode.VideoDecoder and decode.AudioDecoder collaborators (spec.md §1
// treats the real HEVC/AAC codec as an external black box). They let the
// rest of the pipeline be exercised end-to-end in tests without a native
// codec library: VideoDecoder passes each Annex-B packet through as its own
// "picture", AudioDecoder expands each packet's bytes into a one-sample-per
// byte f32 PCM frame.
package refcodec

import (
	"errors"

	"github.com/dash-player/dashplayer/pkg/decode"
)

// VideoDecoder is a pass-through software reference decoder: every fed NAL
// becomes one decoded "frame" carrying the NAL bytes as its picture.
type VideoDecoder struct {
	configured bool
	params     [][]byte
	pending    []decode.VideoFrame
	closed     bool
}

func New() *VideoDecoder { return &VideoDecoder{} }

func (d *VideoDecoder) Configure(parameterSets [][]byte) error {
	if len(parameterSets) == 0 {
		return errors.New("refcodec: no parameter sets supplied")
	}
	d.params = parameterSets
	d.configured = true
	return nil
}

func (d *VideoDecoder) Decode(pkt decode.CodecPacket) error {
	if !d.configured {
		return errors.New("refcodec: decoder not configured")
	}
	if d.closed {
		return errors.New("refcodec: decoder closed")
	}
	picture := make([]byte, len(pkt.Payload))
	copy(picture, pkt.Payload)
	d.pending = append(d.pending, decode.NewVideoFrame(pkt.PTSMillis, picture, nil))
	return nil
}

func (d *VideoDecoder) Drain() ([]decode.VideoFrame, error) {
	out := d.pending
	d.pending = nil
	return out, nil
}

func (d *VideoDecoder) Close() error {
	d.closed = true
	return nil
}

// AudioDecoder is a pass-through software reference decoder: every fed
// packet becomes one decoded AudioFrame holding one f32 sample per packet
// byte, derived deterministically from that byte.
type AudioDecoder struct {
	configured bool
	header     [8]byte
	pending    []decode.AudioFrame
	closed     bool
}

func NewAudio() *AudioDecoder { return &AudioDecoder{} }

func (d *AudioDecoder) Configure(adtsHeader [8]byte) error {
	d.header = adtsHeader
	d.configured = true
	return nil
}

func (d *AudioDecoder) Decode(pkt decode.CodecPacket) error {
	if !d.configured {
		return errors.New("refcodec: decoder not configured")
	}
	if d.closed {
		return errors.New("refcodec: decoder closed")
	}
	samples := make([]float32, len(pkt.Payload))
	for i, b := range pkt.Payload {
		samples[i] = (float32(b) - 128) / 128
	}
	d.pending = append(d.pending, decode.AudioFrame{Samples: samples, PTSMillis: pkt.PTSMillis})
	return nil
}

func (d *AudioDecoder) Drain() ([]decode.AudioFrame, error) {
	out := d.pending
	d.pending = nil
	return out, nil
}

func (d *AudioDecoder) Close() error {
	d.closed = true
	return nil
}
