// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package audio implements the audio renderer (spec.md §4.6, C6): it owns
// the output device, exposes a sample-push interface and volume control,
// and feeds the device's real-time callback from a bounded ring buffer so
// the callback itself never blocks.
package audio

import (
	"context"
	"math"
	"sync/atomic"
)

// DefaultGain is the renderer's initial volume (spec.md §4.6).
const DefaultGain = 0.3

// RingCapacity is the PCM sample queue capacity backing the device callback
// (spec.md §5 bounded-channels table).
const RingCapacity = 8192

// Config is the output device's negotiated format.
type Config struct {
	Channels   int
	SampleRate int
}

// Stream is the host-provided output stream collaborator (spec.md §6
// "Audio output interface"): Play/Stop control the underlying device.
type Stream interface {
	Play() error
	Stop() error
}

// Device is the external audio host collaborator: it reports its default
// config and builds an output stream around a pull callback.
type Device interface {
	DefaultConfig() (Config, error)
	BuildOutputStream(cfg Config, callback func(out []float32), onError func(error)) (Stream, error)
}

// DeviceUnavailableError reports a failure obtaining the default device
// config or building its output stream.
type DeviceUnavailableError struct {
	Err error
}

func (e *DeviceUnavailableError) Error() string { return "audio: device unavailable: " + e.Err.Error() }
func (e *DeviceUnavailableError) Unwrap() error { return e.Err }

// Renderer owns the output device and a bounded ring of pending PCM
// samples. Its device callback never waits for samples: an empty ring
// yields silence. The ring is guarded by a mutex, which the callback takes
// briefly for each sample it pops; it is not lock-free.
type Renderer struct {
	device Device
	stream Stream
	cfg    Config

	ring     *ring
	gainBits atomic.Uint32 // atomic float32 bit-pattern, default DefaultGain

	commands chan command
	done     chan struct{}
}

type command struct {
	volumeDelta float32
	stop        bool
}

// Options overrides the renderer's hard-coded defaults with values sourced
// from the Config Loader (C9). A zero Options leaves everything at its
// default (RingCapacity samples, DefaultGain).
type Options struct {
	RingCapacity int
	InitialGain  float32
}

// New opens the default output device, queries its config, and spawns the
// renderer's command-processing task (spec.md §4.6: "new() opens the
// default output device ... spawns the audio worker"). An optional Options
// overrides RingCapacity/DefaultGain.
func New(ctx context.Context, device Device, opts ...Options) (*Renderer, error) {
	cfg, err := device.DefaultConfig()
	if err != nil {
		return nil, &DeviceUnavailableError{Err: err}
	}
	capacity := RingCapacity
	gain := float32(DefaultGain)
	if len(opts) > 0 {
		if opts[0].RingCapacity > 0 {
			capacity = opts[0].RingCapacity
		}
		if opts[0].InitialGain > 0 {
			gain = opts[0].InitialGain
		}
	}
	r := &Renderer{
		device:   device,
		cfg:      cfg,
		ring:     newRing(capacity),
		commands: make(chan command, 16),
		done:     make(chan struct{}),
	}
	r.gainBits.Store(math.Float32bits(gain))

	stream, err := device.BuildOutputStream(cfg, r.callback, func(error) {})
	if err != nil {
		return nil, &DeviceUnavailableError{Err: err}
	}
	r.stream = stream
	if err := stream.Play(); err != nil {
		return nil, &DeviceUnavailableError{Err: err}
	}

	go r.runCommands(ctx)
	return r, nil
}

// SampleRate returns the negotiated output sample rate.
func (r *Renderer) SampleRate() int { return r.cfg.SampleRate }

// PutSample pushes interleaved f32 samples onto the bounded ring, blocking
// (cooperatively, not on the real-time thread) while it is full.
func (r *Renderer) PutSample(ctx context.Context, samples []float32) error {
	for _, s := range samples {
		if err := r.ring.push(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// Volume atomically adds delta to the internal gain factor.
func (r *Renderer) Volume(delta float32) {
	select {
	case r.commands <- command{volumeDelta: delta}:
	default:
	}
}

// Stop signals the worker to release the stream and terminate.
func (r *Renderer) Stop() {
	select {
	case r.commands <- command{stop: true}:
	default:
	}
	<-r.done
}

// runCommands processes volume/stop commands on a separate task so the
// real-time callback is never touched by non-realtime work (spec.md §4.6
// concurrency contract).
func (r *Renderer) runCommands(ctx context.Context) {
	defer close(r.done)
	for {
		select {
		case cmd := <-r.commands:
			if cmd.stop {
				r.stream.Stop()
				return
			}
			for {
				old := r.gainBits.Load()
				newGain := math.Float32frombits(old) + cmd.volumeDelta
				if r.gainBits.CompareAndSwap(old, math.Float32bits(newGain)) {
					break
				}
			}
		case <-ctx.Done():
			r.stream.Stop()
			return
		}
	}
}

// callback is invoked on the real-time audio thread. It must never block:
// it pops whatever samples are ready and fills the remainder with silence.
func (r *Renderer) callback(out []float32) {
	gain := math.Float32frombits(r.gainBits.Load())
	for i := range out {
		s, ok := r.ring.tryPop()
		if !ok {
			out[i] = 0.0
			continue
		}
		out[i] = s * gain
	}
}
