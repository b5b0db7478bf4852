// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package audio

import "sync"

// RefStream is a no-op Stream used by RefDevice.
type RefStream struct {
	mu      sync.Mutex
	playing bool
}

func (s *RefStream) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = true
	return nil
}

func (s *RefStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
	return nil
}

// RefDevice is a reference software Device collaborator for tests: it
// reports a fixed stereo 48kHz config and invokes the callback manually via
// Pull, rather than from a real OS audio thread.
type RefDevice struct {
	Cfg Config
}

// NewRefDevice returns a RefDevice with a 48kHz stereo default config.
func NewRefDevice() *RefDevice {
	return &RefDevice{Cfg: Config{Channels: 2, SampleRate: 48000}}
}

func (d *RefDevice) DefaultConfig() (Config, error) {
	return d.Cfg, nil
}

func (d *RefDevice) BuildOutputStream(cfg Config, callback func(out []float32), onError func(error)) (Stream, error) {
	return &RefStream{}, nil
}
