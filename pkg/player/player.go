// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package player implements the orchestrator (spec.md §4.8, C8): the thin
// coordinator that ties the manifest loader, segment index resolver,
// fetcher, decoders, synchronizer and renderers together behind the
// open_url / prepare / get_tracks / set_*_track / play / stop / volume
// lifecycle, enforcing the state machine and error-propagation policy of
// spec.md §7.
package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	stdsync "sync"

	"github.com/dash-player/dashplayer/pkg/audio"
	"github.com/dash-player/dashplayer/pkg/config"
	"github.com/dash-player/dashplayer/pkg/decode"
	"github.com/dash-player/dashplayer/pkg/fetcher"
	"github.com/dash-player/dashplayer/pkg/manifest"
	"github.com/dash-player/dashplayer/pkg/metrics"
	"github.com/dash-player/dashplayer/pkg/sidx"
	psync "github.com/dash-player/dashplayer/pkg/sync"
	"github.com/dash-player/dashplayer/pkg/tracks"
	"github.com/dash-player/dashplayer/pkg/video"

	"net/http"
)

// VideoDecoderFactory builds a fresh VideoDecoder for one play() call.
type VideoDecoderFactory func() decode.VideoDecoder

// AudioDecoderFactory builds a fresh AudioDecoder for one play() call.
type AudioDecoderFactory func() decode.AudioDecoder

// Player is the orchestrator. Its lifecycle methods are not safe to call
// concurrently with each other (spec.md §9: "the orchestrator itself is a
// thin coordinator"); the pipeline tasks it spawns run independently once
// play() returns.
type Player struct {
	client *http.Client
	cfg    *config.Config
	reg    *metrics.Registry

	videoDecoders VideoDecoderFactory
	audioDecoders AudioDecoderFactory
	device        audio.Device
	surface       video.Surface

	mu           stdsync.Mutex
	state        State
	manifestURL  string
	presentation *manifest.Presentation
	tracksModel  *tracks.Tracks

	selectedVideo *tracks.Representation
	selectedAudio *tracks.Representation

	cancel        context.CancelFunc
	handle        *PlayHandle
	audioRenderer *audio.Renderer
}

// New wires the orchestrator's external collaborators: the shared HTTP
// client, resolved config, metrics registry, decoder factories (one fresh
// decoder instance per play() call, per stream), and the audio/video host
// collaborators of spec.md §6.
func New(client *http.Client, cfg *config.Config, reg *metrics.Registry, videoDecoders VideoDecoderFactory, audioDecoders AudioDecoderFactory, device audio.Device, surface video.Surface) *Player {
	return &Player{
		client:        client,
		cfg:           cfg,
		reg:           reg,
		videoDecoders: videoDecoders,
		audioDecoders: audioDecoders,
		device:        device,
		surface:       surface,
		state:         Idle,
	}
}

// State returns the orchestrator's current lifecycle state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// OpenURL fetches and parses the MPD at url (spec.md §4.8: "must be called
// first; persists the base URL and invokes C1").
func (p *Player) OpenURL(ctx context.Context, url string) error {
	p.mu.Lock()
	if p.state != Idle {
		state := p.state
		p.mu.Unlock()
		return &InvalidState{Called: "open_url", Current: state}
	}
	p.mu.Unlock()

	pres, err := manifest.Load(ctx, p.client, url)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.manifestURL = url
	p.presentation = pres
	p.state = URLOpened
	p.mu.Unlock()
	return nil
}

// Prepare runs the segment index resolver (C2) over every representation in
// the manifest and populates the tracks model (spec.md §4.8).
func (p *Player) Prepare(ctx context.Context) error {
	p.mu.Lock()
	if p.state != URLOpened {
		state := p.state
		p.mu.Unlock()
		return &InvalidState{Called: "prepare", Current: state}
	}
	pres, manifestURL := p.presentation, p.manifestURL
	p.mu.Unlock()

	tm, err := tracks.Build(pres, manifestURL, sidx.Resolve(ctx, p.client))
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.tracksModel = tm
	p.state = Prepared
	p.mu.Unlock()
	return nil
}

// GetTracks returns the read-only tracks model populated by Prepare.
func (p *Player) GetTracks() (*tracks.Tracks, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state < Prepared {
		return nil, &InvalidState{Called: "get_tracks", Current: p.state}
	}
	return p.tracksModel, nil
}

// SetVideoTrack records the video representation selected for the next
// play(). It may be called any time after Prepare and before Play returns.
func (p *Player) SetVideoTrack(adaptationID, representationID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Prepared && p.state != Ready {
		return &InvalidState{Called: "set_video_track", Current: p.state}
	}
	rep, err := findRepresentation(p.tracksModel.Video, adaptationID, representationID)
	if err != nil {
		return err
	}
	p.selectedVideo = rep
	p.promoteToReadyLocked()
	return nil
}

// SetAudioTrack records the audio representation selected for the next
// play().
func (p *Player) SetAudioTrack(adaptationID, representationID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Prepared && p.state != Ready {
		return &InvalidState{Called: "set_audio_track", Current: p.state}
	}
	rep, err := findAudioRepresentation(p.tracksModel.Audio, adaptationID, representationID)
	if err != nil {
		return err
	}
	p.selectedAudio = rep
	p.promoteToReadyLocked()
	return nil
}

func (p *Player) promoteToReadyLocked() {
	if p.state == Prepared && p.selectedVideo != nil && p.selectedAudio != nil {
		p.state = Ready
	}
}

func findRepresentation(videoAdaptations []tracks.VideoAdaptation, adaptationID, representationID string) (*tracks.Representation, error) {
	for _, as := range videoAdaptations {
		if as.ID != adaptationID {
			continue
		}
		for _, rep := range as.Representations {
			if rep.ID == representationID {
				r := rep
				return &r, nil
			}
		}
	}
	return nil, fmt.Errorf("player: no representation %s/%s", adaptationID, representationID)
}

// findAudioRepresentation mirrors findRepresentation for AudioAdaptation;
// Go's lack of field-based generics over distinct struct shapes (Video vs
// Audio adaptations carry different metadata) makes one generic helper
// awkward, so the video/audio cases are spelled out separately.
func findAudioRepresentation(audioAdaptations []tracks.AudioAdaptation, adaptationID, representationID string) (*tracks.Representation, error) {
	for _, as := range audioAdaptations {
		if as.ID != adaptationID {
			continue
		}
		for _, rep := range as.Representations {
			if rep.ID == representationID {
				r := rep
				return &r, nil
			}
		}
	}
	return nil, fmt.Errorf("player: no representation %s/%s", adaptationID, representationID)
}

// PlayHandle is returned by Play; its Done channel closes when the session
// ends, whether by end-of-stream, stop(), or a fatal error.
type PlayHandle struct {
	done chan struct{}
	mu   stdsync.Mutex
	err  error
}

// Done returns a channel that closes when playback has ended.
func (h *PlayHandle) Done() <-chan struct{} { return h.done }

// Err returns the reason playback ended: nil for a clean end-of-stream, a
// *Cancelled after stop(), or the first fatal pipeline error otherwise.
// Valid only after Done has fired.
func (h *PlayHandle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

func (h *PlayHandle) setErr(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err == nil {
		h.err = err
	}
}

// Play spawns the fetcher, decoder and synchronizer tasks for both streams
// (spec.md §4.8). It probes each selected representation's codec support
// synchronously before spawning anything, so an unsupported codec is
// reported to the caller and the player stays READY (spec.md §7, scenario
// S6) instead of transitioning to PLAYING.
func (p *Player) Play(ctx context.Context) (*PlayHandle, error) {
	p.mu.Lock()
	if p.state != Prepared && p.state != Ready {
		state := p.state
		p.mu.Unlock()
		return nil, &InvalidState{Called: "play", Current: state}
	}
	videoRep, audioRep := p.selectedVideo, p.selectedAudio
	p.mu.Unlock()

	if videoRep == nil {
		return nil, &TrackNotSelected{Stream: "video"}
	}
	if audioRep == nil {
		return nil, &TrackNotSelected{Stream: "audio"}
	}

	if err := p.probeCodec(ctx, "video", videoRep.Init); err != nil {
		return nil, err
	}
	if err := p.probeCodec(ctx, "audio", audioRep.Init); err != nil {
		return nil, err
	}

	audioRenderer, err := audio.New(ctx, p.device, audio.Options{
		RingCapacity: p.cfg.Channels.AudioSample,
		InitialGain:  float32(p.cfg.DefaultVolume),
	})
	if err != nil {
		return nil, err
	}

	playCtx, cancel := context.WithCancel(ctx)
	handle := &PlayHandle{done: make(chan struct{})}

	p.mu.Lock()
	p.cancel = cancel
	p.handle = handle
	p.audioRenderer = audioRenderer
	p.state = Playing
	p.mu.Unlock()

	videoRenderer := video.New(p.surface, videoRep.Width, videoRep.Height)

	cc := p.cfg.Channels
	videoSeg := make(chan fetcher.DataSegment, cc.Segment)
	audioSeg := make(chan fetcher.DataSegment, cc.Segment)
	videoFrames := make(chan decode.VideoFrame, cc.VideoFrame)
	audioFrames := make(chan decode.AudioFrame, cc.AudioFrame)
	videoReady := make(chan struct{})
	audioReady := make(chan struct{})
	errc := make(chan error, 8)

	clock := psync.NewClock()

	var wg stdsync.WaitGroup
	wg.Add(6)
	go func() { defer wg.Done(); fetcher.Run(playCtx, p.client, "video", videoRep.Media, videoSeg, errc, p.reg) }()
	go func() { defer wg.Done(); fetcher.Run(playCtx, p.client, "audio", audioRep.Media, audioSeg, errc, p.reg) }()
	go func() {
		defer wg.Done()
		decode.RunVideo(playCtx, p.client, *videoRep, p.videoDecoders(), videoSeg, videoFrames, videoReady, errc, p.reg)
	}()
	go func() {
		defer wg.Done()
		decode.RunAudio(playCtx, p.client, *audioRep, p.audioDecoders(), audioSeg, audioFrames, audioReady, errc, p.reg)
	}()
	go func() {
		defer wg.Done()
		psync.Run(playCtx, clock, "video", videoReady, videoFrames,
			func(f decode.VideoFrame) int64 { return f.PTSMillis },
			func(f decode.VideoFrame) {
				if err := videoRenderer.Render(f); err != nil {
					slog.Default().Warn("video render error", "error", err)
				} else if p.reg != nil {
					p.reg.FramePresented("video")
				}
				f.Release()
			},
			func(f decode.VideoFrame) {
				if p.reg != nil {
					p.reg.FrameDropped("video")
				}
				f.Release()
			}, p.cfg.DriftToleranceMS)
	}()
	go func() {
		defer wg.Done()
		psync.Run(playCtx, clock, "audio", audioReady, audioFrames,
			func(f decode.AudioFrame) int64 { return f.PTSMillis },
			func(f decode.AudioFrame) {
				if p.reg != nil {
					p.reg.SamplesQueued(len(f.Samples))
				}
				if err := audioRenderer.PutSample(playCtx, f.Samples); err != nil {
					return
				}
				if p.reg != nil {
					p.reg.FramePresented("audio")
				}
			},
			func(f decode.AudioFrame) {
				if p.reg != nil {
					p.reg.FrameDropped("audio")
				}
			}, p.cfg.DriftToleranceMS)
	}()

	go p.supervise(playCtx, cancel, &wg, errc, audioRenderer, handle)

	return handle, nil
}

// probeCodec fetches stream's init segment and checks its declared codec is
// supported, without configuring any decoder (spec.md §7: pre-play codec
// errors are surfaced synchronously from play()).
func (p *Player) probeCodec(ctx context.Context, stream string, initSeg tracks.Segment) error {
	initBytes, err := fetcher.FetchRange(ctx, p.client, initSeg)
	if err != nil {
		return err
	}
	if err := decode.ProbeCodec(stream, initBytes); err != nil {
		var unsupported *decode.CodecUnsupportedError
		if errors.As(err, &unsupported) {
			return &CodecUnsupported{Stream: stream, Err: err}
		}
		return err
	}
	return nil
}

// supervise waits for all six pipeline tasks to finish, tears down the
// audio renderer, transitions to STOPPED, and reports the session's outcome
// on handle.
func (p *Player) supervise(ctx context.Context, cancel context.CancelFunc, wg *stdsync.WaitGroup, errc chan error, audioRenderer *audio.Renderer, handle *PlayHandle) {
	errDone := make(chan struct{})
	var firstErr error
	go func() {
		for e := range errc {
			if firstErr == nil {
				firstErr = e
				// An in-flight error on one stream must not leave the other
				// stream's tasks (or this stream's own synchronizer, still
				// waiting on the clock to latch) blocked forever: cancel
				// immediately rather than waiting for wg.Wait(), which
				// cannot return until every task has observed cancellation.
				cancel()
			}
		}
		close(errDone)
	}()

	wg.Wait()
	close(errc)
	<-errDone
	stopped := ctx.Err() != nil
	cancel()
	audioRenderer.Stop()

	p.mu.Lock()
	p.state = Stopped
	p.mu.Unlock()

	switch {
	case firstErr != nil:
		handle.setErr(wrapStreamingError(firstErr))
	case stopped:
		handle.setErr(&Cancelled{})
	}
	close(handle.done)
}

// wrapStreamingError classifies an in-flight pipeline error per spec.md §7's
// "Streaming" category, preserving the underlying typed error via Unwrap.
// The fetcher/decode errors don't carry which stream they came from this far
// up, so Stream is left blank; the wrapped error retains the original
// message for that detail.
func wrapStreamingError(err error) error {
	var netErr *fetcher.NetworkError
	if errors.As(err, &netErr) {
		return &SegmentDownloadFailed{Err: err}
	}
	return err
}

// Stop fires the stop notification and waits for every pipeline task and
// the audio renderer to finish tearing down (spec.md §4.8).
func (p *Player) Stop() error {
	p.mu.Lock()
	if p.state != Playing {
		state := p.state
		p.mu.Unlock()
		return &InvalidState{Called: "stop", Current: state}
	}
	cancel, handle := p.cancel, p.handle
	p.mu.Unlock()

	cancel()
	<-handle.done
	return nil
}

// Volume forwards a gain delta to the audio renderer (spec.md §4.6). Only
// valid while PLAYING.
func (p *Player) Volume(delta float32) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Playing {
		return &InvalidState{Called: "volume", Current: p.state}
	}
	p.audioRenderer.Volume(delta)
	return nil
}
