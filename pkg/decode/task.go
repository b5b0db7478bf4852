// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package decode

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dash-player/dashplayer/pkg/codecparams"
	"github.com/dash-player/dashplayer/pkg/fetcher"
	"github.com/dash-player/dashplayer/pkg/metrics"
	"github.com/dash-player/dashplayer/pkg/tracks"
)

// RunVideo is the elementary stream decoder task for a video stream
// (spec.md §4.4). It fetches and parses the init segment, configures dec
// with the HEVC parameter sets, then consumes DataSegments from in until it
// closes, extracting samples, Annex-B-prefixing each NAL and emitting
// decoded frames on out. ready is closed on the first frame produced. reg
// may be nil (e.g. in tests not wiring C10).
func RunVideo(ctx context.Context, client *http.Client, rep tracks.Representation, dec VideoDecoder, in <-chan fetcher.DataSegment, out chan<- VideoFrame, ready chan<- struct{}, errc chan<- error, reg *metrics.Registry) {
	defer close(out)
	logger := slog.Default().With(slog.String("stream", "video"))

	initBytes, err := fetcher.FetchRange(ctx, client, rep.Init)
	if err != nil {
		sendErr(ctx, errc, err)
		return
	}
	info, err := decodeInitSegment("video", initBytes)
	if err != nil {
		sendErr(ctx, errc, err)
		return
	}
	if err := dec.Configure(info.videoParams); err != nil {
		sendErr(ctx, errc, &CodecInitError{Stream: "video", Err: err})
		return
	}
	defer dec.Close()

	readyFired := false
	for seg := range in {
		samples, err := extractSamples("video", initBytes, seg.Bytes, info.trex)
		if err != nil {
			sendErr(ctx, errc, err)
			return
		}
		for _, s := range samples {
			nals, err := codecparams.ToAnnexB(s.data)
			if err != nil {
				logger.Warn("sample out of bounds, skipping", "error", err)
				continue
			}
			ptsMillis := int64(s.pts) * 1000 / int64(info.timescale)
			for _, nal := range nals {
				if err := dec.Decode(CodecPacket{Payload: nal, PTSMillis: ptsMillis}); err != nil {
					logger.Warn("video decode error, skipping sample", "error", err)
					continue
				}
			}
		}
		frames, err := dec.Drain()
		if err != nil {
			logger.Warn("video drain error", "error", err)
			continue
		}
		for _, f := range frames {
			if reg != nil {
				reg.FrameDecoded("video")
			}
			if !readyFired {
				close(ready)
				readyFired = true
			}
			select {
			case out <- f:
			case <-ctx.Done():
				return
			}
		}
	}
}

// RunAudio is the elementary stream decoder task for an audio stream. reg
// may be nil (e.g. in tests not wiring C10).
func RunAudio(ctx context.Context, client *http.Client, rep tracks.Representation, dec AudioDecoder, in <-chan fetcher.DataSegment, out chan<- AudioFrame, ready chan<- struct{}, errc chan<- error, reg *metrics.Registry) {
	defer close(out)
	logger := slog.Default().With(slog.String("stream", "audio"))

	initBytes, err := fetcher.FetchRange(ctx, client, rep.Init)
	if err != nil {
		sendErr(ctx, errc, err)
		return
	}
	info, err := decodeInitSegment("audio", initBytes)
	if err != nil {
		sendErr(ctx, errc, err)
		return
	}
	adtsHeader := codecparams.BuildADTSHeader(info.audioConfig.Profile, info.audioConfig.SamplingFreqIdx, info.audioConfig.ChannelConfig, 1024)
	if err := dec.Configure(adtsHeader); err != nil {
		sendErr(ctx, errc, &CodecInitError{Stream: "audio", Err: err})
		return
	}
	defer dec.Close()

	outputRate := int64(rep.AudioSamplingRate)
	if outputRate == 0 {
		outputRate = int64(info.timescale)
	}

	readyFired := false
	for seg := range in {
		samples, err := extractSamples("audio", initBytes, seg.Bytes, info.trex)
		if err != nil {
			sendErr(ctx, errc, err)
			return
		}
		for _, s := range samples {
			// PTS divides by the representation's declared audioSamplingRate
			// (the track timescale when the manifest gives none); the
			// output device's sample rate is not used here.
			ptsMillis := int64(s.pts) * 1000 / outputRate
			if err := dec.Decode(CodecPacket{Payload: s.data, PTSMillis: ptsMillis}); err != nil {
				logger.Warn("audio decode error, skipping sample", "error", err)
				continue
			}
		}
		frames, err := dec.Drain()
		if err != nil {
			logger.Warn("audio drain error", "error", err)
			continue
		}
		for _, f := range frames {
			if reg != nil {
				reg.FrameDecoded("audio")
			}
			if !readyFired {
				close(ready)
				readyFired = true
			}
			select {
			case out <- f:
			case <-ctx.Done():
				return
			}
		}
	}
}

func sendErr(ctx context.Context, errc chan<- error, err error) {
	select {
	case errc <- err:
	case <-ctx.Done():
	}
}
