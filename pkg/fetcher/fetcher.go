// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package fetcher implements the bounded segment fetcher (spec.md §4.3, C3):
// a long-lived task that downloads a representation's media segments in
// order via HTTP byte-range GETs and emits them on a bounded channel. It
// reuses the context-cancellation and HTTP GET idiom from
// cmd/dashfetcher/app, adapted from writing files to streaming bytes
// downstream to a decoder.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dash-player/dashplayer/pkg/metrics"
	"github.com/dash-player/dashplayer/pkg/tracks"
)

// DataSegment is a fetched segment held in memory (spec.md §3). It is
// dropped by the decoder immediately after sample extraction.
type DataSegment struct {
	Sequence int
	Bytes    []byte
}

// NetworkError wraps a transport-level failure fetching a media segment.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetcher: network error fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Run downloads segs sequentially, emitting DataSegment values on out in
// order. One concurrent HTTP request is in flight at a time, matching
// spec.md §4.3. Run owns out: it closes the channel on completion,
// cancellation, or error.
//
// On transport error the error is sent to errc and the task terminates
// without retrying (retry policy is the orchestrator's concern, spec.md §7).
// On ctx cancellation the in-flight request is abandoned and the task
// returns without sending to errc.
func Run(ctx context.Context, client *http.Client, stream string, segs []tracks.Segment, out chan<- DataSegment, errc chan<- error, reg *metrics.Registry) {
	defer close(out)
	logger := slog.Default().With(slog.String("stream", stream))

	for i, seg := range segs {
		start := time.Now()
		data, err := fetchOne(ctx, client, seg)
		if err != nil {
			if ctx.Err() != nil {
				logger.Debug("fetch cancelled", "sequence", i)
				return
			}
			logger.Error("segment fetch failed", "sequence", i, "error", err)
			select {
			case errc <- err:
			case <-ctx.Done():
			}
			return
		}
		if reg != nil {
			reg.SegmentFetched(stream, time.Since(start))
		}
		select {
		case out <- DataSegment{Sequence: i, Bytes: data}:
		case <-ctx.Done():
			logger.Debug("fetch cancelled while blocked on send", "sequence", i)
			return
		}
	}
}

// FetchRange issues a single byte-range GET for seg, for callers that need
// one segment outside the streaming pipeline (e.g. fetching the
// initialization segment before Run starts).
func FetchRange(ctx context.Context, client *http.Client, seg tracks.Segment) ([]byte, error) {
	return fetchOne(ctx, client, seg)
}

func fetchOne(ctx context.Context, client *http.Client, seg tracks.Segment) ([]byte, error) {
	url := seg.BaseURL
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	rangeHeader := fmt.Sprintf("bytes=%d-%d", seg.Start, seg.End)
	req.Header.Set("Range", rangeHeader)

	resp, err := client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	return data, nil
}
