// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package sidx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dash-player/dashplayer/pkg/manifest"
	"github.com/dash-player/dashplayer/pkg/tracks"
)

// Resolve implements tracks.Resolver (C2, spec.md §4.2): it computes the
// representation's absolute media URL, fetches its index range, decodes the
// sidx box and expands it into the ordered media segment list.
func Resolve(ctx context.Context, client *http.Client) tracks.Resolver {
	return func(rep manifest.Representation, manifestURL string) (tracks.Representation, error) {
		if rep.SegmentBase == nil {
			return tracks.Representation{}, fmt.Errorf("sidx: representation %s has no SegmentBase", rep.ID)
		}

		initRange, err := ParseByteRange(rep.SegmentBase.InitRange)
		if err != nil {
			return tracks.Representation{}, err
		}
		indexRange, err := ParseByteRange(rep.SegmentBase.IndexRange)
		if err != nil {
			return tracks.Representation{}, err
		}

		mediaURL := joinBaseURL(manifestURL, rep.BaseURL)

		body, err := fetchRange(ctx, client, mediaURL, indexRange)
		if err != nil {
			return tracks.Representation{}, err
		}
		box, err := Decode(body)
		if err != nil {
			return tracks.Representation{}, err
		}

		ranges := GenerateSegments(box, indexRange.End)
		media := make([]tracks.Segment, len(ranges))
		for i, r := range ranges {
			media[i] = tracks.Segment{BaseURL: mediaURL, Path: rep.BaseURL, Start: r.Start, End: r.End}
		}

		return tracks.Representation{
			ID:                rep.ID,
			Bandwidth:         rep.Bandwidth,
			MimeType:          rep.MimeType,
			Codecs:            rep.Codecs,
			Width:             rep.Width,
			Height:            rep.Height,
			FrameRate:         rep.FrameRate,
			AudioSamplingRate: rep.AudioSamplingRate,
			Init:              tracks.Segment{BaseURL: mediaURL, Path: rep.BaseURL, Start: initRange.Start, End: initRange.End},
			Index:             tracks.Segment{BaseURL: mediaURL, Path: rep.BaseURL, Start: indexRange.Start, End: indexRange.End},
			Media:             media,
		}, nil
	}
}

// fetchRange issues a byte-range GET (spec.md §6: "Range: bytes=<start>-<end>").
func fetchRange(ctx context.Context, client *http.Client, url string, r ByteRange) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	req.Header.Set("Range", "bytes="+r.String())
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

// joinBaseURL computes join(manifest base URL with trailing segment
// stripped, representation BaseURL text), per spec.md §4.2 step 1.
func joinBaseURL(manifestURL, relative string) string {
	idx := strings.LastIndex(manifestURL, "/")
	base := manifestURL
	if idx >= 0 {
		base = manifestURL[:idx+1]
	}
	return base + relative
}
