// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package decode

import (
	"fmt"

	"github.com/Eyevinn/mp4ff/bits"
	"github.com/Eyevinn/mp4ff/mp4"
)

// rawSample is one extracted sample with its presentation timestamp already
// in the track's native timescale units (not yet converted to milliseconds).
type rawSample struct {
	data []byte
	pts  uint64
}

// extractSamples builds the logical concatenation of init-bytes + segment
// bytes, parses it as one fMP4 file and returns every sample of the first
// fragment's single track (spec.md §4.4 per-segment loop, steps 1-2),
// grounded on the same mp4.DecodeFileSR(bits.NewFixedSliceReader(...)) +
// Fragment.GetFullSamples(trex) idiom as
// cmd/livesim2/app/livesegment.go:shiftStppTimes.
func extractSamples(stream string, initBytes, segBytes []byte, trex *mp4.TrexBox) ([]rawSample, error) {
	combined := make([]byte, 0, len(initBytes)+len(segBytes))
	combined = append(combined, initBytes...)
	combined = append(combined, segBytes...)

	sr := bits.NewFixedSliceReader(combined)
	f, err := mp4.DecodeFileSR(sr)
	if err != nil {
		return nil, &ContainerParseError{Stream: stream, Err: err}
	}
	if len(f.Segments) == 0 || len(f.Segments[0].Fragments) == 0 {
		return nil, &ContainerParseError{Stream: stream, Err: fmt.Errorf("no fragments in segment")}
	}

	var samples []rawSample
	for _, frag := range f.Segments[0].Fragments {
		full, err := frag.GetFullSamples(trex)
		if err != nil {
			return nil, &ContainerParseError{Stream: stream, Err: err}
		}
		baseTime := frag.Moof.Traf.Tfdt.BaseMediaDecodeTime()
		decodeTime := baseTime
		for _, s := range full {
			pts := decodeTime + uint64(s.CompositionTimeOffset)
			samples = append(samples, rawSample{data: s.Data, pts: pts})
			decodeTime += uint64(s.Dur)
		}
	}
	return samples, nil
}
