// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package manifest loads and parses a DASH MPD into an in-memory declarative
// tree (spec.md §4.1, C1). Parsing tolerates unknown elements and attributes:
// only the ones the player recognizes are read.
package manifest

// ContentType is the AdaptationSet.contentType branch selector.
type ContentType string

const (
	ContentVideo   ContentType = "video"
	ContentAudio   ContentType = "audio"
	ContentText    ContentType = "text"
	ContentUnknown ContentType = ""
)

// SegmentBase carries the two raw "start-end" byte-range strings a
// SegmentBase element declares: the segment index (sidx) and the
// initialization segment. The Segment Index Resolver (C2, pkg/sidx) is the
// component that parses these into numeric ranges (spec.md §4.2 step 2).
type SegmentBase struct {
	IndexRange string
	InitRange  string
}

// Representation is one concrete encoding of an AdaptationSet.
type Representation struct {
	ID                string
	Bandwidth         uint64
	MimeType          string
	Codecs            string
	Width, Height     int
	FrameRate         string
	SAR               string
	AudioSamplingRate int
	BaseURL           string
	SegmentBase       *SegmentBase
}

// AdaptationSet groups interchangeable representations of the same content.
type AdaptationSet struct {
	ID                  string
	ContentType         ContentType
	SubsegmentAlignment bool
	MaxWidth, MaxHeight int
	FrameRate           string
	PAR                 string
	Lang                string
	Representations     []Representation
}

// Period is one temporal section of the presentation. Multi-period manifests
// are a non-goal (spec.md §1); only the first Period is meaningful to callers.
type Period struct {
	AdaptationSets []AdaptationSet
}

// Presentation is the parsed MPD document (the "ManifestTree" of spec.md §3).
type Presentation struct {
	DurationMS int64
	Periods    []Period
}
