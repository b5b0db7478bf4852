// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package tracks holds the curated, validated view of a DASH presentation
// that the player orchestrator exposes to callers: VideoAdaptation,
// AudioAdaptation and TextAdaptation, each carrying representations enriched
// with fully-resolved Segment descriptors (spec.md §3).
package tracks

import (
	"fmt"

	"github.com/dash-player/dashplayer/pkg/manifest"
)

// Segment is an immutable byte-range descriptor into a representation's
// media file: BaseURL is the absolute, joined URL used to fetch it; Path is
// the representation's original BaseURL text (the file path relative to the
// manifest, spec.md §3). Invariant: Start <= End.
type Segment struct {
	BaseURL string
	Path    string
	Start   uint64
	End     uint64
}

// Representation is a manifest.Representation enriched with its resolved
// init segment, index segment and ordered media segment list.
type Representation struct {
	ID                string
	Bandwidth         uint64
	MimeType          string
	Codecs            string
	Width, Height     int
	FrameRate         string
	AudioSamplingRate int

	Init  Segment
	Index Segment
	Media []Segment
}

type VideoAdaptation struct {
	ID              string
	MaxWidth        int
	MaxHeight       int
	FrameRate       string
	Representations []Representation
}

type AudioAdaptation struct {
	ID              string
	Lang            string
	Representations []Representation
}

type TextAdaptation struct {
	ID              string
	Lang            string
	Representations []Representation
}

// Tracks is the read-only snapshot the orchestrator hands back from
// GetTracks after prepare() has run.
type Tracks struct {
	DurationMS int64
	Video      []VideoAdaptation
	Audio      []AudioAdaptation
	Text       []TextAdaptation
}

// Resolver turns one manifest.Representation into a fully-resolved
// Representation by fetching and parsing its segment index (C2,
// pkg/sidx.Resolve implements this).
type Resolver func(rep manifest.Representation, manifestBaseURL string) (Representation, error)

// Build curates a manifest.Presentation into a Tracks model, resolving every
// representation's segment index via resolve. The first Period is used;
// multi-period manifests are a non-goal (spec.md §1).
func Build(pres *manifest.Presentation, manifestBaseURL string, resolve Resolver) (*Tracks, error) {
	if len(pres.Periods) == 0 {
		return nil, fmt.Errorf("tracks: manifest has no Period")
	}
	period := pres.Periods[0]

	t := &Tracks{DurationMS: pres.DurationMS}
	for _, as := range period.AdaptationSets {
		switch as.ContentType {
		case manifest.ContentVideo:
			va, err := buildVideoAdaptation(as, manifestBaseURL, resolve)
			if err != nil {
				return nil, err
			}
			t.Video = append(t.Video, va)
		case manifest.ContentAudio:
			aa, err := buildAudioAdaptation(as, manifestBaseURL, resolve)
			if err != nil {
				return nil, err
			}
			t.Audio = append(t.Audio, aa)
		case manifest.ContentText:
			ta, err := buildTextAdaptation(as, manifestBaseURL, resolve)
			if err != nil {
				return nil, err
			}
			t.Text = append(t.Text, ta)
		default:
			// Unrecognized content types are ignored, per spec.md §6.
		}
	}
	return t, nil
}

func resolveAll(as manifest.AdaptationSet, manifestBaseURL string, resolve Resolver) ([]Representation, error) {
	reps := make([]Representation, 0, len(as.Representations))
	for _, rep := range as.Representations {
		resolved, err := resolve(rep, manifestBaseURL)
		if err != nil {
			return nil, fmt.Errorf("tracks: resolve representation %s: %w", rep.ID, err)
		}
		reps = append(reps, resolved)
	}
	return reps, nil
}

func buildVideoAdaptation(as manifest.AdaptationSet, manifestBaseURL string, resolve Resolver) (VideoAdaptation, error) {
	reps, err := resolveAll(as, manifestBaseURL, resolve)
	if err != nil {
		return VideoAdaptation{}, err
	}
	return VideoAdaptation{
		ID:              as.ID,
		MaxWidth:        as.MaxWidth,
		MaxHeight:       as.MaxHeight,
		FrameRate:       as.FrameRate,
		Representations: reps,
	}, nil
}

func buildAudioAdaptation(as manifest.AdaptationSet, manifestBaseURL string, resolve Resolver) (AudioAdaptation, error) {
	reps, err := resolveAll(as, manifestBaseURL, resolve)
	if err != nil {
		return AudioAdaptation{}, err
	}
	return AudioAdaptation{ID: as.ID, Lang: as.Lang, Representations: reps}, nil
}

func buildTextAdaptation(as manifest.AdaptationSet, manifestBaseURL string, resolve Resolver) (TextAdaptation, error) {
	reps, err := resolveAll(as, manifestBaseURL, resolve)
	if err != nil {
		return TextAdaptation{}, err
	}
	return TextAdaptation{ID: as.ID, Lang: as.Lang, Representations: reps}, nil
}
