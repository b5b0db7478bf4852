// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package decode

import (
	"bytes"
	"fmt"

	"github.com/Eyevinn/mp4ff/bits"
	"github.com/Eyevinn/mp4ff/hevc"
	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/dash-player/dashplayer/pkg/codecparams"
)

// initInfo is the sample-description data extracted from an init segment's
// single track (spec.md §4.4 step 2).
type initInfo struct {
	sampleType  string // "hvc1", "hev1", or "mp4a"
	timescale   uint32
	trex        *mp4.TrexBox
	videoParams [][]byte    // Annex-B-ready VPS/SPS/PPS NALUs, in feed order
	audioConfig AudioConfig
	width       uint32
	height      uint32
}

// decodeInitSegment parses the init segment bytes and extracts the one
// track's sample entry and codec-specific configuration, grounded on the
// mp4ff traversal idiom used by cmd/cmaf-ingest-receiver/app/stream.go
// (bits.NewFixedSliceReader + mp4.DecodeFileSR, trak.Mdia.Minf.Stbl.Stsd).
func decodeInitSegment(stream string, data []byte) (*initInfo, error) {
	sr := bits.NewFixedSliceReader(data)
	f, err := mp4.DecodeFileSR(sr)
	if err != nil {
		return nil, &ContainerParseError{Stream: stream, Err: err}
	}
	if f.Init == nil || f.Init.Moov == nil {
		return nil, &ContainerParseError{Stream: stream, Err: fmt.Errorf("no moov box in init segment")}
	}
	moov := f.Init.Moov
	if len(moov.Traks) == 0 {
		return nil, &ContainerParseError{Stream: stream, Err: fmt.Errorf("no tracks in init segment")}
	}
	trak := moov.Traks[0]
	if trak.Mdia == nil || trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return nil, &ContainerParseError{Stream: stream, Err: fmt.Errorf("missing mdia/minf/stbl/stsd")}
	}
	stsd := trak.Mdia.Minf.Stbl.Stsd
	if len(stsd.Children) == 0 {
		return nil, &ContainerParseError{Stream: stream, Err: fmt.Errorf("empty stsd")}
	}
	sampleType := stsd.Children[0].Type()

	info := &initInfo{
		sampleType: sampleType,
		timescale:  trak.Mdia.Mdhd.Timescale,
	}
	if moov.Mvex != nil {
		info.trex = moov.Mvex.Trex
	}

	switch sampleType {
	case "hvc1", "hev1":
		if stsd.HvcX == nil || stsd.HvcX.HvcC == nil {
			return nil, &CodecUnsupportedError{Stream: stream, SampleType: sampleType}
		}
		vse, ok := stsd.Children[0].(*mp4.VisualSampleEntryBox)
		if ok {
			info.width, info.height = uint32(vse.Width), uint32(vse.Height)
		}
		dcr := stsd.HvcX.HvcC.DecConfRec
		for _, naluType := range []hevc.NaluType{hevc.NALU_VPS, hevc.NALU_SPS, hevc.NALU_PPS} {
			for _, nalu := range dcr.GetNalusForType(naluType) {
				info.videoParams = append(info.videoParams, codecparams.PrefixParameterSet(nalu))
			}
		}
		if len(info.videoParams) == 0 {
			return nil, &ContainerParseError{Stream: stream, Err: fmt.Errorf("no HEVC parameter sets in hvcC")}
		}
	case "mp4a":
		ase, ok := stsd.Children[0].(*mp4.AudioSampleEntryBox)
		if !ok {
			return nil, &CodecUnsupportedError{Stream: stream, SampleType: sampleType}
		}
		cfgBytes, err := extractAudioSpecificConfig(ase)
		if err != nil {
			return nil, &ContainerParseError{Stream: stream, Err: err}
		}
		ac, err := parseAudioSpecificConfig(cfgBytes)
		if err != nil {
			return nil, &ContainerParseError{Stream: stream, Err: err}
		}
		info.audioConfig = ac
	default:
		return nil, &CodecUnsupportedError{Stream: stream, SampleType: sampleType}
	}
	return info, nil
}

// ProbeCodec parses stream's init segment bytes far enough to determine
// whether its sample description box declares a codec this decoder
// supports, without configuring a decoder or returning the parsed details.
// The orchestrator calls this synchronously from play() so an unsupported
// codec (spec.md §7, scenario S6) is reported before any pipeline task is
// spawned, rather than surfacing asynchronously from within RunVideo/RunAudio.
func ProbeCodec(stream string, initSegmentBytes []byte) error {
	_, err := decodeInitSegment(stream, initSegmentBytes)
	return err
}

// extractAudioSpecificConfig locates the esds box among an AudioSampleEntry's
// children, re-encodes it to bytes, and scans its MPEG-4 descriptor tree for
// the DecoderSpecificInfo tag (0x05) holding the AudioSpecificConfig.
func extractAudioSpecificConfig(ase *mp4.AudioSampleEntryBox) ([]byte, error) {
	var esdsBytes []byte
	for _, c := range ase.Children {
		if c.Type() == "esds" {
			var buf bytes.Buffer
			if err := c.Encode(&buf); err != nil {
				return nil, fmt.Errorf("encode esds: %w", err)
			}
			esdsBytes = buf.Bytes()
			break
		}
	}
	if esdsBytes == nil {
		return nil, fmt.Errorf("no esds box found in audio sample entry")
	}
	// The encoded box starts with its 8-byte box header and 4-byte
	// version/flags; the descriptor tree follows them.
	const esdsPayloadOffset = 12
	if len(esdsBytes) < esdsPayloadOffset {
		return nil, fmt.Errorf("esds box too short: %d bytes", len(esdsBytes))
	}
	return scanDecoderSpecificInfo(esdsBytes[esdsPayloadOffset:])
}

// containerFixedPrefix gives the number of fixed (non-nested-descriptor)
// bytes at the start of each ISO/IEC 14496-1 descriptor tag's payload that
// precedes any nested child descriptors, for the flag values this decoder
// synthesizes: ES_Descriptor (tag 3) with all flag bits clear (ES_ID +
// flags byte, 3 bytes) and DecoderConfigDescriptor (tag 4)
// (objectTypeIndication + streamType/upStream/reserved + bufferSizeDB +
// maxBitrate + avgBitrate, 13 bytes).
var containerFixedPrefix = map[byte]int{0x03: 3, 0x04: 13}

const decSpecificInfoTag = 0x05

// scanDecoderSpecificInfo walks the ISO/IEC 14496-1 descriptor tree inside a
// raw esds payload looking for tag 0x05 (DecSpecificInfoTag), whose contents
// are the AudioSpecificConfig. Descriptor lengths use the standard
// variable-length encoding: each length byte's high bit signals a
// continuation byte.
func scanDecoderSpecificInfo(esds []byte) ([]byte, error) {
	return scanDescriptors(esds)
}

func scanDescriptors(data []byte) ([]byte, error) {
	pos := 0
	for pos < len(data) {
		tag := data[pos]
		pos++
		length := 0
		for {
			if pos >= len(data) {
				return nil, fmt.Errorf("esds: truncated descriptor length")
			}
			b := data[pos]
			pos++
			length = (length << 7) | int(b&0x7F)
			if b&0x80 == 0 {
				break
			}
		}
		if pos+length > len(data) {
			return nil, fmt.Errorf("esds: descriptor tag 0x%02x length %d exceeds buffer", tag, length)
		}
		value := data[pos : pos+length]
		if tag == decSpecificInfoTag {
			return value, nil
		}
		if skip, ok := containerFixedPrefix[tag]; ok && skip <= len(value) {
			if found, err := scanDescriptors(value[skip:]); err == nil {
				return found, nil
			}
		}
		pos += length
	}
	return nil, fmt.Errorf("esds: DecoderSpecificInfo (tag 0x05) not found")
}
