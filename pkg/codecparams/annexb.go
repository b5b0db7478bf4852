// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package codecparams

import (
	"encoding/binary"
	"fmt"
)

var startCode = [4]byte{0x00, 0x00, 0x00, 0x01}

// SampleTruncatedError reports a length-prefixed NAL whose declared size
// runs past the end of the sample buffer.
type SampleTruncatedError struct {
	Offset   int
	Declared uint32
	Got      int
}

func (e *SampleTruncatedError) Error() string {
	return fmt.Sprintf("codecparams: NAL at offset %d declares %d bytes, only %d available", e.Offset, e.Declared, e.Got)
}

// ToAnnexB splits a sample whose bytes are 4-byte-length-prefixed NAL units
// (the "AVCC"-style in-band framing used inside an ISOBMFF sample) into a
// sequence of Annex-B NALs, each prefixed with the 00 00 00 01 start code
// instead of its length.
func ToAnnexB(sample []byte) ([][]byte, error) {
	var nals [][]byte
	pos := 0
	for pos < len(sample) {
		if pos+4 > len(sample) {
			return nil, &SampleTruncatedError{Offset: pos, Declared: 4, Got: len(sample) - pos}
		}
		size := binary.BigEndian.Uint32(sample[pos : pos+4])
		pos += 4
		if pos+int(size) > len(sample) {
			return nil, &SampleTruncatedError{Offset: pos, Declared: size, Got: len(sample) - pos}
		}
		nal := make([]byte, 4+size)
		copy(nal[0:4], startCode[:])
		copy(nal[4:], sample[pos:pos+int(size)])
		nals = append(nals, nal)
		pos += int(size)
	}
	return nals, nil
}

// PrefixParameterSet wraps a single parameter-set NAL (SPS/PPS/VPS) in the
// Annex-B start code, for pre-feeding the decoder (spec.md §4.4 step 4).
func PrefixParameterSet(nal []byte) []byte {
	out := make([]byte, 4+len(nal))
	copy(out[0:4], startCode[:])
	copy(out[4:], nal)
	return out
}
