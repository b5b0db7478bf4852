// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package codecparams synthesizes the pre-feed packets an elementary stream
// decoder needs before it can interpret raw sample bytes (spec.md §6): an
// ADTS header for AAC, and the Annex-B NAL transform for HEVC.
package codecparams

// BuildADTSHeader synthesizes the 8-byte ADTS header for one AAC frame from
// its ESDS-derived decoder-config fields, per spec.md §6. frameLen is the
// byte length of the ADTS frame including this header (spec.md's worked
// example always passes the 1024 sample-count placeholder, not the actual
// AAC frame size in bytes, and is preserved literally here).
func BuildADTSHeader(profile, freqIdx, chanConfig int, frameLen int) [8]byte {
	var h [8]byte
	h[0] = 0xFF
	h[1] = 0xF1
	h[2] = byte((profile-1)<<6) | byte(freqIdx<<2) | byte((chanConfig&0x4)>>2)
	h[3] = byte((chanConfig&0x3)<<6) | byte((frameLen>>11)&0x03)
	h[4] = byte((frameLen >> 3) & 0xFF)
	h[5] = byte((frameLen&0x07)<<5) | 0x1F
	h[6] = 0xFC
	h[7] = 0xFF
	return h
}
