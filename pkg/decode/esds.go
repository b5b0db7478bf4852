// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package decode

import "fmt"

// AudioConfig holds the three ESDS/AudioSpecificConfig fields needed to
// synthesize an ADTS header (spec.md §4.4 step 2, §6).
type AudioConfig struct {
	Profile        int // AAC object type: 1=Main, 2=LC, 5=SBR, 29=PS
	SamplingFreqIdx int
	ChannelConfig  int
}

// parseAudioSpecificConfig extracts profile/freq_idx/channel_config from the
// two-byte AudioSpecificConfig payload carried inside an esds box's
// DecoderSpecificInfo descriptor. mp4ff exposes the esds box itself but not
// a parsed view of this nested MPEG-4 descriptor, so it is decoded here
// bit-exactly against the standard layout: 5 bits object type, 4 bits
// sampling frequency index, 4 bits channel configuration.
func parseAudioSpecificConfig(cfg []byte) (AudioConfig, error) {
	if len(cfg) < 2 {
		return AudioConfig{}, fmt.Errorf("decode: AudioSpecificConfig too short: %d bytes", len(cfg))
	}
	b0, b1 := cfg[0], cfg[1]
	objectType := int(b0 >> 3)
	freqIdx := int((b0&0x07)<<1 | (b1 >> 7))
	chanConfig := int((b1 >> 3) & 0x0F)
	return AudioConfig{
		Profile:         objectType,
		SamplingFreqIdx: freqIdx,
		ChannelConfig:   chanConfig,
	}, nil
}
