package codecparams

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildADTSHeaderGolden(t *testing.T) {
	h := BuildADTSHeader(2, 4, 2, 1024)
	want := [8]byte{0xFF, 0xF1, 0x50, 0x80, 0x80, 0x1F, 0xFC, 0xFF}
	require.Equal(t, want, h)
}

func TestBuildADTSHeaderFixedBytes(t *testing.T) {
	for profile := 1; profile <= 4; profile++ {
		for freqIdx := 0; freqIdx <= 12; freqIdx++ {
			for chanConfig := 0; chanConfig <= 7; chanConfig++ {
				h := BuildADTSHeader(profile, freqIdx, chanConfig, 1024)
				require.Equal(t, byte(0xFF), h[0])
				require.Equal(t, byte(0xF1), h[1])
				require.Equal(t, byte(0xFC), h[6])
				require.Equal(t, byte(0xFF), h[7])
			}
		}
	}
}
