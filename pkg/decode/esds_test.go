package decode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAudioSpecificConfig(t *testing.T) {
	// AAC-LC (object type 2), 44.1kHz (freq_idx 4), stereo (channel config 2):
	// 5 bits objectType=00010, 4 bits freqIdx=0100, 4 bits chanConfig=0010,
	// then 3 padding bits: 00010 0100 0010 000 -> bytes 0x12 0x10.
	cfg := []byte{0x12, 0x10}
	ac, err := parseAudioSpecificConfig(cfg)
	require.NoError(t, err)
	require.Equal(t, 2, ac.Profile)
	require.Equal(t, 4, ac.SamplingFreqIdx)
	require.Equal(t, 2, ac.ChannelConfig)
}

func TestParseAudioSpecificConfigTooShort(t *testing.T) {
	_, err := parseAudioSpecificConfig([]byte{0x12})
	require.Error(t, err)
}

// buildMinimalEsds constructs a minimal ISO/IEC 14496-1 descriptor tree
// wrapping a 2-byte AudioSpecificConfig in a DecoderSpecificInfo (tag 0x05)
// nested inside a DecoderConfigDescriptor (tag 0x04) inside an
// ES_Descriptor (tag 0x03), matching the shape scanDecoderSpecificInfo walks.
func buildMinimalEsds(asc []byte) []byte {
	decSpecific := append([]byte{0x05, byte(len(asc))}, asc...)
	decConfigFixed := []byte{0x40, 0x15, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00} // 13 bytes
	decConfigPayload := append(append([]byte{}, decConfigFixed...), decSpecific...)
	decConfig := append([]byte{0x04, byte(len(decConfigPayload))}, decConfigPayload...)
	esDescrFixed := []byte{0x00, 0x00, 0x00} // ES_ID + flags, all flag bits clear
	esDescrPayload := append(append([]byte{}, esDescrFixed...), decConfig...)
	esDescr := append([]byte{0x03, byte(len(esDescrPayload))}, esDescrPayload...)
	return esDescr
}

func TestScanDecoderSpecificInfo(t *testing.T) {
	asc := []byte{0x12, 0x10}
	esds := buildMinimalEsds(asc)
	got, err := scanDecoderSpecificInfo(esds)
	require.NoError(t, err)
	require.Equal(t, asc, got)
}

func TestScanDecoderSpecificInfoMissing(t *testing.T) {
	_, err := scanDecoderSpecificInfo([]byte{0x03, 0x02, 0x00, 0x00})
	require.Error(t, err)
}
