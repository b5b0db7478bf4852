package refcodec

import (
	"testing"

	"github.com/dash-player/dashplayer/pkg/decode"
	"github.com/stretchr/testify/require"
)

func TestVideoDecoderPassThrough(t *testing.T) {
	d := New()
	require.NoError(t, d.Configure([][]byte{{0x00, 0x00, 0x00, 0x01, 0x40}}))

	require.NoError(t, d.Decode(decode.CodecPacket{Payload: []byte{1, 2, 3}, PTSMillis: 100}))
	require.NoError(t, d.Decode(decode.CodecPacket{Payload: []byte{4, 5}, PTSMillis: 140}))

	frames, err := d.Drain()
	require.NoError(t, err)
	require.Len(t, frames, 2)
	require.Equal(t, int64(100), frames[0].PTSMillis)
	require.Equal(t, []byte{1, 2, 3}, frames[0].Picture)
	require.Equal(t, int64(140), frames[1].PTSMillis)

	// Drain is destructive: a second call returns nothing new.
	more, err := d.Drain()
	require.NoError(t, err)
	require.Empty(t, more)

	require.NoError(t, d.Close())
}

func TestVideoDecoderRequiresConfigure(t *testing.T) {
	d := New()
	err := d.Decode(decode.CodecPacket{Payload: []byte{1}})
	require.Error(t, err)
}

func TestAudioDecoderProducesSamples(t *testing.T) {
	d := NewAudio()
	require.NoError(t, d.Configure([8]byte{0xFF, 0xF1, 0x50, 0x80, 0x80, 0x1F, 0xFC, 0xFF}))

	require.NoError(t, d.Decode(decode.CodecPacket{Payload: []byte{128, 0, 255}, PTSMillis: 0}))
	frames, err := d.Drain()
	require.NoError(t, err)
	require.Len(t, frames, 1)
	require.Len(t, frames[0].Samples, 3)
	require.InDelta(t, 0.0, frames[0].Samples[0], 1e-6)
}
