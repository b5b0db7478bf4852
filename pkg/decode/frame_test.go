package decode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVideoFrameReleaseRunsCallbackAtZero(t *testing.T) {
	released := 0
	f := NewVideoFrame(50, "picture", func() { released++ })
	f.Retain()
	f.Release()
	require.Equal(t, 0, released, "frame still held by original owner after one retain/release pair")
	f.Release()
	require.Equal(t, 1, released, "callback fires once refcount reaches zero")
}

func TestVideoFrameZeroValueReleaseIsNoop(t *testing.T) {
	var f VideoFrame
	require.NotPanics(t, func() { f.Release() })
}
