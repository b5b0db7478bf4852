package video

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dash-player/dashplayer/pkg/decode"
)

func TestLetterboxScaleWiderFrame(t *testing.T) {
	// 1920x1080 window (16:9), 1920x800 frame (wider than window): fit
	// width, shrink height.
	sx, sy := LetterboxScale(1920, 1080, 1920, 800)
	require.InDelta(t, 1.0, sx, 1e-9)
	require.Less(t, sy, 1.0)
}

func TestLetterboxScaleTallerFrame(t *testing.T) {
	// 1920x1080 window, 1080x1080 (square) frame: taller relative to
	// window, fit height, shrink width.
	sx, sy := LetterboxScale(1920, 1080, 1080, 1080)
	require.InDelta(t, 1.0, sy, 1e-9)
	require.Less(t, sx, 1.0)
}

func TestLetterboxScaleMatchingAspect(t *testing.T) {
	sx, sy := LetterboxScale(1280, 720, 1920, 1080)
	require.InDelta(t, 1.0, sx, 1e-9)
	require.InDelta(t, 1.0, sy, 1e-9)
}

func TestLetterboxScaleDegenerateInputsFallBackToIdentity(t *testing.T) {
	sx, sy := LetterboxScale(0, 0, 1920, 1080)
	require.Equal(t, 1.0, sx)
	require.Equal(t, 1.0, sy)
}

func TestRenderPresentsWithComputedScale(t *testing.T) {
	surface := NewRefSurface(1920, 1080)
	r := New(surface, 1920, 800)

	frame := decode.NewVideoFrame(1000, "picture", nil)
	require.NoError(t, r.Render(frame))

	require.Equal(t, 1, surface.Presented)
	require.InDelta(t, 1.0, surface.LastScale[0], 1e-9)
	require.Less(t, surface.LastScale[1], 1.0)
}

func TestRenderRecomputesScaleOnResize(t *testing.T) {
	surface := NewRefSurface(1920, 1080)
	r := New(surface, 1080, 1080)

	require.NoError(t, r.Render(decode.NewVideoFrame(0, "a", nil)))
	firstScaleX := surface.LastScale[0]

	surface.Resize(1080, 1080)
	require.NoError(t, r.Render(decode.NewVideoFrame(1, "b", nil)))

	require.InDelta(t, 1.0, surface.LastScale[0], 1e-9)
	require.NotEqual(t, firstScaleX, surface.LastScale[0])
}
