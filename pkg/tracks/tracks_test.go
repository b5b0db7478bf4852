package tracks

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dash-player/dashplayer/pkg/manifest"
)

func fakeResolve(rep manifest.Representation, baseURL string) (Representation, error) {
	return Representation{
		ID:        rep.ID,
		Bandwidth: rep.Bandwidth,
		MimeType:  rep.MimeType,
		Codecs:    rep.Codecs,
		Init:      Segment{BaseURL: baseURL, Path: rep.BaseURL, Start: 0, End: 879},
		Index:     Segment{BaseURL: baseURL, Path: rep.BaseURL, Start: 880, End: 931},
		Media: []Segment{
			{BaseURL: baseURL, Path: rep.BaseURL, Start: 932, End: 1931},
			{BaseURL: baseURL, Path: rep.BaseURL, Start: 1932, End: 2931},
		},
	}, nil
}

func TestBuildCuratesContentTypes(t *testing.T) {
	pres := &manifest.Presentation{
		DurationMS: 90500,
		Periods: []manifest.Period{{
			AdaptationSets: []manifest.AdaptationSet{
				{ID: "0", ContentType: manifest.ContentVideo, Representations: []manifest.Representation{
					{ID: "v0", BaseURL: "video.mp4"},
				}},
				{ID: "1", ContentType: manifest.ContentAudio, Representations: []manifest.Representation{
					{ID: "a0", BaseURL: "audio.mp4"},
				}},
				{ID: "2", ContentType: "unsupported", Representations: []manifest.Representation{
					{ID: "x0", BaseURL: "x.mp4"},
				}},
			},
		}},
	}

	got, err := Build(pres, "https://example.com/asset/", fakeResolve)
	require.NoError(t, err)
	require.Equal(t, int64(90500), got.DurationMS)
	require.Len(t, got.Video, 1)
	require.Len(t, got.Audio, 1)
	require.Empty(t, got.Text)
	require.Len(t, got.Video[0].Representations, 1)
	require.Equal(t, "v0", got.Video[0].Representations[0].ID)
	require.Len(t, got.Video[0].Representations[0].Media, 2)
}

func TestBuildPropagatesResolveError(t *testing.T) {
	pres := &manifest.Presentation{
		Periods: []manifest.Period{{
			AdaptationSets: []manifest.AdaptationSet{
				{ID: "0", ContentType: manifest.ContentVideo, Representations: []manifest.Representation{
					{ID: "v0"},
				}},
			},
		}},
	}
	_, err := Build(pres, "base/", func(rep manifest.Representation, baseURL string) (Representation, error) {
		return Representation{}, require.AnError
	})
	require.Error(t, err)
}
