package sidx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dash-player/dashplayer/pkg/manifest"
	"github.com/stretchr/testify/require"
)

// buildMediaFile lays out init(0-99) + sidx index(100-155) + two media
// segments, mirroring the S1 scenario from spec.md.
func buildMediaFile(t *testing.T) []byte {
	t.Helper()
	init := make([]byte, 100)
	box := &Box{
		ReferenceID: 1,
		Timescale:   90000,
		FirstOffset: 0,
		Entries: []Entry{
			{ReferenceSize: 500, SubsegmentDuration: 90000, StartsWithSAP: 1, SAPType: 1},
			{ReferenceSize: 700, SubsegmentDuration: 90000, StartsWithSAP: 1, SAPType: 1},
		},
	}
	idx := box.Encode()
	media := make([]byte, 500+700)
	out := append(append(init, idx...), media...)
	return out
}

func TestResolveEndToEnd(t *testing.T) {
	data := buildMediaFile(t)

	idxStart := 100
	idxEnd := idxStart + len(data[100:100+headerLen+entryLen*2]) - 1

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rng := r.Header.Get("Range")
		require.NotEmpty(t, rng)
		w.WriteHeader(http.StatusPartialContent)
		// Only the index range is ever requested by Resolve.
		w.Write(data[idxStart : idxEnd+1])
	}))
	defer server.Close()

	rep := manifest.Representation{
		ID:        "v0",
		Bandwidth: 500000,
		MimeType:  "video/mp4",
		Codecs:    "hvc1.1.6.L93.90",
		BaseURL:   "video.mp4",
		SegmentBase: &manifest.SegmentBase{
			InitRange:  "0-99",
			IndexRange: "100-" + itoa(idxEnd),
		},
	}

	resolver := Resolve(context.Background(), server.Client())
	out, err := resolver(rep, server.URL+"/manifest.mpd")
	require.NoError(t, err)

	require.Equal(t, "v0", out.ID)
	require.Equal(t, server.URL+"/video.mp4", out.Init.BaseURL)
	require.Equal(t, "video.mp4", out.Init.Path)
	require.Equal(t, uint64(0), out.Init.Start)
	require.Equal(t, uint64(99), out.Init.End)

	require.Len(t, out.Media, 2)
	require.Equal(t, "video.mp4", out.Media[0].Path)
	require.Equal(t, uint64(idxEnd)+1, out.Media[0].Start)
	require.Equal(t, out.Media[0].Start+500-1, out.Media[0].End)
	require.Equal(t, out.Media[0].End+1, out.Media[1].Start)
	require.Equal(t, out.Media[1].Start+700-1, out.Media[1].End)
}

func TestResolveMissingSegmentBase(t *testing.T) {
	rep := manifest.Representation{ID: "v0"}
	resolver := Resolve(context.Background(), http.DefaultClient)
	_, err := resolver(rep, "https://example.test/manifest.mpd")
	require.Error(t, err)
}

func TestResolveNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	rep := manifest.Representation{
		ID:      "v0",
		BaseURL: "video.mp4",
		SegmentBase: &manifest.SegmentBase{
			InitRange:  "0-99",
			IndexRange: "100-163",
		},
	}
	resolver := Resolve(context.Background(), server.Client())
	_, err := resolver(rep, server.URL+"/manifest.mpd")
	require.Error(t, err)
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
