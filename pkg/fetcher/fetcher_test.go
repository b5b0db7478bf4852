package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dash-player/dashplayer/pkg/tracks"
	"github.com/stretchr/testify/require"
)

func testSegments(baseURL string, n int) []tracks.Segment {
	segs := make([]tracks.Segment, n)
	for i := range segs {
		segs[i] = tracks.Segment{BaseURL: baseURL, Start: uint64(i * 10), End: uint64(i*10 + 9)}
	}
	return segs
}

func TestRunEmitsInOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NotEmpty(t, r.Header.Get("Range"))
		w.WriteHeader(http.StatusPartialContent)
		w.Write([]byte("0123456789"))
	}))
	defer server.Close()

	segs := testSegments(server.URL, 3)
	out := make(chan DataSegment, 2)
	errc := make(chan error, 1)

	go Run(context.Background(), server.Client(), "video", segs, out, errc, nil)

	var got []DataSegment
	for ds := range out {
		got = append(got, ds)
	}
	require.Len(t, got, 3)
	for i, ds := range got {
		require.Equal(t, i, ds.Sequence)
		require.Equal(t, []byte("0123456789"), ds.Bytes)
	}
	select {
	case err := <-errc:
		t.Fatalf("unexpected error: %v", err)
	default:
	}
}

func TestRunBackpressureBoundsInFlight(t *testing.T) {
	var served int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served++
		w.WriteHeader(http.StatusPartialContent)
		w.Write([]byte("x"))
	}))
	defer server.Close()

	segs := testSegments(server.URL, 10)
	out := make(chan DataSegment) // cap 0: nothing drained, fetcher must stall after first send attempt
	errc := make(chan error, 1)

	go Run(context.Background(), server.Client(), "video", segs, out, errc, nil)

	first := <-out
	require.Equal(t, 0, first.Sequence)

	// Give the fetcher a moment; it should be blocked trying to send segment 1,
	// not racing ahead to fetch all 10.
	time.Sleep(20 * time.Millisecond)
	require.LessOrEqual(t, served, 2)
}

func TestRunStopsOnTransportError(t *testing.T) {
	segs := testSegments("http://127.0.0.1:0/unreachable", 2)
	out := make(chan DataSegment, 2)
	errc := make(chan error, 1)

	go Run(context.Background(), http.DefaultClient, "audio", segs, out, errc, nil)

	_, ok := <-out
	require.False(t, ok, "channel should close without emitting any segment")

	select {
	case err := <-errc:
		require.Error(t, err)
		var netErr *NetworkError
		require.ErrorAs(t, err, &netErr)
	case <-time.After(time.Second):
		t.Fatal("expected error on errc")
	}
}

func TestRunCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPartialContent)
		w.Write([]byte("x"))
	}))
	defer server.Close()

	segs := testSegments(server.URL, 50)
	out := make(chan DataSegment) // unbuffered so the fetcher stalls quickly
	errc := make(chan error, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Run(ctx, server.Client(), "video", segs, out, errc, nil)
		close(done)
	}()

	<-out // consume the first segment so the fetcher proceeds to stall on the second
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("fetcher did not exit promptly after cancellation")
	}
	_, ok := <-out
	require.False(t, ok, "out channel must be closed after cancellation")
}
