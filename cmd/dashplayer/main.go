// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/dash-player/dashplayer/internal"
	"github.com/dash-player/dashplayer/pkg/audio"
	"github.com/dash-player/dashplayer/pkg/config"
	"github.com/dash-player/dashplayer/pkg/decode"
	"github.com/dash-player/dashplayer/pkg/decode/refcodec"
	"github.com/dash-player/dashplayer/pkg/logging"
	"github.com/dash-player/dashplayer/pkg/metrics"
	"github.com/dash-player/dashplayer/pkg/player"
	"github.com/dash-player/dashplayer/pkg/tracks"
	"github.com/dash-player/dashplayer/pkg/video"
)

var usg = `Usage of %s:

%s opens a DASH indexed-VOD asset and plays it.

The --video-track/--audio-track options pick the adaptation/representation
pair to play (see --list-tracks to print the options after opening the URL).
Playback is controlled interactively: Esc quits, F and W log a
fullscreen/windowed request, A raises volume, Z lowers it.
`

type options struct {
	VideoTrack string
	AudioTrack string
	ListTracks bool
	Version    bool
	AssetURL   string
}

func parseOptions() (*options, *config.Config) {
	name := os.Args[0]
	f := flag.NewFlagSet(name, flag.ExitOnError)
	o := &options{}
	f.StringVar(&o.VideoTrack, "video-track", "", "video adaptation/representation id, as \"adaptationID/representationID\"")
	f.StringVar(&o.AudioTrack, "audio-track", "", "audio adaptation/representation id, as \"adaptationID/representationID\"")
	f.BoolVar(&o.ListTracks, "list-tracks", false, "print available tracks and exit")
	f.BoolVarP(&o.Version, "version", "v", false, "print version and date")
	f.CommandLine.SortFlags = false

	f.Usage = func() {
		parts := strings.Split(name, "/")
		shortName := parts[len(parts)-1]
		fmt.Fprintf(os.Stderr, usg, shortName, shortName)
		fmt.Fprintf(os.Stderr, "\nRun as %s [options] mpdURL\n\n", shortName)
		f.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load(os.Args, f)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if o.Version {
		fmt.Printf("dashplayer: %s\n", internal.GetVersion())
		os.Exit(0)
	}

	if len(f.Args()) != 1 {
		f.Usage()
	}
	o.AssetURL = f.Args()[0]
	return o, cfg
}

// splitTrackID parses an "adaptationID/representationID" flag value.
func splitTrackID(s string) (adaptationID, representationID string, ok bool) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func main() {
	o, cfg := parseOptions()

	if err := logging.InitSlog(cfg.LogLevel, cfg.LogFormat); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reg := metrics.New()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := reg.Serve(ctx, cfg.MetricsAddr); err != nil {
				slog.Error("metrics server stopped", "err", err)
			}
		}()
	}

	client := &http.Client{}
	if cfg.HTTPTimeoutS > 0 {
		client.Timeout = time.Duration(cfg.HTTPTimeoutS) * time.Second
	}

	surface := video.NewRefSurface(1920, 1080)
	device := audio.NewRefDevice()

	p := player.New(client, cfg, reg,
		func() decode.VideoDecoder { return refcodec.New() },
		func() decode.AudioDecoder { return refcodec.NewAudio() },
		device, surface)

	slog.Info("opening manifest", "url", o.AssetURL)
	if err := p.OpenURL(ctx, o.AssetURL); err != nil {
		slog.Error("open_url failed", "err", err)
		os.Exit(1)
	}
	if err := p.Prepare(ctx); err != nil {
		slog.Error("prepare failed", "err", err)
		os.Exit(1)
	}

	tr, err := p.GetTracks()
	if err != nil {
		slog.Error("get_tracks failed", "err", err)
		os.Exit(1)
	}
	if o.ListTracks {
		printTracks(tr)
		return
	}

	if err := selectTracks(p, o, tr); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}

	handle, err := p.Play(ctx)
	if err != nil {
		slog.Error("play failed", "err", err)
		os.Exit(1)
	}

	go readKeys(ctx, p, surface)

	<-handle.Done()
	if err := handle.Err(); err != nil {
		slog.Error("playback ended with error", "err", err)
		os.Exit(1)
	}
	slog.Info("playback ended")
}

func selectTracks(p *player.Player, o *options, tr *tracks.Tracks) error {
	videoAdaptation, videoRep, ok := pickVideoTrack(o.VideoTrack, tr)
	if !ok {
		return fmt.Errorf("no video track selected; pass --video-track or use --list-tracks")
	}
	audioAdaptation, audioRep, ok := pickAudioTrack(o.AudioTrack, tr)
	if !ok {
		return fmt.Errorf("no audio track selected; pass --audio-track or use --list-tracks")
	}
	if err := p.SetVideoTrack(videoAdaptation, videoRep); err != nil {
		return err
	}
	return p.SetAudioTrack(audioAdaptation, audioRep)
}

func pickVideoTrack(flagValue string, tr *tracks.Tracks) (adaptationID, representationID string, ok bool) {
	if flagValue != "" {
		return splitTrackID(flagValue)
	}
	if len(tr.Video) == 0 || len(tr.Video[0].Representations) == 0 {
		return "", "", false
	}
	return tr.Video[0].ID, tr.Video[0].Representations[0].ID, true
}

func pickAudioTrack(flagValue string, tr *tracks.Tracks) (adaptationID, representationID string, ok bool) {
	if flagValue != "" {
		return splitTrackID(flagValue)
	}
	if len(tr.Audio) == 0 || len(tr.Audio[0].Representations) == 0 {
		return "", "", false
	}
	return tr.Audio[0].ID, tr.Audio[0].Representations[0].ID, true
}

// printTracks prints the adaptation/representation ids --video-track and
// --audio-track accept, one line per representation.
func printTracks(tr *tracks.Tracks) {
	for _, as := range tr.Video {
		for _, rep := range as.Representations {
			fmt.Printf("video\t%s/%s\t%dx%d\t%s\t%d bps\n", as.ID, rep.ID, rep.Width, rep.Height, rep.Codecs, rep.Bandwidth)
		}
	}
	for _, as := range tr.Audio {
		for _, rep := range as.Representations {
			fmt.Printf("audio\t%s/%s\t%d Hz\t%s\t%d bps\n", as.ID, rep.ID, rep.AudioSamplingRate, rep.Codecs, rep.Bandwidth)
		}
	}
}

// readKeys recognizes the interactive key surface of the player host
// (Esc/F/W/A/Z, spec.md §6) over a line-buffered stdin reader: a real
// terminal host would read raw key events, but a line reader keeps this
// reference CLI free of a terminal-raw-mode dependency the teacher's
// repo never carried.
func readKeys(ctx context.Context, p *player.Player, surface *video.RefSurface) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToUpper(line) {
		case "ESC":
			if err := p.Stop(); err != nil {
				slog.Warn("stop failed", "err", err)
			}
			return
		case "F":
			w, h := surface.InnerSize()
			slog.Info("fullscreen toggle requested", "width", w, "height", h)
		case "W":
			slog.Info("windowed toggle requested")
		case "A":
			if err := p.Volume(0.05); err != nil {
				slog.Warn("volume up failed", "err", err)
			}
		case "Z":
			if err := p.Volume(-0.05); err != nil {
				slog.Warn("volume down failed", "err", err)
			}
		}
		if ctx.Err() != nil {
			return
		}
	}
}
