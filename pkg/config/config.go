// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package config resolves player settings from defaults, an optional JSON
// config file, command-line flags, and environment variables, in that order
// of increasing precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	"github.com/spf13/pflag"

	"github.com/dash-player/dashplayer/pkg/logging"
)

// ChannelCapacities mirrors the bounded-channel table in the concurrency model:
// segment (fetcher->decoder), per-stream frame queues, and the audio sample ring.
type ChannelCapacities struct {
	Segment     int `json:"segment"`
	VideoFrame  int `json:"videoframe"`
	AudioFrame  int `json:"audioframe"`
	AudioSample int `json:"audiosample"`
}

// Config is the fully resolved set of player settings.
type Config struct {
	LogFormat        string            `json:"logformat"`
	LogLevel         string            `json:"loglevel"`
	MetricsAddr      string            `json:"metricsaddr"`
	HTTPTimeoutS     int               `json:"httptimeouts"`
	DriftToleranceMS int64             `json:"drifttolerancems"`
	DefaultVolume    float64           `json:"defaultvolume"`
	Channels         ChannelCapacities `json:"channels"`
}

// DefaultConfig holds the values used when nothing else overrides them.
var DefaultConfig = Config{
	LogFormat:        logging.LogText,
	LogLevel:         "INFO",
	MetricsAddr:      "",
	HTTPTimeoutS:     0,
	DriftToleranceMS: 20,
	DefaultVolume:    0.3,
	Channels: ChannelCapacities{
		Segment:     2,
		VideoFrame:  4,
		AudioFrame:  32,
		AudioSample: 8192,
	},
}

// Load resolves defaults, an optional JSON config file, command line flags and
// finally environment variables (DASHPLAYER_ prefixed) into a Config.
//
// args is the program's os.Args; f, if non-nil, is an already-defined flag set
// whose values (e.g. positional manifest URL) the caller also needs, so Load
// registers its own flags on it rather than creating a private set.
func Load(args []string, f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(DefaultConfig, "json"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if f == nil {
		f = pflag.NewFlagSet("dashplayer", pflag.ContinueOnError)
	}
	cfgFile := f.String("cfg", "", "path to a JSON config file")
	lf := strings.Join(logging.LogFormats, ", ")
	f.String("logformat", k.String("logformat"), fmt.Sprintf("log format [%s]", lf))
	ll := strings.Join(logging.LogLevels, ", ")
	f.String("loglevel", k.String("loglevel"), fmt.Sprintf("log level [%s]", ll))
	f.String("metrics-addr", k.String("metricsaddr"), "address to serve /metrics on (empty disables)")
	f.Int("http-timeout", k.Int("httptimeouts"), "HTTP client timeout in seconds (0 = client default)")
	f.Int64("drift-tolerance-ms", k.Int64("drifttolerancems"), "presentation drift tolerance in milliseconds")
	f.Float64("volume", k.Float64("defaultvolume"), "initial audio gain factor")

	if err := f.Parse(args[1:]); err != nil {
		return nil, fmt.Errorf("command line parse: %w", err)
	}

	if *cfgFile != "" {
		if err := k.Load(file.Provider(*cfgFile), json.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	// Flag names that differ from their config keys are mapped onto the key
	// so a flag given on the command line overrides the matching field.
	flagKeys := map[string]string{
		"metrics-addr":       "metricsaddr",
		"http-timeout":       "httptimeouts",
		"drift-tolerance-ms": "drifttolerancems",
		"volume":             "defaultvolume",
	}
	if err := k.Load(posflag.ProviderWithValue(f, ".", k, func(key, value string) (string, interface{}) {
		if mapped, ok := flagKeys[key]; ok {
			key = mapped
		}
		return key, value
	}), nil); err != nil {
		return nil, fmt.Errorf("parsing cli: %w", err)
	}

	err := k.Load(env.Provider("DASHPLAYER_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "DASHPLAYER_")), "_", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := DefaultConfig
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
