// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package manifest

import (
	"fmt"
	"regexp"
	"strconv"
)

// isoDurationRE matches the ISO 8601 "PnYnMnDTnHnMnS" duration grammar used by
// MPD.mediaPresentationDuration. All components are optional; seconds may carry
// a fractional part.
var isoDurationRE = regexp.MustCompile(
	`^P(?:(\d+)Y)?(?:(\d+)M)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

const (
	msPerSecond = 1000
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour
	msPerMonth  = 30 * msPerDay
	msPerYear   = 365 * msPerDay
)

// ParseISODurationMS converts an ISO 8601 "PnYnMnDTnHnMnS" duration string into
// milliseconds, respecting fractional seconds.
func ParseISODurationMS(s string) (int64, error) {
	m := isoDurationRE.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("not a valid ISO 8601 duration: %q", s)
	}
	var totalMS int64
	intPart := func(group string, perUnitMS int64) (int64, error) {
		if group == "" {
			return 0, nil
		}
		v, err := strconv.ParseInt(group, 10, 64)
		if err != nil {
			return 0, err
		}
		return v * perUnitMS, nil
	}

	parts := []struct {
		group     string
		perUnitMS int64
	}{
		{m[1], msPerYear},
		{m[2], msPerMonth},
		{m[3], msPerDay},
		{m[4], msPerHour},
		{m[5], msPerMinute},
	}
	for _, p := range parts {
		ms, err := intPart(p.group, p.perUnitMS)
		if err != nil {
			return 0, err
		}
		totalMS += ms
	}
	if m[6] != "" {
		secs, err := strconv.ParseFloat(m[6], 64)
		if err != nil {
			return 0, err
		}
		totalMS += int64(secs * msPerSecond)
	}
	return totalMS, nil
}
