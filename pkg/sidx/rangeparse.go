// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package sidx

import (
	"strconv"
	"strings"
)

// ByteRange is an inclusive "start-end" byte range.
type ByteRange struct {
	Start uint64
	End   uint64
}

// ParseByteRange parses a "start-end" attribute value, as found on
// SegmentBase.indexRange and Initialization.range.
func ParseByteRange(s string) (ByteRange, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return ByteRange{}, &RangeSyntaxError{Value: s}
	}
	start, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return ByteRange{}, &RangeSyntaxError{Value: s, Err: err}
	}
	end, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return ByteRange{}, &RangeSyntaxError{Value: s, Err: err}
	}
	return ByteRange{Start: start, End: end}, nil
}

// String renders the range back into "start-end" form, e.g. for a Range header.
func (r ByteRange) String() string {
	return strconv.FormatUint(r.Start, 10) + "-" + strconv.FormatUint(r.End, 10)
}
