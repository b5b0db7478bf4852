// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package sidx

import "fmt"

// NetworkError wraps a transport-level failure fetching the index or init range.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("sidx: network error fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RangeSyntaxError reports a malformed "start-end" byte-range attribute.
type RangeSyntaxError struct {
	Value string
	Err   error
}

func (e *RangeSyntaxError) Error() string {
	return fmt.Sprintf("sidx: invalid byte range %q: %v", e.Value, e.Err)
}

func (e *RangeSyntaxError) Unwrap() error { return e.Err }

// NotAnSidx reports a box whose type field isn't "sidx".
type NotAnSidx struct {
	GotType string
}

func (e *NotAnSidx) Error() string {
	return fmt.Sprintf("sidx: expected box type \"sidx\", got %q", e.GotType)
}

// TruncatedSidx reports fewer bytes than the box declared.
type TruncatedSidx struct {
	Declared int
	Got      int
}

func (e *TruncatedSidx) Error() string {
	return fmt.Sprintf("sidx: truncated box: declared %d bytes, got %d", e.Declared, e.Got)
}
