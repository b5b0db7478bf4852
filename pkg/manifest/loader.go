// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package manifest

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/beevik/etree"
)

// Load fetches url over HTTP GET and parses the response body as a DASH MPD.
func Load(ctx context.Context, client *http.Client, url string) (*Presentation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, &NetworkError{URL: url, Err: &httpStatusError{resp.StatusCode}}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	return Parse(body)
}

type httpStatusError struct{ code int }

func (e *httpStatusError) Error() string {
	return "unexpected status " + strconv.Itoa(e.code)
}

// Parse parses raw MPD XML bytes into a Presentation. Unknown elements and
// attributes are silently ignored: only the recognized ones listed in
// spec.md §4.1 are read.
func Parse(body []byte) (*Presentation, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, &ParseError{Reason: "invalid XML", Err: err}
	}
	root := doc.SelectElement("MPD")
	if root == nil {
		return nil, &ParseError{Reason: "missing MPD root element"}
	}

	durAttr := root.SelectAttrValue("mediaPresentationDuration", "")
	if durAttr == "" {
		return nil, &SchemaError{Element: "MPD", Attr: "mediaPresentationDuration"}
	}
	durMS, err := ParseISODurationMS(durAttr)
	if err != nil {
		return nil, &ParseError{Reason: "invalid mediaPresentationDuration", Err: err}
	}

	var periods []Period
	for _, periodEl := range root.SelectElements("Period") {
		period, err := parsePeriod(periodEl)
		if err != nil {
			return nil, err
		}
		periods = append(periods, period)
	}

	return &Presentation{DurationMS: durMS, Periods: periods}, nil
}

func parsePeriod(el *etree.Element) (Period, error) {
	var sets []AdaptationSet
	for _, asEl := range el.SelectElements("AdaptationSet") {
		as, err := parseAdaptationSet(asEl)
		if err != nil {
			return Period{}, err
		}
		sets = append(sets, as)
	}
	return Period{AdaptationSets: sets}, nil
}

func parseAdaptationSet(el *etree.Element) (AdaptationSet, error) {
	contentType := el.SelectAttrValue("contentType", "")
	if contentType == "" {
		return AdaptationSet{}, &SchemaError{Element: "AdaptationSet", Attr: "contentType"}
	}

	as := AdaptationSet{
		ID:                  el.SelectAttrValue("id", ""),
		ContentType:         ContentType(contentType),
		SubsegmentAlignment: el.SelectAttrValue("subsegmentAlignment", "false") == "true",
		MaxWidth:            atoiOr0(el.SelectAttrValue("maxWidth", "")),
		MaxHeight:           atoiOr0(el.SelectAttrValue("maxHeight", "")),
		FrameRate:           el.SelectAttrValue("frameRate", ""),
		PAR:                 el.SelectAttrValue("par", ""),
		Lang:                el.SelectAttrValue("lang", ""),
	}

	for _, repEl := range el.SelectElements("Representation") {
		rep, err := parseRepresentation(repEl)
		if err != nil {
			return AdaptationSet{}, err
		}
		as.Representations = append(as.Representations, rep)
	}
	return as, nil
}

func parseRepresentation(el *etree.Element) (Representation, error) {
	id := el.SelectAttrValue("id", "")
	if id == "" {
		return Representation{}, &SchemaError{Element: "Representation", Attr: "id"}
	}
	bwStr := el.SelectAttrValue("bandwidth", "")
	if bwStr == "" {
		return Representation{}, &SchemaError{Element: "Representation", Attr: "bandwidth"}
	}
	bandwidth, err := strconv.ParseUint(bwStr, 10, 64)
	if err != nil {
		return Representation{}, &ParseError{Reason: "invalid bandwidth on Representation " + id, Err: err}
	}
	mimeType := el.SelectAttrValue("mimeType", "")
	if mimeType == "" {
		return Representation{}, &SchemaError{Element: "Representation", Attr: "mimeType"}
	}

	rep := Representation{
		ID:                id,
		Bandwidth:         bandwidth,
		MimeType:          mimeType,
		Codecs:            el.SelectAttrValue("codecs", ""),
		Width:             atoiOr0(el.SelectAttrValue("width", "")),
		Height:            atoiOr0(el.SelectAttrValue("height", "")),
		FrameRate:         el.SelectAttrValue("frameRate", ""),
		SAR:               el.SelectAttrValue("sar", ""),
		AudioSamplingRate: atoiOr0(el.SelectAttrValue("audioSamplingRate", "")),
	}

	baseURLEl := el.SelectElement("BaseURL")
	if baseURLEl == nil {
		return Representation{}, &SchemaError{Element: "Representation/BaseURL"}
	}
	rep.BaseURL = baseURLEl.Text()

	if sbEl := el.SelectElement("SegmentBase"); sbEl != nil {
		indexRange := sbEl.SelectAttrValue("indexRange", "")
		if indexRange == "" {
			return Representation{}, &SchemaError{Element: "SegmentBase", Attr: "indexRange"}
		}
		initEl := sbEl.SelectElement("Initialization")
		if initEl == nil {
			return Representation{}, &SchemaError{Element: "SegmentBase/Initialization"}
		}
		initRange := initEl.SelectAttrValue("range", "")
		if initRange == "" {
			return Representation{}, &SchemaError{Element: "Initialization", Attr: "range"}
		}
		rep.SegmentBase = &SegmentBase{IndexRange: indexRange, InitRange: initRange}
	}

	return rep, nil
}

func atoiOr0(s string) int {
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}
