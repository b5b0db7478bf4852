package manifest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleMPD = `<?xml version="1.0" encoding="UTF-8"?>
<MPD xmlns="urn:mpeg:dash:schema:mpd:2011" mediaPresentationDuration="PT1M30.5S">
  <Period>
    <AdaptationSet id="0" contentType="video" maxWidth="1920" maxHeight="1080" frameRate="25" par="16:9" subsegmentAlignment="true">
      <Representation id="v0" bandwidth="2000000" mimeType="video/mp4" codecs="hvc1.1.6.L93.90" width="1920" height="1080" frameRate="25" sar="1:1">
        <BaseURL>video.mp4</BaseURL>
        <SegmentBase indexRange="880-931">
          <Initialization range="0-879"/>
        </SegmentBase>
      </Representation>
    </AdaptationSet>
    <AdaptationSet id="1" contentType="audio" lang="en">
      <Representation id="a0" bandwidth="128000" mimeType="audio/mp4" codecs="mp4a.40.2" audioSamplingRate="48000">
        <BaseURL>audio.mp4</BaseURL>
        <SegmentBase indexRange="700-751">
          <Initialization range="0-699"/>
        </SegmentBase>
      </Representation>
    </AdaptationSet>
  </Period>
</MPD>`

func TestParseSampleMPD(t *testing.T) {
	pres, err := Parse([]byte(sampleMPD))
	require.NoError(t, err)
	require.Equal(t, int64(90500), pres.DurationMS)
	require.Len(t, pres.Periods, 1)
	sets := pres.Periods[0].AdaptationSets
	require.Len(t, sets, 2)

	video := sets[0]
	require.Equal(t, ContentVideo, video.ContentType)
	require.Len(t, video.Representations, 1)
	vrep := video.Representations[0]
	require.Equal(t, "hvc1.1.6.L93.90", vrep.Codecs)
	require.NotNil(t, vrep.SegmentBase)
	require.Equal(t, "880-931", vrep.SegmentBase.IndexRange)
	require.Equal(t, "0-879", vrep.SegmentBase.InitRange)

	audio := sets[1]
	require.Equal(t, ContentAudio, audio.ContentType)
	require.Equal(t, "mp4a.40.2", audio.Representations[0].Codecs)
}

func TestParseMissingMandatoryDuration(t *testing.T) {
	const bad = `<MPD><Period></Period></MPD>`
	_, err := Parse([]byte(bad))
	require.Error(t, err)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
}

func TestParseMalformedXML(t *testing.T) {
	_, err := Parse([]byte("not xml at all <<<"))
	require.Error(t, err)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}
