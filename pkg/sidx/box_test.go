package sidx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleBox() *Box {
	return &Box{
		Size:                     52,
		Version:                  0,
		Flags:                    0,
		ReferenceID:              1,
		Timescale:                90000,
		EarliestPresentationTime: 0,
		FirstOffset:              0,
		Reserved:                 0,
		Entries: []Entry{
			{ReferenceType: 0, ReferenceSize: 1000, SubsegmentDuration: 90000, StartsWithSAP: 1, SAPType: 1, SAPDelta: 0},
			{ReferenceType: 0, ReferenceSize: 2000, SubsegmentDuration: 90000, StartsWithSAP: 1, SAPType: 1, SAPDelta: 0},
		},
	}
}

func TestSidxRoundTrip(t *testing.T) {
	original := sampleBox()
	encoded := original.Encode()
	decoded, err := Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, original, decoded)

	reEncoded := decoded.Encode()
	reDecoded, err := Decode(reEncoded)
	require.NoError(t, err)
	require.Equal(t, decoded, reDecoded)
}

func TestDecodeNotAnSidx(t *testing.T) {
	data := make([]byte, 32)
	copy(data[4:8], []byte("moov"))
	_, err := Decode(data)
	require.Error(t, err)
	var notSidx *NotAnSidx
	require.ErrorAs(t, err, &notSidx)
}

func TestDecodeTruncated(t *testing.T) {
	original := sampleBox()
	encoded := original.Encode()
	_, err := Decode(encoded[:len(encoded)-4])
	require.Error(t, err)
	var trunc *TruncatedSidx
	require.ErrorAs(t, err, &trunc)
}

func TestGenerateSegments(t *testing.T) {
	box := sampleBox()
	box.FirstOffset = 0
	segs := GenerateSegments(box, 931)
	require.Len(t, segs, 2)
	require.Equal(t, ByteRange{Start: 932, End: 1931}, segs[0])
	require.Equal(t, ByteRange{Start: 1932, End: 3931}, segs[1])
	// contiguity invariant (spec.md §8 property 1)
	require.Equal(t, segs[0].End+1, segs[1].Start)
}

func TestParseByteRange(t *testing.T) {
	r, err := ParseByteRange("880-931")
	require.NoError(t, err)
	require.Equal(t, ByteRange{Start: 880, End: 931}, r)

	_, err = ParseByteRange("not-a-range")
	require.Error(t, err)
	var rse *RangeSyntaxError
	require.ErrorAs(t, err, &rse)
}
