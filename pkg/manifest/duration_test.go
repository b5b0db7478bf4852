package manifest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseISODurationMS(t *testing.T) {
	cases := []struct {
		in      string
		wantMS  int64
		wantErr bool
	}{
		{"PT1M30.5S", 90500, false},
		{"PT0S", 0, false},
		{"PT1H", 3600000, false},
		{"P1DT1H", 90000000, false},
		{"PT130.251S", 130251, false},
		{"garbage", 0, true},
	}
	for _, c := range cases {
		got, err := ParseISODurationMS(c.in)
		if c.wantErr {
			require.Error(t, err, c.in)
			continue
		}
		require.NoError(t, err, c.in)
		require.Equal(t, c.wantMS, got, c.in)
	}
}
