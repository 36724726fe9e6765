package manifest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectFormat(t *testing.T) {
	cases := []struct {
		desc      string
		requested string
		hasHLS    bool
		hasDASH   bool
		want      Format
		wantOK    bool
	}{
		{desc: "explicit dash", requested: "dash", hasHLS: true, hasDASH: true, want: FormatDASH, wantOK: true},
		{desc: "explicit dash without mpd", requested: "dash", hasHLS: true, hasDASH: false, want: FormatHLS, wantOK: true},
		{desc: "explicit hls", requested: "hls", hasHLS: true, hasDASH: true, want: FormatHLS, wantOK: true},
		{desc: "explicit hls without playlist", requested: "hls", hasHLS: false, hasDASH: true, want: FormatDASH, wantOK: true},
		{desc: "auto dash-only", requested: "", hasHLS: false, hasDASH: true, want: FormatDASH, wantOK: true},
		{desc: "auto hls default", requested: "", hasHLS: true, hasDASH: true, want: FormatHLS, wantOK: true},
		{desc: "auto hls only", requested: "", hasHLS: true, hasDASH: false, want: FormatHLS, wantOK: true},
		{desc: "nothing on disk", requested: "", hasHLS: false, hasDASH: false, wantOK: false},
		{desc: "unknown format value", requested: "smooth", hasHLS: true, hasDASH: true, want: FormatHLS, wantOK: true},
	}
	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			got, ok := SelectFormat(c.requested, c.hasHLS, c.hasDASH)
			require.Equal(t, c.wantOK, ok)
			if ok {
				require.Equal(t, c.want, got)
			}
		})
	}
}
