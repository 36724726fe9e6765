package manifest

import (
	"strings"
	"testing"

	"github.com/Eyevinn/dash-mpd/mpd"
	"github.com/beevik/etree"
	"github.com/stretchr/testify/require"
)

const testMPD = `<?xml version="1.0" encoding="UTF-8"?>
<MPD xmlns="urn:mpeg:dash:schema:mpd:2011" type="static" minBufferTime="PT2S"
  profiles="urn:mpeg:dash:profile:isoff-live:2011" mediaPresentationDuration="PT8S">
  <Period id="0">
    <AdaptationSet contentType="video" mimeType="video/mp4" segmentAlignment="true">
      <SegmentTemplate timescale="90000" duration="360000" startNumber="1"
        initialization="init-$RepresentationID$.m4s"
        media="chunk-$RepresentationID$-$Number%05d$.m4s"/>
      <Representation id="0" codecs="av01.0.31M.08" bandwidth="2000000" width="1920" height="1080"/>
    </AdaptationSet>
  </Period>
</MPD>
`

const testSegmentBase = "https://vid.example.com/manifest?token=tok123&format=dash&segment="

func TestRewriteDASH(t *testing.T) {
	out, err := RewriteDASH([]byte(testMPD), testSegmentBase)
	require.NoError(t, err)
	s := string(out)

	// Attribute values are proxied, placeholders survive, ampersands are
	// escaped so the document stays well-formed XML.
	require.Contains(t, s, `initialization="https://vid.example.com/manifest?token=tok123&amp;format=dash&amp;segment=init-$RepresentationID$.m4s"`)
	require.Contains(t, s, "segment=chunk-$RepresentationID$-$Number%05d$.m4s")

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	st := doc.FindElement("//SegmentTemplate")
	require.NotNil(t, st)
	require.True(t, strings.HasPrefix(st.SelectAttrValue("media", ""), "https://vid.example.com/manifest?token=tok123&format=dash&segment="))

	// The rewritten manifest must still be readable as an MPD.
	_, err = mpd.ReadFromString(s)
	require.NoError(t, err)
}

func TestRewriteDASHBadXML(t *testing.T) {
	_, err := RewriteDASH([]byte("this is not xml"), testSegmentBase)
	require.Error(t, err)
}

func TestEscapeSegmentRef(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "init.mp4", want: "init.mp4"},
		{in: "chunk-$Number%05d$.m4s", want: "chunk-$Number%05d$.m4s"},
		{in: "a&b.m4s", want: "a%26b.m4s"},
		{in: "dir/seg.m4s", want: "dir%2Fseg.m4s"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, escapeSegmentRef(c.in), c.in)
	}
}
