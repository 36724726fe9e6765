package probe

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestVideoCodecString(t *testing.T) {
	cases := []struct {
		family string
		want   string
	}{
		{family: "av1", want: "av01.0.31M.08"},
		{family: "hevc", want: "hvc1.1.6.L120.90"},
		{family: "h265", want: "hvc1.1.6.L120.90"},
		{family: "h264", want: "avc1.64001f"},
		{family: "vp9", want: "avc1.64001f"}, // unknown falls back
		{family: "AV1", want: "av01.0.31M.08"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, VideoCodecString(c.family), c.family)
	}
}

func TestAudioCodecString(t *testing.T) {
	cases := []struct {
		family string
		want   string
	}{
		{family: "aac", want: "mp4a.40.2"},
		{family: "opus", want: "opus"},
		{family: "mp3", want: "mp4a.40.34"},
		{family: "flac", want: "mp4a.40.2"}, // unknown falls back
	}
	for _, c := range cases {
		require.Equal(t, c.want, AudioCodecString(c.family), c.family)
	}
}

func TestProbeMissingFile(t *testing.T) {
	p := NewProber(time.Second)
	_, err := p.Probe(context.Background(), filepath.Join(t.TempDir(), "absent.mp4"))
	require.Error(t, err)
}

func TestProbeGarbageFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "init.mp4")
	require.NoError(t, os.WriteFile(path, []byte("not an mp4 at all"), 0o644))

	p := NewProber(time.Second)
	_, err := p.Probe(context.Background(), path)
	require.Error(t, err)
}

// CodecsAttr must swallow every probe failure and return an empty string.
func TestCodecsAttrFailureIsEmpty(t *testing.T) {
	p := NewProber(time.Second)
	got := p.CodecsAttr(context.Background(), filepath.Join(t.TempDir(), "absent.mp4"))
	require.Equal(t, "", got)
}

func TestProbeCancelledContext(t *testing.T) {
	p := NewProber(time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Probe(ctx, "irrelevant")
	require.Error(t, err)
}
