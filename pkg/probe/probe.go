// Copyright 2025, Vidgate authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package probe detects the codecs of an encoded video from its fMP4 init
// segment and maps them to RFC 6381 codec strings for the synthetic master
// playlist. Detection is best effort: every failure mode means "codec
// unknown", never a request error.
package probe

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Eyevinn/mp4ff/bits"
	"github.com/Eyevinn/mp4ff/mp4"
)

// DefaultTimeout bounds one probe. A manifest response must never block
// on codec detection.
const DefaultTimeout = 2 * time.Second

// Info holds detected codec family names, e.g. "av1" and "aac".
// Empty fields mean no track of that kind was found.
type Info struct {
	Video string
	Audio string
}

type Prober struct {
	timeout time.Duration
}

func NewProber(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Prober{timeout: timeout}
}

// Probe reads the init segment at initPath and returns the detected codec
// families. The probe runs under a timeout derived from ctx.
func (p *Prober) Probe(ctx context.Context, initPath string) (Info, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	type result struct {
		info Info
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		info, err := probeInitSegment(initPath)
		ch <- result{info: info, err: err}
	}()
	select {
	case <-ctx.Done():
		return Info{}, ctx.Err()
	case r := <-ch:
		return r.info, r.err
	}
}

// CodecsAttr probes initPath and returns an RFC 6381 CODECS value for the
// master playlist. An empty string means detection failed and the attribute
// should be omitted.
func (p *Prober) CodecsAttr(ctx context.Context, initPath string) string {
	info, err := p.Probe(ctx, initPath)
	if err != nil {
		return ""
	}
	var parts []string
	if info.Video != "" {
		parts = append(parts, VideoCodecString(info.Video))
	}
	if info.Audio != "" {
		parts = append(parts, AudioCodecString(info.Audio))
	}
	return strings.Join(parts, ",")
}

func probeInitSegment(initPath string) (Info, error) {
	var info Info
	data, err := os.ReadFile(initPath)
	if err != nil {
		return info, fmt.Errorf("read init segment: %w", err)
	}
	sr := bits.NewFixedSliceReader(data)
	f, err := mp4.DecodeFileSR(sr)
	if err != nil {
		return info, fmt.Errorf("decode init segment: %w", err)
	}
	if f.Init == nil || f.Init.Moov == nil {
		return info, fmt.Errorf("no init segment found")
	}
	for _, trak := range f.Init.Moov.Traks {
		if trak.Mdia == nil || trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil ||
			trak.Mdia.Minf.Stbl.Stsd == nil {
			continue
		}
		for _, c := range trak.Mdia.Minf.Stbl.Stsd.Children {
			switch box := c.(type) {
			case *mp4.VisualSampleEntryBox:
				info.Video = videoFamily(box.Type())
			case *mp4.AudioSampleEntryBox:
				info.Audio = audioFamily(box.Type())
			}
		}
	}
	if info.Video == "" && info.Audio == "" {
		return info, fmt.Errorf("no codec entries in init segment")
	}
	return info, nil
}

func videoFamily(boxType string) string {
	switch boxType {
	case "av01":
		return "av1"
	case "hvc1", "hev1":
		return "hevc"
	case "avc1", "avc3":
		return "h264"
	default:
		return boxType
	}
}

func audioFamily(boxType string) string {
	switch boxType {
	case "mp4a":
		return "aac"
	case "Opus", "opus":
		return "opus"
	case ".mp3":
		return "mp3"
	default:
		return boxType
	}
}
