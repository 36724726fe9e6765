// Copyright 2025, Vidgate authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package probe

import "strings"

// Fixed codec-family to RFC 6381 mappings. The encoder produces a known
// set of outputs, so single representative strings are enough. Unknown
// families fall back to the H.264/AAC strings rather than failing.
const (
	fallbackVideoCodec = "avc1.64001f"
	fallbackAudioCodec = "mp4a.40.2"
)

var videoCodecStrings = map[string]string{
	"av1":  "av01.0.31M.08",
	"hevc": "hvc1.1.6.L120.90",
	"h265": "hvc1.1.6.L120.90",
	"h264": "avc1.64001f",
	"avc":  "avc1.64001f",
}

var audioCodecStrings = map[string]string{
	"aac":  "mp4a.40.2",
	"opus": "opus",
	"mp3":  "mp4a.40.34",
}

// VideoCodecString maps a detected video codec family to an RFC 6381 string.
func VideoCodecString(family string) string {
	if s, ok := videoCodecStrings[strings.ToLower(family)]; ok {
		return s
	}
	return fallbackVideoCodec
}

// AudioCodecString maps a detected audio codec family to an RFC 6381 string.
func AudioCodecString(family string) string {
	if s, ok := audioCodecStrings[strings.ToLower(family)]; ok {
		return s
	}
	return fallbackAudioCodec
}
