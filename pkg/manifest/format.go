// Copyright 2025, Vidgate authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package manifest rewrites stored HLS and DASH manifests into proxy-routed,
// capability-signed variants, and selects which format to serve.
package manifest

// Format is a streaming manifest format.
type Format int

const (
	FormatHLS Format = iota + 1
	FormatDASH
)

func (f Format) String() string {
	switch f {
	case FormatHLS:
		return "hls"
	case FormatDASH:
		return "dash"
	default:
		return "unknown"
	}
}

// SelectFormat decides which format to serve. Explicit client intent wins,
// but only when the requested manifest exists on disk. Otherwise the system
// degrades to whatever is available, preferring HLS as the universally
// compatible default. ok is false when no manifest exists at all.
func SelectFormat(requested string, hasHLS, hasDASH bool) (Format, bool) {
	switch requested {
	case "dash":
		if hasDASH {
			return FormatDASH, true
		}
	case "hls":
		if hasHLS {
			return FormatHLS, true
		}
	}
	if !hasHLS && hasDASH {
		return FormatDASH, true
	}
	if hasHLS {
		return FormatHLS, true
	}
	return 0, false
}
