// Copyright 2025, Vidgate authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package manifest

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/vidgate/vidgate/pkg/token"
)

// masterBandwidth is the nominal bandwidth advertised in the synthetic
// master playlist. The encoder produces a single rendition per video, so
// there is no ladder to describe.
const masterBandwidth = 2000000

var mapURIRe = regexp.MustCompile(`(URI=")([^"]*)(")`)

// HLSRewrite carries the signing context for one media playlist rewrite.
type HLSRewrite struct {
	VideoID     string
	SegmentBase string // absolute URL of the segment endpoint, no query
	Signer      *token.Signer
	TTL         time.Duration
}

// RewriteHLS replaces the #EXT-X-MAP URI and every segment line of an HLS
// media playlist with capability-signed proxy URLs. All other lines are
// left byte-identical.
func RewriteHLS(playlist []byte, p HLSRewrite) []byte {
	lines := strings.Split(string(playlist), "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "#EXT-X-MAP:"):
			lines[i] = mapURIRe.ReplaceAllStringFunc(line, func(m string) string {
				parts := mapURIRe.FindStringSubmatch(m)
				return parts[1] + p.signedURL(parts[2]) + parts[3]
			})
		case isSegmentLine(trimmed):
			lines[i] = p.signedURL(trimmed)
		}
	}
	return []byte(strings.Join(lines, "\n"))
}

func isSegmentLine(trimmed string) bool {
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return false
	}
	return strings.HasSuffix(trimmed, ".ts") || strings.HasSuffix(trimmed, ".m4s")
}

// signedURL mints a fresh capability over the exact path string from the
// playlist and embeds it in a proxy URL.
func (p HLSRewrite) signedURL(path string) string {
	c := p.Signer.Sign(p.VideoID, path, p.TTL)
	return fmt.Sprintf("%s?v=%s&f=%s&e=%d&s=%s",
		p.SegmentBase, url.QueryEscape(p.VideoID), url.QueryEscape(path),
		c.Expires, c.Signature)
}

// MasterPlaylist generates a synthetic master playlist pointing at mediaURL.
// codecs is an RFC 6381 CODECS value; empty means detection failed and the
// attribute is omitted.
func MasterPlaylist(mediaURL, codecs string) string {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	b.WriteString("#EXT-X-VERSION:6\n")
	if codecs != "" {
		fmt.Fprintf(&b, "#EXT-X-STREAM-INF:BANDWIDTH=%d,CODECS=\"%s\"\n", masterBandwidth, codecs)
	} else {
		fmt.Fprintf(&b, "#EXT-X-STREAM-INF:BANDWIDTH=%d\n", masterBandwidth)
	}
	b.WriteString(mediaURL)
	b.WriteString("\n")
	return b.String()
}
