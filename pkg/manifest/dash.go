// Copyright 2025, Vidgate authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package manifest

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Eyevinn/dash-mpd/mpd"
	"github.com/beevik/etree"
)

// RewriteDASH prepends segmentBase to every initialization and media
// attribute of the manifest. SegmentTemplate placeholders such as
// $RepresentationID$ and $Number%05d$ are kept untouched so the player can
// still expand them; the XML writer escapes the ampersands that the base
// URL query string introduces.
//
// DASH segment URLs are not individually capability-signed. They are served
// through the manifest endpoint under the session token.
func RewriteDASH(manifest []byte, segmentBase string) ([]byte, error) {
	if _, err := mpd.ReadFromString(string(manifest)); err != nil {
		return nil, fmt.Errorf("parse mpd: %w", err)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(manifest); err != nil {
		return nil, fmt.Errorf("read xml: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty xml document")
	}
	rewriteSegmentAttrs(root, segmentBase)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("write xml: %w", err)
	}
	return out, nil
}

func rewriteSegmentAttrs(el *etree.Element, segmentBase string) {
	for i, a := range el.Attr {
		if a.Key == "initialization" || a.Key == "media" {
			el.Attr[i].Value = segmentBase + escapeSegmentRef(a.Value)
		}
	}
	for _, child := range el.ChildElements() {
		rewriteSegmentAttrs(child, segmentBase)
	}
}

// escapeSegmentRef percent-encodes a segment reference for use as a query
// value, except for '$' and '%' which must stay literal so that
// SegmentTemplate placeholders survive the rewrite.
func escapeSegmentRef(ref string) string {
	esc := url.QueryEscape(ref)
	esc = strings.ReplaceAll(esc, "%24", "$")
	esc = strings.ReplaceAll(esc, "%25", "%")
	return esc
}
