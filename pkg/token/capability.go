// Copyright 2025, Vidgate authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// DefaultCapabilityTTL applies to generic signed resources. Manifest
// rewriting overrides it with the configured segment TTL (4h by default).
const DefaultCapabilityTTL = 5 * time.Minute

// signatureHexLen truncates the HMAC to 64 bits for URL economy. Accepted
// tradeoff given the short validity window.
const signatureHexLen = 16

// Capability grants a fetch of one segment path until Expires.
type Capability struct {
	Expires   int64
	Signature string
}

// Signer mints and verifies Segment Capabilities. Safe for concurrent use.
type Signer struct {
	secret []byte
	now    func() time.Time
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret), now: time.Now}
}

func (s *Signer) compute(videoID, path string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(videoID + "|" + path + "|" + strconv.FormatInt(expires, 10)))
	return hex.EncodeToString(mac.Sum(nil))[:signatureHexLen]
}

// Sign mints a capability for path under videoID, valid for ttl.
// If ttl is zero, DefaultCapabilityTTL is used.
func (s *Signer) Sign(videoID, path string, ttl time.Duration) Capability {
	if ttl == 0 {
		ttl = DefaultCapabilityTTL
	}
	expires := s.now().Add(ttl).Unix()
	return Capability{
		Expires:   expires,
		Signature: s.compute(videoID, path, expires),
	}
}

// Verify checks a capability against the exact path string the manifest
// advertised. The comparison is constant time.
func (s *Signer) Verify(videoID, path string, expires int64, signature string) bool {
	if expires < s.now().Unix() {
		return false
	}
	expected := s.compute(videoID, path, expires)
	return hmac.Equal([]byte(expected), []byte(signature))
}
