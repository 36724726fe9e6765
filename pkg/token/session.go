// Copyright 2025, Vidgate authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package token implements the two credential formats of the streaming proxy:
// encrypted Session Tokens that grant access to one video for a limited time,
// and HMAC-signed Segment Capabilities that grant access to one segment path.
package token

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DefaultSessionTTL is the validity window of a Session Token unless the
// caller asks for something else.
const DefaultSessionTTL = 4 * time.Hour

const (
	gcmIVSize  = 12
	gcmTagSize = 16
	// minimum sealed size is IV plus tag. Anything shorter cannot be valid.
	minSealedSize = gcmIVSize + gcmTagSize
)

// ErrInvalidToken is returned for any token that fails decoding,
// authentication, parsing, or expiry. Callers get no further detail so that
// a client cannot distinguish a tampered token from an expired one.
var ErrInvalidToken = errors.New("invalid or expired token")

type sessionPayload struct {
	ID    string `json:"id"`
	Exp   int64  `json:"exp"`
	Nonce string `json:"nonce"`
}

// Codec seals and opens Session Tokens. It is stateless apart from the key
// and safe for concurrent use.
type Codec struct {
	aead cipher.AEAD
	now  func() time.Time
}

// NewCodec derives a 256-bit AES-GCM key from secret. The secret is the
// process-wide streaming secret, not a per-user value.
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("empty token secret")
	}
	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	return &Codec{aead: aead, now: time.Now}, nil
}

// Seal mints a token granting access to videoID until now+ttl.
// The output layout is iv || tag || ciphertext, URL-safe unpadded base64.
func (c *Codec) Seal(videoID string, ttl time.Duration) (string, error) {
	nonce := make([]byte, 8)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}
	payload := sessionPayload{
		ID:    videoID,
		Exp:   c.now().Add(ttl).Unix(),
		Nonce: hex.EncodeToString(nonce),
	}
	plain, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	iv := make([]byte, gcmIVSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("read iv: %w", err)
	}
	sealed := c.aead.Seal(nil, iv, plain, nil) // ciphertext || tag
	ct := sealed[:len(sealed)-gcmTagSize]
	tag := sealed[len(sealed)-gcmTagSize:]

	out := make([]byte, 0, gcmIVSize+gcmTagSize+len(ct))
	out = append(out, iv...)
	out = append(out, tag...)
	out = append(out, ct...)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

// Open authenticates and decrypts a token and returns the video ID it grants
// access to. Every failure mode returns ErrInvalidToken.
func (c *Codec) Open(tok string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil {
		return "", ErrInvalidToken
	}
	if len(raw) < minSealedSize {
		return "", ErrInvalidToken
	}
	iv := raw[:gcmIVSize]
	tag := raw[gcmIVSize : gcmIVSize+gcmTagSize]
	ct := raw[gcmIVSize+gcmTagSize:]

	sealed := make([]byte, 0, len(ct)+gcmTagSize)
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)
	plain, err := c.aead.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", ErrInvalidToken
	}
	var payload sessionPayload
	if err := json.Unmarshal(plain, &payload); err != nil {
		return "", ErrInvalidToken
	}
	if payload.ID == "" || payload.Exp == 0 {
		return "", ErrInvalidToken
	}
	if payload.Exp <= c.now().Unix() {
		return "", ErrInvalidToken
	}
	return payload.ID, nil
}
