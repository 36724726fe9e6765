// Copyright 2025, Vidgate authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/vidgate/vidgate/pkg/logging"
	"github.com/vidgate/vidgate/pkg/manifest"
)

const (
	hlsPlaylistName = "video.m3u8"
	dashMPDName     = "manifest.mpd"
	initSegmentName = "init.mp4"
)

// manifestHandlerFunc authenticates a session token, selects HLS or DASH,
// and returns the rewritten manifest. With segment= it serves a DASH
// segment under the same token gate.
func (s *Server) manifestHandlerFunc(w http.ResponseWriter, r *http.Request) {
	log := logging.SubLoggerWithRequestID(slog.Default(), r)
	q := r.URL.Query()

	tok := q.Get("token")
	if tok == "" {
		s.errorResponse(w, "Token required", http.StatusBadRequest)
		return
	}
	videoID, err := s.tokens.Open(tok)
	if err != nil {
		s.errorResponse(w, "Invalid or expired token", http.StatusForbidden)
		return
	}
	status, err := s.store.VideoStatus(r.Context(), videoID)
	if err != nil || status != VideoStatusReady {
		s.errorResponse(w, "Video not found", http.StatusNotFound)
		return
	}
	videoDir := filepath.Join(s.Cfg.VideoRoot, videoID)

	if seg := q.Get("segment"); seg != "" {
		s.serveDASHSegment(w, r, videoDir, seg)
		return
	}

	hasHLS := fileExists(filepath.Join(videoDir, hlsPlaylistName))
	hasDASH := fileExists(filepath.Join(videoDir, dashMPDName))
	format, ok := manifest.SelectFormat(q.Get("format"), hasHLS, hasDASH)
	if !ok {
		s.errorResponse(w, "Video not found", http.StatusNotFound)
		return
	}

	setNoCache(w)
	switch format {
	case manifest.FormatDASH:
		s.serveDASHManifest(w, r, log, videoDir, tok)
	case manifest.FormatHLS:
		s.serveHLSManifest(w, r, log, videoDir, videoID, tok, q.Get("media") == "1")
	}
}

func (s *Server) serveDASHManifest(w http.ResponseWriter, r *http.Request, log *slog.Logger,
	videoDir, tok string) {
	data, err := os.ReadFile(filepath.Join(videoDir, dashMPDName))
	if err != nil {
		s.errorResponse(w, "Video not found", http.StatusNotFound)
		return
	}
	segmentBase := s.baseURL(r) + "/manifest?token=" + url.QueryEscape(tok) + "&format=dash&segment="
	out, err := manifest.RewriteDASH(data, segmentBase)
	if err != nil {
		log.Error("dash rewrite", "err", err)
		s.errorResponse(w, "Manifest error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/dash+xml")
	_, _ = w.Write(out)
}

func (s *Server) serveHLSManifest(w http.ResponseWriter, r *http.Request, log *slog.Logger,
	videoDir, videoID, tok string, mediaOnly bool) {
	initPath := filepath.Join(videoDir, initSegmentName)
	hasInit := fileExists(initPath)

	w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
	if mediaOnly || !hasInit {
		// Media playlist with per-segment capabilities. Legacy TS sources
		// have no init segment and get no synthetic master.
		data, err := os.ReadFile(filepath.Join(videoDir, hlsPlaylistName))
		if err != nil {
			s.errorResponse(w, "Video not found", http.StatusNotFound)
			return
		}
		rewritten := manifest.RewriteHLS(data, manifest.HLSRewrite{
			VideoID:     videoID,
			SegmentBase: s.baseURL(r) + "/segment",
			Signer:      s.signer,
			TTL:         time.Duration(s.Cfg.SegmentTTLS) * time.Second,
		})
		_, _ = w.Write(rewritten)
		return
	}

	codecs := s.prober.CodecsAttr(r.Context(), initPath)
	if codecs == "" {
		log.Debug("codec detection failed, omitting CODECS", "init", initPath)
	}
	mediaURL := s.baseURL(r) + "/manifest?token=" + url.QueryEscape(tok) + "&media=1"
	_, _ = io.WriteString(w, manifest.MasterPlaylist(mediaURL, codecs))
}

// serveDASHSegment serves one DASH segment or init file under the session
// token gate. Only the base name of the requested segment is ever used.
func (s *Server) serveDASHSegment(w http.ResponseWriter, r *http.Request, videoDir, seg string) {
	name := path.Base(seg)
	if name == "." || name == ".." || name == "/" {
		s.errorResponse(w, "Segment not found", http.StatusNotFound)
		return
	}
	full := filepath.Join(videoDir, name)
	fi, err := os.Stat(full)
	if err != nil || fi.IsDir() {
		s.errorResponse(w, "Segment not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", dashContentType(name))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeFile(w, r, full)
}

// dashContentType follows the platform's extension conventions for the
// DASH delivery path.
func dashContentType(name string) string {
	switch {
	case strings.HasSuffix(name, ".mpd"):
		return "application/dash+xml"
	case strings.HasSuffix(name, ".m4s") && strings.HasPrefix(name, "init-"):
		return "video/mp4"
	case strings.HasSuffix(name, ".m4s"):
		return "video/iso.segment"
	case strings.HasSuffix(name, ".mp4"):
		return "video/mp4"
	case strings.HasSuffix(name, ".ts"):
		return "video/mp2t"
	default:
		return "application/octet-stream"
	}
}

// baseURL reconstructs the externally visible base URL for self-referencing
// manifest links. PublicURL wins when configured (reverse proxy setups).
func (s *Server) baseURL(r *http.Request) string {
	if s.Cfg.PublicURL != "" {
		return strings.TrimSuffix(s.Cfg.PublicURL, "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fp := r.Header.Get("X-Forwarded-Proto"); fp != "" {
		scheme = fp
	}
	return scheme + "://" + r.Host
}

func fileExists(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && !fi.IsDir()
}
