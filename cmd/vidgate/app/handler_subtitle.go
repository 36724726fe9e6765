// Copyright 2025, Vidgate authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package app

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
)

const subtitleDirName = "subs"

// subtitleHandlerFunc serves a subtitle track under the session token gate.
// The row lookup is scoped to the token's video, so a valid token for one
// video can never reach another video's subtitles.
func (s *Server) subtitleHandlerFunc(w http.ResponseWriter, r *http.Request) {
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
	idStr := q.Get("id")
	if idStr == "" {
		s.errorResponse(w, "Missing parameters", http.StatusBadRequest)
		return
	}
	subID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		s.errorResponse(w, "Missing parameters", http.StatusBadRequest)
		return
	}

	sub, err := s.store.Subtitle(r.Context(), videoID, subID)
	if err != nil {
		s.errorResponse(w, "Subtitle not found", http.StatusNotFound)
		return
	}

	rel := filepath.Clean(sub.Path)
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		s.errorResponse(w, "Subtitle not found", http.StatusNotFound)
		return
	}
	full := filepath.Join(s.Cfg.VideoRoot, videoID, subtitleDirName, rel)
	if !fileExists(full) {
		s.errorResponse(w, "Subtitle not found", http.StatusNotFound)
		return
	}

	setNoCache(w)
	w.Header().Set("Content-Type", "text/vtt")
	http.ServeFile(w, r, full)
}
