// Copyright 2025, Vidgate authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package app

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vidgate/vidgate/pkg/logging"
)

// streamChunkSize is the write granularity when streaming segment bytes.
// Client disconnect is checked between chunks.
const streamChunkSize = 64 * 1024

// segmentHandlerFunc authenticates and serves one capability-signed HLS
// segment. The checks run in a fixed order and every rejection terminates
// the request before any segment bytes are written.
func (s *Server) segmentHandlerFunc(w http.ResponseWriter, r *http.Request) {
	log := logging.SubLoggerWithRequestID(slog.Default(), r)

	// A top-level navigation means someone pasted the URL into an address
	// bar or pointed a generic player at it. Only sub-resource fetches
	// from the web player are served.
	if isDirectNavigation(r) {
		s.errorResponse(w, "Forbidden", http.StatusForbidden)
		return
	}
	if !refererAllowed(r.Referer(), s.Cfg.DomainList()) {
		s.errorResponse(w, "Forbidden", http.StatusForbidden)
		return
	}
	setCORSOrigin(w, r, s.Cfg.OriginList())

	q := r.URL.Query()
	videoID := q.Get("v")
	filename := q.Get("f")
	expiresStr := q.Get("e")
	signature := q.Get("s")
	if videoID == "" || filename == "" || expiresStr == "" || signature == "" {
		s.errorResponse(w, "Missing parameters", http.StatusBadRequest)
		return
	}

	expires, err := strconv.ParseInt(expiresStr, 10, 64)
	if err != nil || !s.signer.Verify(videoID, filename, expires, signature) {
		s.errorResponse(w, "Invalid or expired signature", http.StatusForbidden)
		return
	}

	// Sanitize only after verification. The signature covers the exact
	// string the manifest advertised, sanitized or not.
	name := path.Base(filename)
	if name == "." || name == ".." || name == "/" {
		s.errorResponse(w, "Segment not found", http.StatusNotFound)
		return
	}
	full := filepath.Join(s.Cfg.VideoRoot, videoID, name)
	fi, err := os.Stat(full)
	if err != nil || fi.IsDir() {
		s.errorResponse(w, "Segment not found", http.StatusNotFound)
		return
	}

	s.streamFile(w, r, log, full, fi.Size(), segmentContentType(name))
}

func isDirectNavigation(r *http.Request) bool {
	return r.Header.Get("Sec-Fetch-Mode") == "navigate" ||
		r.Header.Get("Sec-Fetch-Dest") == "document"
}

// refererAllowed matches the referer host against the allow-list using
// exact equality or a dot-boundary suffix, never substring containment.
// An empty allow-list disables the check (single-host deployments).
func refererAllowed(referer string, domains []string) bool {
	if len(domains) == 0 {
		return true
	}
	if referer == "" {
		return false
	}
	u, err := url.Parse(referer)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func segmentContentType(name string) string {
	switch {
	case strings.HasSuffix(name, ".m4s"), strings.HasSuffix(name, ".mp4"):
		return "video/mp4"
	default:
		return "video/mp2t"
	}
}

// streamFile serves the requested byte window in fixed-size chunks,
// checking for client disconnect between writes.
func (s *Server) streamFile(w http.ResponseWriter, r *http.Request, log *slog.Logger,
	filePath string, size int64, ctype string) {
	start, end, isRange, ok := parseRange(r.Header.Get("Range"), size)
	if !ok {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		s.errorResponse(w, "Range not satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return
	}

	f, err := os.Open(filePath)
	if err != nil {
		s.errorResponse(w, "Segment not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	length := end - start + 1
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
	if isRange {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, size))
		w.WriteHeader(http.StatusPartialContent)
	}

	if start > 0 {
		if _, err := f.Seek(start, io.SeekStart); err != nil {
			log.Error("seek segment", "err", err)
			return
		}
	}

	ctx := r.Context()
	buf := make([]byte, streamChunkSize)
	remaining := length
	for remaining > 0 {
		select {
		case <-ctx.Done():
			// Client went away. Stop streaming, no error.
			return
		default:
		}
		n := int64(len(buf))
		if remaining < n {
			n = remaining
		}
		read, err := f.Read(buf[:n])
		if read > 0 {
			if _, werr := w.Write(buf[:read]); werr != nil {
				return
			}
			remaining -= int64(read)
		}
		if err != nil {
			if err != io.EOF {
				log.Error("read segment", "err", err)
			}
			return
		}
	}
}

// parseRange parses a single "bytes=start-end" range header against the
// file size. An absent or malformed header means the full file. ok is
// false only for a well-formed but unsatisfiable range.
func parseRange(header string, size int64) (start, end int64, isRange, ok bool) {
	start, end, ok = 0, size-1, true
	if header == "" || !strings.HasPrefix(header, "bytes=") {
		return
	}
	spec := strings.TrimPrefix(header, "bytes=")
	if strings.Contains(spec, ",") {
		// Multi-range is not worth supporting for segment files.
		return
	}
	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return
	}
	if parts[0] == "" {
		// Suffix form: last N bytes.
		n, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || n <= 0 {
			return
		}
		if n > size {
			n = size
		}
		return size - n, size - 1, true, true
	}
	first, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || first < 0 {
		return
	}
	last := size - 1
	if parts[1] != "" {
		last, err = strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return
		}
	}
	if first >= size || first > last {
		return first, last, true, false
	}
	if last >= size {
		last = size - 1
	}
	return first, last, true, true
}
