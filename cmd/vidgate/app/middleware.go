package app

import (
	"net/http"
	"strings"

	"github.com/vidgate/vidgate/internal"
)

// addVersionAndExposeHeaders tags responses with the server version and
// always exposes the length/range headers so range-aware players can read
// them on cross-origin responses.
func addVersionAndExposeHeaders(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vidgate-Version", internal.GetVersion())
		w.Header().Add("Access-Control-Expose-Headers", "Content-Length, Content-Range")
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}

// setCORSOrigin echoes the Origin header back when it matches the exact
// allow-list (case-insensitive), plus Vary so caches keep responses apart.
// Unknown origins get no CORS headers at all.
func setCORSOrigin(w http.ResponseWriter, r *http.Request, allowed []string) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}
	lower := strings.ToLower(origin)
	for _, a := range allowed {
		if lower == a {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			return
		}
	}
}

func (s *Server) optionsHandlerFunc(w http.ResponseWriter, r *http.Request) {
	setCORSOrigin(w, r, s.Cfg.OriginList())
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Range, Origin, Accept")
	w.WriteHeader(http.StatusNoContent)
}

// setNoCache disables caching of manifests since their signed sub-URLs are
// time-limited and must not outlive their embedded expiry.
func setNoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
}
