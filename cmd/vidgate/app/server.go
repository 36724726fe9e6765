// Copyright 2025, Vidgate authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vidgate/vidgate/pkg/probe"
	"github.com/vidgate/vidgate/pkg/token"
)

type Server struct {
	Router *chi.Mux
	Cfg    *ServerConfig
	tokens *token.Codec
	signer *token.Signer
	store  VideoStore
	prober *probe.Prober
}

func (s *Server) healthzHandlerFunc(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, true, http.StatusOK)
}

// jsonResponse marshals message and give response with code
//
// Don't add any more content after this since Content-Length is set
func (s *Server) jsonResponse(w http.ResponseWriter, message any, code int) {
	raw, err := json.Marshal(message)
	if err != nil {
		http.Error(w, fmt.Sprintf("{message: \"%s\"}", err), http.StatusInternalServerError)
		slog.Error(err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(raw)))
	w.WriteHeader(code)
	_, err = w.Write(raw)
	if err != nil {
		slog.Error("could not write HTTP response", "err", err)
	}
}

// errorResponse writes the small JSON error body used on all rejection
// paths. The message never carries internal detail.
func (s *Server) errorResponse(w http.ResponseWriter, msg string, code int) {
	s.jsonResponse(w, map[string]string{"error": msg}, code)
}
