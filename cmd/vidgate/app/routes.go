// Copyright 2025, Vidgate authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package app

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/vidgate/vidgate/pkg/logging"
)

// Routes defines dispatches for all routes.
func (s *Server) Routes(ctx context.Context) error {
	for _, route := range logging.LogRoutes {
		s.Router.MethodFunc(route.Method, route.Path, route.Handler)
	}
	s.Router.Mount("/debug", middleware.Profiler())
	s.Router.MethodFunc("GET", "/healthz", s.healthzHandlerFunc)
	s.Router.MethodFunc("OPTIONS", "/*", s.optionsHandlerFunc)
	s.Router.Route("/api", createRouteAPI(s))

	// Streaming routes, optionally rate limited per IP.
	s.Router.Group(func(r chi.Router) {
		if s.Cfg.MaxRequests > 0 {
			interval := time.Duration(s.Cfg.ReqLimitIntS) * time.Second
			r.Use(httprate.LimitByIP(s.Cfg.MaxRequests, interval))
		}
		r.MethodFunc("GET", "/manifest", s.manifestHandlerFunc)
		r.MethodFunc("GET", "/segment", s.segmentHandlerFunc)
		r.MethodFunc("GET", "/subtitle", s.subtitleHandlerFunc)
	})

	return nil
}
