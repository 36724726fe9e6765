// Copyright 2025, Vidgate authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vidgate/vidgate/internal"
	"github.com/vidgate/vidgate/pkg/logging"
	"github.com/vidgate/vidgate/pkg/probe"
	"github.com/vidgate/vidgate/pkg/token"
)

// SetupServer sets up router, middleware, and server, given configuration.
func SetupServer(ctx context.Context, cfg *ServerConfig) (*Server, error) {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logging.SlogMiddleWare(slog.Default()))
	r.Use(middleware.Recoverer)
	r.Use(addVersionAndExposeHeaders)
	r.Use(NewPrometheusMiddleware())

	// Set a timeout value on the request context (ctx), that will signal
	// through ctx.Done() that the request has timed out and further
	// processing should be stopped.
	if cfg.TimeoutS > 0 {
		r.Use(middleware.Timeout(time.Duration(cfg.TimeoutS) * time.Second))
	}

	r.Mount("/metrics", promhttp.Handler())

	codec, err := token.NewCodec(cfg.Secret)
	if err != nil {
		return nil, fmt.Errorf("token codec: %w", err)
	}
	store, err := NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	server := Server{
		Router: r,
		Cfg:    cfg,
		tokens: codec,
		signer: token.NewSigner(cfg.Secret),
		store:  store,
		prober: probe.NewProber(time.Duration(cfg.ProbeTimeoutS) * time.Second),
	}

	if err := server.Routes(ctx); err != nil {
		return nil, fmt.Errorf("routes: %w", err)
	}

	slog.Info("vidgate starting", "version", internal.GetVersion(), "port", cfg.Port,
		"videoroot", cfg.VideoRoot)

	return &server, nil
}
