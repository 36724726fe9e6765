package app

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// SessionSetup is the request body for minting a session token. The watch
// and embed page renderers call this when serving a player page.
type SessionSetup struct {
	VideoID    string `json:"videoID" doc:"ID of the video the session grants access to" example:"8e5a0c2e-9c1e-4ad1-a3cc-52f90e3c2e47"`
	TTLSeconds *int   `json:"ttlSeconds,omitempty" doc:"Validity window in seconds, default 14400"`
}

type SessionCreateRequest struct {
	Body SessionSetup `json:"body"`
}

type SessionCreateResponse struct {
	Body struct {
		Token     string `json:"token" doc:"Opaque bearer token for the manifest and subtitle endpoints"`
		VideoID   string `json:"videoID" doc:"Video the token grants access to"`
		ExpiresAt int64  `json:"expiresAt" doc:"Unix seconds when the token expires"`
	}
}

type videoIDInput struct {
	ID string `path:"id" maxLength:"64" example:"8e5a0c2e-9c1e-4ad1-a3cc-52f90e3c2e47" doc:"Video ID"`
}

type VideoInfoResponse struct {
	Body struct {
		ID     string `json:"id" doc:"Video ID"`
		Status string `json:"status" doc:"Encoding status"`
	}
}

func createSessionHdlr(s *Server) func(ctx context.Context, req *SessionCreateRequest) (*SessionCreateResponse, error) {
	return func(ctx context.Context, req *SessionCreateRequest) (*SessionCreateResponse, error) {
		if _, err := uuid.Parse(req.Body.VideoID); err != nil {
			return nil, huma.Error400BadRequest("videoID is not a valid UUID")
		}
		status, err := s.store.VideoStatus(ctx, req.Body.VideoID)
		if err != nil {
			return nil, huma.Error404NotFound("video not found")
		}
		if status != VideoStatusReady {
			return nil, huma.Error409Conflict("video is not ready to stream")
		}
		ttl := time.Duration(s.Cfg.TokenTTLS) * time.Second
		if req.Body.TTLSeconds != nil && *req.Body.TTLSeconds > 0 {
			ttl = time.Duration(*req.Body.TTLSeconds) * time.Second
		}
		tok, err := s.tokens.Seal(req.Body.VideoID, ttl)
		if err != nil {
			return nil, huma.Error500InternalServerError("could not mint token")
		}
		resp := &SessionCreateResponse{}
		resp.Body.Token = tok
		resp.Body.VideoID = req.Body.VideoID
		resp.Body.ExpiresAt = time.Now().Add(ttl).Unix()
		return resp, nil
	}
}

func createGetVideoHdlr(s *Server) func(ctx context.Context, input *videoIDInput) (*VideoInfoResponse, error) {
	return func(ctx context.Context, input *videoIDInput) (*VideoInfoResponse, error) {
		if _, err := uuid.Parse(input.ID); err != nil {
			return nil, huma.Error400BadRequest("videoID is not a valid UUID")
		}
		status, err := s.store.VideoStatus(ctx, input.ID)
		if err != nil {
			return nil, huma.Error404NotFound("video not found")
		}
		resp := &VideoInfoResponse{}
		resp.Body.ID = input.ID
		resp.Body.Status = status
		return resp, nil
	}
}

func createRouteAPI(s *Server) func(r chi.Router) {
	return func(r chi.Router) {
		config := huma.DefaultConfig("Vidgate session API", "1.0.0")
		config.Servers = []*huma.Server{
			{URL: "/api"},
		}
		config.Info.Description = `Internal API for the page-rendering layer: mint session tokens
		for the streaming endpoints and look up video readiness.`

		api := humachi.New(r, config)

		huma.Register(api, huma.Operation{
			OperationID:   "create-session",
			Method:        http.MethodPost,
			Path:          "/sessions",
			Summary:       "Mint a session token for a video",
			Tags:          []string{"sessions"},
			DefaultStatus: http.StatusCreated,
			Errors:        []int{400, 404, 409},
		}, createSessionHdlr(s))

		huma.Register(api, huma.Operation{
			OperationID: "get-video",
			Method:      http.MethodGet,
			Path:        "/videos/{id}",
			Summary:     "Get encoding status of a video",
			Tags:        []string{"videos"},
			Errors:      []int{400, 404},
		}, createGetVideoHdlr(s))
	}
}

// tokenTTL is a convenience for tests.
func (s *Server) tokenTTL() time.Duration {
	return time.Duration(s.Cfg.TokenTTLS) * time.Second
}

// MintSessionToken exposes token minting to in-process callers (tests and
// tooling) without going through the HTTP API.
func (s *Server) MintSessionToken(videoID string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.tokenTTL()
	}
	return s.tokens.Seal(videoID, ttl)
}
