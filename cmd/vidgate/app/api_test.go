package app_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestCreateSession(t *testing.T) {
	env := newTestEnv(t)
	sessURL := env.ts.URL + "/api/sessions"

	resp, out := postJSON(t, sessURL, map[string]any{"videoID": readyVideoID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tok, ok := out["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, tok)
	require.Equal(t, readyVideoID, out["videoID"])

	// The minted token opens the manifest endpoint.
	mResp, body := env.get(t, env.manifestURL(tok, ""), nil)
	require.Equal(t, http.StatusOK, mResp.StatusCode)
	require.Contains(t, body, "#EXTM3U")

	// Not a UUID.
	resp, _ = postJSON(t, sessURL, map[string]any{"videoID": "not-a-uuid"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown video.
	resp, _ = postJSON(t, sessURL, map[string]any{"videoID": unknownVideoID})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Video still encoding.
	resp, _ = postJSON(t, sessURL, map[string]any{"videoID": processingVideoID})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestGetVideo(t *testing.T) {
	env := newTestEnv(t)

	resp, out := env.getJSON(t, env.ts.URL+"/api/videos/"+readyVideoID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "completed", out["status"])

	resp, _ = env.getJSON(t, env.ts.URL+"/api/videos/"+processingVideoID)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.getJSON(t, env.ts.URL+"/api/videos/"+unknownVideoID)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func (e *testEnv) getJSON(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, body := e.get(t, url, nil)
	var out map[string]any
	_ = json.Unmarshal([]byte(body), &out)
	return resp, out
}
