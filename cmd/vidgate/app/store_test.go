package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestVideoStatus(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.VideoStatus(ctx, "missing")
	require.Error(t, err)
	require.True(t, errors.Is(err, errStoreNotFound))

	require.NoError(t, st.UpsertVideo(ctx, "vid-1", "processing", "First"))
	status, err := st.VideoStatus(ctx, "vid-1")
	require.NoError(t, err)
	require.Equal(t, "processing", status)

	// Upsert moves the video to ready.
	require.NoError(t, st.UpsertVideo(ctx, "vid-1", VideoStatusReady, "First"))
	status, err = st.VideoStatus(ctx, "vid-1")
	require.NoError(t, err)
	require.Equal(t, VideoStatusReady, status)
}

func TestSubtitleScoping(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.UpsertVideo(ctx, "vid-1", VideoStatusReady, "First"))
	require.NoError(t, st.UpsertVideo(ctx, "vid-2", VideoStatusReady, "Second"))

	id1, err := st.AddSubtitle(ctx, "vid-1", "en", "English", "en.vtt")
	require.NoError(t, err)
	id2, err := st.AddSubtitle(ctx, "vid-2", "de", "Deutsch", "de.vtt")
	require.NoError(t, err)
	require.NotEqual(t, id1, id2)

	row, err := st.Subtitle(ctx, "vid-1", id1)
	require.NoError(t, err)
	require.Equal(t, "en.vtt", row.Path)
	require.Equal(t, "English", row.Label)
	require.Equal(t, "vid-1", row.VideoID)

	// The same subtitle ID under the wrong video is not found.
	_, err = st.Subtitle(ctx, "vid-2", id1)
	require.Error(t, err)
	require.True(t, errors.Is(err, errStoreNotFound))

	_, err = st.Subtitle(ctx, "vid-1", 9999)
	require.Error(t, err)
}
