// Copyright 2025, Vidgate authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// VideoStatusReady marks a video whose encoded artifacts are complete and
// streamable.
const VideoStatusReady = "completed"

var errStoreNotFound = errors.New("not found")

// SubtitleRow is one subtitle track of a video.
type SubtitleRow struct {
	ID      int64
	VideoID string
	Lang    string
	Label   string
	Path    string // relative to the video's subs directory
}

// VideoStore is the read surface this gateway needs from the platform
// database. The upload pipeline and encoding worker own all writes.
type VideoStore interface {
	VideoStatus(ctx context.Context, videoID string) (string, error)
	Subtitle(ctx context.Context, videoID string, subtitleID int64) (SubtitleRow, error)
}

// SQLiteStore reads the platform database. Safe for concurrent use.
type SQLiteStore struct {
	db *sql.DB
}

const storeSchema = `
CREATE TABLE IF NOT EXISTS videos (
	id     TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	title  TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS subtitles (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	video_id TEXT NOT NULL REFERENCES videos(id),
	lang     TEXT NOT NULL DEFAULT '',
	label    TEXT NOT NULL DEFAULT '',
	path     TEXT NOT NULL
);
`

func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(storeSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) VideoStatus(ctx context.Context, videoID string) (string, error) {
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT status FROM videos WHERE id = ?`, videoID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("video %s: %w", videoID, errStoreNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("video status: %w", err)
	}
	return status, nil
}

// Subtitle looks up a subtitle row scoped to videoID so that a token for
// one video can never fetch another video's subtitles.
func (s *SQLiteStore) Subtitle(ctx context.Context, videoID string, subtitleID int64) (SubtitleRow, error) {
	var row SubtitleRow
	err := s.db.QueryRowContext(ctx,
		`SELECT id, video_id, lang, label, path FROM subtitles WHERE id = ? AND video_id = ?`,
		subtitleID, videoID).Scan(&row.ID, &row.VideoID, &row.Lang, &row.Label, &row.Path)
	if errors.Is(err, sql.ErrNoRows) {
		return SubtitleRow{}, fmt.Errorf("subtitle %d: %w", subtitleID, errStoreNotFound)
	}
	if err != nil {
		return SubtitleRow{}, fmt.Errorf("subtitle lookup: %w", err)
	}
	return row, nil
}

// UpsertVideo is used by the worker-facing tooling and by tests.
func (s *SQLiteStore) UpsertVideo(ctx context.Context, videoID, status, title string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO videos (id, status, title) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET status = excluded.status, title = excluded.title`,
		videoID, status, title)
	if err != nil {
		return fmt.Errorf("upsert video: %w", err)
	}
	return nil
}

// AddSubtitle is used by the worker-facing tooling and by tests.
func (s *SQLiteStore) AddSubtitle(ctx context.Context, videoID, lang, label, path string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO subtitles (video_id, lang, label, path) VALUES (?, ?, ?, ?)`,
		videoID, lang, label, path)
	if err != nil {
		return 0, fmt.Errorf("add subtitle: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}
