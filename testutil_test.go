package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// The service tests run against an in-memory SQLite database; the schema
// below mirrors schema.sql with SQLite column affinities.
const sqliteSchema = `
CREATE TABLE users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ulid VARCHAR(26) NOT NULL UNIQUE,
  username VARCHAR(191) NOT NULL UNIQUE,
  password_hash VARCHAR(191) NOT NULL,
  fullname VARCHAR(191) NOT NULL,
  created_at DATETIME NOT NULL
);

CREATE TABLE albums (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ulid VARCHAR(26) NOT NULL UNIQUE,
  name VARCHAR(191) NOT NULL,
  year INTEGER NOT NULL,
  cover_url TEXT,
  created_at DATETIME NOT NULL
);

CREATE TABLE songs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ulid VARCHAR(26) NOT NULL UNIQUE,
  title VARCHAR(191) NOT NULL,
  year INTEGER NOT NULL,
  genre VARCHAR(191) NOT NULL,
  performer VARCHAR(191) NOT NULL,
  duration INTEGER,
  album_id INTEGER REFERENCES albums (id) ON DELETE SET NULL,
  created_at DATETIME NOT NULL
);

CREATE TABLE playlists (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ulid VARCHAR(26) NOT NULL UNIQUE,
  name VARCHAR(191) NOT NULL,
  owner_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  created_at DATETIME NOT NULL
);

CREATE TABLE user_album_likes (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ulid VARCHAR(26) NOT NULL UNIQUE,
  user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  album_id INTEGER NOT NULL REFERENCES albums (id) ON DELETE CASCADE,
  created_at DATETIME NOT NULL,
  UNIQUE (user_id, album_id)
);

CREATE TABLE collaborations (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ulid VARCHAR(26) NOT NULL UNIQUE,
  playlist_id INTEGER NOT NULL REFERENCES playlists (id) ON DELETE CASCADE,
  user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  created_at DATETIME NOT NULL,
  UNIQUE (playlist_id, user_id)
);

CREATE TABLE playlist_songs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ulid VARCHAR(26) NOT NULL UNIQUE,
  playlist_id INTEGER NOT NULL REFERENCES playlists (id) ON DELETE CASCADE,
  song_id INTEGER NOT NULL REFERENCES songs (id) ON DELETE CASCADE
);

CREATE TABLE playlist_song_activities (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  playlist_id INTEGER NOT NULL REFERENCES playlists (id) ON DELETE CASCADE,
  song_id INTEGER NOT NULL REFERENCES songs (id) ON DELETE CASCADE,
  user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  action VARCHAR(16) NOT NULL,
  time DATETIME NOT NULL
);
`

// memCache is a map-backed Cache for tests. TTLs are accepted and ignored.
type memCache struct {
	mu    sync.Mutex
	items map[string]string
}

func newMemCache() *memCache {
	return &memCache{items: map[string]string{}}
}

func (c *memCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	val, ok := c.items[key]
	return val, ok, nil
}

func (c *memCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func (c *memCache) contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}

type testEnv struct {
	db             *sqlx.DB
	cache          *memCache
	users          *UserService
	albums         *AlbumService
	songs          *SongService
	playlists      *PlaylistService
	collaborations *CollaborationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// One connection, or every :memory: conn would see its own database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)
	_, err = db.Exec(sqliteSchema)
	require.NoError(t, err)

	cache := newMemCache()
	collaborations := NewCollaborationService(db)
	return &testEnv{
		db:             db,
		cache:          cache,
		users:          NewUserService(db),
		albums:         NewAlbumService(db, cache),
		songs:          NewSongService(db),
		playlists:      NewPlaylistService(db, collaborations),
		collaborations: collaborations,
	}
}

func (env *testEnv) mustRegister(t *testing.T, username string) string {
	t.Helper()
	userULID, err := env.users.Register(context.Background(), username, "secret-password", username+" fullname")
	require.NoError(t, err)
	return userULID
}

func (env *testEnv) mustAlbum(t *testing.T, name string) string {
	t.Helper()
	albumULID, err := env.albums.Add(context.Background(), name, 2020)
	require.NoError(t, err)
	return albumULID
}

func (env *testEnv) mustSong(t *testing.T, title string) string {
	t.Helper()
	songULID, err := env.songs.Add(context.Background(), SongRequest{
		Title:     title,
		Year:      2020,
		Genre:     "pop",
		Performer: "performer of " + title,
	})
	require.NoError(t, err)
	return songULID
}

func (env *testEnv) mustPlaylist(t *testing.T, name, ownerULID string) string {
	t.Helper()
	playlistULID, err := env.playlists.Add(context.Background(), name, ownerULID)
	require.NoError(t, err)
	return playlistULID
}
