package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/oklog/ulid/v2"
)

func connectDB() (*sqlx.DB, error) {
	config := mysql.NewConfig()
	config.Net = "tcp"
	config.Addr = getEnv("MELODIA_DB_HOST", "127.0.0.1") + ":" + getEnv("MELODIA_DB_PORT", "3306")
	config.User = getEnv("MELODIA_DB_USER", "melodia")
	config.Passwd = getEnv("MELODIA_DB_PASSWORD", "melodia")
	config.DBName = getEnv("MELODIA_DB_NAME", "melodia")
	config.ParseTime = true

	dsn := config.FormatDSN()
	return sqlx.Open("mysql", dsn)
}

// connOrTx lets the query helpers run against either a connection or an open
// transaction.
type connOrTx interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// newULID returns a fresh lexicographically sortable id for a row.
func newULID() string {
	return ulid.Make().String()
}

type UserRow struct {
	ID           int       `db:"id"`
	ULID         string    `db:"ulid"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	Fullname     string    `db:"fullname"`
	CreatedAt    time.Time `db:"created_at"`
}

type AlbumRow struct {
	ID        int            `db:"id"`
	ULID      string         `db:"ulid"`
	Name      string         `db:"name"`
	Year      int            `db:"year"`
	CoverURL  sql.NullString `db:"cover_url"`
	CreatedAt time.Time      `db:"created_at"`
}

type SongRow struct {
	ID        int           `db:"id"`
	ULID      string        `db:"ulid"`
	Title     string        `db:"title"`
	Year      int           `db:"year"`
	Genre     string        `db:"genre"`
	Performer string        `db:"performer"`
	Duration  sql.NullInt64 `db:"duration"`
	AlbumID   sql.NullInt64 `db:"album_id"`
	CreatedAt time.Time     `db:"created_at"`
}

// PlaylistRow carries the owner's public id alongside the playlist so access
// checks do not need a second lookup.
type PlaylistRow struct {
	ID        int       `db:"id"`
	ULID      string    `db:"ulid"`
	Name      string    `db:"name"`
	OwnerID   int       `db:"owner_id"`
	OwnerULID string    `db:"owner_ulid"`
	CreatedAt time.Time `db:"created_at"`
}

type CollaborationRow struct {
	ID         int       `db:"id"`
	ULID       string    `db:"ulid"`
	PlaylistID int       `db:"playlist_id"`
	UserID     int       `db:"user_id"`
	CreatedAt  time.Time `db:"created_at"`
}

type AlbumLikeRow struct {
	ID        int       `db:"id"`
	ULID      string    `db:"ulid"`
	UserID    int       `db:"user_id"`
	AlbumID   int       `db:"album_id"`
	CreatedAt time.Time `db:"created_at"`
}

// Row fetchers shared by the services. A missing row comes back as nil, not
// as an error; callers decide what absence means.

func getUserByULID(ctx context.Context, db connOrTx, userULID string) (*UserRow, error) {
	var row UserRow
	if err := db.GetContext(ctx, &row, "SELECT * FROM users WHERE `ulid` = ?", userULID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error Get user by ulid=%s: %w", userULID, err)
	}
	return &row, nil
}

func getUserByUsername(ctx context.Context, db connOrTx, username string) (*UserRow, error) {
	var row UserRow
	if err := db.GetContext(ctx, &row, "SELECT * FROM users WHERE `username` = ?", username); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error Get user by username=%s: %w", username, err)
	}
	return &row, nil
}

func getAlbumByULID(ctx context.Context, db connOrTx, albumULID string) (*AlbumRow, error) {
	var row AlbumRow
	if err := db.GetContext(ctx, &row, "SELECT * FROM albums WHERE `ulid` = ?", albumULID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error Get album by ulid=%s: %w", albumULID, err)
	}
	return &row, nil
}

func getSongByULID(ctx context.Context, db connOrTx, songULID string) (*SongRow, error) {
	var row SongRow
	if err := db.GetContext(ctx, &row, "SELECT * FROM songs WHERE `ulid` = ?", songULID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error Get song by ulid=%s: %w", songULID, err)
	}
	return &row, nil
}

func getPlaylistByULID(ctx context.Context, db connOrTx, playlistULID string) (*PlaylistRow, error) {
	var row PlaylistRow
	if err := db.GetContext(
		ctx,
		&row,
		"SELECT p.id, p.ulid, p.name, p.owner_id, u.ulid AS owner_ulid, p.created_at"+
			" FROM playlists p JOIN users u ON u.id = p.owner_id WHERE p.ulid = ?",
		playlistULID,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error Get playlist by ulid=%s: %w", playlistULID, err)
	}
	return &row, nil
}
