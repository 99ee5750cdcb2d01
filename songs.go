package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type SongService struct {
	db *sqlx.DB
}

func NewSongService(db *sqlx.DB) *SongService {
	return &SongService{db: db}
}

func (s *SongService) Add(ctx context.Context, req SongRequest) (string, error) {
	var albumID sql.NullInt64
	if req.AlbumID != nil {
		album, err := getAlbumByULID(ctx, s.db, *req.AlbumID)
		if err != nil {
			return "", fmt.Errorf("error getAlbumByULID: %w", err)
		}
		if album == nil {
			return "", notFound("album not found")
		}
		albumID = sql.NullInt64{Int64: int64(album.ID), Valid: true}
	}

	var duration sql.NullInt64
	if req.Duration != nil {
		duration = sql.NullInt64{Int64: int64(*req.Duration), Valid: true}
	}

	songULID := newULID()
	if _, err := s.db.ExecContext(
		ctx,
		"INSERT INTO songs (`ulid`, `title`, `year`, `genre`, `performer`, `duration`, `album_id`, `created_at`)"+
			" VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		songULID, req.Title, req.Year, req.Genre, req.Performer, duration, albumID, time.Now(),
	); err != nil {
		return "", fmt.Errorf("error Insert song by title=%s: %w", req.Title, err)
	}
	return songULID, nil
}

// List returns song summaries, optionally narrowed by title and performer
// substring filters.
func (s *SongService) List(ctx context.Context, title, performer string) ([]SongSummary, error) {
	var rows []SongRow
	if err := s.db.SelectContext(
		ctx,
		&rows,
		"SELECT * FROM songs WHERE `title` LIKE ? AND `performer` LIKE ? ORDER BY id",
		"%"+title+"%", "%"+performer+"%",
	); err != nil {
		return nil, fmt.Errorf("error Select songs by title=%s, performer=%s: %w", title, performer, err)
	}

	songs := make([]SongSummary, 0, len(rows))
	for _, row := range rows {
		songs = append(songs, SongSummary{ID: row.ULID, Title: row.Title, Performer: row.Performer})
	}
	return songs, nil
}

func (s *SongService) GetByID(ctx context.Context, songULID string) (*Song, error) {
	row, err := getSongByULID(ctx, s.db, songULID)
	if err != nil {
		return nil, fmt.Errorf("error getSongByULID: %w", err)
	}
	if row == nil {
		return nil, notFound("song not found")
	}

	song := &Song{
		ID:        row.ULID,
		Title:     row.Title,
		Year:      row.Year,
		Genre:     row.Genre,
		Performer: row.Performer,
	}
	if row.Duration.Valid {
		d := int(row.Duration.Int64)
		song.Duration = &d
	}
	if row.AlbumID.Valid {
		var albumULID string
		if err := s.db.GetContext(
			ctx, &albumULID, "SELECT `ulid` FROM albums WHERE `id` = ?", row.AlbumID.Int64,
		); err != nil {
			return nil, fmt.Errorf("error Get album ulid by id=%d: %w", row.AlbumID.Int64, err)
		}
		song.AlbumID = &albumULID
	}
	return song, nil
}

func (s *SongService) Update(ctx context.Context, songULID string, req SongRequest) error {
	var albumID sql.NullInt64
	if req.AlbumID != nil {
		album, err := getAlbumByULID(ctx, s.db, *req.AlbumID)
		if err != nil {
			return fmt.Errorf("error getAlbumByULID: %w", err)
		}
		if album == nil {
			return notFound("album not found")
		}
		albumID = sql.NullInt64{Int64: int64(album.ID), Valid: true}
	}

	var duration sql.NullInt64
	if req.Duration != nil {
		duration = sql.NullInt64{Int64: int64(*req.Duration), Valid: true}
	}

	result, err := s.db.ExecContext(
		ctx,
		"UPDATE songs SET `title` = ?, `year` = ?, `genre` = ?, `performer` = ?, `duration` = ?, `album_id` = ?"+
			" WHERE `ulid` = ?",
		req.Title, req.Year, req.Genre, req.Performer, duration, albumID, songULID,
	)
	if err != nil {
		return fmt.Errorf("error Update song by ulid=%s: %w", songULID, err)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("error RowsAffected: %w", err)
	} else if affected == 0 {
		return notFound("song not found")
	}
	return nil
}

func (s *SongService) Delete(ctx context.Context, songULID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM songs WHERE `ulid` = ?", songULID)
	if err != nil {
		return fmt.Errorf("error Delete song by ulid=%s: %w", songULID, err)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("error RowsAffected: %w", err)
	} else if affected == 0 {
		return notFound("song not found")
	}
	return nil
}
