package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
)

// CountSource tags which layer answered a likes-count read. Callers use it
// for observability only.
type CountSource string

const (
	SourceCache    CountSource = "cache"
	SourceDatabase CountSource = "database"
)

const likeCacheTTL = 30 * time.Minute

func likesCacheKey(albumULID string) string {
	return "likes:" + albumULID
}

type AlbumService struct {
	db    *sqlx.DB
	cache Cache
}

func NewAlbumService(db *sqlx.DB, cache Cache) *AlbumService {
	return &AlbumService{db: db, cache: cache}
}

func (s *AlbumService) Add(ctx context.Context, name string, year int) (string, error) {
	albumULID := newULID()
	if _, err := s.db.ExecContext(
		ctx,
		"INSERT INTO albums (`ulid`, `name`, `year`, `created_at`) VALUES (?, ?, ?, ?)",
		albumULID, name, year, time.Now(),
	); err != nil {
		return "", fmt.Errorf("error Insert album by name=%s, year=%d: %w", name, year, err)
	}
	return albumULID, nil
}

func (s *AlbumService) List(ctx context.Context) ([]Album, error) {
	var rows []AlbumRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT * FROM albums ORDER BY id"); err != nil {
		return nil, fmt.Errorf("error Select albums: %w", err)
	}

	albums := make([]Album, 0, len(rows))
	for _, row := range rows {
		albums = append(albums, Album{ID: row.ULID, Name: row.Name, Year: row.Year})
	}
	return albums, nil
}

// GetByID returns an album together with its songs.
func (s *AlbumService) GetByID(ctx context.Context, albumULID string) (*AlbumDetail, error) {
	album, err := getAlbumByULID(ctx, s.db, albumULID)
	if err != nil {
		return nil, fmt.Errorf("error getAlbumByULID: %w", err)
	}
	if album == nil {
		return nil, notFound("album not found")
	}

	var songRows []SongRow
	if err := s.db.SelectContext(
		ctx,
		&songRows,
		"SELECT * FROM songs WHERE `album_id` = ? ORDER BY id",
		album.ID,
	); err != nil {
		return nil, fmt.Errorf("error Select songs by album_id=%d: %w", album.ID, err)
	}

	songs := make([]SongSummary, 0, len(songRows))
	for _, row := range songRows {
		songs = append(songs, SongSummary{ID: row.ULID, Title: row.Title, Performer: row.Performer})
	}

	detail := &AlbumDetail{
		ID:    album.ULID,
		Name:  album.Name,
		Year:  album.Year,
		Songs: songs,
	}
	if album.CoverURL.Valid {
		detail.CoverURL = &album.CoverURL.String
	}
	return detail, nil
}

func (s *AlbumService) Update(ctx context.Context, albumULID, name string, year int) error {
	result, err := s.db.ExecContext(
		ctx,
		"UPDATE albums SET `name` = ?, `year` = ? WHERE `ulid` = ?",
		name, year, albumULID,
	)
	if err != nil {
		return fmt.Errorf("error Update album by ulid=%s: %w", albumULID, err)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("error RowsAffected: %w", err)
	} else if affected == 0 {
		return notFound("album not found")
	}
	return nil
}

// UpdateCover records where the album's cover image lives. Storing the
// binary itself is someone else's job.
func (s *AlbumService) UpdateCover(ctx context.Context, albumULID, coverURL string) error {
	result, err := s.db.ExecContext(
		ctx,
		"UPDATE albums SET `cover_url` = ? WHERE `ulid` = ?",
		coverURL, albumULID,
	)
	if err != nil {
		return fmt.Errorf("error Update album cover by ulid=%s: %w", albumULID, err)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("error RowsAffected: %w", err)
	} else if affected == 0 {
		return notFound("album not found")
	}
	return nil
}

func (s *AlbumService) Delete(ctx context.Context, albumULID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM albums WHERE `ulid` = ?", albumULID)
	if err != nil {
		return fmt.Errorf("error Delete album by ulid=%s: %w", albumULID, err)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("error RowsAffected: %w", err)
	} else if affected == 0 {
		return notFound("album not found")
	}
	// Likes cascade with the album; the cached count must not outlive them.
	if err := s.cache.Delete(ctx, likesCacheKey(albumULID)); err != nil {
		return err
	}
	return nil
}

// IsLiked reports whether the user currently likes the album.
func (s *AlbumService) IsLiked(ctx context.Context, userULID, albumULID string) (bool, error) {
	var row AlbumLikeRow
	if err := s.db.GetContext(
		ctx,
		&row,
		"SELECT al.* FROM user_album_likes al"+
			" JOIN users u ON u.id = al.user_id"+
			" JOIN albums a ON a.id = al.album_id"+
			" WHERE u.ulid = ? AND a.ulid = ?",
		userULID, albumULID,
	); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf(
			"error Get user_album_like by user=%s, album=%s: %w",
			userULID, albumULID, err,
		)
	}
	return true, nil
}

// AddLike records that the user likes the album. At most one like per
// (user, album) pair may exist; the unique key backs that up under races.
// The cached count for the album is invalidated before success is reported.
func (s *AlbumService) AddLike(ctx context.Context, userULID, albumULID string) (string, error) {
	album, err := getAlbumByULID(ctx, s.db, albumULID)
	if err != nil {
		return "", fmt.Errorf("error getAlbumByULID: %w", err)
	}
	if album == nil {
		return "", notFound("album not found")
	}

	user, err := getUserByULID(ctx, s.db, userULID)
	if err != nil {
		return "", fmt.Errorf("error getUserByULID: %w", err)
	}
	if user == nil {
		return "", notFound("user not found")
	}

	liked, err := s.IsLiked(ctx, userULID, albumULID)
	if err != nil {
		return "", err
	}
	if liked {
		return "", invariant("album is already liked")
	}

	likeULID := newULID()
	if _, err := s.db.ExecContext(
		ctx,
		"INSERT INTO user_album_likes (`ulid`, `user_id`, `album_id`, `created_at`) VALUES (?, ?, ?, ?)",
		likeULID, user.ID, album.ID, time.Now(),
	); err != nil {
		if isDuplicateEntry(err) {
			// A racing request inserted the pair first.
			return "", conflict("album is already liked")
		}
		return "", fmt.Errorf(
			"error Insert user_album_likes by user_id=%d, album_id=%d: %w",
			user.ID, album.ID, err,
		)
	}

	if err := s.cache.Delete(ctx, likesCacheKey(albumULID)); err != nil {
		return "", err
	}
	return likeULID, nil
}

// DeleteLike removes the user's like from the album and invalidates the
// cached count before success is reported.
func (s *AlbumService) DeleteLike(ctx context.Context, userULID, albumULID string) error {
	album, err := getAlbumByULID(ctx, s.db, albumULID)
	if err != nil {
		return fmt.Errorf("error getAlbumByULID: %w", err)
	}
	if album == nil {
		return notFound("album not found")
	}

	result, err := s.db.ExecContext(
		ctx,
		"DELETE FROM user_album_likes WHERE `album_id` = ?"+
			" AND `user_id` IN (SELECT id FROM users WHERE `ulid` = ?)",
		album.ID, userULID,
	)
	if err != nil {
		return fmt.Errorf(
			"error Delete user_album_likes by album_id=%d, user=%s: %w",
			album.ID, userULID, err,
		)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("error RowsAffected: %w", err)
	} else if affected == 0 {
		return invariant("album is not liked")
	}

	if err := s.cache.Delete(ctx, likesCacheKey(albumULID)); err != nil {
		return err
	}
	return nil
}

// GetLikesCount answers "how many users like this album" cache-aside: a hit
// is served as-is, a miss recomputes from the like table and repopulates the
// cache. Zero is a valid cached value, not a miss.
func (s *AlbumService) GetLikesCount(ctx context.Context, albumULID string) (int, CountSource, error) {
	key := likesCacheKey(albumULID)

	val, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		return 0, "", err
	}
	if ok {
		count, err := strconv.Atoi(val)
		if err == nil {
			return count, SourceCache, nil
		}
		// Unparseable entry: recompute as if it were a miss.
	}

	var count int
	if err := s.db.GetContext(
		ctx,
		&count,
		"SELECT COUNT(*) AS cnt FROM user_album_likes al"+
			" JOIN albums a ON a.id = al.album_id WHERE a.ulid = ?",
		albumULID,
	); err != nil {
		return 0, "", fmt.Errorf("error Get count of user_album_likes by album=%s: %w", albumULID, err)
	}

	if err := s.cache.Set(ctx, key, strconv.Itoa(count), likeCacheTTL); err != nil {
		return 0, "", err
	}
	return count, SourceDatabase, nil
}
