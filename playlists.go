package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// PlaylistAccess is the level a user holds on a playlist.
type PlaylistAccess int

const (
	AccessOwner PlaylistAccess = iota + 1
	AccessCollaborator
)

func (a PlaylistAccess) String() string {
	switch a {
	case AccessOwner:
		return "owner"
	case AccessCollaborator:
		return "collaborator"
	}
	return "none"
}

// Activity log actions.
const (
	ActionAdd    = "add"
	ActionDelete = "delete"
)

type PlaylistService struct {
	db             *sqlx.DB
	collaborations *CollaborationService
}

func NewPlaylistService(db *sqlx.DB, collaborations *CollaborationService) *PlaylistService {
	return &PlaylistService{db: db, collaborations: collaborations}
}

func (s *PlaylistService) Add(ctx context.Context, name, ownerULID string) (string, error) {
	owner, err := getUserByULID(ctx, s.db, ownerULID)
	if err != nil {
		return "", fmt.Errorf("error getUserByULID: %w", err)
	}
	if owner == nil {
		return "", notFound("user not found")
	}

	playlistULID := newULID()
	if _, err := s.db.ExecContext(
		ctx,
		"INSERT INTO playlists (`ulid`, `name`, `owner_id`, `created_at`) VALUES (?, ?, ?, ?)",
		playlistULID, name, owner.ID, time.Now(),
	); err != nil {
		return "", fmt.Errorf("error Insert playlist by name=%s, owner_id=%d: %w", name, owner.ID, err)
	}
	return playlistULID, nil
}

// GetForUser lists the playlists the user owns plus the ones shared with
// them, each carrying the owner's username.
func (s *PlaylistService) GetForUser(ctx context.Context, userULID string) ([]Playlist, error) {
	var rows []struct {
		ULID     string `db:"ulid"`
		Name     string `db:"name"`
		Username string `db:"username"`
	}
	if err := s.db.SelectContext(
		ctx,
		&rows,
		"SELECT p.ulid AS ulid, p.name AS name, owner.username AS username"+
			" FROM playlists p"+
			" JOIN users owner ON owner.id = p.owner_id"+
			" LEFT JOIN collaborations c ON c.playlist_id = p.id"+
			" LEFT JOIN users cu ON cu.id = c.user_id"+
			" WHERE owner.ulid = ? OR cu.ulid = ?"+
			" GROUP BY p.id, p.ulid, p.name, owner.username"+
			" ORDER BY p.id",
		userULID, userULID,
	); err != nil {
		return nil, fmt.Errorf("error Select playlists by user=%s: %w", userULID, err)
	}

	playlists := make([]Playlist, 0, len(rows))
	for _, row := range rows {
		playlists = append(playlists, Playlist{ID: row.ULID, Name: row.Name, Username: row.Username})
	}
	return playlists, nil
}

// Delete removes a playlist. Collaborations, playlist songs and activities
// cascade with it.
func (s *PlaylistService) Delete(ctx context.Context, playlistULID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM playlists WHERE `ulid` = ?", playlistULID)
	if err != nil {
		return fmt.Errorf("error Delete playlist by ulid=%s: %w", playlistULID, err)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("error RowsAffected: %w", err)
	} else if affected == 0 {
		return notFound("playlist not found")
	}
	return nil
}

// VerifyOwner succeeds only for the playlist's owner. A missing playlist is
// NotFound, never a denial.
func (s *PlaylistService) VerifyOwner(ctx context.Context, playlistULID, userULID string) error {
	playlist, err := getPlaylistByULID(ctx, s.db, playlistULID)
	if err != nil {
		return fmt.Errorf("error getPlaylistByULID: %w", err)
	}
	if playlist == nil {
		return notFound("playlist not found")
	}
	if playlist.OwnerULID != userULID {
		return forbidden("you are not authorized to access this resource")
	}
	return nil
}

// VerifyAccess resolves the user's access to a playlist: owner first, then
// the collaborator registry. The checks run in strict order:
//
//  1. missing playlist is NotFound and takes precedence over any denial;
//  2. owner match succeeds as AccessOwner;
//  3. otherwise the collaborator lookup decides. If that lookup fails for
//     any reason, the ownership denial is what the caller sees; a missing
//     collaboration row must not surface as a second NotFound.
func (s *PlaylistService) VerifyAccess(ctx context.Context, playlistULID, userULID string) (PlaylistAccess, error) {
	playlist, err := getPlaylistByULID(ctx, s.db, playlistULID)
	if err != nil {
		return 0, fmt.Errorf("error getPlaylistByULID: %w", err)
	}
	if playlist == nil {
		return 0, notFound("playlist not found")
	}

	if playlist.OwnerULID == userULID {
		return AccessOwner, nil
	}

	if err := s.collaborations.VerifyCollaborator(ctx, playlistULID, userULID); err != nil {
		return 0, forbidden("you are not authorized to access this resource")
	}
	return AccessCollaborator, nil
}

// ensurePlaylist and ensureSong guard every (playlist, song) mutation: the
// store's constraints alone do not tie the two existence checks to the
// mutation, so the service re-validates both up front.

func (s *PlaylistService) ensurePlaylist(ctx context.Context, playlistULID string) (*PlaylistRow, error) {
	playlist, err := getPlaylistByULID(ctx, s.db, playlistULID)
	if err != nil {
		return nil, fmt.Errorf("error getPlaylistByULID: %w", err)
	}
	if playlist == nil {
		return nil, notFound("playlist not found")
	}
	return playlist, nil
}

func (s *PlaylistService) ensureSong(ctx context.Context, songULID string) (*SongRow, error) {
	song, err := getSongByULID(ctx, s.db, songULID)
	if err != nil {
		return nil, fmt.Errorf("error getSongByULID: %w", err)
	}
	if song == nil {
		return nil, notFound("song not found")
	}
	return song, nil
}

// AddSong puts a song into a playlist and returns the membership id.
func (s *PlaylistService) AddSong(ctx context.Context, playlistULID, songULID string) (string, error) {
	playlist, err := s.ensurePlaylist(ctx, playlistULID)
	if err != nil {
		return "", err
	}
	song, err := s.ensureSong(ctx, songULID)
	if err != nil {
		return "", err
	}

	membershipULID := newULID()
	result, err := s.db.ExecContext(
		ctx,
		"INSERT INTO playlist_songs (`ulid`, `playlist_id`, `song_id`) VALUES (?, ?, ?)",
		membershipULID, playlist.ID, song.ID,
	)
	if err != nil {
		return "", fmt.Errorf(
			"error Insert playlist_song by playlist_id=%d, song_id=%d: %w",
			playlist.ID, song.ID, err,
		)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return "", fmt.Errorf("error RowsAffected: %w", err)
	} else if affected == 0 {
		return "", invariant("song was not added to playlist")
	}
	return membershipULID, nil
}

// GetSongs returns the playlist, its owner's username and its songs.
func (s *PlaylistService) GetSongs(ctx context.Context, playlistULID string) (*PlaylistDetail, error) {
	playlist, err := s.ensurePlaylist(ctx, playlistULID)
	if err != nil {
		return nil, err
	}

	var ownerUsername string
	if err := s.db.GetContext(
		ctx, &ownerUsername, "SELECT `username` FROM users WHERE `id` = ?", playlist.OwnerID,
	); err != nil {
		return nil, fmt.Errorf("error Get username by id=%d: %w", playlist.OwnerID, err)
	}

	var songRows []SongRow
	if err := s.db.SelectContext(
		ctx,
		&songRows,
		"SELECT s.* FROM playlist_songs ps JOIN songs s ON s.id = ps.song_id"+
			" WHERE ps.playlist_id = ? ORDER BY ps.id",
		playlist.ID,
	); err != nil {
		return nil, fmt.Errorf("error Select playlist songs by playlist_id=%d: %w", playlist.ID, err)
	}

	songs := make([]SongSummary, 0, len(songRows))
	for _, row := range songRows {
		songs = append(songs, SongSummary{ID: row.ULID, Title: row.Title, Performer: row.Performer})
	}

	return &PlaylistDetail{
		Playlist: Playlist{ID: playlist.ULID, Name: playlist.Name, Username: ownerUsername},
		Songs:    songs,
	}, nil
}

// DeleteSong removes a song from a playlist.
func (s *PlaylistService) DeleteSong(ctx context.Context, playlistULID, songULID string) error {
	playlist, err := s.ensurePlaylist(ctx, playlistULID)
	if err != nil {
		return err
	}
	song, err := s.ensureSong(ctx, songULID)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(
		ctx,
		"DELETE FROM playlist_songs WHERE `playlist_id` = ? AND `song_id` = ?",
		playlist.ID, song.ID,
	)
	if err != nil {
		return fmt.Errorf(
			"error Delete playlist_song by playlist_id=%d, song_id=%d: %w",
			playlist.ID, song.ID, err,
		)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("error RowsAffected: %w", err)
	} else if affected == 0 {
		return notFound("song not found in playlist")
	}
	return nil
}

// AddActivity appends an immutable record of a song change to the playlist's
// log. Both the playlist and the song must exist at append time.
func (s *PlaylistService) AddActivity(ctx context.Context, playlistULID, songULID, userULID, action string) error {
	playlist, err := s.ensurePlaylist(ctx, playlistULID)
	if err != nil {
		return err
	}
	song, err := s.ensureSong(ctx, songULID)
	if err != nil {
		return err
	}
	user, err := getUserByULID(ctx, s.db, userULID)
	if err != nil {
		return fmt.Errorf("error getUserByULID: %w", err)
	}
	if user == nil {
		return notFound("user not found")
	}

	result, err := s.db.ExecContext(
		ctx,
		"INSERT INTO playlist_song_activities (`playlist_id`, `song_id`, `user_id`, `action`, `time`)"+
			" VALUES (?, ?, ?, ?, ?)",
		playlist.ID, song.ID, user.ID, action, time.Now(),
	)
	if err != nil {
		return fmt.Errorf(
			"error Insert playlist_song_activity by playlist_id=%d, song_id=%d, action=%s: %w",
			playlist.ID, song.ID, action, err,
		)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("error RowsAffected: %w", err)
	} else if affected == 0 {
		return invariant("activity was not recorded")
	}
	return nil
}

// GetActivities lists a playlist's song changes oldest first. Usernames and
// titles are resolved at read time, so later renames show retroactively.
func (s *PlaylistService) GetActivities(ctx context.Context, playlistULID string) ([]Activity, error) {
	playlist, err := s.ensurePlaylist(ctx, playlistULID)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Username string    `db:"username"`
		Title    string    `db:"title"`
		Action   string    `db:"action"`
		Time     time.Time `db:"time"`
	}
	if err := s.db.SelectContext(
		ctx,
		&rows,
		"SELECT u.username AS username, s.title AS title, a.action AS action, a.time AS time"+
			" FROM playlist_song_activities a"+
			" JOIN users u ON u.id = a.user_id"+
			" JOIN songs s ON s.id = a.song_id"+
			" WHERE a.playlist_id = ?"+
			" ORDER BY a.id",
		playlist.ID,
	); err != nil {
		return nil, fmt.Errorf("error Select activities by playlist_id=%d: %w", playlist.ID, err)
	}

	activities := make([]Activity, 0, len(rows))
	for _, row := range rows {
		activities = append(activities, Activity{
			Username: row.Username,
			Title:    row.Title,
			Action:   row.Action,
			Time:     row.Time,
		})
	}
	return activities, nil
}
