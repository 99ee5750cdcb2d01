package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// CollaborationService owns the (playlist, collaborator) relation. At most
// one row may exist per pair.
type CollaborationService struct {
	db *sqlx.DB
}

func NewCollaborationService(db *sqlx.DB) *CollaborationService {
	return &CollaborationService{db: db}
}

// Add grants a user collaborator access to a playlist and returns the
// collaboration id. Adding the same pair twice is a business-rule violation,
// not a no-op.
func (s *CollaborationService) Add(ctx context.Context, playlistULID, userULID string) (string, error) {
	playlist, err := getPlaylistByULID(ctx, s.db, playlistULID)
	if err != nil {
		return "", fmt.Errorf("error getPlaylistByULID: %w", err)
	}
	if playlist == nil {
		return "", notFound("playlist not found")
	}

	user, err := getUserByULID(ctx, s.db, userULID)
	if err != nil {
		return "", fmt.Errorf("error getUserByULID: %w", err)
	}
	if user == nil {
		return "", notFound("user not found")
	}

	existing, err := s.getCollaboration(ctx, playlist.ID, user.ID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", invariant("collaboration already exists")
	}

	collabULID := newULID()
	if _, err := s.db.ExecContext(
		ctx,
		"INSERT INTO collaborations (`ulid`, `playlist_id`, `user_id`, `created_at`) VALUES (?, ?, ?, ?)",
		collabULID, playlist.ID, user.ID, time.Now(),
	); err != nil {
		if isDuplicateEntry(err) {
			return "", conflict("collaboration already exists")
		}
		return "", fmt.Errorf(
			"error Insert collaboration by playlist_id=%d, user_id=%d: %w",
			playlist.ID, user.ID, err,
		)
	}
	return collabULID, nil
}

// Delete revokes a user's collaborator access.
func (s *CollaborationService) Delete(ctx context.Context, playlistULID, userULID string) error {
	result, err := s.db.ExecContext(
		ctx,
		"DELETE FROM collaborations WHERE"+
			" `playlist_id` IN (SELECT id FROM playlists WHERE `ulid` = ?)"+
			" AND `user_id` IN (SELECT id FROM users WHERE `ulid` = ?)",
		playlistULID, userULID,
	)
	if err != nil {
		return fmt.Errorf(
			"error Delete collaboration by playlist=%s, user=%s: %w",
			playlistULID, userULID, err,
		)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("error RowsAffected: %w", err)
	} else if affected == 0 {
		return invariant("collaboration was not removed")
	}
	return nil
}

// VerifyCollaborator succeeds iff a collaboration row exists for the pair.
func (s *CollaborationService) VerifyCollaborator(ctx context.Context, playlistULID, userULID string) error {
	var row CollaborationRow
	if err := s.db.GetContext(
		ctx,
		&row,
		"SELECT c.* FROM collaborations c"+
			" JOIN playlists p ON p.id = c.playlist_id"+
			" JOIN users u ON u.id = c.user_id"+
			" WHERE p.ulid = ? AND u.ulid = ?",
		playlistULID, userULID,
	); err != nil {
		if err == sql.ErrNoRows {
			return notFound("collaboration not found")
		}
		return fmt.Errorf(
			"error Get collaboration by playlist=%s, user=%s: %w",
			playlistULID, userULID, err,
		)
	}
	return nil
}

func (s *CollaborationService) getCollaboration(ctx context.Context, playlistID, userID int) (*CollaborationRow, error) {
	var row CollaborationRow
	if err := s.db.GetContext(
		ctx,
		&row,
		"SELECT * FROM collaborations WHERE `playlist_id` = ? AND `user_id` = ?",
		playlistID, userID,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf(
			"error Get collaboration by playlist_id=%d, user_id=%d: %w",
			playlistID, userID, err,
		)
	}
	return &row, nil
}
