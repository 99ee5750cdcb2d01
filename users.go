package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	db *sqlx.DB
}

func NewUserService(db *sqlx.DB) *UserService {
	return &UserService{db: db}
}

// Register stores a new user and returns its id. The username must be free.
func (s *UserService) Register(ctx context.Context, username, password, fullname string) (string, error) {
	existing, err := getUserByUsername(ctx, s.db, username)
	if err != nil {
		return "", fmt.Errorf("error getUserByUsername: %w", err)
	}
	if existing != nil {
		return "", invariant("username is already taken")
	}

	passwordHash, err := generatePasswordHash(password)
	if err != nil {
		return "", fmt.Errorf("error generatePasswordHash: %w", err)
	}

	userULID := newULID()
	if _, err := s.db.ExecContext(
		ctx,
		"INSERT INTO users (`ulid`, `username`, `password_hash`, `fullname`, `created_at`) VALUES (?, ?, ?, ?, ?)",
		userULID, username, passwordHash, fullname, time.Now(),
	); err != nil {
		if isDuplicateEntry(err) {
			return "", conflict("username is already taken")
		}
		return "", fmt.Errorf("error Insert user by username=%s: %w", username, err)
	}

	return userULID, nil
}

// VerifyCredential checks a username/password pair and returns the user id
// on success.
func (s *UserService) VerifyCredential(ctx context.Context, username, password string) (string, error) {
	user, err := getUserByUsername(ctx, s.db, username)
	if err != nil {
		return "", fmt.Errorf("error getUserByUsername: %w", err)
	}
	if user == nil {
		return "", unauthenticated("wrong username or password")
	}

	matched, err := comparePasswordHash(password, user.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("error comparePasswordHash: %w", err)
	}
	if !matched {
		return "", unauthenticated("wrong username or password")
	}

	return user.ULID, nil
}

func generatePasswordHash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), 11)
	if err != nil {
		return "", fmt.Errorf("error bcrypt.GenerateFromPassword: %w", err)
	}
	return string(hashed), nil
}

func comparePasswordHash(password, passwordHash string) (bool, error) {
	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)); err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			return false, nil
		}
		return false, fmt.Errorf("error bcrypt.CompareHashAndPassword: %w", err)
	}
	return true, nil
}
