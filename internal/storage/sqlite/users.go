package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tasknest/internal/models"
)

// CreateUser inserts a locally registered user. The caller assigns the uuid
// and hashes the password beforehand.
func (s *Store) CreateUser(ctx context.Context, u models.User) error {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = ? OR username = ?)`,
		u.Email, u.Username).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check user existence: %w", err)
	}
	if exists {
		return ErrUserExists
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users(id, firstname, lastname, username, email, password) VALUES(?, ?, ?, ?, ?, ?)`,
		u.ID, u.Firstname, u.Lastname, u.Username, u.Email, u.Password)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUserByUsername fetches a user for credential verification.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, firstname, lastname, COALESCE(username, ''), email, password, COALESCE(google_sub, ''), profile_pic, created_at
         FROM users WHERE username = ?`, username)
	return scanUser(row)
}

// GetUserByID fetches a user by uuid.
func (s *Store) GetUserByID(ctx context.Context, id string) (models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, firstname, lastname, COALESCE(username, ''), email, password, COALESCE(google_sub, ''), profile_pic, created_at
         FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// UserExists reports whether a uuid still belongs to a registered user.
func (s *Store) UserExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check uuid existence: %w", err)
	}
	return exists, nil
}

// UpsertGoogleUser inserts a Google-authenticated user keyed by the oauth
// subject, or touches the existing row, and returns the account uuid.
func (s *Store) UpsertGoogleUser(ctx context.Context, u models.User) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users(id, firstname, lastname, email, google_sub, profile_pic)
         VALUES(?, ?, ?, ?, ?, ?)
         ON CONFLICT(google_sub) DO UPDATE SET google_sub = excluded.google_sub
         RETURNING id`,
		u.ID, u.Firstname, u.Lastname, u.Email, u.GoogleSub, u.ProfilePic).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert google user: %w", err)
	}
	return id, nil
}

// UpdateUser applies a partial profile update.
func (s *Store) UpdateUser(ctx context.Context, id string, patch models.UserPatch) error {
	if patch.IsEmpty() {
		return fmt.Errorf("empty user patch")
	}

	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)
	if patch.Firstname != nil {
		sets = append(sets, "firstname = ?")
		args = append(args, strings.TrimSpace(*patch.Firstname))
	}
	if patch.Lastname != nil {
		sets = append(sets, "lastname = ?")
		args = append(args, strings.TrimSpace(*patch.Lastname))
	}
	if patch.Username != nil {
		sets = append(sets, "username = ?")
		args = append(args, strings.TrimSpace(*patch.Username))
	}
	if patch.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, strings.TrimSpace(*patch.Email))
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetProfilePic stores the avatar URL for a user.
func (s *Store) SetProfilePic(ctx context.Context, id, url string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET profile_pic = ? WHERE id = ?`, url, id)
	if err != nil {
		return fmt.Errorf("set profile pic: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// GetProfilePic returns the stored avatar URL.
func (s *Store) GetProfilePic(ctx context.Context, id string) (string, error) {
	var url string
	err := s.db.QueryRowContext(ctx,
		`SELECT profile_pic FROM users WHERE id = ?`, id).Scan(&url)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get profile pic: %w", err)
	}
	if url == "" {
		return "", ErrNoProfilePic
	}
	return url, nil
}

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Firstname, &u.Lastname, &u.Username, &u.Email, &u.Password, &u.GoogleSub, &u.ProfilePic, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}
