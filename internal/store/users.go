package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chancenmarket/chancen/internal/model"
)

const userColumns = `id, name, email, password_hash, role, rating, review_count, profile_image, phone_enabled, created_at`

// CreateUser creates a new user. Emails are stored lower-cased.
func CreateUser(ctx context.Context, db *sql.DB, name, email, passwordHash, role string) (*model.User, error) {
	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, name, strings.ToLower(email), passwordHash, role, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, db *sql.DB, id string) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByEmail returns a user by email, compared case-insensitively.
func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, strings.ToLower(email),
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

// UpdateUserProfile applies the non-nil fields of upd and returns the updated user.
func UpdateUserProfile(ctx context.Context, db *sql.DB, id string, upd model.ProfileUpdate) (*model.User, error) {
	var sets []string
	var args []any
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.ProfileImage != nil {
		sets = append(sets, "profile_image = ?")
		args = append(args, *upd.ProfileImage)
	}
	if upd.PhoneEnabled != nil {
		sets = append(sets, "phone_enabled = ?")
		args = append(args, *upd.PhoneEnabled)
	}

	if len(sets) > 0 {
		args = append(args, id)
		_, err := db.ExecContext(ctx,
			`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...,
		)
		if err != nil {
			return nil, fmt.Errorf("updating user profile: %w", err)
		}
	}

	return GetUser(ctx, db, id)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	u := &model.User{}
	var image sql.NullString
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Rating,
		&u.ReviewCount, &image, &u.PhoneEnabled, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.ProfileImage = image.String
	return u, nil
}
