package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/chancenmarket/chancen/internal/model"
)

// AddFavorite marks a listing as favorite for a user.
// Returns false if it was already a favorite.
func AddFavorite(ctx context.Context, db *sql.DB, userID, listingID string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO favorites (user_id, listing_id, created_at) VALUES (?, ?, ?)`,
		userID, listingID, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("adding favorite: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking favorite insert: %w", err)
	}
	return n > 0, nil
}

// RemoveFavorite removes a favorite. Returns false if there was none.
func RemoveFavorite(ctx context.Context, db *sql.DB, userID, listingID string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND listing_id = ?`, userID, listingID,
	)
	if err != nil {
		return false, fmt.Errorf("removing favorite: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking favorite delete: %w", err)
	}
	return n > 0, nil
}

// IsFavorite reports whether the user has favorited the listing.
func IsFavorite(ctx context.Context, db *sql.DB, userID, listingID string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM favorites WHERE user_id = ? AND listing_id = ?`, userID, listingID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking favorite: %w", err)
	}
	return count > 0, nil
}

// ListFavorites returns the user's favorite listings, most recently added first.
func ListFavorites(ctx context.Context, db *sql.DB, userID string) ([]model.Listing, error) {
	rows, err := db.QueryContext(ctx,
		listingSelect+`
		 JOIN favorites f ON f.listing_id = l.id
		 WHERE f.user_id = ?
		 ORDER BY f.created_at DESC, f.rowid DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing favorites: %w", err)
	}
	defer rows.Close()

	return scanListings(rows)
}
