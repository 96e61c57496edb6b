package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chancenmarket/chancen/internal/model"
)

const listingSelect = `SELECT l.id, l.seller_id, COALESCE(u.name, ''), l.title, l.description, l.price,
        l.category, l.images, l.video, l.videos, l.category_fields, l.views,
        l.negotiable, l.location, l.created_at
 FROM listings l
 LEFT JOIN users u ON u.id = l.seller_id`

// CreateListing stores a new listing for the seller.
func CreateListing(ctx context.Context, db *sql.DB, sellerID string, d model.ListingDraft) (*model.Listing, error) {
	images, err := encodeJSON(d.Images, "[]")
	if err != nil {
		return nil, fmt.Errorf("encoding images: %w", err)
	}
	videos, err := encodeJSON(d.Videos, "[]")
	if err != nil {
		return nil, fmt.Errorf("encoding videos: %w", err)
	}
	fields, err := encodeJSON(d.CategoryFields, "{}")
	if err != nil {
		return nil, fmt.Errorf("encoding category fields: %w", err)
	}

	id := uuid.NewString()
	_, err = db.ExecContext(ctx,
		`INSERT INTO listings (id, seller_id, title, description, price, category, images, video,
		                       videos, category_fields, negotiable, location, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, sellerID, d.Title, d.Description, d.Price, d.Category, images, nullString(d.Video),
		videos, fields, d.Negotiable, nullString(d.Location), time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating listing: %w", err)
	}

	return GetListing(ctx, db, id)
}

// GetListing returns a listing by ID.
func GetListing(ctx context.Context, db *sql.DB, id string) (*model.Listing, error) {
	l, err := scanListing(db.QueryRowContext(ctx, listingSelect+` WHERE l.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting listing: %w", err)
	}
	return l, nil
}

// ListListings returns listings newest first, filtered by category and a
// case-insensitive search over title and description.
func ListListings(ctx context.Context, db *sql.DB, q model.ListingQuery) ([]model.Listing, error) {
	query := listingSelect + ` WHERE 1=1`
	var args []any

	if q.Category != "" {
		query += ` AND l.category = ?`
		args = append(args, q.Category)
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		pattern := likePattern(s)
		query += ` AND (l.title LIKE ? ESCAPE '\' OR l.description LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = model.DefaultListingLimit
	}
	if limit > model.MaxListingLimit {
		limit = model.MaxListingLimit
	}
	query += ` ORDER BY l.created_at DESC, l.rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing listings: %w", err)
	}
	defer rows.Close()

	return scanListings(rows)
}

// ListListingsBySeller returns all listings of one seller, newest first.
func ListListingsBySeller(ctx context.Context, db *sql.DB, sellerID string) ([]model.Listing, error) {
	rows, err := db.QueryContext(ctx,
		listingSelect+` WHERE l.seller_id = ? ORDER BY l.created_at DESC, l.rowid DESC`, sellerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing seller listings: %w", err)
	}
	defer rows.Close()

	return scanListings(rows)
}

// IncrementListingViews bumps the view counter of a listing.
func IncrementListingViews(ctx context.Context, db *sql.DB, id string) error {
	_, err := db.ExecContext(ctx, `UPDATE listings SET views = views + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("incrementing listing views: %w", err)
	}
	return nil
}

// DeleteListing removes a listing. Favorites and offers cascade.
func DeleteListing(ctx context.Context, db *sql.DB, id string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting listing: %w", err)
	}
	return nil
}

// CategoryPrices returns the prices of all listings in a category, ascending.
func CategoryPrices(ctx context.Context, db *sql.DB, category string) ([]float64, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT price FROM listings WHERE category = ? AND price > 0 ORDER BY price`, category,
	)
	if err != nil {
		return nil, fmt.Errorf("listing category prices: %w", err)
	}
	defer rows.Close()

	var prices []float64
	for rows.Next() {
		var p float64
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning price: %w", err)
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

func scanListings(rows *sql.Rows) ([]model.Listing, error) {
	var listings []model.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning listing: %w", err)
		}
		listings = append(listings, *l)
	}
	return listings, rows.Err()
}

func scanListing(row rowScanner) (*model.Listing, error) {
	l := &model.Listing{}
	var images, videos, fields string
	var video, location sql.NullString
	if err := row.Scan(&l.ID, &l.SellerID, &l.SellerName, &l.Title, &l.Description, &l.Price,
		&l.Category, &images, &video, &videos, &fields, &l.Views,
		&l.Negotiable, &location, &l.CreatedAt); err != nil {
		return nil, err
	}
	l.Video = video.String
	l.Location = location.String

	if err := json.Unmarshal([]byte(images), &l.Images); err != nil {
		return nil, fmt.Errorf("decoding images: %w", err)
	}
	if err := json.Unmarshal([]byte(videos), &l.Videos); err != nil {
		return nil, fmt.Errorf("decoding videos: %w", err)
	}
	if err := json.Unmarshal([]byte(fields), &l.CategoryFields); err != nil {
		return nil, fmt.Errorf("decoding category fields: %w", err)
	}
	if l.Images == nil {
		l.Images = []string{}
	}
	if l.CategoryFields == nil {
		l.CategoryFields = map[string]any{}
	}
	return l, nil
}

// encodeJSON marshals v, returning empty when v is nil or empty.
func encodeJSON(v any, empty string) (string, error) {
	switch t := v.(type) {
	case []string:
		if len(t) == 0 {
			return empty, nil
		}
	case map[string]any:
		if len(t) == 0 {
			return empty, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// likePattern wraps s for a substring LIKE match, escaping wildcards.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
