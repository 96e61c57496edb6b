package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chancenmarket/chancen/internal/model"
)

const offerSelect = `SELECT o.id, o.listing_id, COALESCE(l.title, ''), l.images, o.buyer_id,
        COALESCE(b.name, ''), o.seller_id, o.offered_price, COALESCE(l.price, 0),
        o.message, o.status, o.created_at
 FROM offers o
 LEFT JOIN listings l ON l.id = o.listing_id
 LEFT JOIN users b ON b.id = o.buyer_id`

// CreateOffer records an offer and, in the same transaction, posts an
// automatic text message from the buyer to the seller.
func CreateOffer(ctx context.Context, db *sql.DB, buyer *model.User, req model.CreateOfferRequest) (*model.Offer, error) {
	if req.OfferedPrice <= 0 {
		return nil, fmt.Errorf("offered price must be positive")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	id := uuid.NewString()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO offers (id, listing_id, buyer_id, seller_id, offered_price, message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, req.ListingID, buyer.ID, req.SellerID, req.OfferedPrice, nullString(req.Message), now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating offer: %w", err)
	}

	content := fmt.Sprintf("New offer from %s: €%.2f", buyer.Name, req.OfferedPrice)
	if req.Message != "" {
		content += " - " + req.Message
	}
	if err := insertMessage(ctx, tx, buyer.ID, req.SellerID, req.ListingID, content, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing offer: %w", err)
	}

	return GetOffer(ctx, db, id)
}

// GetOffer returns an offer by ID.
func GetOffer(ctx context.Context, db *sql.DB, id string) (*model.Offer, error) {
	o, err := scanOffer(db.QueryRowContext(ctx, offerSelect+` WHERE o.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting offer: %w", err)
	}
	return o, nil
}

// ListReceivedOffers returns offers on the seller's listings, newest first,
// with the listing snapshot and original price attached.
func ListReceivedOffers(ctx context.Context, db *sql.DB, sellerID string) ([]model.Offer, error) {
	rows, err := db.QueryContext(ctx,
		offerSelect+` WHERE o.seller_id = ? ORDER BY o.created_at DESC, o.rowid DESC LIMIT 100`, sellerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing offers: %w", err)
	}
	defer rows.Close()

	var offers []model.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning offer: %w", err)
		}
		offers = append(offers, *o)
	}
	return offers, rows.Err()
}

// SetOfferStatus moves an offer to status and notifies the buyer with an
// automatic message, both in one transaction.
func SetOfferStatus(ctx context.Context, db *sql.DB, id, status string) (*model.Offer, error) {
	offer, err := GetOffer(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE offers SET status = ? WHERE id = ?`, status, id); err != nil {
		return nil, fmt.Errorf("updating offer status: %w", err)
	}

	verdict := "Your offer was rejected"
	if status == model.OfferStatusAccepted {
		verdict = "Your offer was accepted!"
	}
	content := verdict
	if offer.ListingTitle != "" {
		content += " - " + offer.ListingTitle
	}
	if err := insertMessage(ctx, tx, offer.SellerID, offer.BuyerID, offer.ListingID, content, time.Now().UTC()); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing offer status: %w", err)
	}

	return GetOffer(ctx, db, id)
}

func scanOffer(row rowScanner) (*model.Offer, error) {
	o := &model.Offer{}
	var images, message sql.NullString
	if err := row.Scan(&o.ID, &o.ListingID, &o.ListingTitle, &images, &o.BuyerID,
		&o.BuyerName, &o.SellerID, &o.OfferedPrice, &o.OriginalPrice,
		&message, &o.Status, &o.CreatedAt); err != nil {
		return nil, err
	}
	o.Message = message.String
	o.ListingImage = firstImage(images)
	return o, nil
}
