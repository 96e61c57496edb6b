package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chancenmarket/chancen/internal/model"
)

// CreateSupportTicket stores an open support ticket.
func CreateSupportTicket(ctx context.Context, db *sql.DB, userID, subject, message string) (*model.SupportTicket, error) {
	t := &model.SupportTicket{
		ID:        uuid.NewString(),
		UserID:    userID,
		Subject:   subject,
		Message:   message,
		Status:    model.SupportStatusOpen,
		CreatedAt: time.Now().UTC(),
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO support_tickets (id, user_id, subject, message, status, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Subject, t.Message, t.Status, t.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating support ticket: %w", err)
	}
	return t, nil
}

// ListSupportTickets returns a user's tickets, newest first.
func ListSupportTickets(ctx context.Context, db *sql.DB, userID string) ([]model.SupportTicket, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, user_id, subject, message, status, created_at
		 FROM support_tickets WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing support tickets: %w", err)
	}
	defer rows.Close()

	var tickets []model.SupportTicket
	for rows.Next() {
		var t model.SupportTicket
		if err := rows.Scan(&t.ID, &t.UserID, &t.Subject, &t.Message, &t.Status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning support ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}
