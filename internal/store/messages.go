package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chancenmarket/chancen/internal/model"
)

// maxThreadMessages caps a thread fetch and the scan behind the conversation list.
const maxThreadMessages = 1000

// Placeholders for rows whose user or listing no longer exists.
const (
	deletedUserName     = "Deleted user"
	deletedListingTitle = "Deleted listing"
)

const messageColumns = `id, from_user_id, to_user_id, listing_id, content, message_type, images, audio, read, created_at`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CreateMessage stores a message from fromID.
func CreateMessage(ctx context.Context, db *sql.DB, fromID string, req model.SendMessageRequest) (*model.Message, error) {
	images, err := encodeJSON(req.Images, "[]")
	if err != nil {
		return nil, fmt.Errorf("encoding images: %w", err)
	}
	msgType := req.MessageType
	if msgType == "" {
		msgType = model.MessageTypeText
	}

	id := uuid.NewString()
	_, err = db.ExecContext(ctx,
		`INSERT INTO messages (id, from_user_id, to_user_id, listing_id, content, message_type, images, audio, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, fromID, req.ToUserID, req.ListingID, req.Content, msgType, images, nullString(req.Audio), time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	return GetMessage(ctx, db, id)
}

// insertMessage stores an automatic text message inside a transaction.
func insertMessage(ctx context.Context, ex execer, fromID, toID, listingID, content string, at time.Time) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO messages (id, from_user_id, to_user_id, listing_id, content, message_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), fromID, toID, listingID, content, model.MessageTypeText, at,
	)
	if err != nil {
		return fmt.Errorf("posting automatic message: %w", err)
	}
	return nil
}

// GetMessage returns a message by ID.
func GetMessage(ctx context.Context, db *sql.DB, id string) (*model.Message, error) {
	m, err := scanMessage(db.QueryRowContext(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting message: %w", err)
	}
	return m, nil
}

// ListThread returns the messages between userID and otherID about one
// listing, oldest first.
func ListThread(ctx context.Context, db *sql.DB, userID, listingID, otherID string) ([]model.Message, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+messageColumns+`
		 FROM messages
		 WHERE listing_id = ?
		   AND ((from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?))
		 ORDER BY created_at, rowid
		 LIMIT ?`,
		listingID, userID, otherID, otherID, userID, maxThreadMessages,
	)
	if err != nil {
		return nil, fmt.Errorf("listing thread: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

// MarkThreadRead marks the messages otherID sent to userID about the listing
// as read and returns how many changed.
func MarkThreadRead(ctx context.Context, db *sql.DB, userID, listingID, otherID string) (int64, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE messages SET read = 1
		 WHERE listing_id = ? AND from_user_id = ? AND to_user_id = ? AND read = 0`,
		listingID, otherID, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("marking thread read: %w", err)
	}
	return result.RowsAffected()
}

// CountUnread returns the number of unread messages addressed to userID.
func CountUnread(ctx context.Context, db *sql.DB, userID string) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE to_user_id = ? AND read = 0`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting unread messages: %w", err)
	}
	return count, nil
}

// ListConversations groups the user's messages by (listing, counterparty),
// most recently active first. Each entry carries the latest message and the
// number of unread messages addressed to the user.
func ListConversations(ctx context.Context, db *sql.DB, userID string) ([]model.Conversation, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT m.from_user_id, m.to_user_id, m.listing_id, m.content, m.message_type,
		        m.read, m.created_at, l.title, l.images, u.name, u.profile_image
		 FROM messages m
		 LEFT JOIN listings l ON l.id = m.listing_id
		 LEFT JOIN users u ON u.id = CASE WHEN m.from_user_id = ? THEN m.to_user_id ELSE m.from_user_id END
		 WHERE m.from_user_id = ? OR m.to_user_id = ?
		 ORDER BY m.created_at DESC, m.rowid DESC
		 LIMIT ?`,
		userID, userID, userID, maxThreadMessages,
	)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	defer rows.Close()

	var conversations []model.Conversation
	index := make(map[string]int)
	for rows.Next() {
		var from, to, listingID, content, msgType string
		var read bool
		var at time.Time
		var title, images, otherName, otherImage sql.NullString
		if err := rows.Scan(&from, &to, &listingID, &content, &msgType, &read, &at,
			&title, &images, &otherName, &otherImage); err != nil {
			return nil, fmt.Errorf("scanning conversation message: %w", err)
		}

		otherID := from
		if from == userID {
			otherID = to
		}
		key := listingID + "\x00" + otherID

		i, ok := index[key]
		if !ok {
			c := model.Conversation{
				ListingID:       listingID,
				ListingTitle:    title.String,
				ListingImage:    firstImage(images),
				OtherUserID:     otherID,
				OtherUserName:   otherName.String,
				OtherUserImage:  otherImage.String,
				LastMessage:     preview(content, msgType),
				LastMessageTime: at,
			}
			if !title.Valid {
				c.ListingTitle = deletedListingTitle
			}
			if !otherName.Valid {
				c.OtherUserName = deletedUserName
			}
			conversations = append(conversations, c)
			i = len(conversations) - 1
			index[key] = i
		}
		if to == userID && !read {
			conversations[i].UnreadCount++
		}
	}
	return conversations, rows.Err()
}

// preview shortens a message for the conversation list.
func preview(content, msgType string) string {
	if content == "" {
		switch msgType {
		case model.MessageTypeImage:
			return "[image]"
		case model.MessageTypeAudio:
			return "[voice message]"
		}
	}
	r := []rune(content)
	if len(r) > 50 {
		return string(r[:50])
	}
	return content
}

func scanMessage(row rowScanner) (*model.Message, error) {
	m := &model.Message{}
	var images string
	var audio sql.NullString
	if err := row.Scan(&m.ID, &m.FromUserID, &m.ToUserID, &m.ListingID, &m.Content,
		&m.MessageType, &images, &audio, &m.Read, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Audio = audio.String
	if err := json.Unmarshal([]byte(images), &m.Images); err != nil {
		return nil, fmt.Errorf("decoding images: %w", err)
	}
	return m, nil
}

// firstImage returns the first entry of a JSON image list column, or "".
func firstImage(images sql.NullString) string {
	if !images.Valid {
		return ""
	}
	var list []string
	if err := json.Unmarshal([]byte(images.String), &list); err != nil || len(list) == 0 {
		return ""
	}
	return list[0]
}
