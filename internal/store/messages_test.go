package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/chancenmarket/chancen/internal/db"
	"github.com/chancenmarket/chancen/internal/model"
)

func send(t *testing.T, database *sql.DB, from, to, listingID, content string) {
	t.Helper()
	_, err := CreateMessage(context.Background(), database, from, model.SendMessageRequest{
		ToUserID: to, ListingID: listingID, Content: content, MessageType: model.MessageTypeText,
	})
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
}

func TestThreadOrderAndIsolation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seller := createTestUser(t, database, "seller")
	buyer := createTestUser(t, database, "buyer")
	other := createTestUser(t, database, "other")
	l := createTestListing(t, database, seller, "Gitarre", "other", 120)

	send(t, database, buyer.ID, seller.ID, l.ID, "Hallo")
	send(t, database, seller.ID, buyer.ID, l.ID, "Hi")
	send(t, database, buyer.ID, seller.ID, l.ID, "Noch da?")
	send(t, database, other.ID, seller.ID, l.ID, "Anderer Thread")

	thread, err := ListThread(ctx, database, buyer.ID, l.ID, seller.ID)
	if err != nil {
		t.Fatalf("ListThread: %v", err)
	}
	if len(thread) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(thread))
	}
	for i, want := range []string{"Hallo", "Hi", "Noch da?"} {
		if thread[i].Content != want {
			t.Errorf("message %d: expected %q, got %q", i, want, thread[i].Content)
		}
	}
}

func TestMarkThreadReadAndUnreadCount(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seller := createTestUser(t, database, "seller")
	buyer := createTestUser(t, database, "buyer")
	l := createTestListing(t, database, seller, "Gitarre", "other", 120)

	send(t, database, buyer.ID, seller.ID, l.ID, "eins")
	send(t, database, buyer.ID, seller.ID, l.ID, "zwei")
	send(t, database, seller.ID, buyer.ID, l.ID, "drei")

	n, _ := CountUnread(ctx, database, seller.ID)
	if n != 2 {
		t.Errorf("expected 2 unread for seller, got %d", n)
	}

	changed, err := MarkThreadRead(ctx, database, seller.ID, l.ID, buyer.ID)
	if err != nil {
		t.Fatalf("MarkThreadRead: %v", err)
	}
	if changed != 2 {
		t.Errorf("expected 2 messages marked, got %d", changed)
	}
	n, _ = CountUnread(ctx, database, seller.ID)
	if n != 0 {
		t.Errorf("expected 0 unread after mark, got %d", n)
	}
	n, _ = CountUnread(ctx, database, buyer.ID)
	if n != 1 {
		t.Errorf("expected buyer's unread untouched, got %d", n)
	}
}

func TestListConversationsGroups(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seller := createTestUser(t, database, "seller")
	anna := createTestUser(t, database, "anna")
	ben := createTestUser(t, database, "ben")
	l := createTestListing(t, database, seller, "Gitarre", "other", 120)

	send(t, database, anna.ID, seller.ID, l.ID, "Hallo von Anna")
	send(t, database, ben.ID, seller.ID, l.ID, "Hallo von Ben")
	send(t, database, anna.ID, seller.ID, l.ID, strings.Repeat("x", 80))

	convs, err := ListConversations(ctx, database, seller.ID)
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(convs) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(convs))
	}

	first := convs[0]
	if first.OtherUserID != anna.ID {
		t.Errorf("expected most recent conversation with anna first, got %q", first.OtherUserName)
	}
	if first.UnreadCount != 2 {
		t.Errorf("expected 2 unread from anna, got %d", first.UnreadCount)
	}
	if len([]rune(first.LastMessage)) != 50 {
		t.Errorf("expected preview truncated to 50 runes, got %d", len([]rune(first.LastMessage)))
	}
	if first.ListingTitle != "Gitarre" || first.ListingImage == "" {
		t.Errorf("listing snapshot missing: %+v", first)
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		content, msgType, want string
	}{
		{"hallo", model.MessageTypeText, "hallo"},
		{"", model.MessageTypeImage, "[image]"},
		{"", model.MessageTypeAudio, "[voice message]"},
		{"Bild dazu", model.MessageTypeImage, "Bild dazu"},
	}
	for _, tt := range tests {
		if got := preview(tt.content, tt.msgType); got != tt.want {
			t.Errorf("preview(%q, %q) = %q, want %q", tt.content, tt.msgType, got, tt.want)
		}
	}
}
