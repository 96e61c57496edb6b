package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chancenmarket/chancen/internal/client"
	"github.com/chancenmarket/chancen/internal/model"
	"github.com/chancenmarket/chancen/internal/poll"
)

// Inbox lists the caller's conversations, newest first as the backend
// returns them.
type Inbox struct {
	api *client.Client

	mu            sync.Mutex
	conversations []model.Conversation
}

// NewInbox returns an empty inbox.
func NewInbox(api *client.Client) *Inbox {
	return &Inbox{api: api}
}

// Load replaces the conversation list with the server's copy.
func (in *Inbox) Load(ctx context.Context) error {
	conversations, err := in.api.Conversations(ctx)
	if err != nil {
		return fmt.Errorf("loading conversations: %w", err)
	}
	in.mu.Lock()
	in.conversations = conversations
	in.mu.Unlock()
	return nil
}

// Conversations returns a copy of the last loaded list.
func (in *Inbox) Conversations() []model.Conversation {
	in.mu.Lock()
	defer in.mu.Unlock()
	return slices.Clone(in.conversations)
}

// BadgeInterval is how often the unread badge is refreshed.
const BadgeInterval = 5 * time.Second

// UnreadBadge keeps the total unread message count current. A failed
// refresh shows zero rather than a stale count.
type UnreadBadge struct {
	api    *client.Client
	poller *poll.Poller
	count  atomic.Int64
}

// NewUnreadBadge returns a stopped badge. newTicker may be nil.
func NewUnreadBadge(api *client.Client, interval time.Duration, newTicker func(time.Duration) poll.Ticker) *UnreadBadge {
	b := &UnreadBadge{api: api}
	b.poller = poll.New("unread", interval, b.refresh)
	if newTicker != nil {
		b.poller.WithTicker(newTicker)
	}
	return b
}

func (b *UnreadBadge) refresh(ctx context.Context) error {
	n, err := b.api.UnreadCount(ctx)
	if err != nil {
		b.count.Store(0)
		if ctx.Err() == nil {
			slog.Warn("refreshing unread count failed", "error", err)
		}
		return nil
	}
	b.count.Store(int64(n))
	return nil
}

// Start refreshes once and then on every tick.
func (b *UnreadBadge) Start(ctx context.Context) {
	b.poller.RunNow(ctx)
	b.poller.Start(ctx)
}

// Refresh updates the count now.
func (b *UnreadBadge) Refresh(ctx context.Context) {
	b.poller.RunNow(ctx)
}

// Stop ends polling.
func (b *UnreadBadge) Stop() { b.poller.Stop() }

// Count returns the last known unread count.
func (b *UnreadBadge) Count() int { return int(b.count.Load()) }
