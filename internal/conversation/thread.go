// Package conversation keeps message threads and the inbox in sync with the
// backend by polling.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/chancenmarket/chancen/internal/attach"
	"github.com/chancenmarket/chancen/internal/client"
	"github.com/chancenmarket/chancen/internal/model"
	"github.com/chancenmarket/chancen/internal/poll"
)

// DefaultInterval is how often an open thread is reloaded.
const DefaultInterval = 3 * time.Second

// MaxMessageLength is the longest text accepted by Send, in characters.
const MaxMessageLength = 500

// Compose errors. None of them cause a network call.
var (
	ErrEmptyMessage   = errors.New("message has no text and no attachments")
	ErrTooManyImages  = fmt.Errorf("at most %d images per message", model.MaxMessageImages)
	ErrAudioTooLong   = fmt.Errorf("voice messages are limited to %d seconds", model.MaxAudioSeconds)
	ErrMessageTooLong = fmt.Errorf("message longer than %d characters", MaxMessageLength)
)

// Draft is a snapshot of the compose state.
type Draft struct {
	Text   string
	Images []string
	Audio  *attach.Clip
}

// Option configures a Thread.
type Option func(*Thread)

// WithInterval sets the reload interval.
func WithInterval(d time.Duration) Option {
	return func(t *Thread) { t.interval = d }
}

// WithMaxRecording sets the voice message length cap.
func WithMaxRecording(d time.Duration) Option {
	return func(t *Thread) { t.maxAudio = d }
}

// WithTicker replaces the poller's ticker constructor.
func WithTicker(newTicker func(time.Duration) poll.Ticker) Option {
	return func(t *Thread) { t.newTicker = newTicker }
}

// Thread is one open conversation: the caller and one counterparty about one
// listing. Each fetch replaces the message list with the server's copy.
type Thread struct {
	api         *client.Client
	listingID   string
	otherUserID string
	interval    time.Duration
	newTicker   func(time.Duration) poll.Ticker
	maxAudio    time.Duration
	poller      *poll.Poller
	markOnce    sync.Once

	mu        sync.Mutex
	messages  []model.Message
	draft     Draft
	onChange  func([]model.Message)
	recording *Recording
}

// NewThread returns a stopped thread. Call Start to load and begin polling.
func NewThread(api *client.Client, listingID, otherUserID string, opts ...Option) *Thread {
	t := &Thread{
		api:         api,
		listingID:   listingID,
		otherUserID: otherUserID,
		interval:    DefaultInterval,
		newTicker:   poll.NewTimeTicker,
		maxAudio:    model.MaxAudioSeconds * time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.poller = poll.New("thread", t.interval, t.reload).WithTicker(t.newTicker)
	return t
}

// ListingID returns the listing the thread is about.
func (t *Thread) ListingID() string { return t.listingID }

// OtherUserID returns the counterparty.
func (t *Thread) OtherUserID() string { return t.otherUserID }

// OnChange registers fn to be called with the new message list after every
// successful fetch. It replaces any earlier callback.
func (t *Thread) OnChange(fn func([]model.Message)) {
	t.mu.Lock()
	t.onChange = fn
	t.mu.Unlock()
}

// Start loads the thread once and then reloads it on every tick until Stop
// or ctx is done. The initial load error is returned; polling starts anyway.
func (t *Thread) Start(ctx context.Context) error {
	err := t.poller.RunNow(ctx)
	t.poller.Start(ctx)
	return err
}

// Stop ends polling and cancels any in-flight fetch. A recording still
// running is finalized into the draft without being sent. It is safe to
// call more than once.
func (t *Thread) Stop() {
	t.mu.Lock()
	r := t.recording
	t.mu.Unlock()
	if r != nil {
		r.discard()
	}
	t.poller.Stop()
}

// Reload fetches the thread now, after any in-flight fetch has finished.
func (t *Thread) Reload(ctx context.Context) error {
	return t.poller.RunNow(ctx)
}

// Messages returns a copy of the current message list in server order.
func (t *Thread) Messages() []model.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.messages)
}

// reload is the poller body. A 404 means the thread has no messages yet.
func (t *Thread) reload(ctx context.Context) error {
	messages, err := t.api.Thread(ctx, t.listingID, t.otherUserID)
	if client.IsNotFound(err) {
		messages, err = nil, nil
	}
	if err != nil {
		return fmt.Errorf("loading thread: %w", err)
	}
	if messages == nil {
		messages = []model.Message{}
	}

	t.mu.Lock()
	t.messages = messages
	onChange := t.onChange
	t.mu.Unlock()

	if onChange != nil {
		onChange(slices.Clone(messages))
	}

	if len(messages) > 0 {
		t.markOnce.Do(func() { t.markRead(ctx) })
	}
	return nil
}

// markRead is attempted at most once per thread. Failures are not retried.
func (t *Thread) markRead(ctx context.Context) {
	if err := t.api.MarkRead(ctx, t.listingID, t.otherUserID); err != nil {
		slog.Warn("marking thread read failed", "listing", t.listingID, "other_user", t.otherUserID, "error", err)
	}
}

// Draft returns a copy of the compose state.
func (t *Thread) Draft() Draft {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Draft{Text: t.draft.Text, Images: slices.Clone(t.draft.Images), Audio: t.draft.Audio}
}

// SetText replaces the compose text.
func (t *Thread) SetText(text string) {
	t.mu.Lock()
	t.draft.Text = text
	t.mu.Unlock()
}

// AddImage attaches an image data URI. A sixth image is rejected.
func (t *Thread) AddImage(uri string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.draft.Images) >= model.MaxMessageImages {
		return ErrTooManyImages
	}
	t.draft.Images = append(t.draft.Images, uri)
	return nil
}

// RemoveImage drops the attached image at index i.
func (t *Thread) RemoveImage(i int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i < 0 || i >= len(t.draft.Images) {
		return
	}
	t.draft.Images = slices.Delete(t.draft.Images, i, i+1)
}

// SetAudio attaches a voice clip, replacing any earlier one. Clips longer
// than the recording cap are rejected.
func (t *Thread) SetAudio(clip *attach.Clip) error {
	if clip != nil && clip.Duration > t.maxAudio {
		return ErrAudioTooLong
	}
	t.mu.Lock()
	t.draft.Audio = clip
	t.mu.Unlock()
	return nil
}

// ClearAttachments drops all images and the voice clip, keeping the text.
func (t *Thread) ClearAttachments() {
	t.mu.Lock()
	t.draft.Images = nil
	t.draft.Audio = nil
	t.mu.Unlock()
}

// Send posts the compose state. The draft is cleared only after the backend
// accepts the message, followed by exactly one reload whose failure is only
// logged. On failure to post the draft is kept and the backend error is
// returned.
func (t *Thread) Send(ctx context.Context) error {
	d := t.Draft()
	text := strings.TrimSpace(d.Text)

	if text == "" && len(d.Images) == 0 && d.Audio == nil {
		return ErrEmptyMessage
	}
	if len(d.Images) > model.MaxMessageImages {
		return ErrTooManyImages
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return ErrMessageTooLong
	}

	req := model.SendMessageRequest{
		ToUserID:    t.otherUserID,
		ListingID:   t.listingID,
		Content:     text,
		MessageType: messageType(len(d.Images) > 0, d.Audio != nil),
		Images:      d.Images,
	}
	if d.Audio != nil {
		req.Audio = d.Audio.DataURI
	}

	if _, err := t.api.SendMessage(ctx, req); err != nil {
		return err
	}

	t.mu.Lock()
	t.draft = Draft{}
	t.mu.Unlock()

	// The message is posted; a failed reload is left to the next tick.
	if err := t.Reload(ctx); err != nil {
		slog.Warn("reloading thread after send failed", "listing", t.listingID, "other_user", t.otherUserID, "error", err)
	}
	return nil
}

// messageType picks the type of an outgoing message: audio wins over images,
// which win over plain text.
func messageType(hasImages, hasAudio bool) string {
	switch {
	case hasAudio:
		return model.MessageTypeAudio
	case hasImages:
		return model.MessageTypeImage
	}
	return model.MessageTypeText
}
