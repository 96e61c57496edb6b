package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chancenmarket/chancen/internal/attach"
	"github.com/chancenmarket/chancen/internal/conversation"
	"github.com/chancenmarket/chancen/internal/model"
)

const chatHelp = `Type a message and press enter to send it. Commands:
  /image <path>    attach an image (up to 5)
  /unimage <n>     drop attached image n
  /audio <path>    attach a voice clip (up to 60s)
  /record <path>   record from a file another program is writing; sent automatically at 60s
  /stop            finish recording and keep the clip in the draft
  /clear           drop all attachments
  /draft           show the draft
  /send            send the attachments without text
  /reload          fetch the thread now
  /unread          show the unread count across all conversations
  /quit            leave the chat
`

func cmdChat(ctx context.Context, a *app, args []string) error {
	if len(args) != 2 {
		return usageError("chat")
	}
	return chat(ctx, a, args[0], args[1])
}

// chatView prints messages the first time they are seen. Ticks and the
// input loop write through it concurrently.
type chatView struct {
	mu   sync.Mutex
	w    io.Writer
	me   string
	seen map[string]bool
}

func (v *chatView) render(msgs []model.Message) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, m := range msgs {
		if v.seen[m.ID] {
			continue
		}
		v.seen[m.ID] = true
		fmt.Fprintln(v.w, formatMessage(m, v.me))
	}
}

func (v *chatView) printf(format string, args ...any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.w, format, args...)
}

func formatMessage(m model.Message, me string) string {
	who := "them"
	if m.FromUserID == me {
		who = "you"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s:", m.CreatedAt.Local().Format("15:04"), who)
	if m.Content != "" {
		b.WriteString(" " + m.Content)
	}
	if n := len(m.Images); n == 1 {
		b.WriteString(" [image]")
	} else if n > 1 {
		fmt.Fprintf(&b, " [%d images]", n)
	}
	if m.Audio != "" || m.MessageType == model.MessageTypeAudio {
		b.WriteString(" [voice message]")
	}
	return b.String()
}

func chat(ctx context.Context, a *app, listingID, otherUserID string) error {
	view := &chatView{w: a.out, me: a.sess.UserID(), seen: map[string]bool{}}

	thread := conversation.NewThread(a.api, listingID, otherUserID,
		conversation.WithInterval(a.cfg.PollInterval))
	thread.OnChange(view.render)
	if err := thread.Start(ctx); err != nil {
		thread.Stop()
		return err
	}
	defer thread.Stop()

	badge := conversation.NewUnreadBadge(a.api, conversation.BadgeInterval, nil)
	badge.Start(ctx)
	defer badge.Stop()

	if len(thread.Messages()) == 0 {
		view.printf("No messages yet. Say hello.\n")
	}
	view.printf("Type /help for commands.\n")

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(a.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	var recording *conversation.Recording
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := chatCommand(ctx, thread, badge, view, &recording, strings.TrimSpace(line))
			if err != nil {
				view.printf("! %s\n", describeError(err))
			}
			if quit {
				return nil
			}
		}
	}
}

// chatCommand handles one input line and reports whether to leave.
func chatCommand(ctx context.Context, thread *conversation.Thread, badge *conversation.UnreadBadge, view *chatView, recording **conversation.Recording, line string) (bool, error) {
	if line == "" {
		return false, nil
	}
	if !strings.HasPrefix(line, "/") {
		thread.SetText(line)
		if err := thread.Send(ctx); err != nil {
			return false, err
		}
		return false, nil
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		view.printf("%s", chatHelp)
	case "/image":
		uri, err := attach.ImageFile(arg)
		if err != nil {
			return false, err
		}
		if err := thread.AddImage(uri); err != nil {
			return false, err
		}
		view.printf("Image attached (%d/%d).\n", len(thread.Draft().Images), model.MaxMessageImages)
	case "/unimage":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return false, fmt.Errorf("usage: /unimage <n>")
		}
		thread.RemoveImage(n - 1)
	case "/audio":
		clip, err := attach.AudioFile(arg, 0)
		if err != nil {
			return false, err
		}
		if err := thread.SetAudio(clip); err != nil {
			return false, err
		}
		view.printf("Voice clip attached (%s).\n", clip.Duration.Round(time.Second))
	case "/record":
		if arg == "" {
			return false, fmt.Errorf("usage: /record <path>")
		}
		r, err := thread.StartRecording(ctx, &fileRecorder{path: arg})
		if err != nil {
			return false, err
		}
		*recording = r
		view.printf("Recording. /stop to finish.\n")
		go func() {
			<-r.Done()
			if r.Sent() {
				if err := r.Err(); err != nil {
					view.printf("! voice message not sent: %s\n", describeError(err))
				} else {
					view.printf("Recording limit reached, voice message sent.\n")
				}
			}
		}()
	case "/stop":
		if *recording == nil {
			return false, fmt.Errorf("not recording")
		}
		r := *recording
		*recording = nil
		if err := r.Stop(ctx); err != nil {
			return false, err
		}
		if !r.Sent() {
			view.printf("Voice clip attached. Type a message or /send.\n")
		}
	case "/clear":
		thread.ClearAttachments()
	case "/draft":
		d := thread.Draft()
		audio := "none"
		if d.Audio != nil {
			audio = d.Audio.Duration.Round(time.Second).String()
		}
		view.printf("Text: %q, images: %d, voice: %s\n", d.Text, len(d.Images), audio)
	case "/send":
		thread.SetText("")
		return false, thread.Send(ctx)
	case "/reload":
		return false, thread.Reload(ctx)
	case "/unread":
		badge.Refresh(ctx)
		view.printf("%d unread\n", badge.Count())
	default:
		return false, fmt.Errorf("unknown command %s, try /help", cmd)
	}
	return false, nil
}

// fileRecorder treats a file written by an external recorder as the
// microphone. The clip is read when the recording stops.
type fileRecorder struct {
	path    string
	started time.Time
}

func (r *fileRecorder) Start(context.Context) error {
	r.started = time.Now()
	return nil
}

func (r *fileRecorder) Stop(context.Context) (*attach.Clip, error) {
	clip, err := attach.AudioFile(r.path, 0)
	if errors.Is(err, attach.ErrUnknownDuration) {
		return attach.AudioFile(r.path, time.Since(r.started))
	}
	return clip, err
}
