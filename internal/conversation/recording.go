package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chancenmarket/chancen/internal/attach"
)

// ErrRecordingActive is returned by StartRecording while another recording
// on the same thread has not finished.
var ErrRecordingActive = errors.New("a recording is already in progress")

// AudioRecorder captures a voice clip from some input device.
type AudioRecorder interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) (*attach.Clip, error)
}

// Recording is a voice message being captured. It ends either when Stop is
// called, which leaves the clip in the draft, or when the length cap is
// reached, which sends it right away.
type Recording struct {
	thread *Thread
	rec    AudioRecorder
	timer  *time.Timer
	once   sync.Once
	done   chan struct{}
	sent   bool
	err    error
}

// StartRecording starts rec and arms the length cap. When the cap fires the
// clip is finalized and sent with the current draft.
func (t *Thread) StartRecording(ctx context.Context, rec AudioRecorder) (*Recording, error) {
	t.mu.Lock()
	if t.recording != nil {
		select {
		case <-t.recording.done:
		default:
			t.mu.Unlock()
			return nil, ErrRecordingActive
		}
	}
	r := &Recording{thread: t, rec: rec, done: make(chan struct{})}
	t.recording = r
	t.mu.Unlock()

	if err := rec.Start(ctx); err != nil {
		r.once.Do(func() { r.finish(fmt.Errorf("starting recording: %w", err)) })
		return nil, r.Err()
	}

	timer := time.AfterFunc(t.maxAudio, func() {
		r.finalize(context.WithoutCancel(ctx), true)
	})
	t.mu.Lock()
	r.timer = timer
	t.mu.Unlock()
	return r, nil
}

// Stop ends the recording early and attaches the clip to the draft. It
// returns the recording's result; after the cap has fired it only waits for
// the automatic send to finish.
func (r *Recording) Stop(ctx context.Context) error {
	r.stopTimer()
	r.finalize(ctx, false)
	<-r.done
	return r.err
}

// discard ends the recording without sending it. It is used when the thread
// is torn down.
func (r *Recording) discard() {
	r.stopTimer()
	r.finalize(context.Background(), false)
}

func (r *Recording) stopTimer() {
	r.thread.mu.Lock()
	timer := r.timer
	r.thread.mu.Unlock()
	if timer != nil {
		timer.Stop()
	}
}

// Done is closed once the recording has been finalized.
func (r *Recording) Done() <-chan struct{} { return r.done }

// Err returns the finalization error, if any. It is only meaningful after
// Done is closed.
func (r *Recording) Err() error {
	select {
	case <-r.done:
		return r.err
	default:
		return nil
	}
}

// Sent reports whether the clip was sent because the length cap was reached.
func (r *Recording) Sent() bool {
	select {
	case <-r.done:
		return r.sent
	default:
		return false
	}
}

func (r *Recording) finalize(ctx context.Context, send bool) {
	r.once.Do(func() {
		clip, err := r.rec.Stop(ctx)
		if err != nil {
			r.finish(fmt.Errorf("stopping recording: %w", err))
			return
		}
		if clip == nil {
			r.finish(errors.New("recorder returned no clip"))
			return
		}
		if clip.Duration > r.thread.maxAudio {
			clip.Duration = r.thread.maxAudio
		}
		if err := r.thread.SetAudio(clip); err != nil {
			r.finish(err)
			return
		}
		if !send {
			r.finish(nil)
			return
		}
		r.sent = true
		r.finish(r.thread.Send(ctx))
	})
}

func (r *Recording) finish(err error) {
	r.err = err
	close(r.done)
}
