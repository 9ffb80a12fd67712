package assistant

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"skillbridge/internal/domain"
	"skillbridge/internal/session"
)

type countingEvents struct {
	ch chan domain.ChatRole
}

func (e *countingEvents) RecordChatMessage(role domain.ChatRole) { e.ch <- role }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestDispatcher(t *testing.T, cfg Config) (Dispatcher, session.Store) {
	t.Helper()
	store := session.NewMemoryStore(time.Hour)
	if err := store.Put(context.Background(), &domain.AnalysisState{ID: "s1"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	cfg.Logger = quietLogger()
	d := NewDispatcher(cfg, store)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(d.Shutdown)
	return d, store
}

func waitForTranscript(t *testing.T, d Dispatcher, want int) *Transcript {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		tr, err := d.Transcript(context.Background(), "s1")
		if err != nil {
			t.Fatalf("transcript: %v", err)
		}
		if len(tr.Messages) >= want && !tr.Typing {
			return tr
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d messages, have %+v", want, tr)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestDispatcher_ReplyAfterDelay(t *testing.T) {
	d, _ := newTestDispatcher(t, Config{ReplyDelay: 20 * time.Millisecond})

	state, err := d.Send(context.Background(), "s1", "  <b>How</b> do I learn Go?  ")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !state.AssistantTyping {
		t.Fatal("expected assistant to be typing right after send")
	}
	if len(state.Chat) != 1 || state.Chat[0].Text != "How do I learn Go?" || state.Chat[0].Role != domain.ChatRoleUser {
		t.Fatalf("unexpected chat %+v", state.Chat)
	}

	tr := waitForTranscript(t, d, 2)
	if tr.Messages[1].Role != domain.ChatRoleAI || tr.Messages[1].Text != DisabledReply {
		t.Fatalf("unexpected reply %+v", tr.Messages[1])
	}
}

func TestDispatcher_RejectsBlankMessages(t *testing.T) {
	d, _ := newTestDispatcher(t, Config{})

	for _, text := range []string{"", "   ", "<script></script>", "<br/>"} {
		if _, err := d.Send(context.Background(), "s1", text); !errors.Is(err, ErrEmptyMessage) {
			t.Fatalf("%q: expected ErrEmptyMessage, got %v", text, err)
		}
	}
	tr, err := d.Transcript(context.Background(), "s1")
	if err != nil {
		t.Fatalf("transcript: %v", err)
	}
	if len(tr.Messages) != 0 {
		t.Fatalf("blank messages must not be stored: %+v", tr.Messages)
	}
}

func TestDispatcher_UnknownSession(t *testing.T) {
	d, _ := newTestDispatcher(t, Config{})
	if _, err := d.Send(context.Background(), "missing", "hi"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected session.ErrNotFound, got %v", err)
	}
	// the failed send must release its slot
	if _, err := d.Send(context.Background(), "s1", "hi"); err != nil {
		t.Fatalf("send after failure: %v", err)
	}
}

func TestDispatcher_Busy(t *testing.T) {
	d, _ := newTestDispatcher(t, Config{ReplyDelay: time.Hour, MaxPending: 1})

	if _, err := d.Send(context.Background(), "s1", "first"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := d.Send(context.Background(), "s1", "second"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
}

func TestDispatcher_ShutdownFlushesPendingReplies(t *testing.T) {
	store := session.NewMemoryStore(time.Hour)
	if err := store.Put(context.Background(), &domain.AnalysisState{ID: "s1"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	events := &countingEvents{ch: make(chan domain.ChatRole, 8)}
	d := NewDispatcher(Config{ReplyDelay: time.Hour, Logger: quietLogger(), Events: events}, store)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	for _, text := range []string{"one", "two"} {
		if _, err := d.Send(context.Background(), "s1", text); err != nil {
			t.Fatalf("send %q: %v", text, err)
		}
	}

	done := make(chan struct{})
	go func() {
		d.Shutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not return")
	}

	state, err := store.Get(context.Background(), "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(state.Chat) != 4 {
		t.Fatalf("expected 4 messages after flush, got %d", len(state.Chat))
	}
	if state.AssistantTyping {
		t.Fatal("typing flag must be cleared once every reply landed")
	}
	if len(events.ch) != 4 {
		t.Fatalf("expected 4 chat events, got %d", len(events.ch))
	}

	if _, err := d.Send(context.Background(), "s1", "late"); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning after shutdown, got %v", err)
	}
}

func TestDisabledReplyWording(t *testing.T) {
	const want = "AI chat is temporarily disabled while we debug the Gemini integration. " +
		"The rest of the dashboard (ATS, Skill Gap, Roadmaps) is using stub data."
	if DisabledReply != want {
		t.Fatalf("reply = %q", DisabledReply)
	}
}
