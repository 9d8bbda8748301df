package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/letscout-hq/letscout/internal/domain"
)

type stubNotifier struct {
	id     string
	err    error
	sent   []Message
	closed bool
}

func (s *stubNotifier) ID() string { return s.id }

func (s *stubNotifier) Send(_ context.Context, msg Message) error {
	s.sent = append(s.sent, msg)
	return s.err
}

func (s *stubNotifier) Close() error {
	s.closed = true
	return nil
}

func TestFanoutDeliversToAllChannels(t *testing.T) {
	a := &stubNotifier{id: "a"}
	b := &stubNotifier{id: "b"}
	f := NewFanout([]Notifier{a, b})

	sent, err := f.Notify(context.Background(), NewMessage("{title}", domain.Listing{Title: "flat"}))
	if err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}
	if sent != 2 {
		t.Fatalf("sent = %d, want 2", sent)
	}
	if len(a.sent) != 1 || len(b.sent) != 1 {
		t.Fatalf("both channels should receive the message")
	}
	if a.sent[0].Text != "flat" {
		t.Fatalf("Text = %q", a.sent[0].Text)
	}
}

func TestFanoutOneFailureDoesNotBlockOthers(t *testing.T) {
	a := &stubNotifier{id: "a", err: errors.New("down")}
	b := &stubNotifier{id: "b"}
	f := NewFanout([]Notifier{a, b})

	sent, err := f.Notify(context.Background(), Message{Text: "hi"})
	if err == nil {
		t.Fatalf("expected joined error")
	}
	if sent != 1 {
		t.Fatalf("sent = %d, want 1", sent)
	}
	if len(b.sent) != 1 {
		t.Fatalf("healthy channel should still be called")
	}
}

func TestFanoutClose(t *testing.T) {
	a := &stubNotifier{id: "a"}
	b := &stubNotifier{id: "b"}
	f := NewFanout([]Notifier{a, b})
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !a.closed || !b.closed {
		t.Fatalf("all channels should be closed")
	}
}
