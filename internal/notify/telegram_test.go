package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTelegramNotifierSendsToEveryChat(t *testing.T) {
	var paths []string
	var chatIDs []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		var payload map[string]string
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("payload not JSON: %v", err)
		}
		chatIDs = append(chatIDs, payload["chat_id"])
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	n, err := newTelegramNotifier(context.Background(), NotifierConfig{
		ID:       "tg",
		Type:     "telegram",
		Telegram: TelegramConfig{BotToken: "tok", ChatIDs: []string{"1", "2"}},
	})
	if err != nil {
		t.Fatalf("newTelegramNotifier: %v", err)
	}
	n.(*telegramNotifier).baseURL = srv.URL

	if err := n.Send(context.Background(), Message{Text: "new flat"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("got %d requests, want 2", len(paths))
	}
	if !strings.HasSuffix(paths[0], "/bottok/sendMessage") {
		t.Fatalf("path = %q", paths[0])
	}
	if chatIDs[0] != "1" || chatIDs[1] != "2" {
		t.Fatalf("chat ids = %v", chatIDs)
	}
}

func TestTelegramNotifierAPIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"ok":false,"description":"chat not found"}`)
	}))
	defer srv.Close()

	n, err := newTelegramNotifier(context.Background(), NotifierConfig{
		ID:       "tg",
		Telegram: TelegramConfig{BotToken: "tok", ChatIDs: []string{"1"}},
	})
	if err != nil {
		t.Fatalf("newTelegramNotifier: %v", err)
	}
	n.(*telegramNotifier).baseURL = srv.URL

	err = n.Send(context.Background(), Message{Text: "x"})
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("expected API error, got %v", err)
	}
}

func TestTelegramNotifierRequiresToken(t *testing.T) {
	_, err := newTelegramNotifier(context.Background(), NotifierConfig{
		ID:       "tg",
		Telegram: TelegramConfig{ChatIDs: []string{"1"}},
	})
	if err == nil {
		t.Fatalf("expected error for missing token")
	}
}
