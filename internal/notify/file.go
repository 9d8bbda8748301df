package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// fileNotifier appends one JSON line per listing to a local file. Useful
// for piping into other tooling and as a durable audit trail.
type fileNotifier struct {
	id   string
	path string

	mu sync.Mutex
	f  *os.File
}

func newFileNotifier(_ context.Context, cfg NotifierConfig) (Notifier, error) {
	if cfg.File.Path == "" {
		return nil, fmt.Errorf("file: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File.Path), 0o755); err != nil {
		return nil, fmt.Errorf("file: creating directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("file: opening %s: %w", cfg.File.Path, err)
	}
	return &fileNotifier{id: cfg.ID, path: cfg.File.Path, f: f}, nil
}

func (n *fileNotifier) ID() string { return n.id }

type fileRecord struct {
	NotifiedAt time.Time `json:"notified_at"`
	Text       string    `json:"text"`
	Listing    any       `json:"listing"`
}

func (n *fileNotifier) Send(_ context.Context, msg Message) error {
	line, err := json.Marshal(fileRecord{
		NotifiedAt: time.Now().UTC(),
		Text:       msg.Text,
		Listing:    msg.Listing,
	})
	if err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	_, err = n.f.Write(append(line, '\n'))
	return err
}

func (n *fileNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.f.Close()
}
