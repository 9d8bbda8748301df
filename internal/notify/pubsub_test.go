package notify

import (
	"context"
	"os"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"

	"github.com/letscout-hq/letscout/internal/domain"
)

func TestPubSubNotifierPublishes(t *testing.T) {
	// Use the in-memory Pub/Sub emulator.
	server := pstest.NewServer()
	defer server.Close()
	defer os.Unsetenv("PUBSUB_EMULATOR_HOST")
	os.Setenv("PUBSUB_EMULATOR_HOST", server.Addr)

	ctx := context.Background()
	client, err := pubsub.NewClient(ctx, "test-project")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	if _, err := client.CreateTopic(ctx, "listings"); err != nil {
		t.Fatalf("create topic: %v", err)
	}

	n, err := newPubSubNotifier(ctx, NotifierConfig{
		ID:     "gcp",
		Type:   "pubsub",
		PubSub: PubSubConfig{ProjectID: "test-project", TopicID: "listings"},
	})
	if err != nil {
		t.Fatalf("newPubSubNotifier: %v", err)
	}
	defer n.Close()

	err = n.Send(ctx, Message{Listing: domain.Listing{ID: "42", Source: "rightmove"}})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
}
