// Package pubsub publishes cycle commit notifications to Google Cloud
// Pub/Sub so downstream consumers (feature builders, alerting) learn about
// new artifacts without polling the bucket.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"

	"github.com/sportsbettor/ingest/internal/harvest"
)

// Notifier publishes commit summaries to a single topic.
type Notifier struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// New creates a Pub/Sub client and verifies the topic exists. It
// authenticates using Application Default Credentials.
func New(ctx context.Context, projectID, topicID string) (*Notifier, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("check pubsub topic %q: %w", topicID, err)
	}
	if !exists {
		_ = client.Close()
		return nil, fmt.Errorf("pubsub topic %q does not exist in project %q", topicID, projectID)
	}
	return &Notifier{client: client, topic: topic}, nil
}

// PublishCommit marshals the summary to JSON and publishes it, blocking
// until the server acknowledges the message. A commit notification is rare
// (once per cycle) so the latency of a synchronous publish is acceptable.
func (n *Notifier) PublishCommit(ctx context.Context, summary harvest.CycleSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal cycle summary: %w", err)
	}
	msg := &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"run_id": summary.RunID.String(),
		},
	}
	if _, err := n.topic.Publish(ctx, msg).Get(ctx); err != nil {
		return fmt.Errorf("publish commit notification: %w", err)
	}
	return nil
}

// Close stops the topic's publish goroutines and closes the client.
func (n *Notifier) Close() error {
	n.topic.Stop()
	if err := n.client.Close(); err != nil {
		return fmt.Errorf("close pubsub client: %w", err)
	}
	return nil
}
