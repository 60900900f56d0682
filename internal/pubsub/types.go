package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
// It doubles as the topic name.
type EventType string

const (
	// EventSyncGroup asks for the spreadsheet of one group to be re-synced.
	EventSyncGroup EventType = "sync-group"
)

// SyncRequest is the payload of EventSyncGroup.
type SyncRequest struct {
	GroupID string `msgpack:"group_id"`
	DryRun  bool   `msgpack:"dry_run"`
}
