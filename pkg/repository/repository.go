package repository

import (
	"context"

	"github.com/craigdossantos/onceline/pkg/model"
)

// Store is the persistence boundary shared by the local snapshot store
// and the remote backend. The reconciliation engine is written once
// against this interface; the concrete adapter is selected by mode.
type Store interface {
	// ListEvents retrieves all events of a timeline, ordered ascending
	// by start date with undated events last
	ListEvents(ctx context.Context, timelineID model.TimelineID) ([]*model.TimelineEvent, error)

	// InsertEvent persists a materialized event
	InsertEvent(ctx context.Context, event *model.TimelineEvent) error

	// UpdateEvent replaces the stored event with the given one
	UpdateEvent(ctx context.Context, event *model.TimelineEvent) error

	// DeleteEvent removes an event. Deleting an absent ID is not an error.
	DeleteEvent(ctx context.Context, id model.EventID) error

	// ListMessages retrieves all messages of a timeline in creation order
	ListMessages(ctx context.Context, timelineID model.TimelineID) ([]*model.ChatMessage, error)

	// InsertMessage appends a chat message
	InsertMessage(ctx context.Context, message *model.ChatMessage) error

	// DeleteAllMessages bulk-clears the chat history of a timeline
	DeleteAllMessages(ctx context.Context, timelineID model.TimelineID) error
}

// RemoteStore adds timeline ownership operations available only on the
// authoritative backend.
type RemoteStore interface {
	Store

	// FindTimelineByUser returns the timeline owned by the user, or nil
	// when none exists yet (which is not an error)
	FindTimelineByUser(ctx context.Context, userID model.UserID) (*model.Timeline, error)

	// CreateTimeline creates a new timeline owned by the user
	CreateTimeline(ctx context.Context, userID model.UserID, name string) (*model.Timeline, error)

	// UpdateTimelineName renames a timeline in place
	UpdateTimelineName(ctx context.Context, id model.TimelineID, name string) error
}

// LocalStore adds snapshot access used by the migration path. It is the
// sole owner of the anonymous snapshot; the engine never touches the
// underlying slot directly.
type LocalStore interface {
	Store

	// Snapshot returns a copy of the current anonymous snapshot
	Snapshot() *model.Snapshot

	// Clear drops the anonymous snapshot after migration
	Clear() error
}
