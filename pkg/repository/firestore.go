package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/craigdossantos/onceline/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	collectionTimelines = "timelines"
	collectionEvents    = "events"
	collectionMessages  = "chat_messages"
)

// Firestore implements RemoteStore backed by Cloud Firestore
type Firestore struct {
	client *firestore.Client
}

var _ RemoteStore = (*Firestore)(nil)

// NewFirestore creates a new Firestore-backed remote store
func NewFirestore(ctx context.Context, projectID, databaseID string) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client", goerr.T(model.TagStorage))
	}

	return &Firestore{client: client}, nil
}

// Close releases the underlying client
func (r *Firestore) Close() error {
	return r.client.Close()
}

func (r *Firestore) FindTimelineByUser(ctx context.Context, userID model.UserID) (*model.Timeline, error) {
	iter := r.client.Collection(collectionTimelines).
		Where("user_id", "==", string(userID)).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		// No timeline yet: not an error, the caller creates one
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query timeline by user", goerr.T(model.TagStorage), goerr.V("user_id", userID))
	}

	var timeline model.Timeline
	if err := doc.DataTo(&timeline); err != nil {
		return nil, goerr.Wrap(err, "failed to decode timeline", goerr.T(model.TagStorage), goerr.V("doc", doc.Ref.ID))
	}

	return &timeline, nil
}

func (r *Firestore) CreateTimeline(ctx context.Context, userID model.UserID, name string) (*model.Timeline, error) {
	timeline := model.NewTimeline(userID, name)

	docRef := r.client.Collection(collectionTimelines).Doc(string(timeline.ID))
	if _, err := docRef.Set(ctx, timeline); err != nil {
		return nil, goerr.Wrap(err, "failed to create timeline", goerr.T(model.TagStorage), goerr.V("user_id", userID))
	}

	return timeline, nil
}

func (r *Firestore) UpdateTimelineName(ctx context.Context, id model.TimelineID, name string) error {
	docRef := r.client.Collection(collectionTimelines).Doc(string(id))
	_, err := docRef.Update(ctx, []firestore.Update{
		{Path: "name", Value: name},
		{Path: "updated_at", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(err, "timeline not found", goerr.T(model.TagNotFound), goerr.V("timeline_id", id))
		}
		return goerr.Wrap(err, "failed to update timeline name", goerr.T(model.TagStorage), goerr.V("timeline_id", id))
	}

	return nil
}

// ListEvents returns the timeline's events in the canonical order.
// Firestore's OrderBy(start_date) drops documents missing the field,
// which would lose undated events, so ordering is applied client-side.
func (r *Firestore) ListEvents(ctx context.Context, timelineID model.TimelineID) ([]*model.TimelineEvent, error) {
	iter := r.client.Collection(collectionEvents).
		Where("timeline_id", "==", string(timelineID)).
		Documents(ctx)
	defer iter.Stop()

	events := make([]*model.TimelineEvent, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list events", goerr.T(model.TagStorage), goerr.V("timeline_id", timelineID))
		}

		var event model.TimelineEvent
		if err := doc.DataTo(&event); err != nil {
			return nil, goerr.Wrap(err, "failed to decode event", goerr.T(model.TagStorage), goerr.V("doc", doc.Ref.ID))
		}
		events = append(events, &event)
	}

	model.SortEvents(events)
	return events, nil
}

func (r *Firestore) InsertEvent(ctx context.Context, event *model.TimelineEvent) error {
	docRef := r.client.Collection(collectionEvents).Doc(string(event.ID))
	if _, err := docRef.Set(ctx, event); err != nil {
		return goerr.Wrap(err, "failed to insert event", goerr.T(model.TagStorage), goerr.V("event_id", event.ID))
	}
	return nil
}

func (r *Firestore) UpdateEvent(ctx context.Context, event *model.TimelineEvent) error {
	docRef := r.client.Collection(collectionEvents).Doc(string(event.ID))
	if _, err := docRef.Set(ctx, event); err != nil {
		return goerr.Wrap(err, "failed to update event", goerr.T(model.TagStorage), goerr.V("event_id", event.ID))
	}
	return nil
}

func (r *Firestore) DeleteEvent(ctx context.Context, id model.EventID) error {
	// Firestore deletes are idempotent: removing an absent document
	// succeeds, matching the contract
	docRef := r.client.Collection(collectionEvents).Doc(string(id))
	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete event", goerr.T(model.TagStorage), goerr.V("event_id", id))
	}
	return nil
}

func (r *Firestore) ListMessages(ctx context.Context, timelineID model.TimelineID) ([]*model.ChatMessage, error) {
	iter := r.client.Collection(collectionMessages).
		Where("timeline_id", "==", string(timelineID)).
		OrderBy("created_at", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	messages := make([]*model.ChatMessage, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list messages", goerr.T(model.TagStorage), goerr.V("timeline_id", timelineID))
		}

		var message model.ChatMessage
		if err := doc.DataTo(&message); err != nil {
			return nil, goerr.Wrap(err, "failed to decode message", goerr.T(model.TagStorage), goerr.V("doc", doc.Ref.ID))
		}
		messages = append(messages, &message)
	}

	return messages, nil
}

func (r *Firestore) InsertMessage(ctx context.Context, message *model.ChatMessage) error {
	docRef := r.client.Collection(collectionMessages).Doc(string(message.ID))
	if _, err := docRef.Set(ctx, message); err != nil {
		return goerr.Wrap(err, "failed to insert message", goerr.T(model.TagStorage), goerr.V("message_id", message.ID))
	}
	return nil
}

func (r *Firestore) DeleteAllMessages(ctx context.Context, timelineID model.TimelineID) error {
	iter := r.client.Collection(collectionMessages).
		Where("timeline_id", "==", string(timelineID)).
		Documents(ctx)
	defer iter.Stop()

	bulk := r.client.BulkWriter(ctx)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to list messages for deletion", goerr.T(model.TagStorage), goerr.V("timeline_id", timelineID))
		}
		if _, err := bulk.Delete(doc.Ref); err != nil {
			return goerr.Wrap(err, "failed to queue message deletion", goerr.T(model.TagStorage), goerr.V("doc", doc.Ref.ID))
		}
	}
	bulk.End()

	return nil
}
