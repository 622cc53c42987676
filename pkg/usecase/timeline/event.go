package timeline

import (
	"context"
	"io"

	"github.com/craigdossantos/onceline/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// AddEvent validates and persists a new event through the active
// adapter, then installs it into the sorted in-memory collection. On a
// storage failure the in-memory state is left untouched.
func (u *UseCase) AddEvent(ctx context.Context, draft *model.EventDraft) (*model.TimelineEvent, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	store, tl := u.activeStore()
	if store == nil {
		return nil, goerr.New("no active timeline", goerr.T(model.TagValidation))
	}

	event := draft.Materialize(tl.ID)
	if err := store.InsertEvent(ctx, event); err != nil {
		return nil, err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.events = append(u.events, event)
	model.SortEvents(u.events)
	u.newlyAddedEventID = event.ID
	return event, nil
}

// UpdateEvent merges the patch onto the matching event, persists it and
// re-sorts the collection.
func (u *UseCase) UpdateEvent(ctx context.Context, id model.EventID, patch *model.EventPatch) (*model.TimelineEvent, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	u.mu.Lock()
	current := u.findEvent(id)
	u.mu.Unlock()
	if current == nil {
		return nil, goerr.New("event not found", goerr.T(model.TagNotFound), goerr.V("event_id", id))
	}

	updated := patch.Apply(current)

	store, _ := u.activeStore()
	if store == nil {
		return nil, goerr.New("no active timeline", goerr.T(model.TagValidation))
	}
	if err := store.UpdateEvent(ctx, updated); err != nil {
		return nil, err
	}

	// Re-read after the round trip: the event may have been deleted by a
	// concurrent operation, in which case the update is simply dropped
	u.mu.Lock()
	defer u.mu.Unlock()
	for i, e := range u.events {
		if e.ID == id {
			u.events[i] = updated
			model.SortEvents(u.events)
			break
		}
	}
	return updated, nil
}

// DeleteEvent removes the event from storage, then from memory.
// Deleting an ID that is already absent is not an error.
func (u *UseCase) DeleteEvent(ctx context.Context, id model.EventID) error {
	store, _ := u.activeStore()
	if store == nil {
		return goerr.New("no active timeline", goerr.T(model.TagValidation))
	}

	if err := store.DeleteEvent(ctx, id); err != nil {
		return err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	for i, e := range u.events {
		if e.ID == id {
			u.events = append(u.events[:i], u.events[i+1:]...)
			break
		}
	}
	if u.selectedEventID == id {
		u.selectedEventID = ""
	}
	if u.newlyAddedEventID == id {
		u.newlyAddedEventID = ""
	}
	return nil
}

// AttachImage stores the image bytes and records its URL on the event
func (u *UseCase) AttachImage(ctx context.Context, id model.EventID, r io.Reader) (*model.TimelineEvent, error) {
	if u.storage == nil {
		return nil, goerr.New("image storage is not configured", goerr.T(model.TagValidation))
	}

	u.mu.Lock()
	current := u.findEvent(id)
	u.mu.Unlock()
	if current == nil {
		return nil, goerr.New("event not found", goerr.T(model.TagNotFound), goerr.V("event_id", id))
	}

	key := "images/" + string(id)
	w, err := u.storage.Put(ctx, key)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open image writer", goerr.T(model.TagStorage), goerr.V("key", key))
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return nil, goerr.Wrap(err, "failed to upload image", goerr.T(model.TagStorage), goerr.V("key", key))
	}
	if err := w.Close(); err != nil {
		return nil, goerr.Wrap(err, "failed to finalize image upload", goerr.T(model.TagStorage), goerr.V("key", key))
	}

	url := u.storage.URL(key)
	return u.UpdateEvent(ctx, id, &model.EventPatch{ImageURL: &url})
}

// findEvent looks up an event by ID. Must be called with u.mu held.
func (u *UseCase) findEvent(id model.EventID) *model.TimelineEvent {
	for _, e := range u.events {
		if e.ID == id {
			return e
		}
	}
	return nil
}
