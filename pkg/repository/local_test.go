package repository_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/craigdossantos/onceline/pkg/model"
	"github.com/craigdossantos/onceline/pkg/repository"
	"github.com/m-mizutani/gt"
)

func newEvent(title, startDate string) *model.TimelineEvent {
	return (&model.EventDraft{
		Title:     title,
		StartDate: startDate,
	}).Materialize(model.AnonymousTimelineID)
}

func TestLocalStartsEmpty(t *testing.T) {
	store := repository.NewLocal(t.TempDir())

	events, err := store.ListEvents(context.Background(), model.AnonymousTimelineID)
	gt.NoError(t, err)
	gt.A(t, events).Length(0)

	messages, err := store.ListMessages(context.Background(), model.AnonymousTimelineID)
	gt.NoError(t, err)
	gt.A(t, messages).Length(0)

	gt.True(t, store.Snapshot().IsEmpty())
}

func TestLocalCorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, repository.SnapshotFileName)
	gt.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	store := repository.NewLocal(dir)

	gt.True(t, store.Snapshot().IsEmpty())
}

func TestLocalPersistAndReload(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store := repository.NewLocal(dir)
	event := newEvent("Moved to Berlin", "2018-07-01")
	gt.NoError(t, store.InsertEvent(ctx, event))
	msg := model.NewChatMessage(model.AnonymousTimelineID, model.RoleUser, "I moved to Berlin", nil)
	gt.NoError(t, store.InsertMessage(ctx, msg))

	// Reopen the same directory to check the file roundtrip
	reopened := repository.NewLocal(dir)

	events, err := reopened.ListEvents(ctx, model.AnonymousTimelineID)
	gt.NoError(t, err)
	gt.A(t, events).Length(1)
	gt.Equal(t, events[0].ID, event.ID)
	gt.Equal(t, events[0].Title, "Moved to Berlin")

	messages, err := reopened.ListMessages(ctx, model.AnonymousTimelineID)
	gt.NoError(t, err)
	gt.A(t, messages).Length(1)
	gt.Equal(t, messages[0].Content, "I moved to Berlin")
}

func TestLocalListEventsSorted(t *testing.T) {
	ctx := context.Background()
	store := repository.NewLocal(t.TempDir())

	undated := newEvent("Learned guitar", "")
	late := newEvent("Got married", "2020-05-09")
	early := newEvent("Born", "1990-01-01")

	gt.NoError(t, store.InsertEvent(ctx, undated))
	gt.NoError(t, store.InsertEvent(ctx, late))
	gt.NoError(t, store.InsertEvent(ctx, early))

	events, err := store.ListEvents(ctx, model.AnonymousTimelineID)
	gt.NoError(t, err)
	gt.A(t, events).Length(3)
	gt.Equal(t, events[0].ID, early.ID)
	gt.Equal(t, events[1].ID, late.ID)
	gt.Equal(t, events[2].ID, undated.ID)
}

func TestLocalUpdateEvent(t *testing.T) {
	ctx := context.Background()
	store := repository.NewLocal(t.TempDir())

	event := newEvent("Old", "2000-01-01")
	gt.NoError(t, store.InsertEvent(ctx, event))

	updated := *event
	updated.Title = "New"
	gt.NoError(t, store.UpdateEvent(ctx, &updated))

	events, err := store.ListEvents(ctx, model.AnonymousTimelineID)
	gt.NoError(t, err)
	gt.A(t, events).Length(1)
	gt.Equal(t, events[0].Title, "New")
}

func TestLocalUpdateMissingEvent(t *testing.T) {
	store := repository.NewLocal(t.TempDir())

	event := newEvent("Ghost", "")
	err := store.UpdateEvent(context.Background(), event)
	gt.Error(t, err)
	gt.True(t, model.IsNotFound(err))
}

func TestLocalDeleteEventIdempotent(t *testing.T) {
	ctx := context.Background()
	store := repository.NewLocal(t.TempDir())

	event := newEvent("Temporary", "2010-10-10")
	gt.NoError(t, store.InsertEvent(ctx, event))

	gt.NoError(t, store.DeleteEvent(ctx, event.ID))
	gt.NoError(t, store.DeleteEvent(ctx, event.ID))

	events, err := store.ListEvents(ctx, model.AnonymousTimelineID)
	gt.NoError(t, err)
	gt.A(t, events).Length(0)
}

func TestLocalDeleteAllMessages(t *testing.T) {
	ctx := context.Background()
	store := repository.NewLocal(t.TempDir())

	gt.NoError(t, store.InsertMessage(ctx, model.NewChatMessage(model.AnonymousTimelineID, model.RoleUser, "one", nil)))
	gt.NoError(t, store.InsertMessage(ctx, model.NewChatMessage(model.AnonymousTimelineID, model.RoleAssistant, "two", nil)))

	gt.NoError(t, store.DeleteAllMessages(ctx, model.AnonymousTimelineID))

	messages, err := store.ListMessages(ctx, model.AnonymousTimelineID)
	gt.NoError(t, err)
	gt.A(t, messages).Length(0)
}

func TestLocalClearRemovesFile(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store := repository.NewLocal(dir)
	gt.NoError(t, store.InsertEvent(ctx, newEvent("Anything", "")))

	path := filepath.Join(dir, repository.SnapshotFileName)
	_, err := os.Stat(path)
	gt.NoError(t, err)

	gt.NoError(t, store.Clear())

	_, err = os.Stat(path)
	gt.True(t, os.IsNotExist(err))
	gt.True(t, store.Snapshot().IsEmpty())

	// Clearing an already cleared store is fine
	gt.NoError(t, store.Clear())
}

func TestLocalSnapshotIsCopy(t *testing.T) {
	ctx := context.Background()
	store := repository.NewLocal(t.TempDir())
	gt.NoError(t, store.InsertEvent(ctx, newEvent("Original", "")))

	snapshot := store.Snapshot()
	snapshot.Events = snapshot.Events[:0]

	events, err := store.ListEvents(ctx, model.AnonymousTimelineID)
	gt.NoError(t, err)
	gt.A(t, events).Length(1)
}
