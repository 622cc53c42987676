package timeline

import (
	"context"

	"github.com/craigdossantos/onceline/pkg/model"
	"github.com/craigdossantos/onceline/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// InitAsLocal starts (or restarts) an anonymous session backed by the
// local snapshot store. It never fails: a missing or corrupt snapshot
// degrades to an empty state inside the local adapter. No network I/O.
func (u *UseCase) InitAsLocal(ctx context.Context) {
	// The local adapter never returns errors from reads
	events, _ := u.local.ListEvents(ctx, model.AnonymousTimelineID)
	messages, _ := u.local.ListMessages(ctx, model.AnonymousTimelineID)

	u.mu.Lock()
	defer u.mu.Unlock()

	u.mode = model.ModeLocal
	u.timeline = model.NewAnonymousTimeline()
	u.events = events
	u.messages = messages
	u.isLoading = false
	u.isSending = false
	u.selectedEventID = ""
	u.newlyAddedEventID = ""
}

// InitAsRemote switches the session to the authoritative store for the
// given identity, creating the timeline on first sign-in. A non-empty
// local snapshot is migrated before the remote state is loaded.
//
// Storage failures are returned to the caller and leave the engine in a
// loading-failed state: falling back to local silently would risk
// mixing data across identities.
func (u *UseCase) InitAsRemote(ctx context.Context, userID model.UserID) error {
	if u.remote == nil {
		return goerr.New("remote store is not configured", goerr.T(model.TagValidation))
	}

	u.mu.Lock()
	u.isLoading = true
	u.mu.Unlock()

	timeline, err := u.initRemote(ctx, userID)

	u.mu.Lock()
	defer u.mu.Unlock()
	u.isLoading = false
	if err != nil {
		return err
	}

	u.mode = model.ModeRemote
	u.timeline = timeline.timeline
	u.events = timeline.events
	u.messages = timeline.messages
	u.selectedEventID = ""
	u.newlyAddedEventID = ""
	return nil
}

type remoteState struct {
	timeline *model.Timeline
	events   []*model.TimelineEvent
	messages []*model.ChatMessage
}

func (u *UseCase) initRemote(ctx context.Context, userID model.UserID) (*remoteState, error) {
	tl, err := u.remote.FindTimelineByUser(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up timeline", goerr.V("user_id", userID))
	}

	if tl == nil {
		tl, err = u.remote.CreateTimeline(ctx, userID, model.DefaultTimelineName)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create timeline", goerr.V("user_id", userID))
		}
	}

	// Migrate any anonymous data before loading so the loaded view
	// already reflects server-assigned IDs
	if !u.local.Snapshot().IsEmpty() {
		u.migrate(ctx, tl)
	}

	events, err := u.remote.ListEvents(ctx, tl.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load events", goerr.V("timeline_id", tl.ID))
	}

	messages, err := u.remote.ListMessages(ctx, tl.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load messages", goerr.V("timeline_id", tl.ID))
	}

	return &remoteState{timeline: tl, events: events, messages: messages}, nil
}

// migrate re-inserts the anonymous snapshot into the remote store under
// the new timeline, stripping local IDs so the backend assigns its own.
// Each item is attempted independently: a failed insert is logged and
// skipped, never retried, and does not abort the rest. Losing a stale
// item is preferable to blocking sign-in. The snapshot is cleared
// afterwards regardless of per-item failures.
func (u *UseCase) migrate(ctx context.Context, tl *model.Timeline) {
	logger := logging.From(ctx)
	snapshot := u.local.Snapshot()

	migrated := 0
	for _, event := range snapshot.Events {
		copied := *event
		copied.ID = model.NewEventID()
		copied.TimelineID = tl.ID
		if err := u.remote.InsertEvent(ctx, &copied); err != nil {
			logger.Warn("skipping event during migration", "title", event.Title, "error", err)
			continue
		}
		migrated++
	}

	for _, message := range snapshot.Messages {
		copied := *message
		copied.ID = model.NewMessageID()
		copied.TimelineID = tl.ID
		// Local event IDs are gone after re-insertion, so the link from
		// assistant turns to their extracted events does not survive
		copied.CreatedEventIDs = []model.EventID{}
		if err := u.remote.InsertMessage(ctx, &copied); err != nil {
			logger.Warn("skipping message during migration", "message_id", message.ID, "error", err)
			continue
		}
		migrated++
	}

	if err := u.local.Clear(); err != nil {
		logger.Warn("failed to clear local snapshot after migration", "error", err)
	}

	logger.Info("migrated anonymous timeline",
		"timeline_id", tl.ID,
		"events", len(snapshot.Events),
		"messages", len(snapshot.Messages),
		"migrated", migrated)
}
