package timeline

import (
	"github.com/craigdossantos/onceline/pkg/model"
)

// State is the snapshot of observables exposed to the view layer
type State struct {
	Mode              model.Mode
	Timeline          *model.Timeline
	Events            []*model.TimelineEvent
	Messages          []*model.ChatMessage
	IsLoading         bool
	IsSending         bool
	SelectedEventID   model.EventID
	NewlyAddedEventID model.EventID
}

// State returns a copy of the current observables. The slices are
// copied so a render pass never races with engine mutations.
func (u *UseCase) State() State {
	u.mu.Lock()
	defer u.mu.Unlock()

	var timeline *model.Timeline
	if u.timeline != nil {
		copied := *u.timeline
		timeline = &copied
	}

	events := make([]*model.TimelineEvent, len(u.events))
	copy(events, u.events)
	messages := make([]*model.ChatMessage, len(u.messages))
	copy(messages, u.messages)

	return State{
		Mode:              u.mode,
		Timeline:          timeline,
		Events:            events,
		Messages:          messages,
		IsLoading:         u.isLoading,
		IsSending:         u.isSending,
		SelectedEventID:   u.selectedEventID,
		NewlyAddedEventID: u.newlyAddedEventID,
	}
}

// SelectEvent marks an event as selected in the UI. Pass an empty ID to
// clear the selection. Pure UI state, no persistence.
func (u *UseCase) SelectEvent(id model.EventID) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.selectedEventID = id
}

// ClearNewlyAdded resets the scroll-target marker set by AddEvent
func (u *UseCase) ClearNewlyAdded() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.newlyAddedEventID = ""
}
