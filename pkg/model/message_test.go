package model_test

import (
	"testing"

	"github.com/craigdossantos/onceline/pkg/model"
	"github.com/m-mizutani/gt"
)

func TestNewChatMessage(t *testing.T) {
	msg := model.NewChatMessage("tl-1", model.RoleUser, "hello", nil)

	gt.V(t, msg.ID).NotEqual("")
	gt.Equal(t, msg.TimelineID, model.TimelineID("tl-1"))
	gt.Equal(t, msg.Role, model.RoleUser)
	gt.Equal(t, msg.Content, "hello")
	// nil event IDs normalize to an empty slice so JSON stays [] not null
	gt.V(t, msg.CreatedEventIDs).NotNil()
	gt.A(t, msg.CreatedEventIDs).Length(0)
	gt.False(t, msg.CreatedAt.IsZero())
}

func TestNewChatMessageWithEventIDs(t *testing.T) {
	ids := []model.EventID{model.NewEventID(), model.NewEventID()}
	msg := model.NewChatMessage("tl-1", model.RoleAssistant, "Added two events", ids)

	gt.A(t, msg.CreatedEventIDs).Length(2)
}

func TestSnapshotIsEmpty(t *testing.T) {
	var nilSnapshot *model.Snapshot
	gt.True(t, nilSnapshot.IsEmpty())
	gt.True(t, (&model.Snapshot{}).IsEmpty())

	withEvent := &model.Snapshot{
		Events: []*model.TimelineEvent{{ID: "e1", Title: "x"}},
	}
	gt.False(t, withEvent.IsEmpty())

	withMessage := &model.Snapshot{
		Messages: []*model.ChatMessage{{ID: "m1", Content: "x"}},
	}
	gt.False(t, withMessage.IsEmpty())
}

func TestTimelineIsAnonymous(t *testing.T) {
	gt.True(t, model.NewAnonymousTimeline().IsAnonymous())
	gt.False(t, model.NewTimeline("user-1", "My Life").IsAnonymous())
}
