package model

import (
	"time"

	"github.com/google/uuid"
)

type TimelineID string

// AnonymousTimelineID is the sentinel timeline ID used while no
// authenticated identity exists. Data under it lives only in the local
// snapshot store.
const AnonymousTimelineID TimelineID = "anonymous"

// NewTimelineID generates a new unique TimelineID
func NewTimelineID() TimelineID {
	return TimelineID(uuid.New().String())
}

// UserID is an opaque identity reference from the auth layer
type UserID string

// DefaultTimelineName is used when a timeline is created on first
// authenticated session.
const DefaultTimelineName = "My Life"

// Timeline is the top-level container scoping events and chat history.
// UserID is empty for the anonymous/local timeline.
type Timeline struct {
	ID        TimelineID `firestore:"id" json:"id"`
	UserID    UserID     `firestore:"user_id,omitempty" json:"user_id,omitempty"`
	Name      string     `firestore:"name" json:"name"`
	CreatedAt time.Time  `firestore:"created_at" json:"created_at"`
	UpdatedAt time.Time  `firestore:"updated_at" json:"updated_at"`
}

// NewTimeline builds a timeline with a generated ID and timestamps
func NewTimeline(userID UserID, name string) *Timeline {
	now := time.Now()
	return &Timeline{
		ID:        NewTimelineID(),
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewAnonymousTimeline builds the sentinel local timeline
func NewAnonymousTimeline() *Timeline {
	now := time.Now()
	return &Timeline{
		ID:        AnonymousTimelineID,
		Name:      DefaultTimelineName,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsAnonymous reports whether the timeline is the local sentinel one
func (t *Timeline) IsAnonymous() bool {
	return t.ID == AnonymousTimelineID
}

// Mode indicates which storage backend currently backs the active timeline
type Mode string

const (
	ModeUninitialized Mode = ""
	ModeLocal         Mode = "local"
	ModeRemote        Mode = "remote"
)
