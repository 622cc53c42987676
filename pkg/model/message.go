package model

import (
	"time"

	"github.com/google/uuid"
)

type MessageID string

// NewMessageID generates a new unique MessageID
func NewMessageID() MessageID {
	return MessageID(uuid.New().String())
}

// Role is the author of a chat turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one turn in the narration conversation. Messages are
// append-only: they are never reordered or deleted individually, only
// bulk-cleared.
type ChatMessage struct {
	ID              MessageID  `firestore:"id" json:"id"`
	TimelineID      TimelineID `firestore:"timeline_id" json:"timeline_id"`
	Role            Role       `firestore:"role" json:"role"`
	Content         string     `firestore:"content" json:"content"`
	CreatedEventIDs []EventID  `firestore:"created_event_ids" json:"created_event_ids"`
	CreatedAt       time.Time  `firestore:"created_at" json:"created_at"`
}

// NewChatMessage builds a message with a generated ID and timestamp
func NewChatMessage(timelineID TimelineID, role Role, content string, createdEventIDs []EventID) *ChatMessage {
	if createdEventIDs == nil {
		createdEventIDs = []EventID{}
	}
	return &ChatMessage{
		ID:              NewMessageID(),
		TimelineID:      timelineID,
		Role:            role,
		Content:         content,
		CreatedEventIDs: createdEventIDs,
		CreatedAt:       time.Now(),
	}
}

// Snapshot is the serialized bag of events and messages held in local
// storage while no identity is present.
type Snapshot struct {
	Events   []*TimelineEvent `json:"events"`
	Messages []*ChatMessage   `json:"messages"`
}

// IsEmpty reports whether the snapshot holds no data worth migrating
func (s *Snapshot) IsEmpty() bool {
	return s == nil || (len(s.Events) == 0 && len(s.Messages) == 0)
}
