package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/craigdossantos/onceline/pkg/model"
	"github.com/craigdossantos/onceline/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// SnapshotFileName is the fixed slot holding the anonymous snapshot.
// It is distinct from any CLI configuration file.
const SnapshotFileName = "anonymous.json"

// Local implements LocalStore with a single JSON file holding the
// anonymous snapshot. Loading never fails: a missing or corrupt file
// degrades to an empty snapshot. Saving is best-effort: write failures
// are logged and swallowed so a failing local cache write never blocks
// the caller.
type Local struct {
	mu       sync.Mutex
	filePath string
	snapshot model.Snapshot
}

var _ LocalStore = (*Local)(nil)

// NewLocal opens the snapshot slot in the given directory, creating the
// directory if needed and loading any existing snapshot.
func NewLocal(dir string) *Local {
	s := &Local{
		filePath: filepath.Join(dir, SnapshotFileName),
	}
	s.load()
	return s
}

func (s *Local) load() {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		// Missing file means a fresh anonymous session
		if !os.IsNotExist(err) {
			logging.Default().Warn("failed to read local snapshot, starting empty",
				"path", s.filePath, "error", err)
		}
		return
	}

	if err := json.Unmarshal(data, &s.snapshot); err != nil {
		logging.Default().Warn("failed to parse local snapshot, starting empty",
			"path", s.filePath, "error", err)
		s.snapshot = model.Snapshot{}
	}
}

// save rewrites the whole snapshot. Must be called with s.mu held.
func (s *Local) save(ctx context.Context) {
	data, err := json.Marshal(&s.snapshot)
	if err != nil {
		logging.From(ctx).Warn("failed to marshal local snapshot", "error", err)
		return
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		logging.From(ctx).Warn("failed to create snapshot directory",
			"path", s.filePath, "error", err)
		return
	}

	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		logging.From(ctx).Warn("failed to write local snapshot",
			"path", s.filePath, "error", err)
	}
}

// Snapshot returns a shallow copy of the current snapshot
func (s *Local) Snapshot() *model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := make([]*model.TimelineEvent, len(s.snapshot.Events))
	copy(events, s.snapshot.Events)
	messages := make([]*model.ChatMessage, len(s.snapshot.Messages))
	copy(messages, s.snapshot.Messages)

	return &model.Snapshot{Events: events, Messages: messages}
}

// Clear drops the snapshot and removes the underlying file
func (s *Local) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = model.Snapshot{}
	if err := os.Remove(s.filePath); err != nil && !os.IsNotExist(err) {
		return goerr.Wrap(err, "failed to remove local snapshot", goerr.T(model.TagStorage), goerr.V("path", s.filePath))
	}

	return nil
}

func (s *Local) ListEvents(ctx context.Context, timelineID model.TimelineID) ([]*model.TimelineEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := make([]*model.TimelineEvent, 0, len(s.snapshot.Events))
	for _, e := range s.snapshot.Events {
		if e.TimelineID == timelineID {
			events = append(events, e)
		}
	}

	model.SortEvents(events)
	return events, nil
}

func (s *Local) InsertEvent(ctx context.Context, event *model.TimelineEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Events = append(s.snapshot.Events, event)
	s.save(ctx)
	return nil
}

func (s *Local) UpdateEvent(ctx context.Context, event *model.TimelineEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.snapshot.Events {
		if e.ID == event.ID {
			s.snapshot.Events[i] = event
			s.save(ctx)
			return nil
		}
	}

	return goerr.New("event not found in local snapshot", goerr.T(model.TagNotFound), goerr.V("event_id", event.ID))
}

func (s *Local) DeleteEvent(ctx context.Context, id model.EventID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.snapshot.Events {
		if e.ID == id {
			s.snapshot.Events = append(s.snapshot.Events[:i], s.snapshot.Events[i+1:]...)
			s.save(ctx)
			return nil
		}
	}

	// Idempotent: deleting an absent event is fine
	return nil
}

func (s *Local) ListMessages(ctx context.Context, timelineID model.TimelineID) ([]*model.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := make([]*model.ChatMessage, 0, len(s.snapshot.Messages))
	for _, m := range s.snapshot.Messages {
		if m.TimelineID == timelineID {
			messages = append(messages, m)
		}
	}

	return messages, nil
}

func (s *Local) InsertMessage(ctx context.Context, message *model.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Messages = append(s.snapshot.Messages, message)
	s.save(ctx)
	return nil
}

func (s *Local) DeleteAllMessages(ctx context.Context, timelineID model.TimelineID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.snapshot.Messages[:0]
	for _, m := range s.snapshot.Messages {
		if m.TimelineID != timelineID {
			kept = append(kept, m)
		}
	}
	s.snapshot.Messages = kept
	s.save(ctx)
	return nil
}
