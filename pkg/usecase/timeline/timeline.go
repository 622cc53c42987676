package timeline

import (
	"sync"

	"github.com/craigdossantos/onceline/pkg/adapter"
	"github.com/craigdossantos/onceline/pkg/assistant"
	"github.com/craigdossantos/onceline/pkg/model"
	"github.com/craigdossantos/onceline/pkg/policy"
	"github.com/craigdossantos/onceline/pkg/repository"
)

// UseCase is the reconciliation engine: it owns the canonical in-memory
// timeline state, selects the storage adapter by mode, and mediates the
// one-way local-to-remote migration on sign-in.
//
// The mutex guards the in-memory collections only and is never held
// across an adapter or assistant round trip. Every operation re-reads
// current state after a suspension point before mutating, so concurrent
// operations interleave without overwriting each other's deltas.
type UseCase struct {
	local     repository.LocalStore
	remote    repository.RemoteStore
	assistant assistant.Client
	storage   adapter.Storage
	privacy   *policy.Privacy

	mu                sync.Mutex
	mode              model.Mode
	timeline          *model.Timeline
	events            []*model.TimelineEvent
	messages          []*model.ChatMessage
	isLoading         bool
	isSending         bool
	selectedEventID   model.EventID
	newlyAddedEventID model.EventID
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithRemote attaches the authoritative remote store
func WithRemote(remote repository.RemoteStore) Option {
	return func(u *UseCase) {
		u.remote = remote
	}
}

// WithAssistant attaches the extraction client used by SendMessage
func WithAssistant(client assistant.Client) Option {
	return func(u *UseCase) {
		u.assistant = client
	}
}

// WithStorage attaches blob storage for event images
func WithStorage(storage adapter.Storage) Option {
	return func(u *UseCase) {
		u.storage = storage
	}
}

// WithPrivacy overrides the default privacy rule for assistant context
func WithPrivacy(p *policy.Privacy) Option {
	return func(u *UseCase) {
		u.privacy = p
	}
}

// New creates a reconciliation engine. The local store is always
// required; the remote store, assistant and image storage are attached
// by the composition root as needed.
func New(local repository.LocalStore, opts ...Option) *UseCase {
	u := &UseCase{
		local:   local,
		privacy: policy.Default(),
	}

	for _, opt := range opts {
		opt(u)
	}

	return u
}

// store returns the adapter backing the current mode. Must be called
// with u.mu held.
func (u *UseCase) store() repository.Store {
	if u.mode == model.ModeRemote {
		return u.remote
	}
	return u.local
}

// activeStore snapshots the adapter and timeline ID under the lock so
// callers can release it before doing I/O
func (u *UseCase) activeStore() (repository.Store, *model.Timeline) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.timeline == nil {
		return nil, nil
	}
	return u.store(), u.timeline
}
