package timeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/craigdossantos/onceline/pkg/assistant"
	"github.com/craigdossantos/onceline/pkg/model"
	"github.com/craigdossantos/onceline/pkg/repository"
	"github.com/craigdossantos/onceline/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// FallbackReply is appended to the chat thread when the extraction
// round trip fails for any reason.
const FallbackReply = "Sorry, something went wrong. Please try again."

// SendMessage persists the user's turn, runs the extraction round trip
// and installs the assistant's reply plus any proposed events.
//
// It never returns an assistant failure to the caller: every failure
// mode resolves into either a normal state update or a fallback
// assistant message, because a chat failure must not break the
// surrounding UI loop. Empty input is rejected silently with no state
// change and no storage calls.
func (u *UseCase) SendMessage(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	store, tl := u.activeStore()
	if store == nil {
		return nil
	}
	if u.assistant == nil {
		return goerr.New("assistant is not configured", goerr.T(model.TagValidation))
	}

	u.mu.Lock()
	u.isSending = true
	u.mu.Unlock()

	// The sending flag must clear on every path, including panics
	// mid-flow
	defer func() {
		u.mu.Lock()
		u.isSending = false
		u.mu.Unlock()
	}()

	logger := logging.From(ctx)

	userMsg := model.NewChatMessage(tl.ID, model.RoleUser, text, nil)
	if err := store.InsertMessage(ctx, userMsg); err != nil {
		// Nothing was said yet, so there is nothing to apologize for
		logger.Warn("failed to persist user message", "error", err)
		return nil
	}

	u.mu.Lock()
	u.messages = append(u.messages, userMsg)
	history := u.buildHistory()
	eventContext := u.buildEventContext(ctx)
	u.mu.Unlock()

	resp, err := u.assistant.Converse(ctx, history, eventContext)
	if err != nil {
		logger.Warn("assistant round trip failed", "error", err)
		u.appendFallback(ctx, store, tl.ID)
		return nil
	}

	// Insert proposed events sequentially so each gets a real ID and
	// joins the sorted collection in proposal order
	createdIDs := make([]model.EventID, 0, len(resp.Events))
	for _, draft := range resp.Events {
		event, err := u.AddEvent(ctx, draft)
		if err != nil {
			logger.Warn("failed to add extracted event", "title", draft.Title, "error", err)
			u.appendFallback(ctx, store, tl.ID)
			return nil
		}
		createdIDs = append(createdIDs, event.ID)
	}

	assistantMsg := model.NewChatMessage(tl.ID, model.RoleAssistant, resp.Message, createdIDs)
	if err := store.InsertMessage(ctx, assistantMsg); err != nil {
		logger.Warn("failed to persist assistant message", "error", err)
		u.appendFallback(ctx, store, tl.ID)
		return nil
	}

	u.mu.Lock()
	u.messages = append(u.messages, assistantMsg)
	u.mu.Unlock()

	return nil
}

// ClearMessages bulk-clears the chat history of the active timeline
func (u *UseCase) ClearMessages(ctx context.Context) error {
	store, tl := u.activeStore()
	if store == nil {
		return goerr.New("no active timeline", goerr.T(model.TagValidation))
	}

	if err := store.DeleteAllMessages(ctx, tl.ID); err != nil {
		return err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.messages = nil
	return nil
}

// RenameTimeline renames the active timeline in place
func (u *UseCase) RenameTimeline(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return goerr.New("timeline name must not be empty", goerr.T(model.TagValidation))
	}

	u.mu.Lock()
	tl := u.timeline
	mode := u.mode
	u.mu.Unlock()
	if tl == nil {
		return goerr.New("no active timeline", goerr.T(model.TagValidation))
	}

	if mode == model.ModeRemote {
		if err := u.remote.UpdateTimelineName(ctx, tl.ID, name); err != nil {
			return err
		}
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.timeline != nil {
		copied := *u.timeline
		copied.Name = name
		u.timeline = &copied
	}
	return nil
}

// buildHistory extracts role+content pairs from the current messages.
// Must be called with u.mu held.
func (u *UseCase) buildHistory() []assistant.Turn {
	history := make([]assistant.Turn, 0, len(u.messages))
	for _, m := range u.messages {
		history = append(history, assistant.Turn{Role: m.Role, Content: m.Content})
	}
	return history
}

// buildEventContext serializes the shareable events as compact context
// lines for the assistant. Must be called with u.mu held.
func (u *UseCase) buildEventContext(ctx context.Context) string {
	shared := make([]*model.TimelineEvent, 0, len(u.events))
	for _, e := range u.events {
		if u.privacy.Share(ctx, e) {
			shared = append(shared, e)
		}
	}

	if len(shared) == 0 {
		return "\n\nThis is a new timeline with no events yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n\nTimeline so far (%d events):\n", len(shared))
	for i, e := range shared {
		date := e.StartDate
		if date == "" {
			date = "date unknown"
		}
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s (%s) [%s]", e.Title, date, e.Category)
	}
	return b.String()
}

// appendFallback persists and installs the fixed apology message.
// Failures here are logged and dropped: the fallback is best-effort by
// definition.
func (u *UseCase) appendFallback(ctx context.Context, store repository.Store, timelineID model.TimelineID) {
	msg := model.NewChatMessage(timelineID, model.RoleAssistant, FallbackReply, nil)
	if err := store.InsertMessage(ctx, msg); err != nil {
		logging.From(ctx).Warn("failed to persist fallback message", "error", err)
	}

	u.mu.Lock()
	u.messages = append(u.messages, msg)
	u.mu.Unlock()
}
