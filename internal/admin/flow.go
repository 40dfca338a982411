// Package admin implements the conversation that lets allow-listed admins
// replace the reply template. Each (chat, user) pair has its own session:
// Idle -> AwaitingText -> Idle. Sessions expire after a configured TTL.
package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/edgard/percentbot/internal/database"
	"github.com/edgard/percentbot/internal/percent"
)

// ErrUnauthorized is returned when a caller outside the allow-list invokes
// an admin operation.
var ErrUnauthorized = errors.New("user is not an admin")

// State is the conversation state of one session.
type State int

// Conversation states.
const (
	StateIdle State = iota
	StateAwaitingText
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingText:
		return "awaiting_text"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// SessionKey identifies a conversation.
type SessionKey struct {
	ChatID int64
	UserID int64
}

// SettingsStore is the subset of database.Store the flow needs.
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
	UpsertSetting(ctx context.Context, key, value string) error
}

type session struct {
	state    State
	deadline time.Time
}

// Flow owns the admin sessions.
type Flow struct {
	store  SettingsStore
	admins map[int64]struct{}
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[SessionKey]session
}

// NewFlow creates a Flow. now may be nil to use time.Now.
func NewFlow(store SettingsStore, adminIDs []int64, ttl time.Duration, now func() time.Time, logger *slog.Logger) *Flow {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if now == nil {
		now = time.Now
	}
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &Flow{
		store:    store,
		admins:   admins,
		ttl:      ttl,
		now:      now,
		logger:   logger.With("component", "admin_flow"),
		sessions: make(map[SessionKey]session),
	}
}

// IsAdmin reports whether userID is allow-listed.
func (f *Flow) IsAdmin(userID int64) bool {
	_, ok := f.admins[userID]
	return ok
}

// OpenPanel is the entry point of the conversation. It does not change
// state.
func (f *Flow) OpenPanel(userID int64) error {
	if !f.IsAdmin(userID) {
		f.logger.Warn("Unauthorized admin panel access attempt", "user_id", userID)
		return ErrUnauthorized
	}
	return nil
}

// CurrentTemplate returns the stored template to an admin.
func (f *Flow) CurrentTemplate(ctx context.Context, userID int64) (string, error) {
	if !f.IsAdmin(userID) {
		f.logger.WarnContext(ctx, "Unauthorized template read attempt", "user_id", userID)
		return "", ErrUnauthorized
	}
	tmpl, _, err := f.store.GetSetting(ctx, database.SettingPercentageText)
	if err != nil {
		return "", fmt.Errorf("failed to read template: %w", err)
	}
	return tmpl, nil
}

// BeginEdit moves the session to AwaitingText.
func (f *Flow) BeginEdit(key SessionKey) error {
	if !f.IsAdmin(key.UserID) {
		f.logger.Warn("Unauthorized edit attempt", "user_id", key.UserID, "chat_id", key.ChatID)
		return ErrUnauthorized
	}

	f.mu.Lock()
	f.sessions[key] = session{state: StateAwaitingText, deadline: f.now().Add(f.ttl)}
	f.mu.Unlock()

	f.logger.Info("Admin started template edit", "user_id", key.UserID, "chat_id", key.ChatID, "ttl", f.ttl)
	return nil
}

// State returns the current state of a session. Expired sessions are Idle.
func (f *Flow) State(key SessionKey) State {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[key]
	if !ok || f.expired(s) {
		return StateIdle
	}
	return s.state
}

// Submit treats text as the new template when the session awaits one.
// handled is false when the session is not awaiting text, in which case the
// caller should process the message normally. Whatever the outcome, a
// handled session returns to Idle. Invalid templates leave the store
// untouched and return percent.ErrInvalidTemplate.
func (f *Flow) Submit(ctx context.Context, key SessionKey, text string) (handled bool, err error) {
	f.mu.Lock()
	s, ok := f.sessions[key]
	if ok {
		delete(f.sessions, key)
	}
	f.mu.Unlock()

	if !ok || s.state != StateAwaitingText {
		return false, nil
	}
	if f.expired(s) {
		f.logger.InfoContext(ctx, "Ignoring text for expired admin session", "user_id", key.UserID, "chat_id", key.ChatID)
		return false, nil
	}

	if err := percent.ValidateTemplate(text); err != nil {
		f.logger.InfoContext(ctx, "Rejected template without placeholder", "user_id", key.UserID)
		return true, err
	}

	if err := f.store.UpsertSetting(ctx, database.SettingPercentageText, text); err != nil {
		return true, fmt.Errorf("failed to save template: %w", err)
	}

	f.logger.InfoContext(ctx, "Template updated", "user_id", key.UserID, "length", len(text))
	return true, nil
}

// Cancel returns the session to Idle. It reports whether a pending edit was
// dropped.
func (f *Flow) Cancel(key SessionKey) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[key]
	delete(f.sessions, key)
	return ok && !f.expired(s)
}

// PruneExpired drops expired sessions and returns how many were removed.
func (f *Flow) PruneExpired() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	removed := 0
	for key, s := range f.sessions {
		if f.expired(s) {
			delete(f.sessions, key)
			removed++
		}
	}
	return removed
}

// Pending returns the number of live sessions.
func (f *Flow) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

func (f *Flow) expired(s session) bool {
	return !f.now().Before(s.deadline)
}
