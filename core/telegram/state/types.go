package state

import (
	"time"

	tele "gopkg.in/telebot.v4"
)

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// Session is a snapshot of a user's conversation state.
type Session struct {
	State  State
	Values map[string]any
}

// Manager orchestrates user sessions and FSM state transitions.
type Manager interface {
	Get(userID int64) Session
	Clear(userID int64)

	// Dialog state
	SetState(userID int64, st State)
	GetState(userID int64) State
	ClearState(userID int64)
	// SwapState sets next and returns the state it replaced in one step.
	SwapState(userID int64, next State) State

	SetValue(userID int64, key string, value any)
	Value(userID int64, key string) (any, bool)
	DeleteValue(userID int64, key string)

	// Per-chat message tracking
	TrackMessage(chatID int64, messageID int)
	TakeMessage(chatID int64) (int, bool)
	// ReleaseMessage forgets messageID only if it is still the tracked one.
	ReleaseMessage(chatID int64, messageID int) bool

	// Defer runs fn after delay unless another Defer with the same key or
	// CancelDeferred supersedes it first.
	Defer(userID int64, key string, delay time.Duration, fn func())
	CancelDeferred(userID int64, key string) bool

	Handle(st State, h tele.HandlerFunc)
	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}
