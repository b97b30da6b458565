package state

import (
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/m3rciful/weatherbot/core/logger"
	tghelpers "github.com/m3rciful/weatherbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

type session struct {
	state  State
	values map[string]any
	timers map[string]*time.Timer
}

type memoryManager struct {
	mu       sync.RWMutex
	sessions map[int64]*session
	messages map[int64]int
	handlers map[State]tele.HandlerFunc
}

// NewMemoryManager constructs an in-memory Manager. Sessions live for the
// lifetime of the process.
func NewMemoryManager() Manager {
	return &memoryManager{
		sessions: make(map[int64]*session),
		messages: make(map[int64]int),
		handlers: make(map[State]tele.HandlerFunc),
	}
}

// ensure returns the user's session, creating an idle one. Callers hold mu.
func (m *memoryManager) ensure(userID int64) *session {
	s, ok := m.sessions[userID]
	if !ok {
		s = &session{state: StateIdle, values: make(map[string]any)}
		m.sessions[userID] = s
	}
	return s
}

// Get returns a copy of the user's session, or an idle one if none exists.
func (m *memoryManager) Get(userID int64) Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	if !ok {
		return Session{State: StateIdle, Values: map[string]any{}}
	}
	return Session{State: s.state, Values: maps.Clone(s.values)}
}

// Clear removes the entire session for a user and stops its pending timers.
func (m *memoryManager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		for _, t := range s.timers {
			t.Stop()
		}
		delete(m.sessions, userID)
	}
}

func (m *memoryManager) SetState(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensure(userID).state = st
}

// GetState returns the current FSM state of a user, or StateIdle if none exists.
func (m *memoryManager) GetState(userID int64) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[userID]; ok {
		return s.state
	}
	return StateIdle
}

func (m *memoryManager) ClearState(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		s.state = StateIdle
	}
}

func (m *memoryManager) SwapState(userID int64, next State) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.ensure(userID)
	prev := s.state
	s.state = next
	return prev
}

func (m *memoryManager) SetValue(userID int64, key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensure(userID).values[key] = value
}

func (m *memoryManager) Value(userID int64, key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil, false
	}
	v, ok := s.values[key]
	return v, ok
}

func (m *memoryManager) DeleteValue(userID int64, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		delete(s.values, key)
	}
}

func (m *memoryManager) TrackMessage(chatID int64, messageID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[chatID] = messageID
}

func (m *memoryManager) TakeMessage(chatID int64) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.messages[chatID]
	if ok {
		delete(m.messages, chatID)
	}
	return id, ok
}

func (m *memoryManager) ReleaseMessage(chatID int64, messageID int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.messages[chatID]; !ok || id != messageID {
		return false
	}
	delete(m.messages, chatID)
	return true
}

func (m *memoryManager) Defer(userID int64, key string, delay time.Duration, fn func()) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.ensure(userID)
	if s.timers == nil {
		s.timers = make(map[string]*time.Timer)
	}
	if prev, ok := s.timers[key]; ok {
		prev.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		m.mu.Lock()
		cur, ok := m.sessions[userID]
		current := ok && cur.timers[key] == t
		if current {
			delete(cur.timers, key)
		}
		m.mu.Unlock()
		if current {
			fn()
		}
	})
	s.timers[key] = t
}

func (m *memoryManager) CancelDeferred(userID int64, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return false
	}
	t, ok := s.timers[key]
	if !ok {
		return false
	}
	delete(s.timers, key)
	return t.Stop()
}

// Handle associates a state with its handler. A nil handler unregisters it.
func (m *memoryManager) Handle(st State, h tele.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h == nil {
		delete(m.handlers, st)
		return
	}
	m.handlers[st] = h
}

// InProgress reports whether the user is in a non-idle state that has a handler.
func (m *memoryManager) InProgress(userID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	if !ok || s.state == StateIdle {
		return false
	}
	_, ok = m.handlers[s.state]
	return ok
}

// ManagerHandler executes the handler registered for the user's current state, if any.
func (m *memoryManager) ManagerHandler(c tele.Context) error {
	if c.Sender() == nil {
		return nil
	}
	current := m.GetState(c.Sender().ID)
	m.mu.RLock()
	handler, ok := m.handlers[current]
	m.mu.RUnlock()

	logger.Debug(tghelpers.BuildContext(c), "tg", "fsm.manager",
		slog.String("state", string(current)),
		slog.Bool("handled", ok),
	)
	if !ok {
		return nil
	}
	return handler(c)
}
