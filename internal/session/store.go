// Package session keeps the per-user bot state: the chosen city, whether a
// typed city is expected next, and the loading placeholder of each chat.
package session

import (
	"strings"
	"time"

	"github.com/m3rciful/weatherbot/core/telegram/state"
)

const (
	// StateAwaitingCity means the next free-text message is a city name.
	StateAwaitingCity state.State = "awaiting_city"

	// DefaultCity is used when neither the user nor the config chose one.
	DefaultCity = "Kyiv"

	keyCity         = "city"
	keyConfirmation = "confirmation"
)

// Store is the bot's view of state.Manager. All methods are total.
type Store struct {
	mgr         state.Manager
	defaultCity string
}

// New wraps mgr. An empty defaultCity falls back to DefaultCity; a nil mgr
// gets a fresh in-memory manager.
func New(mgr state.Manager, defaultCity string) *Store {
	if mgr == nil {
		mgr = state.NewMemoryManager()
	}
	defaultCity = strings.TrimSpace(defaultCity)
	if defaultCity == "" {
		defaultCity = DefaultCity
	}
	return &Store{mgr: mgr, defaultCity: defaultCity}
}

// Manager exposes the backing manager for FSM routing.
func (s *Store) Manager() state.Manager { return s.mgr }

// City returns the user's city or the default one.
func (s *Store) City(userID int64) string {
	if v, ok := s.mgr.Value(userID, keyCity); ok {
		if city, _ := v.(string); city != "" {
			return city
		}
	}
	return s.defaultCity
}

// SetCity stores the user's chosen city.
func (s *Store) SetCity(userID int64, city string) {
	s.mgr.SetValue(userID, keyCity, city)
}

// AwaitingCityInput reports whether the next text is a typed city.
func (s *Store) AwaitingCityInput(userID int64) bool {
	return s.mgr.GetState(userID) == StateAwaitingCity
}

// SetAwaitingCityInput toggles the typed-city state of the user.
func (s *Store) SetAwaitingCityInput(userID int64, awaiting bool) {
	if awaiting {
		s.mgr.SetState(userID, StateAwaitingCity)
		return
	}
	s.mgr.ClearState(userID)
}

// ConsumeAwaitingCity resets the user to idle and reports whether a typed
// city was expected. Only one caller observes true per SetAwaitingCityInput.
func (s *Store) ConsumeAwaitingCity(userID int64) bool {
	return s.mgr.SwapState(userID, state.StateIdle) == StateAwaitingCity
}

// TrackLoading records the placeholder of chatID, superseding any earlier one.
func (s *Store) TrackLoading(chatID int64, messageID int) {
	s.mgr.TrackMessage(chatID, messageID)
}

// TakeLoading returns and forgets the placeholder of chatID.
func (s *Store) TakeLoading(chatID int64) (int, bool) {
	return s.mgr.TakeMessage(chatID)
}

// ReleaseLoading forgets messageID if it is still the placeholder of chatID.
func (s *Store) ReleaseLoading(chatID int64, messageID int) bool {
	return s.mgr.ReleaseMessage(chatID, messageID)
}

// ScheduleConfirmation runs fn after delay, replacing a pending one.
func (s *Store) ScheduleConfirmation(userID int64, delay time.Duration, fn func()) {
	s.mgr.Defer(userID, keyConfirmation, delay, fn)
}

// CancelConfirmation drops a pending confirmation and reports whether one existed.
func (s *Store) CancelConfirmation(userID int64) bool {
	return s.mgr.CancelDeferred(userID, keyConfirmation)
}
