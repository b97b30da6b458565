package session

import (
	"testing"
	"time"

	"github.com/m3rciful/weatherbot/core/telegram/state"
)

func TestCityDefaults(t *testing.T) {
	s := New(nil, "")
	if got := s.City(1); got != DefaultCity {
		t.Fatalf("City = %q", got)
	}
	s = New(nil, " Lviv ")
	if got := s.City(1); got != "Lviv" {
		t.Fatalf("configured default = %q", got)
	}
	s.SetCity(1, "Odesa")
	if got := s.City(1); got != "Odesa" {
		t.Fatalf("City after SetCity = %q", got)
	}
	if got := s.City(2); got != "Lviv" {
		t.Fatalf("other user = %q", got)
	}
}

func TestAwaitingCityConsumedOnce(t *testing.T) {
	s := New(state.NewMemoryManager(), "")
	s.SetAwaitingCityInput(1, true)
	if !s.AwaitingCityInput(1) {
		t.Fatal("expected awaiting")
	}
	if !s.ConsumeAwaitingCity(1) {
		t.Fatal("first consume must succeed")
	}
	if s.ConsumeAwaitingCity(1) {
		t.Fatal("second consume must fail")
	}
	if s.AwaitingCityInput(1) {
		t.Fatal("flag must be cleared")
	}

	s.SetAwaitingCityInput(1, true)
	s.SetAwaitingCityInput(1, false)
	if s.ConsumeAwaitingCity(1) {
		t.Fatal("cleared flag must not be consumed")
	}
}

func TestLoadingTracking(t *testing.T) {
	s := New(nil, "")
	s.TrackLoading(10, 1)
	s.TrackLoading(10, 2)
	if id, ok := s.TakeLoading(10); !ok || id != 2 {
		t.Fatalf("TakeLoading = %d, %v", id, ok)
	}
	if _, ok := s.TakeLoading(10); ok {
		t.Fatal("entry must be cleared")
	}
	s.TrackLoading(10, 3)
	if s.ReleaseLoading(10, 2) || !s.ReleaseLoading(10, 3) {
		t.Fatal("release must compare ids")
	}
}

func TestConfirmationSupersede(t *testing.T) {
	s := New(nil, "")
	got := make(chan string, 2)
	s.ScheduleConfirmation(1, 10*time.Millisecond, func() { got <- "Kyiv" })
	s.ScheduleConfirmation(1, 10*time.Millisecond, func() { got <- "Lviv" })

	select {
	case city := <-got:
		if city != "Lviv" {
			t.Fatalf("confirmed %q", city)
		}
	case <-time.After(time.Second):
		t.Fatal("no confirmation")
	}
	select {
	case city := <-got:
		t.Fatalf("superseded confirmation ran for %q", city)
	case <-time.After(50 * time.Millisecond):
	}
	if s.CancelConfirmation(1) {
		t.Fatal("nothing left to cancel")
	}
}
