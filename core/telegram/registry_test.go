package telegram

import (
	"errors"
	"testing"

	"github.com/m3rciful/weatherbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

type fakeCommandSetter struct {
	got []tele.Command
	err error
}

func (f *fakeCommandSetter) SetCommands(opts ...interface{}) error {
	if len(opts) > 0 {
		f.got, _ = opts[0].([]tele.Command)
	}
	return f.err
}

func noop(tele.Context) error { return nil }

func TestRegistryCommands(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "start"})
	reg.RegisterCommand("/help", commands.Command{Handler: noop, Description: "help", Aliases: []string{"h"}})
	reg.RegisterCommand("/debug", commands.Command{Handler: noop, Description: "debug", Hidden: true})
	reg.RegisterCommand("nope", commands.Command{Handler: noop, Description: "missing slash"})
	reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "duplicate"})

	visible := reg.ListCommands(true)
	if len(visible) != 2 || visible[0].Text != "/start" || visible[1].Text != "/help" {
		t.Fatalf("unexpected visible commands: %+v", visible)
	}
	if visible[0].Description != "start" {
		t.Fatalf("duplicate registration must not override: %+v", visible[0])
	}
	if got := reg.ListCommands(false); len(got) != 3 {
		t.Fatalf("expected hidden command in full list, got %d", len(got))
	}
	if key, _, ok := reg.LookupCommand("/h"); !ok || key != "/help" {
		t.Fatalf("alias lookup = %q, %v", key, ok)
	}
	if _, _, ok := reg.LookupCommand("USD"); ok {
		t.Fatal("plain text must not resolve to a command")
	}
}

func TestRegistryCallbacks(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterCallback("weather_3h", noop); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.RegisterCallback("weather_3h", noop); err == nil {
		t.Fatal("expected duplicate registration error")
	}
	if err := reg.RegisterCallback("", noop); err == nil {
		t.Fatal("expected error for empty key")
	}
	if _, ok := reg.GetCallback("weather_3h"); !ok {
		t.Fatal("callback not found")
	}
	if _, ok := reg.GetCallback("weather_9h"); ok {
		t.Fatal("unexpected callback")
	}
}

func TestInitBotCommands(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/weather", commands.Command{Handler: noop, Description: "Швидкий прогноз погоди ⚡"})
	setter := &fakeCommandSetter{}
	if err := InitBotCommands(setter, reg); err != nil {
		t.Fatalf("InitBotCommands: %v", err)
	}
	if len(setter.got) != 1 || setter.got[0].Text != "/weather" {
		t.Fatalf("unexpected published commands: %+v", setter.got)
	}

	setter.err = errors.New("unauthorized")
	if err := InitBotCommands(setter, reg); err == nil {
		t.Fatal("expected error")
	}
}
