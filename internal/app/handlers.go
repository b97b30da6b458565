package app

import (
	"errors"

	"github.com/m3rciful/weatherbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/weatherbot/core/telegram/helpers"
	"github.com/m3rciful/weatherbot/core/telegram/ui"
	"github.com/m3rciful/weatherbot/internal/dialogue"

	tele "gopkg.in/telebot.v4"
)

const rateLimitedNotice = "⏳ Забагато запитів. Спробуйте за мить."

var (
	_ ui.FallbackProvider = (*App)(nil)

	errNotReady = errors.New("app: controller not ready")
)

func (a *App) controller() (*dialogue.Controller, error) {
	if a.ctrl == nil {
		return nil, errNotReady
	}
	return a.ctrl, nil
}

func textMessage(c tele.Context) dialogue.TextMessage {
	msg := dialogue.TextMessage{Text: c.Text()}
	if u := c.Sender(); u != nil {
		msg.UserID = u.ID
		msg.FirstName = u.FirstName
	}
	if chat := c.Chat(); chat != nil {
		msg.ChatID = chat.ID
	}
	return msg
}

func buttonPress(c tele.Context) dialogue.ButtonPress {
	cb := c.Callback()
	key, payload := callbacks.ParseCallbackData(cb)
	press := dialogue.ButtonPress{Action: dialogue.ParseAction(key), Payload: payload}
	if cb != nil {
		press.CallbackID = cb.ID
		if cb.Message != nil {
			press.MessageID = cb.Message.ID
		}
	}
	if u := c.Sender(); u != nil {
		press.UserID = u.ID
		press.FirstName = u.FirstName
	}
	if chat := c.Chat(); chat != nil {
		press.ChatID = chat.ID
	}
	return press
}

func (a *App) handleText(c tele.Context) error {
	ctrl, err := a.controller()
	if err != nil {
		return err
	}
	return ctrl.HandleText(tghelpers.BuildContext(c), textMessage(c))
}

func (a *App) handleButton(c tele.Context) error {
	ctrl, err := a.controller()
	if err != nil {
		return err
	}
	return ctrl.HandleButton(tghelpers.BuildContext(c), buttonPress(c))
}

// UnknownText answers text that no command or state claimed.
func (a *App) UnknownText() tele.HandlerFunc { return a.handleText }

// UnknownDocument treats files and media like unrecognised text.
func (a *App) UnknownDocument() tele.HandlerFunc {
	return func(c tele.Context) error {
		ctrl, err := a.controller()
		if err != nil {
			return err
		}
		msg := textMessage(c)
		msg.Text = ""
		return ctrl.HandleText(tghelpers.BuildContext(c), msg)
	}
}

// UnknownCallback alerts on buttons whose key is not registered.
func (a *App) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		ctrl, err := a.controller()
		if err != nil {
			return err
		}
		press := buttonPress(c)
		press.Action = dialogue.ActionUnknown
		return ctrl.HandleButton(tghelpers.BuildContext(c), press)
	}
}

func (a *App) rateLimited(c tele.Context) error {
	return tghelpers.Notify(c, rateLimitedNotice, false)
}

func (a *App) recovered(c tele.Context, err error) error {
	ctrl, cerr := a.controller()
	if cerr != nil || c.Chat() == nil {
		return err
	}
	return ctrl.Fail(tghelpers.BuildContext(c), c.Chat().ID, err)
}
