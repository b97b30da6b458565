package telegram

import (
	"context"
	"strconv"

	"github.com/m3rciful/weatherbot/core/telegram/middleware"
	tgsender "github.com/m3rciful/weatherbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// BotAPI is the subset of *tele.Bot used by Transport.
type BotAPI interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
	Respond(c *tele.Callback, resp ...*tele.CallbackResponse) error
}

// Transport sends, edits and answers in legacy Markdown mode. Calls run
// synchronously through the dispatcher so transient network failures are
// retried and the caller still gets the result.
type Transport struct {
	bot        BotAPI
	dispatcher *tgsender.Dispatcher
}

// NewTransport builds a Transport. A nil dispatcher calls the bot directly.
func NewTransport(bot BotAPI, dispatcher *tgsender.Dispatcher) *Transport {
	return &Transport{bot: bot, dispatcher: dispatcher}
}

// IsNotModified reports whether err is Telegram's "message is not modified".
func IsNotModified(err error) bool {
	return tgsender.IsNotModified(err)
}

func (t *Transport) do(ctx context.Context, action, endpoint string, run func() error) error {
	if t.dispatcher == nil {
		return run()
	}
	return t.dispatcher.Do(ctx, action, endpoint, run)
}

func markdown(markup *tele.ReplyMarkup) *tele.SendOptions {
	return &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: markup}
}

// Send posts a new message and returns its id.
func (t *Transport) Send(ctx context.Context, chatID int64, text string, markup *tele.ReplyMarkup) (int, error) {
	var id int
	err := t.do(ctx, "send.md", "sendMessage", func() error {
		msg, err := t.bot.Send(tele.ChatID(chatID), text, markdown(markup))
		if err != nil {
			return err
		}
		id = msg.ID
		return nil
	})
	if err == nil {
		middleware.CountersFrom(ctx).Add(markup != nil)
	}
	return id, err
}

// Edit replaces the text and markup of an existing message.
func (t *Transport) Edit(ctx context.Context, chatID int64, messageID int, text string, markup *tele.ReplyMarkup) error {
	target := &tele.StoredMessage{MessageID: strconv.Itoa(messageID), ChatID: chatID}
	err := t.do(ctx, "edit.md", "editMessageText", func() error {
		_, err := t.bot.Edit(target, text, markdown(markup))
		return err
	})
	if err == nil {
		middleware.CountersFrom(ctx).Add(markup != nil)
	}
	return err
}

// Answer answers a callback query with an optional notice or alert.
func (t *Transport) Answer(ctx context.Context, callbackID, text string, alert bool) error {
	cb := &tele.Callback{ID: callbackID}
	return t.do(ctx, "callback.answer", "answerCallbackQuery", func() error {
		return t.bot.Respond(cb, &tele.CallbackResponse{Text: text, ShowAlert: alert})
	})
}
