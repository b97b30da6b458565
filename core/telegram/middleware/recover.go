package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/m3rciful/weatherbot/core/logger"
	tghelpers "github.com/m3rciful/weatherbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RecoverMiddleware catches panics in handlers and prevents the bot from crashing.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return RecoverWith(nil)(next)
}

// RecoverWith returns a recover middleware that hands the recovered panic,
// converted to an error, to onPanic so the user still gets a reply.
func RecoverWith(onPanic func(c tele.Context, err error) error) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				panicErr := fmt.Errorf("panic: %v", r)
				logger.Error(tghelpers.BuildContext(c), "tg", "tg.panic",
					slog.String("err", panicErr.Error()),
					slog.String("stack", string(debug.Stack())),
				)
				if onPanic != nil {
					err = onPanic(c, panicErr)
				}
			}()
			return next(c)
		}
	}
}
