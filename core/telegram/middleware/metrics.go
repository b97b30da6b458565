package middleware

import (
	"context"
	"sync/atomic"

	tghelpers "github.com/m3rciful/weatherbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const countersKey = "metrics"

type countersCtxKey struct{}

// Counters tracks outbound messages produced while handling one update.
type Counters struct {
	messages atomic.Int32
	keyboard atomic.Bool
}

// Add records one sent or edited message.
func (m *Counters) Add(withKeyboard bool) {
	if m == nil {
		return
	}
	m.messages.Add(1)
	if withKeyboard {
		m.keyboard.Store(true)
	}
}

// Snapshot returns the message count and whether any message carried a keyboard.
func (m *Counters) Snapshot() (int, bool) {
	if m == nil {
		return 0, false
	}
	return int(m.messages.Load()), m.keyboard.Load()
}

// WithCounters attaches counters to ctx.
func WithCounters(ctx context.Context, m *Counters) context.Context {
	return context.WithValue(ctx, countersCtxKey{}, m)
}

// CountersFrom returns the counters attached to ctx, or nil.
func CountersFrom(ctx context.Context) *Counters {
	if ctx == nil {
		return nil
	}
	m, _ := ctx.Value(countersCtxKey{}).(*Counters)
	return m
}

// MessageMetricsMiddleware attaches fresh counters to the update so outbound
// calls made through the transport are counted in the handler summary.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		m := &Counters{}
		c.Set(countersKey, m)
		tghelpers.StoreContext(c, WithCounters(tghelpers.BuildContext(c), m))
		return next(c)
	}
}

// GetCounters reads message count and keyboard presence for the update.
func GetCounters(c tele.Context) (int, bool) {
	m, _ := c.Get(countersKey).(*Counters)
	return m.Snapshot()
}
