package telegram

import (
	"net"
	"strconv"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/weatherbot/core/config"
	"github.com/m3rciful/weatherbot/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

const (
	RunModeWebhook  = coreconfig.RunModeWebhook
	RunModeLongpoll = coreconfig.RunModeLongpoll

	defaultLongPollTimeout = 10 * time.Second

	pollHeaderSlack = 10 * time.Second
	pollClientSlack = 20 * time.Second
)

// WebhookOptions declares webhook listener settings.
type WebhookOptions struct {
	Listen string
	Port   int
	URL    string
}

// PollerOptions configures BuildPoller.
type PollerOptions struct {
	RunMode                string
	LongPollTimeoutSeconds int
	Webhook                WebhookOptions
}

// BuildPoller returns a webhook poller for webhook mode and a long poller
// for anything else.
func BuildPoller(opts PollerOptions) tele.Poller {
	if strings.EqualFold(strings.TrimSpace(opts.RunMode), RunModeWebhook) {
		return &tele.Webhook{
			Listen:   net.JoinHostPort(opts.Webhook.Listen, strconv.Itoa(opts.Webhook.Port)),
			Endpoint: &tele.WebhookEndpoint{PublicURL: opts.Webhook.URL},
		}
	}

	timeout := defaultLongPollTimeout
	if opts.LongPollTimeoutSeconds > 0 {
		timeout = time.Duration(opts.LongPollTimeoutSeconds) * time.Second
	}
	return &tele.LongPoller{Timeout: timeout}
}

// ClientOptionsFor sizes the bot HTTP client for the poller. Telegram holds an
// idle getUpdates open for the whole poll timeout, so header and request
// timeouts of a long poller must outlast it.
func ClientOptionsFor(p tele.Poller) netutil.ClientOptions {
	lp, ok := p.(*tele.LongPoller)
	if !ok {
		return netutil.ClientOptions{}
	}
	return netutil.ClientOptions{
		ResponseTimeout: lp.Timeout + pollHeaderSlack,
		Timeout:         lp.Timeout + pollClientSlack,
	}
}
