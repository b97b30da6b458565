package dialogue

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m3rciful/weatherbot/internal/formatter"
	"github.com/m3rciful/weatherbot/internal/models"
	"github.com/m3rciful/weatherbot/internal/session"

	tele "gopkg.in/telebot.v4"
)

type call struct {
	op        string
	chatID    int64
	messageID int
	text      string
	markup    *tele.ReplyMarkup
	alert     bool
}

type fakeTransport struct {
	mu      sync.Mutex
	calls   []call
	nextID  int
	editErr error
	sendErr error
	sent    chan string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{nextID: 100, sent: make(chan string, 16)}
}

func (f *fakeTransport) Send(_ context.Context, chatID int64, text string, markup *tele.ReplyMarkup) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	f.nextID++
	f.calls = append(f.calls, call{op: "send", chatID: chatID, messageID: f.nextID, text: text, markup: markup})
	select {
	case f.sent <- text:
	default:
	}
	return f.nextID, nil
}

func (f *fakeTransport) Edit(_ context.Context, chatID int64, messageID int, text string, markup *tele.ReplyMarkup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{op: "edit", chatID: chatID, messageID: messageID, text: text, markup: markup})
	return f.editErr
}

func (f *fakeTransport) Answer(_ context.Context, _ string, text string, alert bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{op: "answer", text: text, alert: alert})
	return nil
}

func (f *fakeTransport) snapshot() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func (f *fakeTransport) ops() string {
	var ops []string
	for _, c := range f.snapshot() {
		ops = append(ops, c.op)
	}
	return strings.Join(ops, ",")
}

type fakeWeather struct {
	mu      sync.Mutex
	known   map[string]bool
	intents []models.Intent
	cities  []string
}

func (f *fakeWeather) Forecast(_ context.Context, intent models.Intent, city string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.intents = append(f.intents, intent)
	f.cities = append(f.cities, city)
	if f.known != nil && !f.known[city] {
		return formatter.Error(formatter.KindWeather, "city not found"), errors.New("city not found")
	}
	return "forecast " + intent.String() + " " + city, nil
}

type fakeRates struct{}

func (fakeRates) Rate(_ context.Context, cur models.Currency) string { return "rate " + cur.String() }
func (fakeRates) Compare(context.Context) string                      { return "compare" }

type fixture struct {
	ctrl     *Controller
	tr       *fakeTransport
	weather  *fakeWeather
	sessions *session.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		tr:       newFakeTransport(),
		weather:  &fakeWeather{},
		sessions: session.New(nil, "Kyiv"),
	}
	ctrl, err := New(Options{
		Transport:    f.tr,
		Weather:      f.weather,
		Rates:        fakeRates{},
		Sessions:     f.sessions,
		Formatter:    formatter.New(formatter.HeaderStyle{}, formatter.WithLocation(time.UTC)),
		ConfirmDelay: 5 * time.Millisecond,
		Now:          func() time.Time { return time.Date(2024, 1, 5, 12, 7, 9, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.ctrl = ctrl
	return f
}

func waitSent(t *testing.T, tr *fakeTransport, want string) {
	t.Helper()
	timeout := time.After(time.Second)
	for {
		select {
		case got := <-tr.sent:
			if got == want {
				return
			}
		case <-timeout:
			t.Fatalf("%q was never sent", want)
		}
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("expected error for empty options")
	}
}

func TestStartCommand(t *testing.T) {
	f := newFixture(t)
	if err := f.ctrl.HandleText(context.Background(), TextMessage{UserID: 1, ChatID: 7, FirstName: "Ann", Text: "/start"}); err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	calls := f.tr.snapshot()
	if len(calls) != 1 || calls[0].op != "send" || !strings.Contains(calls[0].text, "Привіт, **Ann**!") {
		t.Fatalf("unexpected calls %+v", calls)
	}
	if calls[0].markup == nil || len(calls[0].markup.InlineKeyboard) != 3 {
		t.Fatalf("expected start menu, got %+v", calls[0].markup)
	}
}

func TestQuickWeatherReplacesPlaceholder(t *testing.T) {
	f := newFixture(t)
	f.sessions.SetCity(1, "Lviv")
	if err := f.ctrl.HandleText(context.Background(), TextMessage{UserID: 1, ChatID: 7, Text: "/weather"}); err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	calls := f.tr.snapshot()
	if f.tr.ops() != "send,edit" {
		t.Fatalf("ops = %s", f.tr.ops())
	}
	if calls[0].text != formatter.Loading(formatter.KindWeather) {
		t.Fatalf("placeholder = %q", calls[0].text)
	}
	if calls[1].messageID != calls[0].messageID || calls[1].text != "forecast quick Lviv" {
		t.Fatalf("edit = %+v", calls[1])
	}
	if _, ok := f.sessions.TakeLoading(7); ok {
		t.Fatal("placeholder should be released")
	}
}

func TestNotModifiedIsNotResent(t *testing.T) {
	f := newFixture(t)
	f.tr.editErr = errors.New("telegram: specified new message content and reply markup are exactly the same (400): Bad Request: message is not modified")
	press := ButtonPress{UserID: 1, ChatID: 7, MessageID: 42, CallbackID: "cb", Action: ActionWeatherRefresh}
	if err := f.ctrl.HandleButton(context.Background(), press); err != nil {
		t.Fatalf("HandleButton: %v", err)
	}
	if got := f.tr.ops(); got != "answer,edit,edit" {
		t.Fatalf("ops = %s", got)
	}
	if _, ok := f.sessions.TakeLoading(7); ok {
		t.Fatal("placeholder should be released")
	}
}

func TestNotModifiedPlaceholderIsReleased(t *testing.T) {
	f := newFixture(t)
	f.tr.editErr = errors.New("telegram: specified new message content and reply markup are exactly the same (400): Bad Request: message is not modified")
	if err := f.ctrl.HandleText(context.Background(), TextMessage{UserID: 1, ChatID: 7, Text: "/weather"}); err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if got := f.tr.ops(); got != "send,edit" {
		t.Fatalf("ops = %s", got)
	}
	if _, ok := f.sessions.TakeLoading(7); ok {
		t.Fatal("placeholder should be released")
	}
}

func TestEditFailureFallsBackToSend(t *testing.T) {
	f := newFixture(t)
	f.tr.editErr = errors.New("message to edit not found")
	press := ButtonPress{UserID: 1, ChatID: 7, MessageID: 42, CallbackID: "cb", Action: ActionWeatherMenu}
	if err := f.ctrl.HandleButton(context.Background(), press); err != nil {
		t.Fatalf("HandleButton: %v", err)
	}
	if got := f.tr.ops(); got != "answer,edit,send" {
		t.Fatalf("ops = %s", got)
	}
}

func TestUnknownActionOnlyAlerts(t *testing.T) {
	f := newFixture(t)
	for _, press := range []ButtonPress{
		{UserID: 1, ChatID: 7, MessageID: 42, Action: ActionUnknown},
		{UserID: 1, ChatID: 7, MessageID: 42, Action: ActionCity, Payload: "Atlantis"},
	} {
		f.tr.calls = nil
		if err := f.ctrl.HandleButton(context.Background(), press); err != nil {
			t.Fatalf("HandleButton: %v", err)
		}
		calls := f.tr.snapshot()
		if len(calls) != 1 || calls[0].op != "answer" || !calls[0].alert || calls[0].text != unknownNotice {
			t.Fatalf("unexpected calls %+v", calls)
		}
	}
	if got := f.sessions.City(1); got != "Kyiv" {
		t.Fatalf("city changed to %q", got)
	}
}

func TestPresetCityButton(t *testing.T) {
	f := newFixture(t)
	press := ButtonPress{UserID: 1, ChatID: 7, MessageID: 42, CallbackID: "cb", Action: ActionCity, Payload: "Odesa"}
	if err := f.ctrl.HandleButton(context.Background(), press); err != nil {
		t.Fatalf("HandleButton: %v", err)
	}
	if got := f.sessions.City(1); got != "Odesa" {
		t.Fatalf("city = %q", got)
	}
	waitSent(t, f.tr, formatter.CitySelected("Odesa"))
	calls := f.tr.snapshot()
	if calls[0].op != "answer" || calls[0].alert || calls[0].text != processingNotice {
		t.Fatalf("first call = %+v", calls[0])
	}
	if calls[2].text != "forecast quick Odesa" {
		t.Fatalf("forecast edit = %+v", calls[2])
	}
}

func TestCustomCityFlow(t *testing.T) {
	f := newFixture(t)
	f.weather.known = map[string]bool{"Poltava": true}
	ctx := context.Background()

	if err := f.ctrl.HandleButton(ctx, ButtonPress{UserID: 1, ChatID: 7, MessageID: 42, Action: ActionCustomCity}); err != nil {
		t.Fatalf("HandleButton: %v", err)
	}
	if !f.sessions.AwaitingCityInput(1) {
		t.Fatal("expected awaiting city")
	}

	if err := f.ctrl.HandleText(ctx, TextMessage{UserID: 1, ChatID: 7, Text: "  Poltava "}); err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if got := f.sessions.City(1); got != "Poltava" {
		t.Fatalf("city = %q", got)
	}
	waitSent(t, f.tr, formatter.CitySaved("Poltava"))

	// The flag was consumed: the next text is an ordinary message.
	f.tr.calls = nil
	if err := f.ctrl.HandleText(ctx, TextMessage{UserID: 1, ChatID: 7, FirstName: "Ann", Text: "Poltava"}); err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	calls := f.tr.snapshot()
	if len(calls) != 1 || calls[0].text != formatter.UnknownText("Ann") {
		t.Fatalf("unexpected calls %+v", calls)
	}
}

func TestCustomCityNotFound(t *testing.T) {
	f := newFixture(t)
	f.weather.known = map[string]bool{}
	f.sessions.SetAwaitingCityInput(1, true)

	if err := f.ctrl.HandleText(context.Background(), TextMessage{UserID: 1, ChatID: 7, Text: "Atlantis"}); err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	calls := f.tr.snapshot()
	if len(calls) != 2 || calls[1].op != "edit" || calls[1].text != formatter.CityNotFound("Atlantis") {
		t.Fatalf("unexpected calls %+v", calls)
	}
	if got := f.sessions.City(1); got != "Kyiv" {
		t.Fatalf("city = %q", got)
	}
	if f.sessions.AwaitingCityInput(1) {
		t.Fatal("awaiting flag should be consumed")
	}
}

func TestRateButtons(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		action Action
		text   string
		rows   int
	}{
		{ActionRateUSD, "rate USD", 3},
		{ActionRateEUR, "rate EUR", 3},
		{ActionRateCompare, "compare", 2},
		{ActionRateQuick, "compare", 3},
	}
	for _, tc := range cases {
		f.tr.calls = nil
		if err := f.ctrl.HandleButton(context.Background(), ButtonPress{UserID: 1, ChatID: 7, MessageID: 42, Action: tc.action}); err != nil {
			t.Fatalf("%s: %v", tc.action, err)
		}
		calls := f.tr.snapshot()
		last := calls[len(calls)-1]
		if calls[1].text != formatter.Loading(formatter.KindCurrency) {
			t.Fatalf("%s: placeholder %q", tc.action, calls[1].text)
		}
		if last.text != tc.text || len(last.markup.InlineKeyboard) != tc.rows {
			t.Fatalf("%s: last call %+v", tc.action, last)
		}
	}
}

func TestFailReusesPlaceholder(t *testing.T) {
	f := newFixture(t)
	f.sessions.TrackLoading(7, 55)
	if err := f.ctrl.Fail(context.Background(), 7, errors.New("boom")); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	calls := f.tr.snapshot()
	if len(calls) != 1 || calls[0].op != "edit" || calls[0].messageID != 55 {
		t.Fatalf("unexpected calls %+v", calls)
	}
	if !strings.Contains(calls[0].text, "_Час: 12:07:09_") {
		t.Fatalf("error text %q", calls[0].text)
	}

	f.tr.calls = nil
	if err := f.ctrl.Fail(context.Background(), 7, errors.New("boom")); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if got := f.tr.ops(); got != "send" {
		t.Fatalf("ops = %s", got)
	}
}

func TestFailReportsUndeliveredError(t *testing.T) {
	f := newFixture(t)
	f.tr.sendErr = errors.New("network down")
	cause := errors.New("boom")
	if err := f.ctrl.Fail(context.Background(), 7, cause); !errors.Is(err, cause) {
		t.Fatalf("expected cause in %v", err)
	}
}
