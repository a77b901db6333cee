package telegram_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"calendar-assistant/internal/event"
	"calendar-assistant/internal/event/delivery/telegram"
	"calendar-assistant/internal/model"
	"calendar-assistant/internal/preferences"
	pkgTelegram "calendar-assistant/pkg/telegram"
)

// ── Mocks ──────────────────────────────────────────────────────────────────

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, args ...any)                 {}
func (m *mockLogger) Debugf(ctx context.Context, format string, args ...any) {}
func (m *mockLogger) Info(ctx context.Context, args ...any)                  {}
func (m *mockLogger) Infof(ctx context.Context, format string, args ...any)  {}
func (m *mockLogger) Warn(ctx context.Context, args ...any)                  {}
func (m *mockLogger) Warnf(ctx context.Context, format string, args ...any)  {}
func (m *mockLogger) Error(ctx context.Context, args ...any)                 {}
func (m *mockLogger) Errorf(ctx context.Context, format string, args ...any) {}
func (m *mockLogger) Fatal(ctx context.Context, args ...any)                 {}
func (m *mockLogger) Fatalf(ctx context.Context, format string, args ...any) {}

type mockUseCase struct {
	mu sync.Mutex

	dispatchReply event.Reply
	dispatchErr   error
	summaryReply  event.Reply
	deleteByIDOut event.Reply
	resolveReply  event.Reply
	resolveErr    error

	dispatchCalls   []event.DispatchInput
	summaryCalls    []event.SummaryInput
	deleteByIDCalls []string
	resolveCalls    []event.ResolveInput
	scopes          []model.Scope
}

func (m *mockUseCase) Dispatch(ctx context.Context, sc model.Scope, in event.DispatchInput) (event.Reply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatchCalls = append(m.dispatchCalls, in)
	m.scopes = append(m.scopes, sc)
	return m.dispatchReply, m.dispatchErr
}
func (m *mockUseCase) Summary(ctx context.Context, sc model.Scope, in event.SummaryInput) (event.Reply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaryCalls = append(m.summaryCalls, in)
	return m.summaryReply, nil
}
func (m *mockUseCase) ProposeCreate(ctx context.Context, sc model.Scope, in event.ProposeInput) (event.Reply, error) {
	return event.Reply{}, nil
}
func (m *mockUseCase) ProposeDelete(ctx context.Context, sc model.Scope, in event.ProposeInput) (event.Reply, error) {
	return event.Reply{}, nil
}
func (m *mockUseCase) ProposeDeleteByID(ctx context.Context, sc model.Scope, eventID string) (event.Reply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteByIDCalls = append(m.deleteByIDCalls, eventID)
	return m.deleteByIDOut, nil
}
func (m *mockUseCase) ProposeUpdate(ctx context.Context, sc model.Scope, in event.ProposeInput) (event.Reply, error) {
	return event.Reply{}, nil
}
func (m *mockUseCase) Resolve(ctx context.Context, sc model.Scope, in event.ResolveInput) (event.Reply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolveCalls = append(m.resolveCalls, in)
	m.scopes = append(m.scopes, sc)
	return m.resolveReply, m.resolveErr
}

type mockPrefsRepo struct {
	zones map[string]string
}

func (m *mockPrefsRepo) GetTimezone(ctx context.Context, userID string) (string, error) {
	if z, ok := m.zones[userID]; ok {
		return z, nil
	}
	return "", preferences.ErrNotSet
}
func (m *mockPrefsRepo) SetTimezone(ctx context.Context, userID, zone string) error {
	m.zones[userID] = zone
	return nil
}

// tgCall is one captured Telegram Bot API request.
type tgCall struct {
	method  string
	payload map[string]any
}

type testEnv struct {
	engine    *gin.Engine
	uc        *mockUseCase
	prefsRepo *mockPrefsRepo

	mu    sync.Mutex
	calls []tgCall
}

func (e *testEnv) snapshot() []tgCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]tgCall(nil), e.calls...)
}

// waitForCalls polls until the stub Telegram server has seen atLeast
// requests of the given method, or the timeout passes.
func (e *testEnv) waitForCalls(method string, atLeast int) []tgCall {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		var matched []tgCall
		for _, c := range e.snapshot() {
			if c.method == method {
				matched = append(matched, c)
			}
		}
		if len(matched) >= atLeast {
			return matched
		}
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		uc:        &mockUseCase{},
		prefsRepo: &mockPrefsRepo{zones: map[string]string{}},
	}

	tgServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		env.mu.Lock()
		env.calls = append(env.calls, tgCall{
			method:  strings.TrimPrefix(r.URL.Path, "/"),
			payload: payload,
		})
		env.mu.Unlock()
		w.Write([]byte(`{"ok": true}`))
	}))
	t.Cleanup(tgServer.Close)

	l := &mockLogger{}
	bot := pkgTelegram.NewBot("test-token")
	bot.SetAPIURL(tgServer.URL)

	prefs, err := preferences.NewService(l, env.prefsRepo, "UTC")
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	engine := gin.New()
	h := telegram.New(l, env.uc, prefs, bot)
	engine.POST("/webhook/telegram", h.HandleWebhook)
	env.engine = engine
	return env
}

func postUpdate(engine *gin.Engine, update pkgTelegram.Update) *httptest.ResponseRecorder {
	body, _ := json.Marshal(update)
	req, _ := http.NewRequest(http.MethodPost, "/webhook/telegram", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func messageUpdate(text string) pkgTelegram.Update {
	return pkgTelegram.Update{
		UpdateID: 1,
		Message: &pkgTelegram.Message{
			MessageID: 1,
			Chat:      &pkgTelegram.Chat{ID: 123},
			From:      &pkgTelegram.User{ID: 456, Username: "alice"},
			Text:      text,
		},
	}
}

func callbackUpdate(data string) pkgTelegram.Update {
	return pkgTelegram.Update{
		UpdateID: 2,
		CallbackQuery: &pkgTelegram.CallbackQuery{
			ID:   "cbq-1",
			From: &pkgTelegram.User{ID: 456, Username: "alice"},
			Message: &pkgTelegram.Message{
				MessageID: 9,
				Chat:      &pkgTelegram.Chat{ID: 123},
			},
			Data: data,
		},
	}
}

// ── Tests ──────────────────────────────────────────────────────────────────

func TestHandleWebhook_InvalidJSON(t *testing.T) {
	env := newTestEnv(t)

	req, _ := http.NewRequest(http.MethodPost, "/webhook/telegram", bytes.NewBufferString("{bad json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandleWebhook_EmptyUpdateIgnored(t *testing.T) {
	env := newTestEnv(t)

	w := postUpdate(env.engine, pkgTelegram.Update{UpdateID: 3})
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "accepted") {
		t.Errorf("empty update should be ignored, got body %s", w.Body.String())
	}
}

func TestHandleWebhook_AcksBeforeProcessing(t *testing.T) {
	env := newTestEnv(t)
	env.uc.dispatchReply = event.Reply{Text: "hello back"}

	w := postUpdate(env.engine, messageUpdate("hello"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "accepted") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestMessage_RoutesToDispatch(t *testing.T) {
	env := newTestEnv(t)
	env.uc.dispatchReply = event.Reply{Text: "You have 2 events today."}

	postUpdate(env.engine, messageUpdate("what's on today?"))

	sends := env.waitForCalls("sendMessage", 1)
	if sends == nil {
		t.Fatal("no sendMessage reached Telegram")
	}
	if got := sends[0].payload["text"]; got != "You have 2 events today." {
		t.Errorf("text = %v", got)
	}
	if got := sends[0].payload["parse_mode"]; got != "HTML" {
		t.Errorf("parse_mode = %v", got)
	}
	if _, hasKeyboard := sends[0].payload["reply_markup"]; hasKeyboard {
		t.Error("plain reply must not carry a keyboard")
	}

	env.uc.mu.Lock()
	defer env.uc.mu.Unlock()
	if len(env.uc.dispatchCalls) != 1 || env.uc.dispatchCalls[0].Text != "what's on today?" {
		t.Errorf("dispatch calls = %+v", env.uc.dispatchCalls)
	}
	if env.uc.scopes[0].UserID != "telegram_456" {
		t.Errorf("scope = %+v", env.uc.scopes[0])
	}
}

func TestMessage_ProposalGetsConfirmKeyboard(t *testing.T) {
	env := newTestEnv(t)
	env.uc.dispatchReply = event.Reply{Text: "Shall I add it?", Confirm: model.ActionCreate}

	postUpdate(env.engine, messageUpdate("lunch tomorrow at noon"))

	sends := env.waitForCalls("sendMessage", 1)
	if sends == nil {
		t.Fatal("no sendMessage reached Telegram")
	}
	markup, ok := sends[0].payload["reply_markup"].(map[string]any)
	if !ok {
		t.Fatalf("reply_markup missing: %v", sends[0].payload)
	}
	raw, _ := json.Marshal(markup)
	if !strings.Contains(string(raw), "confirm_event_create") || !strings.Contains(string(raw), "cancel_event_create") {
		t.Errorf("keyboard = %s", raw)
	}
}

func TestCommand_Start(t *testing.T) {
	env := newTestEnv(t)

	postUpdate(env.engine, messageUpdate("/start"))

	sends := env.waitForCalls("sendMessage", 1)
	if sends == nil {
		t.Fatal("no sendMessage reached Telegram")
	}
	if text, _ := sends[0].payload["text"].(string); !strings.Contains(text, "calendar assistant") {
		t.Errorf("text = %q", text)
	}
}

func TestCommand_SummaryPassesPeriod(t *testing.T) {
	env := newTestEnv(t)
	env.uc.summaryReply = event.Reply{Text: "No events found for next week."}

	postUpdate(env.engine, messageUpdate("/summary next week"))

	if env.waitForCalls("sendMessage", 1) == nil {
		t.Fatal("no sendMessage reached Telegram")
	}
	env.uc.mu.Lock()
	defer env.uc.mu.Unlock()
	if len(env.uc.summaryCalls) != 1 || env.uc.summaryCalls[0].Text != "next week" {
		t.Errorf("summary calls = %+v", env.uc.summaryCalls)
	}
}

func TestCommand_SummaryWithBotSuffix(t *testing.T) {
	env := newTestEnv(t)
	env.uc.summaryReply = event.Reply{Text: "No events found for today."}

	postUpdate(env.engine, messageUpdate("/summary@calbot today"))

	if env.waitForCalls("sendMessage", 1) == nil {
		t.Fatal("no sendMessage reached Telegram")
	}
	env.uc.mu.Lock()
	defer env.uc.mu.Unlock()
	if len(env.uc.summaryCalls) != 1 {
		t.Fatalf("summary calls = %+v", env.uc.summaryCalls)
	}
}

func TestCommand_DeleteByID(t *testing.T) {
	env := newTestEnv(t)
	env.uc.deleteByIDOut = event.Reply{Text: "Are you sure?", Confirm: model.ActionDelete}

	postUpdate(env.engine, messageUpdate("/delete abc123"))

	if env.waitForCalls("sendMessage", 1) == nil {
		t.Fatal("no sendMessage reached Telegram")
	}
	env.uc.mu.Lock()
	defer env.uc.mu.Unlock()
	if len(env.uc.deleteByIDCalls) != 1 || env.uc.deleteByIDCalls[0] != "abc123" {
		t.Errorf("deleteByID calls = %+v", env.uc.deleteByIDCalls)
	}
}

func TestCommand_DeleteWithoutID(t *testing.T) {
	env := newTestEnv(t)

	postUpdate(env.engine, messageUpdate("/delete"))

	sends := env.waitForCalls("sendMessage", 1)
	if sends == nil {
		t.Fatal("no sendMessage reached Telegram")
	}
	if text, _ := sends[0].payload["text"].(string); !strings.Contains(text, "Usage") {
		t.Errorf("text = %q", text)
	}
	env.uc.mu.Lock()
	defer env.uc.mu.Unlock()
	if len(env.uc.deleteByIDCalls) != 0 {
		t.Errorf("usecase should not be called, got %+v", env.uc.deleteByIDCalls)
	}
}

func TestCommand_SetTimezone(t *testing.T) {
	env := newTestEnv(t)

	postUpdate(env.engine, messageUpdate("/set_timezone Europe/Amsterdam"))

	sends := env.waitForCalls("sendMessage", 1)
	if sends == nil {
		t.Fatal("no sendMessage reached Telegram")
	}
	if text, _ := sends[0].payload["text"].(string); !strings.Contains(text, "Europe/Amsterdam") {
		t.Errorf("text = %q", text)
	}
	if env.prefsRepo.zones["telegram_456"] != "Europe/Amsterdam" {
		t.Errorf("stored zones = %v", env.prefsRepo.zones)
	}
}

func TestCommand_SetTimezoneInvalid(t *testing.T) {
	env := newTestEnv(t)

	postUpdate(env.engine, messageUpdate("/set_timezone Mars/Olympus"))

	sends := env.waitForCalls("sendMessage", 1)
	if sends == nil {
		t.Fatal("no sendMessage reached Telegram")
	}
	if text, _ := sends[0].payload["text"].(string); !strings.Contains(text, "not a timezone") {
		t.Errorf("text = %q", text)
	}
	if len(env.prefsRepo.zones) != 0 {
		t.Errorf("invalid zone must not be stored: %v", env.prefsRepo.zones)
	}
}

func TestCallback_ConfirmDeleteResolves(t *testing.T) {
	env := newTestEnv(t)
	env.uc.resolveReply = event.Reply{Text: "🗑 Dentist has been deleted."}

	w := postUpdate(env.engine, callbackUpdate("confirm_event_delete"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	if env.waitForCalls("answerCallbackQuery", 1) == nil {
		t.Error("callback was never acknowledged")
	}
	edits := env.waitForCalls("editMessageText", 1)
	if edits == nil {
		t.Fatal("proposal message was not edited")
	}
	if got := edits[0].payload["text"]; got != "🗑 Dentist has been deleted." {
		t.Errorf("edited text = %v", got)
	}
	if got := edits[0].payload["message_id"]; got != float64(9) {
		t.Errorf("message_id = %v", got)
	}

	env.uc.mu.Lock()
	defer env.uc.mu.Unlock()
	want := event.ResolveInput{Kind: model.ActionDelete, Decision: event.DecisionConfirm}
	if len(env.uc.resolveCalls) != 1 || env.uc.resolveCalls[0] != want {
		t.Errorf("resolve calls = %+v", env.uc.resolveCalls)
	}
}

func TestCallback_CancelCreateResolves(t *testing.T) {
	env := newTestEnv(t)
	env.uc.resolveReply = event.Reply{Text: "Okay, cancelled. Nothing was changed."}

	postUpdate(env.engine, callbackUpdate("cancel_event_create"))

	if env.waitForCalls("editMessageText", 1) == nil {
		t.Fatal("proposal message was not edited")
	}
	env.uc.mu.Lock()
	defer env.uc.mu.Unlock()
	want := event.ResolveInput{Kind: model.ActionCreate, Decision: event.DecisionCancel}
	if len(env.uc.resolveCalls) != 1 || env.uc.resolveCalls[0] != want {
		t.Errorf("resolve calls = %+v", env.uc.resolveCalls)
	}
}

func TestCallback_UnknownDataIgnored(t *testing.T) {
	env := newTestEnv(t)

	postUpdate(env.engine, callbackUpdate("something_else"))

	// The press is still acknowledged so the client spinner stops.
	if env.waitForCalls("answerCallbackQuery", 1) == nil {
		t.Error("callback was never acknowledged")
	}
	time.Sleep(50 * time.Millisecond)
	env.uc.mu.Lock()
	defer env.uc.mu.Unlock()
	if len(env.uc.resolveCalls) != 0 {
		t.Errorf("unknown data must not resolve anything: %+v", env.uc.resolveCalls)
	}
	if env.waitForCalls("editMessageText", 1) != nil {
		t.Error("unknown data must not edit the message")
	}
}
