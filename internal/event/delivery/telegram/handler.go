package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"calendar-assistant/internal/event"
	"calendar-assistant/internal/model"
	"calendar-assistant/internal/preferences"
	pkgLog "calendar-assistant/pkg/log"
	pkgResponse "calendar-assistant/pkg/response"
	pkgTelegram "calendar-assistant/pkg/telegram"
)

// Callback data values for the confirm/cancel inline keyboards.
const (
	cbConfirmCreate = "confirm_event_create"
	cbCancelCreate  = "cancel_event_create"
	cbConfirmDelete = "confirm_event_delete"
	cbCancelDelete  = "cancel_event_delete"
	cbConfirmUpdate = "confirm_event_update"
	cbCancelUpdate  = "cancel_event_update"
)

const welcomeText = `👋 Hi! I'm your calendar assistant.

Tell me things like:
• "What's on my calendar this week?"
• "Lunch with Sam tomorrow at noon"
• "Cancel my dentist appointment"
• "Move Friday's standup to 10am"

I'll always ask before changing anything.`

const helpText = `<b>Commands</b>
/summary [period] — list your events
/delete &lt;event id&gt; — delete a specific event
/set_timezone &lt;IANA zone&gt; — e.g. /set_timezone Europe/Amsterdam
/help — this message

Or just write what you want in plain language.`

type handler struct {
	l     pkgLog.Logger
	uc    event.UseCase
	prefs *preferences.Service
	bot   *pkgTelegram.Bot
}

// HandleWebhook is the Gin handler for incoming Telegram webhook updates.
// It responds with HTTP 200 immediately and processes the update in a
// background goroutine, because the pipeline behind it (LLM + calendar)
// can outlive Telegram's webhook timeout.
func (h *handler) HandleWebhook(c *gin.Context) {
	ctx := c.Request.Context()

	var update pkgTelegram.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		h.l.Errorf(ctx, "telegram handler: failed to parse update: %v", err)
		pkgResponse.Error(c, err, nil)
		return
	}

	switch {
	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		go func() {
			bgCtx := context.Background()
			if err := h.processCallback(bgCtx, cb); err != nil {
				h.l.Errorf(bgCtx, "telegram handler: background processCallback failed: %v", err)
			}
		}()
	case update.Message != nil:
		msg := update.Message
		go func() {
			bgCtx := context.Background()
			if err := h.processMessage(bgCtx, msg); err != nil {
				h.l.Errorf(bgCtx, "telegram handler: background processMessage failed: %v", err)
				_ = h.bot.SendMessage(bgCtx, msg.Chat.ID, "Something went wrong handling that. Please try again.")
			}
		}()
	default:
		pkgResponse.OK(c, map[string]string{"status": "ignored"})
		return
	}

	pkgResponse.OK(c, map[string]string{"status": "accepted"})
}

// processMessage handles a single Telegram message.
func (h *handler) processMessage(ctx context.Context, msg *pkgTelegram.Message) error {
	if msg.Text == "" || msg.From == nil || msg.Chat == nil {
		return nil
	}

	sc := scopeOf(msg.From)
	chatID := msg.Chat.ID

	cmd, args := splitCommand(msg.Text)
	switch cmd {
	case "/start":
		return h.bot.SendMessage(ctx, chatID, welcomeText)
	case "/help":
		return h.bot.SendHTML(ctx, chatID, helpText, nil)
	case "/set_timezone":
		return h.setTimezone(ctx, sc, chatID, args)
	case "/summary":
		reply, err := h.uc.Summary(ctx, sc, event.SummaryInput{Text: args})
		if err != nil {
			return err
		}
		return h.send(ctx, chatID, reply)
	case "/delete":
		if args == "" {
			return h.bot.SendMessage(ctx, chatID, "Usage: /delete <event id>")
		}
		reply, err := h.uc.ProposeDeleteByID(ctx, sc, args)
		if err != nil {
			return err
		}
		return h.send(ctx, chatID, reply)
	}

	reply, err := h.uc.Dispatch(ctx, sc, event.DispatchInput{Text: msg.Text})
	if err != nil {
		if errors.Is(err, event.ErrEmptyInput) {
			return nil
		}
		return err
	}
	return h.send(ctx, chatID, reply)
}

// processCallback resolves a confirm/cancel button press and replaces the
// proposal message with the outcome.
func (h *handler) processCallback(ctx context.Context, cb *pkgTelegram.CallbackQuery) error {
	if err := h.bot.AnswerCallbackQuery(ctx, cb.ID); err != nil {
		h.l.Warnf(ctx, "telegram handler: answerCallbackQuery failed: %v", err)
	}
	if cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}

	input, ok := resolveInputFor(cb.Data)
	if !ok {
		h.l.Warnf(ctx, "telegram handler: unknown callback data %q", cb.Data)
		return nil
	}

	reply, err := h.uc.Resolve(ctx, scopeOf(cb.From), input)
	if err != nil {
		return err
	}
	return h.bot.EditMessageText(ctx, cb.Message.Chat.ID, cb.Message.MessageID, reply.Text)
}

func (h *handler) setTimezone(ctx context.Context, sc model.Scope, chatID int64, zone string) error {
	if zone == "" {
		return h.bot.SendMessage(ctx, chatID, "Usage: /set_timezone <IANA zone>, e.g. /set_timezone Europe/Amsterdam")
	}
	if err := h.prefs.SetTimezone(ctx, sc.UserID, zone); err != nil {
		if errors.Is(err, preferences.ErrInvalidTimezone) {
			return h.bot.SendMessage(ctx, chatID, fmt.Sprintf("%q is not a timezone I know. Try an IANA name like Europe/Amsterdam.", zone))
		}
		return err
	}
	return h.bot.SendMessage(ctx, chatID, fmt.Sprintf("Done. Your timezone is now %s.", zone))
}

// send delivers a usecase reply, attaching confirm/cancel buttons when
// the reply stages an action.
func (h *handler) send(ctx context.Context, chatID int64, reply event.Reply) error {
	return h.bot.SendHTML(ctx, chatID, reply.Text, keyboardFor(reply.Confirm))
}

func keyboardFor(kind model.ActionKind) *pkgTelegram.InlineKeyboardMarkup {
	var confirm, cancel string
	switch kind {
	case model.ActionCreate:
		confirm, cancel = cbConfirmCreate, cbCancelCreate
	case model.ActionDelete:
		confirm, cancel = cbConfirmDelete, cbCancelDelete
	case model.ActionUpdate:
		confirm, cancel = cbConfirmUpdate, cbCancelUpdate
	default:
		return nil
	}
	return &pkgTelegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]pkgTelegram.InlineKeyboardButton{{
			{Text: "✅ Confirm", CallbackData: confirm},
			{Text: "❌ Cancel", CallbackData: cancel},
		}},
	}
}

func resolveInputFor(data string) (event.ResolveInput, bool) {
	switch data {
	case cbConfirmCreate:
		return event.ResolveInput{Kind: model.ActionCreate, Decision: event.DecisionConfirm}, true
	case cbCancelCreate:
		return event.ResolveInput{Kind: model.ActionCreate, Decision: event.DecisionCancel}, true
	case cbConfirmDelete:
		return event.ResolveInput{Kind: model.ActionDelete, Decision: event.DecisionConfirm}, true
	case cbCancelDelete:
		return event.ResolveInput{Kind: model.ActionDelete, Decision: event.DecisionCancel}, true
	case cbConfirmUpdate:
		return event.ResolveInput{Kind: model.ActionUpdate, Decision: event.DecisionConfirm}, true
	case cbCancelUpdate:
		return event.ResolveInput{Kind: model.ActionUpdate, Decision: event.DecisionCancel}, true
	}
	return event.ResolveInput{}, false
}

func scopeOf(u *pkgTelegram.User) model.Scope {
	return model.Scope{
		UserID:   fmt.Sprintf("telegram_%d", u.ID),
		Username: u.Username,
	}
}

// splitCommand separates a leading bot command from its arguments.
// "/summary next week" -> ("/summary", "next week"). Non-commands
// return an empty command.
func splitCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	cmd, args, _ := strings.Cut(text, " ")
	// Commands in groups arrive as /summary@botname.
	cmd, _, _ = strings.Cut(cmd, "@")
	return cmd, strings.TrimSpace(args)
}
