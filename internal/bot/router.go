// Package bot routes inbound chat messages to card, directory and
// audit operations. It is transport-agnostic: the telebot binding in
// telegram.go adapts the wire types, everything else works on plain
// Incoming/Reply values so the whole command surface is testable
// without a live chat connection.
package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/Alex20507/tg-card/internal/dialogue"
	"github.com/Alex20507/tg-card/internal/services"
	"github.com/Alex20507/tg-card/internal/store"
	"github.com/Alex20507/tg-card/types"
	"github.com/sirupsen/logrus"
)

// Incoming is one inbound message from the chat transport.
type Incoming struct {
	SenderID    int64
	DisplayName string
	Text        string
}

// Reply is the outbound response. Buttons, when present, are suggested
// reply labels for the transport to render.
type Reply struct {
	Text    string
	Buttons [][]string
}

// Action is a logical operation id. Slash commands and button labels
// are aliases resolving to the same id, so both entry points behave
// identically.
type Action string

const (
	ActionStart    Action = "start"
	ActionAddCard  Action = "add_card"
	ActionCancel   Action = "cancel"
	ActionList     Action = "list"
	ActionCheck    Action = "check"
	ActionStatus   Action = "status"
	ActionHistory  Action = "history"
	ActionEdit     Action = "edit"
	ActionAddAdmin Action = "add_admin"
	ActionDelAdmin Action = "del_admin"
	ActionLogs     Action = "logs"
)

var aliases = map[string]Action{
	"/start":      ActionStart,
	"/add":        ActionAddCard,
	ButtonAddCard: ActionAddCard,
	"/cancel":     ActionCancel,
	ButtonCancel:  ActionCancel,
	"/list":       ActionList,
	ButtonList:    ActionList,
	"/check":      ActionCheck,
	"/status":     ActionStatus,
	"/history":    ActionHistory,
	"/edit":       ActionEdit,
	"/addadmin":   ActionAddAdmin,
	"/deladmin":   ActionDelAdmin,
	"/logs":       ActionLogs,
	ButtonLogs:    ActionLogs,
}

// adminOnly lists the actions that require the admin role on top of
// the base access gate.
var adminOnly = map[Action]bool{
	ActionList:     true,
	ActionCheck:    true,
	ActionStatus:   true,
	ActionHistory:  true,
	ActionEdit:     true,
	ActionAddAdmin: true,
	ActionDelAdmin: true,
	ActionLogs:     true,
}

const (
	replyDenied   = "❌ Нет доступа"
	replyNotFound = "Не найдено"
	replyEmpty    = "Пусто"
	replyUnknown  = "Не понял. Используй кнопки или команды."
	replyTryLater = "⚠️ Что-то пошло не так, попробуй позже"
)

// Router gates every operation on the sender's role and dispatches to
// the services or the dialogue tracker.
type Router struct {
	directory *services.Directory
	cards     *services.CardService
	audit     *services.AuditLog
	tracker   *dialogue.Tracker
	log       *logrus.Logger
}

func NewRouter(
	directory *services.Directory,
	cards *services.CardService,
	audit *services.AuditLog,
	tracker *dialogue.Tracker,
	log *logrus.Logger,
) *Router {
	return &Router{
		directory: directory,
		cards:     cards,
		audit:     audit,
		tracker:   tracker,
		log:       log,
	}
}

// Handle fully processes one inbound message and returns the reply.
func (r *Router) Handle(ctx context.Context, in Incoming) Reply {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return Reply{}
	}

	action, args := resolve(text)

	// /start is the one ungated entry point: it onboards unknown
	// identities as plain users.
	if action == ActionStart {
		return r.handleStart(ctx, in)
	}

	role, err := r.directory.RoleOf(ctx, in.SenderID)
	if err != nil {
		r.log.WithError(err).WithField("identity", in.SenderID).Error("role lookup failed")
		return Reply{Text: replyTryLater}
	}
	if role == types.RoleNone {
		return Reply{Text: replyDenied}
	}

	// Cancel must win at every dialogue step.
	if action == ActionCancel {
		return Reply{Text: r.tracker.Cancel(in.SenderID), Buttons: keyboardFor(role)}
	}

	// Free text feeds an open dialogue; recognized commands keep
	// working even mid-dialogue.
	if action == "" {
		if r.tracker.Active(in.SenderID) {
			return Reply{Text: r.tracker.Advance(ctx, in.SenderID, in.Text)}
		}
		return Reply{Text: replyUnknown, Buttons: keyboardFor(role)}
	}
	if adminOnly[action] && role != types.RoleAdmin {
		return Reply{Text: replyDenied}
	}

	switch action {
	case ActionAddCard:
		return Reply{Text: r.tracker.StartEntry(in.SenderID, role)}
	case ActionList:
		return r.handleList(ctx)
	case ActionCheck:
		return r.handleCheck(ctx, in.SenderID, args)
	case ActionStatus:
		return r.handleStatus(ctx, in.SenderID, args)
	case ActionHistory:
		return r.handleHistory(ctx, args)
	case ActionEdit:
		return r.handleEdit(ctx, in.SenderID, role, args)
	case ActionAddAdmin:
		return r.handleAddAdmin(ctx, in.SenderID, args)
	case ActionDelAdmin:
		return r.handleDelAdmin(ctx, in.SenderID, args)
	case ActionLogs:
		return r.handleLogs(ctx)
	default:
		return Reply{Text: replyUnknown, Buttons: keyboardFor(role)}
	}
}

// resolve maps the message text to an action. Button labels match on
// the full text; slash commands match on the first token and carry the
// rest as arguments.
func resolve(text string) (Action, []string) {
	if action, ok := aliases[text]; ok {
		return action, nil
	}

	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil
	}
	action, ok := aliases[fields[0]]
	if !ok {
		return "", nil
	}
	return action, fields[1:]
}

func (r *Router) handleStart(ctx context.Context, in Incoming) Reply {
	if err := r.directory.EnsureRegistered(ctx, in.SenderID, in.DisplayName); err != nil {
		r.log.WithError(err).WithField("identity", in.SenderID).Error("registration failed")
		return Reply{Text: replyTryLater}
	}

	role, err := r.directory.RoleOf(ctx, in.SenderID)
	if err != nil {
		r.log.WithError(err).WithField("identity", in.SenderID).Error("role lookup failed")
		return Reply{Text: replyTryLater}
	}

	text := "Привет! Нажми кнопку ниже и заполни карточку, это быстро."
	if role == types.RoleAdmin {
		text = "Привет, админ! Тебе доступны /list, /check, /status, /history, /edit, /logs и управление админами."
	}
	return Reply{Text: text, Buttons: keyboardFor(role)}
}

func (r *Router) handleList(ctx context.Context) Reply {
	cards, err := r.cards.List(ctx)
	if err != nil {
		r.log.WithError(err).Error("card list failed")
		return Reply{Text: replyTryLater}
	}
	if len(cards) == 0 {
		return Reply{Text: replyEmpty}
	}
	return Reply{Text: formatCardLines(cards)}
}

func (r *Router) handleCheck(ctx context.Context, actor int64, args []string) Reply {
	if len(args) == 0 {
		return Reply{Text: "Используй: /check <айди или ник>"}
	}
	query := strings.Join(args, " ")

	cards, err := r.cards.Find(ctx, query)
	if err != nil {
		r.log.WithError(err).WithField("query", query).Error("card search failed")
		return Reply{Text: replyTryLater}
	}

	r.recordAudit(ctx, actor, services.ActionFindCard, query)

	switch len(cards) {
	case 0:
		return Reply{Text: replyNotFound}
	case 1:
		return Reply{Text: formatCardDetail(cards[0])}
	default:
		return Reply{Text: formatCardLines(cards)}
	}
}

func (r *Router) handleStatus(ctx context.Context, actor int64, args []string) Reply {
	if len(args) < 2 {
		return Reply{Text: "Используй: /status <айди> <статус>"}
	}
	externalID := args[0]
	newStatus := strings.Join(args[1:], " ")

	change, err := r.cards.ChangeStatus(ctx, externalID, newStatus, actor)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Reply{Text: replyNotFound}
		}
		r.log.WithError(err).WithField("external_id", externalID).Error("status change failed")
		return Reply{Text: replyTryLater}
	}

	r.recordAudit(ctx, actor, services.ActionSetStatus, externalID)
	return Reply{Text: "✅ Статус обновлён: было «" + change.OldStatus + "», стало «" + change.NewStatus + "»"}
}

func (r *Router) handleHistory(ctx context.Context, args []string) Reply {
	if len(args) != 1 {
		return Reply{Text: "Используй: /history <айди>"}
	}

	changes, err := r.cards.History(ctx, args[0])
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Reply{Text: replyNotFound}
		}
		r.log.WithError(err).WithField("external_id", args[0]).Error("history lookup failed")
		return Reply{Text: replyTryLater}
	}
	if len(changes) == 0 {
		return Reply{Text: "Статус ещё не менялся"}
	}
	return Reply{Text: formatHistory(changes)}
}

func (r *Router) handleEdit(ctx context.Context, actor int64, role types.Role, args []string) Reply {
	if len(args) != 1 {
		return Reply{Text: "Используй: /edit <айди>"}
	}

	if _, err := r.cards.Get(ctx, args[0]); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Reply{Text: replyNotFound}
		}
		r.log.WithError(err).WithField("external_id", args[0]).Error("card lookup failed")
		return Reply{Text: replyTryLater}
	}

	return Reply{Text: r.tracker.StartEdit(actor, role, args[0])}
}

func (r *Router) handleAddAdmin(ctx context.Context, actor int64, args []string) Reply {
	if len(args) == 0 {
		return Reply{Text: "Используй: /addadmin <айди> [имя]"}
	}
	identity, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return Reply{Text: "Используй: /addadmin <айди> [имя]"}
	}
	displayName := strings.Join(args[1:], " ")

	if err := r.directory.GrantAdmin(ctx, identity, displayName); err != nil {
		r.log.WithError(err).WithField("identity", identity).Error("grant admin failed")
		return Reply{Text: replyTryLater}
	}

	r.recordAudit(ctx, actor, services.ActionAddAdmin, args[0])
	return Reply{Text: "👑 Админ добавлен"}
}

func (r *Router) handleDelAdmin(ctx context.Context, actor int64, args []string) Reply {
	if len(args) != 1 {
		return Reply{Text: "Используй: /deladmin <айди>"}
	}
	identity, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return Reply{Text: "Используй: /deladmin <айди>"}
	}

	if err := r.directory.Revoke(ctx, identity); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Reply{Text: replyNotFound}
		}
		r.log.WithError(err).WithField("identity", identity).Error("revoke failed")
		return Reply{Text: replyTryLater}
	}

	r.recordAudit(ctx, actor, services.ActionDelAdmin, args[0])
	return Reply{Text: "🗑 Админ разжалован"}
}

func (r *Router) handleLogs(ctx context.Context) Reply {
	entries, err := r.audit.Recent(ctx, 0)
	if err != nil {
		r.log.WithError(err).Error("log read failed")
		return Reply{Text: replyTryLater}
	}
	if len(entries) == 0 {
		return Reply{Text: replyEmpty}
	}
	return Reply{Text: formatLogEntries(entries)}
}

func (r *Router) recordAudit(ctx context.Context, actor int64, action, target string) {
	if err := r.audit.Record(ctx, actor, action, target); err != nil {
		r.log.WithError(err).WithField("action", action).Error("audit record failed")
	}
}
