package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Alex20507/tg-card/internal/services"
	"github.com/Alex20507/tg-card/internal/store"
	"github.com/Alex20507/tg-card/types"
	"github.com/sirupsen/logrus"
)

// Step tags for the two single-shot admin modes. User entry steps are
// tagged "entry:<field key>".
const (
	StepAdminBlock = "admin_block"
	StepEdit       = "edit"

	entryStepPrefix = "entry:"
)

// CardWriter is the slice of the card service the tracker needs.
type CardWriter interface {
	Add(ctx context.Context, card types.Card) (types.Card, error)
	Edit(ctx context.Context, externalID string, patch store.CardPatch) error
}

// Recorder appends action-log entries for completed mutations.
type Recorder interface {
	Record(ctx context.Context, actor int64, action, target string) error
}

// Tracker advances per-identity entry and edit dialogues. All replies
// are returned as user-facing text; storage errors are logged and
// surfaced as a generic failure message, never as a crash.
type Tracker struct {
	sessions Store
	cards    CardWriter
	audit    Recorder
	log      *logrus.Logger
}

func NewTracker(sessions Store, cards CardWriter, audit Recorder, log *logrus.Logger) *Tracker {
	return &Tracker{sessions: sessions, cards: cards, audit: audit, log: log}
}

// Active reports whether the identity has a dialogue in progress.
func (t *Tracker) Active(identity int64) bool {
	_, ok := t.sessions.Get(identity)
	return ok
}

// StartEntry opens a card-entry dialogue and returns the first prompt.
// Admins submit the whole card as one labeled block; plain users are
// walked through the fields one prompt at a time.
func (t *Tracker) StartEntry(identity int64, role types.Role) string {
	if role == types.RoleAdmin {
		t.sessions.Put(identity, Session{
			Step:   StepAdminBlock,
			Role:   role,
			Fields: make(map[string]string),
		})
		return adminEntryPrompt()
	}

	steps := EntrySteps()
	t.sessions.Put(identity, Session{
		Step:   entryStepPrefix + steps[0].Key,
		Role:   role,
		Fields: make(map[string]string),
	})
	return steps[0].Label + ":"
}

// StartEdit opens an edit dialogue for the given card.
func (t *Tracker) StartEdit(identity int64, role types.Role, externalID string) string {
	t.sessions.Put(identity, Session{
		Step:   StepEdit,
		Role:   role,
		Fields: make(map[string]string),
		Target: externalID,
	})
	return "Пришли новые значения в формате «метка: значение», по одному на строку.\nСтатус меняется только командой /status."
}

// Cancel drops the identity's dialogue, whatever step it is at.
func (t *Tracker) Cancel(identity int64) string {
	t.sessions.Clear(identity)
	return "❌ Отменено"
}

// Advance feeds one message into the identity's dialogue and returns
// the reply. Validation failures keep the session open at the same
// step so the input can simply be retried.
func (t *Tracker) Advance(ctx context.Context, identity int64, text string) string {
	session, ok := t.sessions.Get(identity)
	if !ok {
		return ""
	}

	switch {
	case session.Step == StepAdminBlock:
		return t.advanceAdminBlock(ctx, identity, session, text)
	case session.Step == StepEdit:
		return t.advanceEdit(ctx, identity, session, text)
	case strings.HasPrefix(session.Step, entryStepPrefix):
		return t.advanceEntryStep(ctx, identity, session, text)
	default:
		// Unknown step tag: drop the broken session.
		t.log.WithFields(logrus.Fields{"identity": identity, "step": session.Step}).Warn("dropping session with unknown step")
		t.sessions.Clear(identity)
		return "❌ Отменено"
	}
}

func (t *Tracker) advanceAdminBlock(ctx context.Context, identity int64, session Session, text string) string {
	values, err := CollectFields(ParseBlock(text), CardFields(), true)
	if err != nil {
		return "⚠️ " + err.Error() + "\n\n" + adminEntryPrompt()
	}

	card, err := CardFromValues(values, identity)
	if err != nil {
		return "⚠️ " + err.Error()
	}

	return t.finishInsert(ctx, identity, card)
}

func (t *Tracker) advanceEdit(ctx context.Context, identity int64, session Session, text string) string {
	parsed := ParseBlock(text)
	if _, ok := parsed[normalizeLabel("Статус")]; ok {
		return "⚠️ Статус меняется только командой /status."
	}

	values, err := CollectFields(parsed, EditableFields(), false)
	if err != nil {
		return "⚠️ " + err.Error()
	}
	if len(values) == 0 {
		return "⚠️ Не нашёл ни одного поля. Формат: «метка: значение», по одному на строку."
	}

	patch, err := patchFromValues(values)
	if err != nil {
		return "⚠️ " + err.Error()
	}

	if err := t.cards.Edit(ctx, session.Target, patch); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			t.sessions.Clear(identity)
			return "Не найдено"
		}
		t.log.WithError(err).WithField("external_id", session.Target).Error("card edit failed")
		return "⚠️ Не получилось сохранить, попробуй ещё раз"
	}

	t.sessions.Clear(identity)
	t.recordAudit(ctx, identity, services.ActionEditCard, session.Target)
	return "✅ Карточка обновлена"
}

func (t *Tracker) advanceEntryStep(ctx context.Context, identity int64, session Session, text string) string {
	steps := EntrySteps()
	index := stepIndex(steps, strings.TrimPrefix(session.Step, entryStepPrefix))
	if index < 0 {
		t.sessions.Clear(identity)
		return "❌ Отменено"
	}

	field := steps[index]
	value := strings.TrimSpace(text)
	if field.Validate != nil {
		if err := field.Validate(value); err != nil {
			// Re-prompt the same step; nothing is stored.
			return "⚠️ " + err.Error() + "\n" + field.Label + ":"
		}
	}
	session.Fields[field.Key] = value

	if index+1 < len(steps) {
		session.Step = entryStepPrefix + steps[index+1].Key
		t.sessions.Put(identity, session)
		return steps[index+1].Label + ":"
	}

	card, err := CardFromValues(session.Fields, identity)
	if err != nil {
		// Age was validated at its step, so this is unreachable in
		// practice; restart the dialogue rather than wedge it.
		t.sessions.Clear(identity)
		return "⚠️ " + err.Error()
	}

	return t.finishInsert(ctx, identity, card)
}

func (t *Tracker) finishInsert(ctx context.Context, identity int64, card types.Card) string {
	added, err := t.cards.Add(ctx, card)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateID) {
			t.sessions.Clear(identity)
			return fmt.Sprintf("⚠️ Карточка с айди %s уже есть", card.ExternalID)
		}
		t.log.WithError(err).WithField("external_id", card.ExternalID).Error("card insert failed")
		return "⚠️ Не получилось сохранить, попробуй ещё раз"
	}

	t.sessions.Clear(identity)
	t.recordAudit(ctx, identity, services.ActionAddCard, added.Nickname)
	return "✅ Карточка добавлена"
}

func (t *Tracker) recordAudit(ctx context.Context, actor int64, action, target string) {
	if err := t.audit.Record(ctx, actor, action, target); err != nil {
		t.log.WithError(err).WithField("action", action).Error("audit record failed")
	}
}

func adminEntryPrompt() string {
	var b strings.Builder
	b.WriteString("Пришли карточку одним сообщением:\n")
	for _, field := range CardFields() {
		b.WriteString(field.Label)
		b.WriteString(": ...\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func stepIndex(steps []Field, key string) int {
	for i, field := range steps {
		if field.Key == key {
			return i
		}
	}
	return -1
}

func patchFromValues(values map[string]string) (store.CardPatch, error) {
	var patch store.CardPatch
	if v, ok := values[FieldName]; ok {
		patch.Name = &v
	}
	if v, ok := values[FieldAge]; ok {
		age, err := parseAge(v)
		if err != nil {
			return store.CardPatch{}, err
		}
		patch.Age = &age
	}
	if v, ok := values[FieldTimezone]; ok {
		patch.Timezone = &v
	}
	if v, ok := values[FieldNickname]; ok {
		patch.Nickname = &v
	}
	if v, ok := values[FieldComment]; ok {
		patch.Comment = &v
	}
	return patch, nil
}

func parseAge(value string) (int, error) {
	if err := validateAge(value); err != nil {
		return 0, err
	}
	age, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, err
	}
	return age, nil
}
