package bot

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"testing"

	"github.com/Alex20507/tg-card/internal/db"
	"github.com/Alex20507/tg-card/internal/dialogue"
	"github.com/Alex20507/tg-card/internal/services"
	"github.com/Alex20507/tg-card/internal/store"
	"github.com/Alex20507/tg-card/types"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminID = int64(100)
	userID  = int64(200)
	ghostID = int64(300) // never registered
)

type fixture struct {
	router *Router
	cards  *store.CardRepository
	logs   *store.LogRepository
	conn   *sql.DB
}

// newFixture wires the full stack over a fresh in-memory database,
// with one admin and one plain user registered.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := sql.Open("sqlite", db.SQLiteDSN(":memory:"))
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = conn.Close()
	})
	require.NoError(t, db.Migrate(conn, db.DriverSQLite))

	log := logrus.New()
	log.SetOutput(io.Discard)

	userRepo := store.NewUserRepository(conn)
	cardRepo := store.NewCardRepository(conn)
	logRepo := store.NewLogRepository(conn)

	directory := services.NewDirectory(userRepo)
	cards := services.NewCardService(cardRepo)
	audit := services.NewAuditLog(logRepo, directory)
	tracker := dialogue.NewTracker(dialogue.NewMemoryStore(), cards, audit, log)

	ctx := context.Background()
	require.NoError(t, directory.GrantAdmin(ctx, adminID, "Admin"))
	require.NoError(t, directory.EnsureRegistered(ctx, userID, "User"))

	return &fixture{
		router: NewRouter(directory, cards, audit, tracker, log),
		cards:  cardRepo,
		logs:   logRepo,
		conn:   conn,
	}
}

func (f *fixture) send(identity int64, text string) Reply {
	return f.router.Handle(context.Background(), Incoming{
		SenderID:    identity,
		DisplayName: "Name",
		Text:        text,
	})
}

func (f *fixture) logCount(t *testing.T) int {
	t.Helper()
	count, err := f.logs.Count(context.Background())
	require.NoError(t, err)
	return count
}

const adminBlock = "Имя: Ann\nВозраст: 30\nАйди: U9\nЧасовой пояс: UTC+3\nНик: ann\nСтатус: active\nКомментарий: -"

func TestUnknownIdentityDeniedEverywhere(t *testing.T) {
	f := newFixture(t)

	for _, text := range []string{"/add", "/list", "/check U9", "/status U9 paused", "/logs", ButtonAddCard} {
		reply := f.send(ghostID, text)
		assert.Equal(t, replyDenied, reply.Text, "command %q", text)
	}

	// Denials leave no trace: no cards, no log entries.
	cards, err := f.cards.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cards)
	assert.Zero(t, f.logCount(t))
}

func TestNonAdminDeniedAdminOperations(t *testing.T) {
	f := newFixture(t)

	f.send(adminID, "/add")
	f.send(adminID, adminBlock)
	before := f.logCount(t)

	for _, text := range []string{"/list", "/check U9", "/status U9 paused", "/history U9", "/edit U9", "/addadmin 300", "/deladmin 100", "/logs"} {
		reply := f.send(userID, text)
		assert.Equal(t, replyDenied, reply.Text, "command %q", text)
	}

	// No mutations, no audit entries from the denied attempts.
	card, err := f.cards.GetByExternalID(context.Background(), "U9")
	require.NoError(t, err)
	assert.Equal(t, "active", card.Status)
	assert.Equal(t, before, f.logCount(t))
}

func TestStartOnboardsUnknownIdentity(t *testing.T) {
	f := newFixture(t)

	reply := f.send(ghostID, "/start")
	assert.NotEqual(t, replyDenied, reply.Text)
	assert.Equal(t, [][]string{{ButtonAddCard}}, reply.Buttons)

	// Once onboarded, the entry dialogue is available.
	reply = f.send(ghostID, "/add")
	assert.Equal(t, "Имя:", reply.Text)
}

func TestAdminStartShowsAdminKeyboard(t *testing.T) {
	f := newFixture(t)

	reply := f.send(adminID, "/start")
	assert.Equal(t, [][]string{{ButtonAddCard}, {ButtonList, ButtonLogs}}, reply.Buttons)
}

func TestButtonAndCommandAreAliases(t *testing.T) {
	f := newFixture(t)

	byCommand := f.send(userID, "/add")
	f.send(userID, "/cancel")
	byButton := f.send(userID, ButtonAddCard)

	assert.Equal(t, byCommand.Text, byButton.Text)
}

func TestAdminBlockEntryEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reply := f.send(adminID, "/add")
	assert.Contains(t, reply.Text, "одним сообщением")

	reply = f.send(adminID, adminBlock)
	assert.Equal(t, "✅ Карточка добавлена", reply.Text)

	card, err := f.cards.GetByExternalID(ctx, "U9")
	require.NoError(t, err)
	assert.Equal(t, "active", card.Status)
	assert.Equal(t, "ann", card.Nickname)

	entries, err := f.logs.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, services.ActionAddCard, entries[0].Action)
	assert.Equal(t, "ann", entries[0].Target)
	assert.Equal(t, "Admin", entries[0].ActorName)
}

func TestUserStepEntryEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, "Имя:", f.send(userID, "/add").Text)
	assert.Equal(t, "Возраст:", f.send(userID, "Ann").Text)
	assert.Equal(t, "Айди:", f.send(userID, "30").Text)
	assert.Equal(t, "Часовой пояс:", f.send(userID, "U7").Text)
	assert.Equal(t, "Ник:", f.send(userID, "UTC+3").Text)
	assert.Equal(t, "✅ Карточка добавлена", f.send(userID, "annie").Text)

	card, err := f.cards.GetByExternalID(ctx, "U7")
	require.NoError(t, err)
	assert.Equal(t, types.StatusActive, card.Status)
	assert.Equal(t, userID, card.CreatedBy)
}

func TestCancelMidDialogue(t *testing.T) {
	f := newFixture(t)

	f.send(userID, "/add")
	f.send(userID, "Ann")

	reply := f.send(userID, ButtonCancel)
	assert.Equal(t, "❌ Отменено", reply.Text)

	// The next entry starts from scratch.
	assert.Equal(t, "Имя:", f.send(userID, "/add").Text)
}

func TestCheckFindsByIDOrNickname(t *testing.T) {
	f := newFixture(t)

	f.send(adminID, "/add")
	f.send(adminID, adminBlock)
	f.send(adminID, "/add")
	f.send(adminID, "Имя: Bob\nВозраст: 25\nАйди: X1\nЧасовой пояс: UTC\nНик: anchor\nСтатус: active\nКомментарий: -")

	// Single match: full detail view.
	reply := f.send(adminID, "/check X1")
	assert.Contains(t, reply.Text, "Имя: Bob")
	assert.Contains(t, reply.Text, "Комментарий: -")

	// Two matches: compact list in insertion order.
	reply = f.send(adminID, "/check an")
	assert.Equal(t, "ann (U9) — active\nanchor (X1) — active", reply.Text)

	reply = f.send(adminID, "/check nope")
	assert.Equal(t, replyNotFound, reply.Text)
}

func TestStatusChangeAndHistory(t *testing.T) {
	f := newFixture(t)

	f.send(adminID, "/add")
	f.send(adminID, adminBlock)

	reply := f.send(adminID, "/status U9 paused for review")
	assert.Contains(t, reply.Text, "active")
	assert.Contains(t, reply.Text, "paused for review")

	reply = f.send(adminID, "/history U9")
	assert.Contains(t, reply.Text, "«active» → «paused for review»")

	reply = f.send(adminID, "/status nope paused")
	assert.Equal(t, replyNotFound, reply.Text)

	reply = f.send(adminID, "/status U9")
	assert.Contains(t, reply.Text, "Используй")
}

func TestDuplicateCardRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.send(adminID, "/add")
	f.send(adminID, adminBlock)

	f.send(adminID, "/add")
	reply := f.send(adminID, "Имя: Bob\nВозраст: 25\nАйди: U9\nЧасовой пояс: UTC\nНик: bob\nСтатус: active\nКомментарий: -")
	assert.Contains(t, reply.Text, "уже есть")

	// The original card is untouched.
	card, err := f.cards.GetByExternalID(ctx, "U9")
	require.NoError(t, err)
	assert.Equal(t, "Ann", card.Name)
}

func TestEditFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.send(adminID, "/add")
	f.send(adminID, adminBlock)

	reply := f.send(adminID, "/edit U9")
	assert.Contains(t, reply.Text, "метка: значение")

	reply = f.send(adminID, "Ник: ann2\nКомментарий: vip")
	assert.Equal(t, "✅ Карточка обновлена", reply.Text)

	card, err := f.cards.GetByExternalID(ctx, "U9")
	require.NoError(t, err)
	assert.Equal(t, "ann2", card.Nickname)
	assert.Equal(t, "vip", card.Comment)
	assert.Equal(t, "active", card.Status)

	reply = f.send(adminID, "/edit nope")
	assert.Equal(t, replyNotFound, reply.Text)
}

func TestAdminManagement(t *testing.T) {
	f := newFixture(t)

	reply := f.send(adminID, "/addadmin 200 User")
	assert.Equal(t, "👑 Админ добавлен", reply.Text)

	// The promoted user may now run admin commands.
	reply = f.send(userID, "/list")
	assert.NotEqual(t, replyDenied, reply.Text)

	reply = f.send(adminID, "/deladmin 200")
	assert.Equal(t, "🗑 Админ разжалован", reply.Text)

	reply = f.send(userID, "/list")
	assert.Equal(t, replyDenied, reply.Text)

	reply = f.send(adminID, "/deladmin 999")
	assert.Equal(t, replyNotFound, reply.Text)

	reply = f.send(adminID, "/addadmin abc")
	assert.Contains(t, reply.Text, "Используй")
}

func TestLogsViewing(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, replyEmpty, f.send(adminID, "/logs").Text)

	f.send(adminID, "/add")
	f.send(adminID, adminBlock)
	f.send(adminID, "/status U9 paused")

	reply := f.send(adminID, ButtonLogs)
	assert.Contains(t, reply.Text, services.ActionAddCard)
	assert.Contains(t, reply.Text, services.ActionSetStatus)

	// Most recent first.
	assert.Less(
		t,
		strings.Index(reply.Text, services.ActionSetStatus),
		strings.Index(reply.Text, services.ActionAddCard),
	)
}

func TestListCommand(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, replyEmpty, f.send(adminID, "/list").Text)

	f.send(adminID, "/add")
	f.send(adminID, adminBlock)

	reply := f.send(adminID, ButtonList)
	assert.Equal(t, "ann (U9) — active", reply.Text)
}
