package e2e

import (
	"context"
	"database/sql"
	"io"
	"path/filepath"
	"testing"

	"github.com/Alex20507/tg-card/config"
	"github.com/Alex20507/tg-card/internal/bot"
	"github.com/Alex20507/tg-card/internal/db"
	"github.com/Alex20507/tg-card/internal/dialogue"
	"github.com/Alex20507/tg-card/internal/services"
	"github.com/Alex20507/tg-card/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bootstrapAdmin = int64(1)

// openApp wires the whole application over a file-backed database, the
// way the bot command does at startup.
func openApp(t *testing.T, path string) (*bot.Router, *sql.DB) {
	t.Helper()

	cfg := config.DatabaseConfig{Driver: db.DriverSQLite, Path: path}
	conn, err := db.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
	})
	require.NoError(t, db.Migrate(conn, db.DriverSQLite))

	log := logrus.New()
	log.SetOutput(io.Discard)

	directory := services.NewDirectory(store.NewUserRepository(conn))
	cards := services.NewCardService(store.NewCardRepository(conn))
	audit := services.NewAuditLog(store.NewLogRepository(conn), directory)
	tracker := dialogue.NewTracker(dialogue.NewMemoryStore(), cards, audit, log)
	require.NoError(t, directory.GrantAdmin(context.Background(), bootstrapAdmin, "Root"))

	return bot.NewRouter(directory, cards, audit, tracker, log), conn
}

func send(router *bot.Router, identity int64, text string) bot.Reply {
	return router.Handle(context.Background(), bot.Incoming{
		SenderID:    identity,
		DisplayName: "E2E",
		Text:        text,
	})
}

func TestCardsSurviveRestartSessionsDoNot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.db")

	router, _ := openApp(t, path)

	send(router, bootstrapAdmin, "/add")
	reply := send(router, bootstrapAdmin, "Имя: Ann\nВозраст: 30\nАйди: U9\nЧасовой пояс: UTC+3\nНик: ann\nСтатус: active\nКомментарий: -")
	require.Equal(t, "✅ Карточка добавлена", reply.Text)

	// Leave a half-finished dialogue behind.
	send(router, bootstrapAdmin, "/add")

	// "Restart": a fresh wiring over the same file. Migrations rerun
	// idempotently, existing rows survive, sessions are gone.
	router, conn := openApp(t, path)

	var count int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(1) FROM cards`).Scan(&count))
	assert.Equal(t, 1, count)

	reply = send(router, bootstrapAdmin, "/check U9")
	assert.Contains(t, reply.Text, "Имя: Ann")

	// The interrupted entry has to be started over.
	reply = send(router, bootstrapAdmin, "Имя: Bob\nВозраст: 20\nАйди: X1\nЧасовой пояс: UTC\nНик: bob\nСтатус: active\nКомментарий: -")
	assert.NotEqual(t, "✅ Карточка добавлена", reply.Text)

	require.NoError(t, conn.QueryRow(`SELECT COUNT(1) FROM cards`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestFullAdminWorkflow(t *testing.T) {
	router, _ := openApp(t, filepath.Join(t.TempDir(), "cards.db"))

	send(router, bootstrapAdmin, "/add")
	send(router, bootstrapAdmin, "Имя: Ann\nВозраст: 30\nАйди: U9\nЧасовой пояс: UTC+3\nНик: ann\nСтатус: active\nКомментарий: -")

	reply := send(router, bootstrapAdmin, "/status U9 on hold")
	assert.Contains(t, reply.Text, "on hold")

	reply = send(router, bootstrapAdmin, "/history U9")
	assert.Contains(t, reply.Text, "«active» → «on hold»")

	reply = send(router, bootstrapAdmin, "/logs")
	assert.Contains(t, reply.Text, "Root")
	assert.Contains(t, reply.Text, services.ActionSetStatus)
}
