package bot

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	tele "gopkg.in/telebot.v3"
)

const pollTimeout = 10 * time.Second

// Telegram binds the router to the Telegram transport. It is the only
// place that knows about telebot types.
type Telegram struct {
	bot    *tele.Bot
	router *Router
	log    *logrus.Logger
}

func NewTelegram(token string, router *Router, log *logrus.Logger) (*Telegram, error) {
	b, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: pollTimeout},
	})
	if err != nil {
		return nil, err
	}

	t := &Telegram{bot: b, router: router, log: log}
	// Unregistered slash commands fall through to OnText as well, so
	// one handler covers the whole surface.
	b.Handle(tele.OnText, t.onText)
	return t, nil
}

// Start runs the long-polling loop until Stop is called.
func (t *Telegram) Start() {
	t.log.Info("bot started")
	t.bot.Start()
}

func (t *Telegram) Stop() {
	t.bot.Stop()
}

func (t *Telegram) onText(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	in := Incoming{
		SenderID:    sender.ID,
		DisplayName: displayName(sender),
		Text:        c.Text(),
	}
	t.log.WithFields(logrus.Fields{"identity": in.SenderID, "text": in.Text}).Debug("inbound message")

	reply := t.router.Handle(context.Background(), in)
	if reply.Text == "" {
		return nil
	}
	if len(reply.Buttons) > 0 {
		return c.Send(reply.Text, markupFor(reply.Buttons))
	}
	return c.Send(reply.Text)
}

func markupFor(rows [][]string) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{ResizeKeyboard: true}
	teleRows := make([]tele.Row, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tele.Btn, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, m.Text(label))
		}
		teleRows = append(teleRows, m.Row(buttons...))
	}
	m.Reply(teleRows...)
	return m
}

func displayName(u *tele.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.Username
	}
	if name == "" {
		name = strconv.FormatInt(u.ID, 10)
	}
	return name
}
