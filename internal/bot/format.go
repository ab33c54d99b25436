package bot

import (
	"fmt"
	"strings"

	"github.com/Alex20507/tg-card/types"
)

const timeLayout = "02.01.2006 15:04"

// formatCardLines renders the compact list view: one card per line.
func formatCardLines(cards []types.Card) string {
	lines := make([]string, 0, len(cards))
	for _, card := range cards {
		lines = append(lines, fmt.Sprintf("%s (%s) — %s", card.Nickname, card.ExternalID, card.Status))
	}
	return strings.Join(lines, "\n")
}

// formatCardDetail renders the full detail view of a single card.
func formatCardDetail(card types.Card) string {
	return strings.Join([]string{
		"Айди: " + card.ExternalID,
		"Имя: " + card.Name,
		fmt.Sprintf("Возраст: %d", card.Age),
		"Часовой пояс: " + card.Timezone,
		"Ник: " + card.Nickname,
		"Статус: " + card.Status,
		"Комментарий: " + card.Comment,
	}, "\n")
}

func formatHistory(changes []types.StatusChange) string {
	lines := make([]string, 0, len(changes))
	for _, change := range changes {
		lines = append(lines, fmt.Sprintf(
			"%s: «%s» → «%s»",
			change.ChangedAt.Format(timeLayout),
			change.OldStatus,
			change.NewStatus,
		))
	}
	return strings.Join(lines, "\n")
}

func formatLogEntries(entries []types.LogEntry) string {
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, fmt.Sprintf(
			"%s %s: %s %s",
			entry.CreatedAt.Format(timeLayout),
			entry.ActorName,
			entry.Action,
			entry.Target,
		))
	}
	return strings.Join(lines, "\n")
}
