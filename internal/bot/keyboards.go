package bot

import "github.com/Alex20507/tg-card/types"

// Button labels. Each one is an alias of a slash command, so pressing
// a button and typing the command are the same operation.
const (
	ButtonAddCard = "➕ Добавить карточку"
	ButtonCancel  = "Отмена"
	ButtonList    = "📋 Список"
	ButtonLogs    = "📜 Логи"
)

// keyboardFor returns the suggested-reply rows for the role.
func keyboardFor(role types.Role) [][]string {
	rows := [][]string{{ButtonAddCard}}
	if role == types.RoleAdmin {
		rows = append(rows, []string{ButtonList, ButtonLogs})
	}
	return rows
}
