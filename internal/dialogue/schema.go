// Package dialogue drives the multi-step card entry and editing
// conversations. One declared field schema feeds both the step-by-step
// prompt sequence used by plain users and the single-shot "label: value"
// block used by admins, so the two modes cannot drift apart.
package dialogue

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Alex20507/tg-card/types"
)

// Field keys, used in collected value maps and session state.
const (
	FieldName       = "name"
	FieldAge        = "age"
	FieldExternalID = "external_id"
	FieldTimezone   = "timezone"
	FieldNickname   = "nickname"
	FieldStatus     = "status"
	FieldComment    = "comment"
)

// Field describes one card field: how it is labeled in the chat, and
// how its raw text input is validated.
type Field struct {
	Key      string
	Label    string
	Required bool
	Validate func(value string) error
}

// CardFields returns the full schema in presentation order.
func CardFields() []Field {
	return []Field{
		{Key: FieldName, Label: "Имя", Required: true, Validate: validateNonEmpty},
		{Key: FieldAge, Label: "Возраст", Required: true, Validate: validateAge},
		{Key: FieldExternalID, Label: "Айди", Required: true, Validate: validateNonEmpty},
		{Key: FieldTimezone, Label: "Часовой пояс", Required: true, Validate: validateNonEmpty},
		{Key: FieldNickname, Label: "Ник", Required: true, Validate: validateNonEmpty},
		{Key: FieldStatus, Label: "Статус", Required: true, Validate: nil},
		{Key: FieldComment, Label: "Комментарий", Required: true, Validate: nil},
	}
}

// EntrySteps returns the fields a plain user is prompted for, one per
// message. Status and comment are not asked: status starts at the
// active sentinel and the comment stays empty.
func EntrySteps() []Field {
	return CardFields()[:5]
}

// EditableFields returns the fields an admin may change through the
// edit flow. Status is excluded: it only moves through the tracked
// status-change operation.
func EditableFields() []Field {
	fields := make([]Field, 0, 6)
	for _, f := range CardFields() {
		if f.Key == FieldStatus {
			continue
		}
		f.Required = false
		fields = append(fields, f)
	}
	return fields
}

// ParseBlock splits a "label: value" block into a map keyed by
// normalized label. Lines without a colon are skipped; a label seen
// more than once keeps its last value.
func ParseBlock(text string) map[string]string {
	values := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		label := normalizeLabel(parts[0])
		if label == "" {
			continue
		}
		values[label] = strings.TrimSpace(parts[1])
	}
	return values
}

// CollectFields maps parsed labels onto the schema. Unknown labels are
// ignored. With requireAll set, every required field must be present.
// Present values are validated; the first failure aborts.
func CollectFields(values map[string]string, fields []Field, requireAll bool) (map[string]string, error) {
	collected := make(map[string]string, len(fields))
	var missing []string

	for _, field := range fields {
		value, ok := values[normalizeLabel(field.Label)]
		if !ok {
			if requireAll && field.Required {
				missing = append(missing, field.Label)
			}
			continue
		}
		if field.Validate != nil {
			if err := field.Validate(value); err != nil {
				return nil, fmt.Errorf("%s: %w", field.Label, err)
			}
		}
		collected[field.Key] = value
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("не хватает полей: %s", strings.Join(missing, ", "))
	}
	return collected, nil
}

// CardFromValues builds a card from collected field values.
func CardFromValues(values map[string]string, createdBy int64) (types.Card, error) {
	age, err := strconv.Atoi(strings.TrimSpace(values[FieldAge]))
	if err != nil {
		return types.Card{}, errors.New("возраст должен быть числом")
	}

	return types.Card{
		Name:       values[FieldName],
		Age:        age,
		ExternalID: values[FieldExternalID],
		Timezone:   values[FieldTimezone],
		Nickname:   values[FieldNickname],
		Status:     values[FieldStatus],
		Comment:    values[FieldComment],
		CreatedBy:  createdBy,
	}, nil
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

func validateNonEmpty(value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("значение не может быть пустым")
	}
	return nil
}

func validateAge(value string) error {
	age, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return errors.New("возраст должен быть числом")
	}
	if age <= 0 || age > 150 {
		return errors.New("возраст вне допустимого диапазона")
	}
	return nil
}
