package types

import "time"

// StatusActive is the status assigned to a card on creation unless the
// submitter provided one explicitly.
const StatusActive = "active"

// Card represents a submitted record card.
type Card struct {
	// ID is the internal identifier, assigned in insertion order.
	ID int64 `json:"id" db:"id"`

	// Name is the person's full name.
	Name string `json:"name" db:"name"`

	// Age is the person's age in years.
	Age int `json:"age" db:"age"`

	// ExternalID is the globally unique external identifier of the card.
	// Inserting a second card with the same ExternalID fails.
	ExternalID string `json:"external_id" db:"external_id"`

	// Timezone is a free-form timezone description, e.g. "UTC+3".
	Timezone string `json:"timezone" db:"timezone"`

	// Nickname is the person's handle, used in list views and as the
	// action-log target for card operations.
	Nickname string `json:"nickname" db:"nickname"`

	// Status is a free-text state marker. It is only ever changed
	// through the tracked status-change operation, never by free edit,
	// so the status history stays complete.
	Status string `json:"status" db:"status"`

	// Comment is free-form additional information.
	Comment string `json:"comment" db:"comment"`

	// CreatedBy is the identity of the user who submitted the card.
	CreatedBy int64 `json:"created_by" db:"created_by"`

	// CreatedAt is the timestamp when the card was submitted.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// StatusChange is one row of a card's status history. Rows are
// append-only: they are never updated or deleted.
type StatusChange struct {
	// ID is the internal identifier, assigned in chronological order.
	ID int64 `json:"id" db:"id"`

	// CardExternalID references the card whose status changed.
	CardExternalID string `json:"card_external_id" db:"card_external_id"`

	// OldStatus is the card's status observed immediately before the change.
	OldStatus string `json:"old_status" db:"old_status"`

	// NewStatus is the status the card was changed to.
	NewStatus string `json:"new_status" db:"new_status"`

	// ChangedBy is the identity of the admin who made the change.
	ChangedBy int64 `json:"changed_by" db:"changed_by"`

	// ChangedAt is the timestamp of the change.
	ChangedAt time.Time `json:"changed_at" db:"changed_at"`
}
