package types

import "time"

// LogEntry is one row of the append-only action log.
type LogEntry struct {
	// ID is the internal identifier, assigned in chronological order.
	ID int64 `json:"id" db:"id"`

	// EventID is a globally unique identifier for the event.
	EventID string `json:"event_id" db:"event_id"`

	// ActorName is the actor's display name as it was at the time of
	// the action. It is resolved at write time so later profile
	// changes do not rewrite history.
	ActorName string `json:"actor_name" db:"actor_name"`

	// Action is a short machine tag, e.g. "add_card" or "set_status".
	Action string `json:"action" db:"action"`

	// Target names what was acted on: a card nickname, an identity,
	// or a search query.
	Target string `json:"target" db:"target"`

	// CreatedAt is the timestamp of the action.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
