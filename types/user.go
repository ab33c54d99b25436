package types

import "time"

// Role is a user's access level within the bot.
type Role string

const (
	// RoleAdmin may manage other admins, change card statuses, edit
	// cards and read the action log.
	RoleAdmin Role = "admin"

	// RoleUser may submit cards through the step-by-step dialogue.
	RoleUser Role = "user"

	// RoleNone marks an identity the bot has never registered.
	// Every gated operation denies it.
	RoleNone Role = "none"
)

// User represents a registered chat identity.
// It contains identity, role, and audit metadata.
type User struct {
	// Identity is the unique external chat identity of the user.
	Identity int64 `json:"identity" db:"identity"`

	// Role indicates the user's authorization level
	// within the bot ("admin" or "user").
	Role Role `json:"role" db:"role"`

	// DisplayName is the name the user presented on first contact,
	// kept for attribution in the action log.
	DisplayName string `json:"display_name" db:"display_name"`

	// CreatedAt is the timestamp when the user was first registered.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent role change.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
