package services

import (
	"context"
	"strconv"
	"time"

	"github.com/Alex20507/tg-card/types"
	"github.com/google/uuid"
)

// Action tags recorded in the log.
const (
	ActionAddCard   = "add_card"
	ActionEditCard  = "edit_card"
	ActionSetStatus = "set_status"
	ActionFindCard  = "find_card"
	ActionAddAdmin  = "add_admin"
	ActionDelAdmin  = "del_admin"
)

const defaultRecentEntries = 10
const maxRecentEntries = 50

// LogRepository defines persistence operations for the action log.
type LogRepository interface {
	Append(ctx context.Context, entry types.LogEntry) (types.LogEntry, error)
	Recent(ctx context.Context, n int) ([]types.LogEntry, error)
}

// AuditLog records every mutating operation as (actor, action, target).
type AuditLog struct {
	repo      LogRepository
	directory *Directory
}

func NewAuditLog(repo LogRepository, directory *Directory) *AuditLog {
	return &AuditLog{repo: repo, directory: directory}
}

// Record appends one entry. The actor's display name is resolved at
// write time so the entry keeps the name the actor had when acting,
// whatever happens to their profile later. An actor missing from the
// directory is logged by raw identity.
func (a *AuditLog) Record(ctx context.Context, actor int64, action, target string) error {
	name, err := a.directory.DisplayNameOf(ctx, actor)
	if err != nil {
		return err
	}
	if name == "" {
		name = strconv.FormatInt(actor, 10)
	}

	_, err = a.repo.Append(ctx, types.LogEntry{
		EventID:   uuid.NewString(),
		ActorName: name,
		Action:    action,
		Target:    target,
		CreatedAt: time.Now(),
	})
	return err
}

// Recent returns up to n entries, most recent first.
func (a *AuditLog) Recent(ctx context.Context, n int) ([]types.LogEntry, error) {
	if n <= 0 {
		n = defaultRecentEntries
	}
	if n > maxRecentEntries {
		n = maxRecentEntries
	}
	return a.repo.Recent(ctx, n)
}
