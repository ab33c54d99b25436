package store

import (
	"context"
	"database/sql"

	"github.com/Alex20507/tg-card/types"
)

// LogRepository handles persistence for the append-only action log.
type LogRepository struct {
	db *sql.DB
}

func NewLogRepository(db *sql.DB) *LogRepository {
	return &LogRepository{db: db}
}

// Append stores one log entry. Entries are never updated or deleted.
func (r *LogRepository) Append(ctx context.Context, entry types.LogEntry) (types.LogEntry, error) {
	const query = `
		INSERT INTO audit_log (event_id, actor_name, action, target, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		entry.EventID,
		entry.ActorName,
		entry.Action,
		entry.Target,
		entry.CreatedAt,
	).Scan(&entry.ID); err != nil {
		return types.LogEntry{}, err
	}
	return entry, nil
}

// Recent returns up to n entries, most recent first.
func (r *LogRepository) Recent(ctx context.Context, n int) ([]types.LogEntry, error) {
	const query = `
		SELECT id, event_id, actor_name, action, target, created_at
		FROM audit_log
		ORDER BY id DESC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []types.LogEntry
	for rows.Next() {
		var entry types.LogEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.EventID,
			&entry.ActorName,
			&entry.Action,
			&entry.Target,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Count returns the total number of log entries.
func (r *LogRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(1) FROM audit_log`
	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
