package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Alex20507/tg-card/types"
)

// CardRepository handles persistence for cards and their status history.
type CardRepository struct {
	db *sql.DB
}

func NewCardRepository(db *sql.DB) *CardRepository {
	return &CardRepository{db: db}
}

// CardPatch describes a partial update of a card's editable fields.
// Status is deliberately absent: it only changes through ChangeStatus
// so the history table stays complete.
type CardPatch struct {
	Name     *string
	Age      *int
	Timezone *string
	Nickname *string
	Comment  *string
}

// IsEmpty reports whether the patch would change nothing.
func (p CardPatch) IsEmpty() bool {
	return p.Name == nil && p.Age == nil && p.Timezone == nil && p.Nickname == nil && p.Comment == nil
}

// Insert stores a new card. The existence check and the insert run in
// one transaction, so a duplicate external id aborts without writing
// anything and leaves the original card unchanged.
func (r *CardRepository) Insert(ctx context.Context, card types.Card) (types.Card, error) {
	card.CreatedAt = time.Now()
	if card.Status == "" {
		card.Status = types.StatusActive
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Card{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const existsQuery = `SELECT COUNT(1) FROM cards WHERE external_id = $1`
	var count int
	if err := tx.QueryRowContext(ctx, existsQuery, card.ExternalID).Scan(&count); err != nil {
		return types.Card{}, err
	}
	if count > 0 {
		return types.Card{}, ErrDuplicateID
	}

	const insertQuery = `
		INSERT INTO cards (name, age, external_id, timezone, nickname, status, comment, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	if err := tx.QueryRowContext(
		ctx,
		insertQuery,
		card.Name,
		card.Age,
		card.ExternalID,
		card.Timezone,
		card.Nickname,
		card.Status,
		card.Comment,
		card.CreatedBy,
		card.CreatedAt,
	).Scan(&card.ID); err != nil {
		return types.Card{}, err
	}

	if err := tx.Commit(); err != nil {
		return types.Card{}, err
	}
	return card, nil
}

func (r *CardRepository) GetByExternalID(ctx context.Context, externalID string) (types.Card, error) {
	const query = `
		SELECT id, name, age, external_id, timezone, nickname, status, comment, created_by, created_at
		FROM cards
		WHERE external_id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, externalID))
}

// Search returns all cards whose external id or nickname contains the
// query as a case-sensitive substring, in insertion order.
func (r *CardRepository) Search(ctx context.Context, query string) ([]types.Card, error) {
	const searchQuery = `
		SELECT id, name, age, external_id, timezone, nickname, status, comment, created_by, created_at
		FROM cards
		WHERE external_id LIKE '%' || $1 || '%' ESCAPE '\'
		   OR nickname LIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, searchQuery, escapeLike(query))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// List returns all cards in insertion order.
func (r *CardRepository) List(ctx context.Context) ([]types.Card, error) {
	const query = `
		SELECT id, name, age, external_id, timezone, nickname, status, comment, created_by, created_at
		FROM cards
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// ChangeStatus reads the card's current status, writes the new one and
// appends a history row carrying the observed old status, all in one
// transaction.
func (r *CardRepository) ChangeStatus(ctx context.Context, externalID, newStatus string, changedBy int64) (types.StatusChange, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.StatusChange{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const statusQuery = `SELECT status FROM cards WHERE external_id = $1`
	var oldStatus string
	if err := tx.QueryRowContext(ctx, statusQuery, externalID).Scan(&oldStatus); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.StatusChange{}, ErrNotFound
		}
		return types.StatusChange{}, err
	}

	const updateQuery = `UPDATE cards SET status = $1 WHERE external_id = $2`
	if _, err := tx.ExecContext(ctx, updateQuery, newStatus, externalID); err != nil {
		return types.StatusChange{}, err
	}

	change := types.StatusChange{
		CardExternalID: externalID,
		OldStatus:      oldStatus,
		NewStatus:      newStatus,
		ChangedBy:      changedBy,
		ChangedAt:      time.Now(),
	}

	const historyQuery = `
		INSERT INTO status_changes (card_external_id, old_status, new_status, changed_by, changed_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := tx.QueryRowContext(
		ctx,
		historyQuery,
		change.CardExternalID,
		change.OldStatus,
		change.NewStatus,
		change.ChangedBy,
		change.ChangedAt,
	).Scan(&change.ID); err != nil {
		return types.StatusChange{}, err
	}

	if err := tx.Commit(); err != nil {
		return types.StatusChange{}, err
	}
	return change, nil
}

// History returns the card's status changes in chronological order.
// An unknown external id yields ErrNotFound rather than an empty list.
func (r *CardRepository) History(ctx context.Context, externalID string) ([]types.StatusChange, error) {
	if _, err := r.GetByExternalID(ctx, externalID); err != nil {
		return nil, err
	}

	const query = `
		SELECT id, card_external_id, old_status, new_status, changed_by, changed_at
		FROM status_changes
		WHERE card_external_id = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, externalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []types.StatusChange
	for rows.Next() {
		var change types.StatusChange
		if err := rows.Scan(
			&change.ID,
			&change.CardExternalID,
			&change.OldStatus,
			&change.NewStatus,
			&change.ChangedBy,
			&change.ChangedAt,
		); err != nil {
			return nil, err
		}
		changes = append(changes, change)
	}
	return changes, rows.Err()
}

// UpdateFields applies a partial edit to the card's non-status fields.
func (r *CardRepository) UpdateFields(ctx context.Context, externalID string, patch CardPatch) error {
	if patch.IsEmpty() {
		return nil
	}

	set := make([]string, 0, 5)
	args := make([]any, 0, 6)
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, column+" = $"+strconv.Itoa(len(args)))
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Age != nil {
		add("age", *patch.Age)
	}
	if patch.Timezone != nil {
		add("timezone", *patch.Timezone)
	}
	if patch.Nickname != nil {
		add("nickname", *patch.Nickname)
	}
	if patch.Comment != nil {
		add("comment", *patch.Comment)
	}

	args = append(args, externalID)
	query := "UPDATE cards SET " + strings.Join(set, ", ") + " WHERE external_id = $" + strconv.Itoa(len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CardRepository) scanOne(row *sql.Row) (types.Card, error) {
	var card types.Card
	err := row.Scan(
		&card.ID,
		&card.Name,
		&card.Age,
		&card.ExternalID,
		&card.Timezone,
		&card.Nickname,
		&card.Status,
		&card.Comment,
		&card.CreatedBy,
		&card.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Card{}, ErrNotFound
		}
		return types.Card{}, err
	}
	return card, nil
}

func (r *CardRepository) scanAll(rows *sql.Rows) ([]types.Card, error) {
	var cards []types.Card
	for rows.Next() {
		var card types.Card
		if err := rows.Scan(
			&card.ID,
			&card.Name,
			&card.Age,
			&card.ExternalID,
			&card.Timezone,
			&card.Nickname,
			&card.Status,
			&card.Comment,
			&card.CreatedBy,
			&card.CreatedAt,
		); err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

// escapeLike neutralizes LIKE wildcards so the query matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
