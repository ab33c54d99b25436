package services

import (
	"context"

	"github.com/Alex20507/tg-card/internal/store"
	"github.com/Alex20507/tg-card/types"
)

// CardRepository defines persistence operations for cards.
type CardRepository interface {
	Insert(ctx context.Context, card types.Card) (types.Card, error)
	GetByExternalID(ctx context.Context, externalID string) (types.Card, error)
	Search(ctx context.Context, query string) ([]types.Card, error)
	List(ctx context.Context) ([]types.Card, error)
	ChangeStatus(ctx context.Context, externalID, newStatus string, changedBy int64) (types.StatusChange, error)
	History(ctx context.Context, externalID string) ([]types.StatusChange, error)
	UpdateFields(ctx context.Context, externalID string, patch store.CardPatch) error
}

// CardService encapsulates card use-cases.
type CardService struct {
	repo CardRepository
}

func NewCardService(repo CardRepository) *CardService {
	return &CardService{repo: repo}
}

// Add stores a new card. An empty status falls back to the active
// sentinel before the insert.
func (s *CardService) Add(ctx context.Context, card types.Card) (types.Card, error) {
	if card.Status == "" {
		card.Status = types.StatusActive
	}
	return s.repo.Insert(ctx, card)
}

// Find returns every card whose external id or nickname contains the
// query, in insertion order.
func (s *CardService) Find(ctx context.Context, query string) ([]types.Card, error) {
	return s.repo.Search(ctx, query)
}

func (s *CardService) Get(ctx context.Context, externalID string) (types.Card, error) {
	return s.repo.GetByExternalID(ctx, externalID)
}

func (s *CardService) List(ctx context.Context) ([]types.Card, error) {
	return s.repo.List(ctx)
}

func (s *CardService) ChangeStatus(ctx context.Context, externalID, newStatus string, changedBy int64) (types.StatusChange, error) {
	return s.repo.ChangeStatus(ctx, externalID, newStatus, changedBy)
}

func (s *CardService) History(ctx context.Context, externalID string) ([]types.StatusChange, error) {
	return s.repo.History(ctx, externalID)
}

func (s *CardService) Edit(ctx context.Context, externalID string, patch store.CardPatch) error {
	return s.repo.UpdateFields(ctx, externalID, patch)
}
