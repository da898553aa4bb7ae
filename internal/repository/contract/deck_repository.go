package contract

import (
	"context"

	"slidesync-be/internal/entity"

	"github.com/google/uuid"
)

type DeckRepository interface {
	Create(ctx context.Context, deck *entity.Deck) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.Deck, error)
	FindAll(ctx context.Context) ([]*entity.Deck, error)
	UpdateByteSize(ctx context.Context, id uuid.UUID, size int64) error
}
