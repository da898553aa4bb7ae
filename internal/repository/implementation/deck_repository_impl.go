package implementation

import (
	"context"
	"errors"

	"slidesync-be/internal/entity"
	"slidesync-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DeckRepositoryImpl struct {
	db *gorm.DB
}

func NewDeckRepository(db *gorm.DB) contract.DeckRepository {
	return &DeckRepositoryImpl{db: db}
}

func (r *DeckRepositoryImpl) Create(ctx context.Context, deck *entity.Deck) error {
	return r.db.WithContext(ctx).Create(deck).Error
}

func (r *DeckRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.Deck, error) {
	var deck entity.Deck
	if err := r.db.WithContext(ctx).First(&deck, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &deck, nil
}

func (r *DeckRepositoryImpl) FindAll(ctx context.Context) ([]*entity.Deck, error) {
	var decks []*entity.Deck
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&decks).Error; err != nil {
		return nil, err
	}
	return decks, nil
}

func (r *DeckRepositoryImpl) UpdateByteSize(ctx context.Context, id uuid.UUID, size int64) error {
	return r.db.WithContext(ctx).Model(&entity.Deck{}).Where("id = ?", id).Update("byte_size", size).Error
}
