package repository

import (
	"gorm.io/gorm"

	"github.com/obunabot/obuna_go_server/internal/model"
)

type CardRepository struct {
	db *gorm.DB
}

func NewCardRepository(db *gorm.DB) *CardRepository {
	return &CardRepository{db: db}
}

func (r *CardRepository) Create(card *model.Card) error {
	return r.db.Create(card).Error
}

func (r *CardRepository) ListActive() ([]model.Card, error) {
	var cards []model.Card
	err := r.db.Where("is_active = ?", true).Order("id").Find(&cards).Error
	return cards, err
}

func (r *CardRepository) Deactivate(id int64) error {
	return r.db.Model(&model.Card{}).Where("id = ?", id).Update("is_active", false).Error
}
