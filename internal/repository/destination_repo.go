package repository

import (
	"gorm.io/gorm"

	"github.com/obunabot/obuna_go_server/internal/model"
)

type DestinationRepository struct {
	db *gorm.DB
}

func NewDestinationRepository(db *gorm.DB) *DestinationRepository {
	return &DestinationRepository{db: db}
}

func (r *DestinationRepository) Create(dest *model.Destination) error {
	return r.db.Create(dest).Error
}

func (r *DestinationRepository) GetByID(id int64) (*model.Destination, error) {
	var dest model.Destination
	err := r.db.Where("id = ?", id).First(&dest).Error
	if err != nil {
		return nil, err
	}
	return &dest, nil
}

func (r *DestinationRepository) ListActive() ([]model.Destination, error) {
	var dests []model.Destination
	err := r.db.Where("is_active = ?", true).Order("id").Find(&dests).Error
	return dests, err
}

// Deactivate soft-deletes a destination; the sweep stops touching it.
func (r *DestinationRepository) Deactivate(id int64) error {
	return r.db.Model(&model.Destination{}).Where("id = ?", id).Update("is_active", false).Error
}

func (r *DestinationRepository) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&model.Destination{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}
