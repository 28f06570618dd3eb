package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/obunabot/obuna_go_server/internal/model"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(payment *model.Payment) error {
	return r.db.Create(payment).Error
}

func (r *PaymentRepository) GetByID(id int64) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.Preload("User").Where("id = ?", id).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// Decide flips a pending payment to the given status. The WHERE on
// status = pending is the compare-and-set that serializes racing admins:
// exactly one caller sees decided = true, everyone else loses.
func (r *PaymentRepository) Decide(id int64, adminID int64, status string, decidedAt time.Time) (bool, error) {
	res := r.db.Model(&model.Payment{}).
		Where("id = ? AND status = ?", id, model.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":     status,
			"decided_by": adminID,
			"decided_at": decidedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *PaymentRepository) List(status string, page, pageSize int) ([]model.Payment, int64, error) {
	query := r.db.Model(&model.Payment{}).Preload("User")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []model.Payment
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&payments).Error
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func (r *PaymentRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Payment{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
