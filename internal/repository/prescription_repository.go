package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/restwise/insomnia-coach/internal/domain"
)

type PrescriptionRepository interface {
	Create(ctx context.Context, prescription *domain.Prescription) error
	// GetActive returns the highest-week prescription for the user.
	GetActive(ctx context.Context, userID uuid.UUID) (*domain.Prescription, error)
}

type prescriptionRepository struct {
	db *gorm.DB
}

func NewPrescriptionRepository(db *gorm.DB) PrescriptionRepository {
	return &prescriptionRepository{db: db}
}

func (r *prescriptionRepository) Create(ctx context.Context, prescription *domain.Prescription) error {
	return r.db.WithContext(ctx).Create(prescription).Error
}

func (r *prescriptionRepository) GetActive(ctx context.Context, userID uuid.UUID) (*domain.Prescription, error) {
	var p domain.Prescription
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("week DESC").
		First(&p).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNoPrescription
		}
		return nil, err
	}
	return &p, nil
}
