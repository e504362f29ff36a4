package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/restwise/insomnia-coach/internal/domain"
)

type ProfileRepository interface {
	// Replace removes any existing profile for the user and stores the
	// new one. Profiles are never partially patched.
	Replace(ctx context.Context, profile *domain.SleepProfile) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.SleepProfile, error)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Replace(ctx context.Context, profile *domain.SleepProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", profile.UserID).Delete(&domain.SleepProfile{}).Error; err != nil {
			return err
		}
		return tx.Create(profile).Error
	})
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.SleepProfile, error) {
	var profile domain.SleepProfile
	err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNoProfile
		}
		return nil, err
	}
	return &profile, nil
}
