package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/restwise/insomnia-coach/internal/domain"
)

type SnapshotRepository interface {
	Create(ctx context.Context, snapshot *domain.EngineSnapshot) error
	// GetLatest returns the most recent snapshot for the user, or
	// domain.ErrNotFound before the first observation is processed.
	GetLatest(ctx context.Context, userID uuid.UUID) (*domain.EngineSnapshot, error)
}

type snapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) Create(ctx context.Context, snapshot *domain.EngineSnapshot) error {
	return r.db.WithContext(ctx).Create(snapshot).Error
}

func (r *snapshotRepository) GetLatest(ctx context.Context, userID uuid.UUID) (*domain.EngineSnapshot, error) {
	var snap domain.EngineSnapshot
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&snap).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &snap, nil
}
