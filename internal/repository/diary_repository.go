package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/restwise/insomnia-coach/internal/domain"
)

type DiaryRepository interface {
	Create(ctx context.Context, entry *domain.DiaryEntry) error
	GetByClientRequestID(ctx context.Context, userID uuid.UUID, clientRequestID string) (*domain.DiaryEntry, error)
	// ListRecent returns the newest entries first, up to limit.
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]domain.DiaryEntry, error)
	// RecentEfficiencies returns the nightly sleep-efficiency values of
	// the last `nights` entries, newest first.
	RecentEfficiencies(ctx context.Context, userID uuid.UUID, nights int) ([]float64, error)
	// AdherenceRate is the fraction of adhered reports over the window.
	AdherenceRate(ctx context.Context, userID uuid.UUID, from time.Time) (float64, error)
}

type diaryRepository struct {
	db *gorm.DB
}

func NewDiaryRepository(db *gorm.DB) DiaryRepository {
	return &diaryRepository{db: db}
}

func (r *diaryRepository) Create(ctx context.Context, entry *domain.DiaryEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *diaryRepository) GetByClientRequestID(ctx context.Context, userID uuid.UUID, clientRequestID string) (*domain.DiaryEntry, error) {
	var entry domain.DiaryEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND client_request_id = ?", userID, clientRequestID).
		First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *diaryRepository) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]domain.DiaryEntry, error) {
	var entries []domain.DiaryEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("reported_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *diaryRepository) RecentEfficiencies(ctx context.Context, userID uuid.UUID, nights int) ([]float64, error) {
	entries, err := r.ListRecent(ctx, userID, nights)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(entries))
	for i, e := range entries {
		out[i] = e.Efficiency
	}
	return out, nil
}

func (r *diaryRepository) AdherenceRate(ctx context.Context, userID uuid.UUID, from time.Time) (float64, error) {
	var total, adhered int64
	q := r.db.WithContext(ctx).Model(&domain.DiaryEntry{}).
		Where("user_id = ? AND reported_at >= ?", userID, from)
	if err := q.Count(&total).Error; err != nil {
		return 0, err
	}
	if total == 0 {
		// No evidence either way; assume adherent rather than firm-remind
		// a user who simply has no history yet.
		return 1, nil
	}
	if err := q.Where("adhered = ?", true).Count(&adhered).Error; err != nil {
		return 0, err
	}
	return float64(adhered) / float64(total), nil
}
