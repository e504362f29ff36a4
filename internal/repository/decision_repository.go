package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/restwise/insomnia-coach/internal/domain"
	"github.com/restwise/insomnia-coach/pkg/pagination"
)

// DecisionRepository persists the append-only audit log. There is no
// update or delete path by design; Prune is the single retention hook,
// applied at this boundary because the log otherwise grows without
// bound.
type DecisionRepository interface {
	Append(ctx context.Context, record *domain.DecisionRecord) error
	List(ctx context.Context, userID uuid.UUID, filter domain.DecisionFilter) ([]domain.DecisionRecord, error)
	// LatestByCategory returns the newest record in a category, or nil
	// when the user has none.
	LatestByCategory(ctx context.Context, userID uuid.UUID, category string) (*domain.DecisionRecord, error)
	// Prune drops audit records older than the cutoff for all users.
	Prune(ctx context.Context, olderThan time.Time) (int64, error)
}

type decisionRepository struct {
	db *gorm.DB
}

func NewDecisionRepository(db *gorm.DB) DecisionRepository {
	return &decisionRepository{db: db}
}

func (r *decisionRepository) Append(ctx context.Context, record *domain.DecisionRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *decisionRepository) List(ctx context.Context, userID uuid.UUID, filter domain.DecisionFilter) ([]domain.DecisionRecord, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC")

	if filter.From != nil {
		query = query.Where("timestamp >= ?", filter.From)
	}
	if filter.To != nil {
		query = query.Where("timestamp <= ?", filter.To)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	if filter.Cursor != "" {
		cursor, err := pagination.DecodeCursor(filter.Cursor)
		if err == nil && cursor != nil {
			// DESC order: records strictly before the cursor position.
			query = query.Where(
				"(timestamp < ?) OR (timestamp = ? AND id < ?)",
				cursor.Timestamp, cursor.Timestamp, cursor.ID,
			)
		}
	}

	// Fetch one extra to detect a next page.
	limit := pagination.NormalizeLimit(filter.Limit)
	query = query.Limit(limit + 1)

	var records []domain.DecisionRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *decisionRepository) LatestByCategory(ctx context.Context, userID uuid.UUID, category string) (*domain.DecisionRecord, error) {
	var record domain.DecisionRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND category = ?", userID, category).
		Order("timestamp DESC").
		First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *decisionRepository) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("timestamp < ?", olderThan).
		Delete(&domain.DecisionRecord{})
	return res.RowsAffected, res.Error
}
