package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/restwise/insomnia-coach/internal/domain"
	"github.com/restwise/insomnia-coach/internal/repository"
	"github.com/restwise/insomnia-coach/pkg/pagination"
)

// DecisionService reads the append-only decision audit log.
type DecisionService interface {
	List(ctx context.Context, userID uuid.UUID, filter domain.DecisionFilter) (*domain.DecisionListResponse, error)
}

type decisionService struct {
	userRepo     repository.UserRepository
	decisionRepo repository.DecisionRepository
}

func NewDecisionService(userRepo repository.UserRepository, decisionRepo repository.DecisionRepository) DecisionService {
	return &decisionService{userRepo: userRepo, decisionRepo: decisionRepo}
}

func (s *decisionService) List(ctx context.Context, userID uuid.UUID, filter domain.DecisionFilter) (*domain.DecisionListResponse, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	records, err := s.decisionRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	// The repository fetches limit+1; the extra record signals a next
	// page and anchors the cursor at the last returned row.
	limit := pagination.NormalizeLimit(filter.Limit)
	var nextCursor string
	if len(records) > limit {
		records = records[:limit]
		last := records[len(records)-1]
		cursor := pagination.Cursor{ID: last.ID, Timestamp: last.Timestamp}
		nextCursor = cursor.Encode()
	}

	decisions := make([]domain.DecisionResponse, len(records))
	for i := range records {
		decisions[i] = records[i].ToResponse()
	}

	return &domain.DecisionListResponse{
		Decisions:  decisions,
		NextCursor: nextCursor,
	}, nil
}
