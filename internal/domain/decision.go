package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/restwise/insomnia-coach/internal/engine"
)

// DecisionRecord is one row of the append-only decision audit log.
// Records are written once and never updated; retention is handled at
// this persistence boundary, not inside the engine.
type DecisionRecord struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_decisions_user_time" json:"user_id"`
	Timestamp  time.Time       `gorm:"not null;index:idx_decisions_user_time,sort:desc" json:"timestamp"`
	Category   string          `gorm:"type:varchar(32);not null" json:"category"`
	Chosen     string          `gorm:"type:varchar(64);not null" json:"chosen"`
	Considered json.RawMessage `gorm:"type:jsonb" json:"considered"`
	Tailoring  json.RawMessage `gorm:"type:jsonb" json:"tailoring"`
	Reason     string          `gorm:"type:text;not null" json:"reason"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`

	// Associations
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (DecisionRecord) TableName() string {
	return "decision_records"
}

// FromEngineDecision maps an engine decision onto an audit row. The
// tailoring snapshot and considered set are stored as JSON so the full
// context of the choice survives schema evolution.
func FromEngineDecision(d engine.Decision) (*DecisionRecord, error) {
	considered, err := json.Marshal(d.Considered)
	if err != nil {
		return nil, err
	}
	tailoring, err := json.Marshal(d.Tailoring)
	if err != nil {
		return nil, err
	}
	return &DecisionRecord{
		ID:         d.ID,
		UserID:     d.UserID,
		Timestamp:  d.Timestamp,
		Category:   string(d.Category),
		Chosen:     string(d.Chosen),
		Considered: considered,
		Tailoring:  tailoring,
		Reason:     d.Reason,
	}, nil
}

// DecisionFilter narrows and paginates audit-log reads.
type DecisionFilter struct {
	From     *time.Time
	To       *time.Time
	Category string
	Cursor   string
	Limit    int
}

// DecisionResponse is a decision record as returned by the API.
type DecisionResponse struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"user_id"`
	Timestamp  time.Time       `json:"timestamp"`
	Category   string          `json:"category"`
	Chosen     string          `json:"chosen"`
	Considered json.RawMessage `json:"considered"`
	Tailoring  json.RawMessage `json:"tailoring"`
	Reason     string          `json:"reason"`
}

func (d *DecisionRecord) ToResponse() DecisionResponse {
	return DecisionResponse{
		ID:         d.ID,
		UserID:     d.UserID,
		Timestamp:  d.Timestamp,
		Category:   d.Category,
		Chosen:     d.Chosen,
		Considered: d.Considered,
		Tailoring:  d.Tailoring,
		Reason:     d.Reason,
	}
}

// DecisionListResponse is a paginated page of the audit log.
type DecisionListResponse struct {
	Decisions  []DecisionResponse `json:"decisions"`
	NextCursor string             `json:"next_cursor,omitempty"`
}
