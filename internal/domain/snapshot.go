package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/restwise/insomnia-coach/internal/engine"
)

// EngineSnapshot is the persisted engine state for one user: belief,
// per-action counters, and config, serialized as JSON. A new row is
// written after every processed observation; the latest row rebuilds the
// engine on restart.
type EngineSnapshot struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_snapshots_user_created" json:"user_id"`
	State     json.RawMessage `gorm:"type:jsonb;not null" json:"state"`
	CreatedAt time.Time       `gorm:"autoCreateTime;index:idx_snapshots_user_created,sort:desc" json:"created_at"`

	// Associations
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (EngineSnapshot) TableName() string {
	return "engine_snapshots"
}

// FromEngineSnapshot serializes an engine snapshot for storage.
func FromEngineSnapshot(userID uuid.UUID, snap engine.Snapshot) (*EngineSnapshot, error) {
	state, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	return &EngineSnapshot{
		ID:     uuid.New(),
		UserID: userID,
		State:  state,
	}, nil
}

// ToEngineSnapshot deserializes the stored state.
func (s *EngineSnapshot) ToEngineSnapshot() (engine.Snapshot, error) {
	var snap engine.Snapshot
	if err := json.Unmarshal(s.State, &snap); err != nil {
		return engine.Snapshot{}, err
	}
	return snap, nil
}
