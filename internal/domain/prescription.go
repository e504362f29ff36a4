package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/restwise/insomnia-coach/internal/engine"
)

// Prescription is the persisted sleep-window prescription. One row per
// user per treatment week; the latest row is the active prescription.
type Prescription struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index:idx_prescriptions_user_week" json:"user_id"`
	Week       int       `gorm:"not null;index:idx_prescriptions_user_week,sort:desc" json:"week"`
	TIBMinutes int       `gorm:"not null" json:"tib_minutes"`
	BedtimeMin int       `gorm:"not null" json:"bedtime_min"`
	WakeMin    int       `gorm:"not null" json:"wake_min"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Associations
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Prescription) TableName() string {
	return "prescriptions"
}

// FromEnginePrescription maps the engine value onto a new entity row.
func FromEnginePrescription(userID uuid.UUID, p engine.Prescription) *Prescription {
	return &Prescription{
		ID:         uuid.New(),
		UserID:     userID,
		Week:       p.Week,
		TIBMinutes: p.TIBMinutes,
		BedtimeMin: p.BedtimeMin,
		WakeMin:    p.WakeMin,
	}
}

// ToEnginePrescription reconstructs the engine value from the entity.
func (p *Prescription) ToEnginePrescription() engine.Prescription {
	return engine.Prescription{
		TIBMinutes: p.TIBMinutes,
		BedtimeMin: p.BedtimeMin,
		WakeMin:    p.WakeMin,
		Week:       p.Week,
	}
}

// PrescriptionResponse is the prescription as returned by the API.
type PrescriptionResponse struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Week       int       `json:"week"`
	TIBMinutes int       `json:"tib_minutes"`
	Bedtime    string    `json:"bedtime"`
	WakeTime   string    `json:"wake_time"`
	CreatedAt  time.Time `json:"created_at"`
}

func (p *Prescription) ToResponse() PrescriptionResponse {
	return PrescriptionResponse{
		ID:         p.ID,
		UserID:     p.UserID,
		Week:       p.Week,
		TIBMinutes: p.TIBMinutes,
		Bedtime:    engine.FormatClock(p.BedtimeMin),
		WakeTime:   engine.FormatClock(p.WakeMin),
		CreatedAt:  p.CreatedAt,
	}
}

// AdjustPlanResponse is returned by the weekly plan adjustment endpoint.
type AdjustPlanResponse struct {
	Prescription PrescriptionResponse `json:"prescription"`
	// Minutes added to or removed from time in bed
	Delta int `json:"delta"`
	// Which advice path produced the change: rule, model, hybrid, or safety_override
	Basis      string  `json:"basis"`
	Confidence float64 `json:"confidence"`
	// Human-readable rationale
	Explanation       string   `json:"explanation"`
	RiskFactors       []string `json:"risk_factors,omitempty"`
	ProtectiveFactors []string `json:"protective_factors,omitempty"`
}
