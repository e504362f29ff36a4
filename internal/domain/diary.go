package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/restwise/insomnia-coach/internal/engine"
)

// DiaryEntry is one persisted daily self-report. The decision engine
// itself never stores observations; it receives a transient
// engine.Observation derived from this entry.
type DiaryEntry struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index:idx_diary_user_reported" json:"user_id"`
	ReportedAt      time.Time `gorm:"not null;index:idx_diary_user_reported,sort:desc" json:"reported_at"`
	Efficiency      float64   `gorm:"not null" json:"efficiency"`
	ISI             *int      `gorm:"type:smallint" json:"isi,omitempty"`
	OnsetLatencyMin float64   `gorm:"not null" json:"onset_latency_min"`
	WASOMin         float64   `gorm:"not null" json:"waso_min"`
	Quality         int       `gorm:"type:smallint;not null" json:"quality"`
	Adhered         bool      `gorm:"not null" json:"adhered"`
	Mood            *int      `gorm:"type:smallint" json:"mood,omitempty"`
	Source          string    `gorm:"type:varchar(32);not null;default:'diary'" json:"source"`
	ClientRequestID *string   `gorm:"type:varchar(255);uniqueIndex:idx_diary_user_client_request,where:client_request_id IS NOT NULL" json:"client_request_id,omitempty"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Associations
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (DiaryEntry) TableName() string {
	return "diary_entries"
}

// CreateDailyReportRequest is the request body for submitting a daily
// self-report.
// @Description Daily sleep diary payload. Derived metrics (efficiency,
// @Description latency) are computed upstream by the diary collaborator.
type CreateDailyReportRequest struct {
	// Report timestamp in RFC3339 format
	ReportedAt time.Time `json:"reported_at" validate:"required" example:"2026-03-02T07:30:00Z"`
	// Sleep efficiency percentage for last night
	Efficiency float64 `json:"efficiency" validate:"required,min=0,max=100" example:"82.5"`
	// Insomnia Severity Index (collected periodically, omit between administrations)
	ISI *int `json:"isi,omitempty" validate:"omitempty,min=0,max=28" example:"14"`
	// Sleep onset latency in minutes
	OnsetLatencyMin float64 `json:"onset_latency_min" validate:"min=0,max=600" example:"35"`
	// Wake after sleep onset in minutes
	WASOMin float64 `json:"waso_min" validate:"min=0,max=600" example:"20"`
	// Subjective sleep quality from 1 (poor) to 10 (excellent)
	Quality int `json:"quality" validate:"required,min=1,max=10" example:"6"`
	// Whether yesterday's intervention was followed
	Adhered bool `json:"adhered" example:"true"`
	// Mood on waking from 1 (low) to 5 (high)
	Mood *int `json:"mood,omitempty" validate:"omitempty,min=1,max=5" example:"3"`
	// Measurement source tag
	Source string `json:"source,omitempty" validate:"omitempty,oneof=diary wearable" example:"diary"`
	// Optional client-generated ID for idempotent requests (max 255 chars)
	ClientRequestID *string `json:"client_request_id,omitempty" validate:"omitempty,max=255" example:"client-uuid-12345"`
}

// ToObservation converts the stored entry into the engine's transient
// observation. Subjective quality and mood map onto the arousal/anxiety
// features: a poor, low-mood night is treated as a high-arousal signal.
func (d *DiaryEntry) ToObservation() engine.Observation {
	eff := d.Efficiency
	sol := d.OnsetLatencyMin
	waso := d.WASOMin
	adherence := 0.0
	if d.Adhered {
		adherence = 1.0
	}

	obs := engine.Observation{
		Efficiency:      &eff,
		OnsetLatencyMin: &sol,
		WASOMin:         &waso,
		Adherence:       &adherence,
		Source:          d.Source,
		Timestamp:       d.ReportedAt,
	}
	if d.ISI != nil {
		isi := float64(*d.ISI)
		obs.ISI = &isi
	}

	arousal := 1 - float64(d.Quality-1)/9
	obs.Arousal = &arousal
	if d.Mood != nil {
		anxiety := 1 - float64(*d.Mood-1)/4
		obs.Anxiety = &anxiety
	}
	return obs
}

// DailyReportResponse is the response body after processing a daily
// report: the stored entry plus the engine's resulting decision.
type DailyReportResponse struct {
	Entry    DiaryEntryResponse `json:"entry"`
	Decision DecisionResponse   `json:"decision"`
	// Optional rendered coaching message (absent when the LLM is not configured)
	Message string `json:"message,omitempty"`
}

// DiaryEntryResponse is the stored diary entry as returned by the API.
type DiaryEntryResponse struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	ReportedAt      time.Time `json:"reported_at"`
	Efficiency      float64   `json:"efficiency"`
	ISI             *int      `json:"isi,omitempty"`
	OnsetLatencyMin float64   `json:"onset_latency_min"`
	WASOMin         float64   `json:"waso_min"`
	Quality         int       `json:"quality"`
	Adhered         bool      `json:"adhered"`
	Mood            *int      `json:"mood,omitempty"`
	Source          string    `json:"source"`
	CreatedAt       time.Time `json:"created_at"`
}

func (d *DiaryEntry) ToResponse() DiaryEntryResponse {
	return DiaryEntryResponse{
		ID:              d.ID,
		UserID:          d.UserID,
		ReportedAt:      d.ReportedAt,
		Efficiency:      d.Efficiency,
		ISI:             d.ISI,
		OnsetLatencyMin: d.OnsetLatencyMin,
		WASOMin:         d.WASOMin,
		Quality:         d.Quality,
		Adhered:         d.Adhered,
		Mood:            d.Mood,
		Source:          d.Source,
		CreatedAt:       d.CreatedAt,
	}
}
