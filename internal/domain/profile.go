package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/restwise/insomnia-coach/internal/engine"
)

// SleepProfile is the persisted chronotype/sleep-need profile. It is
// created whole from a questionnaire and replaced, never patched, when
// the questionnaire is re-administered.
type SleepProfile struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID             uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Chronotype         string    `gorm:"type:varchar(32);not null" json:"chronotype"`
	ChronotypeScore    int       `gorm:"type:smallint;not null" json:"chronotype_score"`
	SleepNeedMinutes   int       `gorm:"not null" json:"sleep_need_minutes"`
	SleepNeedCategory  string    `gorm:"type:varchar(16);not null" json:"sleep_need_category"`
	OptimalWakeMin     int       `gorm:"not null" json:"optimal_wake_min"`
	OptimalBedMin      int       `gorm:"not null" json:"optimal_bed_min"`
	SocialJetLagMin    int       `gorm:"not null" json:"social_jetlag_min"`
	AccumulatedDebtMin int       `gorm:"not null" json:"accumulated_debt_min"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Associations
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (SleepProfile) TableName() string {
	return "sleep_profiles"
}

// FromEngineProfile maps the engine's computed profile onto the
// persisted entity.
func FromEngineProfile(userID uuid.UUID, p engine.Profile) *SleepProfile {
	return &SleepProfile{
		ID:                 uuid.New(),
		UserID:             userID,
		Chronotype:         string(p.Chronotype),
		ChronotypeScore:    p.ChronotypeScore,
		SleepNeedMinutes:   p.SleepNeedMinutes,
		SleepNeedCategory:  string(p.SleepNeedCategory),
		OptimalWakeMin:     p.OptimalWakeMin,
		OptimalBedMin:      p.OptimalBedMin,
		SocialJetLagMin:    p.SocialJetLagMin,
		AccumulatedDebtMin: p.AccumulatedDebtMin,
	}
}

// ToEngineProfile reconstructs the engine value from the entity.
func (p *SleepProfile) ToEngineProfile() engine.Profile {
	return engine.Profile{
		Chronotype:         engine.Chronotype(p.Chronotype),
		ChronotypeScore:    p.ChronotypeScore,
		SleepNeedMinutes:   p.SleepNeedMinutes,
		SleepNeedCategory:  engine.SleepNeedCategory(p.SleepNeedCategory),
		OptimalWakeMin:     p.OptimalWakeMin,
		OptimalBedMin:      p.OptimalBedMin,
		SocialJetLagMin:    p.SocialJetLagMin,
		AccumulatedDebtMin: p.AccumulatedDebtMin,
	}
}

// QuestionnaireRequest is the onboarding questionnaire payload.
// @Description One-time chronotype and sleep-need questionnaire. Clock
// @Description times refer to free (non-work) days.
type QuestionnaireRequest struct {
	// Natural wake time on free days, "HH:MM"
	FreeWakeTime string `json:"free_wake_time" validate:"required,clocktime" example:"07:30"`
	// Natural bedtime on free days, "HH:MM"
	FreeBedTime string `json:"free_bed_time" validate:"required,clocktime" example:"23:30"`
	// Subjective nightly sleep need in hours
	SleepNeedHours float64 `json:"sleep_need_hours" validate:"required,min=3,max=14" example:"8"`
	// Alertness in the first half hour after waking, 1 (very groggy) to 5 (fully alert)
	MorningAlertness int `json:"morning_alertness" validate:"required,min=1,max=5" example:"3"`
	// Difficulty getting out of bed, 1 (none) to 5 (severe)
	WakingDifficulty int `json:"waking_difficulty" validate:"required,min=1,max=5" example:"3"`
	// Ease of falling asleep at the usual time, 1 (very hard) to 5 (very easy)
	SleepOnsetEase int `json:"sleep_onset_ease" validate:"required,min=1,max=5" example:"3"`
	// Typical daytime fatigue, 1 (none) to 5 (severe)
	FatigueLevel int `json:"fatigue_level" validate:"required,min=1,max=5" example:"3"`
	// Self-assessed time of day of peak performance
	PeakPerformance string `json:"peak_performance" validate:"required,oneof=early_morning late_morning afternoon evening night" example:"afternoon"`
	// Whether the user habitually oversleeps on weekends
	WeekendOversleep bool `json:"weekend_oversleep" example:"true"`
	// Difference between free-day and work-day mid-sleep, in minutes
	SocialJetLagMin int `json:"social_jetlag_min" validate:"min=0,max=600" example:"45"`
}

// ToQuestionnaire converts the request into the engine's input.
func (r *QuestionnaireRequest) ToQuestionnaire() engine.Questionnaire {
	return engine.Questionnaire{
		FreeWakeTime:     r.FreeWakeTime,
		FreeBedTime:      r.FreeBedTime,
		SleepNeedHours:   r.SleepNeedHours,
		MorningAlertness: r.MorningAlertness,
		WakingDifficulty: r.WakingDifficulty,
		SleepOnsetEase:   r.SleepOnsetEase,
		FatigueLevel:     r.FatigueLevel,
		PeakPerformance:  engine.PeakTime(r.PeakPerformance),
		WeekendOversleep: r.WeekendOversleep,
		SocialJetLagMin:  r.SocialJetLagMin,
	}
}

// SleepProfileResponse is the profile as returned by the API, with clock
// times rendered as "HH:MM".
type SleepProfileResponse struct {
	ID                 uuid.UUID `json:"id"`
	UserID             uuid.UUID `json:"user_id"`
	Chronotype         string    `json:"chronotype"`
	ChronotypeScore    int       `json:"chronotype_score"`
	SleepNeedMinutes   int       `json:"sleep_need_minutes"`
	SleepNeedCategory  string    `json:"sleep_need_category"`
	OptimalWakeTime    string    `json:"optimal_wake_time"`
	OptimalBedTime     string    `json:"optimal_bed_time"`
	SocialJetLagMin    int       `json:"social_jetlag_min"`
	AccumulatedDebtMin int       `json:"accumulated_debt_min"`
	CreatedAt          time.Time `json:"created_at"`
}

func (p *SleepProfile) ToResponse() SleepProfileResponse {
	return SleepProfileResponse{
		ID:                 p.ID,
		UserID:             p.UserID,
		Chronotype:         p.Chronotype,
		ChronotypeScore:    p.ChronotypeScore,
		SleepNeedMinutes:   p.SleepNeedMinutes,
		SleepNeedCategory:  p.SleepNeedCategory,
		OptimalWakeTime:    engine.FormatClock(p.OptimalWakeMin),
		OptimalBedTime:     engine.FormatClock(p.OptimalBedMin),
		SocialJetLagMin:    p.SocialJetLagMin,
		AccumulatedDebtMin: p.AccumulatedDebtMin,
		CreatedAt:          p.CreatedAt,
	}
}
