package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DecisionCategory classifies an audit-log decision.
type DecisionCategory string

const (
	DecisionInterventionSelection DecisionCategory = "intervention_selection"
	DecisionBedtimeReminder       DecisionCategory = "bedtime_reminder"
	DecisionWeekendConsistency    DecisionCategory = "weekend_consistency"
	DecisionTrendResponse         DecisionCategory = "trend_response"
	DecisionNoop                  DecisionCategory = "noop"
)

// InterventionOption is a deliverable micro-intervention.
type InterventionOption string

const (
	OptionFirmReminder        InterventionOption = "firm_reminder"
	OptionWindDownPrompt      InterventionOption = "wind_down_prompt"
	OptionGentleReminder      InterventionOption = "gentle_reminder"
	OptionWeekendConsistency  InterventionOption = "weekend_consistency_reminder"
	OptionSocialJetlagWarning InterventionOption = "social_jetlag_warning"
	OptionEncouragement       InterventionOption = "encouragement"
	OptionAdherenceCheck      InterventionOption = "adherence_check"
	OptionDeclineAlert        InterventionOption = "decline_alert"
	OptionNone                InterventionOption = "none"
)

// Scheduler rule thresholds.
const (
	bedtimeWindowMin       = 120 // reminder window before bedtime, minutes
	windDownWindowMin      = 30
	firmAdherenceThreshold = 0.6
	jetlagEscalationMin    = 60
	declineAlertSE         = 75.0
)

// Tailoring is the snapshot of tailoring variables a decision was based
// on, stored with the decision for auditability.
type Tailoring struct {
	MinutesToBedtime int         `json:"minutes_to_bedtime"`
	IsFreeDay        bool        `json:"is_free_day"`
	AdherenceRate    float64     `json:"adherence_rate"`
	SocialJetLagMin  int         `json:"social_jetlag_min"`
	Forecast         *Prediction `json:"forecast,omitempty"`
}

// Decision is an append-only audit record of one scheduling evaluation.
type Decision struct {
	ID         uuid.UUID            `json:"id"`
	UserID     uuid.UUID            `json:"user_id"`
	Timestamp  time.Time            `json:"timestamp"`
	Category   DecisionCategory     `json:"category"`
	Tailoring  Tailoring            `json:"tailoring"`
	Chosen     InterventionOption   `json:"chosen"`
	Considered []InterventionOption `json:"considered"`
	Reason     string               `json:"reason"`
}

// SchedulerContext carries the real-time tailoring variables for one
// evaluation. The caller resolves timezone and free-day status before
// invoking the engine.
type SchedulerContext struct {
	Now           time.Time
	Prescription  Prescription
	Profile       Profile
	AdherenceRate float64
	IsFreeDay     bool
	Forecast      *Prediction
}

// JITAIScheduler decides whether and how to intervene right now. The
// rules form an ordered cascade; the first matching rule wins, and every
// evaluation, including no-ops, yields an audit Decision.
type JITAIScheduler struct{}

// Decide runs the cascade for a user at ctx.Now.
func (JITAIScheduler) Decide(userID uuid.UUID, ctx SchedulerContext) Decision {
	nowMin := ctx.Now.Hour()*60 + ctx.Now.Minute()
	mtb := wrapMinutes(ctx.Prescription.BedtimeMin - nowMin)

	d := Decision{
		ID:        uuid.New(),
		UserID:    userID,
		Timestamp: ctx.Now,
		Tailoring: Tailoring{
			MinutesToBedtime: mtb,
			IsFreeDay:        ctx.IsFreeDay,
			AdherenceRate:    ctx.AdherenceRate,
			SocialJetLagMin:  ctx.Profile.SocialJetLagMin,
			Forecast:         ctx.Forecast,
		},
	}

	// Rule 1: approaching bedtime.
	if mtb > 0 && mtb <= bedtimeWindowMin {
		d.Category = DecisionBedtimeReminder
		d.Considered = []InterventionOption{OptionFirmReminder, OptionWindDownPrompt, OptionGentleReminder}
		switch {
		case ctx.AdherenceRate < firmAdherenceThreshold:
			d.Chosen = OptionFirmReminder
			d.Reason = fmt.Sprintf("bedtime in %d min with recent adherence %.2f below %.1f", mtb, ctx.AdherenceRate, firmAdherenceThreshold)
		case mtb <= windDownWindowMin:
			d.Chosen = OptionWindDownPrompt
			d.Reason = fmt.Sprintf("bedtime in %d min, inside the wind-down window", mtb)
		default:
			d.Chosen = OptionGentleReminder
			d.Reason = fmt.Sprintf("bedtime in %d min", mtb)
		}
		return d
	}

	// Rule 2: free day, long before bedtime.
	if ctx.IsFreeDay && mtb > bedtimeWindowMin {
		d.Category = DecisionWeekendConsistency
		d.Considered = []InterventionOption{OptionWeekendConsistency, OptionSocialJetlagWarning}
		if ctx.Profile.SocialJetLagMin > jetlagEscalationMin {
			d.Chosen = OptionSocialJetlagWarning
			d.Reason = fmt.Sprintf("free day with social jet lag %d min above %d min", ctx.Profile.SocialJetLagMin, jetlagEscalationMin)
		} else {
			d.Chosen = OptionWeekendConsistency
			d.Reason = "free day, reinforcing schedule consistency"
		}
		return d
	}

	// Rule 3: trend-based response when a forecast is available.
	if ctx.Forecast != nil {
		switch ctx.Forecast.Trend {
		case TrendImproving:
			d.Category = DecisionTrendResponse
			d.Considered = []InterventionOption{OptionEncouragement}
			d.Chosen = OptionEncouragement
			d.Reason = "forecast trend improving"
			return d
		case TrendDeclining, TrendCritical:
			d.Category = DecisionTrendResponse
			d.Considered = []InterventionOption{OptionAdherenceCheck, OptionDeclineAlert}
			if ctx.Forecast.PointEstimate < declineAlertSE {
				d.Chosen = OptionDeclineAlert
				d.Reason = fmt.Sprintf("forecast trend %s with predicted SE %.1f%% below %.0f%%", ctx.Forecast.Trend, ctx.Forecast.PointEstimate, declineAlertSE)
			} else {
				d.Chosen = OptionAdherenceCheck
				d.Reason = fmt.Sprintf("forecast trend %s", ctx.Forecast.Trend)
			}
			return d
		}
	}

	// Default: nothing to do, still audited.
	d.Category = DecisionNoop
	d.Chosen = OptionNone
	d.Reason = "no rule matched"
	return d
}
