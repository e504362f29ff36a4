package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidQuestionnaire indicates the questionnaire contained values the
// estimator cannot interpret (e.g. a malformed clock time).
var ErrInvalidQuestionnaire = errors.New("invalid questionnaire")

// PeakTime is the self-reported time of day of peak performance.
type PeakTime string

const (
	PeakEarlyMorning PeakTime = "early_morning"
	PeakLateMorning  PeakTime = "late_morning"
	PeakAfternoon    PeakTime = "afternoon"
	PeakEvening      PeakTime = "evening"
	PeakNight        PeakTime = "night"
)

// Chronotype categories derived from the chronotype score.
type Chronotype string

const (
	ChronotypeDefiniteMorning Chronotype = "definite_morning"
	ChronotypeModerateMorning Chronotype = "moderate_morning"
	ChronotypeIntermediate    Chronotype = "intermediate"
	ChronotypeModerateEvening Chronotype = "moderate_evening"
	ChronotypeDefiniteEvening Chronotype = "definite_evening"
)

// SleepNeedCategory buckets the estimated nightly sleep need.
type SleepNeedCategory string

const (
	SleepNeedShort    SleepNeedCategory = "short"
	SleepNeedAverage  SleepNeedCategory = "average"
	SleepNeedLong     SleepNeedCategory = "long"
)

// Chronotype score and sleep-need bounds.
const (
	ChronotypeScoreMin = 16
	ChronotypeScoreMax = 86
	SleepNeedMinutesMin = 300
	SleepNeedMinutesMax = 600
)

// Questionnaire is the one-time onboarding self-report. Likert items are
// 1-5; clock times are "HH:MM" strings on free (non-work) days.
type Questionnaire struct {
	FreeWakeTime      string
	FreeBedTime       string
	SleepNeedHours    float64
	MorningAlertness  int
	WakingDifficulty  int
	SleepOnsetEase    int
	FatigueLevel      int
	PeakPerformance   PeakTime
	WeekendOversleep  bool
	SocialJetLagMin   int
}

// Profile is the chronotype/sleep-need profile derived from a
// questionnaire. It is created whole and never partially patched; a new
// questionnaire replaces the entire profile.
type Profile struct {
	Chronotype         Chronotype        `json:"chronotype"`
	ChronotypeScore    int               `json:"chronotype_score"`
	SleepNeedMinutes   int               `json:"sleep_need_minutes"`
	SleepNeedCategory  SleepNeedCategory `json:"sleep_need_category"`
	OptimalWakeMin     int               `json:"optimal_wake_min"` // minutes after midnight
	OptimalBedMin      int               `json:"optimal_bed_min"`
	SocialJetLagMin    int               `json:"social_jetlag_min"`
	AccumulatedDebtMin int               `json:"accumulated_debt_min"`
}

// FromQuestionnaire derives a sleep profile. It is a pure, deterministic
// function of its input: identical questionnaires yield identical
// profiles.
func FromQuestionnaire(q Questionnaire) (Profile, error) {
	wakeMin, err := ParseClock(q.FreeWakeTime)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: free wake time: %v", ErrInvalidQuestionnaire, err)
	}
	bedMin, err := ParseClock(q.FreeBedTime)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: free bed time: %v", ErrInvalidQuestionnaire, err)
	}

	score := chronotypeScore(wakeMin, q)
	chrono := classifyChronotype(score)

	need := sleepNeedMinutes(wakeMin, bedMin, q)

	// Optimal wake time shifts from the free-day wake time by a fixed
	// chronotype offset, bounded to the 05:00-10:00 window.
	optimalWake := clampInt(wakeMin+chronotypeWakeOffset(chrono), 300, 600)
	optimalBed := wrapMinutes(optimalWake - need)

	// Workweek debt: the free-day shortfall against estimated need,
	// accumulated over five constrained nights.
	observed := freeDaySleepMinutes(bedMin, wakeMin)
	debt := 0
	if observed < need {
		debt = (need - observed) * 5
	}

	return Profile{
		Chronotype:         chrono,
		ChronotypeScore:    score,
		SleepNeedMinutes:   need,
		SleepNeedCategory:  classifySleepNeed(need),
		OptimalWakeMin:     optimalWake,
		OptimalBedMin:      optimalBed,
		SocialJetLagMin:    q.SocialJetLagMin,
		AccumulatedDebtMin: debt,
	}, nil
}

// chronotypeScore combines the questionnaire signals into a 16-86 score.
// Higher means more morning-oriented.
func chronotypeScore(wakeMin int, q Questionnaire) int {
	score := 50.0
	score += wakeTimeContribution(wakeMin)
	score += 4 * float64(q.MorningAlertness-3)
	score -= 3 * float64(q.WakingDifficulty-3)
	score += peakContribution(q.PeakPerformance)
	score += 2 * float64(q.SleepOnsetEase-3)
	return clampInt(int(score), ChronotypeScoreMin, ChronotypeScoreMax)
}

// wakeTimeContribution maps the free-day wake time onto six bands from
// strongly morning (<06:00, +15) to strongly evening (>12:00, -15).
func wakeTimeContribution(wakeMin int) float64 {
	switch {
	case wakeMin < 6*60:
		return 15
	case wakeMin < 7*60:
		return 10
	case wakeMin < 8*60+30:
		return 5
	case wakeMin < 10*60:
		return -5
	case wakeMin <= 12*60:
		return -10
	default:
		return -15
	}
}

func peakContribution(p PeakTime) float64 {
	switch p {
	case PeakEarlyMorning:
		return 12
	case PeakLateMorning:
		return 6
	case PeakAfternoon:
		return 0
	case PeakEvening:
		return -6
	case PeakNight:
		return -12
	default:
		return 0
	}
}

func classifyChronotype(score int) Chronotype {
	switch {
	case score >= 70:
		return ChronotypeDefiniteMorning
	case score >= 59:
		return ChronotypeModerateMorning
	case score >= 42:
		return ChronotypeIntermediate
	case score >= 31:
		return ChronotypeModerateEvening
	default:
		return ChronotypeDefiniteEvening
	}
}

func chronotypeWakeOffset(c Chronotype) int {
	switch c {
	case ChronotypeDefiniteMorning:
		return -60
	case ChronotypeModerateMorning:
		return -30
	case ChronotypeModerateEvening:
		return 30
	case ChronotypeDefiniteEvening:
		return 60
	default:
		return 0
	}
}

// sleepNeedMinutes estimates nightly need by blending the adjusted
// subjective report (40%) with the observed free-day sleep duration (60%),
// clamped to [300, 600].
func sleepNeedMinutes(wakeMin, bedMin int, q Questionnaire) int {
	subjective := q.SleepNeedHours * 60

	// High daytime fatigue suggests the subjective figure undershoots;
	// very low fatigue suggests it overshoots.
	if q.FatigueLevel >= 4 {
		subjective += 30
	} else if q.FatigueLevel <= 2 {
		subjective -= 15
	}

	// Habitual weekend oversleep means weekday sleep runs a deficit the
	// subjective estimate hides; credit part of the jet lag.
	if q.WeekendOversleep {
		corr := float64(q.SocialJetLagMin) / 2
		if corr > 45 {
			corr = 45
		}
		subjective += corr
	}

	observed := float64(freeDaySleepMinutes(bedMin, wakeMin))
	need := 0.4*subjective + 0.6*observed
	return clampInt(int(need), SleepNeedMinutesMin, SleepNeedMinutesMax)
}

func classifySleepNeed(minutes int) SleepNeedCategory {
	switch {
	case minutes < 390:
		return SleepNeedShort
	case minutes <= 510:
		return SleepNeedAverage
	default:
		return SleepNeedLong
	}
}

// freeDaySleepMinutes is the duration from bedtime to wake time on a free
// day, handling schedules that cross midnight.
func freeDaySleepMinutes(bedMin, wakeMin int) int {
	d := wakeMin - bedMin
	if d <= 0 {
		d += 24 * 60
	}
	return d
}

// ParseClock parses an "HH:MM" string into minutes after midnight.
func ParseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("malformed clock time %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock time %q out of range", s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes after midnight as "HH:MM", wrapping values
// outside a single day.
func FormatClock(minutes int) string {
	minutes = wrapMinutes(minutes)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func wrapMinutes(minutes int) int {
	return ((minutes % 1440) + 1440) % 1440
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
