package engine

import "fmt"

// TIB prescription safety bounds, in minutes. Restriction below 300
// minutes is clinically unsafe; above 540 it stops being a restriction.
const (
	MinTIBMinutes = 300
	MaxTIBMinutes = 540
)

// Prescription is the current sleep-window prescription. Invariant:
// MinTIBMinutes <= TIBMinutes <= MaxTIBMinutes and
// BedtimeMin == (WakeMin - TIBMinutes) mod 24h.
type Prescription struct {
	TIBMinutes int `json:"tib_minutes"`
	BedtimeMin int `json:"bedtime_min"` // minutes after midnight
	WakeMin    int `json:"wake_min"`
	Week       int `json:"week"`
}

// Validate checks the prescription invariant.
func (p Prescription) Validate() error {
	if p.TIBMinutes < MinTIBMinutes || p.TIBMinutes > MaxTIBMinutes {
		return fmt.Errorf("%w: TIB %d outside [%d, %d]", ErrInvalidPrescription, p.TIBMinutes, MinTIBMinutes, MaxTIBMinutes)
	}
	if p.BedtimeMin != wrapMinutes(p.WakeMin-p.TIBMinutes) {
		return fmt.Errorf("%w: bedtime %s inconsistent with wake %s and TIB %d",
			ErrInvalidPrescription, FormatClock(p.BedtimeMin), FormatClock(p.WakeMin), p.TIBMinutes)
	}
	return nil
}

// WithTIB returns a copy with a new TIB, bedtime re-derived from the
// anchored wake time.
func (p Prescription) WithTIB(tibMinutes int) Prescription {
	p.TIBMinutes = tibMinutes
	p.BedtimeMin = wrapMinutes(p.WakeMin - tibMinutes)
	return p
}

// InitialPrescription builds the week-1 sleep window from a profile: the
// wake time is anchored at the profile optimum and TIB starts at the
// estimated sleep need plus a 30-minute buffer, within safety bounds.
func InitialPrescription(profile Profile) Prescription {
	tib := clampInt(profile.SleepNeedMinutes+30, MinTIBMinutes, MaxTIBMinutes)
	return Prescription{
		TIBMinutes: tib,
		WakeMin:    profile.OptimalWakeMin,
		BedtimeMin: wrapMinutes(profile.OptimalWakeMin - tib),
		Week:       1,
	}
}
