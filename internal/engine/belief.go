package engine

import "time"

// Default values used when an observation omits an optional field on cold
// start. Confidence in a defaulted field is implicitly lower; the smoothing
// gain pulls it toward real data as soon as the field is observed.
const (
	DefaultEfficiency    = 85.0
	DefaultISI           = 14.0
	DefaultOnsetLatency  = 30.0
	DefaultWASO          = 20.0
	DefaultArousal       = 0.5
	DefaultAnxiety       = 0.5
	DefaultAdherence     = 1.0
)

// Belief is the engine's smoothed estimate of a user's latent sleep state.
// It is a value type: Fuse always returns a new Belief and never mutates
// the prior in place.
type Belief struct {
	Efficiency        float64 `json:"efficiency"`          // sleep efficiency, percent
	ISI               float64 `json:"isi"`                 // Insomnia Severity Index, 0-28
	OnsetLatencyMin   float64 `json:"onset_latency_min"`   // SOL, minutes
	WASOMin           float64 `json:"waso_min"`            // wake after sleep onset, minutes
	Arousal           float64 `json:"arousal"`             // pre-sleep arousal, 0-1
	Anxiety           float64 `json:"anxiety"`             // sleep anxiety, 0-1
	CircadianDevHours float64 `json:"circadian_dev_hours"` // deviation from prescribed schedule
	Adherence         float64 `json:"adherence"`           // 0-1
	TreatmentWeek     int     `json:"treatment_week"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Observation is a partial, noisy measurement of the latent state. Nil
// fields were not measured (e.g. ISI is only collected periodically) and
// are carried over from the prior belief during fusion.
type Observation struct {
	Efficiency        *float64
	ISI               *float64
	OnsetLatencyMin   *float64
	WASOMin           *float64
	Arousal           *float64
	Anxiety           *float64
	CircadianDevHours *float64
	Adherence         *float64
	TreatmentWeek     *int
	Source            string
	Timestamp         time.Time
}

// Fuse blends an observation into the prior belief using exponential
// smoothing with gain k: new = prior + k*(observed - prior). Fields absent
// from the observation are carried over unchanged. With no prior (cold
// start) the belief is seeded from the observation, with defaults for
// missing fields. Pure; never fails.
//
// Repeated identical observations converge the belief toward the observed
// value, the remaining distance shrinking by (1-k) each step.
func Fuse(prior *Belief, obs Observation, gain float64) Belief {
	if prior == nil {
		return coldStart(obs)
	}

	b := *prior
	blend := func(cur float64, observed *float64) float64 {
		if observed == nil {
			return cur
		}
		return cur + gain*(*observed-cur)
	}

	b.Efficiency = blend(b.Efficiency, obs.Efficiency)
	b.ISI = blend(b.ISI, obs.ISI)
	b.OnsetLatencyMin = blend(b.OnsetLatencyMin, obs.OnsetLatencyMin)
	b.WASOMin = blend(b.WASOMin, obs.WASOMin)
	b.Arousal = blend(b.Arousal, obs.Arousal)
	b.Anxiety = blend(b.Anxiety, obs.Anxiety)
	b.CircadianDevHours = blend(b.CircadianDevHours, obs.CircadianDevHours)
	b.Adherence = blend(b.Adherence, obs.Adherence)
	if obs.TreatmentWeek != nil {
		b.TreatmentWeek = *obs.TreatmentWeek
	}
	b.UpdatedAt = obs.Timestamp
	return b
}

func coldStart(obs Observation) Belief {
	pick := func(observed *float64, def float64) float64 {
		if observed == nil {
			return def
		}
		return *observed
	}

	b := Belief{
		Efficiency:      pick(obs.Efficiency, DefaultEfficiency),
		ISI:             pick(obs.ISI, DefaultISI),
		OnsetLatencyMin: pick(obs.OnsetLatencyMin, DefaultOnsetLatency),
		WASOMin:         pick(obs.WASOMin, DefaultWASO),
		Arousal:         pick(obs.Arousal, DefaultArousal),
		Anxiety:         pick(obs.Anxiety, DefaultAnxiety),
		Adherence:       pick(obs.Adherence, DefaultAdherence),
		UpdatedAt:       obs.Timestamp,
	}
	if obs.CircadianDevHours != nil {
		b.CircadianDevHours = *obs.CircadianDevHours
	}
	if obs.TreatmentWeek != nil {
		b.TreatmentWeek = *obs.TreatmentWeek
	}
	return b
}
