package engine

// RewardWeights weight the components of a state-transition reward.
// They are expected to sum to 1.
type RewardWeights struct {
	Efficiency   float64 `json:"efficiency"`
	ISI          float64 `json:"isi"`
	OnsetLatency float64 `json:"onset_latency"`
	Adherence    float64 `json:"adherence"`
}

// DefaultRewardWeights returns the standard component weighting.
func DefaultRewardWeights() RewardWeights {
	return RewardWeights{Efficiency: 0.35, ISI: 0.35, OnsetLatency: 0.15, Adherence: 0.15}
}

// Reward scores the transition from prev to curr. Each component is
// clamped to [-1, 1] before weighting:
//
//	efficiency delta / 100
//	ISI delta / 28 (a decrease is positive)
//	onset-latency decrease / 30, capped at 1
//	raw adherence
//
// When either belief is missing there is nothing to score: the function
// returns (0, false) rather than failing.
func Reward(prev, curr *Belief, w RewardWeights) (float64, bool) {
	if prev == nil || curr == nil {
		return 0, false
	}

	effDelta := clamp((curr.Efficiency-prev.Efficiency)/100, -1, 1)
	isiDelta := clamp((prev.ISI-curr.ISI)/28, -1, 1)
	solDelta := clamp((prev.OnsetLatencyMin-curr.OnsetLatencyMin)/30, -1, 1)
	adherence := clamp(curr.Adherence, -1, 1)

	r := w.Efficiency*effDelta + w.ISI*isiDelta + w.OnsetLatency*solDelta + w.Adherence*adherence
	return r, true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
