package engine

import (
	"math"
	"math/rand"
	"sort"
)

const (
	// explorationPullThreshold is the posterior count below which an action
	// is still considered under-explored.
	explorationPullThreshold = 5

	// highArousalThreshold marks a belief context where calming
	// interventions get a bonus.
	highArousalThreshold = 0.6

	// stimulusControlLatencyMin is the minimum believed onset latency for
	// the stimulus-control intervention to be applicable.
	stimulusControlLatencyMin = 20.0
)

// ValidActionsFunc computes the set of interventions applicable to a
// belief. It must be a pure predicate of the belief.
type ValidActionsFunc func(b Belief) []ActionID

// ContextBonusFunc adds a deterministic adjustment to an action's sampled
// value based on the current belief context.
type ContextBonusFunc func(a ActionID, b Belief) float64

// PolicySelector chooses interventions by Thompson Sampling over the
// action-value model's Beta posteriors.
type PolicySelector struct {
	model            *ActionValueModel
	rng              *rand.Rand
	explorationBonus float64
}

// NewPolicySelector builds a selector around a model and an injected,
// seedable random source. All sampling randomness flows through rng so
// that decisions are reproducible under a fixed seed.
func NewPolicySelector(model *ActionValueModel, rng *rand.Rand, explorationBonus float64) *PolicySelector {
	return &PolicySelector{model: model, rng: rng, explorationBonus: explorationBonus}
}

// SelectAction draws one posterior sample per valid action, adds the
// context bonus, and returns the best action plus the considered set.
//
// Actions are evaluated in lexicographic order of their ids and a later
// action must strictly exceed the current best sample to win, so ties
// always resolve to the lexicographically smallest id. This makes the
// choice reproducible regardless of how the valid set was assembled.
//
// If no action is valid, ActionNone is returned; the selector never
// returns an undefined result.
func (p *PolicySelector) SelectAction(b Belief, valid ValidActionsFunc, bonus ContextBonusFunc) (ActionID, []ActionID) {
	candidates := valid(b)
	if len(candidates) == 0 {
		return ActionNone, nil
	}

	ordered := make([]ActionID, len(candidates))
	copy(ordered, candidates)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	best := ActionNone
	bestValue := math.Inf(-1)
	for _, a := range ordered {
		s := p.model.Get(a)
		if s == nil {
			continue
		}

		// Beta(alpha, beta) sample via two Gamma draws.
		x := sampleGamma(p.rng, s.Alpha)
		y := sampleGamma(p.rng, s.Beta)
		value := x / (x + y)

		if bonus != nil {
			value += bonus(a, b)
		}
		if s.Alpha+s.Beta < explorationPullThreshold {
			value += p.explorationBonus
		}

		if value > bestValue {
			best = a
			bestValue = value
		}
	}
	return best, ordered
}

// sampleGamma draws from Gamma(shape, 1) using the Marsaglia-Tsang
// squeeze method. For shape < 1 it recurses via the boost identity
// Gamma(shape) = Gamma(shape+1) * U^(1/shape).
//
// The acceptance test is exactly:
//
//	d = shape - 1/3, c = 1/sqrt(9d), v = (1 + c*x)^3 with x ~ N(0,1),
//	accept when u < 1 - 0.0331*x^4 (fast squeeze), otherwise when
//	ln(u) < 0.5*x^2 + d*(1 - v + ln(v)).
//
// Candidates with v <= 0 are rejected before the test. Given the same
// random source state this sequence of draws is bit-for-bit reproducible.
func sampleGamma(rng *rand.Rand, shape float64) float64 {
	if shape < 1 {
		return sampleGamma(rng, shape+1) * math.Pow(rng.Float64(), 1/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)
	for {
		x := rng.NormFloat64()
		v := 1.0 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1.0-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1.0-v+math.Log(v)) {
			return d * v
		}
	}
}

// DefaultValidActions gates interventions on the current belief:
// stimulus control needs a meaningful onset-latency problem, sleep
// restriction is withheld while efficiency is already high, and the
// remaining interventions are always applicable.
func DefaultValidActions(b Belief) []ActionID {
	actions := []ActionID{ActionCognitive, ActionRelaxation, ActionSleepHygiene}
	if b.OnsetLatencyMin > stimulusControlLatencyMin || b.WASOMin > stimulusControlLatencyMin {
		actions = append(actions, ActionStimulusControl)
	}
	if b.Efficiency < 90 {
		actions = append(actions, ActionSleepRestriction)
	}
	return actions
}

// DefaultContextBonus boosts calming interventions when the believed
// pre-sleep arousal or anxiety is high.
func DefaultContextBonus(a ActionID, b Belief) float64 {
	if b.Arousal > highArousalThreshold || b.Anxiety > highArousalThreshold {
		if a == ActionRelaxation || a == ActionCognitive {
			return 0.15
		}
	}
	return 0
}
