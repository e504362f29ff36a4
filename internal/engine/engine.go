// Package engine implements the adaptive intervention decision engine:
// belief tracking over noisy daily self-reports, Thompson-Sampling
// intervention choice, personalized time-in-bed titration, and
// just-in-time reminder scheduling.
//
// The engine is synchronous and performs no I/O. Callers do persistence
// and network fetches first, hand the engine plain data, and store what
// comes back. All randomness flows through an injected seedable source.
package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidConfig is returned at construction for configs that must
	// never reach per-observation processing.
	ErrInvalidConfig = errors.New("invalid engine configuration")

	// ErrInsufficientData means the caller asked for personalization
	// without enough history to support it.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidPrescription means a prescription violates the TIB
	// invariant.
	ErrInvalidPrescription = errors.New("invalid prescription")
)

// Config holds the engine's tunables. Zero values are not usable;
// construct via DefaultConfig and override.
type Config struct {
	Gain                     float64       `json:"gain"`                       // belief smoothing gain, (0, 1]
	PriorStrength            float64       `json:"prior_strength"`             // initial alpha=beta
	MinTIB                   int           `json:"min_tib"`
	MaxTIB                   int           `json:"max_tib"`
	ModelConfidenceThreshold float64       `json:"model_confidence_threshold"` // forecast trusted outright at or above this
	Conservative             bool          `json:"conservative"`               // never shrink TIB on model advice
	ExplorationBonus         float64       `json:"exploration_bonus"`          // added while alpha+beta < 5
	RewardWeights            RewardWeights `json:"reward_weights"`
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() Config {
	return Config{
		Gain:                     0.3,
		PriorStrength:            1,
		MinTIB:                   MinTIBMinutes,
		MaxTIB:                   MaxTIBMinutes,
		ModelConfidenceThreshold: 0.6,
		ExplorationBonus:         0.1,
		RewardWeights:            DefaultRewardWeights(),
	}
}

// Validate rejects configurations that would corrupt per-observation
// processing. Called at engine construction; failures are fatal there.
func (c Config) Validate() error {
	if c.Gain <= 0 || c.Gain > 1 {
		return fmt.Errorf("%w: gain %v outside (0, 1]", ErrInvalidConfig, c.Gain)
	}
	if c.PriorStrength <= 0 {
		return fmt.Errorf("%w: prior strength %v must be positive", ErrInvalidConfig, c.PriorStrength)
	}
	if c.MinTIB > c.MaxTIB {
		return fmt.Errorf("%w: min TIB %d exceeds max TIB %d", ErrInvalidConfig, c.MinTIB, c.MaxTIB)
	}
	if c.MinTIB <= 0 {
		return fmt.Errorf("%w: min TIB %d must be positive", ErrInvalidConfig, c.MinTIB)
	}
	if c.ModelConfidenceThreshold < 0 || c.ModelConfidenceThreshold > 1 {
		return fmt.Errorf("%w: confidence threshold %v outside [0, 1]", ErrInvalidConfig, c.ModelConfidenceThreshold)
	}
	return nil
}

// StepResult is the outcome of processing one observation.
type StepResult struct {
	Belief     Belief
	Reward     float64
	Rewarded   bool // false on the first observation, when no prior exists
	Action     ActionID
	Considered []ActionID
}

// Engine is the per-user decision engine. One engine owns one user's
// belief and action statistics; operations on it are serialized by its
// mutex (single-writer discipline), while distinct users' engines are
// fully independent.
type Engine struct {
	mu sync.Mutex

	userID    uuid.UUID
	cfg       Config
	rng       *rand.Rand
	belief    *Belief
	model     *ActionValueModel
	selector  *PolicySelector
	advisor   *TIBAdvisor
	scheduler JITAIScheduler
}

// New constructs an engine for one user. An invalid config is rejected
// here and never reaches observation processing.
func New(userID uuid.UUID, cfg Config, seed int64) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	model := NewActionValueModel(AllActions(), cfg.PriorStrength)
	rng := rand.New(rand.NewSource(seed))
	return &Engine{
		userID:   userID,
		cfg:      cfg,
		rng:      rng,
		model:    model,
		selector: NewPolicySelector(model, rng, cfg.ExplorationBonus),
		advisor:  NewTIBAdvisor(cfg),
	}, nil
}

// ProcessObservation applies one daily observation as a single atomic
// unit: belief update, reward against the previous belief, crediting the
// previously chosen action, then Thompson-Sampling the next one.
// Interleaving these steps across observations would let a stale belief
// score a reward against the wrong prior, so they run under one lock.
//
// previousAction is the intervention delivered since the last
// observation (ActionNone when none was delivered; it then receives no
// credit).
func (e *Engine) ProcessObservation(obs Observation, previousAction ActionID) StepResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	prior := e.belief
	next := Fuse(prior, obs, e.cfg.Gain)

	reward, rewarded := Reward(prior, &next, e.cfg.RewardWeights)
	if rewarded && previousAction != ActionNone {
		e.model.RecordOutcome(previousAction, reward, obs.Timestamp)
	}

	e.belief = &next
	action, considered := e.selector.SelectAction(next, DefaultValidActions, DefaultContextBonus)

	return StepResult{
		Belief:     next,
		Reward:     reward,
		Rewarded:   rewarded,
		Action:     action,
		Considered: considered,
	}
}

// Belief returns a copy of the current belief, or nil before the first
// observation.
func (e *Engine) Belief() *Belief {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.belief == nil {
		return nil
	}
	b := *e.belief
	return &b
}

// RecommendTIB runs the time-in-bed advisor against the current
// prescription and recent nightly sleep-efficiency history.
func (e *Engine) RecommendTIB(p Prescription, recentSE []float64, pred *Prediction) (Adjustment, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.advisor.Recommend(p, recentSE, pred)
}

// Schedule evaluates the just-in-time reminder cascade.
func (e *Engine) Schedule(ctx SchedulerContext) Decision {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scheduler.Decide(e.userID, ctx)
}

// SelectionDecision wraps a processed observation's action choice as an
// audit Decision so intervention selections land in the same append-only
// log as scheduling decisions.
func (e *Engine) SelectionDecision(res StepResult, at time.Time) Decision {
	return Decision{
		ID:        uuid.New(),
		UserID:    e.userID,
		Timestamp: at,
		Category:  DecisionInterventionSelection,
		Tailoring: Tailoring{AdherenceRate: res.Belief.Adherence},
		Chosen:    InterventionOption(res.Action),
		Considered: func() []InterventionOption {
			opts := make([]InterventionOption, len(res.Considered))
			for i, a := range res.Considered {
				opts[i] = InterventionOption(a)
			}
			return opts
		}(),
		Reason: fmt.Sprintf("thompson sample over %d valid interventions (reward %.3f, rewarded %t)", len(res.Considered), res.Reward, res.Rewarded),
	}
}

// Snapshot is the plain persistence structure: belief, per-action
// counters, and config. The caller owns serialization.
type Snapshot struct {
	Belief  *Belief           `json:"belief,omitempty"`
	Actions []ActionStatistic `json:"actions"`
	Config  Config            `json:"config"`
}

// Snapshot exports the engine state. Restoring it into a fresh engine
// seeded identically reproduces the same subsequent decisions for the
// same observation sequence.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	var belief *Belief
	if e.belief != nil {
		b := *e.belief
		belief = &b
	}
	return Snapshot{Belief: belief, Actions: e.model.Snapshot(), Config: e.cfg}
}

// Restore builds an engine from a snapshot. The snapshot's config is
// re-validated; a corrupted snapshot must not smuggle in an invalid
// configuration.
func Restore(userID uuid.UUID, snap Snapshot, seed int64) (*Engine, error) {
	e, err := New(userID, snap.Config, seed)
	if err != nil {
		return nil, err
	}
	if snap.Belief != nil {
		b := *snap.Belief
		e.belief = &b
	}
	if len(snap.Actions) > 0 {
		e.model.Restore(snap.Actions)
	}
	return e, nil
}

// Registry holds per-user engine instances. Construction and teardown
// are caller-controlled; the registry never creates engines implicitly.
type Registry struct {
	mu      sync.RWMutex
	engines map[uuid.UUID]*Engine
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{engines: make(map[uuid.UUID]*Engine)}
}

// Get returns the engine for a user, if registered.
func (r *Registry) Get(userID uuid.UUID) (*Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.engines[userID]
	return e, ok
}

// Put registers an engine for a user, replacing any previous one.
func (r *Registry) Put(userID uuid.UUID, e *Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[userID] = e
}

// Remove tears down a user's engine.
func (r *Registry) Remove(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.engines, userID)
}
