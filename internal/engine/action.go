package engine

import (
	"sort"
	"time"
)

// ActionID identifies a behavioral intervention the engine can deliver.
type ActionID string

const (
	// ActionNone is the defined no-op: returned when no intervention is
	// valid for the current belief.
	ActionNone ActionID = "none"

	ActionSleepRestriction ActionID = "sleep_restriction"
	ActionStimulusControl  ActionID = "stimulus_control"
	ActionRelaxation       ActionID = "relaxation"
	ActionCognitive        ActionID = "cognitive_restructuring"
	ActionSleepHygiene     ActionID = "sleep_hygiene"
)

// AllActions lists every deliverable intervention (ActionNone excluded).
func AllActions() []ActionID {
	return []ActionID{
		ActionCognitive,
		ActionRelaxation,
		ActionSleepHygiene,
		ActionSleepRestriction,
		ActionStimulusControl,
	}
}

// ActionStatistic holds the Beta posterior counters for one intervention.
// Alpha and beta only ever increase, by whole counts.
type ActionStatistic struct {
	Action      ActionID  `json:"action"`
	Alpha       float64   `json:"alpha"`
	Beta        float64   `json:"beta"`
	LastUpdated time.Time `json:"last_updated"`
}

// ActionValueModel tracks per-intervention success/failure counts as
// Beta(alpha, beta) posteriors.
type ActionValueModel struct {
	stats map[ActionID]*ActionStatistic
}

// NewActionValueModel initializes one statistic per action with
// alpha = beta = priorStrength. priorStrength must already be validated
// (> 0) by the engine config.
func NewActionValueModel(actions []ActionID, priorStrength float64) *ActionValueModel {
	m := &ActionValueModel{stats: make(map[ActionID]*ActionStatistic, len(actions))}
	for _, a := range actions {
		m.stats[a] = &ActionStatistic{Action: a, Alpha: priorStrength, Beta: priorStrength}
	}
	return m
}

// RecordOutcome updates the chosen action's counters from a reward.
// The continuous reward is binarized at exactly zero: reward > 0 counts
// as a success, reward <= 0 as a failure. This is a deliberate
// simplification; the magnitude of the reward is discarded.
func (m *ActionValueModel) RecordOutcome(action ActionID, reward float64, at time.Time) {
	s, ok := m.stats[action]
	if !ok {
		return
	}
	if reward > 0 {
		s.Alpha++
	} else {
		s.Beta++
	}
	s.LastUpdated = at
}

// Get returns the statistic for an action, or nil if unknown.
func (m *ActionValueModel) Get(action ActionID) *ActionStatistic {
	s, ok := m.stats[action]
	if !ok {
		return nil
	}
	copied := *s
	return &copied
}

// Snapshot exports all statistics, sorted by action id, for persistence.
func (m *ActionValueModel) Snapshot() []ActionStatistic {
	out := make([]ActionStatistic, 0, len(m.stats))
	for _, s := range m.stats {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Action < out[j].Action })
	return out
}

// Restore replaces the model's statistics with a previously exported
// snapshot. Snapshot followed by Restore round-trips exactly.
func (m *ActionValueModel) Restore(snapshot []ActionStatistic) {
	m.stats = make(map[ActionID]*ActionStatistic, len(snapshot))
	for _, s := range snapshot {
		copied := s
		m.stats[copied.Action] = &copied
	}
}
