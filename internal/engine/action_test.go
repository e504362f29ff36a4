package engine

import (
	"reflect"
	"testing"
	"time"
)

func TestActionValueModel_RecordOutcome(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		reward    float64
		wantAlpha float64
		wantBeta  float64
	}{
		{name: "positive reward increments alpha", reward: 0.4, wantAlpha: 2, wantBeta: 1},
		{name: "negative reward increments beta", reward: -0.2, wantAlpha: 1, wantBeta: 2},
		{name: "zero reward counts as failure", reward: 0, wantAlpha: 1, wantBeta: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewActionValueModel(AllActions(), 1)
			m.RecordOutcome(ActionRelaxation, tt.reward, now)

			s := m.Get(ActionRelaxation)
			if s.Alpha != tt.wantAlpha || s.Beta != tt.wantBeta {
				t.Errorf("got alpha=%v beta=%v, want alpha=%v beta=%v", s.Alpha, s.Beta, tt.wantAlpha, tt.wantBeta)
			}
			if !s.LastUpdated.Equal(now) {
				t.Errorf("LastUpdated = %v, want %v", s.LastUpdated, now)
			}
		})
	}
}

func TestActionValueModel_CountsOnlyIncrease(t *testing.T) {
	m := NewActionValueModel(AllActions(), 1)
	rewards := []float64{0.5, -0.3, 0, 0.1, -1, 1}

	for i, r := range rewards {
		before := m.Get(ActionSleepHygiene)
		m.RecordOutcome(ActionSleepHygiene, r, time.Now())
		after := m.Get(ActionSleepHygiene)

		// Exactly one counter grows by exactly 1 per outcome.
		if got := (after.Alpha + after.Beta) - (before.Alpha + before.Beta); got != 1 {
			t.Fatalf("outcome %d: alpha+beta grew by %v, want 1", i, got)
		}
		if after.Alpha < before.Alpha || after.Beta < before.Beta {
			t.Fatalf("outcome %d: a counter decreased", i)
		}
	}
}

func TestActionValueModel_UnknownActionIgnored(t *testing.T) {
	m := NewActionValueModel(AllActions(), 1)
	m.RecordOutcome(ActionID("unknown"), 1, time.Now())
	if m.Get(ActionID("unknown")) != nil {
		t.Error("unknown action should not be created")
	}
}

func TestActionValueModel_SnapshotRestoreRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	m := NewActionValueModel(AllActions(), 1)
	m.RecordOutcome(ActionRelaxation, 0.5, now)
	m.RecordOutcome(ActionRelaxation, -0.5, now.Add(24*time.Hour))
	m.RecordOutcome(ActionStimulusControl, 0.2, now)

	snap := m.Snapshot()

	restored := NewActionValueModel(AllActions(), 1)
	restored.Restore(snap)

	if got := restored.Snapshot(); !reflect.DeepEqual(got, snap) {
		t.Errorf("round-trip mismatch:\ngot  %+v\nwant %+v", got, snap)
	}
}

func TestActionValueModel_SnapshotSortedByAction(t *testing.T) {
	m := NewActionValueModel(AllActions(), 1)
	snap := m.Snapshot()
	for i := 1; i < len(snap); i++ {
		if snap[i-1].Action >= snap[i].Action {
			t.Fatalf("snapshot not sorted: %v before %v", snap[i-1].Action, snap[i].Action)
		}
	}
}
