package engine

import (
	"math"
	"testing"
	"time"
)

func f64(v float64) *float64 { return &v }

func TestFuse_ColdStart(t *testing.T) {
	ts := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	obs := Observation{
		Efficiency:      f64(72),
		OnsetLatencyMin: f64(45),
		Timestamp:       ts,
	}

	b := Fuse(nil, obs, 0.3)

	if b.Efficiency != 72 {
		t.Errorf("Efficiency = %v, want observed 72", b.Efficiency)
	}
	if b.OnsetLatencyMin != 45 {
		t.Errorf("OnsetLatencyMin = %v, want observed 45", b.OnsetLatencyMin)
	}
	// Missing fields fall back to documented defaults, not zero.
	if b.ISI != DefaultISI {
		t.Errorf("ISI = %v, want default %v", b.ISI, DefaultISI)
	}
	if b.Adherence != DefaultAdherence {
		t.Errorf("Adherence = %v, want default %v", b.Adherence, DefaultAdherence)
	}
	if !b.UpdatedAt.Equal(ts) {
		t.Errorf("UpdatedAt = %v, want %v", b.UpdatedAt, ts)
	}
}

func TestFuse_BlendsPresentFields(t *testing.T) {
	prior := &Belief{Efficiency: 80, ISI: 18, OnsetLatencyMin: 40}
	obs := Observation{Efficiency: f64(90)}

	b := Fuse(prior, obs, 0.3)

	if got, want := b.Efficiency, 83.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("Efficiency = %v, want %v", got, want)
	}
	// Absent fields carry over unchanged.
	if b.ISI != 18 {
		t.Errorf("ISI = %v, want carried-over 18", b.ISI)
	}
	if b.OnsetLatencyMin != 40 {
		t.Errorf("OnsetLatencyMin = %v, want carried-over 40", b.OnsetLatencyMin)
	}
	// The prior is never mutated in place.
	if prior.Efficiency != 80 {
		t.Errorf("prior mutated: Efficiency = %v", prior.Efficiency)
	}
}

func TestFuse_ConvergesMonotonically(t *testing.T) {
	const gain = 0.3
	b := Belief{Efficiency: 60}
	obs := Observation{Efficiency: f64(90)}

	dist := math.Abs(90 - b.Efficiency)
	for i := 0; i < 20; i++ {
		next := Fuse(&b, obs, gain)
		nextDist := math.Abs(90 - next.Efficiency)

		// Distance shrinks by exactly (1-k) per step and never overshoots.
		if want := dist * (1 - gain); math.Abs(nextDist-want) > 1e-9 {
			t.Fatalf("step %d: distance = %v, want %v", i, nextDist, want)
		}
		if next.Efficiency > 90 {
			t.Fatalf("step %d: overshot to %v", i, next.Efficiency)
		}

		b = next
		dist = nextDist
	}
	if dist > 0.01 {
		t.Errorf("after 20 steps distance still %v", dist)
	}
}

func TestFuse_TreatmentWeekReplacedNotBlended(t *testing.T) {
	week := 4
	prior := &Belief{TreatmentWeek: 3}
	b := Fuse(prior, Observation{TreatmentWeek: &week}, 0.3)
	if b.TreatmentWeek != 4 {
		t.Errorf("TreatmentWeek = %d, want 4", b.TreatmentWeek)
	}

	b = Fuse(prior, Observation{}, 0.3)
	if b.TreatmentWeek != 3 {
		t.Errorf("TreatmentWeek = %d, want carried-over 3", b.TreatmentWeek)
	}
}
