package engine

import "fmt"

// MinAdjustmentHistory is the minimum number of recent nightly
// sleep-efficiency values required before a TIB adjustment may be
// personalized. Below this the advisor refuses rather than approximate.
const MinAdjustmentHistory = 7

// Trend is the direction reported by the external forecasting model.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
	TrendCritical  Trend = "critical"
)

// Prediction is the optional signal from the external sleep-efficiency
// forecasting collaborator. Absence or low confidence is a degraded but
// valid input, never an error.
type Prediction struct {
	PointEstimate float64 `json:"point_estimate"` // predicted SE, percent
	Lower95       float64 `json:"lower_95"`
	Upper95       float64 `json:"upper_95"`
	Trend         Trend   `json:"trend"`
	Confidence    float64 `json:"confidence"` // 0-1
}

// Basis tags which advice path produced an adjustment.
type Basis string

const (
	BasisRule           Basis = "rule"
	BasisModel          Basis = "model"
	BasisHybrid         Basis = "hybrid"
	BasisSafetyOverride Basis = "safety_override"
)

// ruleConfidence is the fixed confidence attributed to the threshold
// rule path, which has no uncertainty estimate of its own.
const ruleConfidence = 0.7

// Adjustment is a recommended change to the TIB prescription, with the
// full rationale needed for the audit trail.
type Adjustment struct {
	Delta             int      `json:"delta"`
	ProposedTIB       int      `json:"proposed_tib"`
	Confidence        float64  `json:"confidence"`
	Basis             Basis    `json:"basis"`
	Explanation       string   `json:"explanation"`
	RiskFactors       []string `json:"risk_factors,omitempty"`
	ProtectiveFactors []string `json:"protective_factors,omitempty"`
}

// TIBAdvisor personalizes weekly time-in-bed changes from recent sleep
// efficiency, optionally sharpened by an external prediction.
type TIBAdvisor struct {
	cfg Config
}

// NewTIBAdvisor builds an advisor with a validated config.
func NewTIBAdvisor(cfg Config) *TIBAdvisor {
	return &TIBAdvisor{cfg: cfg}
}

// Recommend computes the next TIB adjustment. recentSE holds the last
// nightly sleep-efficiency percentages, newest or oldest first (only the
// mean is used). Fewer than MinAdjustmentHistory entries is an explicit
// ErrInsufficientData, not a silent approximation.
func (a *TIBAdvisor) Recommend(p Prescription, recentSE []float64, pred *Prediction) (Adjustment, error) {
	if len(recentSE) < MinAdjustmentHistory {
		return Adjustment{}, fmt.Errorf("%w: %d of %d required nights", ErrInsufficientData, len(recentSE), MinAdjustmentHistory)
	}

	avg := mean(recentSE)
	basis := selectBasis(pred, a.cfg.ModelConfidenceThreshold)

	var delta int
	var confidence float64
	switch basis {
	case BasisRule:
		delta = ruleDelta(avg)
		confidence = ruleConfidence
	case BasisModel:
		delta = modelDelta(pred, a.cfg.Conservative)
		confidence = pred.Confidence
	case BasisHybrid:
		// Below the confidence threshold the model still carries signal;
		// weight it by its own confidence against the rule.
		rd := float64(ruleDelta(avg))
		md := float64(modelDelta(pred, a.cfg.Conservative))
		delta = roundToStep(pred.Confidence*md+(1-pred.Confidence)*rd, 5)
		confidence = pred.Confidence*pred.Confidence + (1-pred.Confidence)*ruleConfidence
	}

	adj := Adjustment{
		Delta:      delta,
		Confidence: confidence,
		Basis:      basis,
	}
	adj.RiskFactors, adj.ProtectiveFactors = adjustmentFactors(avg, pred)

	proposed := p.TIBMinutes + delta
	clamped := clampInt(proposed, a.cfg.MinTIB, a.cfg.MaxTIB)
	if clamped != proposed {
		adj.RiskFactors = append(adj.RiskFactors,
			fmt.Sprintf("proposed TIB %d min clamped to safety bound %d min", proposed, clamped))
		adj.Basis = BasisSafetyOverride
		adj.Delta = clamped - p.TIBMinutes
	}
	adj.ProposedTIB = clamped
	adj.Explanation = explain(adj, avg, basis, pred)
	return adj, nil
}

// selectBasis is the single pure selection function over prediction
// presence, prediction confidence, and config. Each path's contract is
// testable in isolation.
func selectBasis(pred *Prediction, threshold float64) Basis {
	switch {
	case pred == nil:
		return BasisRule
	case pred.Confidence >= threshold:
		return BasisModel
	default:
		return BasisHybrid
	}
}

// ruleDelta is the classic sleep-restriction titration rule over the
// recent average sleep efficiency.
func ruleDelta(avgSE float64) int {
	switch {
	case avgSE >= 90:
		return 15
	case avgSE < 85:
		return -15
	default:
		return 0
	}
}

// modelDelta maps a prediction onto a delta through an ordered decision
// table; the first matching row wins.
func modelDelta(pred *Prediction, conservative bool) int {
	declining := pred.Trend == TrendDeclining || pred.Trend == TrendCritical
	switch {
	case pred.Trend == TrendImproving && pred.PointEstimate >= 90:
		if pred.Lower95 >= 85 {
			return 20
		}
		return 15
	case declining || pred.PointEstimate < 80:
		if conservative {
			return 0
		}
		return -15
	case pred.PointEstimate >= 85 && pred.PointEstimate < 90:
		return 0
	case pred.PointEstimate >= 90:
		return 15
	default:
		return 0
	}
}

func adjustmentFactors(avgSE float64, pred *Prediction) (risks, protective []string) {
	if avgSE < 85 {
		risks = append(risks, fmt.Sprintf("average sleep efficiency %.1f%% below consolidation threshold", avgSE))
	}
	if avgSE >= 90 {
		protective = append(protective, fmt.Sprintf("average sleep efficiency %.1f%% supports extension", avgSE))
	}
	if pred != nil {
		switch pred.Trend {
		case TrendImproving:
			protective = append(protective, "forecast trend improving")
		case TrendDeclining:
			risks = append(risks, "forecast trend declining")
		case TrendCritical:
			risks = append(risks, "forecast trend critical")
		}
	}
	return risks, protective
}

func explain(adj Adjustment, avgSE float64, selected Basis, pred *Prediction) string {
	s := fmt.Sprintf("%+d min time-in-bed change (avg SE %.1f%%, basis %s", adj.Delta, avgSE, selected)
	if pred != nil {
		s += fmt.Sprintf(", forecast %.1f%% %s at confidence %.2f", pred.PointEstimate, pred.Trend, pred.Confidence)
	}
	if adj.Basis == BasisSafetyOverride {
		s += ", safety clamp engaged"
	}
	return s + ")"
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func roundToStep(v float64, step int) int {
	s := float64(step)
	if v >= 0 {
		return int((v+s/2)/s) * step
	}
	return -int((-v+s/2)/s) * step
}
