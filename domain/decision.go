package domain

type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReview  Decision = "REVIEW"
	DecisionReject  Decision = "REJECT"
)

// Thresholds are the policy cut-points. ThrReject is nil in two-band mode.
type Thresholds struct {
	ThrReject *float64 `json:"thr_reject"`
	ThrReview *float64 `json:"thr_review"`
	Source    string   `json:"-"`
}

// ThreeBand reports whether both cut-points are set.
func (t Thresholds) ThreeBand() bool {
	return t.ThrReject != nil && t.ThrReview != nil
}

type ScoreResult struct {
	ProbDefault  float64    `json:"prob_default"`
	Decision     Decision   `json:"decision"`
	PolicySource string     `json:"policy_source"`
	Thresholds   Thresholds `json:"thresholds"`
}
