package domain

// ScoredCandidate is a counterfactual application with its re-scored PD.
// DeltaPD is measured against the baseline the candidate was generated from.
type ScoredCandidate struct {
	Action  string           `json:"action"`
	NewPD   float64          `json:"new_pd"`
	DeltaPD float64          `json:"delta_pd"`
	Payload ApplicantPayload `json:"payload"`
}

type RecommendationResult struct {
	CurrentPD        float64           `json:"current_pd"`
	ThrReview        float64           `json:"thr_review"`
	BestTips         []ScoredCandidate `json:"best_tips"`
	GreedyPlan       []ScoredCandidate `json:"greedy_plan"`
	CrossesThreshold bool              `json:"crosses_threshold"`
}

// Actions returns the labels to hand to the text renderer: the greedy plan
// when there is one, the best tips otherwise, capped at max.
func (r RecommendationResult) Actions(max int) []string {
	steps := r.GreedyPlan
	if len(steps) == 0 {
		steps = r.BestTips
	}
	labels := make([]string, 0, len(steps))
	for _, s := range steps {
		if len(labels) == max {
			break
		}
		labels = append(labels, s.Action)
	}
	return labels
}
