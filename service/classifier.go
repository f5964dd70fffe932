package service

import "loan-advisor/domain"

// Classify maps a probability of default onto the policy bands. Without a
// reject cut the policy is two-band and REJECT cannot be returned.
func Classify(prob float64, th domain.Thresholds) domain.Decision {
	review := reviewThreshold(th)
	if th.ThreeBand() && prob >= *th.ThrReject {
		return domain.DecisionReject
	}
	if prob >= review {
		return domain.DecisionReview
	}
	return domain.DecisionApprove
}

func reviewThreshold(th domain.Thresholds) float64 {
	if th.ThrReview == nil {
		return DefaultReviewThreshold
	}
	return *th.ThrReview
}
