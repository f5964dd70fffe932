package service

import (
	"context"

	"loan-advisor/domain"
)

// PlanGreedy builds a short sequential plan: at each step it regenerates
// candidates from the working payload, skips actions already taken and
// applies the one with the largest PD drop. It stops after MaxPlanSteps,
// when no candidate improves by more than MinImprovement, or once the
// working PD is below thrReview.
func PlanGreedy(
	ctx context.Context,
	scorer Scorer,
	payload domain.ApplicantPayload,
	currentPD float64,
	thrReview float64,
) ([]domain.ScoredCandidate, error) {
	plan := make([]domain.ScoredCandidate, 0, MaxPlanSteps)
	used := make(map[string]bool, MaxPlanSteps)
	workPayload := payload.Clone()
	workPD := currentPD

	for step := 0; step < MaxPlanSteps; step++ {
		var best *domain.ScoredCandidate
		bestDrop := 0.0

		for _, c := range GenerateCandidates(workPayload) {
			if used[c.Label] {
				continue
			}
			sc, err := scoreCandidate(ctx, scorer, c, workPD)
			if err != nil {
				return nil, err
			}
			drop := workPD - sc.NewPD
			if drop > bestDrop+ImprovementNoise {
				bestDrop = drop
				best = &sc
			}
		}

		if best == nil || bestDrop <= MinImprovement {
			break
		}

		plan = append(plan, *best)
		used[best.Action] = true
		workPayload = best.Payload
		workPD = best.NewPD
		if workPD < thrReview {
			break
		}
	}
	return plan, nil
}

// CrossesThreshold reports whether the plan ends below the review cut.
func CrossesThreshold(plan []domain.ScoredCandidate, thrReview float64) bool {
	return len(plan) > 0 && plan[len(plan)-1].NewPD < thrReview
}
