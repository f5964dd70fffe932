package service

import (
	"context"
	"sort"

	"loan-advisor/domain"
)

// Scorer returns the probability of default of a payload.
type Scorer interface {
	Probability(ctx context.Context, payload domain.ApplicantPayload) (float64, error)
}

// RankTips scores every candidate of payload against currentPD and returns
// the topK largest reductions, ties broken by the lower resulting PD.
func RankTips(
	ctx context.Context,
	scorer Scorer,
	payload domain.ApplicantPayload,
	currentPD float64,
	topK int,
) ([]domain.ScoredCandidate, error) {
	if topK < 1 {
		topK = 1
	}

	cands := GenerateCandidates(payload)
	evaluated := make([]domain.ScoredCandidate, 0, len(cands))
	for _, c := range cands {
		sc, err := scoreCandidate(ctx, scorer, c, currentPD)
		if err != nil {
			return nil, err
		}
		evaluated = append(evaluated, sc)
	}

	sort.SliceStable(evaluated, func(i, j int) bool {
		if evaluated[i].DeltaPD != evaluated[j].DeltaPD {
			return evaluated[i].DeltaPD > evaluated[j].DeltaPD
		}
		return evaluated[i].NewPD < evaluated[j].NewPD
	})

	if len(evaluated) > topK {
		evaluated = evaluated[:topK]
	}
	return evaluated, nil
}

func scoreCandidate(ctx context.Context, scorer Scorer, c Candidate, basePD float64) (domain.ScoredCandidate, error) {
	newPD, err := scorer.Probability(ctx, c.Payload)
	if err != nil {
		return domain.ScoredCandidate{}, err
	}
	return domain.ScoredCandidate{
		Action:  c.Label,
		NewPD:   roundProb(newPD),
		DeltaPD: roundProb(basePD - newPD),
		Payload: c.Payload,
	}, nil
}
