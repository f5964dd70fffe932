package service

import (
	"context"

	"go.uber.org/zap"

	"loan-advisor/domain"
)

// Engine scores applications and, for declined ones, searches for concrete
// changes that would lower the probability of default.
type Engine struct {
	scorer     Scorer
	thresholds domain.Thresholds
	logger     *zap.Logger
}

func NewEngine(scorer Scorer, thresholds domain.Thresholds, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{scorer: scorer, thresholds: thresholds, logger: logger}
}

func (e *Engine) Thresholds() domain.Thresholds {
	return e.thresholds
}

// ThrReview is the review cut used as the goal of recommendations.
func (e *Engine) ThrReview() float64 {
	return reviewThreshold(e.thresholds)
}

// Score classifies one application.
func (e *Engine) Score(ctx context.Context, payload domain.ApplicantPayload) (domain.ScoreResult, error) {
	prob, err := e.scorer.Probability(ctx, payload)
	if err != nil {
		return domain.ScoreResult{}, err
	}
	// Classify the raw value; only the reported PD is rounded.
	return domain.ScoreResult{
		ProbDefault:  roundProb(prob),
		Decision:     Classify(prob, e.thresholds),
		PolicySource: e.thresholds.Source,
		Thresholds:   e.thresholds,
	}, nil
}

// Recommend ranks single-step improvements and builds a greedy plan of at
// most two steps.
func (e *Engine) Recommend(ctx context.Context, payload domain.ApplicantPayload, topK int) (domain.RecommendationResult, error) {
	thr := e.ThrReview()
	currentPD, err := e.scorer.Probability(ctx, payload)
	if err != nil {
		return domain.RecommendationResult{}, err
	}
	currentPD = roundProb(currentPD)

	tips, err := RankTips(ctx, e.scorer, payload, currentPD, topK)
	if err != nil {
		return domain.RecommendationResult{}, err
	}

	plan, err := PlanGreedy(ctx, e.scorer, payload, currentPD, thr)
	if err != nil {
		return domain.RecommendationResult{}, err
	}

	crosses := CrossesThreshold(plan, thr)
	e.logger.Debug("recommendations computed",
		zap.String("op", "Engine.Recommend"),
		zap.Float64("current_pd", currentPD),
		zap.Int("tips", len(tips)),
		zap.Int("plan_steps", len(plan)),
		zap.Bool("crosses_threshold", crosses),
	)

	return domain.RecommendationResult{
		CurrentPD:        currentPD,
		ThrReview:        thr,
		BestTips:         tips,
		GreedyPlan:       plan,
		CrossesThreshold: crosses,
	}, nil
}
